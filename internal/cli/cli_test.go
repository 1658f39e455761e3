package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/credential"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/server"
	"github.com/nhle/taskboard/internal/taskstore"
	"github.com/nhle/taskboard/tests/testutil"
)

const testSecret = "cli-test-secret"

// newTestConfig starts a task API and writes a config pointing at it with
// a file keyring under a temp dir.
func newTestConfig(t *testing.T) string {
	t.Helper()

	l := logrus.New()
	l.SetOutput(io.Discard)
	srv, err := server.New(testutil.NewTestStore(t), []byte(testSecret), logrus.NewEntry(l))
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	cfg := fmt.Sprintf(`api:
  base_url: %s
  max_retries: 0
session:
  keyring_backend: file
  keyring_dir: %s
log:
  level: error
server:
  jwt_secret: %s
`, ts.URL, filepath.Join(dir, "keyring"), testSecret)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func run(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := run(t, cfgPath, "", args...)
	require.NoError(t, err, "taskboard %s", strings.Join(args, " "))
	return out
}

// idOf finds the short id printed next to title by `list`.
func idOf(t *testing.T, listing, title string) string {
	t.Helper()
	for _, line := range strings.Split(listing, "\n") {
		if strings.Contains(line, title) {
			return strings.Fields(line)[0]
		}
	}
	t.Fatalf("%q not in listing:\n%s", title, listing)
	return ""
}

func TestLoginWhoamiLogout(t *testing.T) {
	cfg := newTestConfig(t)

	out := mustRun(t, cfg, "whoami")
	assert.Contains(t, out, "Not signed in.")

	out = mustRun(t, cfg, "token", "--login", "--sub", "u1", "--name", "Ada", "--role", "teacher")
	assert.Contains(t, out, "Signed in as Ada (teacher).")

	out = mustRun(t, cfg, "whoami")
	assert.Contains(t, out, "Name:   Ada")
	assert.Contains(t, out, "Board:  available")

	mustRun(t, cfg, "logout")
	out = mustRun(t, cfg, "whoami")
	assert.Contains(t, out, "Not signed in.")
}

func TestLoginFromStdin(t *testing.T) {
	cfg := newTestConfig(t)

	token := strings.TrimSpace(mustRun(t, cfg, "token", "--sub", "u9", "--role", "admin"))
	out, err := run(t, cfg, token+"\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as u9 (admin).")
	assert.Contains(t, out, "only available to students and teachers")

	_, err = run(t, cfg, "", "list")
	assert.ErrorIs(t, err, errNoAccess)
}

func TestCommandsRequireLogin(t *testing.T) {
	cfg := newTestConfig(t)

	_, err := run(t, cfg, "", "list")
	assert.ErrorIs(t, err, errNotSignedIn)

	_, err = run(t, cfg, "", "add", "Essay")
	assert.ErrorIs(t, err, errNotSignedIn)
	assert.ErrorIs(t, err, credential.ErrNoToken)
}

func TestTaskCommands(t *testing.T) {
	cfg := newTestConfig(t)
	mustRun(t, cfg, "token", "--login", "--sub", "stu-1", "--role", "student")

	out := mustRun(t, cfg, "add", "Write", "essay")
	assert.Contains(t, out, `Added "Write essay" to To Do.`)
	mustRun(t, cfg, "add", "--lane", "doing", "Revise notes")

	listing := mustRun(t, cfg, "list")
	assert.Contains(t, listing, "To Do (1)")
	assert.Contains(t, listing, "In Progress (1)")
	assert.Contains(t, listing, "Done (0)")
	id := idOf(t, listing, "Write essay")

	out = mustRun(t, cfg, "move", id, "back")
	assert.Contains(t, out, `"Write essay" stays in To Do.`)

	out = mustRun(t, cfg, "move", id, "forward")
	assert.Contains(t, out, `Moved "Write essay" to In Progress.`)

	out = mustRun(t, cfg, "status", id, "done")
	assert.Contains(t, out, `Moved "Write essay" to Done.`)

	out = mustRun(t, cfg, "list", "--lane", "done")
	assert.Contains(t, out, "Done (1)")
	assert.NotContains(t, out, "To Do")

	out = mustRun(t, cfg, "clear-completed")
	assert.Contains(t, out, "Cleared 1 completed task(s).")

	notes := idOf(t, mustRun(t, cfg, "list"), "Revise notes")
	out = mustRun(t, cfg, "rm", notes)
	assert.Contains(t, out, `Deleted "Revise notes".`)

	listing = mustRun(t, cfg, "list", "--sort", "created")
	assert.Contains(t, listing, "To Do (0)")
	assert.Contains(t, listing, "In Progress (0)")
}

func TestArgumentValidation(t *testing.T) {
	cfg := newTestConfig(t)

	_, err := run(t, cfg, "", "add", "   ")
	assert.Error(t, err)

	_, err = run(t, cfg, "", "add", "--lane", "someday", "x")
	assert.Error(t, err)

	_, err = run(t, cfg, "", "move", "abc", "sideways")
	assert.Error(t, err)

	_, err = run(t, cfg, "", "token")
	assert.EqualError(t, err, "--sub is required")
}

func TestResolveTask(t *testing.T) {
	tasks := []model.Task{
		{ID: "abc123", Title: "one"},
		{ID: "abd456", Title: "two"},
		{ID: "ab", Title: "exact"},
	}

	got, err := resolveTask(tasks, "abc")
	require.NoError(t, err)
	assert.Equal(t, "one", got.Title)

	got, err = resolveTask(tasks, "ab")
	require.NoError(t, err)
	assert.Equal(t, "exact", got.Title)

	_, err = resolveTask(tasks, "a")
	assert.ErrorContains(t, err, "matches 3 tasks")

	_, err = resolveTask(tasks, "zzz")
	assert.ErrorIs(t, err, taskstore.ErrTaskNotFound)
}

func TestConfigCommands(t *testing.T) {
	cfg := newTestConfig(t)

	out := mustRun(t, cfg, "config", "path")
	assert.Equal(t, cfg+"\n", out)

	out = mustRun(t, cfg, "config", "show")
	assert.Regexp(t, `session\.keyring_backend\s+file`, out)
	assert.Regexp(t, `server\.jwt_secret\s+\(set\)`, out)
	assert.NotContains(t, out, testSecret)
}
