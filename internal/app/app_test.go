package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/model"
	appsync "github.com/nhle/taskboard/internal/sync"
	"github.com/nhle/taskboard/internal/taskstore"
	"github.com/nhle/taskboard/internal/ui/board"
	"github.com/nhle/taskboard/internal/ui/command"
	"github.com/nhle/taskboard/internal/ui/taskform"
)

type memCollection struct {
	mu    sync.Mutex
	tasks map[string]model.Task
	next  int
}

func (c *memCollection) ListTasks(ctx context.Context) ([]model.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (c *memCollection) CreateTask(ctx context.Context, title string, lane model.Lane) (model.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	now := time.Date(2026, 1, 1, 9, c.next, 0, 0, time.UTC)
	t := model.Task{ID: fmt.Sprintf("t%d", c.next), Title: title, Status: lane, CreatedAt: now, UpdatedAt: now}
	c.tasks[t.ID] = t
	return t, nil
}

func (c *memCollection) UpdateTask(ctx context.Context, id, title string, lane model.Lane) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tasks[id]
	if !ok {
		return fmt.Errorf("no task %s", id)
	}
	t.Title, t.Status = title, lane
	c.tasks[id] = t
	return nil
}

func (c *memCollection) DeleteTask(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tasks, id)
	return nil
}

type staticSession struct {
	principal *model.Principal
}

func (s staticSession) HasToken() bool { return s.principal != nil }

func (s staticSession) Principal() (model.Principal, error) {
	if s.principal == nil {
		return model.Principal{}, fmt.Errorf("no session")
	}
	return *s.principal, nil
}

func newTestModel(t *testing.T, session staticSession) (Model, *memCollection) {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	log := logrus.NewEntry(l)

	coll := &memCollection{tasks: map[string]model.Task{}}
	store := taskstore.New(coll, session, log)
	store.Refresh(context.Background())
	w := appsync.New(store, session, time.Hour, log)

	m := New(store, w, session, board.SortUpdated, log)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return next.(Model), coll
}

func signedIn() staticSession {
	return staticSession{principal: &model.Principal{ID: "u1", Name: "Ada", Role: model.RoleStudent}}
}

// step feeds msg to the model and runs the resulting command once.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m, nil
	}
	return m, cmd()
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCreateFromForm(t *testing.T) {
	m, coll := newTestModel(t, signedIn())

	m, _ = step(t, m, board.NewTaskMsg{Lane: model.LaneInProgress})
	assert.Equal(t, ViewForm, m.currentView)

	m, done := step(t, m, taskform.SubmitMsg{Title: "Read chapter 3", Lane: model.LaneInProgress})
	assert.Equal(t, ViewBoard, m.currentView)
	require.IsType(t, opDoneMsg{}, done)

	m, _ = step(t, m, done)
	assert.Equal(t, 0, m.pending)
	assert.Equal(t, "create done", m.flash)
	assert.Len(t, coll.tasks, 1)
	assert.Contains(t, m.View(), "Read chapter 3")
}

func TestMoveRunsAgainstStore(t *testing.T) {
	m, coll := newTestModel(t, signedIn())
	_, err := coll.CreateTask(context.Background(), "Essay", model.LaneBacklog)
	require.NoError(t, err)
	m.store.Refresh(context.Background())
	m.board.Reload()

	m, msg := step(t, m, runes("]"))
	require.Equal(t, board.MoveMsg{TaskID: "t1", Dir: model.Forward}, msg)

	m, done := step(t, m, msg)
	m, _ = step(t, m, done)
	assert.Equal(t, model.LaneInProgress, coll.tasks["t1"].Status)
	assert.Equal(t, "move done", m.flash)
}

func TestClearCompletedNeedsConfirmation(t *testing.T) {
	m, coll := newTestModel(t, signedIn())

	m, _ = step(t, m, board.ClearCompletedMsg{})
	assert.Equal(t, "nothing to clear", m.flash)
	assert.Equal(t, ViewBoard, m.currentView)

	_, err := coll.CreateTask(context.Background(), "Done thing", model.LaneComplete)
	require.NoError(t, err)
	m.store.Refresh(context.Background())

	m, _ = step(t, m, board.ClearCompletedMsg{})
	require.Equal(t, ViewConfirmClear, m.currentView)
	assert.Contains(t, m.hints(), "Delete 1 completed task(s)?")

	m, _ = step(t, m, runes("n"))
	assert.Equal(t, ViewBoard, m.currentView)
	assert.Len(t, coll.tasks, 1)

	m, _ = step(t, m, board.ClearCompletedMsg{})
	m, done := step(t, m, runes("y"))
	m, _ = step(t, m, done)
	assert.Empty(t, coll.tasks)
	assert.Empty(t, m.store.ByStatus(model.LaneComplete))
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t, signedIn())

	m, _ = step(t, m, runes("?"))
	assert.Equal(t, ViewHelp, m.currentView)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m, _ = step(t, m, runes("?"))
	assert.Equal(t, ViewBoard, m.currentView)
}

func TestQuitStopsWatcher(t *testing.T) {
	m, _ := newTestModel(t, signedIn())

	_, msg := step(t, m, runes("q"))
	assert.Equal(t, tea.Quit(), msg)
}

func TestHeaderReflectsSession(t *testing.T) {
	m, _ := newTestModel(t, staticSession{})
	assert.Contains(t, m.View(), "not signed in")

	m, _ = newTestModel(t, signedIn())
	assert.Contains(t, m.View(), "Ada (student)")

	admin := staticSession{principal: &model.Principal{ID: "a1", Name: "Root", Role: model.RoleAdmin}}
	m, _ = newTestModel(t, admin)
	assert.Contains(t, m.View(), "task board unavailable")
}

func TestPaletteCommands(t *testing.T) {
	m, coll := newTestModel(t, signedIn())

	m, done := step(t, m, commandMsg("new", "Quick task"))
	require.IsType(t, opDoneMsg{}, done)
	m, _ = step(t, m, done)
	assert.Len(t, coll.tasks, 1)

	m, _ = step(t, m, commandMsg("sort", "created"))
	assert.Equal(t, board.SortCreated, m.board.Sort())

	m, _ = step(t, m, commandMsg("frobnicate", ""))
	assert.True(t, m.flashErr)
}

func commandMsg(name, args string) tea.Msg {
	return command.CommandMsg{Name: name, Args: args}
}

func TestDetailPanel(t *testing.T) {
	m, coll := newTestModel(t, signedIn())

	m, _ = step(t, m, runes("i"))
	assert.Equal(t, ViewBoard, m.currentView, "no card selected")

	_, err := coll.CreateTask(context.Background(), "Essay", model.LaneBacklog)
	require.NoError(t, err)
	m.store.Refresh(context.Background())
	m.board.Reload()

	m, _ = step(t, m, runes("i"))
	require.Equal(t, ViewDetail, m.currentView)
	assert.Contains(t, m.View(), "Essay")
	assert.Contains(t, m.View(), "t1")

	m, msg := step(t, m, runes("]"))
	require.Equal(t, board.MoveMsg{TaskID: "t1", Dir: model.Forward}, msg)
	m, done := step(t, m, msg)
	m, _ = step(t, m, done)
	shown, ok := m.detailView.Task()
	require.True(t, ok)
	assert.Equal(t, model.LaneInProgress, shown.Status)

	m, msg = step(t, m, runes("d"))
	require.IsType(t, board.DeleteMsg{}, msg)
	m, done = step(t, m, msg)
	assert.Equal(t, ViewBoard, m.currentView)
	m, _ = step(t, m, done)
	assert.Empty(t, coll.tasks)
}
