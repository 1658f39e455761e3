package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/credential"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/tests/testutil"
)

var testSecret = []byte("test-secret")

func newTestServer(t *testing.T) *Server {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	s, err := New(testutil.NewTestStore(t), testSecret, logrus.NewEntry(l))
	require.NoError(t, err)
	return s
}

func tokenFor(t *testing.T, id string, role model.Role) string {
	t.Helper()
	token, err := credential.IssueToken(testSecret, model.Principal{ID: id, Role: role}, time.Hour)
	require.NoError(t, err)
	return token
}

func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(testutil.NewTestStore(t), nil, nil)
	assert.Error(t, err)
}

func TestHealthzIsPublic(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	health := decode[api.HealthResponse](t, rec)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 2, health.SchemaVersion)
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	forged, err := credential.IssueToken([]byte("wrong"), model.Principal{ID: "u1", Role: model.RoleStudent}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"forged signature", "Bearer " + forged, http.StatusUnauthorized},
		{"admin role", "Bearer " + tokenFor(t, "a1", model.RoleAdmin), http.StatusForbidden},
		{"student", "Bearer " + tokenFor(t, "u1", model.RoleStudent), http.StatusOK},
		{"teacher", "Bearer " + tokenFor(t, "u2", model.RoleTeacher), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want != http.StatusOK {
				assert.NotEmpty(t, decode[api.ErrorResponse](t, rec).Error)
			}
		})
	}
}

func TestTaskLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := tokenFor(t, "u1", model.RoleStudent)

	rec := do(t, s, http.MethodPost, "/tasks", token, api.CreateTaskRequest{Title: "Lab report"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[api.TaskRecord](t, rec)
	assert.Equal(t, "todo", created.Status)
	assert.Equal(t, "u1", created.UserID)

	rec = do(t, s, http.MethodPut, "/tasks", token, api.UpdateTaskRequest{
		ID: created.ID, Title: "Lab report", Status: "in-progress",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "in-progress", decode[api.TaskRecord](t, rec).Status)

	rec = do(t, s, http.MethodGet, "/tasks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]api.TaskRecord](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "in-progress", list[0].Status)

	rec = do(t, s, http.MethodGet, "/tasks/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lab report", decode[api.TaskRecord](t, rec).Title)

	rec = do(t, s, http.MethodGet, "/tasks/"+created.ID, tokenFor(t, "u2", model.RoleStudent), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodDelete, "/tasks/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodDelete, "/tasks/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTasksAreScopedToPrincipal(t *testing.T) {
	s := newTestServer(t)
	alice := tokenFor(t, "alice", model.RoleStudent)
	bob := tokenFor(t, "bob", model.RoleTeacher)

	rec := do(t, s, http.MethodPost, "/tasks", alice, api.CreateTaskRequest{Title: "Alice's", Status: "todo"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[api.TaskRecord](t, rec).ID

	rec = do(t, s, http.MethodGet, "/tasks", bob, nil)
	assert.Empty(t, decode[[]api.TaskRecord](t, rec))

	rec = do(t, s, http.MethodPut, "/tasks", bob, api.UpdateTaskRequest{ID: id, Title: "Bob's", Status: "done"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodDelete, "/tasks/"+id, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidation(t *testing.T) {
	s := newTestServer(t)
	token := tokenFor(t, "u1", model.RoleStudent)

	tests := []struct {
		name   string
		method string
		body   any
	}{
		{"blank title", http.MethodPost, api.CreateTaskRequest{Title: "  ", Status: "todo"}},
		{"client lane name", http.MethodPost, api.CreateTaskRequest{Title: "x", Status: "in_progress"}},
		{"update without id", http.MethodPut, api.UpdateTaskRequest{Title: "x", Status: "done"}},
		{"unknown field", http.MethodPost, map[string]string{"title": "x", "priority": "high"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, "/tasks", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/projects", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
