package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// healthz reports liveness and the applied schema version.
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	version, err := s.tasks.SchemaVersion(r.Context())
	if err != nil {
		s.log.WithError(err).Warn("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok", SchemaVersion: version})
}

// getTask handles GET /tasks/{taskID}.
func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	task, err := s.tasks.GetTask(r.Context(), p.ID, mux.Vars(r)["taskID"])
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// listTasks handles GET /tasks.
func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	tasks, err := s.tasks.ListTasks(r.Context(), p.ID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// createTask handles POST /tasks.
func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req api.CreateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Status == "" {
		req.Status = string(model.RemoteTodo)
	}
	if msg := validate(req.Title, req.Status); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	p := principalFrom(r.Context())
	task, err := s.tasks.CreateTask(r.Context(), p.ID, strings.TrimSpace(req.Title), req.Status)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// updateTask handles PUT /tasks. The body carries the full record.
func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	if msg := validate(req.Title, req.Status); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	p := principalFrom(r.Context())
	task, err := s.tasks.UpdateTask(r.Context(), p.ID, api.TaskRecord{
		ID:     req.ID,
		Title:  strings.TrimSpace(req.Title),
		Status: req.Status,
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// deleteTask handles DELETE /tasks/{taskID}.
func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]
	p := principalFrom(r.Context())

	err := s.tasks.DeleteTask(r.Context(), p.ID, taskID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validate(title, status string) string {
	if strings.TrimSpace(title) == "" {
		return "title is required"
	}
	if !model.RemoteStatus(status).Known() {
		return "unknown status " + status
	}
	return ""
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return false
	}
	return true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.ErrorResponse{Error: msg})
}
