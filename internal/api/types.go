// Package api holds the wire types of the remote task collection, shared
// by the HTTP client and the reference server.
package api

import "time"

// TaskRecord is a task as the remote collection stores and returns it.
// Status uses the remote vocabulary ("todo", "in-progress", "done").
type TaskRecord struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	UserID    string    `json:"user_id" db:"user_id"`
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

// UpdateTaskRequest is the body of PUT /tasks. The remote contract is a
// full-record replace, so the title is always sent.
type UpdateTaskRequest struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status        string `json:"status"`
	SchemaVersion int    `json:"schema_version,omitempty"`
}

// ErrorResponse is the JSON error body returned on non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
