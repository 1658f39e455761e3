// Package store persists the reference task API's collection in SQLite.
package store

import (
	"context"
	"errors"

	"github.com/nhle/taskboard/internal/api"
)

// ErrNotFound is returned when a task does not exist for the given owner.
var ErrNotFound = errors.New("task not found")

// TaskStore is the persistence interface behind the reference task API.
// Every operation is scoped to a single owner.
type TaskStore interface {
	ListTasks(ctx context.Context, userID string) ([]api.TaskRecord, error)
	GetTask(ctx context.Context, userID, id string) (*api.TaskRecord, error)
	CreateTask(ctx context.Context, userID, title, status string) (*api.TaskRecord, error)
	UpdateTask(ctx context.Context, userID string, rec api.TaskRecord) (*api.TaskRecord, error)
	DeleteTask(ctx context.Context, userID, id string) error
	SchemaVersion(ctx context.Context) (int, error)
	Close() error
}
