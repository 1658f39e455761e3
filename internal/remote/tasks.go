package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/model"
)

// ListTasks returns the authenticated principal's tasks with statuses
// converted to lanes.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var records []api.TaskRecord
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &records); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	tasks := make([]model.Task, len(records))
	for i, r := range records {
		tasks[i] = toTask(r)
	}
	return tasks, nil
}

// CreateTask asks the collection to create a task. The created record is
// returned but the store does not rely on it; it refreshes instead.
func (c *Client) CreateTask(
	ctx context.Context,
	title string,
	lane model.Lane,
) (model.Task, error) {
	req := api.CreateTaskRequest{
		Title:  title,
		Status: string(model.ToRemote(lane)),
	}

	var created api.TaskRecord
	if err := c.do(ctx, http.MethodPost, "/tasks", req, &created); err != nil {
		return model.Task{}, fmt.Errorf("creating task: %w", err)
	}
	return toTask(created), nil
}

// UpdateTask replaces the title and status of task id.
func (c *Client) UpdateTask(
	ctx context.Context,
	id string,
	title string,
	lane model.Lane,
) error {
	req := api.UpdateTaskRequest{
		ID:     id,
		Title:  title,
		Status: string(model.ToRemote(lane)),
	}
	if err := c.do(ctx, http.MethodPut, "/tasks", req, nil); err != nil {
		return fmt.Errorf("updating task %s: %w", id, err)
	}
	return nil
}

// DeleteTask removes task id.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	path := "/tasks/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}

func toTask(r api.TaskRecord) model.Task {
	return model.Task{
		ID:        r.ID,
		Title:     r.Title,
		Status:    model.ToLane(model.RemoteStatus(r.Status)),
		OwnerID:   r.UserID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
