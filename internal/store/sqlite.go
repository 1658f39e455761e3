package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/taskboard/internal/api"
)

// SQLiteStore implements TaskStore using a local SQLite database.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ TaskStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Each connection to ":memory:" is its own database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration version.
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.GetContext(ctx, &v, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

const taskColumns = "id, user_id, title, status, created_at, updated_at"

// ListTasks returns the owner's tasks, most recently updated first.
func (s *SQLiteStore) ListTasks(ctx context.Context, userID string) ([]api.TaskRecord, error) {
	tasks := []api.TaskRecord{}
	err := s.db.SelectContext(ctx, &tasks,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = ? ORDER BY updated_at DESC, id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tasks for %s: %w", userID, err)
	}
	return tasks, nil
}

// GetTask retrieves a single task owned by userID.
func (s *SQLiteStore) GetTask(ctx context.Context, userID, id string) (*api.TaskRecord, error) {
	var t api.TaskRecord
	err := s.db.GetContext(ctx, &t,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ? AND user_id = ?",
		id, userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return &t, nil
}

// CreateTask inserts a new task with a generated id and returns it.
func (s *SQLiteStore) CreateTask(ctx context.Context, userID, title, status string) (*api.TaskRecord, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("task title must not be empty")
	}

	now := s.now()
	t := api.TaskRecord{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (:id, :user_id, :title, :status, :created_at, :updated_at)`,
		t,
	)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return &t, nil
}

// UpdateTask replaces the title and status of an existing task and bumps
// its updated_at. The creation time and owner are preserved.
func (s *SQLiteStore) UpdateTask(ctx context.Context, userID string, rec api.TaskRecord) (*api.TaskRecord, error) {
	if strings.TrimSpace(rec.Title) == "" {
		return nil, fmt.Errorf("task title must not be empty")
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, status = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		rec.Title, rec.Status, s.now(), rec.ID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating task %s: %w", rec.ID, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rec.ID)
	}
	return s.GetTask(ctx, userID, rec.ID)
}

// DeleteTask removes a task owned by userID.
func (s *SQLiteStore) DeleteTask(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM tasks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
