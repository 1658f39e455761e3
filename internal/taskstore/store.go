package taskstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/remote"
)

var (
	// ErrTaskNotFound is returned when a mutation targets an id missing
	// from the current mirror.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAccessDenied is returned when there is no session or the
	// session's role is not entitled to the task board.
	ErrAccessDenied = errors.New("task board not available for this session")
)

// Collection is the remote task collection.
type Collection interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, title string, lane model.Lane) (model.Task, error)
	UpdateTask(ctx context.Context, id string, title string, lane model.Lane) error
	DeleteTask(ctx context.Context, id string) error
}

// Session exposes the authentication state the store is gated on.
type Session interface {
	HasToken() bool
	Principal() (model.Principal, error)
}

// Store is the authoritative client-side list of the principal's tasks.
// It is safe for concurrent use; the lock is never held across a remote call.
type Store struct {
	coll    Collection
	session Session
	log     *logrus.Entry

	mu            sync.RWMutex
	tasks         []model.Task
	syncMarker    uint64
	accessGranted bool
	authenticated bool
	err           error

	// issued and applied sequence refreshes so a response that completes
	// after a newer one has been applied is discarded.
	issued  uint64
	applied uint64

	updates chan struct{}
}

// New creates an empty Store. Call Refresh to populate it.
func New(coll Collection, session Session, log *logrus.Entry) *Store {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Store{
		coll:    coll,
		session: session,
		log:     log.WithField("component", "taskstore"),
		updates: make(chan struct{}, 1),
	}
}

// Updates delivers a signal whenever the mirror or session flags change.
// Signals coalesce; readers should re-read the store on each receive.
func (s *Store) Updates() <-chan struct{} {
	return s.updates
}

// Refresh fetches the principal's tasks and replaces the mirror wholesale.
//
// Without a session token, or for a role that is not entitled, the mirror
// is cleared and no request is made. A 403 clears the mirror silently; a
// 401 clears it and marks the session unauthenticated. Any other failure
// keeps the previous mirror and is recorded in Err.
func (s *Store) Refresh(ctx context.Context) {
	principal, err := s.currentPrincipal()
	if err != nil {
		s.reset(false)
		return
	}
	if !principal.Role.CanUseTasks() {
		s.log.WithField("role", principal.Role).Debug("role not entitled to tasks")
		s.reset(true)
		return
	}

	s.mu.Lock()
	s.authenticated = true
	s.accessGranted = true
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	tasks, err := s.coll.ListTasks(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.applied {
		s.log.WithField("seq", seq).Debug("discarding superseded refresh")
		return
	}
	s.applied = seq

	switch {
	case err == nil:
		s.tasks = tasks
		s.err = nil
		s.changedLocked()

	case remote.IsForbidden(err):
		s.clearLocked()
		s.accessGranted = false
		s.err = nil
		s.changedLocked()

	case remote.IsAuthError(err):
		s.log.WithError(err).Info("session rejected, clearing tasks")
		s.clearLocked()
		s.accessGranted = false
		s.authenticated = false
		s.err = nil
		s.changedLocked()

	default:
		s.log.WithError(err).Warn("refresh failed, keeping previous tasks")
		s.err = err
		s.notify()
	}
}

// Clear empties the mirror and drops session flags, for logout or loss of
// permission. Refreshes still in flight are discarded when they complete.
func (s *Store) Clear() {
	s.reset(false)
}

// Create asks the remote collection for a new task and refreshes so the
// server-assigned id and timestamps become visible. Title validation is
// the caller's job. On failure the mirror is left untouched.
func (s *Store) Create(ctx context.Context, title string, lane model.Lane) error {
	if lane == "" {
		lane = model.LaneBacklog
	}
	if err := s.checkAccess(); err != nil {
		return err
	}

	return s.run(ctx, mutation{
		name:     "create",
		strategy: ConfirmThenSync,
		send: func(ctx context.Context) error {
			_, err := s.coll.CreateTask(ctx, title, lane)
			return err
		},
	})
}

// SetStatus moves task id to lane, re-sending its current title. The
// mirror is refreshed whether or not the remote update succeeds.
func (s *Store) SetStatus(ctx context.Context, id string, lane model.Lane) error {
	if err := s.checkAccess(); err != nil {
		return err
	}
	task, ok := s.Task(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	return s.run(ctx, mutation{
		name:               "set_status",
		taskID:             id,
		strategy:           ConfirmThenSync,
		reconcileOnFailure: true,
		send: func(ctx context.Context) error {
			return s.coll.UpdateTask(ctx, id, task.Title, lane)
		},
	})
}

// Move steps task id one lane in direction d. Moving past either end of
// the board is a no-op.
func (s *Store) Move(ctx context.Context, id string, d model.Direction) error {
	task, ok := s.Task(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	next := task.Status.Step(d)
	if next == task.Status {
		return nil
	}
	return s.SetStatus(ctx, id, next)
}

// Position is a card slot on the board.
type Position struct {
	Lane  model.Lane
	Index int
}

// DragResult describes a completed drag-and-drop gesture.
type DragResult struct {
	TaskID string
	Source Position
	Target Position
}

// DragEnd applies a drop. The card's lane is rewritten locally before the
// remote update is sent; if the update fails the mirror is refreshed to
// discard the guess. Dropping a card back where it started, or outside
// any lane, does nothing.
func (s *Store) DragEnd(ctx context.Context, d DragResult) error {
	if d.Target.Lane == "" || d.Target == d.Source {
		return nil
	}
	if err := s.checkAccess(); err != nil {
		return err
	}
	task, ok := s.Task(d.TaskID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, d.TaskID)
	}

	target := d.Target.Lane
	return s.run(ctx, mutation{
		name:               "drag",
		taskID:             task.ID,
		strategy:           OptimisticThenReconcile,
		reconcileOnFailure: true,
		apply: func(t *model.Task) {
			t.Status = target
		},
		send: func(ctx context.Context) error {
			return s.coll.UpdateTask(ctx, task.ID, task.Title, target)
		},
	})
}

// Delete removes task id remotely and refreshes regardless of outcome.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.checkAccess(); err != nil {
		return err
	}

	return s.run(ctx, mutation{
		name:               "delete",
		taskID:             id,
		strategy:           ConfirmThenSync,
		reconcileOnFailure: true,
		send: func(ctx context.Context) error {
			return s.coll.DeleteTask(ctx, id)
		},
	})
}

// currentPrincipal wraps ErrAccessDenied around the session error, so
// callers can still tell a missing token from an unreadable one.
func (s *Store) currentPrincipal() (model.Principal, error) {
	p, err := s.session.Principal()
	if err != nil {
		if s.session.HasToken() {
			s.log.WithError(err).Warn("unreadable session profile")
		}
		return model.Principal{}, fmt.Errorf("%w: %w", ErrAccessDenied, err)
	}
	return p, nil
}

func (s *Store) checkAccess() error {
	p, err := s.currentPrincipal()
	if err != nil {
		return err
	}
	if !p.Role.CanUseTasks() {
		return fmt.Errorf("%w: role %q", ErrAccessDenied, p.Role)
	}
	return nil
}

// reset clears the mirror and access flags and invalidates in-flight refreshes.
func (s *Store) reset(authenticated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked()
	s.applied = s.issued + 1
	s.issued = s.applied
	s.accessGranted = false
	s.authenticated = authenticated
	s.err = nil
	s.changedLocked()
}

func (s *Store) clearLocked() {
	s.tasks = nil
}

// changedLocked bumps the sync marker and signals watchers. s.mu must be held.
func (s *Store) changedLocked() {
	s.syncMarker++
	s.notify()
}

func (s *Store) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}
