package taskstore

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/model"
)

// Strategy names how a mutation reaches the mirror.
type Strategy int

const (
	// ConfirmThenSync sends the change and then refreshes; the mirror only
	// ever shows confirmed state.
	ConfirmThenSync Strategy = iota

	// OptimisticThenReconcile rewrites the mirror first, sends the change,
	// and refreshes afterwards so a rejected change is rolled back.
	OptimisticThenReconcile
)

func (s Strategy) String() string {
	switch s {
	case ConfirmThenSync:
		return "confirm_then_sync"
	case OptimisticThenReconcile:
		return "optimistic_then_reconcile"
	default:
		return "unknown"
	}
}

type mutation struct {
	name     string
	taskID   string
	strategy Strategy

	// reconcileOnFailure refreshes even when send fails.
	reconcileOnFailure bool

	// apply edits the local copy of taskID before send (optimistic only).
	apply func(*model.Task)
	send  func(ctx context.Context) error
}

// run executes m under its strategy. The send error is always returned to
// the caller after any reconciling refresh.
func (s *Store) run(ctx context.Context, m mutation) error {
	log := s.log.WithFields(logrus.Fields{
		"op":       m.name,
		"strategy": m.strategy,
	})
	if m.taskID != "" {
		log = log.WithField("task_id", m.taskID)
	}

	if m.strategy == OptimisticThenReconcile && m.apply != nil {
		s.applyLocal(m.taskID, m.apply)
	}

	if err := m.send(ctx); err != nil {
		if m.reconcileOnFailure {
			log.WithError(err).Warn("mutation failed, reconciling")
			s.Refresh(ctx)
		} else {
			log.WithError(err).Warn("mutation failed")
		}
		return err
	}

	log.Debug("mutation confirmed")
	s.Refresh(ctx)
	return nil
}

func (s *Store) applyLocal(id string, apply func(*model.Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			apply(&s.tasks[i])
			s.changedLocked()
			return
		}
	}
}
