package taskstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/nhle/taskboard/internal/model"
)

// ClearCompleted deletes every task currently in the Complete lane. The
// deletes are issued concurrently and all of them are awaited; one failure
// does not stop the others. Ids whose delete succeeded are removed from
// the mirror directly, without a full refresh. Failed ids stay in the
// mirror and their errors are returned together.
func (s *Store) ClearCompleted(ctx context.Context) error {
	if err := s.checkAccess(); err != nil {
		return err
	}

	completed := s.ByStatus(model.LaneComplete)
	if len(completed) == 0 {
		return nil
	}

	var (
		mu      sync.Mutex
		deleted = make(map[string]bool, len(completed))
	)

	p := pool.New().WithErrors().WithContext(ctx)
	for _, t := range completed {
		p.Go(func(ctx context.Context) error {
			if err := s.coll.DeleteTask(ctx, t.ID); err != nil {
				return err
			}
			mu.Lock()
			deleted[t.ID] = true
			mu.Unlock()
			return nil
		})
	}
	err := p.Wait()

	s.removeLocal(deleted)

	s.log.WithField("requested", len(completed)).
		WithField("deleted", len(deleted)).
		Debug("cleared completed tasks")

	if err != nil {
		s.log.WithError(err).Warn("some completed tasks were not deleted")
		return fmt.Errorf("clearing completed tasks: %w", err)
	}
	return nil
}

func (s *Store) removeLocal(ids map[string]bool) {
	if len(ids) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.tasks[:0:0]
	for _, t := range s.tasks {
		if !ids[t.ID] {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.changedLocked()
}
