package taskstore

import (
	"slices"

	"github.com/nhle/taskboard/internal/model"
)

// Tasks returns a copy of the mirror in no particular order.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.tasks)
}

// Task looks up a task in the mirror.
func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// ByStatus returns the tasks in lane, most recently updated first.
func (s *Store) ByStatus(lane model.Lane) []model.Task {
	out := s.filter(func(t model.Task) bool { return t.Status == lane })
	slices.SortStableFunc(out, func(a, b model.Task) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out
}

// ByStatusCreatedOrder returns the tasks in lane, most recently created
// first. It can disagree with ByStatus.
func (s *Store) ByStatusCreatedOrder(lane model.Lane) []model.Task {
	out := s.filter(func(t model.Task) bool { return t.Status == lane })
	slices.SortStableFunc(out, func(a, b model.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// Unlaned returns tasks whose remote status had no lane mapping.
func (s *Store) Unlaned() []model.Task {
	return s.filter(func(t model.Task) bool { return !t.Status.Valid() })
}

// SyncMarker increases every time the mirror changes.
func (s *Store) SyncMarker() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncMarker
}

// AccessGranted reports whether the current principal may use the board.
func (s *Store) AccessGranted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessGranted
}

// Authenticated is false after logout or a 401 from the API.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Err returns the error of the last refresh, or nil.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Store) filter(keep func(model.Task) bool) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Task
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
