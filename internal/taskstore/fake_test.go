package taskstore

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/credential"
	"github.com/nhle/taskboard/internal/model"
)

// fakeCollection is an in-memory remote collection with failure injection.
type fakeCollection struct {
	mu     sync.Mutex
	tasks  map[string]model.Task
	nextID int
	clock  time.Time

	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int

	listErr   error
	createErr error
	updateErr error
	deleteErr map[string]error

	// onList runs after a List snapshot is taken, before it is returned.
	onList func(call int)
	// onUpdate runs before an update is applied.
	onUpdate func(id string)
	// onDelete runs before a delete is applied.
	onDelete func(id string)
}

func newFakeCollection() *fakeCollection {
	return &fakeCollection{
		tasks:     make(map[string]model.Task),
		clock:     time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
		deleteErr: make(map[string]error),
	}
}

func (f *fakeCollection) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

// seed inserts a task directly, bypassing the store.
func (f *fakeCollection) seed(title string, lane model.Lane) model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	now := f.tick()
	t := model.Task{
		ID:        fmt.Sprintf("t%d", f.nextID),
		Title:     title,
		Status:    lane,
		OwnerID:   "u1",
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.tasks[t.ID] = t
	return t
}

// setRemote changes a task as another client would.
func (f *fakeCollection) setRemote(id string, lane model.Lane) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := f.tasks[id]
	t.Status = lane
	t.UpdatedAt = f.tick()
	f.tasks[id] = t
}

func (f *fakeCollection) snapshot() []model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]model.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeCollection) calls() (list, create, update, del int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.createCalls, f.updateCalls, f.deleteCalls
}

func (f *fakeCollection) ListTasks(ctx context.Context) ([]model.Task, error) {
	f.mu.Lock()
	f.listCalls++
	call := f.listCalls
	err := f.listErr
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	out := f.snapshot()
	if f.onList != nil {
		f.onList(call)
	}
	return out, nil
}

func (f *fakeCollection) CreateTask(ctx context.Context, title string, lane model.Lane) (model.Task, error) {
	f.mu.Lock()
	f.createCalls++
	err := f.createErr
	f.mu.Unlock()

	if err != nil {
		return model.Task{}, err
	}
	return f.seed(title, lane), nil
}

func (f *fakeCollection) UpdateTask(ctx context.Context, id, title string, lane model.Lane) error {
	f.mu.Lock()
	f.updateCalls++
	err := f.updateErr
	f.mu.Unlock()

	if f.onUpdate != nil {
		f.onUpdate(id)
	}
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}
	t.Title = title
	t.Status = lane
	t.UpdatedAt = f.tick()
	f.tasks[id] = t
	return nil
}

func (f *fakeCollection) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	f.deleteCalls++
	err := f.deleteErr[id]
	f.mu.Unlock()

	if f.onDelete != nil {
		f.onDelete(id)
	}
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tasks, id)
	return nil
}

// fakeSession is a session with a fixed principal.
type fakeSession struct {
	mu       sync.Mutex
	hasToken bool
	role     model.Role
}

func (s *fakeSession) HasToken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasToken
}

func (s *fakeSession) Principal() (model.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasToken {
		return model.Principal{}, credential.ErrNoToken
	}
	return model.Principal{ID: "u1", Name: "Ada", Role: s.role}, nil
}

func (s *fakeSession) set(hasToken bool, role model.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasToken = hasToken
	s.role = role
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestStore(t *testing.T) (*Store, *fakeCollection, *fakeSession) {
	t.Helper()
	coll := newFakeCollection()
	sess := &fakeSession{hasToken: true, role: model.RoleStudent}
	return New(coll, sess, quietLogger()), coll, sess
}
