package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// SyncState represents the current state of the board's sync with the API.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncRunning:
		return "syncing"
	case SyncError:
		return "error"
	default:
		return "idle"
	}
}

// SyncStatus is a snapshot of the watcher's state.
type SyncStatus struct {
	State    SyncState
	SignedIn bool
	LastSync time.Time
	Error    error
}

// SyncResultMsg is a tea.Msg sent after a session transition or a
// refresh triggered through the watcher.
type SyncResultMsg struct {
	SignedIn bool
	Error    error
}

// refreshTimeout is the maximum time allowed for a single refresh.
const refreshTimeout = 30 * time.Second

// Mirror is the store the watcher keeps in step with the session.
type Mirror interface {
	Refresh(ctx context.Context)
	Clear()
	Err() error
}

// TokenChecker reports whether a session credential is present.
type TokenChecker interface {
	HasToken() bool
}

// Watcher polls for a session credential and refreshes or clears the
// mirror when the user logs in or out. It is the only timer-driven
// activity in the client and must be stopped with its owner.
type Watcher struct {
	mirror   Mirror
	session  TokenChecker
	interval time.Duration
	log      *logrus.Entry

	resultCh  chan SyncResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}

	mu       gosync.Mutex
	running  bool
	stopped  bool
	known    bool
	signedIn bool
	status   SyncStatus
}

// New creates a Watcher. A non-positive interval defaults to one second.
func New(m Mirror, session TokenChecker, interval time.Duration, log *logrus.Entry) *Watcher {
	if interval <= 0 {
		interval = time.Second
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Watcher{
		mirror:    m,
		session:   session,
		interval:  interval,
		log:       log.WithField("component", "watcher"),
		resultCh:  make(chan SyncResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the polling goroutine and returns a tea.Cmd that
// delivers the first SyncResultMsg.
func (w *Watcher) Start() tea.Cmd {
	w.mu.Lock()
	if w.running || w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	go w.loop()

	return w.waitForResult()
}

// Stop halts the polling goroutine and waits for it to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.stopped = true
		w.mu.Unlock()
		return
	}
	w.running = false
	w.stopped = true
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh
}

// RefreshNow asks the watcher to refresh the mirror immediately.
func (w *Watcher) RefreshNow() tea.Cmd {
	select {
	case w.triggerCh <- struct{}{}:
	default:
		// A refresh is already pending.
	}
	return nil
}

// Status returns the current sync status.
func (w *Watcher) Status() SyncStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// WaitForNextResult returns a tea.Cmd that waits for the next result.
// Call it after handling each SyncResultMsg to keep listening.
func (w *Watcher) WaitForNextResult() tea.Cmd {
	return w.waitForResult()
}

// Results exposes the result channel for callers outside Bubble Tea.
func (w *Watcher) Results() <-chan SyncResultMsg {
	return w.resultCh
}

func (w *Watcher) loop() {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.check()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.check()
		case <-w.triggerCh:
			if w.isSignedIn() {
				w.refresh()
			}
		}
	}
}

// check compares credential presence with the last observation and acts
// on login/logout transitions only.
func (w *Watcher) check() {
	has := w.session.HasToken()

	w.mu.Lock()
	changed := !w.known || has != w.signedIn
	w.known = true
	w.signedIn = has
	w.status.SignedIn = has
	w.mu.Unlock()

	if !changed {
		return
	}

	if has {
		w.log.Info("session detected, loading tasks")
		w.refresh()
		return
	}

	w.log.Info("no session, clearing tasks")
	w.mirror.Clear()
	w.setStatus(SyncIdle, nil)
	w.sendResult(SyncResultMsg{SignedIn: false})
}

func (w *Watcher) refresh() {
	w.setStatus(SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	w.mirror.Refresh(ctx)
	err := w.mirror.Err()
	if err != nil {
		w.setStatus(SyncError, err)
	} else {
		w.setStatus(SyncIdle, nil)
	}
	w.sendResult(SyncResultMsg{SignedIn: w.isSignedIn(), Error: err})
}

func (w *Watcher) isSignedIn() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.signedIn
}

func (w *Watcher) setStatus(state SyncState, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.status.State = state
	w.status.Error = err
	if state == SyncIdle && err == nil {
		w.status.LastSync = time.Now()
	}
}

// sendResult sends on the result channel without blocking.
func (w *Watcher) sendResult(msg SyncResultMsg) {
	select {
	case w.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the watcher
	}
}

func (w *Watcher) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case result := <-w.resultCh:
			return result
		case <-w.doneCh:
			return nil
		}
	}
}
