// Package server implements the remote task collection over HTTP. It
// backs local development and end-to-end tests of the client.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/store"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 5 * time.Second

// Server routes the task collection endpoints to a TaskStore.
type Server struct {
	tasks  store.TaskStore
	secret []byte
	log    *logrus.Entry
	router *mux.Router
}

// New creates a Server. secret verifies HS256 bearer tokens and must not
// be empty.
func New(tasks store.TaskStore, secret []byte, log *logrus.Entry) (*Server, error) {
	if len(secret) == 0 {
		return nil, errors.New("server: jwt secret is required")
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	s := &Server{
		tasks:  tasks,
		secret: secret,
		log:    log.WithField("component", "server"),
		router: mux.NewRouter(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)
	s.router.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)

	tasks := s.router.PathPrefix("/tasks").Subrouter()
	tasks.Use(s.authenticate)
	tasks.HandleFunc("", s.listTasks).Methods(http.MethodGet)
	tasks.HandleFunc("", s.createTask).Methods(http.MethodPost)
	tasks.HandleFunc("", s.updateTask).Methods(http.MethodPut)
	tasks.HandleFunc("/{taskID}", s.getTask).Methods(http.MethodGet)
	tasks.HandleFunc("/{taskID}", s.deleteTask).Methods(http.MethodDelete)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
