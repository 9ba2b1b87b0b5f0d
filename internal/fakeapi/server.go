// Package fakeapi serves the task collection routes over a storage
// repository. It backs the integration tests and `todosync fake-server`.
package fakeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/sandeepkv93/todosync/internal/logging"
	"github.com/sandeepkv93/todosync/internal/model"
	"github.com/sandeepkv93/todosync/internal/storage"
)

const maxBodyBytes = 1 << 20

type Options struct {
	Logger *slog.Logger
	Now    func() time.Time
	NewID  func() string
}

type Server struct {
	repo   storage.Repository
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
	router *mux.Router

	mu       sync.Mutex
	failures []int
}

func New(repo storage.Repository, opts Options) *Server {
	s := &Server{
		repo:   repo,
		logger: opts.Logger,
		now:    opts.Now,
		newID:  opts.NewID,
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}

	r := mux.NewRouter()
	r.Use(s.logRequests, s.injectFailures)
	r.Methods(http.MethodGet).Path("/api/v1/tasks").HandlerFunc(s.listTasks)
	r.Methods(http.MethodGet).Path("/api/v1/tasks/").HandlerFunc(s.listTasks)
	r.Methods(http.MethodPost).Path("/api/v1/tasks/").HandlerFunc(s.createTask)
	r.Methods(http.MethodPost).Path("/api/v1/tasks").HandlerFunc(s.createTask)
	r.Methods(http.MethodPatch).Path("/api/v1/tasks/{id}/").HandlerFunc(s.updateTask)
	r.Methods(http.MethodPatch).Path("/api/v1/tasks/{id}").HandlerFunc(s.updateTask)
	r.Methods(http.MethodDelete).Path("/api/v1/tasks/{id}/").HandlerFunc(s.deleteTask)
	r.Methods(http.MethodDelete).Path("/api/v1/tasks/{id}").HandlerFunc(s.deleteTask)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, "no such route")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// FailNext makes the next request answer with status instead of being
// handled. Calls queue up.
func (s *Server) FailNext(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, status)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{Addr: addr, Handler: s, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("fake collection server listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("fakeapi: shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.logger.Info("handled", "method", r.Method, "url", r.URL.String(), "duration", m.Duration, "status", m.Code, "bytes", m.Written)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status, ok := s.popFailure(); ok {
			writeError(w, status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) popFailure() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.failures) == 0 {
		return 0, false
	}
	status := s.failures[0]
	s.failures = s.failures[1:]
	return status, true
}

// listTasks answers GET with the whole collection, or with the completed or
// pending part when ?completed=true|false is given.
func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	var filter storage.TaskListFilter
	if raw := r.URL.Query().Get("completed"); raw != "" {
		done, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid completed filter %q", raw))
			return
		}
		filter.Completed = &done
	}
	tasks, err := s.repo.ListTasks(r.Context(), filter)
	if err != nil {
		s.internalError(w, "list tasks", err)
		return
	}
	items := make([]model.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, t.Item())
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": items})
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var in model.Item
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	now := s.now().UTC()
	task := storage.Task{
		ID:        s.newID(),
		Title:     in.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	task.SetCompleted(in.Completed, now)
	if err := s.repo.CreateTask(r.Context(), task); err != nil {
		s.internalError(w, "create task", err)
		return
	}
	writeJSON(w, http.StatusCreated, task.Item())
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var patch model.Patch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	task, err := s.repo.GetTask(r.Context(), id)
	if err != nil {
		s.lookupError(w, id, err)
		return
	}
	now := s.now().UTC()
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Completed != nil {
		task.SetCompleted(*patch.Completed, now)
	}
	task.UpdatedAt = now
	if err := s.repo.UpdateTask(r.Context(), task); err != nil {
		s.lookupError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, task.Item())
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.repo.DeleteTask(r.Context(), id); err != nil {
		s.lookupError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookupError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("task %s not found", id))
		return
	}
	s.internalError(w, "task lookup", err)
}

func (s *Server) internalError(w http.ResponseWriter, what string, err error) {
	s.logger.Error(what+" failed", "err", err)
	writeError(w, http.StatusInternalServerError, what+" failed")
}

func decodeBody(r *http.Request, into any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(into); err != nil {
		return fmt.Errorf("invalid body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
