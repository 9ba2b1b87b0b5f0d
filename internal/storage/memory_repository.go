package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryRepository keeps tasks in a slice. It is safe for concurrent use.
type MemoryRepository struct {
	mu    sync.Mutex
	tasks []Task
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) CreateTask(ctx context.Context, in Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(in.ID) >= 0 {
		return fmt.Errorf("storage: task %s already exists", in.ID)
	}
	r.tasks = append(r.tasks, in)
	return nil
}

func (r *MemoryRepository) GetTask(ctx context.Context, id string) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	return r.tasks[i], nil
}

func (r *MemoryRepository) UpdateTask(ctx context.Context, in Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(in.ID)
	if i < 0 {
		return ErrNotFound
	}
	// Creation metadata belongs to the stored row.
	in.CreatedAt = r.tasks[i].CreatedAt
	r.tasks[i] = in
	return nil
}

func (r *MemoryRepository) DeleteTask(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	return nil
}

func (r *MemoryRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if filter.matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *MemoryRepository) indexOf(id string) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
