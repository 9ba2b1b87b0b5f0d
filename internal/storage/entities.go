package storage

import (
	"time"

	"github.com/sandeepkv93/todosync/internal/model"
)

type Task struct {
	ID          string
	Title       string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// Item is the wire view of the task.
func (t Task) Item() model.Item {
	return model.Item{ID: t.ID, Title: t.Title, Completed: t.Completed}
}

// SetCompleted flips the flag and keeps CompletedAt in step with it.
func (t *Task) SetCompleted(done bool, now time.Time) {
	if done == t.Completed {
		return
	}
	t.Completed = done
	if done {
		at := now
		t.CompletedAt = &at
		return
	}
	t.CompletedAt = nil
}

// TaskListFilter narrows ListTasks. The zero value lists everything.
type TaskListFilter struct {
	Completed *bool
}

func (f TaskListFilter) matches(t Task) bool {
	return f.Completed == nil || *f.Completed == t.Completed
}
