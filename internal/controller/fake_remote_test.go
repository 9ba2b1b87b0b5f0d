package controller

import (
	"context"
	"fmt"

	"github.com/sandeepkv93/todosync/internal/model"
)

type call struct {
	Method string
	ID     string
	Item   model.Item
	Patch  model.Patch
}

// fakeRemote is an in-memory collection that records every call. Setting
// one of the fail fields makes the next matching call return it.
type fakeRemote struct {
	items  []model.Item
	nextID int
	calls  []call

	failList   error
	failCreate error
	failUpdate error
	failDelete error
}

func (f *fakeRemote) ListTasks(ctx context.Context) ([]model.Item, error) {
	f.calls = append(f.calls, call{Method: "GET"})
	if err := f.failList; err != nil {
		f.failList = nil
		return nil, err
	}
	out := make([]model.Item, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeRemote) CreateTask(ctx context.Context, item model.Item) (model.Item, error) {
	f.calls = append(f.calls, call{Method: "POST", Item: item})
	if err := f.failCreate; err != nil {
		f.failCreate = nil
		return model.Item{}, err
	}
	f.nextID++
	created := item.Draft()
	created.ID = fmt.Sprint(f.nextID)
	f.items = append(f.items, created)
	return created, nil
}

func (f *fakeRemote) UpdateTask(ctx context.Context, id string, patch model.Patch) (model.Item, error) {
	f.calls = append(f.calls, call{Method: "PATCH", ID: id, Patch: patch})
	if err := f.failUpdate; err != nil {
		f.failUpdate = nil
		return model.Item{}, err
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i] = patch.ApplyTo(f.items[i])
			return f.items[i], nil
		}
	}
	return model.Item{}, fmt.Errorf("fake: %s not found", id)
}

func (f *fakeRemote) DeleteTask(ctx context.Context, id string) error {
	f.calls = append(f.calls, call{Method: "DELETE", ID: id})
	if err := f.failDelete; err != nil {
		f.failDelete = nil
		return err
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("fake: %s not found", id)
}

func (f *fakeRemote) count(method string) int {
	n := 0
	for _, c := range f.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}
