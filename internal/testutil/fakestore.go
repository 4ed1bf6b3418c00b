// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"
	"time"

	"optitask/internal/backend/memstore"
	"optitask/internal/service"
)

// Epoch is the fixed clock used by NewFakeStore.
var Epoch = time.Date(2026, 10, 19, 10, 30, 0, 0, time.UTC)

// FakeStore is an in-memory service.RecordStore with error injection and a
// gate for holding remote calls in flight.
type FakeStore struct {
	store *memstore.Store

	mu    sync.Mutex
	calls map[string]int

	// Error injection for testing
	ListTasksErr  error
	CreateTaskErr error
	UpdateTaskErr error
	ToggleTaskErr error
	DeleteTaskErr error

	// Started, when non-nil, receives the operation name as each call begins.
	Started chan string

	// Block, when non-nil, holds every call until a value is received or the
	// call's context ends.
	Block chan struct{}
}

// NewFakeStore creates an empty FakeStore whose clock is fixed at Epoch.
func NewFakeStore() *FakeStore {
	s := memstore.New()
	s.Now = func() time.Time { return Epoch }
	return &FakeStore{store: s, calls: make(map[string]int)}
}

// AddTask seeds a task with the given server ID.
func (f *FakeStore) AddTask(id service.ID, title string, completed bool) {
	f.store.Seed(service.Task{ID: id, Title: title, Completed: completed, CreatedAt: Epoch})
}

// SetClock replaces the store clock.
func (f *FakeStore) SetClock(now func() time.Time) {
	f.store.Now = now
}

// Calls returns how many times op was invoked.
func (f *FakeStore) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// TotalCalls returns the number of calls across all operations.
func (f *FakeStore) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *FakeStore) enter(ctx context.Context, op string) error {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()

	if f.Started != nil {
		f.Started <- op
	}
	if f.Block != nil {
		select {
		case <-f.Block:
		case <-ctx.Done():
			return service.Unavailable(ctx.Err())
		}
	}
	return nil
}

// ListTasks implements service.RecordStore.
func (f *FakeStore) ListTasks(ctx context.Context) ([]service.Task, error) {
	if err := f.enter(ctx, "list"); err != nil {
		return nil, err
	}
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.store.ListTasks(ctx)
}

// CreateTask implements service.RecordStore.
func (f *FakeStore) CreateTask(ctx context.Context, title string) (service.Task, error) {
	if err := f.enter(ctx, "create"); err != nil {
		return service.Task{}, err
	}
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	return f.store.CreateTask(ctx, title)
}

// UpdateTask implements service.RecordStore.
func (f *FakeStore) UpdateTask(ctx context.Context, id service.ID, title string) (service.Task, error) {
	if err := f.enter(ctx, "update"); err != nil {
		return service.Task{}, err
	}
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	return f.store.UpdateTask(ctx, id, title)
}

// ToggleTask implements service.RecordStore.
func (f *FakeStore) ToggleTask(ctx context.Context, id service.ID) (service.Task, error) {
	if err := f.enter(ctx, "toggle"); err != nil {
		return service.Task{}, err
	}
	if f.ToggleTaskErr != nil {
		return service.Task{}, f.ToggleTaskErr
	}
	return f.store.ToggleTask(ctx, id)
}

// DeleteTask implements service.RecordStore.
func (f *FakeStore) DeleteTask(ctx context.Context, id service.ID) error {
	if err := f.enter(ctx, "delete"); err != nil {
		return err
	}
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	return f.store.DeleteTask(ctx, id)
}
