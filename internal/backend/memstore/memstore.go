// Package memstore implements service.RecordStore in memory.
package memstore

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"optitask/internal/service"
)

// Store is an in-memory Record Store. IDs are sequential integers rendered as
// decimal strings; tasks are listed in insertion order.
type Store struct {
	mu     sync.RWMutex
	tasks  []service.Task
	nextID int64

	// Now is the clock used for timestamps.
	Now func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{nextID: 1, Now: time.Now}
}

// Seed appends tasks as if they had been created by the authority.
// Tasks with an empty ID get the next sequential ID.
func (s *Store) Seed(tasks ...service.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tasks {
		if t.ID == "" {
			t.ID = s.allocateLocked()
		} else if n, err := strconv.ParseInt(string(t.ID), 10, 64); err == nil && n >= s.nextID {
			s.nextID = n + 1
		}
		s.tasks = append(s.tasks, t.Clone())
	}
}

func (s *Store) allocateLocked() service.ID {
	id := service.ID(strconv.FormatInt(s.nextID, 10))
	s.nextID++
	return id
}

func (s *Store) indexLocked(id service.ID) int {
	return service.IndexOf(s.tasks, id)
}

// ListTasks implements service.RecordStore.
func (s *Store) ListTasks(ctx context.Context) ([]service.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, service.Unavailable(err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return service.Clone(s.tasks), nil
}

// CreateTask implements service.RecordStore.
func (s *Store) CreateTask(ctx context.Context, title string) (service.Task, error) {
	if err := ctx.Err(); err != nil {
		return service.Task{}, service.Unavailable(err)
	}
	if err := service.ValidateTitle(title); err != nil {
		return service.Task{}, fmt.Errorf("%w: title is required", service.ErrInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := service.Task{
		ID:        s.allocateLocked(),
		Title:     title,
		Completed: false,
		CreatedAt: s.Now(),
	}
	s.tasks = append(s.tasks, t)
	return t.Clone(), nil
}

// UpdateTask implements service.RecordStore.
func (s *Store) UpdateTask(ctx context.Context, id service.ID, title string) (service.Task, error) {
	if err := ctx.Err(); err != nil {
		return service.Task{}, service.Unavailable(err)
	}
	if err := service.ValidateTitle(title); err != nil {
		return service.Task{}, fmt.Errorf("%w: title is required", service.ErrInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return service.Task{}, fmt.Errorf("task %s: %w", id, service.ErrNotFound)
	}
	now := s.Now()
	s.tasks[i].Title = title
	s.tasks[i].UpdatedAt = &now
	return s.tasks[i].Clone(), nil
}

// ToggleTask implements service.RecordStore.
func (s *Store) ToggleTask(ctx context.Context, id service.ID) (service.Task, error) {
	if err := ctx.Err(); err != nil {
		return service.Task{}, service.Unavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return service.Task{}, fmt.Errorf("task %s: %w", id, service.ErrNotFound)
	}
	now := s.Now()
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.tasks[i].UpdatedAt = &now
	return s.tasks[i].Clone(), nil
}

// DeleteTask implements service.RecordStore.
func (s *Store) DeleteTask(ctx context.Context, id service.ID) error {
	if err := ctx.Err(); err != nil {
		return service.Unavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("cannot delete task %s: %w", id, service.ErrNotFound)
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return nil
}
