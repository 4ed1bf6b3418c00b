package service

import "context"

// RecordStore defines the interface for the authoritative task backend.
// The synchronizer and commands never import a backend SDK directly.
type RecordStore interface {
	// ListTasks returns every task in store order.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task and returns the authoritative record.
	// Fails with ErrInvalid for an empty title.
	CreateTask(ctx context.Context, title string) (Task, error)

	// UpdateTask replaces the title of a task.
	// Fails with ErrNotFound or ErrInvalid.
	UpdateTask(ctx context.Context, id ID, title string) (Task, error)

	// ToggleTask flips the completed flag of a task.
	// Fails with ErrNotFound.
	ToggleTask(ctx context.Context, id ID) (Task, error)

	// DeleteTask removes a task. Fails with ErrNotFound.
	DeleteTask(ctx context.Context, id ID) error
}
