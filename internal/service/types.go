// Package service defines the task data model and the backend-agnostic Record Store interface.
package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// speculativePrefix marks identifiers generated locally for unconfirmed creations.
// Record stores never hand out identifiers with this prefix.
const speculativePrefix = "spec-"

// ID identifies a task. It is either a server identifier assigned by the
// Record Store or a speculative identifier generated by the client.
type ID string

// NewSpeculativeID returns a fresh speculative identifier.
func NewSpeculativeID() ID {
	return ID(speculativePrefix + uuid.NewString())
}

// IsSpeculative reports whether id was generated locally.
func (id ID) IsSpeculative() bool {
	return strings.HasPrefix(string(id), speculativePrefix)
}

func (id ID) String() string { return string(id) }

// Task represents a single task record.
type Task struct {
	ID        ID         `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"` // set by update and toggle only
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	if t.UpdatedAt != nil {
		u := *t.UpdatedAt
		t.UpdatedAt = &u
	}
	return t
}

// Clone returns a deep copy of tasks. A nil input yields an empty, non-nil slice.
func Clone(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// IndexOf returns the position of the task with the given id, or -1.
func IndexOf(tasks []Task, id ID) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Contains reports whether a task with the given id is present.
func Contains(tasks []Task, id ID) bool {
	return IndexOf(tasks, id) >= 0
}

// ValidateTitle rejects empty or whitespace-only titles.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Reason: "task title cannot be empty"}
	}
	return nil
}
