package optimistic

import (
	"context"
	"fmt"
	"slices"
	"time"

	"optitask/internal/service"
)

// Kind names the four mutation intents.
type Kind int

const (
	KindCreate Kind = iota
	KindUpdate
	KindToggle
	KindDelete
)

// Kinds lists every intent kind in display order.
var Kinds = []Kind{KindCreate, KindUpdate, KindToggle, KindDelete}

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindUpdate:
		return "update"
	case KindToggle:
		return "toggle"
	case KindDelete:
		return "delete"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Intent is a user-requested mutation. The set of intents is closed: Create,
// Update, Toggle and Delete.
type Intent interface {
	Kind() Kind

	// Validate rejects intents that must never reach the speculative phase.
	Validate() error

	// speculate applies the pure transform to a private copy of the snapshot.
	speculate(tasks []service.Task, m *mutation, now time.Time) []service.Task

	// call issues the matching Record Store request.
	call(ctx context.Context, store service.RecordStore) (service.Task, error)

	// commit merges the authoritative result into the current snapshot.
	commit(tasks []service.Task, m *mutation, authoritative service.Task) []service.Task
}

// mutation is the per-submission state of an admitted intent.
type mutation struct {
	intent   Intent
	previous []service.Task
	tempID   service.ID // speculative identifier, Create only
}

// Create appends a new task.
type Create struct {
	Title string
}

// NewCreate builds a Create intent, rejecting blank titles.
func NewCreate(title string) (Create, error) {
	c := Create{Title: title}
	return c, c.Validate()
}

func (c Create) Kind() Kind      { return KindCreate }
func (c Create) Validate() error { return service.ValidateTitle(c.Title) }

func (c Create) speculate(tasks []service.Task, m *mutation, now time.Time) []service.Task {
	return append(tasks, service.Task{
		ID:        m.tempID,
		Title:     c.Title,
		Completed: false,
		CreatedAt: now,
	})
}

func (c Create) call(ctx context.Context, store service.RecordStore) (service.Task, error) {
	return store.CreateTask(ctx, c.Title)
}

func (c Create) commit(tasks []service.Task, m *mutation, authoritative service.Task) []service.Task {
	if i := service.IndexOf(tasks, m.tempID); i >= 0 {
		tasks[i] = authoritative
		return tasks
	}
	return append(tasks, authoritative)
}

// Update replaces the title of an existing task.
type Update struct {
	ID    service.ID
	Title string
}

// NewUpdate builds an Update intent, rejecting blank titles.
func NewUpdate(id service.ID, title string) (Update, error) {
	u := Update{ID: id, Title: title}
	return u, u.Validate()
}

func (u Update) Kind() Kind      { return KindUpdate }
func (u Update) Validate() error { return service.ValidateTitle(u.Title) }

func (u Update) speculate(tasks []service.Task, _ *mutation, now time.Time) []service.Task {
	// A missing target leaves the cache alone; the authority decides "not found".
	if i := service.IndexOf(tasks, u.ID); i >= 0 {
		tasks[i].Title = u.Title
		tasks[i].UpdatedAt = &now
	}
	return tasks
}

func (u Update) call(ctx context.Context, store service.RecordStore) (service.Task, error) {
	return store.UpdateTask(ctx, u.ID, u.Title)
}

func (u Update) commit(tasks []service.Task, _ *mutation, authoritative service.Task) []service.Task {
	return replace(tasks, u.ID, authoritative)
}

// Toggle flips the completed flag of a task.
type Toggle struct {
	ID service.ID
}

// NewToggle builds a Toggle intent.
func NewToggle(id service.ID) (Toggle, error) {
	return Toggle{ID: id}, nil
}

func (t Toggle) Kind() Kind      { return KindToggle }
func (t Toggle) Validate() error { return nil }

func (t Toggle) speculate(tasks []service.Task, _ *mutation, now time.Time) []service.Task {
	if i := service.IndexOf(tasks, t.ID); i >= 0 {
		tasks[i].Completed = !tasks[i].Completed
		tasks[i].UpdatedAt = &now
	}
	return tasks
}

func (t Toggle) call(ctx context.Context, store service.RecordStore) (service.Task, error) {
	return store.ToggleTask(ctx, t.ID)
}

func (t Toggle) commit(tasks []service.Task, _ *mutation, authoritative service.Task) []service.Task {
	return replace(tasks, t.ID, authoritative)
}

// Delete removes a task.
type Delete struct {
	ID service.ID
}

// NewDelete builds a Delete intent.
func NewDelete(id service.ID) (Delete, error) {
	return Delete{ID: id}, nil
}

func (d Delete) Kind() Kind      { return KindDelete }
func (d Delete) Validate() error { return nil }

func (d Delete) speculate(tasks []service.Task, _ *mutation, _ time.Time) []service.Task {
	return slices.DeleteFunc(tasks, func(t service.Task) bool { return t.ID == d.ID })
}

func (d Delete) call(ctx context.Context, store service.RecordStore) (service.Task, error) {
	return service.Task{}, store.DeleteTask(ctx, d.ID)
}

func (d Delete) commit(tasks []service.Task, _ *mutation, _ service.Task) []service.Task {
	return tasks
}

// replace swaps the record with the given id for the authoritative one.
func replace(tasks []service.Task, id service.ID, authoritative service.Task) []service.Task {
	if i := service.IndexOf(tasks, id); i >= 0 {
		tasks[i] = authoritative
	}
	return tasks
}
