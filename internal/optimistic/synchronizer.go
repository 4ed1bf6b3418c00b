// Package optimistic applies task mutations to the local cache before the
// Record Store confirms them, then reconciles or rolls back.
//
// Every mutation moves through Idle → Speculating → Committing|Reverting →
// Terminal. Mutations on the same cache key are admitted one at a time by a
// Sequencer, so a rollback always restores the state that immediately
// preceded the failed mutation.
package optimistic

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"optitask/internal/cache"
	"optitask/internal/service"
)

// ErrSuperseded is returned by Refresh when a mutation was admitted while the
// read was in flight; the read result was discarded.
var ErrSuperseded = errors.New("read superseded by a mutation")

// Outcome is the terminal state of a submitted intent.
type Outcome int

const (
	// Rejected means the intent never reached the speculative phase: it failed
	// local validation or its context ended before admission.
	Rejected Outcome = iota
	// Committed means the authoritative result was merged into the cache.
	Committed
	// Reverted means the remote call failed and the cache was restored.
	Reverted
)

func (o Outcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case Committed:
		return "committed"
	case Reverted:
		return "reverted"
	default:
		return "unknown"
	}
}

// Result reports how a submitted intent ended.
type Result struct {
	Outcome Outcome

	// Task is the authoritative record returned on commit. Zero for Delete.
	Task service.Task

	// SpeculativeID is the placeholder identifier used by a Create.
	SpeculativeID service.ID

	// Err is the validation or remote error for Rejected and Reverted.
	Err error
}

// Kind classifies Err.
func (r Result) Kind() service.ErrorKind {
	return service.KindOf(r.Err)
}

// Options customizes a Synchronizer. Zero values pick defaults.
type Options struct {
	Logger    *slog.Logger
	Clock     func() time.Time
	NewID     func() service.ID
	Sequencer *Sequencer

	// OnChange receives a fresh snapshot after every cache write.
	OnChange func([]service.Task)
}

// Synchronizer owns the task-list cache and is the only component that writes it.
type Synchronizer struct {
	store    service.RecordStore
	cache    *cache.Cache
	key      cache.Key
	seq      *Sequencer
	logger   *slog.Logger
	clock    func() time.Time
	newID    func() service.ID
	onChange func([]service.Task)

	mu      sync.Mutex
	pending map[Kind]int
}

// New creates a Synchronizer for the task list stored under cache.TaskListKey.
func New(store service.RecordStore, c *cache.Cache, opts Options) *Synchronizer {
	s := &Synchronizer{
		store:    store,
		cache:    c,
		key:      cache.TaskListKey,
		seq:      opts.Sequencer,
		logger:   opts.Logger,
		clock:    opts.Clock,
		newID:    opts.NewID,
		onChange: opts.OnChange,
		pending:  make(map[Kind]int),
	}
	if s.seq == nil {
		s.seq = NewSequencer()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.newID == nil {
		s.newID = service.NewSpeculativeID
	}
	return s
}

// Snapshot returns a copy of the current cache contents.
func (s *Synchronizer) Snapshot() []service.Task {
	return s.cache.Read(s.key)
}

// Version returns the cache write counter for the task list.
func (s *Synchronizer) Version() uint64 {
	return s.cache.Version(s.key)
}

// Pending reports whether an intent of the given kind is queued or in flight.
func (s *Synchronizer) Pending(kind Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[kind] > 0
}

func (s *Synchronizer) track(kind Kind, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[kind] += delta
}

// Refresh replaces the cache with the Record Store's list. The result is
// dropped if a mutation is admitted before it arrives.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	ticket, rctx := s.seq.BeginRead(ctx, s.key)
	tasks, err := s.store.ListTasks(rctx)
	if err != nil {
		if s.seq.AbandonRead(ticket) {
			s.logger.Debug("refresh superseded", "error", err)
			return ErrSuperseded
		}
		return err
	}

	applied := s.seq.ApplyRead(ticket, func() {
		s.cache.Write(s.key, tasks)
	})
	if !applied {
		s.logger.Debug("refresh result discarded", "tasks", len(tasks))
		return ErrSuperseded
	}
	s.logger.Debug("refresh applied", "tasks", len(tasks))
	s.notify()
	return nil
}

// Submit runs intent through the speculative state machine and blocks until it
// reaches a terminal state.
func (s *Synchronizer) Submit(ctx context.Context, intent Intent) Result {
	if intent == nil {
		return Result{Outcome: Rejected, Err: &service.ValidationError{Field: "intent", Reason: "no intent"}}
	}
	kind := intent.Kind()
	if err := intent.Validate(); err != nil {
		s.logger.Debug("intent rejected", "kind", kind, "error", err)
		return Result{Outcome: Rejected, Err: err}
	}

	s.track(kind, 1)
	defer s.track(kind, -1)

	token, err := s.seq.Admit(ctx, s.key)
	if err != nil {
		s.logger.Debug("intent not admitted", "kind", kind, "error", err)
		return Result{Outcome: Rejected, Err: err}
	}
	defer token.Release()

	m := &mutation{intent: intent}
	if kind == KindCreate {
		m.tempID = s.newID()
	}

	// Speculating
	m.previous = s.cache.Read(s.key)
	s.write(intent.speculate(service.Clone(m.previous), m, s.clock()))
	s.logger.Debug("speculating", "kind", kind, "temp_id", m.tempID)

	authoritative, err := intent.call(ctx, s.store)
	if err != nil {
		// Reverting
		s.write(m.previous)
		s.logger.Warn("mutation reverted", "kind", kind, "error_kind", service.KindOf(err), "error", err)
		return Result{Outcome: Reverted, SpeculativeID: m.tempID, Err: err}
	}

	// Committing
	s.write(intent.commit(s.cache.Read(s.key), m, authoritative))
	s.logger.Debug("mutation committed", "kind", kind, "id", authoritative.ID)
	return Result{Outcome: Committed, Task: authoritative, SpeculativeID: m.tempID}
}

func (s *Synchronizer) write(tasks []service.Task) {
	s.cache.Write(s.key, tasks)
	s.notify()
}

func (s *Synchronizer) notify() {
	if s.onChange != nil {
		s.onChange(s.cache.Read(s.key))
	}
}
