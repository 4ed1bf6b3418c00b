package optimistic

import (
	"context"
	"sync"

	"optitask/internal/cache"
)

// Sequencer serializes mutations per cache key and supersedes plain reads.
//
// Mutations are admitted in FIFO order: Admit suspends until every earlier
// mutation on the same key has released its token. Reads are never queued;
// each admission bumps the key's generation and cancels outstanding reads, so
// a late read result can be detected and dropped.
type Sequencer struct {
	mu   sync.Mutex
	keys map[cache.Key]*keyState
}

type keyState struct {
	active  bool
	waiters []chan struct{}
	gen     uint64
	reads   map[*ReadTicket]struct{}
}

// NewSequencer creates a sequencer with no admitted mutations.
func NewSequencer() *Sequencer {
	return &Sequencer{keys: make(map[cache.Key]*keyState)}
}

func (s *Sequencer) stateLocked(key cache.Key) *keyState {
	ks, ok := s.keys[key]
	if !ok {
		ks = &keyState{reads: make(map[*ReadTicket]struct{})}
		s.keys[key] = ks
	}
	return ks
}

// Token is held by the single active mutation on a key.
type Token struct {
	s    *Sequencer
	key  cache.Key
	once sync.Once
}

// Release hands the key to the next waiting mutation. Safe to call twice.
func (t *Token) Release() {
	t.once.Do(func() { t.s.release(t.key) })
}

// Admit blocks until the caller is the only active mutation on key.
// It returns ctx.Err() if ctx ends first; in that case nothing is held.
func (s *Sequencer) Admit(ctx context.Context, key cache.Key) (*Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	ks := s.stateLocked(key)
	s.supersedeReadsLocked(ks)
	if !ks.active {
		ks.active = true
		s.mu.Unlock()
		return &Token{s: s, key: key}, nil
	}
	ready := make(chan struct{})
	ks.waiters = append(ks.waiters, ready)
	s.mu.Unlock()

	select {
	case <-ready:
		return &Token{s: s, key: key}, nil
	case <-ctx.Done():
		s.mu.Lock()
		removed := false
		for i, w := range ks.waiters {
			if w == ready {
				ks.waiters = append(ks.waiters[:i], ks.waiters[i+1:]...)
				removed = true
				break
			}
		}
		s.mu.Unlock()
		if !removed {
			// Ownership was handed to us while we were giving up.
			s.release(key)
		}
		return nil, ctx.Err()
	}
}

func (s *Sequencer) release(key cache.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ks := s.stateLocked(key)
	if len(ks.waiters) > 0 {
		next := ks.waiters[0]
		ks.waiters = ks.waiters[1:]
		close(next)
		return
	}
	ks.active = false
}

func (s *Sequencer) supersedeReadsLocked(ks *keyState) {
	ks.gen++
	for t := range ks.reads {
		t.cancel()
		delete(ks.reads, t)
	}
}

// Active reports whether a mutation currently holds key.
func (s *Sequencer) Active(key cache.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(key).active
}

// ReadTicket tracks one plain read against a key.
type ReadTicket struct {
	key    cache.Key
	gen    uint64
	cancel context.CancelFunc
}

// BeginRead registers a plain read. The returned context is canceled when a
// mutation is admitted on key, or when the read is applied or abandoned.
func (s *Sequencer) BeginRead(ctx context.Context, key cache.Key) (*ReadTicket, context.Context) {
	rctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	ks := s.stateLocked(key)
	t := &ReadTicket{key: key, gen: ks.gen, cancel: cancel}
	ks.reads[t] = struct{}{}
	return t, rctx
}

// ApplyRead runs apply if the read is still current: no mutation was admitted
// since BeginRead and none is active. It reports whether apply ran. The ticket
// is finished either way.
func (s *Sequencer) ApplyRead(t *ReadTicket, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer t.cancel()
	ks := s.stateLocked(t.key)
	delete(ks.reads, t)
	if ks.gen != t.gen || ks.active {
		return false
	}
	apply()
	return true
}

// AbandonRead finishes a failed read and reports whether it had been superseded.
func (s *Sequencer) AbandonRead(t *ReadTicket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer t.cancel()
	ks := s.stateLocked(t.key)
	delete(ks.reads, t)
	return ks.gen != t.gen
}
