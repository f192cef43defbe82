package learner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/forgelabs/forgelabs/internal/logger"
)

// Store is the only way to read or change the learner record. Writes go
// through Mutate, which runs load-modify-save as one backend Update so
// concurrent callers never lose each other's updates, whether they share
// this process (HTTP handlers, TUI commands) or only the database file.
type Store struct {
	mu      sync.Mutex
	backend Backend
	log     *logger.Logger

	subMu  sync.Mutex
	subs   map[int]func(State)
	nextID int
}

// NewStore wraps backend. A nil log discards output.
func NewStore(backend Backend, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{
		backend: backend,
		log:     log.With("component", "learner"),
		subs:    make(map[int]func(State)),
	}
}

// Load returns the persisted record merged over the defaults. It never
// fails: an unreadable or corrupt record is logged and the defaults are
// returned.
func (s *Store) Load(ctx context.Context) State {
	st, _ := s.load(ctx)
	return st
}

// load also returns the canonical encoding of the loaded state.
func (s *Store) load(ctx context.Context) (State, []byte) {
	raw, err := s.backend.Get(ctx, StorageKey)
	if err != nil {
		s.log.Warn("read learner state failed, using defaults", "error", err)
		st := Default()
		return st, mustEncode(st)
	}
	return s.decode(raw)
}

// decode merges raw over the defaults. Empty or corrupt input yields the
// defaults.
func (s *Store) decode(raw []byte) (State, []byte) {
	st := Default()
	if len(raw) == 0 {
		return st, mustEncode(st)
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		s.log.Warn("corrupt learner state, using defaults", "error", err)
		st = Default()
		return st, mustEncode(st)
	}
	st.normalize()
	return st, mustEncode(st)
}

// Mutate loads the record, applies fn to a copy and saves the result. A
// mutation that leaves the encoded record unchanged is neither written nor
// announced. On a save error the persisted record is untouched and the
// error is returned.
func (s *Store) Mutate(ctx context.Context, fn func(*State)) (State, error) {
	st, changed, err := s.apply(ctx, fn)
	if err != nil {
		return st, err
	}
	if changed {
		s.notify(st)
	}
	return st, nil
}

// apply runs the whole load-modify-save inside one backend Update, so a
// second process writing the same database cannot slip a commit between
// the read and the write.
func (s *Store) apply(ctx context.Context, fn func(*State)) (State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cur, next State
	changed := false
	err := s.backend.Update(ctx, StorageKey, func(raw []byte) ([]byte, error) {
		var before []byte
		cur, before = s.decode(raw)
		next = cur.Clone()
		fn(&next)
		next.normalize()

		after := mustEncode(next)
		if bytes.Equal(before, after) {
			return nil, nil
		}
		changed = true
		return after, nil
	})
	if err != nil {
		return s.Load(ctx), false, fmt.Errorf("save learner state: %w", err)
	}
	if !changed {
		return cur, false, nil
	}
	return next, true, nil
}

// Subscribe registers fn to receive the new record after every committed
// mutation. Callbacks run on the mutating goroutine, outside the store lock.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify(st State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(st.Clone())
	}
}

func mustEncode(st State) []byte {
	b, err := json.Marshal(st)
	if err != nil {
		// State holds only ints and strings.
		panic(fmt.Sprintf("encode learner state: %v", err))
	}
	return b
}
