package state

import (
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
)

// View keys held by the store.
const (
	KeyBookings    = "bookings"
	KeyWallet      = "wallet"
	KeyDashboard   = "dashboard"
	KeyMarketplace = "marketplace"
	KeyChats       = "chats"
)

// MessagesKey returns the store key for one chat's message list.
func MessagesKey(chatID int64) string {
	return "messages:" + strconv.FormatInt(chatID, 10)
}

// StaleObserver records responses dropped because a newer one was applied.
type StaleObserver interface {
	ObserveStale(key string)
}

// Snapshot is the latest value committed under a key.
type Snapshot struct {
	Value     interface{} `json:"value"`
	Seq       uint64      `json:"seq"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type entry struct {
	issued   uint64
	snapshot Snapshot
	watchers map[uint64]func(Snapshot)
}

// Store keeps the latest view models keyed by view. Every fetch takes a
// sequence number with Begin before it starts; Commit only applies results
// whose sequence is newer than the one already applied. An older fetch that
// finishes before a newer one commits is applied, then replaced when the
// newer result lands.
type Store struct {
	mu       sync.Mutex
	entries  map[string]*entry
	nextID   uint64
	observer StaleObserver
	logger   *zap.Logger
	now      func() time.Time
}

// NewStore builds an empty store. observer may be nil.
func NewStore(observer StaleObserver, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		entries:  make(map[string]*entry),
		observer: observer,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Store) entryLocked(key string) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{watchers: make(map[uint64]func(Snapshot))}
		s.entries[key] = e
	}
	return e
}

// Begin reserves the next sequence for key.
func (s *Store) Begin(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entryLocked(key)
	e.issued++
	return e.issued
}

// Commit stores value under key if seq is newer than the applied one. It
// reports whether the value was applied; results at or below the applied
// sequence are dropped and counted as stale.
func (s *Store) Commit(key string, seq uint64, value interface{}) bool {
	s.mu.Lock()
	e := s.entryLocked(key)
	if seq <= e.snapshot.Seq {
		applied := e.snapshot.Seq
		s.mu.Unlock()
		s.logger.Debug("stale response dropped", zap.String("key", key), zap.Uint64("seq", seq), zap.Uint64("applied", applied))
		if s.observer != nil {
			s.observer.ObserveStale(key)
		}
		return false
	}
	if seq > e.issued {
		e.issued = seq
	}
	e.snapshot = Snapshot{Value: value, Seq: seq, UpdatedAt: s.now()}
	snap, watchers := e.snapshot, copyWatchers(e.watchers)
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(snap)
	}
	return true
}

// Update applies fn to the current value and commits the result under a
// fresh sequence. Fetches begun before the update are dropped on commit.
func (s *Store) Update(key string, fn func(current interface{}) interface{}) Snapshot {
	s.mu.Lock()
	e := s.entryLocked(key)
	e.issued++
	e.snapshot = Snapshot{Value: fn(e.snapshot.Value), Seq: e.issued, UpdatedAt: s.now()}
	snap, watchers := e.snapshot, copyWatchers(e.watchers)
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(snap)
	}
	return snap
}

// Snapshot returns the value under key.
func (s *Store) Snapshot(key string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || e.snapshot.Seq == 0 {
		return Snapshot{}, appErrors.Clone(appErrors.ErrStoreMiss, "no state for "+key)
	}
	return e.snapshot, nil
}

// Keys lists keys that hold a committed value.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.entries))
	for key, e := range s.entries {
		if e.snapshot.Seq > 0 {
			keys = append(keys, key)
		}
	}
	return keys
}

// Watch calls fn after every applied write to key until the returned
// function is called.
func (s *Store) Watch(key string, fn func(Snapshot)) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.entryLocked(key).watchers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if e, ok := s.entries[key]; ok {
			delete(e.watchers, id)
		}
	}
}

// Get returns the typed value under key.
func Get[T any](s *Store, key string) (T, error) {
	var zero T
	snap, err := s.Snapshot(key)
	if err != nil {
		return zero, err
	}
	value, ok := snap.Value.(T)
	if !ok {
		return zero, appErrors.Clone(appErrors.ErrStoreMiss, "unexpected state type for "+key)
	}
	return value, nil
}

func copyWatchers(src map[uint64]func(Snapshot)) []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(src))
	for _, fn := range src {
		out = append(out, fn)
	}
	return out
}
