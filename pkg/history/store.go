package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/calcpad/internal/logging"
	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/aretw0/calcpad/pkg/ports"
)

const (
	// DefaultKey is the key the history blob is stored under.
	DefaultKey = "calculator-history"
	// DefaultCapacity bounds the number of retained entries.
	DefaultCapacity = 50
	// ClearPrompt is shown by the confirmer before history is cleared.
	ClearPrompt = "Clear all history?"
)

// Observer receives the render list after every mutation or load.
type Observer func(ctx context.Context, items []domain.HistoryItem)

// Store is the history log of one calculator.
type Store struct {
	kv        ports.KVStore
	key       string
	capacity  int
	confirmer ports.Confirmer
	logger    *slog.Logger
	now       func() time.Time
	observers []Observer

	mu      sync.RWMutex
	entries []domain.HistoryEntry // most recent first
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the persistence key.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// WithCapacity sets the maximum number of entries. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithConfirmer sets the approval step used by Clear.
func WithConfirmer(c ports.Confirmer) Option {
	return func(s *Store) {
		s.confirmer = c
	}
}

// WithLogger configures the logger for persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the wall clock used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithObserver registers a render callback.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observers = append(s.observers, o)
	}
}

// New creates a history store persisting into kv.
// Without a confirmer, Clear refuses every request.
func New(kv ports.KVStore, opts ...Option) *Store {
	s := &Store{
		kv:        kv,
		key:       DefaultKey,
		capacity:  DefaultCapacity,
		confirmer: ports.NeverConfirm,
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the persistence key.
func (s *Store) Key() string { return s.key }

// Record prepends a new entry, trims to capacity, persists the list and
// notifies observers. The entry is returned even if persisting fails.
func (s *Store) Record(ctx context.Context, expression string, result float64) domain.HistoryEntry {
	entry := domain.HistoryEntry{
		Expression: expression,
		Result:     result,
		Timestamp:  s.now().UnixMilli(),
	}

	s.mu.Lock()
	entries := make([]domain.HistoryEntry, 0, min(len(s.entries)+1, s.capacity))
	entries = append(entries, entry)
	entries = append(entries, s.entries...)
	if len(entries) > s.capacity {
		entries = entries[:s.capacity]
	}
	s.entries = entries
	s.mu.Unlock()

	s.persist(ctx, entries)
	s.notify(ctx, entries)
	return entry
}

// Clear empties the history after the confirmer approves. It reports
// whether anything was cleared; empty history and refusals are no-ops.
func (s *Store) Clear(ctx context.Context) bool {
	if s.Len() == 0 {
		return false
	}

	ok, err := s.confirmer.Confirm(ctx, ClearPrompt)
	if err != nil {
		s.logger.Warn("history clear confirmation failed", "key", s.key, "err", err)
		return false
	}
	if !ok {
		return false
	}

	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()

	empty := []domain.HistoryEntry{}
	s.persist(ctx, empty)
	s.notify(ctx, empty)
	return true
}

// Load replaces the in-memory list with the persisted one and returns the
// number of entries loaded. A missing key leaves history empty without a
// render; read or decode failures are logged and leave history empty.
func (s *Store) Load(ctx context.Context) int {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			s.logger.Warn("failed to load history", "key", s.key, "err", err)
		}
		return 0
	}

	entries, err := Decode(raw)
	if err != nil {
		s.logger.Warn("failed to decode history", "key", s.key, "err", err)
		return 0
	}
	if len(entries) > s.capacity {
		entries = entries[:s.capacity]
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	s.notify(ctx, entries)
	return len(entries)
}

// Get returns the entry at index in most-recent-first order.
func (s *Store) Get(index int) (domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.entries) {
		return domain.HistoryEntry{}, fmt.Errorf("%w: %d of %d", domain.ErrHistoryIndex, index, len(s.entries))
	}
	return s.entries[index], nil
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries returns a copy of the entries, most recent first.
func (s *Store) Entries() []domain.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.HistoryEntry(nil), s.entries...)
}

// Items returns the render list.
func (s *Store) Items() []domain.HistoryItem {
	return items(s.Entries())
}

// persist writes a snapshot of the list. It runs outside the lock so a
// slow backend never stalls readers; the last completed write wins.
func (s *Store) persist(ctx context.Context, entries []domain.HistoryEntry) {
	data, err := Encode(entries)
	if err != nil {
		s.logger.Warn("failed to encode history", "key", s.key, "err", err)
		return
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.logger.Warn("failed to save history", "key", s.key, "err", err)
	}
}

func (s *Store) notify(ctx context.Context, entries []domain.HistoryEntry) {
	if len(s.observers) == 0 {
		return
	}
	list := items(entries)
	for _, o := range s.observers {
		o(ctx, list)
	}
}

func items(entries []domain.HistoryEntry) []domain.HistoryItem {
	out := make([]domain.HistoryItem, len(entries))
	for i, e := range entries {
		out[i] = e.Item()
	}
	return out
}

// Encode serializes entries as the JSON array stored under the history key.
func Encode(entries []domain.HistoryEntry) (string, error) {
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode parses a stored history blob.
func Decode(raw string) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
