package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/calcpad"
	"github.com/aretw0/calcpad/internal/logging"
	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/aretw0/calcpad/pkg/history"
	"github.com/aretw0/calcpad/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed session lock may be held.
const DefaultLockTTL = 30 * time.Second

// HistoryKey returns the store key holding the history of a session.
func HistoryKey(sessionID string) string {
	return history.DefaultKey + ":" + sessionID
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns one calculator per session and serializes access to each.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.KVStore

	mu       sync.Mutex            // guards locks and sessions
	locks    map[string]*lockEntry // active per-session locks
	sessions map[string]*calcpad.Calculator

	locker   ports.DistributedLocker // optional
	lockTTL  time.Duration
	calcOpts []calcpad.Option
	logger   *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking. Each dispatch then also reloads
// the session history, so replicas sharing a store see each other's entries.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithCalculatorOptions adds options applied to every calculator the
// manager creates. The store and history key are always set by the manager.
func WithCalculatorOptions(opts ...calcpad.Option) Option {
	return func(m *Manager) {
		m.calcOpts = append(m.calcOpts, opts...)
	}
}

// NewManager creates a session manager persisting history into store.
func NewManager(store ports.KVStore, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		locks:    make(map[string]*lockEntry),
		sessions: make(map[string]*calcpad.Calculator),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

func (m *Manager) lookup(sessionID string) (*calcpad.Calculator, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	calc, ok := m.sessions[sessionID]
	return calc, ok
}

// Open returns the calculator of a session, creating it and loading its
// history on first use.
func (m *Manager) Open(ctx context.Context, sessionID string) (*calcpad.Calculator, error) {
	var calc *calcpad.Calculator
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if existing, ok := m.lookup(sessionID); ok {
			calc = existing
			return nil
		}

		opts := append([]calcpad.Option{}, m.calcOpts...)
		opts = append(opts,
			calcpad.WithStore(m.store),
			calcpad.WithHistoryKey(HistoryKey(sessionID)),
		)
		calc = calcpad.New(opts...)
		calc.Start(ctx)

		m.mu.Lock()
		m.sessions[sessionID] = calc
		m.mu.Unlock()
		m.logger.Debug("session opened", "session_id", sessionID, "history", len(calc.History()))
		return nil
	})
	return calc, err
}

// Get returns an open session.
func (m *Manager) Get(sessionID string) (*calcpad.Calculator, error) {
	calc, ok := m.lookup(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	return calc, nil
}

// Dispatch applies intents to an open session in order, holding the session
// lock for the whole batch so concurrent batches never interleave. It stops
// at the first rejected intent and returns the display reached so far.
func (m *Manager) Dispatch(ctx context.Context, sessionID string, intents ...domain.Intent) (domain.Snapshot, error) {
	calc, err := m.Get(sessionID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	snap := calc.Snapshot()
	err = m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if m.locker != nil {
			calc.Start(ctx)
		}
		for _, in := range intents {
			next, err := calc.Dispatch(ctx, in)
			if err != nil {
				snap = calc.Snapshot()
				return err
			}
			snap = next
		}
		return nil
	})
	return snap, err
}

// Close forgets a session. Its persisted history is kept.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.sessions[sessionID]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
		}
		delete(m.sessions, sessionID)
		return nil
	})
}

// List returns the open session IDs in lexical order.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Store returns the underlying key-value store.
func (m *Manager) Store() ports.KVStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
