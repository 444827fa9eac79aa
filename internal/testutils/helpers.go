package testutils

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/calcpad/internal/logging"
	"github.com/aretw0/calcpad/pkg/adapters/memory"
)

// Clock is a manual wall clock for deterministic timestamps.
// Thread-safe: all methods lock an internal mutex.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock frozen at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current time without advancing.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// FailingStore is a KVStore whose calls can be made to fail on demand.
// Until then it behaves like a memory store.
type FailingStore struct {
	*memory.Store
	mu       sync.Mutex
	failGet  error
	failSet  error
	setCalls int
}

// NewFailingStore creates a store that works until told otherwise.
func NewFailingStore() *FailingStore {
	return &FailingStore{Store: memory.NewStore()}
}

// FailGet makes every Get return err (nil restores normal behaviour).
func (f *FailingStore) FailGet(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failGet = err
}

// FailSet makes every Set return err (nil restores normal behaviour).
func (f *FailingStore) FailSet(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSet = err
}

// SetCalls returns how many times Set was called, failed or not.
func (f *FailingStore) SetCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setCalls
}

func (f *FailingStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	err := f.failGet
	f.mu.Unlock()
	if err != nil {
		return "", err
	}
	return f.Store.Get(ctx, key)
}

func (f *FailingStore) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	f.setCalls++
	err := f.failSet
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Store.Set(ctx, key, value)
}

// BufferLogger returns a debug-level logger writing into the returned buffer.
func BufferLogger(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return logging.NewWithWriter(&buf, slog.LevelDebug), &buf
}

