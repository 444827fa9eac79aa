package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/aretw0/calcpad/pkg/ports"
	"github.com/stretchr/testify/assert"
)

// MockStore is a map-backed KVStore used to exercise the contract suite itself.
type MockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]string)}
}

func (m *MockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return v, nil
}

func (m *MockStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func TestMockStore_Contract(t *testing.T) {
	ports.RunKVStoreContract(t, NewMockStore())
}

func TestConfirmers(t *testing.T) {
	ctx := context.Background()

	ok, err := ports.AlwaysConfirm.Confirm(ctx, "Clear all history?")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = ports.NeverConfirm.Confirm(ctx, "Clear all history?")
	assert.NoError(t, err)
	assert.False(t, ok)

	var seen string
	f := ports.ConfirmFunc(func(_ context.Context, prompt string) (bool, error) {
		seen = prompt
		return true, nil
	})
	ok, _ = f.Confirm(ctx, "sure?")
	assert.True(t, ok)
	assert.Equal(t, "sure?", seen)
}

func TestContextConfirmer(t *testing.T) {
	ctx := context.Background()

	ok, err := ports.ContextConfirmer.Confirm(ctx, "Clear all history?")
	assert.NoError(t, err)
	assert.False(t, ok, "no approval in context")

	ok, _ = ports.ContextConfirmer.Confirm(ports.WithApproval(ctx, true), "Clear all history?")
	assert.True(t, ok)

	ok, _ = ports.ContextConfirmer.Confirm(ports.WithApproval(ctx, false), "Clear all history?")
	assert.False(t, ok)
}
