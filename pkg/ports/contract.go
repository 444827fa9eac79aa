package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunKVStoreContract runs a suite of tests to verify that a KVStore
// implementation adheres to the defined interface contract.
func RunKVStoreContract(t *testing.T, store KVStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Set and Get", func(t *testing.T) {
		value := `[{"expression":"1 + 2","result":3,"timestamp":1}]`
		require.NoError(t, store.Set(ctx, key, value), "Set should not return error")

		got, err := store.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, value, got)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, "first"))
		require.NoError(t, store.Set(ctx, key, "second"))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "second", got, "last write wins")
	})

	t.Run("Empty Value", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, "[]"))
		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "[]", got)
	})

	t.Run("Keys Are Independent", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.NoError(t, store.Set(ctx, fmt.Sprintf("%s:%d", key, i), fmt.Sprintf("v%d", i)))
		}
		for i := 0; i < 3; i++ {
			got, err := store.Get(ctx, fmt.Sprintf("%s:%d", key, i))
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("v%d", i), got)
		}
	})

	t.Run("Unicode Value", func(t *testing.T) {
		value := `[{"expression":"8 ÷ 2 × 3","result":12,"timestamp":2}]`
		require.NoError(t, store.Set(ctx, key, value))
		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})
}
