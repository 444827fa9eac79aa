package memory_test

import (
	"testing"

	"github.com/aretw0/calcpad/pkg/adapters/memory"
	"github.com/aretw0/calcpad/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunKVStoreContract(t, store)
	assert.NotEmpty(t, store.Keys())
}
