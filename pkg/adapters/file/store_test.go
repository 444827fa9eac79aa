package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/calcpad/pkg/adapters/file"
	"github.com/aretw0/calcpad/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunKVStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_KeyEscaping(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "calculator-history:../escape", "[]"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, ".json", filepath.Ext(entries[0].Name()))

	got, err := store.Get(ctx, "calculator-history:../escape")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestFileStore_EmptyKey(t *testing.T) {
	store := file.New(t.TempDir())
	assert.Error(t, store.Set(context.Background(), "", "x"))
	_, err := store.Get(context.Background(), "")
	assert.Error(t, err)
}

func TestFileStore_DefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join(".calcpad", "store"), file.New("").BasePath)
}
