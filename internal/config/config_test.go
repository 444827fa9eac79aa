package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calcpad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "calculator-history", cfg.History.Key)
	assert.Equal(t, 50, cfg.History.Capacity)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
store:
  driver: redis
  redis:
    addr: cache:6379
    db: 2
    ttl: 24h
    lock: true
history:
  capacity: 10
server:
  port: 9090
  tracing: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, DriverRedis, cfg.Store.Driver)
	assert.Equal(t, "cache:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, 24*time.Hour, cfg.Store.Redis.TTL)
	assert.True(t, cfg.Store.Redis.Lock)
	assert.Equal(t, "calcpad:", cfg.Store.Redis.Prefix, "unset keys keep defaults")
	assert.Equal(t, 10, cfg.History.Capacity)
	assert.Equal(t, "calculator-history", cfg.History.Key)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Server.Tracing)
	assert.True(t, cfg.Server.Metrics)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "store:\n  driver: file\n  path: /tmp/a\n")
	t.Setenv("CALCPAD_STORE_DRIVER", "sqlite")
	t.Setenv("CALCPAD_STORE_PATH", "/tmp/calcpad.db")
	t.Setenv("CALCPAD_HISTORY_CAPACITY", "25")
	t.Setenv("CALCPAD_SERVER_METRICS", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/calcpad.db", cfg.Store.Path)
	assert.Equal(t, 25, cfg.History.Capacity)
	assert.False(t, cfg.Server.Metrics)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "colour: red\n", "failed to decode config"},
		{"bad yaml", "store: [\n", "failed to parse config"},
		{"bad driver", "store:\n  driver: tape\n", `unknown store driver "tape"`},
		{"zero capacity", "history:\n  capacity: 0\n", "history.capacity"},
		{"short key", "store:\n  encryption_key: abcd\n", "64 hex characters"},
		{"bad port", "server:\n  port: 70000\n", "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestStoreConfig_Key(t *testing.T) {
	key, err := StoreConfig{}.Key()
	require.NoError(t, err)
	assert.Nil(t, key)

	key, err = StoreConfig{EncryptionKey: strings.Repeat("ab", 32)}.Key()
	require.NoError(t, err)
	assert.Len(t, key, 32)

	_, err = StoreConfig{EncryptionKey: strings.Repeat("zz", 32)}.Key()
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
