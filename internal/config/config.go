// Package config loads calcpad settings from a YAML file and CALCPAD_*
// environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// ErrInvalid is returned when a loaded configuration cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete calcpad configuration.
type Config struct {
	LogLevel string         `mapstructure:"log_level"`
	Store    StoreConfig    `mapstructure:"store"`
	History  HistoryConfig  `mapstructure:"history"`
	Server   ServerConfig   `mapstructure:"server"`
	Terminal TerminalConfig `mapstructure:"terminal"`
}

// StoreConfig selects where the history blob is persisted.
type StoreConfig struct {
	Driver string      `mapstructure:"driver"`
	Path   string      `mapstructure:"path"`
	Redis  RedisConfig `mapstructure:"redis"`
	// EncryptionKey is 64 hex characters (AES-256). Empty disables encryption.
	EncryptionKey string `mapstructure:"encryption_key"`
}

// RedisConfig configures the redis driver.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
	// Lock serializes server sessions across replicas with a redis lock.
	Lock bool `mapstructure:"lock"`
}

// HistoryConfig configures the persisted history.
type HistoryConfig struct {
	Key      string `mapstructure:"key"`
	Capacity int    `mapstructure:"capacity"`
}

// ServerConfig configures `calcpad serve`.
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Metrics      bool   `mapstructure:"metrics"`
	Tracing      bool   `mapstructure:"tracing"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// TerminalConfig configures `calcpad run`.
type TerminalConfig struct {
	// Style is a glamour style name; empty detects the background.
	Style  string `mapstructure:"style"`
	Banner bool   `mapstructure:"banner"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel: "info",
		Store: StoreConfig{
			Driver: DriverFile,
			Path:   ".calcpad",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "calcpad:",
			},
		},
		History: HistoryConfig{
			Key:      "calculator-history",
			Capacity: 50,
		},
		Server: ServerConfig{
			Port:    8080,
			Metrics: true,
		},
		Terminal: TerminalConfig{
			Banner: true,
		},
	}
}

// envKeys maps environment variables to configuration keys.
var envKeys = map[string]string{
	"CALCPAD_LOG_LEVEL":            "log_level",
	"CALCPAD_STORE_DRIVER":         "store.driver",
	"CALCPAD_STORE_PATH":           "store.path",
	"CALCPAD_STORE_ENCRYPTION_KEY": "store.encryption_key",
	"CALCPAD_REDIS_ADDR":           "store.redis.addr",
	"CALCPAD_REDIS_PASSWORD":       "store.redis.password",
	"CALCPAD_REDIS_DB":             "store.redis.db",
	"CALCPAD_REDIS_PREFIX":         "store.redis.prefix",
	"CALCPAD_REDIS_TTL":            "store.redis.ttl",
	"CALCPAD_REDIS_LOCK":           "store.redis.lock",
	"CALCPAD_HISTORY_KEY":          "history.key",
	"CALCPAD_HISTORY_CAPACITY":     "history.capacity",
	"CALCPAD_SERVER_PORT":          "server.port",
	"CALCPAD_SERVER_METRICS":       "server.metrics",
	"CALCPAD_SERVER_TRACING":       "server.tracing",
	"CALCPAD_OTLP_ENDPOINT":        "server.otlp_endpoint",
	"CALCPAD_TERMINAL_STYLE":       "terminal.style",
	"CALCPAD_TERMINAL_BANNER":      "terminal.banner",
}

// Load reads the YAML file at path (skipped when path is empty), applies
// the CALCPAD_* environment variables on top and validates the result.
func Load(path string) (Config, error) {
	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}

	for env, key := range envKeys {
		if v, ok := os.LookupEnv(env); ok {
			set(raw, key, v)
		}
	}

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(raw map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

// set stores value under a dotted key, creating nested maps on the way.
func set(m map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis, DriverSQLite:
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalid, c.Store.Driver)
	}
	if (c.Store.Driver == DriverFile || c.Store.Driver == DriverSQLite) && c.Store.Path == "" {
		return fmt.Errorf("%w: store.path is required for the %s driver", ErrInvalid, c.Store.Driver)
	}
	if c.History.Key == "" {
		return fmt.Errorf("%w: history.key is empty", ErrInvalid)
	}
	if c.History.Capacity < 1 {
		return fmt.Errorf("%w: history.capacity must be positive", ErrInvalid)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalid, c.Server.Port)
	}
	if _, err := c.Store.Key(); err != nil {
		return err
	}
	return nil
}

// Key decodes the encryption key. It returns nil when encryption is off.
func (s StoreConfig) Key() ([]byte, error) {
	if s.EncryptionKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(s.EncryptionKey)
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("%w: store.encryption_key must be 64 hex characters", ErrInvalid)
	}
	return key, nil
}
