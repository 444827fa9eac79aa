package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/calcpad"
	"github.com/aretw0/calcpad/internal/config"
	"github.com/aretw0/calcpad/internal/logging"
	"github.com/aretw0/calcpad/pkg/adapters/file"
	"github.com/aretw0/calcpad/pkg/adapters/memory"
	"github.com/aretw0/calcpad/pkg/adapters/redis"
	"github.com/aretw0/calcpad/pkg/adapters/sqlite"
	"github.com/aretw0/calcpad/pkg/observability"
	"github.com/aretw0/calcpad/pkg/persistence/middleware"
	"github.com/aretw0/calcpad/pkg/ports"
	"github.com/aretw0/calcpad/pkg/session"
)

// Env holds what every command needs: the configuration, a logger and the
// history store built from store.* settings.
type Env struct {
	Config  config.Config
	Logger  *slog.Logger
	Store   ports.KVStore
	Metrics *observability.Metrics

	redis   *redis.Store
	closers []func() error
}

// EnvOption configures Open.
type EnvOption func(*Env)

// WithLogger sets the logger handed to calculators and stores.
func WithLogger(logger *slog.Logger) EnvOption {
	return func(e *Env) {
		e.Logger = logger
	}
}

// WithMetrics instruments the store and the calculators.
func WithMetrics(m *observability.Metrics) EnvOption {
	return func(e *Env) {
		e.Metrics = m
	}
}

// Open builds the store for cfg. Close must be called when done.
func Open(cfg config.Config, opts ...EnvOption) (*Env, error) {
	env := &Env{
		Config: cfg,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(env)
	}

	backend, err := env.openBackend()
	if err != nil {
		return nil, err
	}

	var mws []middleware.Middleware
	if env.Metrics != nil {
		mws = append(mws, middleware.NewMetricsMiddleware(env.Metrics))
	}
	key, err := cfg.Store.Key()
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	if key != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	env.Store = middleware.Chain(backend, mws...)

	env.Logger.Debug("store opened", "driver", cfg.Store.Driver, "encrypted", key != nil)
	return env, nil
}

func (e *Env) openBackend() (ports.KVStore, error) {
	sc := e.Config.Store
	switch sc.Driver {
	case config.DriverMemory:
		return memory.NewStore(), nil
	case config.DriverFile:
		return file.New(sc.Path), nil
	case config.DriverSQLite:
		path, err := sqlitePath(sc.Path)
		if err != nil {
			return nil, err
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, store.Close)
		return store, nil
	case config.DriverRedis:
		store := redis.New(sc.Redis.Addr, sc.Redis.Password, sc.Redis.DB,
			redis.WithPrefix(sc.Redis.Prefix),
			redis.WithTTL(sc.Redis.TTL),
		)
		e.redis = store
		e.closers = append(e.closers, store.Close)
		return store, nil
	}
	return nil, fmt.Errorf("%w: unknown store driver %q", config.ErrInvalid, sc.Driver)
}

// sqlitePath treats a path without extension as a directory holding calcpad.db.
func sqlitePath(path string) (string, error) {
	if path == ":memory:" || filepath.Ext(path) != "" {
		return path, nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create store directory: %w", err)
	}
	return filepath.Join(path, "calcpad.db"), nil
}

// Close releases the store connections.
func (e *Env) Close() error {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c())
	}
	e.closers = nil
	return errors.Join(errs...)
}

// Locker returns the redis lock when store.redis.lock is on, nil otherwise.
func (e *Env) Locker() ports.DistributedLocker {
	if e.redis == nil || !e.Config.Store.Redis.Lock {
		return nil
	}
	return redis.NewLocker(e.redis.Client(), e.Config.Store.Redis.Prefix)
}

// CalculatorOptions returns the options shared by every calculator of this
// process, followed by extra.
func (e *Env) CalculatorOptions(extra ...calcpad.Option) []calcpad.Option {
	opts := []calcpad.Option{
		calcpad.WithStore(e.Store),
		calcpad.WithHistoryKey(e.Config.History.Key),
		calcpad.WithHistoryCapacity(e.Config.History.Capacity),
		calcpad.WithLogger(e.Logger),
	}
	if e.Metrics != nil {
		opts = append(opts, calcpad.WithHooks(e.Metrics.Hooks()))
	}
	if e.Logger.Enabled(context.Background(), slog.LevelDebug) {
		opts = append(opts, calcpad.WithHooks(observability.LoggingHooks(e.Logger)))
	}
	return append(opts, extra...)
}

// NewCalculator creates a calculator on the configured store and loads its history.
func (e *Env) NewCalculator(ctx context.Context, extra ...calcpad.Option) *calcpad.Calculator {
	calc := calcpad.New(e.CalculatorOptions(extra...)...)
	calc.Start(ctx)
	return calc
}

// SessionManager creates a manager whose sessions share this store.
func (e *Env) SessionManager(extra ...calcpad.Option) *session.Manager {
	opts := []session.Option{
		session.WithLogger(e.Logger),
		session.WithCalculatorOptions(e.CalculatorOptions(extra...)...),
	}
	if locker := e.Locker(); locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	return session.NewManager(e.Store, opts...)
}
