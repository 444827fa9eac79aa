package calcpad

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/calcpad/internal/logging"
	"github.com/aretw0/calcpad/internal/runtime"
	"github.com/aretw0/calcpad/pkg/adapters/memory"
	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/aretw0/calcpad/pkg/history"
	"github.com/aretw0/calcpad/pkg/observability"
	"github.com/aretw0/calcpad/pkg/ports"
)

// Calculator is the high-level entry point of the library.
// It owns one input state and one history log and applies intents one at a time.
type Calculator struct {
	machine *runtime.Machine
	history *history.Store

	store      ports.KVStore
	historyKey string
	capacity   int
	confirmer  ports.Confirmer
	logger     *slog.Logger
	now        func() time.Time
	hookSets   []domain.Hooks
	hooks      domain.Hooks

	mu    sync.Mutex
	state domain.State
}

// Option defines a functional option for configuring the Calculator.
type Option func(*Calculator)

// WithStore sets the key-value store that persists history (default: in-memory).
func WithStore(store ports.KVStore) Option {
	return func(c *Calculator) {
		c.store = store
	}
}

// WithHistoryKey sets the key the history is stored under.
func WithHistoryKey(key string) Option {
	return func(c *Calculator) {
		c.historyKey = key
	}
}

// WithHistoryCapacity bounds the history length.
func WithHistoryCapacity(n int) Option {
	return func(c *Calculator) {
		c.capacity = n
	}
}

// WithConfirmer sets the approval step for clearing history.
// Without one, clear-history requests are refused.
func WithConfirmer(confirmer ports.Confirmer) Option {
	return func(c *Calculator) {
		c.confirmer = confirmer
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Calculator) {
		c.logger = logger
	}
}

// WithClock overrides the clock used to stamp history entries.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		c.now = now
	}
}

// WithHooks registers observability hooks. It may be given more than once;
// hook sets run in registration order.
func WithHooks(hooks domain.Hooks) Option {
	return func(c *Calculator) {
		c.hookSets = append(c.hookSets, hooks)
	}
}

// New creates a calculator in its initial state. Call Start to load history.
func New(opts ...Option) *Calculator {
	c := &Calculator{
		historyKey: history.DefaultKey,
		capacity:   history.DefaultCapacity,
		confirmer:  ports.NeverConfirm,
		logger:     logging.NewNop(),
		now:        time.Now,
		state:      domain.NewState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = memory.NewStore()
	}

	c.hooks = observability.Combine(c.hookSets...)
	c.machine = runtime.NewMachine(runtime.WithLogger(c.logger))
	c.history = history.New(c.store,
		history.WithKey(c.historyKey),
		history.WithCapacity(c.capacity),
		history.WithConfirmer(c.confirmer),
		history.WithLogger(c.logger),
		history.WithClock(c.now),
		history.WithObserver(c.emitHistory),
	)
	return c
}

// Start loads the persisted history. Load failures are logged and leave
// the history empty.
func (c *Calculator) Start(ctx context.Context) {
	n := c.history.Load(ctx)
	c.logger.Debug("history loaded", "key", c.historyKey, "entries", n)
}

// Dispatch applies one intent and returns the resulting display snapshot.
// Inputs a UI would ignore (a second decimal point, an early equals) are
// silent no-ops; malformed intents return an error and leave the state as is.
func (c *Calculator) Dispatch(ctx context.Context, intent domain.Intent) (domain.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.apply(ctx, intent)
	snap := c.state.Snapshot()
	if c.hooks.OnIntent != nil {
		c.hooks.OnIntent(ctx, &domain.IntentEvent{
			EventBase: domain.EventBase{Timestamp: c.now()},
			Intent:    intent,
			Snapshot:  snap,
			Err:       err,
		})
	}
	return snap, err
}

func (c *Calculator) apply(ctx context.Context, intent domain.Intent) error {
	if err := intent.Validate(); err != nil {
		return err
	}

	switch intent.Kind {
	case domain.IntentSelectHistory:
		entry, err := c.history.Get(intent.Index)
		if err != nil {
			return fmt.Errorf("failed to select history entry: %w", err)
		}
		c.state = c.machine.Replay(entry)
		return nil
	case domain.IntentClearHistory:
		c.history.Clear(ctx)
		return nil
	}

	pending := c.state.Operator
	next, done, err := c.machine.Apply(c.state, intent)
	if err != nil {
		return err
	}
	c.state = next
	if done != nil {
		c.complete(ctx, pending, *done)
	}
	return nil
}

// complete records a finished calculation. The state is already committed;
// persistence inside Record is best effort.
func (c *Calculator) complete(ctx context.Context, op domain.Operator, done domain.Completion) {
	c.history.Record(ctx, done.Expression, done.Result)
	if c.hooks.OnCalculate != nil {
		c.hooks.OnCalculate(ctx, &domain.CalculationEvent{
			EventBase:  domain.EventBase{Timestamp: c.now()},
			Operator:   op,
			Completion: done,
		})
	}
}

func (c *Calculator) emitHistory(ctx context.Context, items []domain.HistoryItem) {
	if c.hooks.OnHistoryChange == nil {
		return
	}
	c.hooks.OnHistoryChange(ctx, &domain.HistoryEvent{
		EventBase: domain.EventBase{Timestamp: c.now()},
		Items:     items,
	})
}

// Digit enters a digit or the decimal point.
func (c *Calculator) Digit(ctx context.Context, d string) (domain.Snapshot, error) {
	return c.Dispatch(ctx, domain.DigitIntent(d))
}

// Operator stages a binary operator, collapsing a pending one first.
func (c *Calculator) Operator(ctx context.Context, op domain.Operator) (domain.Snapshot, error) {
	return c.Dispatch(ctx, domain.OperatorIntent(op))
}

// Equals collapses the pending operation.
func (c *Calculator) Equals(ctx context.Context) (domain.Snapshot, error) {
	return c.Dispatch(ctx, domain.EqualsIntent())
}

// Clear resets the input state. History is untouched.
func (c *Calculator) Clear(ctx context.Context) (domain.Snapshot, error) {
	return c.Dispatch(ctx, domain.ClearIntent())
}

// Delete removes the last typed character.
func (c *Calculator) Delete(ctx context.Context) (domain.Snapshot, error) {
	return c.Dispatch(ctx, domain.DeleteIntent())
}

// SelectHistory loads the result of the entry at index (0 is the most recent).
func (c *Calculator) SelectHistory(ctx context.Context, index int) (domain.Snapshot, error) {
	return c.Dispatch(ctx, domain.SelectHistoryIntent(index))
}

// ClearHistory empties the history once the confirmer approves.
func (c *Calculator) ClearHistory(ctx context.Context) (domain.Snapshot, error) {
	return c.Dispatch(ctx, domain.ClearHistoryIntent())
}

// Snapshot returns the current display.
func (c *Calculator) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Snapshot()
}

// State returns a copy of the current input state.
func (c *Calculator) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// History returns the render list, most recent first.
func (c *Calculator) History() []domain.HistoryItem {
	return c.history.Items()
}

// Entries returns the full history entries, timestamps included.
func (c *Calculator) Entries() []domain.HistoryEntry {
	return c.history.Entries()
}

// HistoryKey returns the key the history is persisted under.
func (c *Calculator) HistoryKey() string {
	return c.history.Key()
}
