package calcpad_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/calcpad"
	"github.com/aretw0/calcpad/internal/testutils"
	"github.com/aretw0/calcpad/pkg/adapters/memory"
	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/aretw0/calcpad/pkg/history"
	"github.com/aretw0/calcpad/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(t *testing.T, c *calcpad.Calculator, intents ...domain.Intent) domain.Snapshot {
	t.Helper()
	var snap domain.Snapshot
	for _, in := range intents {
		var err error
		snap, err = c.Dispatch(context.Background(), in)
		require.NoError(t, err)
	}
	return snap
}

var (
	plus   = domain.OperatorIntent(domain.OpAdd)
	times  = domain.OperatorIntent(domain.OpMultiply)
	equals = domain.EqualsIntent()
)

func digits(s string) []domain.Intent {
	out := make([]domain.Intent, 0, len(s))
	for _, r := range s {
		out = append(out, domain.DigitIntent(string(r)))
	}
	return out
}

func seq(parts ...[]domain.Intent) []domain.Intent {
	var out []domain.Intent
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func one(in domain.Intent) []domain.Intent { return []domain.Intent{in} }

func TestCalculator_InitialState(t *testing.T) {
	c := calcpad.New()
	assert.Equal(t, domain.Snapshot{Main: "0", Sub: "0"}, c.Snapshot())
	assert.Equal(t, domain.NewState(), c.State())
	assert.Empty(t, c.History())
	assert.Equal(t, history.DefaultKey, c.HistoryKey())
}

func TestCalculator_DigitsConcatenate(t *testing.T) {
	c := calcpad.New()
	snap := press(t, c, digits("12")...)
	assert.Equal(t, "12", snap.Main)
}

func TestCalculator_ChainingRecordsEveryCollapse(t *testing.T) {
	c := calcpad.New()
	snap := press(t, c, seq(digits("3"), one(plus), digits("4"), one(times), digits("2"), one(equals))...)

	assert.Equal(t, domain.Snapshot{Main: "14", Sub: "14"}, snap)
	items := c.History()
	require.Len(t, items, 2)
	assert.Equal(t, 14.0, items[0].Result)
	assert.Equal(t, 7.0, items[1].Result)
}

func TestCalculator_EqualsIsIdempotent(t *testing.T) {
	c := calcpad.New()
	first := press(t, c, seq(digits("2"), one(plus), digits("2"), one(equals))...)
	second := press(t, c, equals)

	assert.Equal(t, first, second)
	assert.Len(t, c.History(), 1, "a second equals records nothing")
}

func TestCalculator_FloatingPointNoise(t *testing.T) {
	c := calcpad.New()
	snap := press(t, c, seq(digits("0.1"), one(plus), digits("0.2"), one(equals))...)
	assert.Equal(t, "0.3", snap.Main)
}

func TestCalculator_RecordsWithClock(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := testutils.NewClock(start)
	c := calcpad.New(calcpad.WithClock(clock.Now))

	press(t, c, seq(digits("6"), one(times), digits("7"), one(equals))...)

	entries := c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, start.UnixMilli(), entries[0].Timestamp)
	assert.Equal(t, 42.0, entries[0].Result)
}

func TestCalculator_HistorySurvivesRestart(t *testing.T) {
	kv := memory.NewStore()
	ctx := context.Background()

	first := calcpad.New(calcpad.WithStore(kv), calcpad.WithHistoryKey("calculator-history:alice"))
	first.Start(ctx)
	press(t, first, seq(digits("9"), one(plus), digits("1"), one(equals))...)

	second := calcpad.New(calcpad.WithStore(kv), calcpad.WithHistoryKey("calculator-history:alice"))
	second.Start(ctx)
	require.Len(t, second.History(), 1)
	assert.Equal(t, 10.0, second.History()[0].Result)

	other := calcpad.New(calcpad.WithStore(kv))
	other.Start(ctx)
	assert.Empty(t, other.History(), "history keys are independent")
}

func TestCalculator_HistoryCapacity(t *testing.T) {
	c := calcpad.New(calcpad.WithHistoryCapacity(3))
	for i := 0; i < 5; i++ {
		press(t, c, seq(digits("1"), one(plus), digits("1"), one(equals))...)
	}
	assert.Len(t, c.History(), 3)
}

func TestCalculator_SelectHistory(t *testing.T) {
	c := calcpad.New()
	press(t, c, seq(digits("6"), one(times), digits("7"), one(equals))...)
	press(t, c, seq(digits("1"), one(plus), digits("1"), one(equals))...)

	snap, err := c.SelectHistory(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Snapshot{Main: "42", Sub: "42"}, snap)

	// The replayed value starts a new chain.
	snap = press(t, c, seq(one(plus), digits("8"), one(equals))...)
	assert.Equal(t, "50", snap.Main)
}

func TestCalculator_SelectHistoryOutOfRange(t *testing.T) {
	c := calcpad.New()
	press(t, c, digits("5")...)

	snap, err := c.SelectHistory(context.Background(), 3)
	assert.ErrorIs(t, err, domain.ErrHistoryIndex)
	assert.Equal(t, "5", snap.Main, "state is unchanged")

	_, err = c.SelectHistory(context.Background(), -1)
	assert.ErrorIs(t, err, domain.ErrHistoryIndex)
}

func TestCalculator_ClearHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("refused by default", func(t *testing.T) {
		c := calcpad.New()
		press(t, c, seq(digits("1"), one(plus), digits("1"), one(equals))...)
		_, err := c.ClearHistory(ctx)
		require.NoError(t, err)
		assert.Len(t, c.History(), 1)
	})

	t.Run("confirmed", func(t *testing.T) {
		kv := memory.NewStore()
		c := calcpad.New(calcpad.WithStore(kv), calcpad.WithConfirmer(ports.AlwaysConfirm))
		snap := press(t, c, seq(digits("1"), one(plus), digits("1"), one(equals))...)

		after, err := c.ClearHistory(ctx)
		require.NoError(t, err)
		assert.Empty(t, c.History())
		assert.Equal(t, snap, after, "the display is untouched")

		raw, err := kv.Get(ctx, history.DefaultKey)
		require.NoError(t, err)
		assert.Equal(t, "[]", raw)
	})
}

func TestCalculator_ClearKeepsHistory(t *testing.T) {
	c := calcpad.New()
	press(t, c, seq(digits("1"), one(plus), digits("1"), one(equals))...)
	snap := press(t, c, seq(digits("77"), one(domain.ClearIntent()))...)

	assert.Equal(t, domain.Snapshot{Main: "0", Sub: "0"}, snap)
	assert.Equal(t, domain.NewState(), c.State())
	assert.Len(t, c.History(), 1)
}

func TestCalculator_Delete(t *testing.T) {
	c := calcpad.New()
	snap := press(t, c, seq(digits("12"), one(domain.DeleteIntent()))...)
	assert.Equal(t, "1", snap.Main)
	snap = press(t, c, domain.DeleteIntent())
	assert.Equal(t, domain.Snapshot{Main: "0", Sub: "0"}, snap)
}

func TestCalculator_InvalidIntents(t *testing.T) {
	c := calcpad.New()
	press(t, c, digits("4")...)
	ctx := context.Background()

	tests := []struct {
		name   string
		intent domain.Intent
		want   error
	}{
		{"bad digit", domain.DigitIntent("a"), domain.ErrInvalidDigit},
		{"bad operator", domain.Intent{Kind: domain.IntentOperator, Value: "^"}, domain.ErrInvalidOperator},
		{"unknown kind", domain.Intent{Kind: "undo"}, domain.ErrInvalidIntent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := c.Dispatch(ctx, tt.intent)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, "4", snap.Main)
		})
	}
}

func TestCalculator_PersistFailureIsSwallowed(t *testing.T) {
	kv := testutils.NewFailingStore()
	kv.FailSet(errors.New("disk full"))
	logger, buf := testutils.BufferLogger(t)
	c := calcpad.New(calcpad.WithStore(kv), calcpad.WithLogger(logger))

	snap := press(t, c, seq(digits("2"), one(times), digits("3"), one(equals))...)

	assert.Equal(t, "6", snap.Main)
	assert.Len(t, c.History(), 1)
	assert.Contains(t, buf.String(), "disk full")
}

func TestCalculator_StartWithBrokenStore(t *testing.T) {
	kv := testutils.NewFailingStore()
	kv.FailGet(errors.New("connection reset"))
	c := calcpad.New(calcpad.WithStore(kv))

	c.Start(context.Background())
	assert.Empty(t, c.History())
	assert.Equal(t, "3", press(t, c, digits("3")...).Main)
}

func TestCalculator_Hooks(t *testing.T) {
	var (
		intents      []domain.IntentEvent
		calculations []domain.CalculationEvent
		histories    []int
	)
	hooks := domain.Hooks{
		OnIntent: func(_ context.Context, e *domain.IntentEvent) {
			intents = append(intents, *e)
		},
		OnCalculate: func(_ context.Context, e *domain.CalculationEvent) {
			calculations = append(calculations, *e)
		},
		OnHistoryChange: func(_ context.Context, e *domain.HistoryEvent) {
			histories = append(histories, len(e.Items))
		},
	}
	var second int
	c := calcpad.New(
		calcpad.WithHooks(hooks),
		calcpad.WithHooks(domain.Hooks{OnIntent: func(context.Context, *domain.IntentEvent) { second++ }}),
	)

	press(t, c, seq(digits("3"), one(plus), digits("4"), one(times), digits("2"), one(equals))...)
	_, err := c.Dispatch(context.Background(), domain.DigitIntent("x"))
	require.Error(t, err)

	require.Len(t, intents, 7)
	assert.Equal(t, 7, second)
	assert.Equal(t, "14", intents[5].Snapshot.Main)
	assert.ErrorIs(t, intents[6].Err, domain.ErrInvalidDigit)

	require.Len(t, calculations, 2)
	assert.Equal(t, domain.OpAdd, calculations[0].Operator)
	assert.Equal(t, 7.0, calculations[0].Completion.Result)
	assert.Equal(t, domain.OpMultiply, calculations[1].Operator)

	assert.Equal(t, []int{1, 2}, histories)
}

func TestCalculator_ConcurrentDispatch(t *testing.T) {
	c := calcpad.New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, _ = c.Digit(ctx, "1")
				_, _ = c.Operator(ctx, domain.OpAdd)
				_ = c.Snapshot()
				_ = c.History()
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, len(c.History()), history.DefaultCapacity)
}
