package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/calcpad/pkg/domain"
)

// LoggingHooks logs every lifecycle event at debug level.
func LoggingHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnIntent: func(ctx context.Context, e *domain.IntentEvent) {
			if e.Err != nil {
				logger.DebugContext(ctx, "intent_rejected", "kind", e.Intent.Kind, "value", e.Intent.Value, "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "intent", "kind", e.Intent.Kind, "value", e.Intent.Value, "main", e.Snapshot.Main)
		},
		OnCalculate: func(ctx context.Context, e *domain.CalculationEvent) {
			logger.DebugContext(ctx, "calculate", "expression", e.Completion.Expression, "result", e.Completion.Result)
		},
		OnHistoryChange: func(ctx context.Context, e *domain.HistoryEvent) {
			logger.DebugContext(ctx, "history_change", "entries", len(e.Items))
		},
	}
}

// Combine merges several hook sets; callbacks run in argument order.
func Combine(all ...domain.Hooks) domain.Hooks {
	var combined domain.Hooks
	for _, h := range all {
		combined.OnIntent = chain(combined.OnIntent, h.OnIntent)
		combined.OnCalculate = chain(combined.OnCalculate, h.OnCalculate)
		combined.OnHistoryChange = chain(combined.OnHistoryChange, h.OnHistoryChange)
	}
	return combined
}

func chain[E any](first, second func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	}
	return func(ctx context.Context, e *E) {
		first(ctx, e)
		second(ctx, e)
	}
}
