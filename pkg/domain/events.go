package domain

import (
	"context"
	"time"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
}

// IntentEvent is emitted after an intent has been applied.
type IntentEvent struct {
	EventBase
	Intent   Intent   `json:"intent"`
	Snapshot Snapshot `json:"snapshot"`
	Err      error    `json:"-"`
}

// CalculationEvent is emitted when a pending operation collapses.
type CalculationEvent struct {
	EventBase
	Operator   Operator   `json:"operator"`
	Completion Completion `json:"completion"`
}

// HistoryEvent is emitted after every history mutation or load.
type HistoryEvent struct {
	EventBase
	Items []HistoryItem `json:"items"`
}

// Hooks defines observability callbacks. Nil callbacks are skipped.
type Hooks struct {
	OnIntent        func(context.Context, *IntentEvent)
	OnCalculate     func(context.Context, *CalculationEvent)
	OnHistoryChange func(context.Context, *HistoryEvent)
}
