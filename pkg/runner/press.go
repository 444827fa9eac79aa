package runner

import (
	"context"

	"github.com/aretw0/calcpad"
	"github.com/aretw0/calcpad/pkg/domain"
)

// Result combines the display and the history for rich clients (HTTP, MCP, eval).
type Result struct {
	Snapshot domain.Snapshot      `json:"snapshot"`
	History  []domain.HistoryItem `json:"history"`
}

// Press cleans and parses a line of keys, dispatches every intent in
// order and returns the final display and history. It stops at the first
// rejected intent; the returned Result then reflects the state reached so far.
func Press(ctx context.Context, calc *calcpad.Calculator, keys string) (*Result, error) {
	clean, err := CleanKeys(keys)
	if err != nil {
		return nil, err
	}
	intents, err := ParseLine(clean)
	if err != nil {
		return nil, err
	}
	return Apply(ctx, calc, intents...)
}

// Apply dispatches intents in order and returns the final display and history.
func Apply(ctx context.Context, calc *calcpad.Calculator, intents ...domain.Intent) (*Result, error) {
	for _, in := range intents {
		if _, err := calc.Dispatch(ctx, in); err != nil {
			return snapshot(calc), err
		}
	}
	return snapshot(calc), nil
}

func snapshot(calc *calcpad.Calculator) *Result {
	history := calc.History()
	if history == nil {
		history = []domain.HistoryItem{}
	}
	return &Result{Snapshot: calc.Snapshot(), History: history}
}
