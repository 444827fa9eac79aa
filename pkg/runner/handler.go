package runner

import (
	"context"

	"github.com/aretw0/calcpad/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (terminal) and JSON (structured) modes.
type IOHandler interface {
	// Display presents the calculator display.
	Display(ctx context.Context, snap domain.Snapshot) error

	// History presents the history list, most recent first.
	History(ctx context.Context, items []domain.HistoryItem) error

	// Input reads one line from the user.
	Input(ctx context.Context) (string, error)

	// Confirm asks the user to approve a prompt. Handlers double as the
	// ports.Confirmer behind history clearing.
	Confirm(ctx context.Context, prompt string) (bool, error)

	// SystemOutput presents a meta-message (errors, help, status updates).
	SystemOutput(ctx context.Context, msg string) error
}

// DisplayRenderer formats the display for a text handler.
type DisplayRenderer func(domain.Snapshot) string

// HistoryRenderer formats the history list for a text handler.
type HistoryRenderer func([]domain.HistoryItem) (string, error)
