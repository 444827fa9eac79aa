package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/calcpad"
	"github.com/aretw0/calcpad/internal/logging"
	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/aretw0/calcpad/pkg/ports"
)

// HelpText lists the keys the runner understands.
const HelpText = `keys: 0-9 . + - * / % (x × ÷ − also work) = < (delete)
words: c|clear, del, enter, clear-history, #N (reuse history entry N)
commands: h|history, help, exit`

// Runner drives a Calculator from an IOHandler: read a line, dispatch its
// intents, re-render the display and, when it changed, the history.
type Runner struct {
	Handler IOHandler
	Logger  *slog.Logger

	mu      sync.Mutex
	dirty   bool
	history []domain.HistoryItem
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// NewRunner creates a Runner. Without a handler it reads stdin and writes stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	return r
}

// Hooks returns the callbacks the calculator must be built with so the
// runner learns about history changes.
func (r *Runner) Hooks() domain.Hooks {
	return domain.Hooks{
		OnHistoryChange: func(_ context.Context, e *domain.HistoryEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.dirty = true
			r.history = e.Items
		},
	}
}

// Confirmer returns the handler as the confirmation step for history clears.
func (r *Runner) Confirmer() ports.Confirmer {
	return ports.ConfirmFunc(r.Handler.Confirm)
}

// Run executes the read-dispatch-render loop until the input ends, the user
// types "exit" or ctx is cancelled. Rejected keys are reported and the loop goes on.
func (r *Runner) Run(ctx context.Context, calc *calcpad.Calculator) error {
	h := r.Handler

	if err := h.Display(ctx, calc.Snapshot()); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	if err := r.flushHistory(ctx); err != nil {
		return err
	}

	for {
		line, err := h.Input(ctx)
		if err != nil {
			if ctx.Err() != nil {
				r.Logger.Debug("runner input: context cancelled", "err", ctx.Err())
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "help", "?":
			if err := h.SystemOutput(ctx, HelpText); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			continue
		case "h", "history":
			if err := h.History(ctx, calc.History()); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			continue
		}

		if err := r.step(ctx, calc, line); err != nil {
			return err
		}
	}
}

// step dispatches one line. Only output failures are returned.
func (r *Runner) step(ctx context.Context, calc *calcpad.Calculator, line string) error {
	h := r.Handler

	intents, err := ParseLine(line)
	if err != nil {
		return r.report(ctx, err)
	}

	snap := calc.Snapshot()
	for _, in := range intents {
		snap, err = calc.Dispatch(ctx, in)
		if err != nil {
			r.Logger.Debug("intent rejected", "kind", in.Kind, "value", in.Value, "err", err)
			if err := r.report(ctx, err); err != nil {
				return err
			}
			break
		}
	}

	if err := h.Display(ctx, snap); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	return r.flushHistory(ctx)
}

func (r *Runner) report(ctx context.Context, err error) error {
	if outErr := r.Handler.SystemOutput(ctx, err.Error()); outErr != nil {
		return fmt.Errorf("output error: %w", outErr)
	}
	return nil
}

func (r *Runner) flushHistory(ctx context.Context) error {
	r.mu.Lock()
	dirty, items := r.dirty, r.history
	r.dirty = false
	r.mu.Unlock()

	if !dirty {
		return nil
	}
	if err := r.Handler.History(ctx, items); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	return nil
}
