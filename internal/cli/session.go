package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/calcpad"
	"github.com/aretw0/calcpad/internal/presentation/tui"
	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/aretw0/calcpad/pkg/ports"
	"github.com/aretw0/calcpad/pkg/runner"
	"github.com/muesli/termenv"
)

// RunOptions configures an interactive session.
type RunOptions struct {
	// JSON switches to NDJSON events on output and JSON strings on input.
	JSON bool
	// Banner prints the banner when input is a terminal.
	Banner bool
	// Style is the glamour style for the history table.
	Style string
}

// RunSession runs the calculator loop on in/out until EOF, exit or ctx ends.
// A terminal gets the banner, a styled display and a rendered history table.
func RunSession(ctx context.Context, env *Env, in io.Reader, out io.Writer, opts RunOptions) error {
	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(in, out)
	} else {
		var textOpts []runner.TextHandlerOption
		if runner.IsTerminal(in) {
			profile := termenv.NewOutput(out).EnvColorProfile()
			if opts.Banner {
				tui.PrintBanner(out, profile)
			}
			textOpts = append(textOpts, runner.WithDisplayRenderer(tui.StyledDisplay(profile)))
			if render, err := tui.HistoryRenderer(opts.Style); err == nil {
				textOpts = append(textOpts, runner.WithHistoryRenderer(render))
			} else {
				env.Logger.Warn("falling back to plain history", "err", err)
			}
		}
		handler = runner.NewTextHandler(in, out, textOpts...)
	}

	r := runner.NewRunner(runner.WithInputHandler(handler), runner.WithLogger(env.Logger))
	calc := env.NewCalculator(ctx,
		calcpad.WithHooks(r.Hooks()),
		calcpad.WithConfirmer(r.Confirmer()),
	)
	return r.Run(ctx, calc)
}

// Eval presses keys on a calculator loaded from the store and writes the
// resulting display, or a JSON object when asJSON is set.
func Eval(ctx context.Context, env *Env, keys string, w io.Writer, asJSON bool) error {
	calc := env.NewCalculator(ctx)
	res, err := runner.Press(ctx, calc, keys)
	if err != nil {
		return err
	}
	if asJSON {
		return json.NewEncoder(w).Encode(struct {
			domain.Snapshot
			History []domain.HistoryItem `json:"history"`
		}{res.Snapshot, res.History})
	}
	_, err = fmt.Fprintln(w, runner.PlainDisplay(res.Snapshot))
	return err
}

// ListHistory writes the stored history with render, or as JSON when asJSON is set.
func ListHistory(ctx context.Context, env *Env, w io.Writer, render runner.HistoryRenderer, asJSON bool) error {
	items := env.NewCalculator(ctx).History()
	if asJSON {
		if items == nil {
			items = []domain.HistoryItem{}
		}
		return json.NewEncoder(w).Encode(items)
	}
	if render == nil {
		render = runner.PlainHistory
	}
	text, err := render(items)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, text)
	return err
}

// ClearHistory empties the stored history once confirmer approves.
// It reports whether the history was cleared.
func ClearHistory(ctx context.Context, env *Env, confirmer ports.Confirmer) (bool, error) {
	calc := env.NewCalculator(ctx, calcpad.WithConfirmer(confirmer))
	if len(calc.History()) == 0 {
		return false, nil
	}
	if _, err := calc.ClearHistory(ctx); err != nil {
		return false, err
	}
	return len(calc.History()) == 0, nil
}
