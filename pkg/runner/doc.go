/*
Package runner is the terminal adapter of the calculator.

It classifies raw keys into intents, drives a calcpad.Calculator and
re-renders the display and the history through a pluggable IOHandler:
TextHandler for interactive terminals, JSONHandler for JSON Lines hosts.

# Usage

	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)))
	calc := calcpad.New(
		calcpad.WithHooks(r.Hooks()),
		calcpad.WithConfirmer(r.Confirmer()),
	)
	calc.Start(ctx)

	if err := r.Run(ctx, calc); err != nil {
		log.Fatal(err)
	}

Press and Apply serve request/response adapters that only need the final
display and history for a line of keys.
*/
package runner
