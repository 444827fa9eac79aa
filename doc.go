/*
Package calcpad is an arithmetic calculator core with a persisted, bounded operation history.

A small input state machine turns discrete intents (digit, operator, equals, clear, delete,
history-select, history-clear) into an expression trace and a running result. Operators are
evaluated eagerly, left to right, with no precedence: pressing "3 + 4 ×" collapses "3 + 4"
into 7 before staging the multiplication.

# Architecture

The package follows a hexagonal layout. The calculator owns the input state and a history
log; everything that touches the outside world sits behind a port:

  - ports.KVStore persists the history blob (memory, file, Redis and SQLite adapters ship in pkg/adapters).
  - ports.Confirmer approves history clears (a terminal prompt, an HTTP query flag, or a policy).
  - domain.Hooks report intents, calculations and history changes (pkg/observability turns them into metrics).

In-memory state always commits first. Persisting history is a best-effort trailing step:
failures are logged and never surface to the caller.

# Usage

	calc := calcpad.New(
		calcpad.WithStore(file.New(".calcpad/store")),
		calcpad.WithConfirmer(ports.AlwaysConfirm),
	)
	calc.Start(ctx)

	calc.Digit(ctx, "1")
	calc.Digit(ctx, "2")
	calc.Operator(ctx, domain.OpAdd)
	calc.Digit(ctx, "3")
	snap, _ := calc.Equals(ctx) // snap.Main == "15"
*/
package calcpad
