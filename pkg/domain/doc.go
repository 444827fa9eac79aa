/*
Package domain contains the core models of the calculator.

It defines the calculator state, the expression trace, operators, intents and
history entries. The package is pure: it performs no I/O and depends on no
adapter, so every transition built on top of it stays reproducible.

# Key Entities

  - State: the input buffer, staged operand, pending operator, phase and expression trace.
  - Expression: the trace of operands and operators, rendered to text only at the edges.
  - Intent: a classified user action (digit, operator, equals, clear, delete, history).
  - HistoryEntry: one completed calculation with its timestamp.
*/
package domain
