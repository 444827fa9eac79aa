package domain

// Phase is the input phase of the calculator.
type Phase string

const (
	// PhaseAccumulating means digits extend the current operand.
	PhaseAccumulating Phase = "accumulating"
	// PhaseAwaitingSecondOperand means an operator was just staged.
	PhaseAwaitingSecondOperand Phase = "awaiting_second_operand"
	// PhaseAwaitingFirstOperand means a result was just committed; the next
	// digit starts a fresh calculation.
	PhaseAwaitingFirstOperand Phase = "awaiting_first_operand"
)

// State is the complete input state of one calculator.
type State struct {
	// CurrentInput is the operand being typed or the last result. Never empty.
	CurrentInput string

	// PreviousInput is the staged left operand, empty when no operator is pending.
	PreviousInput string

	// Operator is the pending binary operator (OpNone when none).
	Operator Operator

	// Phase replaces the display-reset flag.
	Phase Phase

	// Expression is the trace of everything typed for the current chain.
	Expression Expression
}

// NewState returns the initial state: "0", no operand staged, no operator.
func NewState() State {
	return State{
		CurrentInput: "0",
		Phase:        PhaseAccumulating,
		Expression:   NewExpression("0"),
	}
}

// ShouldResetDisplay reports whether the next digit starts a new operand.
func (s State) ShouldResetDisplay() bool {
	return s.Phase != PhaseAccumulating
}

// Snapshot returns what the display shows for this state.
func (s State) Snapshot() Snapshot {
	return Snapshot{
		Main: s.CurrentInput,
		Sub:  s.Expression.String(),
	}
}

// Snapshot is the display surface: the main line and the expression line.
type Snapshot struct {
	Main string `json:"main"`
	Sub  string `json:"sub"`
}
