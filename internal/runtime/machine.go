package runtime

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/calcpad/internal/logging"
	"github.com/aretw0/calcpad/pkg/domain"
)

// Machine is the calculator input state machine.
// Every transition is a pure function of a domain.State; the Machine itself
// holds no calculator state and is safe for concurrent use.
type Machine struct {
	logger *slog.Logger
	digits map[domain.Phase]digitTransition
}

type digitTransition func(s domain.State, d string) domain.State

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithLogger sets the logger used for transition tracing.
func WithLogger(logger *slog.Logger) MachineOption {
	return func(m *Machine) {
		m.logger = logger
	}
}

// NewMachine creates a Machine.
func NewMachine(opts ...MachineOption) *Machine {
	m := &Machine{
		logger: logging.NewNop(),
	}
	m.digits = map[domain.Phase]digitTransition{
		domain.PhaseAccumulating:          accumulate,
		domain.PhaseAwaitingSecondOperand: startOperand,
		domain.PhaseAwaitingFirstOperand:  startOperand,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Apply routes an intent to its transition. History intents are not handled
// here because they need the history store; they return ErrInvalidIntent.
func (m *Machine) Apply(s domain.State, intent domain.Intent) (domain.State, *domain.Completion, error) {
	switch intent.Kind {
	case domain.IntentDigit:
		next, err := m.InputDigit(s, intent.Value)
		return next, nil, err
	case domain.IntentOperator:
		op, err := domain.ParseOperator(intent.Value)
		if err != nil {
			return s, nil, err
		}
		return m.InputOperator(s, op)
	case domain.IntentEquals:
		next, done := m.Calculate(s)
		return next, done, nil
	case domain.IntentClear:
		return m.Clear(s), nil, nil
	case domain.IntentDelete:
		return m.DeleteLast(s), nil, nil
	}
	return s, nil, fmt.Errorf("%w: %q is not a machine intent", domain.ErrInvalidIntent, intent.Kind)
}

// InputDigit enters a digit or decimal point.
func (m *Machine) InputDigit(s domain.State, d string) (domain.State, error) {
	if !domain.IsDigit(d) {
		return s, fmt.Errorf("%w: %q", domain.ErrInvalidDigit, d)
	}
	transition, ok := m.digits[s.Phase]
	if !ok {
		return s, fmt.Errorf("%w: unknown phase %q", domain.ErrInvalidIntent, s.Phase)
	}
	return transition(s, d), nil
}

// startOperand begins a fresh operand. The expression restarts at d: the
// previous trace is dropped rather than extended.
func startOperand(s domain.State, d string) domain.State {
	s.CurrentInput = d
	s.Expression = domain.NewExpression(d)
	s.Phase = domain.PhaseAccumulating
	return s
}

func accumulate(s domain.State, d string) domain.State {
	switch {
	case s.CurrentInput == "0" && d != ".":
		s.CurrentInput = d
		s.Expression = s.Expression.ReplaceTrailingZero(d)
	case d == "." && strings.Contains(s.CurrentInput, "."):
		// a second decimal point is ignored
	default:
		s.CurrentInput += d
		s.Expression = s.Expression.AppendDigit(d)
	}
	return s
}

// InputOperator stages op. A pending operation with a typed second operand
// is collapsed first, so operators evaluate strictly left to right.
func (m *Machine) InputOperator(s domain.State, op domain.Operator) (domain.State, *domain.Completion, error) {
	if !op.Valid() {
		return s, nil, fmt.Errorf("%w: %q", domain.ErrInvalidOperator, op)
	}

	var done *domain.Completion
	if s.Operator != domain.OpNone && !s.ShouldResetDisplay() && s.PreviousInput != "" {
		s, done = m.Calculate(s)
	}

	s.Operator = op
	s.PreviousInput = s.CurrentInput
	s.Phase = domain.PhaseAwaitingSecondOperand
	s.Expression = s.Expression.WithOperator(op)
	return s, done, nil
}

// Calculate collapses the pending operation. It returns the state unchanged
// and a nil Completion when there is nothing to compute.
func (m *Machine) Calculate(s domain.State) (domain.State, *domain.Completion) {
	if s.Operator == domain.OpNone || s.ShouldResetDisplay() || s.PreviousInput == "" {
		return s, nil
	}

	prev := domain.ParseNumber(s.PreviousInput)
	current := domain.ParseNumber(s.CurrentInput)
	result := Round(Evaluate(prev, current, s.Operator))

	done := &domain.Completion{
		Expression: s.Expression.String(),
		Result:     result,
	}
	m.logger.Debug("calculated",
		"left", s.PreviousInput,
		"op", string(s.Operator),
		"right", s.CurrentInput,
		"result", result,
	)

	text := domain.FormatNumber(result)
	return domain.State{
		CurrentInput: text,
		Phase:        domain.PhaseAwaitingFirstOperand,
		Expression:   domain.NewExpression(text),
	}, done
}

// Clear returns the initial state.
func (m *Machine) Clear(domain.State) domain.State {
	return domain.NewState()
}

// DeleteLast removes the last typed character. Nothing is deleted while a
// fresh operand is pending; a single remaining character becomes "0".
func (m *Machine) DeleteLast(s domain.State) domain.State {
	if s.ShouldResetDisplay() {
		return s
	}
	if len(s.CurrentInput) > 1 {
		s.CurrentInput = s.CurrentInput[:len(s.CurrentInput)-1]
		s.Expression = s.Expression.Backspace()
		return s
	}
	s.CurrentInput = "0"
	s.Expression = s.Expression.Backspace().AppendDigit("0")
	return s
}

// Replay loads a past result as the current value, ready for a new chain.
func (m *Machine) Replay(entry domain.HistoryEntry) domain.State {
	text := domain.FormatNumber(entry.Result)
	return domain.State{
		CurrentInput: text,
		Phase:        domain.PhaseAwaitingFirstOperand,
		Expression:   domain.NewExpression(text),
	}
}
