package domain

import "fmt"

// IntentKind names a classified user action.
type IntentKind string

const (
	IntentDigit         IntentKind = "digit"
	IntentOperator      IntentKind = "operator"
	IntentEquals        IntentKind = "equals"
	IntentClear         IntentKind = "clear"
	IntentDelete        IntentKind = "delete"
	IntentSelectHistory IntentKind = "select_history"
	IntentClearHistory  IntentKind = "clear_history"
)

// Intent is a user action independent of the raw event that produced it.
type Intent struct {
	Kind IntentKind `json:"type"`
	// Value carries the digit or operator code.
	Value string `json:"value,omitempty"`
	// Index is the history position for IntentSelectHistory.
	Index int `json:"index,omitempty"`
}

// DigitIntent appends d ("0"-"9" or ".") to the current operand.
func DigitIntent(d string) Intent { return Intent{Kind: IntentDigit, Value: d} }

// OperatorIntent stages op, first resolving any pending operation.
func OperatorIntent(op Operator) Intent { return Intent{Kind: IntentOperator, Value: string(op)} }

// EqualsIntent completes the pending operation.
func EqualsIntent() Intent { return Intent{Kind: IntentEquals} }

// ClearIntent resets the display. History is untouched.
func ClearIntent() Intent { return Intent{Kind: IntentClear} }

// DeleteIntent removes the last character of the current operand.
func DeleteIntent() Intent { return Intent{Kind: IntentDelete} }

// SelectHistoryIntent loads the result of entry i (0 is the newest) as the current operand.
func SelectHistoryIntent(i int) Intent { return Intent{Kind: IntentSelectHistory, Index: i} }

// ClearHistoryIntent empties the history once confirmed.
func ClearHistoryIntent() Intent { return Intent{Kind: IntentClearHistory} }

// Validate checks that the intent is well formed.
func (i Intent) Validate() error {
	switch i.Kind {
	case IntentDigit:
		if !IsDigit(i.Value) {
			return fmt.Errorf("%w: %q", ErrInvalidDigit, i.Value)
		}
	case IntentOperator:
		if _, err := ParseOperator(i.Value); err != nil {
			return err
		}
	case IntentSelectHistory:
		if i.Index < 0 {
			return fmt.Errorf("%w: %d", ErrHistoryIndex, i.Index)
		}
	case IntentEquals, IntentClear, IntentDelete, IntentClearHistory:
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidIntent, i.Kind)
	}
	return nil
}

// IsDigit reports whether s is a single digit or a decimal point.
func IsDigit(s string) bool {
	if len(s) != 1 {
		return false
	}
	return s == "." || (s[0] >= '0' && s[0] <= '9')
}
