package domain

import "fmt"

// Operator is the code of a binary arithmetic operator.
type Operator string

const (
	OpNone     Operator = ""
	OpAdd      Operator = "+"
	OpSubtract Operator = "-"
	OpMultiply Operator = "*"
	OpDivide   Operator = "/"
	OpModulo   Operator = "%"
)

var glyphs = map[Operator]string{
	OpAdd:      "+",
	OpSubtract: "−",
	OpMultiply: "×",
	OpDivide:   "÷",
	OpModulo:   "%",
}

// Glyph returns the display symbol for an operator code.
// Unknown codes are returned unchanged.
func Glyph(op Operator) string {
	if g, ok := glyphs[op]; ok {
		return g
	}
	return string(op)
}

// Valid reports whether op is one of the five supported operators.
func (op Operator) Valid() bool {
	_, ok := glyphs[op]
	return ok
}

// ParseOperator accepts an operator code or its display glyph.
func ParseOperator(s string) (Operator, error) {
	if op := Operator(s); op.Valid() {
		return op, nil
	}
	for op, g := range glyphs {
		if g == s {
			return op, nil
		}
	}
	switch s {
	case "x", "X":
		return OpMultiply, nil
	}
	return OpNone, fmt.Errorf("%w: %q", ErrInvalidOperator, s)
}
