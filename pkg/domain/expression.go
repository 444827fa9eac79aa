package domain

import "strings"

// TokenKind distinguishes the two kinds of expression token.
type TokenKind int

const (
	TokenOperand TokenKind = iota
	TokenOperator
)

// Token is one element of an expression trace: either an operand as typed
// (or as produced by a previous result) or an operator.
type Token struct {
	Kind TokenKind
	Text string   // operand text, empty for operators
	Op   Operator // operator code, OpNone for operands
}

// OperandToken builds an operand token.
func OperandToken(text string) Token {
	return Token{Kind: TokenOperand, Text: text}
}

// OperatorToken builds an operator token.
func OperatorToken(op Operator) Token {
	return Token{Kind: TokenOperator, Op: op}
}

func (t Token) String() string {
	if t.Kind == TokenOperator {
		return " " + Glyph(t.Op) + " "
	}
	return t.Text
}

// Expression is the human-readable trace of what was typed, kept as a
// sequence of tokens. Every edit returns a new Expression; the receiver is
// never modified, so States holding an Expression can be copied freely.
type Expression struct {
	tokens []Token
}

// NewExpression starts a trace with a single operand.
func NewExpression(operand string) Expression {
	return Expression{tokens: []Token{OperandToken(operand)}}
}

// ExpressionOf builds a trace from explicit tokens.
func ExpressionOf(tokens ...Token) Expression {
	return Expression{tokens: append([]Token(nil), tokens...)}
}

// Tokens returns a copy of the token sequence.
func (e Expression) Tokens() []Token {
	return append([]Token(nil), e.tokens...)
}

// Len returns the number of tokens.
func (e Expression) Len() int { return len(e.tokens) }

// String renders the trace as display text.
func (e Expression) String() string {
	var b strings.Builder
	for _, t := range e.tokens {
		b.WriteString(t.String())
	}
	return b.String()
}

// lastOperand returns the index of the trailing operand token, or -1 when
// the trace is empty or ends with an operator.
func (e Expression) lastOperand() int {
	n := len(e.tokens)
	if n == 0 || e.tokens[n-1].Kind != TokenOperand {
		return -1
	}
	return n - 1
}

func (e Expression) withLast(text string) Expression {
	out := e.Tokens()
	out[len(out)-1].Text = text
	return Expression{tokens: out}
}

// AppendDigit extends the trailing operand, or opens a new operand after an
// operator.
func (e Expression) AppendDigit(d string) Expression {
	i := e.lastOperand()
	if i < 0 {
		return Expression{tokens: append(e.Tokens(), OperandToken(d))}
	}
	return e.withLast(e.tokens[i].Text + d)
}

// ReplaceTrailingZero swaps a trailing "0" of the last operand for d.
// Earlier zeros anywhere in the trace are left alone; a trace that does not
// end in "0" is returned unchanged.
func (e Expression) ReplaceTrailingZero(d string) Expression {
	i := e.lastOperand()
	if i < 0 || !strings.HasSuffix(e.tokens[i].Text, "0") {
		return e
	}
	text := e.tokens[i].Text
	return e.withLast(text[:len(text)-1] + d)
}

// Backspace drops the last character of the trailing operand. An operand
// that becomes empty is removed. Operator tokens are never split.
func (e Expression) Backspace() Expression {
	i := e.lastOperand()
	if i < 0 {
		return e
	}
	text := e.tokens[i].Text
	if len(text) <= 1 {
		return Expression{tokens: e.Tokens()[:i]}
	}
	return e.withLast(text[:len(text)-1])
}

// WithOperator appends an operator token.
func (e Expression) WithOperator(op Operator) Expression {
	return Expression{tokens: append(e.Tokens(), OperatorToken(op))}
}
