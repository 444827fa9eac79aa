package domain_test

import (
	"testing"

	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlyph(t *testing.T) {
	tests := []struct {
		op   domain.Operator
		want string
	}{
		{domain.OpAdd, "+"},
		{domain.OpSubtract, "−"},
		{domain.OpMultiply, "×"},
		{domain.OpDivide, "÷"},
		{domain.OpModulo, "%"},
		{domain.Operator("^"), "^"},
		{domain.OpNone, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.Glyph(tt.op), "glyph for %q", tt.op)
	}
	assert.NotEqual(t, "-", domain.Glyph(domain.OpSubtract), "minus must not be a hyphen")
}

func TestParseOperator(t *testing.T) {
	op, err := domain.ParseOperator("*")
	require.NoError(t, err)
	assert.Equal(t, domain.OpMultiply, op)

	op, err = domain.ParseOperator("÷")
	require.NoError(t, err)
	assert.Equal(t, domain.OpDivide, op)

	op, err = domain.ParseOperator("x")
	require.NoError(t, err)
	assert.Equal(t, domain.OpMultiply, op)

	_, err = domain.ParseOperator("^")
	assert.ErrorIs(t, err, domain.ErrInvalidOperator)
}

func TestIntent_Validate(t *testing.T) {
	assert.NoError(t, domain.DigitIntent("7").Validate())
	assert.NoError(t, domain.DigitIntent(".").Validate())
	assert.ErrorIs(t, domain.DigitIntent("12").Validate(), domain.ErrInvalidDigit)
	assert.ErrorIs(t, domain.DigitIntent("a").Validate(), domain.ErrInvalidDigit)
	assert.NoError(t, domain.OperatorIntent(domain.OpModulo).Validate())
	assert.ErrorIs(t, domain.Intent{Kind: domain.IntentOperator, Value: "?"}.Validate(), domain.ErrInvalidOperator)
	assert.ErrorIs(t, domain.SelectHistoryIntent(-1).Validate(), domain.ErrHistoryIndex)
	assert.ErrorIs(t, domain.Intent{Kind: "jump"}.Validate(), domain.ErrInvalidIntent)
	assert.NoError(t, domain.ClearHistoryIntent().Validate())
}
