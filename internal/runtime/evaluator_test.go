package runtime

import (
	"math"
	"testing"

	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	assert.Equal(t, 7.0, Evaluate(3, 4, domain.OpAdd))
	assert.Equal(t, -1.0, Evaluate(3, 4, domain.OpSubtract))
	assert.Equal(t, 12.0, Evaluate(3, 4, domain.OpMultiply))
	assert.Equal(t, 0.75, Evaluate(3, 4, domain.OpDivide))
	assert.Equal(t, -1.0, Evaluate(-7, 3, domain.OpModulo), "remainder takes the dividend's sign")
	assert.True(t, math.IsInf(Evaluate(1, 0, domain.OpDivide), 1))
	assert.True(t, math.IsInf(Evaluate(-1, 0, domain.OpDivide), -1))
	assert.True(t, math.IsNaN(Evaluate(1, 0, domain.OpModulo)))
	assert.True(t, math.IsNaN(Evaluate(1, 2, domain.Operator("^"))))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.3, Round(0.1+0.2))
	assert.Equal(t, 0.33333333, Round(1.0/3))
	assert.Equal(t, 123.0, Round(123))
	assert.True(t, math.IsInf(Round(math.Inf(-1)), -1))
	assert.True(t, math.IsNaN(Round(math.NaN())))
	assert.True(t, math.IsInf(Round(1e305), 1))
	assert.True(t, math.IsInf(Round(-1e305), -1))
}

func TestRound_Ties(t *testing.T) {
	assert.Equal(t, 45035996.27370497, Round(45035996.27370497))
	assert.Equal(t, 2.0, Round(1.999999999))
	assert.Equal(t, -2.0, Round(-1.999999999))
}
