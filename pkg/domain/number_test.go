package domain_test

import (
	"math"
	"testing"

	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{7, "7"},
		{-12.5, "-12.5"},
		{0.3, "0.3"},
		{0.000001, "0.000001"},
		{0.0000005, "5e-7"},
		{123456789012, "123456789012"},
		{1e21, "1e+21"},
		{-2.5e22, "-2.5e+22"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{math.NaN(), "NaN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.FormatNumber(tt.in))
	}
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 12.5, domain.ParseNumber("12.5"))
	assert.Equal(t, 5.0, domain.ParseNumber("5."))
	assert.Equal(t, 0.5, domain.ParseNumber(".5"))
	assert.True(t, math.IsInf(domain.ParseNumber("Infinity"), 1))
	assert.True(t, math.IsInf(domain.ParseNumber("-Infinity"), -1))
	assert.True(t, math.IsNaN(domain.ParseNumber("NaN")))
	assert.True(t, math.IsNaN(domain.ParseNumber(".")))
	assert.True(t, math.IsInf(domain.ParseNumber("1e400"), 1))
}
