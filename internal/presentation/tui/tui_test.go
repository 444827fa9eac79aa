package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner_Ascii(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, termenv.Ascii)

	out := buf.String()
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, `/ __/ _' | |/ __|`)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), len(bannerLines))
}

func TestPrintBanner_Colored(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, termenv.TrueColor)
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestStyledDisplay(t *testing.T) {
	snap := domain.Snapshot{Main: "14", Sub: "3 + 4 × 2"}

	assert.Equal(t, "3 + 4 × 2\n= 14", StyledDisplay(termenv.Ascii)(snap))

	colored := StyledDisplay(termenv.TrueColor)(snap)
	assert.Contains(t, colored, "\x1b[")
	assert.Contains(t, colored, "= 14")
}

func TestHistoryRenderer(t *testing.T) {
	render, err := HistoryRenderer("notty")
	require.NoError(t, err)

	out, err := render([]domain.HistoryItem{
		{Expression: "2", Result: 14},
		{Expression: "0", Result: 3},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Expression")
	assert.Contains(t, out, "14")

	empty, err := render(nil)
	require.NoError(t, err)
	assert.Contains(t, empty, "No history")
}
