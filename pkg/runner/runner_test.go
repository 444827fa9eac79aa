package runner_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/calcpad"
	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/aretw0/calcpad/pkg/runner"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, input string, opts ...runner.TextHandlerOption) (*runner.Runner, *calcpad.Calculator, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(strings.NewReader(input), &out, opts...)))
	calc := calcpad.New(
		calcpad.WithHooks(r.Hooks()),
		calcpad.WithConfirmer(r.Confirmer()),
	)
	calc.Start(context.Background())
	return r, calc, &out
}

func TestRunner_Transcript(t *testing.T) {
	input := strings.Join([]string{
		"12+3=",
		"history",
		"4 x 5 =",
		"#2",
		"* 2 =",
		"clear-history",
		"y",
		"h",
		"9 / 0 =",
		"foo",
		"exit",
	}, "\n") + "\n"

	r, calc, out := newSession(t, input)
	require.NoError(t, r.Run(context.Background(), calc))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "session_transcript", out.Bytes())
}

func TestRunner_ClearHistoryRefused(t *testing.T) {
	r, calc, out := newSession(t, "2*3=\nclear-history\nn\n")
	require.NoError(t, r.Run(context.Background(), calc))

	assert.Len(t, calc.History(), 1)
	assert.Contains(t, out.String(), "Clear all history? [y/N] ")
	assert.NotContains(t, out.String(), runner.EmptyHistory)
}

func TestRunner_EndsOnEOF(t *testing.T) {
	r, calc, out := newSession(t, "7")
	require.NoError(t, r.Run(context.Background(), calc))
	assert.Equal(t, "7", calc.Snapshot().Main)
	assert.True(t, strings.HasSuffix(out.String(), "7\n= 7\n> "))
}

func TestRunner_CancelledContext(t *testing.T) {
	r, calc, _ := newSession(t, "1+1=\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, r.Run(ctx, calc))
	assert.Empty(t, calc.History())
}

func TestRunner_Help(t *testing.T) {
	r, calc, out := newSession(t, "help\n")
	require.NoError(t, r.Run(context.Background(), calc))
	assert.Contains(t, out.String(), "[System] keys:")
}

func TestRunner_RejectedIntentStopsLine(t *testing.T) {
	r, calc, out := newSession(t, "5 #3 +\n")
	require.NoError(t, r.Run(context.Background(), calc))

	assert.Contains(t, out.String(), "history index out of range")
	assert.Equal(t, "5", calc.Snapshot().Main, "keys after the rejected one are skipped")
	assert.Equal(t, "5", calc.Snapshot().Sub)
}

func TestRunner_CustomRenderers(t *testing.T) {
	r, calc, out := newSession(t, "1+1=\n",
		runner.WithPrompt(""),
		runner.WithDisplayRenderer(func(s domain.Snapshot) string { return "[" + s.Main + "]" }),
	)
	require.NoError(t, r.Run(context.Background(), calc))
	assert.Equal(t, "[0]\n[2]\n[1] 1 = 2\n", out.String())
}
