package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKeys(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"plain keys", "12+3=", "12+3="},
		{"trailing colour code", "12+3=\x1b[31m", "12+3="},
		{"colour around a key", "\x1b[1;32m7\x1b[0m*6=", "7*6="},
		{"arrow key", "9\x1b[A-4=", "9-4="},
		{"application mode arrow", "9\x1bOB-4=", "9-4="},
		{"lone escape", "1\x1b+2", "1+2"},
		{"tab and line breaks separate keys", "1\t+\r\n2", "1 +  2"},
		{"bell and null", "5\x07%\x002=", "5%2="},
		{"full-width digits and operators", "１２＋３＝", "12+3="},
		{"operator glyphs", "8×2÷4−1=", "8×2÷4−1="},
		{"words and history recall", "clear #2 del", "clear #2 del"},
		{"json intent", `{"type":"operator","value":"×"}`, `{"type":"operator","value":"×"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanKeys(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanKeys_Rejects(t *testing.T) {
	tests := []struct {
		name string
		line string
		err  error
	}{
		{"emoji", "1+😀", ErrUnsupportedKey},
		{"vulgar fraction", "½+1=", ErrUnsupportedKey},
		{"greek letter", "2×π=", ErrUnsupportedKey},
		{"broken utf-8", "12\xbd+3", ErrInvalidUTF8},
		{"too long", strings.Repeat("1", MaxLineSize+1), ErrLineTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CleanKeys(tt.line)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCleanKeys_ParsesAfterCleaning(t *testing.T) {
	clean, err := CleanKeys("6\x1b[0m×７=")
	require.NoError(t, err)

	intents, err := ParseLine(clean)
	require.NoError(t, err)
	assert.Len(t, intents, 4)
}

func TestCleanKeys_LimitIsInclusive(t *testing.T) {
	_, err := CleanKeys(strings.Repeat("1", MaxLineSize))
	assert.NoError(t, err)
}
