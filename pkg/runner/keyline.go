package runner

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxLineSize bounds a line of keys in bytes. Longer lines are rejected
// whole so a batch is never half applied.
var MaxLineSize = 1024

var (
	ErrLineTooLong    = errors.New("key line too long")
	ErrInvalidUTF8    = errors.New("key line is not valid UTF-8")
	ErrUnsupportedKey = errors.New("unsupported key")
)

// glyphKeys are the only non-ASCII runes a key line may carry.
var glyphKeys = map[rune]bool{'×': true, '÷': true, '−': true}

// CleanKeys prepares a raw line for ParseLine.
//
// Terminal escape sequences (arrow keys, colour codes pasted along with the
// keys) are dropped whole, tabs and line breaks become key separators, and
// full-width keys such as "１２＋３" fold to their ASCII form. Any rune left
// that no key, word or JSON intent can contain is rejected.
func CleanKeys(line string) (string, error) {
	if len(line) > MaxLineSize {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrLineTooLong, len(line), MaxLineSize)
	}
	if !utf8.ValidString(line) {
		return "", ErrInvalidUTF8
	}

	folded := norm.NFKC.String(stripControls(line))
	for _, r := range folded {
		if r > unicode.MaxASCII && !glyphKeys[r] {
			return "", fmt.Errorf("%w: %q", ErrUnsupportedKey, r)
		}
	}
	return folded, nil
}

// stripControls removes CSI and SS3 sequences and control runes, keeping
// tab, CR and LF as plain spaces.
func stripControls(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		i += size
		switch {
		case r == '\x1b' && i < len(line) && line[i] == '[':
			i = skipCSI(line, i+1)
		case r == '\x1b' && i+1 < len(line) && line[i] == 'O':
			i += 2
		case r == '\t', r == '\r', r == '\n':
			b.WriteByte(' ')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// skipCSI returns the index just past the final byte (0x40-0x7E) of the
// sequence whose parameters start at i.
func skipCSI(line string, i int) int {
	for i < len(line) {
		c := line[i]
		i++
		if c >= 0x40 && c <= 0x7e {
			break
		}
	}
	return i
}
