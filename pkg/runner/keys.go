package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/calcpad/pkg/domain"
)

// ErrUnknownKey is returned for a key that maps to no intent.
var ErrUnknownKey = errors.New("unknown key")

// words maps whole-word keys to intents.
var words = map[string]domain.Intent{
	"c":             domain.ClearIntent(),
	"ac":            domain.ClearIntent(),
	"clear":         domain.ClearIntent(),
	"escape":        domain.ClearIntent(),
	"del":           domain.DeleteIntent(),
	"delete":        domain.DeleteIntent(),
	"backspace":     domain.DeleteIntent(),
	"enter":         domain.EqualsIntent(),
	"equals":        domain.EqualsIntent(),
	"clear-history": domain.ClearHistoryIntent(),
}

// ParseKey classifies a single key into an intent. It accepts digits, the
// decimal point, operator codes and glyphs, "=" and "<" (delete), and the
// word keys ("clear", "del", "enter", "clear-history", ...). "#N" selects the
// N-th history entry, counting from 1.
func ParseKey(key string) (domain.Intent, error) {
	if in, ok := words[strings.ToLower(key)]; ok {
		return in, nil
	}
	if rest, ok := strings.CutPrefix(key, "#"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 {
			return domain.Intent{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
		}
		return domain.SelectHistoryIntent(n - 1), nil
	}
	switch key {
	case "=":
		return domain.EqualsIntent(), nil
	case "<":
		return domain.DeleteIntent(), nil
	}
	if domain.IsDigit(key) {
		return domain.DigitIntent(key), nil
	}
	if op, err := domain.ParseOperator(key); err == nil {
		return domain.OperatorIntent(op), nil
	}
	return domain.Intent{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// ParseLine classifies a line of input. A line starting with "{" is one
// JSON-encoded intent. Otherwise it is split on whitespace; each field is
// either a word key or a run of single-character keys, so "12+3=" and
// "1 2 + 3 =" are the same.
func ParseLine(line string) ([]domain.Intent, error) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "{") {
		var in domain.Intent
		if err := json.Unmarshal([]byte(line), &in); err != nil {
			return nil, fmt.Errorf("invalid intent: %w", err)
		}
		return []domain.Intent{in}, nil
	}

	var intents []domain.Intent
	for _, field := range strings.Fields(line) {
		if in, err := ParseKey(field); err == nil {
			intents = append(intents, in)
			continue
		}
		for len(field) > 0 {
			r, size := utf8.DecodeRuneInString(field)
			in, err := ParseKey(string(r))
			if err != nil {
				return nil, err
			}
			intents = append(intents, in)
			field = field[size:]
		}
	}
	return intents, nil
}
