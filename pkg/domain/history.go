package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// HistoryEntry is one completed calculation. Immutable once created.
type HistoryEntry struct {
	Expression string  `json:"expression"`
	Result     float64 `json:"result"`
	// Timestamp is wall-clock milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
}

// Item returns the render form of the entry.
func (e HistoryEntry) Item() HistoryItem {
	return HistoryItem{Expression: e.Expression, Result: e.Result}
}

// HistoryItem is what a history list renders: no timestamp.
type HistoryItem struct {
	Expression string  `json:"expression"`
	Result     float64 `json:"result"`
}

// Completion is produced when a pending operation collapses into a result.
type Completion struct {
	// Expression is the trace before it was replaced by the result.
	Expression string
	Result     float64
}

type historyEntryJSON struct {
	Expression string          `json:"expression"`
	Result     json.RawMessage `json:"result"`
	Timestamp  int64           `json:"timestamp"`
}

// MarshalJSON encodes non-finite results as the strings
// "Infinity", "-Infinity" and "NaN", which plain JSON numbers cannot carry.
func (e HistoryEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(historyEntryJSON{
		Expression: e.Expression,
		Result:     encodeResult(e.Result),
		Timestamp:  e.Timestamp,
	})
}

// UnmarshalJSON accepts numbers, the non-finite strings and null (as NaN).
func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	var raw historyEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result, err := decodeResult(raw.Result)
	if err != nil {
		return err
	}
	*e = HistoryEntry{Expression: raw.Expression, Result: result, Timestamp: raw.Timestamp}
	return nil
}

// MarshalJSON applies the same non-finite encoding as HistoryEntry.
func (i HistoryItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Expression string          `json:"expression"`
		Result     json.RawMessage `json:"result"`
	}{i.Expression, encodeResult(i.Result)})
}

func encodeResult(f float64) json.RawMessage {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return json.RawMessage(`"` + FormatNumber(f) + `"`)
	}
	b, _ := json.Marshal(f)
	return b
}

func decodeResult(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return math.NaN(), nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		switch s {
		case "Infinity", "-Infinity", "NaN":
			return ParseNumber(s), nil
		}
		return 0, fmt.Errorf("invalid history result %q", s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	return f, nil
}
