package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/calcpad/pkg/domain"
)

// Event is one JSON line written by JSONHandler. Empty fields are omitted,
// so an empty history event carries no items.
type Event struct {
	Type    string               `json:"type"`
	Main    string               `json:"main,omitempty"`
	Sub     string               `json:"sub,omitempty"`
	Items   []domain.HistoryItem `json:"items,omitempty"`
	Message string               `json:"message,omitempty"`
}

// JSONHandler implements IOHandler with JSON Lines on both sides.
// Input lines may be a JSON intent object, a JSON string of keys, or raw keys.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder

	mu sync.Mutex
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) emit(e Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(e)
}

func (h *JSONHandler) Display(_ context.Context, snap domain.Snapshot) error {
	return h.emit(Event{Type: "display", Main: snap.Main, Sub: snap.Sub})
}

func (h *JSONHandler) History(_ context.Context, items []domain.HistoryItem) error {
	return h.emit(Event{Type: "history", Items: items})
}

func (h *JSONHandler) Input(context.Context) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var keys string
	if err := json.Unmarshal([]byte(text), &keys); err == nil {
		text = keys
	}
	return CleanKeys(text)
}

// Confirm emits a confirm event and reads the answer: true, "y" or "yes" approve.
func (h *JSONHandler) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := h.emit(Event{Type: "confirm", Message: prompt}); err != nil {
		return false, err
	}
	answer, err := h.Input(ctx)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "true", "y", "yes":
		return true, nil
	}
	return false, nil
}

func (h *JSONHandler) SystemOutput(_ context.Context, msg string) error {
	return h.emit(Event{Type: "system", Message: msg})
}
