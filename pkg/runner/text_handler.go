package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/calcpad/pkg/domain"
	"golang.org/x/term"
)

// TextHandler implements the line-based terminal interface.
type TextHandler struct {
	Reader          *bufio.Reader
	Writer          io.Writer
	DisplayRenderer DisplayRenderer
	HistoryRenderer HistoryRenderer
	Prompt          string

	interactive bool
	inputChan   chan inputResult
	startOnce   sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithDisplayRenderer configures how the display is formatted.
func WithDisplayRenderer(renderer DisplayRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.DisplayRenderer = renderer
	}
}

// WithHistoryRenderer configures how the history list is formatted.
func WithHistoryRenderer(renderer HistoryRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.HistoryRenderer = renderer
	}
}

// WithPrompt overrides the input prompt ("> ").
func WithPrompt(prompt string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Prompt = prompt
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader:          bufio.NewReader(r),
		Writer:          w,
		DisplayRenderer: PlainDisplay,
		HistoryRenderer: PlainHistory,
		Prompt:          "> ",
		interactive:     IsTerminal(r),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// IsTerminal reports whether r is an interactive terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Interactive reports whether the handler reads from a terminal.
func (h *TextHandler) Interactive() bool {
	return h.interactive
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines in the background so Input can honour cancellation.
func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			close(h.inputChan)
			return
		}
	}
}

func (h *TextHandler) Display(_ context.Context, snap domain.Snapshot) error {
	_, err := fmt.Fprintln(h.Writer, h.DisplayRenderer(snap))
	return err
}

func (h *TextHandler) History(_ context.Context, items []domain.HistoryItem) error {
	out, err := h.HistoryRenderer(items)
	if err != nil {
		out, _ = PlainHistory(items)
	}
	_, err = fmt.Fprintln(h.Writer, strings.TrimRight(out, "\n"))
	return err
}

func (h *TextHandler) Input(ctx context.Context) (string, error) {
	return h.readLine(ctx, h.Prompt)
}

func (h *TextHandler) readLine(ctx context.Context, prompt string) (string, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, prompt)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			clean, err := CleanKeys(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			return clean, nil
		}
	}
}

// Confirm asks a y/N question. Anything but "y" or "yes" is a refusal.
func (h *TextHandler) Confirm(ctx context.Context, prompt string) (bool, error) {
	answer, err := h.readLine(ctx, prompt+" [y/N] ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (h *TextHandler) SystemOutput(_ context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return err
}
