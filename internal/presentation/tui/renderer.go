package tui

import (
	"fmt"

	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/aretw0/calcpad/pkg/runner"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// An empty style detects a light or dark background.
func NewRenderer(style string) (func(string) (string, error), error) {
	opt := glamour.WithAutoStyle()
	if style != "" {
		opt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render, nil
}

// HistoryRenderer renders the history as a markdown table through glamour.
func HistoryRenderer(style string) (runner.HistoryRenderer, error) {
	render, err := NewRenderer(style)
	if err != nil {
		return nil, err
	}
	return func(items []domain.HistoryItem) (string, error) {
		return render(runner.HistoryMarkdown(items))
	}, nil
}
