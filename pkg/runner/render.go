package runner

import (
	"fmt"
	"strings"

	"github.com/aretw0/calcpad/pkg/domain"
)

// EmptyHistory is shown in place of an empty history list.
const EmptyHistory = "No history"

// PlainDisplay renders the expression line above the main line.
func PlainDisplay(snap domain.Snapshot) string {
	return fmt.Sprintf("%s\n= %s", snap.Sub, snap.Main)
}

// PlainHistory renders one "[n] expression = result" line per entry.
func PlainHistory(items []domain.HistoryItem) (string, error) {
	if len(items) == 0 {
		return EmptyHistory, nil
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%d] %s = %s", i+1, item.Expression, domain.FormatNumber(item.Result))
	}
	return b.String(), nil
}

// HistoryMarkdown renders the history as a markdown table, for renderers
// that turn markdown into styled terminal output.
func HistoryMarkdown(items []domain.HistoryItem) string {
	if len(items) == 0 {
		return "_" + EmptyHistory + "_\n"
	}
	var b strings.Builder
	b.WriteString("| # | Expression | Result |\n|---|---|---|\n")
	for i, item := range items {
		fmt.Fprintf(&b, "| %d | `%s` | %s |\n", i+1, item.Expression, domain.FormatNumber(item.Result))
	}
	return b.String()
}
