package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/aretw0/calcpad/pkg/runner"
	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`            _                     _ `, "#818cf8"},
	{`   ___ __ _| | ___ _ __   __ _  __| |`, "#a78bfa"},
	{`  / __/ _' | |/ __| '_ \ / _' |/ _' |`, "#c084fc"},
	{` | (_| (_| | | (__| |_) | (_| | (_| |`, "#e879f9"},
	{`  \___\__,_|_|\___| .__/ \__,_|\__,_|`, "#f472b6"},
	{`                  |_|                `, "#fb7185"},
}

// PrintBanner writes the calcpad banner to w using the color profile p.
func PrintBanner(w io.Writer, p termenv.Profile) {
	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, p.String(line.text).Foreground(p.Color(line.color)))
	}
	fmt.Fprintln(w)
}

// StyledDisplay renders the expression line dimmed and the main line bold.
func StyledDisplay(p termenv.Profile) runner.DisplayRenderer {
	return func(s domain.Snapshot) string {
		sub := p.String(s.Sub).Faint()
		main := p.String("= " + s.Main).Bold().Foreground(p.Color("#a78bfa"))
		return sub.String() + "\n" + main.String()
	}
}
