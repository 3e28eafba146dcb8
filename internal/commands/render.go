package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false).
			PaddingLeft(1)
)

func heading(w io.Writer, title string) {
	fmt.Fprintln(w, titleStyle.Render(title))
	fmt.Fprintln(w, faintStyle.Render(strings.Repeat("=", len(title))))
}

// summary renders label/value pairs as an aligned block.
func summary(w io.Writer, lines ...[2]string) {
	width := 0
	for _, l := range lines {
		width = max(width, len(l[0]))
	}
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-*s  %s", width+1, l[0]+":", l[1])
	}
	fmt.Fprintln(w, summaryStyle.Render(b.String()))
}
