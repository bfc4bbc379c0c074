// Package report renders the final per-file summary table.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/worksonmyai/autocommit/internal/pipeline"
)

var (
	committedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	skippedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	detailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// fillChar pads paths so statuses line up in one column.
const fillChar = "."

// Render writes one line per outcome in processing order. Pure
// presentation: no prior state is mutated.
func Render(w io.Writer, outcomes []pipeline.Outcome) {
	if len(outcomes) == 0 {
		return
	}

	fmt.Fprintf(w, "\nSummary:\n")

	width := 0
	for _, o := range outcomes {
		if len(o.Path) > width {
			width = len(o.Path)
		}
	}

	for _, o := range outcomes {
		line := o.Path + " " + strings.Repeat(fillChar, width-len(o.Path)+3)
		line += " " + statusText(o)
		if o.Detail != "" {
			line += " " + detailStyle.Render("("+o.Detail+")")
		}
		fmt.Fprintln(w, line)
	}
}

// statusText renders the status word and message with the status color.
func statusText(o pipeline.Outcome) string {
	text := string(o.Status)
	if o.Message != "" {
		text += ": " + o.Message
	}
	switch o.Status {
	case pipeline.StatusCommitted:
		return committedStyle.Render(text)
	case pipeline.StatusSkipped:
		return skippedStyle.Render(text)
	default:
		return failedStyle.Render(text)
	}
}
