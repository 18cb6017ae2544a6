package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/workloadsec/aiomigrate/internal/cmd/emoji"
	"github.com/workloadsec/aiomigrate/pkg/merge"
)

// Styles used by WriteSummary.
type Styles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles returns colored styles, or plain ones when color is false.
func NewStyles(color bool) Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return Styles{Title: plain, Success: plain, Warning: plain, Error: plain, Muted: plain}
	}
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// WriteSummary prints a human-readable merge report.
func WriteSummary(w io.Writer, r *merge.Report, styles Styles) error {
	var b strings.Builder

	title := fmt.Sprintf("%s %s %s %s", r.Kind, r.Source, emoji.Arrow, r.Target)
	b.WriteString(styles.Title.Render(title) + "\n")

	symbol, style := emoji.Success, styles.Success
	if r.HasRemaining() {
		symbol, style = emoji.Warning, styles.Warning
	}
	b.WriteString(style.Render(symbol+" "+r.Summary()) + "\n")

	for _, p := range r.Mapping {
		state := "existing"
		if p.Created {
			state = "created"
		}
		b.WriteString(styles.Muted.Render(fmt.Sprintf("  %d %s %d  %s (%s)", p.SourceID, emoji.Arrow, p.TargetID, p.Name, state)) + "\n")
	}

	ids := make([]int, 0, len(r.Failures))
	for id := range r.Failures {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		b.WriteString(styles.Error.Render(fmt.Sprintf("  %s %d: %v", emoji.Error, id, r.Failures[id])) + "\n")
	}

	for _, d := range r.Deferred {
		b.WriteString(styles.Warning.Render(fmt.Sprintf("  %s %d %s: %s, parent %d", emoji.Warning, d.SourceID, d.Name, d.Reason, d.ParentID)) + "\n")
	}
	for _, s := range r.Skipped {
		b.WriteString(styles.Muted.Render(fmt.Sprintf("  %s %d %s: %s", emoji.Skipped, s.SourceID, s.Name, s.Reason)) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
