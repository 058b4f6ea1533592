// Package presenter renders the task list as plain text.
package presenter

import (
	"fmt"
	"io"
	"strings"

	"go.klb.dev/cliptask/internal/task"
)

const barWidth = 20

// Text writes the task list and progress summary to w.
type Text struct {
	w io.Writer
}

func NewText(w io.Writer) *Text { return &Text{w: w} }

// Render writes the full list. Errors writing to the terminal are ignored.
func (p *Text) Render(tasks []task.Task, prog task.Progress) {
	var b strings.Builder
	b.WriteString(ProgressLine(prog))
	b.WriteByte('\n')
	for i, t := range tasks {
		b.WriteString(Row(i+1, t))
		b.WriteByte('\n')
	}
	_, _ = io.WriteString(p.w, b.String())
}

// ProgressLine formats the summary with a bar.
func ProgressLine(p task.Progress) string {
	filled := 0
	if p.Total > 0 {
		filled = p.Completed * barWidth / p.Total
	}
	return fmt.Sprintf("Progress: %d / %d tasks completed [%s%s]",
		p.Completed, p.Total,
		strings.Repeat("#", filled),
		strings.Repeat("-", barWidth-filled),
	)
}

// Row formats one task at the given 1-based position.
func Row(pos int, t task.Task) string {
	check := "[ ]"
	if t.Completed() {
		check = "[x]"
	}
	row := fmt.Sprintf("%3d. %s %s  (%s)", pos, check, t.Text(), t.Color().Name)
	if img := t.Image(); img != nil {
		row += fmt.Sprintf(" <image %dx%d>", img.Width(), img.Height())
	}
	return row
}
