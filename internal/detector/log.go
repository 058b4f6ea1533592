package detector

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"go.klb.dev/cliptask/internal/task"
)

// logCapture logs an accepted clipboard value at INFO (kind) and DEBUG
// (text preview up to 120 runes, or image size).
func logCapture(text string, img *task.Image) {
	kind := task.KindText
	if img != nil {
		kind = task.KindImage
	}
	slog.Info("clipboard captured", "kind", kind.String())

	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	if img != nil {
		slog.Debug("clipboard image",
			"width", img.Width(),
			"height", img.Height(),
			"size_bytes", img.Size(),
		)
		return
	}
	slog.Debug("clipboard text", "preview", preview(text, previewRunes))
}

const previewRunes = 120

// preview shortens s to at most n runes, marking the cut with an ellipsis.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + "…"
		}
		i++
	}
	return s
}
