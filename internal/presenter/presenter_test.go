package presenter_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"go.klb.dev/cliptask/internal/presenter"
	"go.klb.dev/cliptask/internal/task"
)

func TestProgressLine(t *testing.T) {
	tests := map[string]struct {
		prog task.Progress
		exp  string
	}{
		"No tasks should show an empty bar": {
			prog: task.Progress{},
			exp:  "Progress: 0 / 0 tasks completed [--------------------]",
		},
		"Half done should fill half the bar": {
			prog: task.Progress{Completed: 1, Total: 2},
			exp:  "Progress: 1 / 2 tasks completed [##########----------]",
		},
		"All done should fill the bar": {
			prog: task.Progress{Completed: 3, Total: 3},
			exp:  "Progress: 3 / 3 tasks completed [####################]",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, presenter.ProgressLine(test.prog))
		})
	}
}

func TestRender(t *testing.T) {
	s := task.NewStore()
	milk := s.Add("Buy milk", nil)
	s.Add("[Clipboard] Image copied at 2024-01-02 03:04:05", task.NewImage([]byte{1}, 640, 480))
	s.SetCompleted(milk.ID(), true)

	var buf bytes.Buffer
	presenter.NewText(&buf).Render(s.Tasks(), s.Progress())

	exp := "Progress: 1 / 2 tasks completed [##########----------]\n" +
		"  1. [x] Buy milk  (red-100)\n" +
		"  2. [ ] [Clipboard] Image copied at 2024-01-02 03:04:05  (blue-100) <image 640x480>\n"
	assert.Equal(t, exp, buf.String())
}
