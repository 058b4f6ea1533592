package task_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/cliptask/internal/task"
)

func TestStoreProgressScenario(t *testing.T) {
	s := task.NewStore()

	milk := s.Add("Buy milk", nil)
	dog := s.Add("Walk dog", nil)
	assert.Equal(t, task.Progress{Completed: 0, Total: 2}, s.Progress())

	s.SetCompleted(milk.ID(), true)
	assert.Equal(t, task.Progress{Completed: 1, Total: 2}, s.Progress())

	s.Remove(dog.ID())
	assert.Equal(t, 1, s.TotalCount())
	assert.Equal(t, 1, s.CompletedCount())

	tasks := s.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Text())
	assert.True(t, tasks[0].Completed())
}

func TestStoreColorIndex(t *testing.T) {
	tests := map[string]struct {
		adds    int
		remove  []int
		expLast int
	}{
		"The first task should take the first color": {
			adds:    1,
			expLast: 0,
		},
		"Colors should wrap around the palette": {
			adds:    10,
			expLast: 1,
		},
		"A task added after a deletion should use the current count": {
			adds:    4,
			remove:  []int{0},
			expLast: 3,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			s := task.NewStore()
			var added []task.Task
			for i := range test.adds {
				added = append(added, s.Add("t", nil))
				assert.Equal(t, i%len(task.Palette), added[i].ColorIndex())
			}
			for _, i := range test.remove {
				s.Remove(added[i].ID())
			}

			// Remaining tasks keep their colors.
			for _, got := range s.Tasks() {
				for _, want := range added {
					if want.ID() == got.ID() {
						assert.Equal(t, want.ColorIndex(), got.ColorIndex())
					}
				}
			}

			if len(test.remove) > 0 {
				last := s.Add("late", nil)
				assert.Equal(t, test.expLast, last.ColorIndex())
				return
			}
			assert.Equal(t, test.expLast, added[len(added)-1].ColorIndex())
		})
	}
}

func TestStoreUniqueIDs(t *testing.T) {
	s := task.NewStore()
	seen := map[task.ID]bool{}
	for range 500 {
		tk := s.Add("x", nil)
		require.False(t, seen[tk.ID()], "duplicate id %s", tk.ID())
		seen[tk.ID()] = true
	}
}

func TestStoreMissingIDIsIgnored(t *testing.T) {
	s := task.NewStore()
	tk := s.Add("only", nil)

	calls := 0
	s.OnChange(func(task.Progress) { calls++ })

	s.SetCompleted("nope", true)
	s.Remove("nope")
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, s.TotalCount())

	s.Remove(tk.ID())
	s.SetCompleted(tk.ID(), true)
	s.Remove(tk.ID())
	assert.Equal(t, 1, calls)
	assert.Equal(t, task.Progress{}, s.Progress())
}

func TestStoreImageKind(t *testing.T) {
	s := task.NewStore()

	txt := s.Add("plain", nil)
	assert.Equal(t, task.KindText, txt.Kind())
	assert.Nil(t, txt.Image())

	empty := s.Add("empty image", task.NewImage(nil, 0, 0))
	assert.Equal(t, task.KindText, empty.Kind())
	assert.Nil(t, empty.Image())

	img := s.Add("pic", task.NewImage([]byte{1, 2, 3}, 4, 5))
	assert.Equal(t, task.KindImage, img.Kind())
	require.NotNil(t, img.Image())
	assert.Equal(t, 4, img.Image().Width())
	assert.Equal(t, 5, img.Image().Height())

	// Callers get a copy of the bytes.
	b := img.Image().PNG()
	b[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, img.Image().PNG())
}

func TestStoreOnChange(t *testing.T) {
	s := task.NewStore()
	var got []task.Progress
	s.OnChange(func(p task.Progress) { got = append(got, p) })

	a := s.Add("a", nil)
	s.Add("b", nil)
	s.SetCompleted(a.ID(), true)
	s.SetCompleted(a.ID(), true)
	s.SetCompleted(a.ID(), false)
	s.Remove(a.ID())

	exp := []task.Progress{
		{Completed: 0, Total: 1},
		{Completed: 0, Total: 2},
		{Completed: 1, Total: 2},
		{Completed: 0, Total: 2},
		{Completed: 0, Total: 1},
	}
	assert.Equal(t, exp, got)
	for _, p := range got {
		assert.True(t, p.Completed >= 0 && p.Completed <= p.Total)
	}
}

func TestStoreResolve(t *testing.T) {
	s := task.NewStore()
	a := s.Add("a", nil)
	b := s.Add("b", nil)

	tests := map[string]struct {
		ref   string
		expID task.ID
		expOK bool
	}{
		"Position 1 should be the first task":  {ref: "1", expID: a.ID(), expOK: true},
		"Position 2 should be the second task": {ref: " 2 ", expID: b.ID(), expOK: true},
		"Position 0 should not resolve":         {ref: "0"},
		"An out of range position should fail":  {ref: "3"},
		"A full id should resolve":              {ref: string(b.ID()), expID: b.ID(), expOK: true},
		"A lower case id should resolve":        {ref: strings.ToLower(string(a.ID())), expID: a.ID(), expOK: true},
		"An unknown id should not resolve":      {ref: "01ARZ3NDEKTSV4RRFFQ69G5FAV"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := s.Resolve(test.ref)
			assert.Equal(t, test.expOK, ok)
			if test.expOK {
				assert.Equal(t, test.expID, got.ID())
			}
		})
	}
}

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#ffebee", task.Palette[0].Hex())
	assert.Equal(t, "#e0f2f1", task.Palette[7].Hex())
}
