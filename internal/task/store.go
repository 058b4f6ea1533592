package task

import (
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Store is the ordered task list. It is not safe for concurrent use; every
// call is expected to happen on the UI loop.
type Store struct {
	tasks []Task
	hooks []func(Progress)
	now   func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// OnChange registers fn to run after every mutation with the recomputed
// progress.
func (s *Store) OnChange(fn func(Progress)) {
	s.hooks = append(s.hooks, fn)
}

// Add appends a new task and returns it. An image task is created when img
// is non-nil and non-empty.
func (s *Store) Add(text string, img *Image) Task {
	t := Task{
		id:         ID(ulid.Make().String()),
		text:       text,
		colorIndex: len(s.tasks) % len(Palette),
		createdAt:  s.now(),
		kind:       KindText,
	}
	if img != nil && img.Size() > 0 {
		t.kind = KindImage
		t.image = img
	}
	s.tasks = append(s.tasks, t)
	s.changed()
	return t
}

// SetCompleted marks the task done or not done. Unknown ids are ignored.
func (s *Store) SetCompleted(id ID, completed bool) {
	i := s.index(id)
	if i < 0 || s.tasks[i].completed == completed {
		return
	}
	s.tasks[i].completed = completed
	s.changed()
}

// Remove deletes the task. Unknown ids are ignored.
func (s *Store) Remove(id ID) {
	i := s.index(id)
	if i < 0 {
		return
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.changed()
}

// Get returns the task with the given id.
func (s *Store) Get(id ID) (Task, bool) {
	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// Resolve looks a task up by id or by its 1-based position in the list.
func (s *Store) Resolve(ref string) (Task, bool) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(s.tasks) {
			return Task{}, false
		}
		return s.tasks[n-1], true
	}
	return s.Get(ID(strings.ToUpper(ref)))
}

// Tasks returns the tasks in display order.
func (s *Store) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) CompletedCount() int {
	n := 0
	for _, t := range s.tasks {
		if t.completed {
			n++
		}
	}
	return n
}

func (s *Store) TotalCount() int { return len(s.tasks) }

func (s *Store) Progress() Progress {
	return Progress{Completed: s.CompletedCount(), Total: s.TotalCount()}
}

func (s *Store) index(id ID) int {
	for i, t := range s.tasks {
		if t.id == id {
			return i
		}
	}
	return -1
}

func (s *Store) changed() {
	p := s.Progress()
	for _, fn := range s.hooks {
		fn(p)
	}
}
