// Package app wires the task store, the clipboard detector, the presenter
// and the snapshot hub around a single UI loop. Every method hands its work
// to the loop, so callers on any goroutine see a consistent task list.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.klb.dev/cliptask/internal/clip"
	"go.klb.dev/cliptask/internal/detector"
	"go.klb.dev/cliptask/internal/hub"
	"go.klb.dev/cliptask/internal/message"
	"go.klb.dev/cliptask/internal/task"
	"go.klb.dev/cliptask/internal/uiloop"
)

// ErrNotFound is returned when a task reference matches nothing.
var ErrNotFound = errors.New("no such task")

// ErrNotImage is returned when an image is requested from a text task.
var ErrNotImage = errors.New("task has no image")

// Renderer draws the task list. It is called on the UI loop after every
// change.
type Renderer interface {
	Render(tasks []task.Task, prog task.Progress)
}

// Config holds the collaborators of an App.
type Config struct {
	Backend  clip.Backend
	Observer clip.Observer
	// Renderer may be nil.
	Renderer Renderer
	// QueueSize bounds the number of pending UI loop functions.
	QueueSize int
}

// App is the running tracker.
type App struct {
	loop     *uiloop.Loop
	store    *task.Store
	detector *detector.Detector
	hub      *hub.Hub
	renderer Renderer
	watchSeq atomic.Uint64
}

// New builds an App. Call Run to start the UI loop.
func New(cfg Config) *App {
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 64
	}
	a := &App{
		loop:     uiloop.New(cfg.QueueSize),
		store:    task.NewStore(),
		hub:      hub.New(),
		renderer: cfg.Renderer,
	}
	a.detector = detector.New(cfg.Backend, cfg.Observer, a.loop, func(text string, img *task.Image) {
		a.store.Add(text, img)
	})
	a.store.OnChange(func(task.Progress) { a.changed() })
	return a
}

// Hub returns the snapshot hub.
func (a *App) Hub() *hub.Hub { return a.hub }

// Run executes the UI loop until ctx is cancelled or Close is called.
func (a *App) Run(ctx context.Context) error {
	a.loop.Post(a.changed)
	return a.loop.Run(ctx)
}

// Close stops the detector and then the UI loop.
func (a *App) Close() {
	a.detector.Stop()
	a.loop.Close()
}

// Add creates a task from typed text.
func (a *App) Add(ctx context.Context, text string) (task.Task, error) {
	var t task.Task
	err := a.loop.Invoke(ctx, func() { t = a.store.Add(text, nil) })
	return t, err
}

// SetCompleted marks the referenced task. A missing task is not an error:
// it was most likely deleted an instant before.
func (a *App) SetCompleted(ctx context.Context, ref string, completed bool) error {
	return a.loop.Invoke(ctx, func() {
		if t, ok := a.store.Resolve(ref); ok {
			a.store.SetCompleted(t.ID(), completed)
		}
	})
}

// Remove deletes the referenced task. A missing task is not an error.
func (a *App) Remove(ctx context.Context, ref string) error {
	return a.loop.Invoke(ctx, func() {
		if t, ok := a.store.Resolve(ref); ok {
			a.store.Remove(t.ID())
		}
	})
}

// Snapshot returns the current task list and progress.
func (a *App) Snapshot(ctx context.Context) (hub.Snapshot, error) {
	var s hub.Snapshot
	err := a.loop.Invoke(ctx, func() { s = a.snapshot() })
	return s, err
}

// Image returns the PNG attached to the referenced task.
func (a *App) Image(ctx context.Context, ref string) ([]byte, error) {
	var (
		data []byte
		ierr error
	)
	err := a.loop.Invoke(ctx, func() {
		t, ok := a.store.Resolve(ref)
		switch {
		case !ok:
			ierr = fmt.Errorf("%w: %s", ErrNotFound, ref)
		case t.Image() == nil:
			ierr = fmt.Errorf("%w: %s", ErrNotImage, ref)
		default:
			data = t.Image().PNG()
		}
	})
	if err != nil {
		return nil, err
	}
	return data, ierr
}

// Render redraws the task list.
func (a *App) Render(ctx context.Context) error {
	return a.loop.Invoke(ctx, func() {
		if a.renderer != nil {
			a.renderer.Render(a.store.Tasks(), a.store.Progress())
		}
	})
}

// Monitoring reports whether clipboard capture is on.
func (a *App) Monitoring() bool { return a.detector.Monitoring() }

// SetMonitoring starts or stops clipboard capture. It must not be called
// from the UI loop, since stopping waits for an in-flight check.
func (a *App) SetMonitoring(on bool) error {
	if on {
		if err := a.detector.Start(); err != nil {
			return err
		}
	} else {
		a.detector.Stop()
	}
	// Watchers learn about the new state; a closed loop just means shutdown.
	a.loop.Post(func() { a.hub.Publish(a.snapshot()) })
	return nil
}

// changed runs on the UI loop after every store mutation.
func (a *App) changed() {
	if a.renderer != nil {
		a.renderer.Render(a.store.Tasks(), a.store.Progress())
	}
	a.hub.Publish(a.snapshot())
}

func (a *App) snapshot() hub.Snapshot {
	return hub.Snapshot{
		Tasks:      message.TaskInfos(a.store.Tasks()),
		Progress:   *message.NewProgress(a.store.Progress()),
		Monitoring: a.detector.Monitoring(),
	}
}
