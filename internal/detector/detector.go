// Package detector watches the clipboard and turns each new value into a
// task, exactly once per distinct value.
//
// Notifications arrive on a worker goroutine. The worker never reads the
// clipboard itself: every check is handed to the UI loop, which also owns
// the task list, so the dedupe state needs no lock of its own.
package detector

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.klb.dev/cliptask/internal/clip"
	"go.klb.dev/cliptask/internal/task"
)

const (
	// Tag prefixes the text of every task created from the clipboard.
	Tag = "[Clipboard]"

	stopTimeout     = 2 * time.Second
	timestampLayout = "2006-01-02 15:04:05"
)

// Poster hands a function to the UI loop without blocking.
type Poster interface {
	Post(fn func()) bool
}

// AddFunc receives accepted clipboard content. img is nil for text.
type AddFunc func(text string, img *task.Image)

// Detector turns clipboard changes into tasks.
type Detector struct {
	backend  clip.Backend
	observer clip.Observer
	ui       Poster
	add      AddFunc
	now      func() time.Time

	// mu guards the lifecycle fields below and is held for the whole of a
	// scheduled check, so that once Stop returns no check is running.
	// monitoring is only written under mu but may be read without it.
	mu         sync.Mutex
	monitoring atomic.Bool
	gen        uint64
	stop       chan struct{}
	exited     chan struct{}

	// UI loop only.
	lastText        string
	lastFingerprint string
	lastFailure     string
}

// New returns a stopped detector.
func New(backend clip.Backend, observer clip.Observer, ui Poster, add AddFunc) *Detector {
	return &Detector{
		backend:  backend,
		observer: observer,
		ui:       ui,
		add:      add,
		now:      time.Now,
	}
}

// Monitoring reports whether the detector is started.
func (d *Detector) Monitoring() bool {
	return d.monitoring.Load()
}

// Start begins observing the clipboard. It is a no-op when already started.
func (d *Detector) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.monitoring.Load() {
		return nil
	}

	events, err := d.observer.Start()
	if err != nil {
		return fmt.Errorf("start %s: %w", d.observer.Name(), err)
	}
	d.gen++
	d.stop = make(chan struct{})
	d.exited = make(chan struct{})
	d.monitoring.Store(true)
	go d.watch(d.gen, events, d.stop, d.exited)

	slog.Info("clipboard monitoring started",
		"observer", d.observer.Name(),
		"backend", d.backend.Name(),
	)
	return nil
}

// Stop ends observation and deregisters from the platform. It is a no-op
// when already stopped. No task is created by the detector after Stop
// returns. Stop must not be called from inside the AddFunc.
func (d *Detector) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.monitoring.Load() {
		return
	}
	d.monitoring.Store(false)
	close(d.stop)

	done := make(chan struct{})
	exited := d.exited
	go func() {
		defer close(done)
		if err := d.observer.Stop(); err != nil {
			slog.Warn("clipboard observer stop failed", "observer", d.observer.Name(), "err", err)
		}
		<-exited
	}()

	select {
	case <-done:
		slog.Info("clipboard monitoring stopped")
	case <-time.After(stopTimeout):
		slog.Warn("clipboard monitor did not stop in time", "timeout", stopTimeout)
	}
}

// watch runs on its own goroutine until stop is closed.
func (d *Detector) watch(gen uint64, events <-chan struct{}, stop <-chan struct{}, exited chan<- struct{}) {
	defer close(exited)
	for {
		select {
		case <-stop:
			return
		case _, ok := <-events:
			if !ok {
				slog.Warn("clipboard observer closed its channel", "observer", d.observer.Name())
				return
			}
		}

		select {
		case <-stop:
			return
		default:
		}

		ran := make(chan struct{})
		if !d.ui.Post(func() {
			defer close(ran)
			d.scheduledCheck(gen)
		}) {
			slog.Debug("ui loop busy, skipping clipboard check")
			continue
		}
		select {
		case <-ran:
		case <-stop:
			return
		}
	}
}

func (d *Detector) scheduledCheck(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.monitoring.Load() || d.gen != gen {
		return
	}
	d.OnClipboardChanged()
}

// OnClipboardChanged reads the clipboard and creates a task if it holds
// something new. Text wins over an image when both are present. It must be
// called on the UI loop.
func (d *Detector) OnClipboardChanged() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("clipboard check panicked", "panic", r)
		}
	}()

	text, err := d.backend.ReadText()
	if err != nil {
		slog.Warn("clipboard text read failed", "err", err)
		return
	}
	if len(text) > 0 {
		if s := string(text); s != d.lastText {
			d.lastText = s
			d.emit(Tag+" "+s, nil)
		}
		return
	}

	data, err := d.backend.ReadImage()
	if err != nil {
		d.imageFailed("err:"+err.Error(), err)
		return
	}
	if len(data) == 0 {
		return
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		d.imageFailed(payloadKey(data), err)
		return
	}
	d.lastFailure = ""
	fp := Fingerprint(img)
	if fp == d.lastFingerprint {
		return
	}
	d.lastFingerprint = fp

	b := img.Bounds()
	d.emit(
		fmt.Sprintf("%s Image copied at %s", Tag, d.now().Format(timestampLayout)),
		task.NewImage(data, b.Dx(), b.Dy()),
	)
}

// imageFailed reports an unusable image once per distinct payload.
func (d *Detector) imageFailed(key string, err error) {
	if key == d.lastFailure {
		return
	}
	d.lastFailure = key
	slog.Warn("clipboard image could not be processed", "err", err)
	d.emit(fmt.Sprintf("%s Failed to process image: %v", Tag, err), nil)
}

func (d *Detector) emit(text string, img *task.Image) {
	logCapture(text, img)
	d.add(text, img)
}
