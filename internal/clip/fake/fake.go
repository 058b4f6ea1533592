// Package fake provides in-memory clipboard doubles for tests.
package fake

import (
	"bytes"
	"sync"

	"go.klb.dev/cliptask/internal/clip"
)

// Backend is an in-memory clipboard.
type Backend struct {
	mu       sync.Mutex
	text     []byte
	image    []byte
	textErr  error
	imageErr error
	reads    int
}

var _ clip.Backend = (*Backend)(nil)

func NewBackend() *Backend { return &Backend{} }

func (b *Backend) Name() string { return "fake" }
func (b *Backend) Close()       {}

// SetText replaces the clipboard contents with text.
func (b *Backend) SetText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text, b.image = []byte(text), nil
}

// SetImage replaces the clipboard contents with an encoded image.
func (b *Backend) SetImage(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text, b.image = nil, bytes.Clone(data)
}

// SetBoth puts text and an image on the clipboard at once.
func (b *Backend) SetBoth(text string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text, b.image = []byte(text), bytes.Clone(data)
}

// Clear empties the clipboard.
func (b *Backend) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text, b.image = nil, nil
}

// SetErrors makes the next reads fail.
func (b *Backend) SetErrors(textErr, imageErr error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.textErr, b.imageErr = textErr, imageErr
}

// Reads returns how many times ReadText has been called.
func (b *Backend) Reads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reads
}

func (b *Backend) ReadText() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads++
	if b.textErr != nil {
		return nil, b.textErr
	}
	return bytes.Clone(b.text), nil
}

func (b *Backend) ReadImage() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.imageErr != nil {
		return nil, b.imageErr
	}
	return bytes.Clone(b.image), nil
}

// Observer delivers notifications on demand.
type Observer struct {
	mu     sync.Mutex
	ch     chan struct{}
	done   chan struct{}
	starts int
	stops  int
}

var _ clip.Observer = (*Observer)(nil)

func NewObserver() *Observer { return &Observer{} }

func (o *Observer) Name() string { return "fake" }

func (o *Observer) Start() (<-chan struct{}, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ch != nil {
		return nil, clip.ErrStarted
	}
	o.starts++
	o.ch = make(chan struct{}, 1)
	o.done = make(chan struct{})
	return o.ch, nil
}

func (o *Observer) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ch == nil {
		return nil
	}
	o.stops++
	close(o.done)
	o.ch, o.done = nil, nil
	return nil
}

// Notify signals a clipboard change. It blocks until the signal is buffered
// and returns false if the observer is not running.
func (o *Observer) Notify() bool {
	o.mu.Lock()
	ch, done := o.ch, o.done
	o.mu.Unlock()
	if ch == nil {
		return false
	}
	select {
	case ch <- struct{}{}:
		return true
	case <-done:
		return false
	}
}

// Counts returns how many times Start and Stop took effect.
func (o *Observer) Counts() (starts, stops int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.starts, o.stops
}
