// Package uiloop provides the single goroutine that owns the task list and
// every clipboard read. Other goroutines hand work to it with Post or Invoke.
package uiloop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrClosed is returned when work is handed to a loop that has stopped.
var ErrClosed = errors.New("ui loop closed")

// Loop runs posted functions one at a time, in order.
type Loop struct {
	queue     chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// New returns a loop whose queue holds up to size pending functions.
func New(size int) *Loop {
	if size < 1 {
		size = 1
	}
	return &Loop{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Post queues fn without blocking. It returns false when the queue is full
// or the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	default:
		return false
	}
}

// Invoke queues fn and waits until it has run.
func (l *Loop) Invoke(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	wrapped := func() {
		defer close(ran)
		fn()
	}
	select {
	case l.queue <- wrapped:
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ran:
		return nil
	case <-l.done:
		// Run may have picked it up right before stopping.
		select {
		case <-ran:
			return nil
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes queued functions until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	defer l.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.done:
			return nil
		case fn := <-l.queue:
			l.exec(fn)
		}
	}
}

// Close stops the loop. Functions still queued are dropped.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("ui loop: recovered panic", "panic", r)
		}
	}()
	fn()
}
