// Package hub fans task list snapshots out to watchers. It is
// transport-agnostic: watchers register, receive snapshots through a
// non-blocking Send, and unregister when their client goes away.
package hub

import (
	"log/slog"
	"sync"

	"go.klb.dev/cliptask/internal/message"
)

// Snapshot is the state of the task list after a change.
type Snapshot struct {
	Tasks      []message.TaskInfo
	Progress   message.Progress
	Monitoring bool
}

// Watcher is anything that can receive snapshots from the hub.
type Watcher interface {
	ID() string
	// Send delivers a snapshot. It is called with the hub locked, so it must
	// not block or call back into the hub.
	Send(Snapshot)
}

// Hub routes snapshots to all registered watchers.
type Hub struct {
	mu       sync.RWMutex
	watchers map[string]Watcher
	latest   *Snapshot
}

// New returns an empty Hub.
func New() *Hub {
	return &Hub{watchers: make(map[string]Watcher)}
}

// Register adds a watcher and immediately delivers the latest snapshot, if
// one has been published.
func (h *Hub) Register(w Watcher) {
	h.mu.Lock()
	h.watchers[w.ID()] = w
	// Replay under the lock so a concurrent Publish cannot be overtaken.
	if h.latest != nil {
		w.Send(*h.latest)
	}
	total := len(h.watchers)
	h.mu.Unlock()

	slog.Debug("watcher registered", "watcher", w.ID(), "total", total)
}

// Unregister removes a watcher from the hub.
func (h *Hub) Unregister(w Watcher) {
	h.mu.Lock()
	delete(h.watchers, w.ID())
	total := len(h.watchers)
	h.mu.Unlock()

	slog.Debug("watcher unregistered", "watcher", w.ID(), "total", total)
}

// Publish stores s as the latest snapshot and fans it out. Deliveries are
// made under the lock, so every watcher sees snapshots in publish order.
func (h *Hub) Publish(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = &s
	for _, w := range h.watchers {
		w.Send(s)
	}
}

// Latest returns the most recent snapshot.
func (h *Hub) Latest() (Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return Snapshot{}, false
	}
	return *h.latest, true
}

// Len returns the number of registered watchers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers)
}

// ChanWatcher is a Watcher backed by a buffered channel. When the buffer is
// full the oldest snapshot is dropped, since only the newest state matters.
type ChanWatcher struct {
	id string
	ch chan Snapshot
	mu sync.Mutex
}

// NewChanWatcher returns a watcher buffering up to size snapshots.
func NewChanWatcher(id string, size int) *ChanWatcher {
	if size < 1 {
		size = 1
	}
	return &ChanWatcher{id: id, ch: make(chan Snapshot, size)}
}

func (w *ChanWatcher) ID() string { return w.id }

// C returns the channel snapshots are delivered on.
func (w *ChanWatcher) C() <-chan Snapshot { return w.ch }

func (w *ChanWatcher) Send(s Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for {
		select {
		case w.ch <- s:
			return
		default:
		}
		select {
		case <-w.ch:
		default:
		}
	}
}
