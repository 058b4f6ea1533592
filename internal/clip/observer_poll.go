package clip

import (
	"sync"
	"time"
)

type pollObserver struct {
	interval time.Duration

	mu     sync.Mutex
	done   chan struct{}
	exited chan struct{}
}

// NewPollObserver returns an observer that signals every interval. It works
// everywhere, at the cost of reading the clipboard on every tick.
func NewPollObserver(interval time.Duration) Observer {
	return &pollObserver{interval: interval}
}

func (o *pollObserver) Name() string { return "poll (" + o.interval.String() + ")" }

func (o *pollObserver) Start() (<-chan struct{}, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done != nil {
		return nil, ErrStarted
	}

	ch := make(chan struct{}, 1)
	o.done = make(chan struct{})
	o.exited = make(chan struct{})
	go o.poll(ch, o.done, o.exited)
	return ch, nil
}

func (o *pollObserver) poll(ch chan<- struct{}, done <-chan struct{}, exited chan<- struct{}) {
	defer close(exited)
	defer close(ch)

	t := time.NewTicker(o.interval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

func (o *pollObserver) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done == nil {
		return nil
	}
	close(o.done)
	<-o.exited
	o.done, o.exited = nil, nil
	return nil
}
