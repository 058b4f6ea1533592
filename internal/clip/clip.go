// Package clip provides access to the system clipboard and to clipboard
// change notifications. Build constraints select the implementation:
//
//	clip_desktop.go               macOS, Windows and Linux via golang.design/x/clipboard
//	clip_other.go                 headless / container stub
//	observer_poll.go              portable fixed-interval poll
//	observer_chain_windows.go     Windows clipboard viewer chain (SetClipboardViewer)
package clip

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// PollInterval is how often the poll observer signals a check.
const PollInterval = time.Second

// ErrStarted is returned by Observer.Start when the observer is already running.
var ErrStarted = errors.New("observer already started")

// Backend reads the system clipboard.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ReadText returns the clipboard text, or nil if the clipboard holds none.
	ReadText() ([]byte, error)

	// ReadImage returns the clipboard image PNG-encoded, or nil if the
	// clipboard holds none.
	ReadImage() ([]byte, error)

	// Close releases any resources held by the backend.
	Close()
}

// Observer reports that the clipboard may have changed. Receivers are
// expected to read the clipboard and decide for themselves whether anything
// is new.
type Observer interface {
	Name() string

	// Start registers for notifications. The returned channel receives a
	// value per notification; bursts are coalesced.
	Start() (<-chan struct{}, error)

	// Stop deregisters. No value is delivered after Stop returns, and a
	// stopped observer may be started again.
	Stop() error
}

// Strategy selects how clipboard changes are observed.
type Strategy string

const (
	StrategyAuto  Strategy = "auto"
	StrategyChain Strategy = "chain"
	StrategyPoll  Strategy = "poll"
)

// ParseStrategy converts a config string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case "", StrategyAuto:
		return StrategyAuto, nil
	case StrategyChain, StrategyPoll:
		return st, nil
	default:
		return "", fmt.Errorf("unknown observer strategy %q (want auto, chain or poll)", s)
	}
}

// NewObserver returns the observer for s. Auto picks the viewer chain where
// the platform has one and polls everywhere else.
func NewObserver(s Strategy) Observer {
	if s == StrategyPoll {
		return NewPollObserver(PollInterval)
	}
	if o, ok := newChainObserver(); ok {
		return o
	}
	if s == StrategyChain {
		slog.Warn("clipboard viewer chain not available on this platform, polling instead")
	}
	return NewPollObserver(PollInterval)
}
