//go:build !windows

package clip

func newChainObserver() (Observer, bool) { return nil, false }
