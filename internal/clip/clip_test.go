package clip_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/cliptask/internal/clip"
)

type sent struct {
	to     clip.Handle
	msg    uint32
	wParam uintptr
	lParam uintptr
}

func TestChain(t *testing.T) {
	tests := map[string]struct {
		next    clip.Handle
		do      func(c *clip.Chain)
		expNext clip.Handle
		expSent []sent
	}{
		"A change notification should be passed to the next viewer": {
			next:    20,
			do:      func(c *clip.Chain) { c.DrawClipboard(1, 2) },
			expNext: 20,
			expSent: []sent{{to: 20, msg: clip.WMDrawClipboard, wParam: 1, lParam: 2}},
		},
		"A change notification should go nowhere when we are the last viewer": {
			next:    0,
			do:      func(c *clip.Chain) { c.DrawClipboard(0, 0) },
			expNext: 0,
		},
		"Our successor leaving should make its successor ours": {
			next:    20,
			do:      func(c *clip.Chain) { c.ChangeChain(20, 30) },
			expNext: 30,
		},
		"Our successor leaving as the last viewer should end the chain": {
			next:    20,
			do:      func(c *clip.Chain) { c.ChangeChain(20, 0) },
			expNext: 0,
		},
		"Another viewer leaving should be forwarded down the chain": {
			next:    20,
			do:      func(c *clip.Chain) { c.ChangeChain(40, 50) },
			expNext: 20,
			expSent: []sent{{to: 20, msg: clip.WMChangeCBChain, wParam: 40, lParam: 50}},
		},
		"Another viewer leaving should not be forwarded when we are last": {
			next:    0,
			do:      func(c *clip.Chain) { c.ChangeChain(40, 50) },
			expNext: 0,
		},
		"Forwarding should follow the updated successor": {
			next: 20,
			do: func(c *clip.Chain) {
				c.ChangeChain(20, 30)
				c.DrawClipboard(0, 0)
			},
			expNext: 30,
			expSent: []sent{{to: 30, msg: clip.WMDrawClipboard}},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var got []sent
			c := clip.NewChain(10, test.next, func(to clip.Handle, msg uint32, w, l uintptr) {
				got = append(got, sent{to: to, msg: msg, wParam: w, lParam: l})
			})

			test.do(c)

			assert.Equal(t, clip.Handle(10), c.Self())
			assert.Equal(t, test.expNext, c.Next())
			assert.Equal(t, test.expSent, got)
		})
	}
}

func TestParseStrategy(t *testing.T) {
	tests := map[string]struct {
		in     string
		exp    clip.Strategy
		expErr bool
	}{
		"Empty should be auto":           {in: "", exp: clip.StrategyAuto},
		"Auto should be auto":            {in: "auto", exp: clip.StrategyAuto},
		"Chain should be chain":          {in: "Chain", exp: clip.StrategyChain},
		"Poll should be poll":            {in: " poll ", exp: clip.StrategyPoll},
		"Unknown strategies should fail": {in: "hook", expErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := clip.ParseStrategy(test.in)
			if test.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.exp, got)
		})
	}
}

func TestPollObserver(t *testing.T) {
	o := clip.NewPollObserver(5 * time.Millisecond)

	ch, err := o.Start()
	require.NoError(t, err)

	_, err = o.Start()
	assert.ErrorIs(t, err, clip.ErrStarted)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no poll signal")
	}

	require.NoError(t, o.Stop())
	require.NoError(t, o.Stop())

	// Drain whatever was buffered; the channel must then be closed.
	for range ch {
	}

	// A stopped observer can be started again.
	ch, err = o.Start()
	require.NoError(t, err)
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no poll signal after restart")
	}
	require.NoError(t, o.Stop())
}

func TestNewObserverPoll(t *testing.T) {
	o := clip.NewObserver(clip.StrategyPoll)
	assert.Contains(t, o.Name(), "poll")
}
