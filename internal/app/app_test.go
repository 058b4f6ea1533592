package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/cliptask/internal/clip/fake"
	"go.klb.dev/cliptask/internal/message"
	"go.klb.dev/cliptask/internal/task"
	"go.klb.dev/cliptask/internal/wire"
)

type recorder struct {
	mu    sync.Mutex
	calls int
	last  task.Progress
}

func (r *recorder) Render(_ []task.Task, prog task.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.last = prog
}

func (r *recorder) state() (int, task.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls, r.last
}

type testApp struct {
	*App
	backend  *fake.Backend
	observer *fake.Observer
	renderer *recorder
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ta := &testApp{
		backend:  fake.NewBackend(),
		observer: fake.NewObserver(),
		renderer: &recorder{},
	}
	ta.App = New(Config{Backend: ta.backend, Observer: ta.observer, Renderer: ta.renderer})

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		_ = ta.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		ta.Close()
		cancel()
		<-stopped
	})
	return ta
}

func (ta *testApp) texts(t *testing.T) []string {
	t.Helper()
	s, err := ta.Snapshot(context.Background())
	require.NoError(t, err)
	var out []string
	for _, info := range s.Tasks {
		out = append(out, info.Text)
	}
	return out
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 24, 12))
	for y := range 12 {
		for x := range 24 {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 20), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAppProgress(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	for _, text := range []string{"one", "two", "three"} {
		_, err := a.Add(ctx, text)
		require.NoError(t, err)
	}
	require.NoError(t, a.SetCompleted(ctx, "1", true))
	require.NoError(t, a.SetCompleted(ctx, "3", true))

	s, err := a.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, message.Progress{Completed: 2, Total: 3}, s.Progress)

	require.NoError(t, a.Remove(ctx, "2"))
	s, err = a.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, message.Progress{Completed: 2, Total: 2}, s.Progress)
	assert.Equal(t, []string{"one", "three"}, a.texts(t))

	// Unknown references are ignored.
	require.NoError(t, a.SetCompleted(ctx, "9", true))
	require.NoError(t, a.Remove(ctx, "01ZZZZZZZZZZZZZZZZZZZZZZZZ"))
	assert.Equal(t, []string{"one", "three"}, a.texts(t))

	calls, last := a.renderer.state()
	assert.GreaterOrEqual(t, calls, 6)
	assert.Equal(t, task.Progress{Completed: 2, Total: 2}, last)
}

func TestAppImage(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	_, err := a.Add(ctx, "plain")
	require.NoError(t, err)

	_, err = a.Image(ctx, "1")
	assert.ErrorIs(t, err, ErrNotImage)
	_, err = a.Image(ctx, "7")
	assert.ErrorIs(t, err, ErrNotFound)

	data := pngBytes(t)
	require.NoError(t, a.SetMonitoring(true))
	a.backend.SetImage(data)
	require.True(t, a.observer.Notify())
	require.Eventually(t, func() bool { return len(a.texts(t)) == 2 }, time.Second, 5*time.Millisecond)

	got, err := a.Image(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	s, err := a.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "image", s.Tasks[1].Kind)
	assert.Equal(t, 24, s.Tasks[1].ImageWidth)
	assert.Equal(t, 12, s.Tasks[1].ImageHeight)
}

func TestAppMonitoring(t *testing.T) {
	a := newTestApp(t)
	assert.False(t, a.Monitoring())

	require.NoError(t, a.SetMonitoring(true))
	assert.True(t, a.Monitoring())

	a.backend.SetText("copied")
	require.True(t, a.observer.Notify())
	require.Eventually(t, func() bool { return len(a.texts(t)) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"[Clipboard] copied"}, a.texts(t))

	require.NoError(t, a.SetMonitoring(false))
	assert.False(t, a.Monitoring())
	assert.False(t, a.observer.Notify())

	require.Eventually(t, func() bool {
		s, ok := a.Hub().Latest()
		return ok && !s.Monitoring
	}, time.Second, 5*time.Millisecond)
}

func TestHandleRequest(t *testing.T) {
	tests := map[string]struct {
		setup  func(t *testing.T, a *testApp)
		req    *message.Message
		expErr string
		check  func(t *testing.T, a *testApp, resp *message.Message)
	}{
		"Adding a task should return it": {
			req: &message.Message{Type: message.TypeAdd, Text: "write docs"},
			check: func(t *testing.T, a *testApp, resp *message.Message) {
				require.Len(t, resp.Tasks, 1)
				assert.Equal(t, "write docs", resp.Tasks[0].Text)
				assert.Equal(t, []string{"write docs"}, a.texts(t))
			},
		},
		"Adding blank text should fail": {
			req:    &message.Message{Type: message.TypeAdd, Text: "  \t"},
			expErr: "remote: task text is empty",
		},
		"Completing a task should report progress": {
			setup: func(t *testing.T, a *testApp) {
				_, err := a.Add(context.Background(), "a")
				require.NoError(t, err)
				_, err = a.Add(context.Background(), "b")
				require.NoError(t, err)
			},
			req: &message.Message{Type: message.TypeSetCompleted, Ref: "2", Enabled: true},
			check: func(t *testing.T, _ *testApp, resp *message.Message) {
				assert.Equal(t, &message.Progress{Completed: 1, Total: 2}, resp.Progress)
			},
		},
		"Removing a task should report progress": {
			setup: func(t *testing.T, a *testApp) {
				_, err := a.Add(context.Background(), "a")
				require.NoError(t, err)
			},
			req: &message.Message{Type: message.TypeRemove, Ref: "1"},
			check: func(t *testing.T, _ *testApp, resp *message.Message) {
				assert.Equal(t, &message.Progress{Completed: 0, Total: 0}, resp.Progress)
			},
		},
		"Listing should return tasks in order with positions": {
			setup: func(t *testing.T, a *testApp) {
				_, err := a.Add(context.Background(), "a")
				require.NoError(t, err)
				_, err = a.Add(context.Background(), "b")
				require.NoError(t, err)
			},
			req: &message.Message{Type: message.TypeList},
			check: func(t *testing.T, _ *testApp, resp *message.Message) {
				assert.Equal(t, message.TypeListResponse, resp.Type)
				require.Len(t, resp.Tasks, 2)
				assert.Equal(t, 1, resp.Tasks[0].Position)
				assert.Equal(t, "b", resp.Tasks[1].Text)
				assert.Equal(t, 1, resp.Tasks[1].ColorIndex)
			},
		},
		"Asking a text task for its image should fail": {
			setup: func(t *testing.T, a *testApp) {
				_, err := a.Add(context.Background(), "a")
				require.NoError(t, err)
			},
			req:    &message.Message{Type: message.TypeImage, Ref: "1"},
			expErr: "remote: image: task has no image: 1",
		},
		"Turning monitoring on should be reported": {
			req: &message.Message{Type: message.TypeMonitor, Enabled: true},
			check: func(t *testing.T, a *testApp, resp *message.Message) {
				assert.True(t, resp.Monitoring)
				assert.True(t, a.Monitoring())
			},
		},
		"An unknown type should fail": {
			req:    &message.Message{Type: "BOGUS"},
			expErr: `remote: unsupported message type "BOGUS"`,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			a := newTestApp(t)
			if test.setup != nil {
				test.setup(t, a)
			}

			client, server := net.Pipe()
			defer client.Close()
			go a.handleConn(context.Background(), server)

			resp, err := wire.New(client).RoundTrip(test.req)
			if test.expErr != "" {
				assert.EqualError(t, err, test.expErr)
				return
			}
			require.NoError(t, err)
			if test.check != nil {
				test.check(t, a, resp)
			}
		})
	}
}

func TestServeWatch(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	// The initial render has been published once the loop answers.
	_, err := a.Snapshot(ctx)
	require.NoError(t, err)

	client, server := net.Pipe()
	go a.handleConn(ctx, server)
	wc := wire.New(client)
	require.NoError(t, wc.WriteMsg(&message.Message{Type: message.TypeWatch}))

	first, err := wc.ReadMsg()
	require.NoError(t, err)
	assert.Equal(t, message.TypeSnapshot, first.Type)
	assert.Empty(t, first.Tasks)

	_, err = a.Add(ctx, "streamed")
	require.NoError(t, err)

	next, err := wc.ReadMsg()
	require.NoError(t, err)
	require.Len(t, next.Tasks, 1)
	assert.Equal(t, "streamed", next.Tasks[0].Text)
	assert.Equal(t, &message.Progress{Completed: 0, Total: 1}, next.Progress)

	require.NoError(t, client.Close())
	require.Eventually(t, func() bool { return a.Hub().Len() == 0 }, time.Second, 5*time.Millisecond)
}
