package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"go.klb.dev/cliptask/internal/hub"
	"go.klb.dev/cliptask/internal/message"
	"go.klb.dev/cliptask/internal/wire"
)

const requestTimeout = 10 * time.Second

// Serve answers control connections on ln until ctx is done or ln is
// closed. Each connection carries one request, except WATCH which streams
// snapshots until the client hangs up.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go a.handleConn(ctx, conn)
	}
}

func (a *App) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	wc := wire.New(conn)

	wc.SetReadDeadline(requestTimeout)
	req, err := wc.ReadMsg()
	if err != nil {
		slog.Debug("ipc: read failed", "err", err)
		return
	}
	wc.SetReadDeadline(0)

	if req.Type == message.TypeWatch {
		a.serveWatch(ctx, wc)
		return
	}

	rctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	resp := a.handle(rctx, req)
	if err := wc.WriteMsg(resp); err != nil {
		slog.Debug("ipc: write failed", "type", resp.Type, "err", err)
	}
}

func (a *App) handle(ctx context.Context, req *message.Message) *message.Message {
	slog.Debug("ipc: request", "type", req.Type, "ref", req.Ref)

	switch req.Type {
	case message.TypeAdd:
		if strings.TrimSpace(req.Text) == "" {
			return message.Errorf("task text is empty")
		}
		t, err := a.Add(ctx, req.Text)
		if err != nil {
			return message.Errorf("add: %v", err)
		}
		return &message.Message{
			Type:  message.TypeOK,
			Tasks: []message.TaskInfo{message.NewTaskInfo(0, t)},
		}

	case message.TypeSetCompleted:
		if err := a.SetCompleted(ctx, req.Ref, req.Enabled); err != nil {
			return message.Errorf("set completed: %v", err)
		}
		return a.okWithProgress(ctx)

	case message.TypeRemove:
		if err := a.Remove(ctx, req.Ref); err != nil {
			return message.Errorf("remove: %v", err)
		}
		return a.okWithProgress(ctx)

	case message.TypeList:
		s, err := a.Snapshot(ctx)
		if err != nil {
			return message.Errorf("list: %v", err)
		}
		return snapshotMessage(message.TypeListResponse, s)

	case message.TypeImage:
		data, err := a.Image(ctx, req.Ref)
		if err != nil {
			return message.Errorf("image: %v", err)
		}
		resp := &message.Message{Type: message.TypeImageResponse}
		resp.SetData(data)
		return resp

	case message.TypeMonitor:
		if err := a.SetMonitoring(req.Enabled); err != nil {
			return message.Errorf("monitor: %v", err)
		}
		return &message.Message{Type: message.TypeOK, Monitoring: a.Monitoring()}

	default:
		return message.Errorf("unsupported message type %q", req.Type)
	}
}

func (a *App) okWithProgress(ctx context.Context) *message.Message {
	s, err := a.Snapshot(ctx)
	if err != nil {
		return message.Errorf("%v", err)
	}
	return &message.Message{Type: message.TypeOK, Progress: &s.Progress}
}

// serveWatch streams snapshots until the client disconnects.
func (a *App) serveWatch(ctx context.Context, wc *wire.Conn) {
	w := hub.NewChanWatcher(fmt.Sprintf("ipc-watch-%d", a.watchSeq.Add(1)), 8)
	a.hub.Register(w)
	defer a.hub.Unregister(w)

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, err := wc.ReadMsg(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-gone:
			return
		case s := <-w.C():
			if err := wc.WriteMsg(snapshotMessage(message.TypeSnapshot, s)); err != nil {
				return
			}
		}
	}
}

func snapshotMessage(typ message.Type, s hub.Snapshot) *message.Message {
	p := s.Progress
	return &message.Message{
		Type:       typ,
		Tasks:      s.Tasks,
		Progress:   &p,
		Monitoring: s.Monitoring,
	}
}
