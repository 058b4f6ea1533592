package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"go.klb.dev/cliptask/internal/ipc"
	"go.klb.dev/cliptask/internal/message"
	"go.klb.dev/cliptask/internal/wire"
)

const replyTimeout = 10 * time.Second

// dialTracker connects to the running tracker's control socket.
func dialTracker(v *viper.Viper) (*wire.Conn, error) {
	path := socketPath(v)
	conn, err := ipc.Dial(path)
	if err != nil {
		return nil, fmt.Errorf("no running cliptask at %s (start one with \"cliptask run\"): %w", path, err)
	}
	return wire.New(conn), nil
}

// request sends a single request and returns the reply.
func request(v *viper.Viper, req *message.Message) (*message.Message, error) {
	wc, err := dialTracker(v)
	if err != nil {
		return nil, err
	}
	defer wc.Close()

	wc.SetReadDeadline(replyTimeout)
	return wc.RoundTrip(req)
}
