// Package ipc provides helpers for the local control channel used by CLI
// sub-commands (add/list/done/...) to talk to a running cliptask instance.
//
// The channel carries newline-delimited JSON (see package wire) over a Unix
// domain socket, or a named pipe on Windows. The running instance listens;
// sub-commands dial it and fail if it is absent.
package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"
)

const dialTimeout = 2 * time.Second

// ErrRunning is returned by Listen when another instance owns the socket.
var ErrRunning = errors.New("another cliptask instance is already running")

// SocketPath returns the platform-appropriate path for the IPC socket.
//
//   - Linux:   $XDG_RUNTIME_DIR/cliptask.sock, else $TMPDIR/cliptask.sock
//   - macOS:   $TMPDIR/cliptask.sock
//   - Windows: \\.\pipe\cliptask
//
// $CLIPTASK_SOCKET overrides all of these.
func SocketPath() string {
	if s := os.Getenv("CLIPTASK_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// IsRunning reports whether a cliptask instance appears to be listening on
// path. It does a cheap dial-and-close; no data is exchanged.
func IsRunning(path string) bool {
	c, err := Dial(path)
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a listener on path, replacing a stale socket left by a
// crashed run.
func Listen(path string) (net.Listener, error) {
	if IsRunning(path) {
		return nil, ErrRunning
	}
	ln, err := listenIPC(path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	return ln, nil
}

// Dial connects to the instance listening on path.
func Dial(path string) (net.Conn, error) {
	return dialIPC(path)
}
