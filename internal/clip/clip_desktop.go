//go:build darwin || windows || linux

package clip

import (
	"log/slog"

	"golang.design/x/clipboard"
)

type desktopBackend struct{}

// New returns the system clipboard backend, or a headless no-op backend if
// the display environment is unavailable (e.g. a headless server without X11
// or Wayland). clipboard.Init is called here rather than in init() so that
// CLI sub-commands that only talk to the control socket don't trigger the
// warning.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return headlessBackend{}
	}
	return desktopBackend{}
}

func (desktopBackend) Name() string { return "system clipboard" }

func (desktopBackend) ReadText() ([]byte, error) {
	return clipboard.Read(clipboard.FmtText), nil
}

func (desktopBackend) ReadImage() ([]byte, error) {
	return clipboard.Read(clipboard.FmtImage), nil
}

func (desktopBackend) Close() {}
