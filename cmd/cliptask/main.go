// cliptask: a task list fed by the clipboard.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "cliptask",
		Short: "Task list that captures whatever you copy",
		Long: `cliptask keeps a to-do list and turns every new clipboard value into a
task. Text becomes a "[Clipboard] ..." task; images are kept with the task
and can be fetched back as PNG.

Run "cliptask run" to start the tracker. The other commands talk to the
running tracker over a local socket (a named pipe on Windows).

Config file search order (first found wins):
  /etc/cliptask/cliptask.toml
  $HOME/.config/cliptask/cliptask.toml
  path supplied via --config

All flags can be set via CLIPTASK_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRunCmd(),
		newAddCmd(),
		newListCmd(),
		newDoneCmd(),
		newUndoCmd(),
		newRmCmd(),
		newImageCmd(),
		newMonitorCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("cliptask %s\n", Version)
		},
	}
}
