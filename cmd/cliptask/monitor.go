package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliptask/internal/message"
)

func newMonitorCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:       "monitor <on|off>",
		Short:     "Turn clipboard capture on or off",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		PreRunE:   func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:      func(_ *cobra.Command, args []string) error { return runMonitor(v, args[0] == "on") },
	}

	addSocketFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runMonitor(v *viper.Viper, on bool) error {
	resp, err := request(v, &message.Message{Type: message.TypeMonitor, Enabled: on})
	if err != nil {
		return err
	}
	state := "paused"
	if resp.Monitoring {
		state = "on"
	}
	fmt.Printf("Clipboard capture: %s\n", state)
	return nil
}
