package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliptask/internal/message"
)

func newWatchCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the task list every time it changes",
		Long: `Streams the task list from the running tracker, printing it after every
change until interrupted. With --json each snapshot is printed as one JSON
line.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runWatch(v) },
	}

	f := cmd.Flags()
	f.Bool("json", false, "output one JSON snapshot per line")
	addSocketFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runWatch(v *viper.Viper) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	wc, err := dialTracker(v)
	if err != nil {
		return err
	}
	defer wc.Close()
	go func() {
		<-ctx.Done()
		_ = wc.Close()
	}()

	if err := wc.WriteMsg(&message.Message{Type: message.TypeWatch}); err != nil {
		return fmt.Errorf("write %s: %w", message.TypeWatch, err)
	}

	jsonOut := v.GetBool("json")
	for {
		msg, err := wc.ReadMsg()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}
		if err := msg.Err(); err != nil {
			return err
		}

		if jsonOut {
			if err := printJSON(os.Stdout, msg, false); err != nil {
				return err
			}
			continue
		}
		printList(os.Stdout, msg, time.Now())
		fmt.Println()
	}
}
