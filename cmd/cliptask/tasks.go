package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliptask/internal/message"
	"go.klb.dev/cliptask/internal/presenter"
	"go.klb.dev/cliptask/internal/task"
)

func newAddCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "add [text...]",
		Short: "Add a task",
		Long: `Adds a task to the running tracker. The arguments are joined with spaces;
with no arguments the task text is read from stdin.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runAdd(v, args) },
	}

	addSocketFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runAdd(v *viper.Viper, args []string) error {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = strings.TrimRight(string(data), "\r\n")
	}

	resp, err := request(v, &message.Message{Type: message.TypeAdd, Text: text})
	if err != nil {
		return err
	}
	if len(resp.Tasks) == 1 {
		fmt.Println(resp.Tasks[0].ID)
	}
	return nil
}

func newDoneCmd() *cobra.Command {
	return newCompleteCmd("done", "Mark a task completed", true)
}

func newUndoCmd() *cobra.Command {
	return newCompleteCmd("undo", "Mark a task not completed", false)
}

func newCompleteCmd(use, short string, completed bool) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     use + " <N|ID>",
		Short:   short,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, args []string) error {
			return runUpdate(v, &message.Message{
				Type:    message.TypeSetCompleted,
				Ref:     args[0],
				Enabled: completed,
			})
		},
	}

	addSocketFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func newRmCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "rm <N|ID>",
		Short:   "Remove a task",
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, args []string) error {
			return runUpdate(v, &message.Message{Type: message.TypeRemove, Ref: args[0]})
		},
	}

	addSocketFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

// runUpdate sends a change and prints the resulting progress.
func runUpdate(v *viper.Viper, req *message.Message) error {
	resp, err := request(v, req)
	if err != nil {
		return err
	}
	if p := resp.Progress; p != nil {
		fmt.Println(presenter.ProgressLine(task.Progress{Completed: p.Completed, Total: p.Total}))
	}
	return nil
}
