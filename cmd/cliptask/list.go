package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliptask/internal/message"
	"go.klb.dev/cliptask/internal/presenter"
	"go.klb.dev/cliptask/internal/task"
)

func newListCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the task list",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runList(v) },
	}

	f := cmd.Flags()
	f.Bool("json", false, "output raw JSON")
	addSocketFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runList(v *viper.Viper) error {
	resp, err := request(v, &message.Message{Type: message.TypeList})
	if err != nil {
		return err
	}

	if v.GetBool("json") {
		return printJSON(os.Stdout, resp, true)
	}

	printList(os.Stdout, resp, time.Now())
	return nil
}

func printList(out io.Writer, resp *message.Message, now time.Time) {
	var prog task.Progress
	if p := resp.Progress; p != nil {
		prog = task.Progress{Completed: p.Completed, Total: p.Total}
	}
	monitoring := "paused"
	if resp.Monitoring {
		monitoring = "on"
	}
	fmt.Fprintln(out, presenter.ProgressLine(prog))
	fmt.Fprintf(out, "Clipboard capture: %s\n\n", monitoring)

	if len(resp.Tasks) == 0 {
		fmt.Fprintln(out, "No tasks.")
		return
	}

	tw := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "#\tDONE\tTEXT\tCOLOR\tKIND\tCREATED\n")
	_, _ = fmt.Fprintf(tw, "-\t----\t----\t-----\t----\t-------\n")
	for _, t := range resp.Tasks {
		done := ""
		if t.Completed {
			done = "x"
		}
		kind := t.Kind
		if t.ImageWidth > 0 {
			kind = fmt.Sprintf("%s %dx%d", t.Kind, t.ImageWidth, t.ImageHeight)
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			t.Position, done, t.Text, t.Color, kind, fmtAge(now, t.CreatedAt),
		)
	}
	_ = tw.Flush()
}

// printJSON writes v as one JSON document followed by a newline.
func printJSON(out io.Writer, v any, indent bool) error {
	var (
		enc []byte
		err error
	)
	if indent {
		enc, err = json.MarshalIndent(v, "", "  ")
	} else {
		enc, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(out, string(enc))
	return err
}

func fmtAge(now, t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	age := now.Sub(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	return t.Format("15:04:05")
}
