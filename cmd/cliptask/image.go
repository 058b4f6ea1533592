package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliptask/internal/message"
)

func newImageCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "image <N|ID>",
		Short: "Write a task's captured image as PNG",
		Long: `Fetches the image attached to a clipboard image task and writes it as PNG
to stdout, or to the file named by --output:

  cliptask image 3 > screenshot.png`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runImage(v, args[0]) },
	}

	f := cmd.Flags()
	f.StringP("output", "o", "", "write to this file instead of stdout")
	addSocketFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runImage(v *viper.Viper, ref string) error {
	resp, err := request(v, &message.Message{Type: message.TypeImage, Ref: ref})
	if err != nil {
		return err
	}
	data, err := resp.DecodeData()
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	if out := v.GetString("output"); out != "" {
		return os.WriteFile(out, data, 0o644)
	}
	_, err = os.Stdout.Write(data)
	return err
}
