package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliptask/internal/ipc"
	"go.klb.dev/cliptask/internal/logging"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and CLIPTASK_* env var prefix.
//
// Precedence (lowest to highest): defaults, config file, CLIPTASK_* env vars, flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("cliptask")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/cliptask/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/cliptask", home))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("CLIPTASK")
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run in the foreground: debug level unless --log-level is set")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info, debug with --no-background)")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addSocketFlag adds the --socket flag to a command.
func addSocketFlag(cmd *cobra.Command) {
	cmd.Flags().String("socket", "", "control socket path (default: per-user runtime dir)")
}

// socketPath returns the configured control socket.
func socketPath(v *viper.Viper) string {
	if p := v.GetString("socket"); p != "" {
		return p
	}
	return ipc.SocketPath()
}

// setupLogging reads logging flags from viper and configures slog.
func setupLogging(v *viper.Viper) error {
	format, err := logging.ParseFormat(v.GetString("log-format"))
	if err != nil {
		return err
	}
	level := logging.DefaultLevel(v.GetBool("no-background"))
	if s := v.GetString("log-level"); s != "" {
		if level, err = logging.ParseLevel(s); err != nil {
			return err
		}
	}
	logging.Setup(logging.Options{Format: format, Level: level, Writer: os.Stderr})
	return nil
}
