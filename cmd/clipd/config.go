package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ukiyograin/clipboard-master/internal/clip"
	"github.com/Ukiyograin/clipboard-master/internal/core"
	"github.com/Ukiyograin/clipboard-master/internal/logging"
)

// bindViper wires a command's flags into a viper instance with the
// standard config file search order and CLIPD_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → CLIPD_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("clipd")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/clipboard-master/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/clipboard-master", home))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("CLIPD")
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addCoreFlags adds the flags every sub-command that opens the core needs.
func addCoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("settings", "", "path to the settings JSON document (default: per-user config dir)")
	cmd.Flags().String("db", "", "path to the entry database (default: from settings)")
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run interactively: tinter logs + debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info for service, debug for interactive)")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// setupLogging reads logging flags from viper and configures slog.
func setupLogging(v *viper.Viper) {
	interactive := v.GetBool("no-background") || logging.IsTTY(os.Stderr)
	logging.Configure(interactive, v.GetString("log-format"), v.GetString("log-level"))
}

// openCore builds a Core from the resolved flags. Query sub-commands run
// against a headless clipboard backend; only serve attaches the real one.
func openCore(v *viper.Viper, backend clip.Backend) (*core.Core, error) {
	return core.New(core.Options{
		ConfigPath:   v.GetString("settings"),
		DatabasePath: v.GetString("db"),
		Backend:      backend,
	})
}
