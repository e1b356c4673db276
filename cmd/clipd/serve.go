package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ukiyograin/clipboard-master/internal/clip"
	"github.com/Ukiyograin/clipboard-master/internal/event"
)

func newServeCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the clipboard capture daemon",
		Long: `Starts the capture daemon: a background listener watches the system
clipboard and stores every new payload in the entry database, deduplicating
the repeated notifications clipboard APIs fire for a single copy.

The daemon runs until SIGINT/SIGTERM; a retention cleanup pass runs on the
way down.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runServe(v) },
	}

	addCoreFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runServe(v *viper.Viper) error {
	setupLogging(v)

	c, err := openCore(v, clip.New())
	if err != nil {
		return err
	}
	defer c.Close()

	slog.Info("clipd starting", "version", Version)

	sub := c.Events().Subscribe()
	defer c.Events().Unsubscribe(sub)
	go logEvents(sub)

	if err := c.Start(); err != nil {
		return fmt.Errorf("starting monitor: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("shutting down", "signal", sig.String())

	return c.Stop()
}

func logEvents(sub *event.Subscription) {
	for ev := range sub.C {
		switch ev.Kind {
		case event.EntryAdded:
			slog.Info("entry added", "id", ev.Entry.ID, "type", ev.Entry.Content.Type, "preview", ev.Entry.PreviewText)
		case event.EntryUpdated:
			slog.Debug("entry updated", "id", ev.Entry.ID)
		case event.EntryRemoved:
			slog.Debug("entry removed", "id", ev.EntryID)
		case event.SettingsChanged:
			slog.Info("settings changed")
		case event.HotkeyPressed:
			slog.Debug("hotkey pressed", "hotkey", ev.Hotkey)
		}
	}
}
