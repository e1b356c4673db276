// clipd: clipboard history daemon.
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
		Use:   "clipd",
		Short: "Clipboard history daemon",
		Long: `clipd watches the system clipboard, captures every new payload (text,
image, file list, HTML), deduplicates it and stores it in a local searchable
SQLite database.

Run "clipd serve" to start the capture daemon. The query sub-commands
(recent, search, stats) operate directly on the database and work whether or
not a daemon is running.

Settings live in a JSON document at the per-user config location (created
with defaults on first run); pass --settings to use another file.

All flags can be set via CLIPD_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newRecentCmd(),
		newSearchCmd(),
		newStatsCmd(),
		newCleanupCmd(),
		newExportCmd(),
		newImportCmd(),
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
			fmt.Printf("clipd %s\n", Version)
		},
	}
}
