package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ukiyograin/clipboard-master/internal/clip"
	"github.com/Ukiyograin/clipboard-master/internal/entry"
	"github.com/Ukiyograin/clipboard-master/internal/logging"
)

func newRecentCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "recent",
		Short:   "List the most recent clipboard entries",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runRecent(v) },
	}

	f := cmd.Flags()
	f.Int("limit", 20, "maximum number of entries")
	f.Bool("json", false, "output raw JSON")
	addCoreFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runRecent(v *viper.Viper) error {
	logging.Quiet()

	c, err := openCore(v, clip.NewHeadless())
	if err != nil {
		return err
	}
	defer c.Close()

	entries, err := c.Recent(context.Background(), v.GetInt("limit"))
	if err != nil {
		return err
	}
	return printEntries(entries, v.GetBool("json"))
}

func newSearchCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search the clipboard history",
		Long: `Searches stored entries. The optional positional argument matches
against preview text and content; flags narrow by tag, content type, flags
and date.`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, args []string) error {
			text := ""
			if len(args) == 1 {
				text = args[0]
			}
			return runSearch(v, text)
		},
	}

	f := cmd.Flags()
	f.StringSlice("tag", nil, "require a tag (repeatable)")
	f.StringSlice("type", nil, "content type filter: text|html|richtext|image|file|custom")
	f.Bool("favorite", false, "only favorited entries")
	f.Bool("pinned", false, "only pinned entries")
	f.String("since", "", "only entries captured after this time (RFC 3339)")
	f.Int("limit", 50, "maximum number of results")
	f.Int("offset", 0, "number of results to skip")
	f.Bool("json", false, "output raw JSON")
	addCoreFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runSearch(v *viper.Viper, text string) error {
	logging.Quiet()

	c, err := openCore(v, clip.NewHeadless())
	if err != nil {
		return err
	}
	defer c.Close()

	q := entry.SearchQuery{
		Text:         text,
		Tags:         v.GetStringSlice("tag"),
		FavoriteOnly: v.GetBool("favorite"),
		PinnedOnly:   v.GetBool("pinned"),
		Limit:        v.GetInt("limit"),
		Offset:       v.GetInt("offset"),
	}
	for _, t := range v.GetStringSlice("type") {
		q.ContentTypes = append(q.ContentTypes, entry.ContentType(t))
	}
	if since := v.GetString("since"); since != "" {
		from, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}
		q.DateFrom = &from
	}

	entries, err := c.Search(context.Background(), q)
	if err != nil {
		return err
	}
	return printEntries(entries, v.GetBool("json"))
}

func printEntries(entries []*entry.Entry, jsonOut bool) error {
	if jsonOut {
		enc, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(enc))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CAPTURED\tTYPE\tFLAGS\tPREVIEW")
	for _, e := range entries {
		flags := ""
		if e.Favorite {
			flags += "★"
		}
		if e.Pinned {
			flags += "📌"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.CapturedAt.Local().Format("2006-01-02 15:04:05"),
			e.Content.Type, flags, e.PreviewText)
	}
	return w.Flush()
}

func newStatsCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "stats",
		Short:   "Show store statistics",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runStats(v) },
	}

	cmd.Flags().Bool("json", false, "output raw JSON")
	addCoreFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runStats(v *viper.Viper) error {
	logging.Quiet()

	c, err := openCore(v, clip.NewHeadless())
	if err != nil {
		return err
	}
	defer c.Close()

	stats, err := c.Statistics(context.Background())
	if err != nil {
		return err
	}

	if v.GetBool("json") {
		enc, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(enc))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintf(w, "total\t%d\n", stats.TotalItems)
	fmt.Fprintf(w, "text\t%d\n", stats.TextItems)
	fmt.Fprintf(w, "image\t%d\n", stats.ImageItems)
	fmt.Fprintf(w, "file\t%d\n", stats.FileItems)
	fmt.Fprintf(w, "html\t%d\n", stats.HTMLItems)
	fmt.Fprintf(w, "favorite\t%d\n", stats.FavoriteItems)
	fmt.Fprintf(w, "pinned\t%d\n", stats.PinnedItems)
	fmt.Fprintf(w, "payload bytes\t%d\n", stats.TotalSizeBytes)
	fmt.Fprintf(w, "database bytes\t%d\n", stats.DatabaseSizeBytes)
	return w.Flush()
}

func newCleanupCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete unprotected entries past the retention window",
		Long: `Deletes every entry older than the configured retention window that is
neither favorited nor pinned. Protected entries are never removed, whatever
their age.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runCleanup(v) },
	}

	addCoreFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runCleanup(v *viper.Viper) error {
	logging.Quiet()

	c, err := openCore(v, clip.NewHeadless())
	if err != nil {
		return err
	}
	defer c.Close()

	deleted, err := c.Cleanup(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("deleted %d entries\n", deleted)
	return nil
}
