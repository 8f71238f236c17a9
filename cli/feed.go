package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ytshorts/feed"
	"ytshorts/youtube"
)

func newFeedCmd(flags *rootFlags) *cobra.Command {
	var (
		user, channel, custom string
		limit                 int
		format                string
	)
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Build the Shorts feed of a channel and write it to stdout",
		Example: `  ytshorts feed --custom @veritasium
  ytshorts feed --channel UCHnyfMqiRRG1u-2MsSQLbXA --limit 10 --format json
  ytshorts feed --user LinusTechTips --format table`,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := youtube.ParseSource(user, channel, custom)
			if err != nil {
				return fmt.Errorf("one of --user, --channel or --custom is required")
			}
			if limit < 0 || limit > feed.DefaultItemLimit {
				return fmt.Errorf("--limit must be between 1 and %d", feed.DefaultItemLimit)
			}

			a, err := newApp(cmd.Context(), flags.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := a.builder.Build(cmd.Context(), src, limit)
			if err != nil {
				return err
			}
			return writeFeed(cmd.OutOrStdout(), f, format)
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "legacy username (/user/<name>)")
	cmd.Flags().StringVar(&channel, "channel", "", "channel id (/channel/<id>)")
	cmd.Flags().StringVar(&custom, "custom", "", "custom name or handle (/<name>)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of items (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", "atom", "output format: atom, json or table")
	return cmd
}

func writeFeed(w io.Writer, f *feed.Feed, format string) error {
	switch format {
	case "atom":
		return feed.WriteAtom(w, f)
	case "json":
		return feed.WriteJSON(w, f)
	case "table":
		return writeTable(w, f)
	default:
		return fmt.Errorf("invalid --format value %q (use atom, json or table)", format)
	}
}

func writeTable(w io.Writer, f *feed.Feed) error {
	fmt.Fprintf(w, "%s\n%s\n\n", f.Title, f.URL)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VIDEO ID\tTITLE\tPUBLISHED\tLINKS")
	for _, it := range f.Items {
		published := ""
		if !it.Published.IsZero() {
			published = it.Published.Format("2006-01-02")
		}
		links := "-"
		switch {
		case it.Unavailable:
			links = "unavailable"
		case it.Description.IsLinked():
			links = fmt.Sprintf("%d", len(it.Description.Ranges))
		case len(it.Description.Unmatched) > 0:
			links = "unmatched"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, truncate(it.Title, 50), published, links)
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}
