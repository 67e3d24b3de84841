package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/journalfeed/internal/analytics"
	"github.com/heartmarshall/journalfeed/internal/domain"
	"github.com/heartmarshall/journalfeed/internal/service/feed"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle = lipgloss.NewStyle().Width(16).Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	tagStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var feedName string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Load the feeds and print their analytics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			feeds, err := feedsFlag(feedName)
			if err != nil {
				return err
			}
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			svc := e.src.FeedService(e.cfg, e.logger)
			for _, f := range feeds {
				summary, err := summarize(cmd, svc, f, e.cfg.Feed.TopTags)
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), svc.Status(f), summary)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&feedName, "feed", "", "journal or social (default: both)")
	return cmd
}

func summarize(cmd *cobra.Command, svc *feed.Service, f domain.Feed, topTags int) (analytics.Summary, error) {
	if f == domain.FeedJournal {
		return svc.Summary(cmd.Context())
	}
	posts, err := svc.Posts(cmd.Context())
	if err != nil {
		return analytics.Summary{}, err
	}
	return analytics.SummarizePosts(posts, topTags), nil
}

func printSummary(w io.Writer, st feed.Status, s analytics.Summary) {
	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	loaded := "never"
	if !st.LoadedAt.IsZero() {
		loaded = humanize.Time(st.LoadedAt)
	}

	topics := "No topics yet"
	if len(s.TopTags) > 0 {
		tags := make([]string, len(s.TopTags))
		for i, t := range s.TopTags {
			tags[i] = tagStyle.Render(fmt.Sprintf("%s %d", t.Tag, t.Count))
		}
		topics = strings.Join(tags, " ")
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(strings.ToUpper(st.Feed.String())),
		row("Source", st.Source),
		row("Loaded", loaded),
		row("Records", humanize.Comma(int64(s.Count))),
		row("Words", humanize.Comma(int64(s.ApproxWordCount))+" ("+s.Words()+")"),
		row("Reading time", s.ReadingTime()),
		row("Active topics", humanize.Comma(int64(s.UniqueTagCount))),
		row("Featured", topics),
	)
	fmt.Fprintln(w, boxStyle.Render(body))
}
