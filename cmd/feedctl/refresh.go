package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newRefreshCmd(opts *rootOptions) *cobra.Command {
	var feedName string
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Load the feeds from the remote source and rewrite the local cache",
		Long: `Loads every requested feed from the active remote source. A successful
load replaces the cached copy, and the change marker is bumped so running
servers reload.`,
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
			if svc.RemoteName() == "" {
				return errors.New("no remote source is configured or reachable")
			}

			var errs []error
			for _, f := range feeds {
				start := time.Now().Truncate(time.Millisecond)
				if err := svc.Reload(cmd.Context(), f); err != nil {
					errs = append(errs, err)
					continue
				}
				// A failed remote falls back to the cache without an error,
				// so the cache stamp tells whether the remote answered.
				at, err := e.src.Local.CachedAt(cmd.Context(), f)
				if err != nil || at.Before(start) {
					errs = append(errs, fmt.Errorf("%s: %s did not answer, cache not refreshed", f, svc.RemoteName()))
					continue
				}
				st := svc.Status(f)
				if _, err := e.src.Local.BumpMarker(cmd.Context(), f); err != nil {
					e.logger.Warn("bump marker", slog.String("feed", f.String()), slog.String("error", err.Error()))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s records from %s\n", f, humanize.Comma(int64(st.Count)), st.Source)
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().StringVar(&feedName, "feed", "", "journal or social (default: both)")
	return cmd
}
