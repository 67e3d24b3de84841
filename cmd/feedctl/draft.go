package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/journalfeed/internal/adapter/draftdir"
	"github.com/heartmarshall/journalfeed/internal/domain"
)

func newDraftCmd(opts *rootOptions) *cobra.Command {
	var feedName string
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Manage the locally edited draft that overrides a loaded feed",
	}
	cmd.PersistentFlags().StringVar(&feedName, "feed", string(domain.FeedJournal), "journal or social")

	feedOf := func() (domain.Feed, error) {
		f := domain.Feed(feedName)
		if !f.IsValid() {
			return "", fmt.Errorf("unknown feed %q: want journal or social", feedName)
		}
		return f, nil
	}

	importCmd := &cobra.Command{
		Use:   "import <file.yaml|file.json>",
		Short: "Store a record list as the draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := feedOf()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("feed") {
				if byName, ok := draftdir.FeedFromFile(args[0]); ok {
					f = byName
				}
			}
			recs, err := draftdir.ReadFile(args[0])
			if err != nil {
				return err
			}

			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.src.Local.SaveDraft(cmd.Context(), f, recs); err != nil {
				return err
			}
			bump(cmd, e, f)
			fmt.Fprintf(cmd.OutOrStdout(), "%s draft: %d records imported\n", f, len(recs))
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := feedOf()
			if err != nil {
				return err
			}
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			removed, err := e.src.Local.ClearDraft(cmd.Context(), f)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s draft: nothing to clear\n", f)
				return nil
			}
			bump(cmd, e, f)
			fmt.Fprintf(cmd.OutOrStdout(), "%s draft: cleared\n", f)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the draft as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := feedOf()
			if err != nil {
				return err
			}
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			recs, err := e.src.Local.Draft(cmd.Context(), f)
			if errors.Is(err, domain.ErrNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s draft: none\n", f)
				return nil
			}
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(recs)
		},
	}

	cmd.AddCommand(importCmd, clearCmd, showCmd)
	return cmd
}

// bump moves the change marker so running servers pick the draft change up.
func bump(cmd *cobra.Command, e *env, f domain.Feed) {
	if _, err := e.src.Local.BumpMarker(cmd.Context(), f); err != nil {
		e.logger.Warn("bump marker", slog.String("feed", f.String()), slog.String("error", err.Error()))
	}
}
