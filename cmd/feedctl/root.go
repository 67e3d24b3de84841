package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/journalfeed/internal/app"
	"github.com/heartmarshall/journalfeed/internal/config"
	"github.com/heartmarshall/journalfeed/internal/domain"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "feedctl",
		Short:        "Inspect and maintain the journal and social feeds",
		SilenceUsage: true,
		Version:      app.BuildVersion(),
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: $CONFIG_PATH or ./config.yaml)")

	root.AddCommand(
		newStatsCmd(opts),
		newRefreshCmd(opts),
		newDraftCmd(opts),
		newHashPasswordCmd(),
	)
	return root
}

// env is what every data command needs: the config, a logger and the
// opened sources.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	src    *app.Sources
}

func (o *rootOptions) open(cmd *cobra.Command) (*env, error) {
	path := o.configPath
	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFrom(path)
	}
	if err != nil {
		return nil, err
	}

	logger := app.NewLoggerTo(cmd.ErrOrStderr(), cfg.Log)
	src, err := app.OpenSources(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open sources: %w", err)
	}
	return &env{cfg: cfg, logger: logger, src: src}, nil
}

func (e *env) Close() error {
	return e.src.Close()
}

// feedsFlag resolves the --feed flag. Empty means both feeds.
func feedsFlag(name string) ([]domain.Feed, error) {
	if name == "" {
		return []domain.Feed{domain.FeedJournal, domain.FeedSocial}, nil
	}
	f := domain.Feed(name)
	if !f.IsValid() {
		return nil, fmt.Errorf("unknown feed %q: want journal or social", name)
	}
	return []domain.Feed{f}, nil
}
