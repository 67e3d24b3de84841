package app

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/journalfeed/internal/adapter/postgres"
	"github.com/heartmarshall/journalfeed/internal/adapter/postgres/record"
	"github.com/heartmarshall/journalfeed/internal/adapter/provider/postgrest"
	"github.com/heartmarshall/journalfeed/internal/adapter/sqlite"
	"github.com/heartmarshall/journalfeed/internal/config"
	"github.com/heartmarshall/journalfeed/internal/service/feed"
)

// Remote source names reported in logs, health output and the JSON API.
const (
	SourcePostgres  = "postgres"
	SourcePostgREST = "postgrest"
)

// Sources holds the opened data sources. At most one remote is active:
// the database when its DSN connects, otherwise the REST surface.
type Sources struct {
	Local    *sqlite.Store
	Records  *record.Repo
	REST     *postgrest.Client
	Listener *postgres.Listener

	pool *pgxpool.Pool
}

// OpenSources opens the local store and selects the remote source. A
// database that cannot be reached is logged and skipped, never fatal. The
// choice holds for the life of the process.
func OpenSources(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Sources, error) {
	local, err := sqlite.Open(ctx, cfg.Cache.Path)
	if err != nil {
		return nil, err
	}
	src := &Sources{Local: local}

	if cfg.Database.DSN != "" {
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
		pool, err := postgres.NewPool(connectCtx, cfg.Database)
		cancel()
		if err == nil {
			src.pool = pool
			src.Records = record.New(pool)
			src.Listener = postgres.NewListener(pool, cfg.Database.RealtimeChannel, src.Records, logger)
			logger.InfoContext(ctx, "remote source selected", slog.String("source", SourcePostgres))
			return src, nil
		}
		logger.WarnContext(ctx, "database unreachable",
			slog.String("error", err.Error()),
			slog.Bool("rest_fallback", cfg.Store.URL != ""),
		)
	}

	if cfg.Store.URL != "" {
		src.REST = postgrest.New(cfg.Store, logger)
		logger.InfoContext(ctx, "remote source selected", slog.String("source", SourcePostgREST))
		return src, nil
	}

	logger.WarnContext(ctx, "no remote source, serving the local cache only")
	return src, nil
}

// FeedService builds the feed service over the selected sources.
func (s *Sources) FeedService(cfg *config.Config, logger *slog.Logger) *feed.Service {
	opts := feed.Options{
		AuthorName:   cfg.Feed.AuthorName,
		SiteURL:      cfg.Feed.SiteURL,
		TopTags:      cfg.Feed.TopTags,
		PollInterval: cfg.Drafts.PollInterval,
		LoadTimeout:  cfg.Feed.LoadTimeout,
	}
	switch {
	case s.Records != nil:
		return feed.NewService(logger, s.Local, s.Records, SourcePostgres, opts)
	case s.REST != nil:
		// The REST surface has no change channel; reads refresh stale loads.
		opts.MaxAge = cfg.Feed.MaxAge
		return feed.NewService(logger, s.Local, s.REST, SourcePostgREST, opts)
	}
	return feed.NewService(logger, s.Local, nil, "", opts)
}

// Close releases every opened source.
func (s *Sources) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return s.Local.Close()
}
