package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/journalfeed/internal/adapter/draftdir"
	"github.com/heartmarshall/journalfeed/internal/auth"
	"github.com/heartmarshall/journalfeed/internal/config"
	"github.com/heartmarshall/journalfeed/internal/domain"
	"github.com/heartmarshall/journalfeed/internal/render"
	"github.com/heartmarshall/journalfeed/internal/service/feed"
	"github.com/heartmarshall/journalfeed/internal/transport/middleware"
	"github.com/heartmarshall/journalfeed/internal/transport/rest"
	"github.com/heartmarshall/journalfeed/internal/transport/web"
)

// Run is the application entry point. It loads configuration, opens the
// sources, starts the HTTP server and the background loops (realtime
// listener, marker poller, draft watcher) and blocks until ctx is done or
// one of them fails.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("build", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	src, err := OpenSources(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open sources: %w", err)
	}
	defer src.Close()

	feeds := src.FeedService(cfg, logger)

	renderer, err := render.New(render.Options{
		AuthorName:     cfg.Feed.AuthorName,
		AuthorAvatar:   cfg.Feed.AuthorAvatar,
		SiteURL:        cfg.Feed.SiteURL,
		MaxVisibleTags: cfg.Feed.MaxVisibleTags,
	})
	if err != nil {
		return err
	}

	admin := auth.NewAdmin(logger, cfg.Admin.PasswordHash,
		auth.NewJWTManager(cfg.Admin.JWTSecret, auth.Issuer, cfg.Admin.TokenTTL))

	limiter := middleware.NewRateLimiter(time.Minute)
	defer limiter.Stop()

	router := newRouter(cfg, logger, handlers{
		health: rest.NewHealthHandler(feeds, Version),
		api:    rest.NewFeedHandler(feeds, logger),
		admin:  rest.NewAdminHandler(admin, feeds, logger),
		pages:  web.NewHandler(feeds, renderer, logger),
	}, admin, limiter)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		warmUp(gctx, logger, feeds)
		return nil
	})

	g.Go(func() error {
		return feeds.RunMarkerPoller(gctx)
	})

	if src.Listener != nil {
		g.Go(func() error {
			return src.Listener.Run(gctx, feeds.Apply)
		})
	}

	if cfg.Drafts.Dir != "" {
		watcher := draftdir.New(cfg.Drafts.Dir, src.Local, logger)
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	err = g.Wait()
	logger.Info("application stopped")
	return err
}

// warmUp loads both feeds so the first page view is served from memory.
// Failures only log: pages render their own error state.
func warmUp(ctx context.Context, logger *slog.Logger, feeds *feed.Service) {
	for _, f := range []domain.Feed{domain.FeedJournal, domain.FeedSocial} {
		if err := feeds.Reload(ctx, f); err != nil {
			logger.WarnContext(ctx, "initial load failed",
				slog.String("feed", f.String()),
				slog.String("error", err.Error()),
			)
		}
	}
}
