package app

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/journalfeed/internal/auth"
	"github.com/heartmarshall/journalfeed/internal/config"
	"github.com/heartmarshall/journalfeed/internal/transport/middleware"
	"github.com/heartmarshall/journalfeed/internal/transport/rest"
	"github.com/heartmarshall/journalfeed/internal/transport/web"
)

type handlers struct {
	health *rest.HealthHandler
	api    *rest.FeedHandler
	admin  *rest.AdminHandler
	pages  *web.Handler
}

// newRouter mounts every route behind the shared middleware chain.
// Actions and admin login are rate limited per visitor; admin writes
// require a bearer token and are not mounted when admin is disabled.
func newRouter(cfg *config.Config, logger *slog.Logger, h handlers, admin *auth.Admin, limiter *middleware.RateLimiter) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.health.Live)
	mux.HandleFunc("GET /ready", h.health.Ready)
	mux.HandleFunc("GET /health", h.health.Health)

	mux.HandleFunc("GET /api/journal/summary", h.api.Summary)
	mux.HandleFunc("GET /api/{feed}", h.api.List)

	limited := limiter.Limit(cfg.RateLimit.ActionsPerMinute)

	if admin.Enabled() {
		protected := middleware.AdminAuth(admin)

		mux.Handle("POST /api/admin/login", middleware.Wrap(h.admin.Login, limited))
		mux.Handle("POST /api/admin/journal", middleware.Wrap(h.admin.CreateEntry, protected))
		mux.Handle("POST /api/admin/social", middleware.Wrap(h.admin.CreatePost, protected))
		mux.Handle("DELETE /api/admin/social/{id}", middleware.Wrap(h.admin.DeletePost, protected))
	} else {
		logger.Info("admin API disabled: no password hash configured")
	}

	mux.HandleFunc("GET /{$}", h.pages.Journal)
	mux.HandleFunc("GET /journal", h.pages.Journal)
	mux.HandleFunc("GET /social", h.pages.Social)
	mux.HandleFunc("GET /journal/{id}", h.pages.EntryCard)
	mux.HandleFunc("GET /social/{id}", h.pages.PostCard)
	mux.Handle("POST /actions", middleware.Wrap(h.pages.Action, limited))
	mux.Handle("GET /static/", web.Static())

	return middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		middleware.Visitor(cfg.Server.SecureCookies),
	)(mux)
}
