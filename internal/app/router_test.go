package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/journalfeed/internal/adapter/sqlite"
	"github.com/heartmarshall/journalfeed/internal/auth"
	"github.com/heartmarshall/journalfeed/internal/config"
	"github.com/heartmarshall/journalfeed/internal/domain"
	"github.com/heartmarshall/journalfeed/internal/render"
	"github.com/heartmarshall/journalfeed/internal/transport/middleware"
	"github.com/heartmarshall/journalfeed/internal/transport/rest"
	"github.com/heartmarshall/journalfeed/internal/transport/web"
)

func testConfig() *config.Config {
	return &config.Config{
		Cache:     config.CacheConfig{Path: sqlite.MemoryPath},
		Drafts:    config.DraftsConfig{PollInterval: time.Second},
		Feed:      config.FeedConfig{AuthorName: "Sean Sneed", SiteURL: "https://example.com/journal", MaxVisibleTags: 3, TopTags: 5, LoadTimeout: time.Second},
		RateLimit: config.RateLimitConfig{ActionsPerMinute: 60},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config, passwordHash string) (http.Handler, *Sources) {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	src, err := OpenSources(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })

	feeds := src.FeedService(cfg, logger)
	renderer, err := render.New(render.Options{AuthorName: cfg.Feed.AuthorName, SiteURL: cfg.Feed.SiteURL})
	require.NoError(t, err)

	admin := auth.NewAdmin(logger, passwordHash,
		auth.NewJWTManager(strings.Repeat("k", 32), auth.Issuer, time.Hour))
	limiter := middleware.NewRateLimiter(time.Minute)
	t.Cleanup(limiter.Stop)

	return newRouter(cfg, logger, handlers{
		health: rest.NewHealthHandler(feeds, "test"),
		api:    rest.NewFeedHandler(feeds, logger),
		admin:  rest.NewAdminHandler(admin, feeds, logger),
		pages:  web.NewHandler(feeds, renderer, logger),
	}, admin, limiter), src
}

func serve(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, body))
	return rec
}

func TestOpenSources_CacheOnly(t *testing.T) {
	t.Parallel()

	_, src := newTestRouter(t, testConfig(), "")
	assert.Nil(t, src.Records)
	assert.Nil(t, src.REST)
	assert.Nil(t, src.Listener)
}

func TestOpenSources_RESTFallback(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Database = config.DatabaseConfig{DSN: "postgres://nobody@127.0.0.1:1/none", ConnectTimeout: 200 * time.Millisecond, MaxConns: 1}
	cfg.Store = config.StoreConfig{URL: "https://store.example", AnonKey: "anon"}

	_, src := newTestRouter(t, cfg, "")
	assert.Nil(t, src.Records)
	assert.NotNil(t, src.REST)
	assert.Equal(t, SourcePostgREST, src.FeedService(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))).RemoteName())
}

func TestRouter_RESTFallbackRefreshesStaleFeed(t *testing.T) {
	t.Parallel()

	var inserted atomic.Bool
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !strings.HasSuffix(r.URL.Path, "/social_posts") {
			io.WriteString(w, "[]") //nolint:errcheck
			return
		}
		if inserted.Load() {
			io.WriteString(w, `[{"id":"p2","content":"second"},{"id":"p1","content":"first"}]`) //nolint:errcheck
			return
		}
		io.WriteString(w, `[{"id":"p1","content":"first"}]`) //nolint:errcheck
	}))
	t.Cleanup(store.Close)

	cfg := testConfig()
	cfg.Store = config.StoreConfig{URL: store.URL, AnonKey: "anon", Timeout: time.Second}
	cfg.Feed.MaxAge = time.Nanosecond
	h, _ := newTestRouter(t, cfg, "")

	count := func() int {
		rec := serve(h, http.MethodGet, "/api/social", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Source string `json:"source"`
			Count  int    `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, SourcePostgREST, body.Source)
		return body.Count
	}

	assert.Equal(t, 1, count())
	inserted.Store(true)
	time.Sleep(time.Millisecond)
	assert.Equal(t, 2, count(), "a write to the hosted store shows on the next read")
}

func TestRouter_Middleware(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t, testConfig(), "")
	rec := serve(h, http.MethodGet, "/live", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderRequestID))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.VisitorCookie, cookies[0].Name)
}

func TestRouter_CacheOnlyPages(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	h, src := newTestRouter(t, cfg, "")
	ctx := context.Background()

	// Empty cache and no remote: nothing to show.
	rec := serve(h, http.MethodGet, "/journal", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "error-state")

	rec = serve(h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "the local store is up")

	require.NoError(t, src.Local.Save(ctx, domain.FeedSocial, []domain.Raw{
		{"id": "1", "author": "Sean", "content": "hello", "likes": float64(2)},
	}))

	rec = serve(h, http.MethodGet, "/social", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello")

	rec = serve(h, http.MethodGet, "/api/social", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source":"cache"`)
}

func TestRouter_AdminMounting(t *testing.T) {
	t.Parallel()

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		h, _ := newTestRouter(t, testConfig(), "")
		rec := serve(h, http.MethodPost, "/api/admin/login", strings.NewReader(`{"password":"x"}`))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("enabled requires token", func(t *testing.T) {
		t.Parallel()
		hash, err := auth.HashPassword("s3cret", 4)
		require.NoError(t, err)
		h, _ := newTestRouter(t, testConfig(), hash)

		rec := serve(h, http.MethodDelete, "/api/admin/social/1", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = serve(h, http.MethodPost, "/api/admin/login", strings.NewReader(`{"password":"s3cret"}`))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "accessToken")
	})
}

func TestRouter_Static(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t, testConfig(), "")
	rec := serve(h, http.MethodGet, "/static/site.css", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}
