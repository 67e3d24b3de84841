// Package web serves the HTML pages and the form action endpoint.
package web

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/journalfeed/internal/analytics"
	"github.com/heartmarshall/journalfeed/internal/domain"
	"github.com/heartmarshall/journalfeed/internal/render"
	"github.com/heartmarshall/journalfeed/internal/service/feed"
	"github.com/heartmarshall/journalfeed/internal/view"
	"github.com/heartmarshall/journalfeed/pkg/ctxutil"
)

// One-shot query parameters set by the action redirect.
const (
	// ParamToast carries the toast text across the post/redirect/get cycle.
	ParamToast = "toast"
	// ParamShare names the record whose share panel is open.
	ParamShare = "share"
)

type feedService interface {
	Entries(ctx context.Context) ([]domain.Entry, error)
	Posts(ctx context.Context) ([]domain.Post, error)
	Entry(ctx context.Context, id string) (domain.Entry, error)
	Post(ctx context.Context, id string) (domain.Post, error)
	Summary(ctx context.Context) (analytics.Summary, error)
	Marks(ctx context.Context, visitor string) feed.Marks
	ToggleLike(ctx context.Context, visitor, id string) (feed.ActionResult, error)
	ToggleBookmark(ctx context.Context, visitor string, f domain.Feed, id string) (feed.ActionResult, error)
	Share(ctx context.Context, f domain.Feed, id string) (feed.ActionResult, error)
}

type pageRenderer interface {
	Journal(w io.Writer, p render.JournalPage) error
	Social(w io.Writer, p render.SocialPage) error
	Entry(e domain.Entry, st view.State, path string, marks render.Marks) (template.HTML, error)
	Post(p domain.Post, st view.State, path string, marks render.Marks) (template.HTML, error)
}

// Handler serves the journal and social pages.
type Handler struct {
	feeds   feedService
	render  pageRenderer
	actions map[domain.Action]actionFunc
	log     *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(feeds feedService, r pageRenderer, logger *slog.Logger) *Handler {
	h := &Handler{
		feeds:  feeds,
		render: r,
		log:    logger.With("handler", "web"),
	}
	h.actions = h.actionTable()
	return h
}

// Journal handles GET / and GET /journal.
func (h *Handler) Journal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := render.JournalPage{
		Path:   r.URL.Path,
		State:  view.Parse(r.URL.Query()),
		Marks:  h.marks(ctx),
		Toast:  r.URL.Query().Get(ParamToast),
		Shared: r.URL.Query().Get(ParamShare),
	}

	page.Entries, page.Err = h.feeds.Entries(ctx)
	if page.Err == nil {
		summary, err := h.feeds.Summary(ctx)
		if err != nil {
			h.log.WarnContext(ctx, "journal summary", slog.String("error", err.Error()))
		}
		page.Summary = summary
	}

	h.writePage(w, r, page.Err, func(buf *bytes.Buffer) error {
		return h.render.Journal(buf, page)
	})
}

// Social handles GET /social.
func (h *Handler) Social(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := render.SocialPage{
		Path:   r.URL.Path,
		State:  view.Parse(r.URL.Query()),
		Marks:  h.marks(ctx),
		Toast:  r.URL.Query().Get(ParamToast),
		Shared: r.URL.Query().Get(ParamShare),
	}
	page.Posts, page.Err = h.feeds.Posts(ctx)

	h.writePage(w, r, page.Err, func(buf *bytes.Buffer) error {
		return h.render.Social(buf, page)
	})
}

// EntryCard handles GET /journal/{id}: a single card for partial re-render.
func (h *Handler) EntryCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e, err := h.feeds.Entry(ctx, r.PathValue("id"))
	if err != nil {
		h.cardError(w, r, err)
		return
	}
	html, err := h.render.Entry(e, view.Parse(r.URL.Query()), "/journal", h.marks(ctx))
	if err != nil {
		h.cardError(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, []byte(html))
}

// PostCard handles GET /social/{id}.
func (h *Handler) PostCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := h.feeds.Post(ctx, r.PathValue("id"))
	if err != nil {
		h.cardError(w, r, err)
		return
	}
	html, err := h.render.Post(p, view.Parse(r.URL.Query()), "/social", h.marks(ctx))
	if err != nil {
		h.cardError(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, []byte(html))
}

func (h *Handler) marks(ctx context.Context) render.Marks {
	visitor, _ := ctxutil.VisitorIDFromCtx(ctx)
	m := h.feeds.Marks(ctx, visitor)
	return render.Marks{Liked: m.Liked, Bookmarked: m.Bookmarked}
}

// writePage renders into a buffer first so a template failure never leaves a
// half-written page behind. Load errors are part of the page.
func (h *Handler) writePage(w http.ResponseWriter, r *http.Request, loadErr error, fn func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		h.log.ErrorContext(r.Context(), "render page",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if loadErr != nil {
		h.log.WarnContext(r.Context(), "feed unavailable", slog.String("error", loadErr.Error()))
		status = http.StatusServiceUnavailable
	}
	writeHTML(w, status, buf.Bytes())
}

func (h *Handler) cardError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrLoadFailed):
		http.Error(w, "feed unavailable", http.StatusServiceUnavailable)
	default:
		h.log.ErrorContext(r.Context(), "render card", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body) //nolint:errcheck
}
