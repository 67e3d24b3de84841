package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/journalfeed/internal/auth"
	"github.com/heartmarshall/journalfeed/internal/domain"
	"github.com/heartmarshall/journalfeed/internal/service/feed"
)

type adminAuth interface {
	Login(ctx context.Context, password string) (auth.Token, error)
}

type feedWriter interface {
	CreateEntry(ctx context.Context, input feed.CreateEntryInput) (domain.Entry, error)
	CreatePost(ctx context.Context, input feed.CreatePostInput) (domain.Post, error)
	Delete(ctx context.Context, f domain.Feed, id string) error
}

// AdminHandler serves the admin write API. Every route except Login must be
// mounted behind middleware.AdminAuth.
type AdminHandler struct {
	auth  adminAuth
	feeds feedWriter
	log   *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(a adminAuth, feeds feedWriter, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		auth:  a,
		feeds: feeds,
		log:   logger.With("handler", "admin"),
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tok, err := h.auth.Login(r.Context(), req.Password)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tok)
}

// CreateEntry handles POST /api/admin/journal.
func (h *AdminHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var in feed.CreateEntryInput
	if !decodeBody(w, r, &in) {
		return
	}

	e, err := h.feeds.CreateEntry(r.Context(), in)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryResponse(e))
}

// CreatePost handles POST /api/admin/social.
func (h *AdminHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in feed.CreatePostInput
	if !decodeBody(w, r, &in) {
		return
	}

	p, err := h.feeds.CreatePost(r.Context(), in)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPostResponse(p))
}

// DeletePost handles DELETE /api/admin/social/{id}.
func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.feeds.Delete(r.Context(), domain.FeedSocial, r.PathValue("id")); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
