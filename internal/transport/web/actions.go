package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/heartmarshall/journalfeed/internal/domain"
	"github.com/heartmarshall/journalfeed/internal/service/feed"
	"github.com/heartmarshall/journalfeed/internal/view"
	"github.com/heartmarshall/journalfeed/pkg/ctxutil"
)

// ToastUnexpected is shown when an action fails for a reason the visitor
// cannot act on.
const ToastUnexpected = "Something went wrong"

// Form field names posted by every action form.
const (
	fieldAction   = "action"
	fieldFeed     = "feed"
	fieldPath     = "path"
	fieldID       = "id"
	fieldTarget   = "target"
	fieldExpanded = view.ParamExpanded
	fieldTag      = view.ParamTag
)

// actionRequest is a decoded action form.
type actionRequest struct {
	Visitor string
	Feed    domain.Feed
	ID      string
	Target  string
	State   view.State
}

// actionOutcome is where an action sends the visitor back to.
type actionOutcome struct {
	State  view.State
	Toast  string
	// Shared is the record whose share panel opens on the next page.
	Shared string
}

type actionFunc func(ctx context.Context, req actionRequest) (actionOutcome, error)

func (h *Handler) actionTable() map[domain.Action]actionFunc {
	return map[domain.Action]actionFunc{
		domain.ActionToggle:      h.toggle,
		domain.ActionFilter:      h.filter,
		domain.ActionClearFilter: h.clearFilter,
		domain.ActionLike:        h.like,
		domain.ActionBookmark:    h.bookmark,
		domain.ActionShare:       h.share,
	}
}

// Action handles POST /actions. It always answers with a redirect back to
// the page the form came from, so a failed action leaves the page as it was
// apart from the toast.
func (h *Handler) Action(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	action := domain.Action(r.PostFormValue(fieldAction))
	fn, ok := h.actions[action]
	if !ok {
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}
	f := domain.Feed(r.PostFormValue(fieldFeed))
	if !f.IsValid() {
		http.Error(w, "unknown feed", http.StatusBadRequest)
		return
	}

	visitor, _ := ctxutil.VisitorIDFromCtx(r.Context())
	req := actionRequest{
		Visitor: visitor,
		Feed:    f,
		ID:      strings.TrimSpace(r.PostFormValue(fieldID)),
		Target:  strings.TrimSpace(r.PostFormValue(fieldTarget)),
		State: view.Parse(url.Values{
			fieldExpanded: {r.PostFormValue(fieldExpanded)},
			fieldTag:      {r.PostFormValue(fieldTag)},
		}),
	}

	out, err := fn(r.Context(), req)
	if err != nil {
		out = actionOutcome{State: req.State, Toast: h.actionToast(r, action, err)}
	}

	http.Redirect(w, r, redirectURL(pagePath(r.PostFormValue(fieldPath), f), out, req.ID), http.StatusSeeOther)
}

func (h *Handler) actionToast(r *http.Request, action domain.Action, err error) string {
	var ae *domain.ActionError
	if errors.As(err, &ae) {
		h.log.WarnContext(r.Context(), "action failed",
			slog.String("action", action.String()),
			slog.String("error", err.Error()),
		)
		return ae.Toast
	}
	h.log.ErrorContext(r.Context(), "action error",
		slog.String("action", action.String()),
		slog.String("error", err.Error()),
	)
	return ToastUnexpected
}

// ---------------------------------------------------------------------------
// View actions
// ---------------------------------------------------------------------------

func (h *Handler) toggle(_ context.Context, req actionRequest) (actionOutcome, error) {
	if req.ID == "" {
		return actionOutcome{}, domain.NewValidationError(fieldID, "required")
	}
	return actionOutcome{State: req.State.Toggle(req.ID)}, nil
}

func (h *Handler) filter(_ context.Context, req actionRequest) (actionOutcome, error) {
	if req.Target == "" {
		return actionOutcome{}, domain.NewValidationError(fieldTarget, "required")
	}
	return actionOutcome{State: req.State.SetFilter(req.Target)}, nil
}

func (h *Handler) clearFilter(_ context.Context, req actionRequest) (actionOutcome, error) {
	return actionOutcome{State: req.State.ClearFilter()}, nil
}

// ---------------------------------------------------------------------------
// Record actions
// ---------------------------------------------------------------------------

func (h *Handler) like(ctx context.Context, req actionRequest) (actionOutcome, error) {
	res, err := h.feeds.ToggleLike(ctx, req.Visitor, req.ID)
	if err != nil {
		return actionOutcome{}, err
	}
	return actionOutcome{State: req.State, Toast: res.Toast}, nil
}

func (h *Handler) bookmark(ctx context.Context, req actionRequest) (actionOutcome, error) {
	res, err := h.feeds.ToggleBookmark(ctx, req.Visitor, req.Feed, req.ID)
	if err != nil {
		return actionOutcome{}, err
	}
	return actionOutcome{State: req.State, Toast: res.Toast}, nil
}

// share opens the share panel of the record on the page it came from. The
// panel holds the permalink and the intent link built by the service.
func (h *Handler) share(ctx context.Context, req actionRequest) (actionOutcome, error) {
	res, err := h.feeds.Share(ctx, req.Feed, req.ID)
	if err != nil {
		return actionOutcome{}, err
	}
	if res.Share == nil {
		return actionOutcome{}, domain.NewActionError(domain.ActionShare, feed.ToastShareFailed, domain.ErrNotFound)
	}
	return actionOutcome{State: req.State, Toast: res.Toast, Shared: req.ID}, nil
}

// ---------------------------------------------------------------------------
// Redirects
// ---------------------------------------------------------------------------

// pagePath returns the local page path to go back to. Anything that is not
// a plain absolute path falls back to the feed's page.
func pagePath(p string, f domain.Feed) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.ContainsAny(p, "?#\\") {
		return "/" + f.String()
	}
	return p
}

func redirectURL(path string, out actionOutcome, anchor string) string {
	q := out.State.Values()
	if out.Shared != "" {
		q.Set(ParamShare, out.Shared)
	}
	if out.Toast != "" {
		q.Set(ParamToast, out.Toast)
	}
	u := url.URL{Path: path, RawQuery: q.Encode()}
	if anchor != "" {
		u.Fragment = anchor
	}
	return u.String()
}
