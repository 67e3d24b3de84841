package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/journalfeed/pkg/ctxutil"
)

const (
	// VisitorCookie names the anonymous visitor identity cookie.
	VisitorCookie = "visitor_id"
	visitorMaxAge = 365 * 24 * time.Hour
)

// Visitor assigns every browser a stable anonymous identity. Likes and
// bookmarks are keyed by it. Malformed cookie values are replaced.
func Visitor(secure bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(VisitorCookie); err == nil {
				if u, perr := uuid.Parse(c.Value); perr == nil {
					id = u.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     VisitorCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(visitorMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(ctxutil.WithVisitorID(r.Context(), id)))
		})
	}
}

// visitorFromRequest returns the visitor id of r, falling back to a cookie
// set on the response.
func visitorFromRequest(r *http.Request, w http.ResponseWriter) string {
	if c, err := r.Cookie(VisitorCookie); err == nil {
		if _, perr := uuid.Parse(c.Value); perr == nil {
			return c.Value
		}
	}
	resp := http.Response{Header: w.Header()}
	for _, c := range resp.Cookies() {
		if c.Name == VisitorCookie {
			return c.Value
		}
	}
	return ""
}
