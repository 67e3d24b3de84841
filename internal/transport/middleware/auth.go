package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/heartmarshall/journalfeed/internal/auth"
	"github.com/heartmarshall/journalfeed/internal/domain"
	"github.com/heartmarshall/journalfeed/pkg/ctxutil"
)

type tokenValidator interface {
	Authenticate(token string) (auth.Claims, error)
}

// AdminAuth rejects requests without a valid admin bearer token.
func AdminAuth(validator tokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				unauthorized(w)
				return
			}
			if _, err := validator.Authenticate(token); err != nil {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctxutil.WithAdmin(r.Context())))
		})
	}
}

// RequireAdmin returns domain.ErrUnauthorized if the context is not admin.
// Use in handlers mounted outside AdminAuth.
func RequireAdmin(ctx context.Context) error {
	if !ctxutil.IsAdminCtx(ctx) {
		return domain.ErrUnauthorized
	}
	return nil
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="journalfeed"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}

func extractBearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}
