package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/heartmarshall/journalfeed/internal/domain"
)

// DefaultCost is the bcrypt cost used by HashPassword.
const DefaultCost = 12

// HashPassword returns the bcrypt hash of password for the admin config.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", domain.NewValidationError("password", "required")
	}
	if cost == 0 {
		cost = DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Token is an issued admin session.
type Token struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Admin authenticates the single site administrator.
type Admin struct {
	hash []byte
	jwt  *JWTManager
	log  *slog.Logger
}

// NewAdmin creates an authenticator for the bcrypt passwordHash. An empty
// hash disables admin login.
func NewAdmin(logger *slog.Logger, passwordHash string, jwt *JWTManager) *Admin {
	return &Admin{
		hash: []byte(passwordHash),
		jwt:  jwt,
		log:  logger.With("service", "auth"),
	}
}

// Enabled reports whether an admin password is configured.
func (a *Admin) Enabled() bool {
	return len(a.hash) > 0
}

// Login checks password and issues an admin token.
// Returns ErrUnauthorized if login is disabled or the password is wrong.
func (a *Admin) Login(ctx context.Context, password string) (Token, error) {
	if password == "" {
		return Token{}, domain.NewValidationError("password", "required")
	}
	if !a.Enabled() {
		return Token{}, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		a.log.WarnContext(ctx, "admin login rejected")
		return Token{}, domain.ErrUnauthorized
	}

	signed, exp, err := a.jwt.GenerateAccessToken(RoleAdmin, RoleAdmin)
	if err != nil {
		return Token{}, fmt.Errorf("auth.Login issue token: %w", err)
	}

	a.log.InfoContext(ctx, "admin logged in", slog.Time("expires_at", exp))
	return Token{AccessToken: signed, ExpiresAt: exp}, nil
}

// Authenticate validates token and reports whether it grants admin access.
func (a *Admin) Authenticate(token string) (Claims, error) {
	claims, err := a.jwt.ValidateAccessToken(token)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	if claims.Role != RoleAdmin {
		return Claims{}, fmt.Errorf("%w: role %q", domain.ErrUnauthorized, claims.Role)
	}
	return claims, nil
}
