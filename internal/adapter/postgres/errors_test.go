package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/journalfeed/internal/domain"
)

func TestMapError_Nil(t *testing.T) {
	t.Parallel()

	if got := MapError(nil, "journal_entries", "1"); got != nil {
		t.Errorf("MapError(nil) = %v, want nil", got)
	}
}

func TestMapError_NoRows(t *testing.T) {
	t.Parallel()

	got := MapError(pgx.ErrNoRows, "social_posts", "42")

	if !errors.Is(got, domain.ErrNotFound) {
		t.Errorf("MapError(ErrNoRows) does not wrap domain.ErrNotFound: %v", got)
	}
	if want := "social_posts 42: not found"; got.Error() != want {
		t.Errorf("MapError(ErrNoRows).Error() = %q, want %q", got.Error(), want)
	}
}

func TestMapError_WrappedNoRows(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("scan row: %w", pgx.ErrNoRows)
	if got := MapError(wrapped, "journal_entries", "x"); !errors.Is(got, domain.ErrNotFound) {
		t.Errorf("MapError(wrapped ErrNoRows) does not wrap domain.ErrNotFound: %v", got)
	}
}

func TestMapError_PgCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want error
	}{
		{code: "23505", want: domain.ErrConflict},
		{code: "23514", want: domain.ErrValidation},
		{code: "22P02", want: domain.ErrValidation},
	}
	for _, tt := range tests {
		got := MapError(&pgconn.PgError{Code: tt.code, Message: "boom"}, "social_posts", "1")
		if !errors.Is(got, tt.want) {
			t.Errorf("MapError(%s) = %v, want wrap of %v", tt.code, got, tt.want)
		}
	}
}

func TestMapError_Connection(t *testing.T) {
	t.Parallel()

	opErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	got := MapError(fmt.Errorf("query: %w", opErr), "journal_entries", "")

	if !errors.Is(got, domain.ErrConnectionFailed) {
		t.Errorf("MapError(net.OpError) does not wrap domain.ErrConnectionFailed: %v", got)
	}
}

func TestMapError_ContextDeadlineExceeded(t *testing.T) {
	t.Parallel()

	got := MapError(context.DeadlineExceeded, "journal_entries", "1")

	if !errors.Is(got, context.DeadlineExceeded) {
		t.Errorf("MapError(DeadlineExceeded) should pass through: %v", got)
	}
	if errors.Is(got, domain.ErrConnectionFailed) {
		t.Errorf("deadline should not be reported as a connection failure: %v", got)
	}
}

func TestMapError_Unknown(t *testing.T) {
	t.Parallel()

	orig := errors.New("something unexpected")
	got := MapError(orig, "social_posts", "1")
	if !errors.Is(got, orig) {
		t.Errorf("MapError should wrap unknown errors: %v", got)
	}
}
