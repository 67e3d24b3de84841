// Package record implements raw record access to the canonical feed tables.
// Rows are returned as column maps and normalized by the caller.
package record

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/journalfeed/internal/adapter/postgres"
	"github.com/heartmarshall/journalfeed/internal/domain"
)

// Repo reads and writes journal entries and social posts.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new record repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Writable columns per table. Anything else in an inserted record is ignored.
var (
	journalColumns = []string{
		"title", "company", "description", "full_content", "tags", "images",
		"icon", "styling", "featured", "date_text", "read_time",
	}
	socialColumns = []string{
		"platform", "platform_name", "platform_icon", "platform_color", "platform_text_color",
		"author", "handle", "avatar", "content", "post_type",
		"likes", "reposts", "replies", "comments", "shares",
		"image", "album_art", "song_title", "artist", "album", "duration",
		"tags", "read_time",
	}
	jsonColumns = map[string]bool{"full_content": true, "images": true, "styling": true}
)

func columns(feed domain.Feed) []string {
	if feed == domain.FeedSocial {
		return socialColumns
	}
	return journalColumns
}

// List returns every record of feed, newest first.
func (r *Repo) List(ctx context.Context, feed domain.Feed) ([]domain.Raw, error) {
	query, args, err := builder().
		Select("*").
		From(feed.Table()).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list %s: %w", feed, err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, feed.Table(), "list")
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, postgres.MapError(err, feed.Table(), "list")
	}

	out := make([]domain.Raw, len(maps))
	for i, m := range maps {
		out[i] = toRaw(m)
	}
	return out, nil
}

// Get returns one record by id.
func (r *Repo) Get(ctx context.Context, feed domain.Feed, id string) (domain.Raw, error) {
	query, args, err := builder().
		Select("*").
		From(feed.Table()).
		Where(squirrel.Expr("id::text = ?", id)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get %s: %w", feed, err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, feed.Table(), id)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, postgres.MapError(err, feed.Table(), id)
	}
	return toRaw(m), nil
}

// Insert writes a new record and returns the stored row.
func (r *Repo) Insert(ctx context.Context, feed domain.Feed, rec domain.Raw) (domain.Raw, error) {
	cols := make([]string, 0, len(rec))
	vals := make([]any, 0, len(rec))
	for _, c := range columns(feed) {
		v, ok := rec[c]
		if !ok || v == nil {
			continue
		}
		enc, err := encodeValue(c, v)
		if err != nil {
			return nil, fmt.Errorf("encode %s.%s: %w", feed.Table(), c, err)
		}
		cols = append(cols, c)
		vals = append(vals, enc)
	}
	if len(cols) == 0 {
		return nil, domain.NewValidationError("record", "no writable columns")
	}

	query, args, err := builder().
		Insert(feed.Table()).
		Columns(cols...).
		Values(vals...).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert %s: %w", feed, err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, feed.Table(), "insert")
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, postgres.MapError(err, feed.Table(), "insert")
	}
	return toRaw(m), nil
}

// AdjustLikes adds delta to a post's like counter only if the counter still
// equals expected. It reports whether the row was updated.
func (r *Repo) AdjustLikes(ctx context.Context, id string, expected, delta int) (bool, error) {
	query, args, err := builder().
		Update(domain.FeedSocial.Table()).
		Set("likes", squirrel.Expr("likes + ?", delta)).
		Where(squirrel.Expr("id::text = ?", id)).
		Where(squirrel.Eq{"likes": expected}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build adjust likes: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, postgres.MapError(err, domain.FeedSocial.Table(), id)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes a record by id.
func (r *Repo) Delete(ctx context.Context, feed domain.Feed, id string) error {
	query, args, err := builder().
		Delete(feed.Table()).
		Where(squirrel.Expr("id::text = ?", id)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete %s: %w", feed, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, feed.Table(), id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", feed.Table(), id, domain.ErrNotFound)
	}
	return nil
}

// Ping checks that the store is reachable.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return postgres.MapError(err, "database", "ping")
	}
	return nil
}

// toRaw turns driver values into JSON-portable ones so the row survives a
// round trip through the local cache.
func toRaw(m map[string]any) domain.Raw {
	for k, v := range m {
		if b, ok := v.([16]byte); ok {
			m[k] = uuid.UUID(b).String()
		}
	}
	return domain.Raw(m)
}

// encodeValue converts decoded JSON values into parameters the column types accept.
func encodeValue(col string, v any) (any, error) {
	if jsonColumns[col] {
		if s, ok := v.(string); ok {
			return s, nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
	if col == "tags" {
		switch x := v.(type) {
		case []string:
			return x, nil
		case []any:
			out := make([]string, 0, len(x))
			for _, it := range x {
				if s, ok := it.(string); ok {
					out = append(out, s)
				}
			}
			return out, nil
		}
		return []string{}, nil
	}
	if f, ok := v.(float64); ok {
		return int64(f), nil
	}
	return v, nil
}
