// Package sqlite is the local persistent store: the last-known-good cache of
// each feed, the journal draft override, per-visitor mark sets and the change
// markers that tell other processes a feed needs reloading.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/heartmarshall/journalfeed/internal/domain"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS cache (
	feed     TEXT PRIMARY KEY,
	records  TEXT NOT NULL,
	saved_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS drafts (
	feed       TEXT PRIMARY KEY,
	records    TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS marks (
	visitor    TEXT NOT NULL,
	mark       TEXT NOT NULL,
	record_id  TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (visitor, mark, record_id)
);

CREATE TABLE IF NOT EXISTS markers (
	feed    TEXT PRIMARY KEY,
	version INTEGER NOT NULL
);
`

// Store wraps the SQLite database. Safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer at a time. An in-memory database also needs the single
	// connection to stay the same database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if path != MemoryPath {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set busy timeout: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is usable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return persistErr("ping", err)
	}
	return nil
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

func persistErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistenceFailed, op, err)
}

// ---------------------------------------------------------------------------
// Cache
// ---------------------------------------------------------------------------

// List returns the cached collection of feed. ErrNotFound means nothing was
// ever cached; an empty slice is a cached empty collection.
func (s *Store) List(ctx context.Context, feed domain.Feed) ([]domain.Raw, error) {
	recs, _, err := s.loadBlob(ctx, "cache", "saved_at", feed)
	return recs, err
}

// CachedAt returns when feed was last cached.
func (s *Store) CachedAt(ctx context.Context, feed domain.Feed) (time.Time, error) {
	_, at, err := s.loadBlob(ctx, "cache", "saved_at", feed)
	return at, err
}

// Save replaces the cached collection of feed.
func (s *Store) Save(ctx context.Context, feed domain.Feed, recs []domain.Raw) error {
	return s.storeBlob(ctx, "cache", "saved_at", feed, recs)
}

// ---------------------------------------------------------------------------
// Drafts
// ---------------------------------------------------------------------------

// Draft returns the draft collection of feed, or ErrNotFound.
func (s *Store) Draft(ctx context.Context, feed domain.Feed) ([]domain.Raw, error) {
	recs, _, err := s.loadBlob(ctx, "drafts", "updated_at", feed)
	return recs, err
}

// SaveDraft replaces the draft collection of feed.
func (s *Store) SaveDraft(ctx context.Context, feed domain.Feed, recs []domain.Raw) error {
	return s.storeBlob(ctx, "drafts", "updated_at", feed, recs)
}

// ClearDraft removes the draft of feed. It reports whether one existed.
func (s *Store) ClearDraft(ctx context.Context, feed domain.Feed) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM drafts WHERE feed = ?", feed.String())
	if err != nil {
		return false, persistErr("clear draft", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, persistErr("clear draft", err)
	}
	return n > 0, nil
}

func (s *Store) loadBlob(ctx context.Context, table, stampCol string, feed domain.Feed) ([]domain.Raw, time.Time, error) {
	query, args, err := builder().
		Select("records", stampCol).
		From(table).
		Where(squirrel.Eq{"feed": feed.String()}).
		ToSql()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("build load %s: %w", table, err)
	}

	var (
		blob  string
		stamp int64
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&blob, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, fmt.Errorf("%s %s: %w", table, feed, domain.ErrNotFound)
	}
	if err != nil {
		return nil, time.Time{}, persistErr("load "+table, err)
	}

	recs, err := DecodeRecords([]byte(blob))
	if err != nil {
		return nil, time.Time{}, persistErr("decode "+table, err)
	}
	return recs, time.UnixMilli(stamp), nil
}

func (s *Store) storeBlob(ctx context.Context, table, stampCol string, feed domain.Feed, recs []domain.Raw) error {
	if recs == nil {
		recs = []domain.Raw{}
	}
	blob, err := json.Marshal(recs)
	if err != nil {
		return persistErr("encode "+table, err)
	}

	query, args, err := builder().
		Insert(table).
		Columns("feed", "records", stampCol).
		Values(feed.String(), string(blob), s.now().UnixMilli()).
		Suffix(fmt.Sprintf("ON CONFLICT(feed) DO UPDATE SET records = excluded.records, %[1]s = excluded.%[1]s", stampCol)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build store %s: %w", table, err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return persistErr("store "+table, err)
	}
	return nil
}

// DecodeRecords parses a JSON array of records, keeping numbers as
// json.Number so ids and counters are not rounded through float64.
func DecodeRecords(b []byte) ([]domain.Raw, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	out := make([]domain.Raw, 0, len(rows))
	for _, r := range rows {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Mark sets
// ---------------------------------------------------------------------------

// Marks returns the record ids visitor has in set.
func (s *Store) Marks(ctx context.Context, visitor string, set domain.MarkSet) (map[string]bool, error) {
	query, args, err := builder().
		Select("record_id").
		From("marks").
		Where(squirrel.Eq{"visitor": visitor, "mark": string(set)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build marks: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("list marks", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, persistErr("scan mark", err)
		}
		out[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list marks", err)
	}
	return out, nil
}

// HasMark reports whether id is in visitor's set.
func (s *Store) HasMark(ctx context.Context, visitor string, set domain.MarkSet, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM marks WHERE visitor = ? AND mark = ? AND record_id = ?",
		visitor, string(set), id,
	).Scan(&n)
	if err != nil {
		return false, persistErr("has mark", err)
	}
	return n > 0, nil
}

// SetMark adds id to (on) or removes it from (!on) visitor's set.
func (s *Store) SetMark(ctx context.Context, visitor string, set domain.MarkSet, id string, on bool) error {
	var err error
	if on {
		_, err = s.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO marks (visitor, mark, record_id, created_at) VALUES (?, ?, ?, ?)",
			visitor, string(set), id, s.now().UnixMilli(),
		)
	} else {
		_, err = s.db.ExecContext(ctx,
			"DELETE FROM marks WHERE visitor = ? AND mark = ? AND record_id = ?",
			visitor, string(set), id,
		)
	}
	if err != nil {
		return persistErr("set mark", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Change markers
// ---------------------------------------------------------------------------

// Marker returns the change counter of feed. Zero if never bumped.
func (s *Store) Marker(ctx context.Context, feed domain.Feed) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, "SELECT version FROM markers WHERE feed = ?", feed.String()).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, persistErr("read marker", err)
	}
	return v, nil
}

// BumpMarker increments the change counter of feed and returns the new value.
func (s *Store) BumpMarker(ctx context.Context, feed domain.Feed) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO markers (feed, version) VALUES (?, 1)
		 ON CONFLICT(feed) DO UPDATE SET version = version + 1
		 RETURNING version`,
		feed.String(),
	).Scan(&v)
	if err != nil {
		return 0, persistErr("bump marker", err)
	}
	return v, nil
}
