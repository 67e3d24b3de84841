package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/heartmarshall/journalfeed/internal/domain"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), MemoryPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ---------------------------------------------------------------------------
// Cache
// ---------------------------------------------------------------------------

func TestStore_Cache_NotFound(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	_, err := s.List(context.Background(), domain.FeedJournal)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Cache_RoundTrip(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	fixed := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	recs := []domain.Raw{
		{"id": "a", "title": "First", "tags": []string{"go"}},
		{"id": json.Number("12345678901234567"), "likes": 3},
	}
	if err := s.Save(ctx, domain.FeedJournal, recs); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.List(ctx, domain.FeedJournal)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0]["title"] != "First" {
		t.Errorf("title = %v", got[0]["title"])
	}
	if got[1]["id"] != json.Number("12345678901234567") {
		t.Errorf("large id lost precision: %v", got[1]["id"])
	}
	if got[1]["likes"] != json.Number("3") {
		t.Errorf("likes = %#v", got[1]["likes"])
	}

	at, err := s.CachedAt(ctx, domain.FeedJournal)
	if err != nil {
		t.Fatalf("CachedAt: %v", err)
	}
	if !at.Equal(fixed) {
		t.Errorf("CachedAt = %v, want %v", at, fixed)
	}

	// the other feed is independent
	if _, err := s.List(ctx, domain.FeedSocial); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("social cache should be empty, got %v", err)
	}
}

func TestStore_Cache_EmptyCollectionIsCached(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, domain.FeedSocial, nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.List(ctx, domain.FeedSocial)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestStore_Cache_Overwrite(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	_ = s.Save(ctx, domain.FeedJournal, []domain.Raw{{"id": "a"}, {"id": "b"}})
	if err := s.Save(ctx, domain.FeedJournal, []domain.Raw{{"id": "c"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ := s.List(ctx, domain.FeedJournal)
	if len(got) != 1 || got[0]["id"] != "c" {
		t.Errorf("expected only c, got %v", got)
	}
}

func TestStore_FilePersistsAcrossOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "feed.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Save(ctx, domain.FeedJournal, []domain.Raw{{"id": "a"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.Close()

	s2, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	got, err := s2.List(ctx, domain.FeedJournal)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 record after reopen, got %d", len(got))
	}
}

// ---------------------------------------------------------------------------
// Drafts
// ---------------------------------------------------------------------------

func TestStore_Draft_Lifecycle(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	if _, err := s.Draft(ctx, domain.FeedJournal); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.SaveDraft(ctx, domain.FeedJournal, []domain.Raw{{"id": "d1", "title": "Draft"}}); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	got, err := s.Draft(ctx, domain.FeedJournal)
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if len(got) != 1 || got[0]["title"] != "Draft" {
		t.Errorf("unexpected draft %v", got)
	}

	existed, err := s.ClearDraft(ctx, domain.FeedJournal)
	if err != nil || !existed {
		t.Fatalf("ClearDraft = %v, %v", existed, err)
	}
	existed, err = s.ClearDraft(ctx, domain.FeedJournal)
	if err != nil || existed {
		t.Errorf("second ClearDraft = %v, %v", existed, err)
	}

	// the cache is untouched by draft writes
	if _, err := s.List(ctx, domain.FeedJournal); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("draft leaked into cache: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Marks
// ---------------------------------------------------------------------------

func TestStore_Marks(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	if err := s.SetMark(ctx, "v1", domain.MarkLike, "p1", true); err != nil {
		t.Fatalf("SetMark: %v", err)
	}
	// idempotent
	if err := s.SetMark(ctx, "v1", domain.MarkLike, "p1", true); err != nil {
		t.Fatalf("SetMark again: %v", err)
	}
	_ = s.SetMark(ctx, "v1", domain.MarkBookmark, "p2", true)
	_ = s.SetMark(ctx, "v2", domain.MarkLike, "p3", true)

	liked, err := s.Marks(ctx, "v1", domain.MarkLike)
	if err != nil {
		t.Fatalf("Marks: %v", err)
	}
	if len(liked) != 1 || !liked["p1"] {
		t.Errorf("v1 likes = %v", liked)
	}

	has, err := s.HasMark(ctx, "v1", domain.MarkBookmark, "p2")
	if err != nil || !has {
		t.Errorf("HasMark bookmark = %v, %v", has, err)
	}
	has, _ = s.HasMark(ctx, "v2", domain.MarkLike, "p1")
	if has {
		t.Error("mark sets must be per visitor")
	}

	if err := s.SetMark(ctx, "v1", domain.MarkLike, "p1", false); err != nil {
		t.Fatalf("unset: %v", err)
	}
	liked, _ = s.Marks(ctx, "v1", domain.MarkLike)
	if len(liked) != 0 {
		t.Errorf("expected no likes after unset, got %v", liked)
	}
}

// ---------------------------------------------------------------------------
// Markers
// ---------------------------------------------------------------------------

func TestStore_Markers(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	v, err := s.Marker(ctx, domain.FeedJournal)
	if err != nil || v != 0 {
		t.Fatalf("initial marker = %d, %v", v, err)
	}

	for want := int64(1); want <= 3; want++ {
		got, err := s.BumpMarker(ctx, domain.FeedJournal)
		if err != nil {
			t.Fatalf("BumpMarker: %v", err)
		}
		if got != want {
			t.Errorf("BumpMarker = %d, want %d", got, want)
		}
	}

	v, _ = s.Marker(ctx, domain.FeedJournal)
	if v != 3 {
		t.Errorf("Marker = %d, want 3", v)
	}
	v, _ = s.Marker(ctx, domain.FeedSocial)
	if v != 0 {
		t.Errorf("social marker = %d, want 0", v)
	}
}

func TestStore_ClosedReturnsPersistenceFailed(t *testing.T) {
	t.Parallel()
	s, err := Open(context.Background(), MemoryPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.Close()

	err = s.Save(context.Background(), domain.FeedJournal, nil)
	if !errors.Is(err, domain.ErrPersistenceFailed) {
		t.Errorf("expected ErrPersistenceFailed, got %v", err)
	}
}
