package draftdir

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/heartmarshall/journalfeed/internal/domain"
)

type fakeStore struct {
	mu      sync.Mutex
	drafts  map[domain.Feed][]domain.Raw
	markers map[domain.Feed]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{drafts: map[domain.Feed][]domain.Raw{}, markers: map[domain.Feed]int64{}}
}

func (f *fakeStore) SaveDraft(_ context.Context, feed domain.Feed, recs []domain.Raw) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drafts[feed] = recs
	return nil
}

func (f *fakeStore) ClearDraft(_ context.Context, feed domain.Feed) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.drafts[feed]
	delete(f.drafts, feed)
	return ok, nil
}

func (f *fakeStore) BumpMarker(_ context.Context, feed domain.Feed) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markers[feed]++
	return f.markers[feed], nil
}

func (f *fakeStore) snapshot(feed domain.Feed) ([]domain.Raw, bool, int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[feed]
	return d, ok, f.markers[feed]
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestWatcher_ImportsUpdatesAndClears(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "journal.yaml")
	if err := os.WriteFile(path, []byte("- id: d1\n  title: First draft\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	store := newFakeStore()
	w := New(dir, store, newTestLogger())
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor(t, "initial import", func() bool {
		d, ok, _ := store.snapshot(domain.FeedJournal)
		return ok && len(d) == 1 && d[0]["title"] == "First draft"
	})

	if err := os.WriteFile(path, []byte("- id: d1\n  title: Second draft\n- id: d2\n  title: Another\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "update", func() bool {
		d, _, _ := store.snapshot(domain.FeedJournal)
		return len(d) == 2 && d[0]["title"] == "Second draft"
	})

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "clear", func() bool {
		_, ok, _ := store.snapshot(domain.FeedJournal)
		return !ok
	})

	_, _, marker := store.snapshot(domain.FeedJournal)
	if marker < 3 {
		t.Errorf("expected at least 3 marker bumps, got %d", marker)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestWatcher_InvalidFileKeepsDraft(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "journal.json")
	if err := os.WriteFile(path, []byte(`[{"id":"d1"}]`), 0o600); err != nil {
		t.Fatal(err)
	}

	store := newFakeStore()
	w := New(dir, store, newTestLogger())
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor(t, "initial import", func() bool {
		_, ok, _ := store.snapshot(domain.FeedJournal)
		return ok
	})

	if err := os.WriteFile(path, []byte(`{not json`), 0o600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	d, ok, _ := store.snapshot(domain.FeedJournal)
	if !ok || len(d) != 1 || d[0]["id"] != "d1" {
		t.Errorf("expected previous draft kept, got %v (present=%v)", d, ok)
	}

	cancel()
	<-done
}

func TestWatcher_MissingDir(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := New(filepath.Join(t.TempDir(), "missing"), newFakeStore(), newTestLogger())
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestFeedFromFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want domain.Feed
		ok   bool
	}{
		{"/drafts/journal.yaml", domain.FeedJournal, true},
		{"journal.YML", domain.FeedJournal, true},
		{"social.json", domain.FeedSocial, true},
		{"journal.txt", "", false},
		{"notes.yaml", "notes", false},
		{".journal.yaml.swp", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := FeedFromFile(tt.name)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("FeedFromFile(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()
		recs, err := Decode("journal.yaml", []byte(`
- id: 1
  title: Hello
  tags: [go, travel]
  full_content:
    - one
    - two
`))
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if len(recs) != 1 {
			t.Fatalf("expected 1 record, got %d", len(recs))
		}
		if recs[0]["id"] != 1 {
			t.Errorf("id = %#v", recs[0]["id"])
		}
		tags, _ := recs[0]["tags"].([]any)
		if len(tags) != 2 || tags[1] != "travel" {
			t.Errorf("tags = %#v", recs[0]["tags"])
		}
	})

	t.Run("json keeps numbers", func(t *testing.T) {
		t.Parallel()
		recs, err := Decode("journal.json", []byte(`[{"id":12345678901234567}]`))
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if recs[0]["id"] != json.Number("12345678901234567") {
			t.Errorf("id = %#v", recs[0]["id"])
		}
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()
		recs, err := Decode("journal.json", []byte(`[]`))
		if err != nil || len(recs) != 0 {
			t.Errorf("Decode([]) = %v, %v", recs, err)
		}
	})

	t.Run("not a list", func(t *testing.T) {
		t.Parallel()
		if _, err := Decode("journal.yaml", []byte("title: nope\n")); err == nil {
			t.Error("expected error for mapping document")
		}
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()
		if _, err := Decode("journal.yaml", nil); err == nil {
			t.Error("expected error for empty file")
		}
	})
}
