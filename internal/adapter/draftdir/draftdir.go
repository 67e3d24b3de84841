// Package draftdir imports draft collections from a watched directory. A file
// named after a feed (journal.yaml, journal.yml or journal.json) holds a list
// of raw records; saving it replaces that feed's draft, removing it clears the
// draft. Every change bumps the feed's marker so running servers reload.
package draftdir

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/journalfeed/internal/domain"
)

// Extensions in lookup order.
var Extensions = []string{".yaml", ".yml", ".json"}

const defaultDebounce = 300 * time.Millisecond

type draftStore interface {
	SaveDraft(ctx context.Context, feed domain.Feed, recs []domain.Raw) error
	ClearDraft(ctx context.Context, feed domain.Feed) (bool, error)
	BumpMarker(ctx context.Context, feed domain.Feed) (int64, error)
}

// Watcher keeps the draft store in sync with a directory.
type Watcher struct {
	dir      string
	store    draftStore
	log      *slog.Logger
	debounce time.Duration
}

// New creates a Watcher for dir.
func New(dir string, store draftStore, logger *slog.Logger) *Watcher {
	return &Watcher{
		dir:      dir,
		store:    store,
		log:      logger.With("adapter", "draftdir"),
		debounce: defaultDebounce,
	}
}

// Run imports the current files, then follows changes until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("draftdir: create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("draftdir: watch %s: %w", w.dir, err)
	}
	w.log.InfoContext(ctx, "watching drafts", slog.String("dir", w.dir))

	for _, feed := range []domain.Feed{domain.FeedJournal, domain.FeedSocial} {
		if _, ok := w.find(feed); ok {
			w.sync(ctx, feed)
		}
	}

	tick := max(w.debounce/5, 10*time.Millisecond)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	pending := make(map[domain.Feed]time.Time)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if feed, ok := FeedFromFile(ev.Name); ok {
				pending[feed] = time.Now()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.WarnContext(ctx, "draft watcher error", slog.String("error", err.Error()))

		case now := <-ticker.C:
			for feed, at := range pending {
				if now.Sub(at) >= w.debounce {
					delete(pending, feed)
					w.sync(ctx, feed)
				}
			}
		}
	}
}

// sync imports the feed's draft file, or clears the draft when none exists.
func (w *Watcher) sync(ctx context.Context, feed domain.Feed) {
	log := w.log.With(slog.String("feed", feed.String()))

	path, ok := w.find(feed)
	if !ok {
		existed, err := w.store.ClearDraft(ctx, feed)
		if err != nil {
			log.WarnContext(ctx, "clear draft", slog.String("error", err.Error()))
			return
		}
		if existed {
			w.bump(ctx, feed)
			log.InfoContext(ctx, "draft cleared")
		}
		return
	}

	recs, err := ReadFile(path)
	if err != nil {
		log.WarnContext(ctx, "invalid draft file, keeping previous draft",
			slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	if err := w.store.SaveDraft(ctx, feed, recs); err != nil {
		log.WarnContext(ctx, "save draft", slog.String("error", err.Error()))
		return
	}
	w.bump(ctx, feed)
	log.InfoContext(ctx, "draft imported", slog.String("path", path), slog.Int("records", len(recs)))
}

func (w *Watcher) bump(ctx context.Context, feed domain.Feed) {
	if _, err := w.store.BumpMarker(ctx, feed); err != nil {
		w.log.WarnContext(ctx, "bump marker", slog.String("feed", feed.String()), slog.String("error", err.Error()))
	}
}

func (w *Watcher) find(feed domain.Feed) (string, bool) {
	for _, ext := range Extensions {
		p := filepath.Join(w.dir, feed.String()+ext)
		if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// FeedFromFile maps a draft file name to its feed.
func FeedFromFile(path string) (domain.Feed, bool) {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range Extensions {
		if ext == e {
			feed := domain.Feed(strings.TrimSuffix(base, filepath.Ext(base)))
			return feed, feed.IsValid()
		}
	}
	return "", false
}

// ReadFile reads and decodes a draft file.
func ReadFile(path string) ([]domain.Raw, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the configured draft dir or the CLI
	if err != nil {
		return nil, err
	}
	return Decode(path, data)
}

// Decode parses a list of records. JSON is used for .json names, YAML otherwise.
func Decode(name string, data []byte) ([]domain.Raw, error) {
	var rows []map[string]any
	if strings.EqualFold(filepath.Ext(name), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&rows); err != nil {
			return nil, fmt.Errorf("decode %s: %w", filepath.Base(name), err)
		}
	} else if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(name), err)
	}

	if rows == nil {
		return nil, errors.New("draft file holds no record list")
	}
	out := make([]domain.Raw, 0, len(rows))
	for _, r := range rows {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}
