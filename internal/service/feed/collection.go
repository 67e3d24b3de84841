package feed

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/heartmarshall/journalfeed/internal/analytics"
	"github.com/heartmarshall/journalfeed/internal/domain"
)

// Entries returns the journal collection, loading it on first use.
func (s *Service) Entries(ctx context.Context) ([]domain.Entry, error) {
	if err := s.ensure(ctx, domain.FeedJournal); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.states[domain.FeedJournal].entries), nil
}

// Posts returns the social collection, loading it on first use and again
// once it is older than MaxAge.
func (s *Service) Posts(ctx context.Context) ([]domain.Post, error) {
	if err := s.ensure(ctx, domain.FeedSocial); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.states[domain.FeedSocial].posts), nil
}

// Entry returns one journal entry by id.
func (s *Service) Entry(ctx context.Context, id string) (domain.Entry, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return domain.Entry{}, err
	}
	i := slices.IndexFunc(entries, func(e domain.Entry) bool { return e.ID == id })
	if i < 0 {
		return domain.Entry{}, fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
	}
	return entries[i], nil
}

// Post returns one social post by id.
func (s *Service) Post(ctx context.Context, id string) (domain.Post, error) {
	posts, err := s.Posts(ctx)
	if err != nil {
		return domain.Post{}, err
	}
	i := slices.IndexFunc(posts, func(p domain.Post) bool { return p.ID == id })
	if i < 0 {
		return domain.Post{}, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	return posts[i], nil
}

// Summary aggregates the journal collection for the sidebar.
func (s *Service) Summary(ctx context.Context) (analytics.Summary, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return analytics.Summary{}, err
	}
	return analytics.SummarizeTop(entries, s.opts.TopTags), nil
}

// Apply folds one change notification into the in-memory collection.
// Inserts are prepended (or replace a record with the same id), updates
// replace in place, deletes remove. Changes to a feed that has not been
// loaded yet, or to a journal showing a draft preview, are ignored.
func (s *Service) Apply(ctx context.Context, ch domain.Change) {
	log := s.log.With(slog.String("feed", ch.Feed.String()), slog.String("change", ch.Type.String()))

	var (
		entry domain.Entry
		post  domain.Post
		id    = ch.ID
	)
	if ch.Type != domain.ChangeDelete {
		var err error
		if ch.Feed == domain.FeedJournal {
			entry, err = s.norm.Entry(ch.Record)
			id = entry.ID
		} else {
			post, err = s.norm.Post(ch.Record)
			id = post.ID
		}
		if err != nil {
			log.WarnContext(ctx, "change dropped", slog.String("error", err.Error()))
			return
		}
	}
	if id == "" {
		log.WarnContext(ctx, "change dropped", slog.String("error", domain.ErrMissingIdentifier.Error()))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[ch.Feed]
	if !ok || !st.loaded {
		return
	}
	if st.source == SourceDraft {
		log.DebugContext(ctx, "change ignored during draft preview", slog.String("id", id))
		return
	}
	// Loads issued before this change must not overwrite it.
	st.stamp = s.seq.Add(1)

	if ch.Feed == domain.FeedJournal {
		st.entries = applyChange(st.entries, ch.Type, id, entry)
	} else {
		st.posts = applyChange(st.posts, ch.Type, id, post)
	}
	log.DebugContext(ctx, "change applied", slog.String("id", id))
}

func applyChange[R domain.Record](records []R, typ domain.ChangeType, id string, rec R) []R {
	i := slices.IndexFunc(records, func(r R) bool { return r.RecordID() == id })
	switch typ {
	case domain.ChangeInsert:
		if i >= 0 {
			records[i] = rec
			return records
		}
		return slices.Insert(records, 0, rec)
	case domain.ChangeUpdate:
		if i >= 0 {
			records[i] = rec
		}
	case domain.ChangeDelete:
		if i >= 0 {
			return slices.Delete(records, i, i+1)
		}
	}
	return records
}
