package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/journalfeed/internal/domain"
)

// loadResult is one completed load, stamped with its issuance sequence.
type loadResult struct {
	stamp  uint64
	source string
	raws   []domain.Raw
}

// Reload loads feed from its sources and replaces the in-memory collection.
// A load already in flight is not joined: a new one is issued, and whichever
// was issued last is the one that stays applied.
func (s *Service) Reload(ctx context.Context, feed domain.Feed) error {
	s.group.Forget(feed.String())
	_, err := s.loadShared(ctx, feed)
	return err
}

// ensure loads feed if no load has succeeded yet, or reloads it once it is
// older than MaxAge. Concurrent callers share one load. A failed refresh
// keeps serving the collection already loaded.
func (s *Service) ensure(ctx context.Context, feed domain.Feed) error {
	s.mu.RLock()
	st := s.states[feed]
	loaded, loadedAt := st.loaded, st.loadedAt
	s.mu.RUnlock()

	if !loaded {
		_, err := s.loadShared(ctx, feed)
		return err
	}
	if s.opts.MaxAge <= 0 || s.opts.Now().Sub(loadedAt) < s.opts.MaxAge {
		return nil
	}

	if _, err := s.loadShared(ctx, feed); err != nil {
		s.log.WarnContext(ctx, "refresh failed, serving previous load",
			slog.String("feed", feed.String()),
			slog.Time("loaded_at", loadedAt),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

func (s *Service) loadShared(ctx context.Context, feed domain.Feed) (string, error) {
	ch := s.group.DoChan(feed.String(), func() (any, error) {
		// The load outlives the request that triggered it; joined callers
		// must not fail because the first caller went away.
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.LoadTimeout)
		defer cancel()

		res, err := s.load(lctx, feed)
		if err != nil {
			return nil, err
		}
		s.commit(lctx, feed, res)
		return res.source, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return "", r.Err
		}
		src, _ := r.Val.(string)
		return src, nil
	}
}

// load runs the source chain once: the remote source if configured, the
// local cache if the remote is absent or failed. The journal draft then
// overrides the result when it differs.
func (s *Service) load(ctx context.Context, feed domain.Feed) (loadResult, error) {
	res := loadResult{stamp: s.seq.Add(1)}
	log := s.log.With(slog.String("feed", feed.String()), slog.Uint64("load", res.stamp))

	var attempts []domain.SourceFailure
	reason := domain.ReasonNoFallback

	if s.remote != nil {
		raws, err := s.remote.List(ctx, feed)
		if err == nil {
			res.source, res.raws = s.remoteName, raws
			if err := s.local.Save(ctx, feed, raws); err != nil {
				log.WarnContext(ctx, "cache write failed", slog.String("error", err.Error()))
			}
		} else {
			log.WarnContext(ctx, "remote load failed",
				slog.String("source", s.remoteName), slog.String("error", err.Error()))
			attempts = append(attempts, domain.SourceFailure{Source: s.remoteName, Err: err})
			reason = classify(err)
		}
	}

	if res.source == "" {
		raws, err := s.local.List(ctx, feed)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				log.WarnContext(ctx, "cache read failed", slog.String("error", err.Error()))
			}
			attempts = append(attempts, domain.SourceFailure{Source: SourceCache, Err: err})
			return loadResult{}, &domain.LoadError{Feed: feed, Reason: reason, Attempts: attempts}
		}
		res.source, res.raws = SourceCache, raws
	}

	if feed == domain.FeedJournal {
		s.applyDraft(ctx, log, &res)
	}

	log.DebugContext(ctx, "feed loaded", slog.String("source", res.source), slog.Int("records", len(res.raws)))
	return res, nil
}

// applyDraft replaces res with the stored draft when one exists and differs.
func (s *Service) applyDraft(ctx context.Context, log *slog.Logger, res *loadResult) {
	draft, err := s.local.Draft(ctx, domain.FeedJournal)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.WarnContext(ctx, "draft read failed", slog.String("error", err.Error()))
		}
		return
	}
	same, err := sameRecords(draft, res.raws)
	if err != nil {
		log.WarnContext(ctx, "draft compare failed", slog.String("error", err.Error()))
		return
	}
	if same {
		return
	}
	log.InfoContext(ctx, "draft preview active", slog.Int("records", len(draft)))
	res.source, res.raws = SourceDraft, draft
}

// commit normalizes a load result and installs it, unless a later-issued
// load has already been installed.
func (s *Service) commit(ctx context.Context, feed domain.Feed, res loadResult) {
	var (
		entries []domain.Entry
		posts   []domain.Post
		dropped []error
	)
	if feed == domain.FeedJournal {
		entries, dropped = s.norm.Entries(res.raws)
	} else {
		posts, dropped = s.norm.Posts(res.raws)
	}
	for _, err := range dropped {
		s.log.WarnContext(ctx, "record dropped",
			slog.String("feed", feed.String()), slog.String("source", res.source), slog.String("error", err.Error()))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.states[feed]
	if res.stamp < st.stamp {
		s.log.DebugContext(ctx, "stale load discarded",
			slog.String("feed", feed.String()), slog.Uint64("load", res.stamp), slog.Uint64("current", st.stamp))
		return
	}
	st.loaded = true
	st.stamp = res.stamp
	st.source = res.source
	st.loadedAt = s.opts.Now()
	st.entries = entries
	st.posts = posts
}

// classify maps a remote failure to the reason shown to the visitor.
func classify(err error) domain.LoadReason {
	var se *domain.StatusError
	switch {
	case errors.As(err, &se):
		return domain.ReasonServerError
	case errors.Is(err, domain.ErrConnectionFailed),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return domain.ReasonNoNetwork
	default:
		return domain.ReasonServerError
	}
}

// sameRecords compares two raw collections by their canonical JSON encoding.
func sameRecords(a, b []domain.Raw) (bool, error) {
	if a == nil {
		a = []domain.Raw{}
	}
	if b == nil {
		b = []domain.Raw{}
	}
	ja, err := json.Marshal(a)
	if err != nil {
		return false, fmt.Errorf("encode draft: %w", err)
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return false, fmt.Errorf("encode canonical: %w", err)
	}
	return bytes.Equal(ja, jb), nil
}
