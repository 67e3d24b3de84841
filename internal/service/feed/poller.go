package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/journalfeed/internal/domain"
)

// RunMarkerPoller reloads a feed whenever its change marker in the local
// store moves. It covers writers that cannot reach the realtime channel:
// the draft watcher, the CLI and other server processes. Blocks until ctx
// is done.
func (s *Service) RunMarkerPoller(ctx context.Context) error {
	feeds := []domain.Feed{domain.FeedJournal, domain.FeedSocial}
	for _, f := range feeds {
		v, err := s.local.Marker(ctx, f)
		if err != nil {
			s.log.WarnContext(ctx, "read marker", slog.String("feed", f.String()), slog.String("error", err.Error()))
			continue
		}
		s.setMarker(f, v)
	}

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, f := range feeds {
				s.pollMarker(ctx, f)
			}
		}
	}
}

func (s *Service) pollMarker(ctx context.Context, feed domain.Feed) {
	v, err := s.local.Marker(ctx, feed)
	if err != nil {
		s.log.WarnContext(ctx, "read marker", slog.String("feed", feed.String()), slog.String("error", err.Error()))
		return
	}

	s.mu.RLock()
	prev := s.states[feed].marker
	s.mu.RUnlock()
	if v == prev {
		return
	}

	s.log.InfoContext(ctx, "change marker moved, reloading",
		slog.String("feed", feed.String()), slog.Int64("marker", v))
	if err := s.Reload(ctx, feed); err != nil {
		s.log.WarnContext(ctx, "reload after marker change", slog.String("feed", feed.String()), slog.String("error", err.Error()))
		return
	}
	s.setMarker(feed, v)
}

func (s *Service) setMarker(feed domain.Feed, v int64) {
	s.mu.Lock()
	s.states[feed].marker = v
	s.mu.Unlock()
}

// touch bumps feed's marker and reloads it, so this and every other process
// sharing the local store pick up a write.
func (s *Service) touch(ctx context.Context, feed domain.Feed) {
	v, bumpErr := s.local.BumpMarker(ctx, feed)
	if bumpErr != nil {
		s.log.WarnContext(ctx, "bump marker", slog.String("feed", feed.String()), slog.String("error", bumpErr.Error()))
	}
	if err := s.Reload(ctx, feed); err != nil {
		s.log.WarnContext(ctx, "reload after write", slog.String("feed", feed.String()), slog.String("error", err.Error()))
		return
	}
	if bumpErr == nil {
		s.setMarker(feed, v)
	}
}
