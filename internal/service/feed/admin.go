package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/journalfeed/internal/domain"
)

// CreateEntry writes a new journal entry to the canonical store.
func (s *Service) CreateEntry(ctx context.Context, input CreateEntryInput) (domain.Entry, error) {
	if err := input.Validate(); err != nil {
		return domain.Entry{}, err
	}
	raw, err := s.insert(ctx, domain.FeedJournal, input.Raw())
	if err != nil {
		return domain.Entry{}, err
	}
	e, err := s.norm.Entry(raw)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("normalize created entry: %w", err)
	}
	s.log.InfoContext(ctx, "entry created", slog.String("id", e.ID), slog.String("title", e.Title))
	return e, nil
}

// CreatePost writes a new social post to the canonical store.
func (s *Service) CreatePost(ctx context.Context, input CreatePostInput) (domain.Post, error) {
	if err := input.Validate(); err != nil {
		return domain.Post{}, err
	}
	raw, err := s.insert(ctx, domain.FeedSocial, input.Raw())
	if err != nil {
		return domain.Post{}, err
	}
	p, err := s.norm.Post(raw)
	if err != nil {
		return domain.Post{}, fmt.Errorf("normalize created post: %w", err)
	}
	s.log.InfoContext(ctx, "post created", slog.String("id", p.ID), slog.String("kind", p.Kind.String()))
	return p, nil
}

// Delete removes a record from the canonical store.
func (s *Service) Delete(ctx context.Context, feed domain.Feed, id string) error {
	if !feed.IsValid() {
		return domain.NewValidationError("feed", "unknown feed")
	}
	if id == "" {
		return domain.NewValidationError("id", "required")
	}
	if s.remote == nil {
		return fmt.Errorf("delete %s: no remote source: %w", feed, domain.ErrConnectionFailed)
	}
	if err := s.remote.Delete(ctx, feed, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", feed, id, err)
	}
	s.log.InfoContext(ctx, "record deleted", slog.String("feed", feed.String()), slog.String("id", id))
	s.touch(ctx, feed)
	return nil
}

func (s *Service) insert(ctx context.Context, feed domain.Feed, rec domain.Raw) (domain.Raw, error) {
	if s.remote == nil {
		return nil, fmt.Errorf("create %s: no remote source: %w", feed, domain.ErrConnectionFailed)
	}
	raw, err := s.remote.Insert(ctx, feed, rec)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", feed, err)
	}
	s.touch(ctx, feed)
	return raw, nil
}
