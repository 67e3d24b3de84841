package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/journalfeed/internal/domain"
)

// Toast texts.
const (
	ToastLiked          = "Post liked!"
	ToastUnliked        = "Like removed"
	ToastBookmarked     = "Entry bookmarked!"
	ToastUnbookmarked   = "Bookmark removed"
	ToastShared         = "Link copied to clipboard!"
	ToastLikeFailed     = "Failed to update like"
	ToastBookmarkFailed = "Failed to update bookmark"
	ToastShareFailed    = "Failed to share"
)

// ActionResult is the outcome of a successful record action.
type ActionResult struct {
	Toast string
	// On reports the visitor's membership after a like or bookmark toggle.
	On    bool
	Share *domain.Share
}

// Marks is a visitor's like and bookmark membership.
type Marks struct {
	Liked      map[string]bool
	Bookmarked map[string]bool
}

// Marks returns the visitor's mark sets. Read failures yield empty sets.
func (s *Service) Marks(ctx context.Context, visitor string) Marks {
	m := Marks{Liked: map[string]bool{}, Bookmarked: map[string]bool{}}
	if visitor == "" {
		return m
	}
	if liked, err := s.local.Marks(ctx, visitor, domain.MarkLike); err == nil {
		m.Liked = liked
	} else {
		s.log.WarnContext(ctx, "read like marks", slog.String("error", err.Error()))
	}
	if saved, err := s.local.Marks(ctx, visitor, domain.MarkBookmark); err == nil {
		m.Bookmarked = saved
	} else {
		s.log.WarnContext(ctx, "read bookmark marks", slog.String("error", err.Error()))
	}
	return m
}

// ToggleLike likes or unlikes a post for visitor. The remote counter moves
// by exactly one, guarded by compare-and-set against the count last seen;
// the visitor's like set is written only after the remote write succeeds,
// and the remote write is reverted if that local write fails.
func (s *Service) ToggleLike(ctx context.Context, visitor, id string) (ActionResult, error) {
	fail := func(err error) (ActionResult, error) {
		return ActionResult{}, domain.NewActionError(domain.ActionLike, ToastLikeFailed, err)
	}
	if visitor == "" {
		return fail(domain.ErrUnauthorized)
	}
	if s.remote == nil {
		return fail(fmt.Errorf("no remote source: %w", domain.ErrConnectionFailed))
	}

	post, err := s.Post(ctx, id)
	if err != nil {
		return fail(err)
	}
	liked, err := s.local.HasMark(ctx, visitor, domain.MarkLike, id)
	if err != nil {
		return fail(err)
	}

	expected := post.Engagement.Likes
	delta := 1
	if liked {
		delta = -1
	}
	log := s.log.With(slog.String("post_id", id), slog.Int("expected", expected), slog.Int("delta", delta))

	remoteMoved := false
	if expected+delta >= 0 {
		ok, err := s.remote.AdjustLikes(ctx, id, expected, delta)
		if err != nil {
			return fail(err)
		}
		if !ok {
			log.InfoContext(ctx, "like conflict, refreshing")
			if rerr := s.Reload(ctx, domain.FeedSocial); rerr != nil {
				log.WarnContext(ctx, "reload after like conflict", slog.String("error", rerr.Error()))
			}
			return fail(fmt.Errorf("likes changed concurrently: %w", domain.ErrConflict))
		}
		remoteMoved = true
	}

	if err := s.local.SetMark(ctx, visitor, domain.MarkLike, id, !liked); err != nil {
		if remoteMoved {
			if _, rerr := s.remote.AdjustLikes(ctx, id, expected+delta, -delta); rerr != nil {
				log.ErrorContext(ctx, "revert like failed", slog.String("error", rerr.Error()))
			}
		}
		return fail(err)
	}

	if remoteMoved {
		s.setLikes(id, expected+delta)
	}
	log.InfoContext(ctx, "like toggled", slog.Bool("liked", !liked))

	res := ActionResult{Toast: ToastLiked, On: true}
	if liked {
		res = ActionResult{Toast: ToastUnliked, On: false}
	}
	return res, nil
}

// setLikes updates the in-memory counter so the next render shows the new
// value without waiting for the change notification.
func (s *Service) setLikes(id string, likes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := s.states[domain.FeedSocial].posts
	for i := range posts {
		if posts[i].ID == id {
			posts[i].Engagement.Likes = likes
			return
		}
	}
}

// ToggleBookmark adds the record to or removes it from visitor's bookmarks.
func (s *Service) ToggleBookmark(ctx context.Context, visitor string, feed domain.Feed, id string) (ActionResult, error) {
	fail := func(err error) (ActionResult, error) {
		return ActionResult{}, domain.NewActionError(domain.ActionBookmark, ToastBookmarkFailed, err)
	}
	if visitor == "" {
		return fail(domain.ErrUnauthorized)
	}
	if err := s.exists(ctx, feed, id); err != nil {
		return fail(err)
	}

	saved, err := s.local.HasMark(ctx, visitor, domain.MarkBookmark, id)
	if err != nil {
		return fail(err)
	}
	if err := s.local.SetMark(ctx, visitor, domain.MarkBookmark, id, !saved); err != nil {
		return fail(err)
	}

	if saved {
		return ActionResult{Toast: ToastUnbookmarked, On: false}, nil
	}
	return ActionResult{Toast: ToastBookmarked, On: true}, nil
}

// Share builds the share payload of a record.
func (s *Service) Share(ctx context.Context, feed domain.Feed, id string) (ActionResult, error) {
	var sh domain.Share
	switch feed {
	case domain.FeedJournal:
		e, err := s.Entry(ctx, id)
		if err != nil {
			return ActionResult{}, domain.NewActionError(domain.ActionShare, ToastShareFailed, err)
		}
		sh = domain.EntryShare(e, s.opts.AuthorName, s.opts.SiteURL)
	case domain.FeedSocial:
		p, err := s.Post(ctx, id)
		if err != nil {
			return ActionResult{}, domain.NewActionError(domain.ActionShare, ToastShareFailed, err)
		}
		sh = domain.PostShare(p, s.opts.SiteURL)
	default:
		return ActionResult{}, domain.NewActionError(domain.ActionShare, ToastShareFailed,
			domain.NewValidationError("feed", "unknown feed"))
	}
	return ActionResult{Toast: ToastShared, Share: &sh}, nil
}

func (s *Service) exists(ctx context.Context, feed domain.Feed, id string) error {
	switch feed {
	case domain.FeedJournal:
		_, err := s.Entry(ctx, id)
		return err
	case domain.FeedSocial:
		_, err := s.Post(ctx, id)
		return err
	}
	return domain.NewValidationError("feed", "unknown feed")
}
