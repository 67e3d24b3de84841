// Package normalize turns raw source records into well-formed entries and posts.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/heartmarshall/journalfeed/internal/domain"
)

// PlaceholderParagraph is used when an entry has neither content nor description.
const PlaceholderParagraph = "No content available"

// Normalizer maps raw records to domain records. It never mutates the raw map.
type Normalizer struct {
	now func() time.Time
}

// New creates a Normalizer. now is the clock used for relative post timestamps;
// nil means time.Now.
func New(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Entry normalizes a journal record. Only a missing identifier is an error.
func (n *Normalizer) Entry(raw domain.Raw) (domain.Entry, error) {
	id, err := ID(raw)
	if err != nil {
		return domain.Entry{}, err
	}

	e := domain.Entry{
		ID:          id,
		Title:       str(raw["title"]),
		Company:     str(raw["company"]),
		Description: str(raw["description"]),
		Tags:        stringList(raw["tags"]),
		Images:      images(raw["images"]),
		Icon:        str(raw["icon"]),
		Styling:     styling(raw["styling"]),
		Featured:    boolean(raw["featured"]),
		DateText:    str(raw["date_text"]),
		ReadTime:    str(raw["read_time"]),
	}
	e.FullContent = fullContent(raw["full_content"], e.Description)
	if t, ok := timestamp(raw["created_at"]); ok {
		e.CreatedAt = t
	}
	return e, nil
}

// Post normalizes a social record. Only a missing identifier is an error.
func (n *Normalizer) Post(raw domain.Raw) (domain.Post, error) {
	id, err := ID(raw)
	if err != nil {
		return domain.Post{}, err
	}

	p := domain.Post{
		ID: id,
		Platform: domain.Platform{
			Key:       str(raw["platform"]),
			Name:      str(raw["platform_name"]),
			Icon:      str(raw["platform_icon"]),
			Color:     str(raw["platform_color"]),
			TextColor: str(raw["platform_text_color"]),
		},
		Author:  str(raw["author"]),
		Handle:  str(raw["handle"]),
		Avatar:  str(raw["avatar"]),
		Content: str(raw["content"]),
		Engagement: domain.Engagement{
			Likes:    counter(raw["likes"]),
			Reposts:  counter(raw["reposts"]),
			Replies:  counter(raw["replies"]),
			Comments: counter(raw["comments"]),
			Shares:   counter(raw["shares"]),
		},
		Image: str(raw["image"]),
		Music: domain.Music{
			AlbumArt:  str(raw["album_art"]),
			SongTitle: str(raw["song_title"]),
			Artist:    str(raw["artist"]),
			Album:     str(raw["album"]),
			Duration:  str(raw["duration"]),
		},
		Tags:     stringList(raw["tags"]),
		ReadTime: str(raw["read_time"]),
	}
	p.Kind = postKind(str(raw["post_type"]), p.Image)

	if t, ok := timestamp(raw["created_at"]); ok {
		p.CreatedAt = t
		p.Timestamp = RelativeTime(n.now(), t)
	} else {
		p.Timestamp = str(raw["timestamp"])
	}
	return p, nil
}

// Entries normalizes a collection, skipping records without an identifier.
// Skipped positions are reported so the caller can log them.
func (n *Normalizer) Entries(raws []domain.Raw) ([]domain.Entry, []error) {
	out := make([]domain.Entry, 0, len(raws))
	var errs []error
	for i, r := range raws {
		e, err := n.Entry(r)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		out = append(out, e)
	}
	return out, errs
}

// Posts normalizes a collection, skipping records without an identifier.
func (n *Normalizer) Posts(raws []domain.Raw) ([]domain.Post, []error) {
	out := make([]domain.Post, 0, len(raws))
	var errs []error
	for i, r := range raws {
		p, err := n.Post(r)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		out = append(out, p)
	}
	return out, errs
}

func fullContent(v any, description string) []string {
	paras := stringList(v)
	if len(paras) > 0 {
		return paras
	}
	if description != "" {
		return []string{description}
	}
	return []string{PlaceholderParagraph}
}

func postKind(postType, image string) domain.PostKind {
	switch k := domain.PostKind(strings.ToLower(strings.TrimSpace(postType))); k {
	case domain.PostKindMusic, domain.PostKindJournal, domain.PostKindImage:
		return k
	}
	if image != "" {
		return domain.PostKindImage
	}
	return domain.PostKindPlain
}

// RelativeTime formats t relative to now the way the social feed displays it.
func RelativeTime(now, t time.Time) string {
	d := now.Sub(t)
	mins := int(d / time.Minute)
	hours := int(d / time.Hour)
	days := int(d / (24 * time.Hour))

	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return fmt.Sprintf("%dm ago", mins)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	}
	lt := t.In(now.Location())
	return fmt.Sprintf("%d/%d/%d", int(lt.Month()), lt.Day(), lt.Year())
}
