package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/journalfeed/internal/analytics"
	"github.com/heartmarshall/journalfeed/internal/domain"
	"github.com/heartmarshall/journalfeed/internal/service/feed"
)

// feedReader defines the read side of the feed service.
type feedReader interface {
	Entries(ctx context.Context) ([]domain.Entry, error)
	Posts(ctx context.Context) ([]domain.Post, error)
	Summary(ctx context.Context) (analytics.Summary, error)
	Status(f domain.Feed) feed.Status
}

// FeedHandler serves the JSON read API.
type FeedHandler struct {
	feeds feedReader
	log   *slog.Logger
}

// NewFeedHandler creates a FeedHandler.
func NewFeedHandler(feeds feedReader, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{feeds: feeds, log: logger.With("handler", "api")}
}

type listResponse struct {
	Feed     string     `json:"feed"`
	Source   string     `json:"source"`
	LoadedAt *time.Time `json:"loadedAt,omitempty"`
	Count    int        `json:"count"`
	Records  any        `json:"records"`
}

// List handles GET /api/{feed}.
func (h *FeedHandler) List(w http.ResponseWriter, r *http.Request) {
	f := domain.Feed(r.PathValue("feed"))

	var records any
	var count int
	switch f {
	case domain.FeedJournal:
		entries, err := h.feeds.Entries(r.Context())
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		out := make([]entryResponse, len(entries))
		for i, e := range entries {
			out[i] = toEntryResponse(e)
		}
		records, count = out, len(out)
	case domain.FeedSocial:
		posts, err := h.feeds.Posts(r.Context())
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		out := make([]postResponse, len(posts))
		for i, p := range posts {
			out[i] = toPostResponse(p)
		}
		records, count = out, len(out)
	default:
		writeError(w, http.StatusNotFound, "unknown feed")
		return
	}

	st := h.feeds.Status(f)
	resp := listResponse{Feed: f.String(), Source: st.Source, Count: count, Records: records}
	if !st.LoadedAt.IsZero() {
		resp.LoadedAt = &st.LoadedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

// Summary handles GET /api/journal/summary.
func (h *FeedHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.feeds.Summary(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type entryResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Company     string         `json:"company,omitempty"`
	Description string         `json:"description"`
	FullContent []string       `json:"fullContent"`
	Tags        []string       `json:"tags"`
	Images      []domain.Image `json:"images"`
	Icon        string         `json:"icon,omitempty"`
	Styling     domain.Styling `json:"styling"`
	Featured    bool           `json:"featured"`
	DateText    string         `json:"dateText,omitempty"`
	ReadTime    string         `json:"readTime,omitempty"`
	CreatedAt   *time.Time     `json:"createdAt,omitempty"`
}

type postResponse struct {
	ID         string             `json:"id"`
	Platform   platformResponse   `json:"platform"`
	Author     string             `json:"author"`
	Handle     string             `json:"handle,omitempty"`
	Avatar     string             `json:"avatar,omitempty"`
	Timestamp  string             `json:"timestamp"`
	CreatedAt  *time.Time         `json:"createdAt,omitempty"`
	Content    string             `json:"content"`
	Type       string             `json:"type"`
	Engagement engagementResponse `json:"engagement"`
	Image      string             `json:"image,omitempty"`
	Music      *musicResponse     `json:"music,omitempty"`
	Tags       []string           `json:"tags"`
	ReadTime   string             `json:"readTime,omitempty"`
}

type platformResponse struct {
	Key       string `json:"key,omitempty"`
	Name      string `json:"name,omitempty"`
	Icon      string `json:"icon,omitempty"`
	Color     string `json:"color,omitempty"`
	TextColor string `json:"textColor,omitempty"`
}

type engagementResponse struct {
	Likes    int `json:"likes"`
	Reposts  int `json:"reposts"`
	Replies  int `json:"replies"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

type musicResponse struct {
	AlbumArt  string `json:"albumArt,omitempty"`
	SongTitle string `json:"songTitle"`
	Artist    string `json:"artist,omitempty"`
	Album     string `json:"album,omitempty"`
	Duration  string `json:"duration,omitempty"`
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func toEntryResponse(e domain.Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		Title:       e.Title,
		Company:     e.Company,
		Description: e.Description,
		FullContent: e.FullContent,
		Tags:        e.Tags,
		Images:      e.Images,
		Icon:        e.Icon,
		Styling:     e.Styling,
		Featured:    e.Featured,
		DateText:    e.DateText,
		ReadTime:    e.ReadTime,
		CreatedAt:   timePtr(e.CreatedAt),
	}
}

func toPostResponse(p domain.Post) postResponse {
	resp := postResponse{
		ID: p.ID,
		Platform: platformResponse{
			Key:       p.Platform.Key,
			Name:      p.Platform.Name,
			Icon:      p.Platform.Icon,
			Color:     p.Platform.Color,
			TextColor: p.Platform.TextColor,
		},
		Author:    p.Author,
		Handle:    p.Handle,
		Avatar:    p.Avatar,
		Timestamp: p.Timestamp,
		CreatedAt: timePtr(p.CreatedAt),
		Content:   p.Content,
		Type:      p.Kind.String(),
		Engagement: engagementResponse{
			Likes:    p.Engagement.Likes,
			Reposts:  p.Engagement.Reposts,
			Replies:  p.Engagement.Replies,
			Comments: p.Engagement.Comments,
			Shares:   p.Engagement.Shares,
		},
		Image:    p.Image,
		Tags:     p.Tags,
		ReadTime: p.ReadTime,
	}
	if p.Kind == domain.PostKindMusic {
		resp.Music = &musicResponse{
			AlbumArt:  p.Music.AlbumArt,
			SongTitle: p.Music.SongTitle,
			Artist:    p.Music.Artist,
			Album:     p.Music.Album,
			Duration:  p.Music.Duration,
		}
	}
	return resp
}
