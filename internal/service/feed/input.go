package feed

import (
	"strings"

	"github.com/heartmarshall/journalfeed/internal/domain"
)

// CreateEntryInput holds the fields of a new journal entry.
type CreateEntryInput struct {
	Title       string          `json:"title"`
	Company     string          `json:"company"`
	Description string          `json:"description"`
	Content     []string        `json:"fullContent"`
	Tags        []string        `json:"tags"`
	Images      []domain.Image  `json:"images"`
	Icon        string          `json:"icon"`
	Styling     *domain.Styling `json:"styling"`
	Featured    bool            `json:"featured"`
	DateText    string          `json:"dateText"`
	ReadTime    string          `json:"readTime"`
}

// Validate checks all fields and collects all errors.
func (i CreateEntryInput) Validate() error {
	var errs []domain.FieldError

	title := strings.TrimSpace(i.Title)
	if title == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "required"})
	}
	if len(title) > 200 {
		errs = append(errs, domain.FieldError{Field: "title", Message: "max 200 characters"})
	}
	if strings.TrimSpace(i.Description) == "" {
		errs = append(errs, domain.FieldError{Field: "description", Message: "required"})
	}
	if len(i.Tags) > 20 {
		errs = append(errs, domain.FieldError{Field: "tags", Message: "max 20 tags"})
	}
	for _, img := range i.Images {
		if strings.TrimSpace(img.Src) == "" {
			errs = append(errs, domain.FieldError{Field: "images", Message: "image data required"})
			break
		}
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// Raw maps the input onto table columns.
func (i CreateEntryInput) Raw() domain.Raw {
	styling := domain.DefaultStyling()
	if i.Styling != nil {
		styling = i.Styling.Complete()
	}
	images := i.Images
	if images == nil {
		images = []domain.Image{}
	}

	rec := domain.Raw{
		"title":        strings.TrimSpace(i.Title),
		"description":  strings.TrimSpace(i.Description),
		"full_content": paragraphs(i.Content),
		"tags":         cleanTags(i.Tags),
		"images":       images,
		"styling":      styling,
		"featured":     i.Featured,
	}
	setIf(rec, "company", i.Company)
	setIf(rec, "icon", i.Icon)
	setIf(rec, "date_text", i.DateText)
	setIf(rec, "read_time", i.ReadTime)
	return rec
}

// CreatePostInput holds the fields of a new social post.
type CreatePostInput struct {
	Platform          string   `json:"platform"`
	PlatformName      string   `json:"platformName"`
	PlatformIcon      string   `json:"platformIcon"`
	PlatformColor     string   `json:"platformColor"`
	PlatformTextColor string   `json:"platformTextColor"`
	Author            string   `json:"author"`
	Handle            string   `json:"handle"`
	Avatar            string   `json:"avatar"`
	Content           string   `json:"content"`
	Kind              string   `json:"type"`
	Image             string   `json:"image"`
	AlbumArt          string   `json:"albumArt"`
	SongTitle         string   `json:"songTitle"`
	Artist            string   `json:"artist"`
	Album             string   `json:"album"`
	Duration          string   `json:"duration"`
	Tags              []string `json:"tags"`
	ReadTime          string   `json:"readTime"`
}

// Validate checks all fields and collects all errors.
func (i CreatePostInput) Validate() error {
	var errs []domain.FieldError

	kind := domain.PostKind(strings.TrimSpace(i.Kind))
	if kind != "" && !kind.IsValid() && kind != "text" {
		errs = append(errs, domain.FieldError{Field: "type", Message: "must be plain, image, music or journal"})
	}
	if strings.TrimSpace(i.Author) == "" {
		errs = append(errs, domain.FieldError{Field: "author", Message: "required"})
	}
	switch kind {
	case domain.PostKindMusic:
		if strings.TrimSpace(i.SongTitle) == "" {
			errs = append(errs, domain.FieldError{Field: "songTitle", Message: "required for music posts"})
		}
	case domain.PostKindImage:
		if strings.TrimSpace(i.Image) == "" {
			errs = append(errs, domain.FieldError{Field: "image", Message: "required for image posts"})
		}
	default:
		if strings.TrimSpace(i.Content) == "" {
			errs = append(errs, domain.FieldError{Field: "content", Message: "required"})
		}
	}
	if len(i.Content) > 5000 {
		errs = append(errs, domain.FieldError{Field: "content", Message: "max 5000 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// Raw maps the input onto table columns. Counters start at zero.
func (i CreatePostInput) Raw() domain.Raw {
	rec := domain.Raw{
		"content": strings.TrimSpace(i.Content),
		"tags":    cleanTags(i.Tags),
	}
	for col, v := range map[string]string{
		"platform":            i.Platform,
		"platform_name":       i.PlatformName,
		"platform_icon":       i.PlatformIcon,
		"platform_color":      i.PlatformColor,
		"platform_text_color": i.PlatformTextColor,
		"author":              i.Author,
		"handle":              i.Handle,
		"avatar":              i.Avatar,
		"post_type":           i.Kind,
		"image":               i.Image,
		"album_art":           i.AlbumArt,
		"song_title":          i.SongTitle,
		"artist":              i.Artist,
		"album":               i.Album,
		"duration":            i.Duration,
		"read_time":           i.ReadTime,
	} {
		setIf(rec, col, v)
	}
	return rec
}

func setIf(rec domain.Raw, col, v string) {
	if v = strings.TrimSpace(v); v != "" {
		rec[col] = v
	}
}

// paragraphs trims and drops empty paragraphs.
func paragraphs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// cleanTags trims, drops empty and removes duplicate tags, keeping order.
func cleanTags(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
