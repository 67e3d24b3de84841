// Package render builds the HTML of feed pages and single cards. Rendering is
// a pure function of the records, the render state and the visitor's marks.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"

	"github.com/microcosm-cc/bluemonday"

	"github.com/heartmarshall/journalfeed/internal/analytics"
	"github.com/heartmarshall/journalfeed/internal/domain"
	"github.com/heartmarshall/journalfeed/internal/view"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// Options configures author details and tag display.
type Options struct {
	AuthorName     string
	AuthorAvatar   string
	SiteURL        string
	ActionPath     string
	MaxVisibleTags int
}

// Marks is the visitor's like and bookmark membership.
type Marks struct {
	Liked      map[string]bool
	Bookmarked map[string]bool
}

// Renderer executes the embedded templates.
type Renderer struct {
	opts   Options
	tmpl   *template.Template
	policy *bluemonday.Policy
}

// New parses the embedded templates.
func New(opts Options) (*Renderer, error) {
	if opts.MaxVisibleTags <= 0 {
		opts.MaxVisibleTags = 3
	}
	if opts.ActionPath == "" {
		opts.ActionPath = "/actions"
	}

	tmpl, err := template.New("render").Funcs(template.FuncMap{
		"inc":    func(i int) int { return i + 1 },
		"imgsrc": ImageURL,
	}).ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{
		opts:   opts,
		tmpl:   tmpl,
		policy: bluemonday.UGCPolicy(),
	}, nil
}

// JournalPage is the data of the journal page.
type JournalPage struct {
	Path    string
	Entries []domain.Entry
	State   view.State
	Summary analytics.Summary
	Marks   Marks
	Err     error
	Toast   string
	// Shared is the id of the entry whose share panel is open.
	Shared  string
}

// SocialPage is the data of the social page.
type SocialPage struct {
	Path   string
	Posts  []domain.Post
	State  view.State
	Marks  Marks
	Err    error
	Toast  string
	Shared string
}

// Journal writes the journal page.
func (r *Renderer) Journal(w io.Writer, p JournalPage) error {
	visible := view.Visible(p.State, p.Entries)
	cards := make([]entryCard, 0, len(visible))
	for _, e := range visible {
		c := r.entryCard(e, p.State, p.Path, p.Marks)
		c.ShareOpen = p.Shared != "" && e.ID == p.Shared
		cards = append(cards, c)
	}

	data := pageData{
		Title:    "Journal",
		Feed:     domain.FeedJournal,
		Path:     p.Path,
		Toast:    p.Toast,
		Filter:   p.State.Filter(),
		Entries:  cards,
		Form:     r.form(domain.FeedJournal, p.State, p.Path),
		Sidebar:  r.sidebar(p.Summary, p.State, p.Path),
		Empty:    len(visible) == 0,
		ErrorMsg: errorMessage(p.Err),
	}
	return r.tmpl.ExecuteTemplate(w, "journal_page", data)
}

// Social writes the social page.
func (r *Renderer) Social(w io.Writer, p SocialPage) error {
	visible := view.Visible(p.State, p.Posts)
	cards := make([]postCard, 0, len(visible))
	for _, post := range visible {
		c := r.postCard(post, p.State, p.Path, p.Marks)
		c.ShareOpen = p.Shared != "" && post.ID == p.Shared
		cards = append(cards, c)
	}

	data := pageData{
		Title:    "Social",
		Feed:     domain.FeedSocial,
		Path:     p.Path,
		Toast:    p.Toast,
		Filter:   p.State.Filter(),
		Posts:    cards,
		Form:     r.form(domain.FeedSocial, p.State, p.Path),
		Empty:    len(visible) == 0,
		ErrorMsg: errorMessage(p.Err),
	}
	return r.tmpl.ExecuteTemplate(w, "social_page", data)
}

// Entry renders one journal card, collapsed or expanded per st.
func (r *Renderer) Entry(e domain.Entry, st view.State, path string, marks Marks) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "entry_card", r.entryCard(e, st, path, marks)); err != nil {
		return "", fmt.Errorf("render entry %s: %w", e.ID, err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // template output is already escaped
}

// Post renders one social card using the template of its kind.
func (r *Renderer) Post(p domain.Post, st view.State, path string, marks Marks) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "post_card", r.postCard(p, st, path, marks)); err != nil {
		return "", fmt.Errorf("render post %s: %w", p.ID, err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // template output is already escaped
}

// Sanitize strips markup that is not safe in user-generated content.
func (r *Renderer) Sanitize(s string) template.HTML {
	return template.HTML(r.policy.Sanitize(s)) //nolint:gosec // sanitized by bluemonday
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	var le *domain.LoadError
	if errors.As(err, &le) {
		return le.Message()
	}
	return "Something went wrong while loading this feed."
}

// ---------------------------------------------------------------------------
// View models
// ---------------------------------------------------------------------------

type pageData struct {
	Title    string
	Feed     domain.Feed
	Path     string
	Toast    string
	Filter   string
	Entries  []entryCard
	Posts    []postCard
	Form     formState
	Sidebar  sidebar
	Empty    bool
	ErrorMsg string
}

// formState is carried as hidden fields by every action form so the
// dispatcher can rebuild the page's render state.
type formState struct {
	Action   string
	Feed     domain.Feed
	Path     string
	Expanded string
	Tag      string
}

type entryCard struct {
	domain.Entry
	Expanded    bool
	Dark        bool
	VisibleTags []string
	MoreTags    int
	FirstImage  *domain.Image
	MoreImages  int
	Paragraphs  []template.HTML
	Share       domain.Share
	ShareOpen   bool
	Bookmarked  bool
	Form        formState
}

type postCard struct {
	domain.Post
	Expanded  bool
	Togglable bool
	Truncated bool
	Body      string
	Avatar    string
	Stats     []stat
	Liked     bool
	Progress  int
	Elapsed   string
	AlbumArt  string
	Share     domain.Share
	ShareOpen bool
	Form      formState
}

type stat struct {
	Label string
	Count int
}

type sidebar struct {
	Entries     int
	Words       string
	ReadingTime string
	Topics      int
	TopTags     []analytics.TagCount
	Form        formState
}

func (r *Renderer) form(feed domain.Feed, st view.State, path string) formState {
	q := st.Values()
	return formState{
		Action:   r.opts.ActionPath,
		Feed:     feed,
		Path:     path,
		Expanded: q.Get(view.ParamExpanded),
		Tag:      q.Get(view.ParamTag),
	}
}

func (r *Renderer) entryCard(e domain.Entry, st view.State, path string, marks Marks) entryCard {
	c := entryCard{
		Entry:      e,
		Expanded:   st.IsExpanded(e.ID),
		Dark:       e.Styling.IsDark(),
		Bookmarked: marks.Bookmarked[e.ID],
		Share:      domain.EntryShare(e, r.opts.AuthorName, r.opts.SiteURL),
		Form:       r.form(domain.FeedJournal, st, path),
	}

	if c.Expanded {
		c.VisibleTags = e.Tags
		c.Paragraphs = make([]template.HTML, 0, len(e.FullContent))
		for _, p := range e.FullContent {
			c.Paragraphs = append(c.Paragraphs, r.Sanitize(p))
		}
	} else {
		c.VisibleTags = e.Tags
		if len(e.Tags) > r.opts.MaxVisibleTags {
			c.VisibleTags = e.Tags[:r.opts.MaxVisibleTags]
			c.MoreTags = len(e.Tags) - r.opts.MaxVisibleTags
		}
	}
	if len(e.Images) > 0 {
		img := e.Images[0]
		c.FirstImage = &img
		c.MoreImages = len(e.Images) - 1
	}
	return c
}

func (r *Renderer) postCard(p domain.Post, st view.State, path string, marks Marks) postCard {
	expanded := st.IsExpanded(p.ID)
	body, truncated := Truncate(p.Content, expanded)

	c := postCard{
		Post:      p,
		Expanded:  expanded,
		Togglable: Overflows(p.Content),
		Truncated: truncated,
		Body:      body,
		Avatar:    p.Avatar,
		Liked:     marks.Liked[p.ID],
		Share:     domain.PostShare(p, r.opts.SiteURL),
		Form:      r.form(domain.FeedSocial, st, path),
	}
	if c.Avatar == "" {
		c.Avatar = r.opts.AuthorAvatar
	}

	eng := p.Engagement
	for _, s := range []stat{
		{Label: "likes", Count: eng.Likes},
		{Label: "reposts", Count: eng.Reposts},
		{Label: "replies", Count: eng.Replies},
		{Label: "comments", Count: eng.Comments},
		{Label: "shares", Count: eng.Shares},
	} {
		if s.Count > 0 {
			c.Stats = append(c.Stats, s)
		}
	}

	if p.Kind == domain.PostKindMusic {
		c.Progress = MusicProgress(p.ID)
		c.Elapsed = MusicElapsed(c.Progress, p.Music.Duration)
		c.AlbumArt = p.Music.AlbumArt
		if c.AlbumArt == "" {
			c.AlbumArt = r.opts.AuthorAvatar
		}
	}
	return c
}

func (r *Renderer) sidebar(s analytics.Summary, st view.State, path string) sidebar {
	return sidebar{
		Entries:     s.Count,
		Words:       s.Words(),
		ReadingTime: s.ReadingTime(),
		Topics:      s.UniqueTagCount,
		TopTags:     s.TopTags,
		Form:        r.form(domain.FeedJournal, st, path),
	}
}
