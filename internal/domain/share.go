package domain

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	twitterIntent = "https://twitter.com/intent/tweet"
	// shareExcerpt is the number of post characters quoted in a share text.
	shareExcerpt = 100
)

// Share is what a visitor gets when sharing a record.
type Share struct {
	Title     string `json:"title"`
	Text      string `json:"text"`
	URL       string `json:"url"`
	IntentURL string `json:"intentUrl"`
}

// EntryShare builds the share payload of a journal entry.
func EntryShare(e Entry, author, siteURL string) Share {
	text := `"` + e.Title + `" by ` + author + " - " + e.Description
	return newShare(e.Title, text, permalink(siteURL, e.ID))
}

// PostShare builds the share payload of a social post.
func PostShare(p Post, siteURL string) Share {
	excerpt := p.Content
	if utf8.RuneCountInString(excerpt) > shareExcerpt {
		excerpt = string([]rune(excerpt)[:shareExcerpt]) + "..."
	}
	text := "Check out this post by " + p.Author + `: "` + excerpt + `"`
	return newShare("Post by "+p.Author, text, permalink(siteURL, p.ID))
}

func newShare(title, text, link string) Share {
	q := url.Values{}
	q.Set("text", text)
	q.Set("url", link)
	return Share{
		Title:     title,
		Text:      text,
		URL:       link,
		IntentURL: twitterIntent + "?" + q.Encode(),
	}
}

func permalink(siteURL, id string) string {
	return strings.TrimRight(siteURL, "#") + "#" + id
}
