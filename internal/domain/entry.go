package domain

import (
	"strings"
	"time"
)

// Entry is a normalized journal item.
type Entry struct {
	ID          string
	Title       string
	Company     string
	Description string
	FullContent []string
	Tags        []string
	Images      []Image
	Icon        string
	Styling     Styling
	Featured    bool
	DateText    string
	ReadTime    string
	CreatedAt   time.Time
}

// Image is an attached picture, either a data URL or a remote URL.
type Image struct {
	Src  string `json:"data"`
	Name string `json:"name"`
}

func (e Entry) RecordID() string     { return e.ID }
func (e Entry) RecordTags() []string { return e.Tags }

// Body returns the paragraphs joined by a single space.
func (e Entry) Body() string {
	return strings.Join(e.FullContent, " ")
}
