package domain

import "time"

// Post is a normalized social item.
type Post struct {
	ID         string
	Platform   Platform
	Author     string
	Handle     string
	Avatar     string
	Timestamp  string
	CreatedAt  time.Time
	Content    string
	Kind       PostKind
	Engagement Engagement
	Image      string
	Music      Music
	Tags       []string
	ReadTime   string
}

// Platform is the network a post appears to come from.
type Platform struct {
	Key       string
	Name      string
	Icon      string
	Color     string
	TextColor string
}

// Engagement counters. Never negative.
type Engagement struct {
	Likes    int
	Reposts  int
	Replies  int
	Comments int
	Shares   int
}

// Music is the payload of a music-kind post.
type Music struct {
	AlbumArt  string
	SongTitle string
	Artist    string
	Album     string
	Duration  string
}

func (p Post) RecordID() string     { return p.ID }
func (p Post) RecordTags() []string { return p.Tags }
