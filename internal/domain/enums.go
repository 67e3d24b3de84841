package domain

// Feed identifies one of the two collections served by the site.
type Feed string

const (
	FeedJournal Feed = "journal"
	FeedSocial  Feed = "social"
)

func (f Feed) String() string { return string(f) }

func (f Feed) IsValid() bool {
	switch f {
	case FeedJournal, FeedSocial:
		return true
	}
	return false
}

// Table returns the hosted store table backing the feed.
func (f Feed) Table() string {
	switch f {
	case FeedSocial:
		return "social_posts"
	default:
		return "journal_entries"
	}
}

// FeedFromTable maps a hosted store table name back to its feed.
func FeedFromTable(table string) (Feed, bool) {
	switch table {
	case "journal_entries":
		return FeedJournal, true
	case "social_posts":
		return FeedSocial, true
	}
	return "", false
}

// PostKind selects the presentation template of a social post.
type PostKind string

const (
	PostKindPlain   PostKind = "plain"
	PostKindImage   PostKind = "image"
	PostKindMusic   PostKind = "music"
	PostKindJournal PostKind = "journal"
)

func (k PostKind) String() string { return string(k) }

func (k PostKind) IsValid() bool {
	switch k {
	case PostKindPlain, PostKindImage, PostKindMusic, PostKindJournal:
		return true
	}
	return false
}

// ChangeType is the kind of a real-time change notification.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

func (c ChangeType) String() string { return string(c) }

func (c ChangeType) IsValid() bool {
	switch c {
	case ChangeInsert, ChangeUpdate, ChangeDelete:
		return true
	}
	return false
}

// Action is a visitor interaction dispatched by the web layer.
type Action string

const (
	ActionToggle      Action = "toggle"
	ActionFilter      Action = "filter"
	ActionClearFilter Action = "clear-filter"
	ActionLike        Action = "like"
	ActionBookmark    Action = "bookmark"
	ActionShare       Action = "share"
)

func (a Action) String() string { return string(a) }

func (a Action) IsValid() bool {
	switch a {
	case ActionToggle, ActionFilter, ActionClearFilter, ActionLike, ActionBookmark, ActionShare:
		return true
	}
	return false
}

// MarkSet names a per-visitor membership set kept in the local store.
type MarkSet string

const (
	MarkLike     MarkSet = "like"
	MarkBookmark MarkSet = "bookmark"
)
