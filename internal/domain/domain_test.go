package domain

import "testing"

func TestStyling_Complete(t *testing.T) {
	t.Parallel()

	s := Styling{Background: "bg-neutral-900", Title: "text-white"}.Complete()

	if s.Background != "bg-neutral-900" || s.Title != "text-white" {
		t.Fatalf("explicit roles overwritten: %+v", s)
	}
	def := DefaultStyling()
	if s.Border != def.Border || s.Company != def.Company || s.Description != def.Description || s.Date != def.Date {
		t.Fatalf("missing roles not defaulted: %+v", s)
	}
	for i, r := range s.Roles() {
		if r == "" {
			t.Fatalf("role %d empty", i)
		}
	}
	if !s.IsDark() {
		t.Fatal("expected dark styling")
	}
	if DefaultStyling().IsDark() {
		t.Fatal("default styling should not be dark")
	}
}

func TestFeed_Table(t *testing.T) {
	t.Parallel()

	for _, f := range []Feed{FeedJournal, FeedSocial} {
		got, ok := FeedFromTable(f.Table())
		if !ok || got != f {
			t.Fatalf("FeedFromTable(%q) = %q, %v", f.Table(), got, ok)
		}
	}
	if _, ok := FeedFromTable("users"); ok {
		t.Fatal("unexpected feed for unknown table")
	}
	if Feed("photos").IsValid() {
		t.Fatal("unknown feed should be invalid")
	}
}

func TestAction_IsValid(t *testing.T) {
	t.Parallel()

	for _, a := range []Action{ActionToggle, ActionFilter, ActionClearFilter, ActionLike, ActionBookmark, ActionShare} {
		if !a.IsValid() {
			t.Errorf("%q should be valid", a)
		}
	}
	if Action("retweet").IsValid() {
		t.Error("retweet should be invalid")
	}
}

func TestHasTag(t *testing.T) {
	t.Parallel()

	e := Entry{ID: "1", Tags: []string{"design", "travel"}}
	if !HasTag(e, "travel") {
		t.Fatal("expected travel tag")
	}
	if HasTag(Post{ID: "2"}, "travel") {
		t.Fatal("post without tags should not match")
	}
}

func TestRaw_Clone(t *testing.T) {
	t.Parallel()

	r := Raw{"id": "1"}
	c := r.Clone()
	c["title"] = "x"
	if _, ok := r["title"]; ok {
		t.Fatal("Clone shares the underlying map")
	}
}

func TestEntryShare(t *testing.T) {
	t.Parallel()

	s := EntryShare(Entry{ID: "e1", Title: "Kyoto", Description: "Notes"}, "Ada", "https://ada.dev/journal")

	if s.Text != `"Kyoto" by Ada - Notes` {
		t.Fatalf("Text = %q", s.Text)
	}
	if s.URL != "https://ada.dev/journal#e1" {
		t.Fatalf("URL = %q", s.URL)
	}
	const wantIntent = "https://twitter.com/intent/tweet?text=%22Kyoto%22+by+Ada+-+Notes&url=https%3A%2F%2Fada.dev%2Fjournal%23e1"
	if s.IntentURL != wantIntent {
		t.Fatalf("IntentURL = %q", s.IntentURL)
	}
}

func TestPostShare_Excerpt(t *testing.T) {
	t.Parallel()

	long := make([]rune, 150)
	for i := range long {
		long[i] = 'a'
	}
	s := PostShare(Post{ID: "7", Author: "Ada", Content: string(long)}, "https://ada.dev/social")

	want := `Check out this post by Ada: "` + string(long[:100]) + `..."`
	if s.Text != want {
		t.Fatalf("Text = %q", s.Text)
	}
	if s.Title != "Post by Ada" {
		t.Fatalf("Title = %q", s.Title)
	}

	short := PostShare(Post{ID: "8", Author: "Ada", Content: "hi"}, "https://ada.dev/social")
	if short.Text != `Check out this post by Ada: "hi"` {
		t.Fatalf("Text = %q", short.Text)
	}
}
