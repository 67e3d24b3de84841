// Package analytics derives the sidebar counters shown next to a feed.
package analytics

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/heartmarshall/journalfeed/internal/domain"
)

const (
	// DefaultTopTags is the number of featured topics shown.
	DefaultTopTags = 5
	// DefaultReadMinutes is assumed when a record has no parseable read time.
	DefaultReadMinutes = 3
)

// Summary holds the counters of one collection.
type Summary struct {
	Count                int        `json:"count"`
	ApproxWordCount      int        `json:"approxWordCount"`
	ApproxReadingMinutes int        `json:"approxReadingMinutes"`
	UniqueTagCount       int        `json:"uniqueTagCount"`
	TopTags              []TagCount `json:"topTags"`
}

// TagCount is a tag with the number of records carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Words returns the approximate word count as displayed.
func (s Summary) Words() string { return FormatWords(s.ApproxWordCount) }

// ReadingTime returns the total reading time as displayed.
func (s Summary) ReadingTime() string { return FormatMinutes(s.ApproxReadingMinutes) }

// Summarize computes the summary of journal entries with DefaultTopTags featured topics.
func Summarize(entries []domain.Entry) Summary {
	return SummarizeTop(entries, DefaultTopTags)
}

// SummarizeTop is Summarize with an explicit featured topic limit.
func SummarizeTop(entries []domain.Entry, limit int) Summary {
	s := Summary{Count: len(entries), TopTags: []TagCount{}}
	var tags []string
	for _, e := range entries {
		s.ApproxWordCount += WordCount(strings.Join(e.FullContent, " ") + " " + e.Description)
		s.ApproxReadingMinutes += ReadMinutes(e.ReadTime)
		tags = append(tags, e.Tags...)
	}
	s.UniqueTagCount, s.TopTags = countTags(tags, limit)
	return s
}

// SummarizePosts computes the same counters over social posts.
func SummarizePosts(posts []domain.Post, limit int) Summary {
	s := Summary{Count: len(posts), TopTags: []TagCount{}}
	var tags []string
	for _, p := range posts {
		s.ApproxWordCount += WordCount(p.Content)
		s.ApproxReadingMinutes += ReadMinutes(p.ReadTime)
		tags = append(tags, p.Tags...)
	}
	s.UniqueTagCount, s.TopTags = countTags(tags, limit)
	return s
}

// WordCount counts tokens separated by single spaces. Consecutive spaces
// yield empty tokens, which are counted too.
func WordCount(text string) int {
	return len(strings.Split(text, " "))
}

var digits = regexp.MustCompile(`\d+`)

// ReadMinutes extracts the first integer of a read-time string such as
// "5 min read", defaulting to DefaultReadMinutes.
func ReadMinutes(readTime string) int {
	m := digits.FindString(readTime)
	if m == "" {
		return DefaultReadMinutes
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return DefaultReadMinutes
	}
	return n
}

// TopTags returns up to limit tags by descending frequency. Ties keep the
// order in which tags were first seen.
func TopTags(tags []string, limit int) []TagCount {
	_, top := countTags(tags, limit)
	return top
}

func countTags(tags []string, limit int) (int, []TagCount) {
	idx := make(map[string]int, len(tags))
	counts := make([]TagCount, 0, len(tags))
	for _, t := range tags {
		if i, ok := idx[t]; ok {
			counts[i].Count++
			continue
		}
		idx[t] = len(counts)
		counts = append(counts, TagCount{Tag: t, Count: 1})
	}
	unique := len(counts)

	slices.SortStableFunc(counts, func(a, b TagCount) int {
		return b.Count - a.Count
	})
	if limit >= 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return unique, counts
}

// FormatWords renders counts above 1000 as rounded thousands ("1k").
func FormatWords(n int) string {
	if n > 1000 {
		return fmt.Sprintf("%dk", int(math.Floor(float64(n)/1000+0.5)))
	}
	return strconv.Itoa(n)
}

// FormatMinutes renders minutes as "Xh Ym", or "Ym" under an hour.
func FormatMinutes(total int) string {
	h, m := total/60, total%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
