package render

import (
	"fmt"
	"hash/fnv"
	"html/template"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TruncateLimit is the number of characters of a post shown while collapsed.
const TruncateLimit = 200

// liveDuration marks a stream without a fixed length.
const liveDuration = "∞ Live"

// Truncate clips s to TruncateLimit characters and appends an ellipsis when it
// is longer and not expanded. The second result reports whether it clipped.
func Truncate(s string, expanded bool) (string, bool) {
	if expanded || utf8.RuneCountInString(s) <= TruncateLimit {
		return s, false
	}
	return string([]rune(s)[:TruncateLimit]) + "...", true
}

// Overflows reports whether s exceeds TruncateLimit characters.
func Overflows(s string) bool {
	return utf8.RuneCountInString(s) > TruncateLimit
}

// MusicProgress returns a stable playback position in percent (10..89) for a
// post, derived from its identifier.
func MusicProgress(id string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32()%80) + 10
}

// MusicElapsed formats the elapsed time at progress percent of a "m:ss"
// duration. Live streams and malformed durations show "0:00".
func MusicElapsed(progress int, duration string) string {
	if duration == "" || duration == liveDuration {
		return "0:00"
	}
	parts := strings.Split(duration, ":")
	if len(parts) != 2 {
		return "0:00"
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return "0:00"
	}
	s, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "0:00"
	}
	total := m*60 + s
	cur := progress * total / 100
	return fmt.Sprintf("%d:%02d", cur/60, cur%60)
}

// rasterTypes are the media types accepted in inline image data URLs.
var rasterTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageURL marks inline image data URLs as safe for src attributes. Other
// values pass through the template's normal URL filtering.
func ImageURL(s string) template.URL {
	lower := strings.ToLower(strings.TrimSpace(s))
	if mediaType, ok := strings.CutPrefix(lower, "data:"); ok {
		if end := strings.IndexAny(mediaType, ";,"); end >= 0 && rasterTypes[mediaType[:end]] {
			return template.URL(s) //nolint:gosec // restricted to raster image data URLs
		}
		return template.URL("#")
	}
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return template.URL(s) //nolint:gosec // plain http(s) URL
	}
	if colon := strings.IndexByte(lower, ':'); colon < 0 || strings.IndexByte(lower[:colon], '/') >= 0 {
		return template.URL(s) //nolint:gosec // relative URL without a scheme
	}
	return template.URL("#")
}
