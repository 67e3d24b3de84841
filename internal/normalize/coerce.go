package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/journalfeed/internal/domain"
)

// ID extracts the record identifier. Sources deliver it as text, a number
// or a raw uuid depending on the column type and transport.
func ID(raw domain.Raw) (string, error) {
	v, ok := raw["id"]
	if !ok || v == nil {
		return "", domain.ErrMissingIdentifier
	}

	var id string
	switch x := v.(type) {
	case string:
		id = strings.TrimSpace(x)
	case uuid.UUID:
		id = x.String()
	case [16]byte:
		id = uuid.UUID(x).String()
	case int:
		id = strconv.Itoa(x)
	case int32:
		id = strconv.FormatInt(int64(x), 10)
	case int64:
		id = strconv.FormatInt(x, 10)
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return "", fmt.Errorf("%w: non-integral id %v", domain.ErrMissingIdentifier, x)
		}
		id = strconv.FormatInt(int64(x), 10)
	case json.Number:
		id = x.String()
	default:
		return "", fmt.Errorf("%w: unsupported id type %T", domain.ErrMissingIdentifier, v)
	}

	if id == "" {
		return "", domain.ErrMissingIdentifier
	}
	return id, nil
}

func str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int, int32, int64, bool:
		return fmt.Sprint(x)
	}
	return ""
}

func boolean(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(x))
		return b
	case float64:
		return x != 0
	case int64:
		return x != 0
	case int:
		return x != 0
	}
	return false
}

// counter coerces an engagement counter, clamping at zero.
func counter(v any) int {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		n = int64(x)
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			f, ferr := x.Float64()
			if ferr != nil {
				return 0
			}
			i = int64(f)
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0
		}
		n = i
	}
	if n < 0 {
		return 0
	}
	return int(n)
}

// list returns v as a slice when it is list-shaped. A string holding a JSON
// array is accepted since text columns and old caches store the serialized form.
func list(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	case string:
		s := strings.TrimSpace(x)
		if !strings.HasPrefix(s, "[") {
			return nil, false
		}
		var out []any
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, false
		}
		return out, true
	case []byte:
		return list(string(x))
	}
	return nil, false
}

func stringList(v any) []string {
	items, ok := list(v)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := str(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func images(v any) []domain.Image {
	items, ok := list(v)
	if !ok {
		return []domain.Image{}
	}
	out := make([]domain.Image, 0, len(items))
	for _, it := range items {
		switch x := it.(type) {
		case string:
			if x != "" {
				out = append(out, domain.Image{Src: x})
			}
		case map[string]any:
			src := firstNonEmpty(str(x["data"]), str(x["dataUrl"]), str(x["url"]))
			if src == "" {
				continue
			}
			out = append(out, domain.Image{Src: src, Name: str(x["name"])})
		}
	}
	return out
}

func styling(v any) domain.Styling {
	var s domain.Styling
	switch x := v.(type) {
	case nil:
		return domain.DefaultStyling()
	case string:
		if err := json.Unmarshal([]byte(x), &s); err != nil {
			return domain.DefaultStyling()
		}
	case []byte:
		if err := json.Unmarshal(x, &s); err != nil {
			return domain.DefaultStyling()
		}
	case map[string]any:
		s = domain.Styling{
			Background:  str(x["backgroundColor"]),
			Border:      str(x["borderColor"]),
			Title:       str(x["titleColor"]),
			Company:     str(x["companyColor"]),
			Description: str(x["descriptionColor"]),
			Date:        str(x["dateColor"]),
		}
	case domain.Styling:
		s = x
	default:
		return domain.DefaultStyling()
	}
	return s.Complete()
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func timestamp(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	case float64:
		// epoch milliseconds, as written by browsers
		return time.UnixMilli(int64(x)).UTC(), x > 0
	case int64:
		return time.UnixMilli(x).UTC(), x > 0
	}
	return time.Time{}, false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
