package domain

// Record is either an Entry or a Post.
type Record interface {
	RecordID() string
	RecordTags() []string
}

// Raw is one decoded record as delivered by a source, keyed by column name.
type Raw map[string]any

// Clone returns a shallow copy so callers can add columns without touching
// the source's map.
func (r Raw) Clone() Raw {
	out := make(Raw, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Change is a single real-time notification from the canonical store.
type Change struct {
	Feed   Feed
	Type   ChangeType
	Record Raw
	// ID of the affected record. For deletes it comes from the old row.
	ID string
}

// HasTag reports whether r carries tag.
func HasTag(r Record, tag string) bool {
	for _, t := range r.RecordTags() {
		if t == tag {
			return true
		}
	}
	return false
}
