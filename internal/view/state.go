// Package view tracks per-request render state: which records are expanded
// and which tag filter is active. State round-trips through the URL query.
package view

import (
	"net/url"
	"slices"
	"strings"

	"github.com/heartmarshall/journalfeed/internal/domain"
)

// Query parameter names.
const (
	ParamExpanded = "expanded"
	ParamTag      = "tag"
)

// State is the render state of one feed page. The zero value is the initial
// state: everything collapsed, no filter.
type State struct {
	expanded map[string]struct{}
	tag      string
}

// IsExpanded reports whether the record with id is expanded.
func (s State) IsExpanded(id string) bool {
	_, ok := s.expanded[id]
	return ok
}

// Toggle flips the expansion of id and returns the new state. The receiver is
// left unchanged.
func (s State) Toggle(id string) State {
	next := s.clone()
	if _, ok := next.expanded[id]; ok {
		delete(next.expanded, id)
	} else {
		next.expanded[id] = struct{}{}
	}
	return next
}

// Filter returns the active tag, or "" when unfiltered.
func (s State) Filter() string { return s.tag }

// Filtered reports whether a tag filter is active.
func (s State) Filtered() bool { return s.tag != "" }

// SetFilter replaces any active filter with tag. Expansion is kept.
func (s State) SetFilter(tag string) State {
	next := s.clone()
	next.tag = strings.TrimSpace(tag)
	return next
}

// ClearFilter returns the unfiltered state. Expansion is kept.
func (s State) ClearFilter() State {
	next := s.clone()
	next.tag = ""
	return next
}

// Expanded returns the expanded identifiers in sorted order.
func (s State) Expanded() []string {
	ids := make([]string, 0, len(s.expanded))
	for id := range s.expanded {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Equal reports whether both states expand the same records under the same filter.
func (s State) Equal(o State) bool {
	return s.tag == o.tag && slices.Equal(s.Expanded(), o.Expanded())
}

func (s State) clone() State {
	next := State{expanded: make(map[string]struct{}, len(s.expanded)+1), tag: s.tag}
	for id := range s.expanded {
		next.expanded[id] = struct{}{}
	}
	return next
}

// Visible returns the records shown under the active filter, in collection
// order. The input slice is not modified.
func Visible[R domain.Record](s State, records []R) []R {
	if s.tag == "" {
		return records
	}
	out := make([]R, 0, len(records))
	for _, r := range records {
		if domain.HasTag(r, s.tag) {
			out = append(out, r)
		}
	}
	return out
}

// Parse reads state from a URL query. Expanded ids are comma separated and
// may repeat across parameters.
func Parse(q url.Values) State {
	s := State{expanded: make(map[string]struct{})}
	for _, v := range q[ParamExpanded] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				s.expanded[id] = struct{}{}
			}
		}
	}
	s.tag = strings.TrimSpace(q.Get(ParamTag))
	return s
}

// Values encodes the state as query parameters. Empty parts are omitted.
func (s State) Values() url.Values {
	q := url.Values{}
	if ids := s.Expanded(); len(ids) > 0 {
		q.Set(ParamExpanded, strings.Join(ids, ","))
	}
	if s.tag != "" {
		q.Set(ParamTag, s.tag)
	}
	return q
}

// URL returns path with the state appended as a query string.
func (s State) URL(path string) string {
	enc := s.Values().Encode()
	if enc == "" {
		return path
	}
	return path + "?" + enc
}
