// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ssrn

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pdiddy/paper-aggregator/internal/textutil"
)

// Filter selects papers client-side; the SSRN API offers no server-side
// search. Zero fields match everything.
type Filter struct {
	// Text must appear in the tag-stripped title, case-insensitively.
	Text string
	// Author must appear in an author's first, last, or full name.
	Author string
	// From and To bound the approval date, inclusive.
	From time.Time
	To   time.Time
}

// Apply returns the raw papers that match, keeping at most limit of them.
// A non-positive limit keeps every match.
func (f Filter) Apply(items []json.RawMessage, limit int) []json.RawMessage {
	var out []json.RawMessage
	for _, item := range items {
		var r rawPaper
		if err := json.Unmarshal(item, &r); err != nil {
			continue
		}
		if !f.Match(r) {
			continue
		}
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Match reports whether one paper passes every set criterion.
func (f Filter) Match(r rawPaper) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Text)); q != "" {
		title := strings.ToLower(textutil.CleanHTML(r.Title))
		if !strings.Contains(title, q) {
			return false
		}
	}
	if a := strings.ToLower(strings.TrimSpace(f.Author)); a != "" && !f.matchAuthor(r, a) {
		return false
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		approved, ok := r.approved()
		if !ok {
			return false
		}
		if !f.From.IsZero() && approved.Before(truncateDay(f.From)) {
			return false
		}
		if !f.To.IsZero() && approved.After(f.To) {
			return false
		}
	}
	return true
}

func (f Filter) matchAuthor(r rawPaper, needle string) bool {
	var authors []json.RawMessage
	if err := json.Unmarshal(r.Authors, &authors); err != nil {
		names, _ := r.authorNames()
		for _, n := range names {
			if strings.Contains(strings.ToLower(n), needle) {
				return true
			}
		}
		return false
	}
	for _, item := range authors {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if strings.Contains(strings.ToLower(s), needle) {
				return true
			}
			continue
		}
		var a rawAuthor
		if err := json.Unmarshal(item, &a); err != nil {
			continue
		}
		full := strings.TrimSpace(a.FirstName + " " + a.LastName)
		for _, n := range []string{a.FirstName, a.LastName, full} {
			if strings.Contains(strings.ToLower(n), needle) {
				return true
			}
		}
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
