// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate merges papers that share a normalized title, orders
// them by recency, and applies the result limit.
package aggregate

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/paper-aggregator/internal/metrics"
	"github.com/pdiddy/paper-aggregator/pkg/types"
)

// Method identifies the deduplication strategy in responses.
const Method = "title_normalization"

// Stats describes one aggregation run.
type Stats struct {
	// DuplicatesRemoved is the sum over groups of (group size - 1).
	DuplicatesRemoved int `json:"duplicates_removed" yaml:"duplicates_removed"`

	// Method is always the Method constant.
	Method string `json:"aggregation_method" yaml:"aggregation_method"`

	// TotalBeforeLimit is the number of records after merging, before truncation.
	TotalBeforeLimit int `json:"total_before_limit" yaml:"total_before_limit"`
}

// Aggregate groups papers by TitleKey, merges each group, sorts by
// publication date (newest first), and keeps the first maxResults. A
// non-positive maxResults keeps everything. The input is not modified.
func Aggregate(papers []types.Paper, maxResults int) ([]types.Paper, Stats) {
	groups := Group(papers)

	out := make([]types.Paper, 0, len(groups))
	removed := 0
	for _, g := range groups {
		out = append(out, Merge(g))
		removed += len(g) - 1
	}

	SortByDate(out)

	stats := Stats{
		DuplicatesRemoved: removed,
		Method:            Method,
		TotalBeforeLimit:  len(out),
	}
	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	metrics.ObserveAggregation(removed, len(out))
	return out, stats
}

// Group partitions papers by TitleKey. Groups appear in first-seen key
// order and keep input order inside. Titles that reduce to an empty key
// share one group.
func Group(papers []types.Paper) [][]types.Paper {
	index := make(map[string]int)
	var groups [][]types.Paper
	for _, p := range papers {
		key := TitleKey(p.Title)
		if i, ok := index[key]; ok {
			groups[i] = append(groups[i], p)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, []types.Paper{p})
	}
	return groups
}

// TitleKey returns the lowercased title with everything except letters,
// digits, underscores and whitespace removed, and whitespace collapsed.
func TitleKey(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(norm.NFC.String(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Merge folds a group of papers describing the same work into one record.
// Identity (id, title, authors, url) and dates come from the primary: the
// member with the latest publication date, earliest in the group on ties.
// Sources are unioned in first-seen order; other metadata takes the first
// value present in group order, and list fields are unioned.
//
// Merge panics on an empty group.
func Merge(group []types.Paper) types.Paper {
	if len(group) == 0 {
		panic("aggregate: merge of an empty group")
	}
	if len(group) == 1 {
		return group[0]
	}

	merged := group[primaryIndex(group)]
	merged.Authors = append([]string(nil), merged.Authors...)

	var sources types.SourceSet
	urls := make(map[string]string)
	for _, p := range group {
		if p.Source.IsMulti() {
			for _, name := range p.Source {
				if u, ok := p.SourceURLs[name]; ok {
					if _, seen := urls[name]; !seen {
						urls[name] = u
					}
				}
			}
		}
		for _, name := range p.Source {
			sources = sources.Add(name)
			if _, seen := urls[name]; !seen {
				urls[name] = p.URL
			}
		}
	}

	merged.Source = sources
	merged.SourceURLs = nil
	if sources.IsMulti() {
		merged.SourceURLs = urls
	}

	merged.Abstract = firstString(group, func(p types.Paper) *string { return p.Abstract })
	merged.PDFURL = firstString(group, func(p types.Paper) *string { return p.PDFURL })
	merged.JournalRef = firstString(group, func(p types.Paper) *string { return p.JournalRef })
	merged.DOI = firstString(group, func(p types.Paper) *string { return p.DOI })
	merged.Comments = firstString(group, func(p types.Paper) *string { return p.Comments })
	merged.AbstractType = firstString(group, func(p types.Paper) *string { return p.AbstractType })
	merged.PublicationStatus = firstString(group, func(p types.Paper) *string { return p.PublicationStatus })

	merged.DownloadCount = firstInt(group, func(p types.Paper) *int { return p.DownloadCount })
	merged.PageCount = firstInt(group, func(p types.Paper) *int { return p.PageCount })

	merged.IsPaid = firstBool(group, func(p types.Paper) *bool { return p.IsPaid })
	merged.IsApproved = firstBool(group, func(p types.Paper) *bool { return p.IsApproved })

	merged.Categories = union(group, func(p types.Paper) []string { return p.Categories })
	merged.Affiliations = union(group, func(p types.Paper) []string { return p.Affiliations })

	return merged
}

// primaryIndex returns the member with the latest publication date.
// Members without a date rank below every dated member.
func primaryIndex(group []types.Paper) int {
	best := 0
	for i := 1; i < len(group); i++ {
		if dateAfter(group[i].PublicationDate, group[best].PublicationDate) {
			best = i
		}
	}
	return best
}

// SortByDate orders papers by publication date, newest first, keeping the
// relative order of equal dates. Missing dates sort last.
func SortByDate(papers []types.Paper) {
	sort.SliceStable(papers, func(i, j int) bool {
		return dateAfter(papers[i].PublicationDate, papers[j].PublicationDate)
	})
}

// dateAfter reports whether a is strictly later than b, with nil as the
// earliest possible value.
func dateAfter(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	}
	return a.After(*b)
}

func firstString(group []types.Paper, get func(types.Paper) *string) *string {
	for _, p := range group {
		if v := get(p); v != nil {
			return v
		}
	}
	return nil
}

func firstInt(group []types.Paper, get func(types.Paper) *int) *int {
	for _, p := range group {
		if v := get(p); v != nil {
			return v
		}
	}
	return nil
}

func firstBool(group []types.Paper, get func(types.Paper) *bool) *bool {
	for _, p := range group {
		if v := get(p); v != nil {
			return v
		}
	}
	return nil
}

// union concatenates the list field across the group, dropping repeats.
// It returns nil when no member carries the field.
func union(group []types.Paper, get func(types.Paper) []string) []string {
	var out []string
	seen := make(map[string]bool)
	present := false
	for _, p := range group {
		items := get(p)
		if items == nil {
			continue
		}
		present = true
		for _, item := range items {
			if !seen[item] {
				seen[item] = true
				out = append(out, item)
			}
		}
	}
	if !present {
		return nil
	}
	if out == nil {
		out = []string{}
	}
	return out
}
