// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"errors"
	"time"
)

// Display names of the supported sources. These are the values carried in
// Paper.Source and used as keys in per-source diagnostics.
const (
	SourceArxiv = "arXiv"
	SourceSSRN  = "SSRN"
)

// ErrNoDate is returned by EffectiveDate when a paper carries no date at all.
var ErrNoDate = errors.New("at least one date field must be provided")

// Paper is the unified paper record every source is normalized into.
// Optional fields are pointers or nil slices so that absence serializes
// as an explicit null.
type Paper struct {
	// ID is the source-native identifier (arXiv ID or SSRN abstract ID).
	ID string `json:"id" yaml:"id"`

	// Title is the cleaned paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists author display names in source order. Never empty.
	Authors []string `json:"authors" yaml:"authors"`

	// Source names the provider, or every provider after a merge.
	Source SourceSet `json:"source" yaml:"source"`

	// SourceURLs maps each source name to its canonical URL. Set only
	// when Source holds two or more names.
	SourceURLs map[string]string `json:"source_urls,omitempty" yaml:"source_urls,omitempty"`

	// URL is the abstract page of the primary record.
	URL string `json:"url" yaml:"url"`

	// PublicationDate is the legacy single date, used for sorting and as
	// the fallback for EffectiveDate.
	PublicationDate *time.Time `json:"publication_date" yaml:"publication_date"`

	SubmittedDate *time.Time `json:"submitted_date" yaml:"submitted_date"`
	PublishedDate *time.Time `json:"published_date" yaml:"published_date"`
	UpdatedDate   *time.Time `json:"updated_date" yaml:"updated_date"`

	Abstract   *string  `json:"abstract" yaml:"abstract"`
	Categories []string `json:"categories" yaml:"categories"`
	PDFURL     *string  `json:"pdf_url" yaml:"pdf_url"`
	JournalRef *string  `json:"journal_ref" yaml:"journal_ref"`
	DOI        *string  `json:"doi" yaml:"doi"`

	DownloadCount *int     `json:"download_count" yaml:"download_count"`
	Affiliations  []string `json:"affiliations" yaml:"affiliations"`
	PageCount     *int     `json:"page_count" yaml:"page_count"`

	// Comments is the free-text arXiv comment field.
	Comments *string `json:"comments" yaml:"comments"`

	// SSRN-only labels and flags.
	AbstractType      *string `json:"abstract_type" yaml:"abstract_type"`
	PublicationStatus *string `json:"publication_status" yaml:"publication_status"`
	IsPaid            *bool   `json:"is_paid" yaml:"is_paid"`
	IsApproved        *bool   `json:"is_approved" yaml:"is_approved"`
}

// EffectiveDate returns the latest of the submitted, published, and
// updated dates. When none of them is set it falls back to
// PublicationDate, and returns ErrNoDate when that is missing too.
func (p Paper) EffectiveDate() (time.Time, error) {
	var latest time.Time
	found := false
	for _, d := range []*time.Time{p.SubmittedDate, p.PublishedDate, p.UpdatedDate} {
		if d == nil {
			continue
		}
		if !found || d.After(latest) {
			latest = *d
			found = true
		}
	}
	if found {
		return latest, nil
	}
	if p.PublicationDate != nil {
		return *p.PublicationDate, nil
	}
	return time.Time{}, ErrNoDate
}

// MarshalJSON adds the derived effective_date to the record fields. A paper
// without any date serializes effective_date as null.
func (p Paper) MarshalJSON() ([]byte, error) {
	type plain Paper
	var eff *time.Time
	if t, err := p.EffectiveDate(); err == nil {
		eff = &t
	}
	return json.Marshal(struct {
		plain
		EffectiveDate *time.Time `json:"effective_date"`
	}{plain(p), eff})
}

// SourceSet is a non-empty ordered set of source names. It renders as a
// bare string when it holds one name and as a list otherwise.
type SourceSet []string

// NewSourceSet builds a set from names, dropping duplicates and empty names
// while keeping first-seen order.
func NewSourceSet(names ...string) SourceSet {
	var s SourceSet
	return s.Add(names...)
}

// Add returns the set extended with any names it does not already hold.
func (s SourceSet) Add(names ...string) SourceSet {
	out := append(SourceSet(nil), s...)
	for _, n := range names {
		if n == "" || out.Contains(n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Contains reports whether name is in the set.
func (s SourceSet) Contains(name string) bool {
	for _, n := range s {
		if n == name {
			return true
		}
	}
	return false
}

// IsMulti reports whether the set came from a merge of several sources.
func (s SourceSet) IsMulti() bool { return len(s) > 1 }

// String joins the names with commas.
func (s SourceSet) String() string {
	switch len(s) {
	case 0:
		return ""
	case 1:
		return s[0]
	}
	out := s[0]
	for _, n := range s[1:] {
		out += "," + n
	}
	return out
}

func (s SourceSet) MarshalJSON() ([]byte, error) {
	switch len(s) {
	case 0:
		return []byte("null"), nil
	case 1:
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}

func (s *SourceSet) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = NewSourceSet(one)
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = NewSourceSet(many...)
	return nil
}

// MarshalYAML mirrors MarshalJSON for query files.
func (s SourceSet) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []string(s), nil
}

// UnmarshalYAML accepts a scalar or a sequence.
func (s *SourceSet) UnmarshalYAML(unmarshal func(any) error) error {
	var one string
	if err := unmarshal(&one); err == nil {
		*s = NewSourceSet(one)
		return nil
	}
	var many []string
	if err := unmarshal(&many); err != nil {
		return err
	}
	*s = NewSourceSet(many...)
	return nil
}
