// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize maps source records into the unified paper record.
package normalize

import (
	"strings"
	"time"

	"github.com/pdiddy/paper-aggregator/internal/apperr"
	"github.com/pdiddy/paper-aggregator/internal/arxiv"
	"github.com/pdiddy/paper-aggregator/internal/ssrn"
	"github.com/pdiddy/paper-aggregator/internal/textutil"
	"github.com/pdiddy/paper-aggregator/pkg/types"
)

// UnknownAuthor stands in for an SSRN author list that cleans down to nothing.
const UnknownAuthor = "Unknown Author"

// Normalizer converts source records. Now supplies the publication date of
// SSRN papers without an approval date.
type Normalizer struct {
	Now func() time.Time
}

// New returns a normalizer using the wall clock.
func New() *Normalizer {
	return &Normalizer{Now: time.Now}
}

// Arxiv normalizes one arXiv record. It fails when the identifier, title,
// or author list is empty before or after cleaning.
func (n *Normalizer) Arxiv(p arxiv.Paper) (types.Paper, error) {
	if err := requireFields(types.SourceArxiv, p.ID, p.Title, p.Authors); err != nil {
		return types.Paper{}, err
	}
	title := textutil.CleanHTML(p.Title)
	if title == "" {
		return types.Paper{}, apperr.Normalization(types.SourceArxiv, "paper %s: title is empty after cleaning", p.ID)
	}
	authors := textutil.CleanList(p.Authors)
	if len(authors) == 0 {
		return types.Paper{}, apperr.Normalization(types.SourceArxiv, "paper %s: no authors after cleaning", p.ID)
	}

	url := strings.TrimSpace(p.AbsURL)
	if url == "" {
		url = "https://arxiv.org/abs/" + p.ID
	}

	return types.Paper{
		ID:              strings.TrimSpace(p.ID),
		Title:           title,
		Authors:         authors,
		Source:          types.NewSourceSet(types.SourceArxiv),
		URL:             url,
		PublicationDate: timePtr(p.Submitted),
		SubmittedDate:   timePtr(p.Submitted),
		UpdatedDate:     timePtr(p.Updated),
		Abstract:        textutil.Optional(textutil.CleanHTML(p.Abstract)),
		Categories:      textutil.CleanList(p.Categories),
		PDFURL:          textutil.Optional(p.PDFURL),
		JournalRef:      textutil.Optional(p.JournalRef),
		DOI:             textutil.Optional(p.DOI),
		Comments:        textutil.Optional(textutil.CollapseSpace(p.Comment)),
	}, nil
}

// SSRN normalizes one SSRN record. An author list that cleans down to
// nothing becomes UnknownAuthor instead of failing.
func (n *Normalizer) SSRN(p ssrn.Paper) (types.Paper, error) {
	if err := requireFields(types.SourceSSRN, p.ID, p.Title, p.Authors); err != nil {
		return types.Paper{}, err
	}
	title := textutil.CleanHTML(p.Title)
	if title == "" {
		return types.Paper{}, apperr.Normalization(types.SourceSSRN, "paper %s: title is empty after cleaning", p.ID)
	}
	authors := textutil.CleanList(p.Authors)
	if len(authors) == 0 {
		authors = []string{UnknownAuthor}
	}

	id := strings.TrimSpace(p.ID)
	url := strings.TrimSpace(p.URL)
	if url == "" {
		url = strings.Replace(ssrn.AbstractURL, "%s", id, 1)
	}

	var published *time.Time
	if p.Approved != nil && !p.Approved.IsZero() {
		published = timePtr(*p.Approved)
	}
	publication := published
	if publication == nil {
		publication = timePtr(n.now())
	}

	return types.Paper{
		ID:                id,
		Title:             title,
		Authors:           authors,
		Source:            types.NewSourceSet(types.SourceSSRN),
		URL:               url,
		PublicationDate:   publication,
		PublishedDate:     published,
		JournalRef:        textutil.Optional(p.Reference),
		DownloadCount:     intPtr(max(p.Downloads, 0)),
		Affiliations:      textutil.CleanList(p.Affiliations),
		PageCount:         intPtr(max(p.PageCount, 0)),
		AbstractType:      textutil.Optional(p.AbstractType),
		PublicationStatus: textutil.Optional(p.PublicationStatus),
		IsPaid:            boolPtr(p.IsPaid),
		IsApproved:        boolPtr(p.IsApproved),
	}, nil
}

func requireFields(source, id, title string, authors []string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return apperr.Normalization(source, "paper has no identifier")
	case strings.TrimSpace(title) == "":
		return apperr.Normalization(source, "paper %s has no title", id)
	case len(authors) == 0:
		return apperr.Normalization(source, "paper %s has no authors", id)
	}
	return nil
}

func (n *Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }
