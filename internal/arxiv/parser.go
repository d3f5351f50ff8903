// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-aggregator/internal/apperr"
	"github.com/pdiddy/paper-aggregator/internal/textutil"
	"github.com/pdiddy/paper-aggregator/pkg/types"
)

// arXiv Atom feed XML structures.
type feed struct {
	XMLName      xml.Name `xml:"feed"`
	TotalResults string   `xml:"totalResults"`
	Entries      []entry  `xml:"entry"`
}

type entry struct {
	ID         string     `xml:"id"`
	Title      string     `xml:"title"`
	Summary    string     `xml:"summary"`
	Published  string     `xml:"published"`
	Updated    string     `xml:"updated"`
	Authors    []author   `xml:"author"`
	Categories []category `xml:"category"`
	Links      []link     `xml:"link"`
	JournalRef string     `xml:"http://arxiv.org/schemas/atom journal_ref"`
	DOI        string     `xml:"http://arxiv.org/schemas/atom doi"`
	Comment    string     `xml:"http://arxiv.org/schemas/atom comment"`
}

type author struct {
	Name string `xml:"name"`
}

type category struct {
	Term string `xml:"term,attr"`
}

type link struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

// Parser converts Atom documents into Papers. Now supplies the fallback
// for unparseable dates.
type Parser struct {
	Logger *zap.Logger
	Now    func() time.Time
}

// NewParser returns a parser using the wall clock.
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{Logger: logger.With(zap.String("source", types.SourceArxiv)), Now: time.Now}
}

// Parse decodes raw into Papers in feed order. An undecodable document
// fails the call; an entry without an identifier is skipped. An arXiv
// error feed is reported as a source error.
func (p *Parser) Parse(raw []byte) ([]Paper, error) {
	f, err := decode(raw)
	if err != nil {
		return nil, err
	}

	papers := make([]Paper, 0, len(f.Entries))
	for i, e := range f.Entries {
		if strings.Contains(e.ID, "/api/errors") {
			return nil, apperr.Source(types.SourceArxiv, nil, "API error: %s", textutil.CollapseSpace(e.Summary))
		}
		paper, ok := p.convert(e)
		if !ok {
			p.logger().Warn("skipping arxiv entry without identifier", zap.Int("index", i))
			continue
		}
		papers = append(papers, paper)
	}
	return papers, nil
}

// TotalResults reads opensearch:totalResults from an Atom document.
func TotalResults(raw []byte) (int, error) {
	f, err := decode(raw)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(f.TotalResults))
	if err != nil {
		return 0, apperr.Parse(types.SourceArxiv, err, "invalid totalResults %q", f.TotalResults)
	}
	return n, nil
}

func decode(raw []byte) (*feed, error) {
	var f feed
	if err := xml.NewDecoder(bytes.NewReader(raw)).Decode(&f); err != nil {
		return nil, apperr.Parse(types.SourceArxiv, err, "invalid XML response")
	}
	return &f, nil
}

func (p *Parser) convert(e entry) (Paper, bool) {
	id := extractArxivID(e.ID)
	if id == "" {
		return Paper{}, false
	}

	paper := Paper{
		ID:         id,
		Title:      textutil.CleanHTML(e.Title),
		Abstract:   textutil.CleanHTML(e.Summary),
		Submitted:  p.parseDate(id, "published", e.Published),
		Updated:    p.parseDate(id, "updated", e.Updated),
		JournalRef: textutil.CollapseSpace(e.JournalRef),
		DOI:        strings.TrimSpace(e.DOI),
		Comment:    textutil.CleanHTML(e.Comment),
	}
	if paper.Title == "" {
		paper.Title = "Untitled"
	}

	for _, a := range e.Authors {
		if name := textutil.CollapseSpace(a.Name); name != "" {
			paper.Authors = append(paper.Authors, name)
		}
	}
	for _, c := range e.Categories {
		if term := strings.TrimSpace(c.Term); term != "" {
			paper.Categories = append(paper.Categories, term)
		}
	}
	for _, l := range e.Links {
		switch {
		case l.Title == "pdf" || l.Type == "application/pdf":
			paper.PDFURL = l.Href
		case strings.Contains(l.Href, "arxiv.org/abs/"):
			paper.AbsURL = l.Href
		}
	}
	if paper.AbsURL == "" {
		paper.AbsURL = "https://arxiv.org/abs/" + id
	}
	return paper, true
}

// parseDate reads an RFC 3339 timestamp, falling back to now.
func (p *Parser) parseDate(id, field, s string) time.Time {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	p.logger().Warn("unparseable arxiv date, using current time",
		zap.String("id", id), zap.String("field", field), zap.String("value", s))
	return p.now()
}

func (p *Parser) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Parser) logger() *zap.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return zap.NewNop()
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041"). URLs without
// an /abs/ segment yield their last path segment.
func extractArxivID(idURL string) string {
	idURL = strings.TrimSpace(idURL)
	var id string
	if idx := strings.Index(idURL, "/abs/"); idx >= 0 {
		id = idURL[idx+len("/abs/"):]
	} else {
		id = idURL[strings.LastIndex(idURL, "/")+1:]
	}

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
