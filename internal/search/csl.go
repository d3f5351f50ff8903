// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-aggregator/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Publisher      string    `yaml:"publisher,omitempty"`
	Keyword        string    `yaml:"keyword,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes papers as a CSL-YAML list to w.
func FormatCSL(papers []types.Paper, w io.Writer) error {
	items := make([]CSLItem, len(papers))
	for i, p := range papers {
		items[i] = toCSLItem(p)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a paper to a CSLItem. Papers with a journal reference
// are typed article-journal; preprints and working papers are articles.
func toCSLItem(p types.Paper) CSLItem {
	item := CSLItem{
		ID:        cslID(p),
		Type:      "article",
		Title:     p.Title,
		URL:       p.URL,
		Publisher: p.Source.String(),
		Keyword:   strings.Join(p.Categories, ", "),
	}
	if p.Abstract != nil {
		item.Abstract = *p.Abstract
	}
	if p.DOI != nil {
		item.DOI = *p.DOI
	}
	if p.JournalRef != nil {
		item.Type = "article-journal"
		item.ContainerTitle = *p.JournalRef
	}

	for _, a := range p.Authors {
		item.Author = append(item.Author, parseAuthorName(a))
	}

	if d := p.PublicationDate; d != nil {
		item.Issued = &CSLDate{
			DateParts: [][]int{{d.Year(), int(d.Month()), d.Day()}},
		}
	}
	return item
}

// cslID prefixes the native identifier with the source it came from so ids
// from different providers never collide.
func cslID(p types.Paper) string {
	if len(p.Source) == 0 {
		return p.ID
	}
	origin := p.Source[0]
	for _, name := range p.Source {
		if u, ok := p.SourceURLs[name]; ok && u == p.URL {
			origin = name
			break
		}
	}
	return strings.ToLower(origin) + ":" + p.ID
}

// parseAuthorName splits a full name string into CSL family/given parts.
// It splits on the last space: everything before is given, the last token
// is family. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
