// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ssrn

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-aggregator/internal/apperr"
	"github.com/pdiddy/paper-aggregator/internal/textutil"
	"github.com/pdiddy/paper-aggregator/pkg/types"
)

// AbstractURL is the page URL used when SSRN omits one.
const AbstractURL = "https://papers.ssrn.com/sol3/papers.cfm?abstract_id=%s"

// Parser converts SSRN JSON envelopes into Papers.
type Parser struct {
	Logger *zap.Logger
}

// NewParser returns a parser logging through logger.
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{Logger: logger.With(zap.String("source", types.SourceSSRN))}
}

// Parse decodes a {"papers": [...]} envelope. A document that is not a
// JSON object fails the call; an element that cannot be decoded is
// skipped and logged.
func (p *Parser) Parse(raw []byte) ([]Paper, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperr.Parse(types.SourceSSRN, err, "invalid JSON response")
	}

	var items []json.RawMessage
	if data, ok := env["papers"]; ok {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, apperr.Parse(types.SourceSSRN, err, "papers is not a list")
		}
	}
	if len(items) == 0 {
		p.logger().Warn("no papers in SSRN response")
		return nil, nil
	}

	papers := make([]Paper, 0, len(items))
	for i, item := range items {
		paper, err := p.convert(item)
		if err != nil {
			p.logger().Warn("skipping malformed SSRN paper", zap.Int("index", i), zap.Error(err))
			continue
		}
		papers = append(papers, paper)
	}
	return papers, nil
}

func (p *Parser) convert(item json.RawMessage) (Paper, error) {
	var r rawPaper
	if err := json.Unmarshal(item, &r); err != nil {
		return Paper{}, err
	}
	names, err := r.authorNames()
	if err != nil {
		return Paper{}, fmt.Errorf("authors of paper %q: %w", r.ID, err)
	}

	paper := Paper{
		ID:                string(r.ID),
		Title:             textutil.CleanHTML(r.Title),
		Authors:           textutil.CleanList(names),
		Downloads:         int(r.Downloads),
		URL:               textutil.CollapseSpace(r.URL),
		Affiliations:      textutil.CleanList(r.affiliationNames()),
		AbstractType:      textutil.CollapseSpace(r.AbstractType),
		PublicationStatus: textutil.CollapseSpace(r.PublicationStatus),
		IsPaid:            r.IsPaid,
		PageCount:         int(r.PageCount),
		IsApproved:        r.IsApproved == nil || *r.IsApproved,
		Reference:         textutil.CollapseSpace(r.Reference),
	}
	if t, ok := r.approved(); ok {
		paper.Approved = &t
	} else if r.ApprovedDate != "" {
		p.logger().Warn("unparseable SSRN approval date",
			zap.String("id", paper.ID), zap.String("value", r.ApprovedDate))
	}
	if paper.URL == "" && paper.ID != "" {
		paper.URL = fmt.Sprintf(AbstractURL, paper.ID)
	}
	return paper, nil
}

func (p *Parser) logger() *zap.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return zap.NewNop()
}
