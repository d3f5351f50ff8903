// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-aggregator/internal/arxiv"
	"github.com/pdiddy/paper-aggregator/internal/normalize"
	"github.com/pdiddy/paper-aggregator/internal/ssrn"
	"github.com/pdiddy/paper-aggregator/pkg/types"
)

// ArxivSource queries the arXiv API.
type ArxivSource struct {
	Client     *arxiv.Client
	Parser     *arxiv.Parser
	Normalizer *normalize.Normalizer
}

func (s *ArxivSource) Name() string { return types.SourceArxiv }

// Search matches every query term against all arXiv fields, and the
// author against au:.
func (s *ArxivSource) Search(ctx context.Context, q Query, maxResults int) ([]types.Paper, error) {
	return s.run(ctx, arxiv.Request{Query: q.Text, Author: q.Author, MaxResults: min(maxResults, arxiv.MaxPageSize)})
}

// Count reports how many arXiv entries match the query, regardless of
// any result limit.
func (s *ArxivSource) Count(ctx context.Context, q Query) (int, error) {
	return s.Client.TotalCount(ctx, arxiv.Request{Query: q.Text, Author: q.Author})
}

// Recent lists submissions in [from, to] with no subject filter.
func (s *ArxivSource) Recent(ctx context.Context, from, to time.Time, maxResults int) ([]types.Paper, error) {
	return s.run(ctx, arxiv.Request{From: from, To: to, MaxResults: min(maxResults, arxiv.MaxPageSize)})
}

func (s *ArxivSource) run(ctx context.Context, req arxiv.Request) ([]types.Paper, error) {
	raw, err := s.Client.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	records, err := s.Parser.Parse(raw)
	if err != nil {
		return nil, err
	}
	out := make([]types.Paper, 0, len(records))
	for _, r := range records {
		p, err := s.Normalizer.Arxiv(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// SSRNSource queries the SSRN papers API, filtering client-side.
type SSRNSource struct {
	Client     *ssrn.Client
	Parser     *ssrn.Parser
	Normalizer *normalize.Normalizer
}

func (s *SSRNSource) Name() string { return types.SourceSSRN }

// Search keeps papers whose title contains the query text and, when set,
// that list a matching author.
func (s *SSRNSource) Search(ctx context.Context, q Query, maxResults int) ([]types.Paper, error) {
	return s.run(ctx, ssrn.Request{Query: q.Text, Author: q.Author, MaxResults: maxResults})
}

// ClearCache drops the downloaded SSRN dataset.
func (s *SSRNSource) ClearCache() {
	s.Client.ClearCache()
}

// Recent keeps papers approved in [from, to].
func (s *SSRNSource) Recent(ctx context.Context, from, to time.Time, maxResults int) ([]types.Paper, error) {
	return s.run(ctx, ssrn.Request{From: from, To: to, MaxResults: maxResults})
}

func (s *SSRNSource) run(ctx context.Context, req ssrn.Request) ([]types.Paper, error) {
	raw, err := s.Client.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	records, err := s.Parser.Parse(raw)
	if err != nil {
		return nil, err
	}
	out := make([]types.Paper, 0, len(records))
	for _, r := range records {
		p, err := s.Normalizer.SSRN(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// NewSources builds the arXiv and SSRN sources from cfg, in dispatch order.
func NewSources(cfg types.Config, n *normalize.Normalizer, l *zap.Logger) []Source {
	return []Source{
		&ArxivSource{
			Client:     arxiv.NewClient(cfg.HTTP, cfg.Arxiv, l),
			Parser:     arxiv.NewParser(l),
			Normalizer: n,
		},
		&SSRNSource{
			Client:     ssrn.NewClient(cfg.HTTP, cfg.SSRN, l),
			Parser:     ssrn.NewParser(l),
			Normalizer: n,
		},
	}
}
