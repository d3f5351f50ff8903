// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search dispatches paper queries to the configured sources,
// aggregates what comes back, and reports per-source diagnostics.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-aggregator/internal/aggregate"
	"github.com/pdiddy/paper-aggregator/internal/apperr"
	"github.com/pdiddy/paper-aggregator/internal/metrics"
	"github.com/pdiddy/paper-aggregator/pkg/types"
)

// Source runs one fetch, parse, and normalize sequence against a single
// provider. Any error fails the whole sequence for that call.
type Source interface {
	Name() string
	Search(ctx context.Context, q Query, maxResults int) ([]types.Paper, error)
	Recent(ctx context.Context, from, to time.Time, maxResults int) ([]types.Paper, error)
}

// Query is what a source matches on. Either field may be empty, not both.
type Query struct {
	Text   string
	Author string
}

// SourceAll selects every configured source.
const SourceAll = "all"

// validSources are the accepted source filter values, lowercase.
var validSources = []any{SourceAll, "arxiv", "ssrn"}

// DaysPerMonth converts a lookback in months into days.
const DaysPerMonth = 30

// SearchRequest is a free-text and/or author query across the selected
// sources.
type SearchRequest struct {
	Query      string
	Author     string
	Source     string
	MaxResults int
	// Timeout bounds the whole call when positive.
	Timeout time.Duration
}

// RecentRequest asks for everything published in the last MonthsBack months.
type RecentRequest struct {
	MonthsBack int
	Source     string
	MaxResults int
	Timeout    time.Duration
}

// Result holds the fields shared by both response shapes.
type Result struct {
	SourcesSearched     []string          `json:"sources_searched" yaml:"sources_searched"`
	TotalFound          int               `json:"total_found" yaml:"total_found"`
	TotalBeforeLimit    int               `json:"total_before_limit" yaml:"total_before_limit"`
	Papers              []types.Paper     `json:"papers" yaml:"papers"`
	SourceBreakdown     map[string]int    `json:"source_breakdown" yaml:"source_breakdown"`
	DuplicatesRemoved   int               `json:"duplicates_removed" yaml:"duplicates_removed"`
	DeduplicationMethod string            `json:"deduplication_method" yaml:"deduplication_method"`
	SourceErrors        map[string]string `json:"source_errors" yaml:"source_errors"`
	SuccessfulSources   []string          `json:"successful_sources" yaml:"successful_sources"`
}

// SearchResponse is returned by Orchestrator.Search.
type SearchResponse struct {
	SearchQuery string `json:"search_query" yaml:"search_query"`
	Author      string `json:"author,omitempty" yaml:"author,omitempty"`
	Result      `yaml:",inline"`
}

// DateRange is the inclusive window of a recent-papers call, as YYYY-MM-DD.
type DateRange struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// RecentResponse is returned by Orchestrator.Recent.
type RecentResponse struct {
	SearchQuery       string         `json:"search_query" yaml:"search_query"`
	MonthsBack        int            `json:"months_back" yaml:"months_back"`
	DateRange         DateRange      `json:"date_range" yaml:"date_range"`
	Result            `yaml:",inline"`
	CategoryBreakdown CategoryCounts `json:"category_breakdown" yaml:"category_breakdown"`
}

// Orchestrator fans requests out to Sources. Now drives the recent window;
// Defaults supplies the limit when a request carries none.
type Orchestrator struct {
	Sources  []Source
	Logger   *zap.Logger
	Now      func() time.Time
	Defaults types.QueryDefaults
}

// NewOrchestrator returns an orchestrator over sources using the wall clock.
func NewOrchestrator(sources []Source, defaults types.QueryDefaults, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		Sources:  sources,
		Logger:   logger,
		Now:      time.Now,
		Defaults: defaults,
	}
}

// Search runs a free-text query, optionally restricted to an author. An
// author alone is enough. Validation failures are returned as errors;
// source failures are reported in SourceErrors.
func (o *Orchestrator) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	author := strings.TrimSpace(req.Author)
	source, err := validateCommon(req.Source, validation.Validate(query,
		validation.When(author == "", validation.Required.Error("query cannot be empty"))))
	if err != nil {
		metrics.ObserveRequest("search", err)
		return nil, err
	}
	limit := orDefault(req.MaxResults, o.Defaults.SearchMaxResults, 20)

	log := o.logger().With(
		zap.String("request_id", uuid.NewString()),
		zap.String("operation", "search"),
		zap.String("query", query),
		zap.String("author", author),
		zap.String("source", source),
		zap.Int("max_results", limit),
	)
	log.Info("search started")

	ctx, cancel := withTimeout(ctx, req.Timeout)
	defer cancel()

	res := o.dispatch(ctx, log, o.selectSources(source), func(ctx context.Context, s Source) ([]types.Paper, error) {
		return s.Search(ctx, Query{Text: query, Author: author}, limit)
	}, limit)

	log.Info("search finished",
		zap.Int("total_found", res.TotalFound),
		zap.Int("duplicates_removed", res.DuplicatesRemoved),
		zap.Int("source_errors", len(res.SourceErrors)))
	metrics.ObserveRequest("search", nil)

	return &SearchResponse{SearchQuery: query, Author: author, Result: res}, nil
}

// Recent returns papers from the last MonthsBack months across every
// subject area. The window is MonthsBack*30 days ending now.
func (o *Orchestrator) Recent(ctx context.Context, req RecentRequest) (*RecentResponse, error) {
	source, err := validateCommon(req.Source, validation.Validate(req.MonthsBack,
		validation.Required.Error("months_back must be a positive integer"),
		validation.Min(1).Error("months_back must be a positive integer")))
	if err != nil {
		metrics.ObserveRequest("recent", err)
		return nil, err
	}
	limit := orDefault(req.MaxResults, o.Defaults.RecentMaxResults, 50)

	to := o.now()
	from := to.AddDate(0, 0, -req.MonthsBack*DaysPerMonth)

	log := o.logger().With(
		zap.String("request_id", uuid.NewString()),
		zap.String("operation", "recent"),
		zap.Int("months_back", req.MonthsBack),
		zap.String("source", source),
		zap.Int("max_results", limit),
	)
	log.Info("recent started", zap.Time("from", from), zap.Time("to", to))

	ctx, cancel := withTimeout(ctx, req.Timeout)
	defer cancel()

	res := o.dispatch(ctx, log, o.selectSources(source), func(ctx context.Context, s Source) ([]types.Paper, error) {
		return s.Recent(ctx, from, to, limit)
	}, limit)

	log.Info("recent finished",
		zap.Int("total_found", res.TotalFound),
		zap.Int("duplicates_removed", res.DuplicatesRemoved),
		zap.Int("source_errors", len(res.SourceErrors)))
	metrics.ObserveRequest("recent", nil)

	return &RecentResponse{
		SearchQuery: fmt.Sprintf("All recent papers from the last %d months", req.MonthsBack),
		MonthsBack:  req.MonthsBack,
		DateRange: DateRange{
			Start: from.Format(time.DateOnly),
			End:   to.Format(time.DateOnly),
		},
		Result:            res,
		CategoryBreakdown: CategoryBreakdown(res.Papers),
	}, nil
}

// Counter is a source that can report how many records match a query
// without fetching them.
type Counter interface {
	Count(ctx context.Context, q Query) (int, error)
}

// CacheClearer is a source that keeps downloaded data between calls.
type CacheClearer interface {
	ClearCache()
}

// CountResponse is returned by Orchestrator.Count.
type CountResponse struct {
	SearchQuery  string            `json:"search_query" yaml:"search_query"`
	Author       string            `json:"author,omitempty" yaml:"author,omitempty"`
	Totals       map[string]int    `json:"total_available" yaml:"total_available"`
	SourceErrors map[string]string `json:"source_errors" yaml:"source_errors"`
}

// Count reports the total number of matches held by each selected source
// that supports counting. Sources without a count are left out.
func (o *Orchestrator) Count(ctx context.Context, req SearchRequest) (*CountResponse, error) {
	query := strings.TrimSpace(req.Query)
	author := strings.TrimSpace(req.Author)
	source, err := validateCommon(req.Source, validation.Validate(query,
		validation.When(author == "", validation.Required.Error("query cannot be empty"))))
	if err != nil {
		metrics.ObserveRequest("count", err)
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, req.Timeout)
	defer cancel()

	resp := &CountResponse{
		SearchQuery:  query,
		Author:       author,
		Totals:       map[string]int{},
		SourceErrors: map[string]string{},
	}
	log := o.logger().With(zap.String("request_id", uuid.NewString()), zap.String("operation", "count"))
	for _, s := range o.selectSources(source) {
		c, ok := s.(Counter)
		if !ok {
			continue
		}
		n, err := c.Count(ctx, Query{Text: query, Author: author})
		if err != nil {
			resp.SourceErrors[s.Name()] = err.Error()
			log.Warn("count failed", zap.String("source_name", s.Name()), zap.Error(err))
			continue
		}
		resp.Totals[s.Name()] = n
	}
	metrics.ObserveRequest("count", nil)
	return resp, nil
}

// ClearCaches drops downloaded data held by any source and returns the
// names of the sources that were cleared.
func (o *Orchestrator) ClearCaches() []string {
	cleared := []string{}
	for _, s := range o.Sources {
		if c, ok := s.(CacheClearer); ok {
			c.ClearCache()
			cleared = append(cleared, s.Name())
		}
	}
	o.logger().Info("source caches cleared", zap.Strings("sources", cleared))
	return cleared
}

type outcome struct {
	papers []types.Paper
	err    error
}

// dispatch runs call against every source concurrently, then aggregates
// the successful results in source order.
func (o *Orchestrator) dispatch(ctx context.Context, log *zap.Logger, sources []Source, call func(context.Context, Source) ([]types.Paper, error), limit int) Result {
	outcomes := make([]outcome, len(sources))
	var wg sync.WaitGroup
	for i, s := range sources {
		wg.Add(1)
		go func(i int, s Source) {
			defer wg.Done()
			start := time.Now()
			papers, err := call(ctx, s)
			outcomes[i] = outcome{papers: papers, err: err}
			log.Debug("source finished",
				zap.String("source_name", s.Name()),
				zap.Int("papers", len(papers)),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
		}(i, s)
	}
	wg.Wait()

	res := Result{
		SourcesSearched:     []string{},
		SourceBreakdown:     map[string]int{},
		SourceErrors:        map[string]string{},
		SuccessfulSources:   []string{},
		DeduplicationMethod: aggregate.Method,
	}

	var all []types.Paper
	for i, s := range sources {
		name := s.Name()
		if err := outcomes[i].err; err != nil {
			res.SourceErrors[name] = err.Error()
			log.Warn("source failed",
				zap.String("source_name", name),
				zap.String("kind", errorKind(err)),
				zap.Error(err))
			continue
		}
		res.SourcesSearched = append(res.SourcesSearched, name)
		res.SuccessfulSources = append(res.SuccessfulSources, name)
		res.SourceBreakdown[name] = len(outcomes[i].papers)
		all = append(all, outcomes[i].papers...)
	}

	papers, stats := aggregate.Aggregate(all, limit)
	res.Papers = papers
	res.TotalFound = len(papers)
	res.TotalBeforeLimit = stats.TotalBeforeLimit
	res.DuplicatesRemoved = stats.DuplicatesRemoved
	return res
}

// selectSources returns the sources matching the lowercase filter, in
// configuration order.
func (o *Orchestrator) selectSources(filter string) []Source {
	if filter == SourceAll {
		return o.Sources
	}
	var out []Source
	for _, s := range o.Sources {
		if strings.EqualFold(s.Name(), filter) {
			out = append(out, s)
		}
	}
	return out
}

// validateCommon folds the operation-specific check with the source filter
// check and returns the normalized filter.
func validateCommon(source string, opErr error) (string, error) {
	filter := strings.ToLower(strings.TrimSpace(source))
	if filter == "" {
		filter = SourceAll
	}
	if opErr != nil {
		return "", apperr.Validation("%v", opErr)
	}
	err := validation.Validate(filter, validation.In(validSources...).
		Error(fmt.Sprintf("Invalid source %q: must be one of all, arxiv, ssrn", source)))
	if err != nil {
		return "", apperr.Validation("%v", err)
	}
	return filter, nil
}

func errorKind(err error) string {
	if k := apperr.KindOf(err); k != "" {
		return string(k)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return string(apperr.KindTransient)
	}
	return "unknown"
}

func orDefault(v, configured, builtin int) int {
	if v > 0 {
		return v
	}
	if configured > 0 {
		return configured
	}
	return builtin
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}
