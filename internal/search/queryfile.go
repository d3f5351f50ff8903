// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-aggregator/pkg/types"
)

// Operation names stored in query files.
const (
	OpSearch = "search"
	OpRecent = "recent"
)

// QueryFile is the on-disk representation of a query and its results.
// A saved file can be reloaded and printed, or replayed against the live
// sources.
type QueryFile struct {
	Query   QueryParams   `yaml:"query"`
	Papers  []types.Paper `yaml:"papers"`
	Summary QuerySummary  `yaml:"summary"`
}

// QueryParams stores the request in a serializable form.
type QueryParams struct {
	Operation  string `yaml:"operation"`
	Query      string `yaml:"query,omitempty"`
	Author     string `yaml:"author,omitempty"`
	MonthsBack int    `yaml:"months_back,omitempty"`
	Source     string `yaml:"source"`
	MaxResults int    `yaml:"max_results"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total             int               `yaml:"total"`
	TotalBeforeLimit  int               `yaml:"total_before_limit"`
	DuplicatesRemoved int               `yaml:"duplicates_removed"`
	SuccessfulSources []string          `yaml:"successful_sources,omitempty"`
	SourceErrors      map[string]string `yaml:"source_errors,omitempty"`
	Timestamp         time.Time         `yaml:"timestamp"`
}

// SearchParams records a search request.
func SearchParams(req SearchRequest) QueryParams {
	return QueryParams{Operation: OpSearch, Query: req.Query, Author: req.Author, Source: req.Source, MaxResults: req.MaxResults}
}

// RecentParams records a recent-papers request.
func RecentParams(req RecentRequest) QueryParams {
	return QueryParams{Operation: OpRecent, MonthsBack: req.MonthsBack, Source: req.Source, MaxResults: req.MaxResults}
}

// WriteQueryFile saves query parameters and results to a YAML file.
func WriteQueryFile(path string, params QueryParams, res Result, at time.Time) error {
	qf := QueryFile{
		Query:  params,
		Papers: res.Papers,
		Summary: QuerySummary{
			Total:             res.TotalFound,
			TotalBeforeLimit:  res.TotalBeforeLimit,
			DuplicatesRemoved: res.DuplicatesRemoved,
			SuccessfulSources: res.SuccessfulSources,
			SourceErrors:      res.SourceErrors,
			Timestamp:         at.UTC(),
		},
	}
	if len(qf.Summary.SourceErrors) == 0 {
		qf.Summary.SourceErrors = nil
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// Result rebuilds the response fields recorded in the file.
func (qf *QueryFile) Result() Result {
	return Result{
		Papers:            qf.Papers,
		TotalFound:        qf.Summary.Total,
		TotalBeforeLimit:  qf.Summary.TotalBeforeLimit,
		DuplicatesRemoved: qf.Summary.DuplicatesRemoved,
		SuccessfulSources: qf.Summary.SuccessfulSources,
		SourcesSearched:   qf.Summary.SuccessfulSources,
		SourceErrors:      qf.Summary.SourceErrors,
	}
}

// Replay reruns the stored request through o.
func (p QueryParams) Replay(ctx context.Context, o *Orchestrator) (Result, error) {
	switch p.Operation {
	case OpSearch:
		resp, err := o.Search(ctx, SearchRequest{Query: p.Query, Author: p.Author, Source: p.Source, MaxResults: p.MaxResults})
		if err != nil {
			return Result{}, err
		}
		return resp.Result, nil
	case OpRecent:
		resp, err := o.Recent(ctx, RecentRequest{MonthsBack: p.MonthsBack, Source: p.Source, MaxResults: p.MaxResults})
		if err != nil {
			return Result{}, err
		}
		return resp.Result, nil
	}
	return Result{}, fmt.Errorf("unknown operation %q in query file", p.Operation)
}
