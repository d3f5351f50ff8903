// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/paper-aggregator/internal/apperr"
	"github.com/pdiddy/paper-aggregator/internal/httputil"
	"github.com/pdiddy/paper-aggregator/internal/normalize"
	"github.com/pdiddy/paper-aggregator/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const arxivFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <entry>
    <id>http://arxiv.org/abs/2401.00001v1</id>
    <published>2024-01-10T09:00:00Z</published>
    <updated>2024-01-12T09:00:00Z</updated>
    <title>Machine Learning in Finance</title>
    <summary>An arXiv abstract.</summary>
    <author><name>Jane Doe</name></author>
    <arxiv:doi>10.1234/mlf</arxiv:doi>
    <link href="http://arxiv.org/abs/2401.00001v1" rel="alternate" type="text/html"/>
    <category term="q-fin.CP"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2401.00002v1</id>
    <published>2023-12-01T09:00:00Z</published>
    <updated>2023-12-01T09:00:00Z</updated>
    <title>Graph Neural Networks</title>
    <author><name>John Roe</name></author>
    <category term="cs.LG"/>
  </entry>
</feed>`

const ssrnPage = `{"papers": [
  {"id": 4567890, "title": "Machine Learning in Finance.", "authors": [{"first_name": "Jane", "last_name": "Doe"}],
   "approved_date": "05 Jan 2024", "downloads": 120, "affiliations": "MIT", "url": "https://ssrn.com/abstract=4567890"},
  {"id": 4567891, "title": "Corporate Bond Liquidity", "authors": [{"first_name": "Ann", "last_name": "Lee"}],
   "approved_date": "20 Feb 2024", "downloads": 3}
]}`

func testSources(t *testing.T, arxivURL, ssrnURL string) []Source {
	t.Helper()
	cfg := types.DefaultConfig()
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.Arxiv = types.SourceConfig{BaseURL: arxivURL, MaxAttempts: 2}
	cfg.SSRN.SourceConfig = types.SourceConfig{BaseURL: ssrnURL, MaxAttempts: 2}
	n := &normalize.Normalizer{Now: func() time.Time { return fixedNow }}
	return NewSources(cfg, n, zaptest.NewLogger(t))
}

func TestSourcesEndToEnd(t *testing.T) {
	var arxivQuery string
	ax := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		arxivQuery = r.URL.RawQuery
		w.Write([]byte(arxivFeed))
	}))
	defer ax.Close()
	ss := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("index") != "0" {
			w.Write([]byte(`{"papers": []}`))
			return
		}
		w.Write([]byte(ssrnPage))
	}))
	defer ss.Close()

	o := newOrchestrator(t, testSources(t, ax.URL, ss.URL)...)
	resp, err := o.Search(context.Background(), SearchRequest{Query: "machine learning", MaxResults: 10})
	require.NoError(t, err)

	assert.Contains(t, arxivQuery, "search_query=all:machine+AND+all:learning")
	assert.Empty(t, resp.SourceErrors)
	assert.Equal(t, map[string]int{types.SourceArxiv: 2, types.SourceSSRN: 1}, resp.SourceBreakdown)
	assert.Equal(t, 1, resp.DuplicatesRemoved)
	require.Len(t, resp.Papers, 2)

	merged := resp.Papers[0]
	assert.Equal(t, "Machine Learning in Finance", merged.Title)
	assert.Equal(t, types.SourceSet{types.SourceArxiv, types.SourceSSRN}, merged.Source)
	assert.Equal(t, "https://ssrn.com/abstract=4567890", merged.SourceURLs[types.SourceSSRN])
	assert.Equal(t, "http://arxiv.org/abs/2401.00001v1", merged.SourceURLs[types.SourceArxiv])
	require.NotNil(t, merged.DOI)
	assert.Equal(t, "10.1234/mlf", *merged.DOI)
	assert.Equal(t, []string{"MIT"}, merged.Affiliations)
	require.NotNil(t, merged.DownloadCount)
	assert.Equal(t, 120, *merged.DownloadCount)

	assert.Equal(t, "Graph Neural Networks", resp.Papers[1].Title)
}

func TestSourcesArxivUnavailable(t *testing.T) {
	ax := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ax.Close()
	ss := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ssrnPage))
	}))
	defer ss.Close()

	o := newOrchestrator(t, testSources(t, ax.URL, ss.URL)...)
	resp, err := o.Search(context.Background(), SearchRequest{Query: "liquidity", Source: "all"})
	require.NoError(t, err)

	assert.Equal(t, []string{types.SourceSSRN}, resp.SourcesSearched)
	assert.Contains(t, resp.SourceErrors, types.SourceArxiv)
	require.Len(t, resp.Papers, 1)
	assert.Equal(t, "Corporate Bond Liquidity", resp.Papers[0].Title)
}

func TestArxivSourceNormalizationFailureSinksBatch(t *testing.T) {
	feed := strings.Replace(arxivFeed, "<author><name>John Roe</name></author>", "", 1)
	ax := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feed))
	}))
	defer ax.Close()

	src := testSources(t, ax.URL, "")[0]
	papers, err := src.Search(context.Background(), Query{Text: "anything"}, 5)
	require.Error(t, err)
	assert.Nil(t, papers)
	assert.True(t, apperr.Is(err, apperr.KindNormalization))
}

func TestArxivSourceRecentIsDateOnly(t *testing.T) {
	var rawQuery string
	ax := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte(arxivFeed))
	}))
	defer ax.Close()

	src := testSources(t, ax.URL, "")[0]
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	papers, err := src.Recent(context.Background(), from, to, 5000)
	require.NoError(t, err)
	assert.Len(t, papers, 2)
	assert.Contains(t, rawQuery, "search_query=submittedDate:[202401010000+TO+202406302359]&")
	assert.Contains(t, rawQuery, "max_results=2000", "limit is capped at the arXiv page size")
}

func TestSSRNSourceRecentFiltersByDate(t *testing.T) {
	ss := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ssrnPage))
	}))
	defer ss.Close()

	src := testSources(t, "", ss.URL)[1]
	papers, err := src.Recent(context.Background(),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 10)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "4567891", papers[0].ID)
	assert.Equal(t, "https://papers.ssrn.com/sol3/papers.cfm?abstract_id=4567891", papers[0].URL)
}

func TestSourcesSearchByAuthor(t *testing.T) {
	var arxivQuery string
	ax := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		arxivQuery = r.URL.RawQuery
		w.Write([]byte(arxivFeed))
	}))
	defer ax.Close()
	ss := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ssrnPage))
	}))
	defer ss.Close()

	o := newOrchestrator(t, testSources(t, ax.URL, ss.URL)...)
	resp, err := o.Search(context.Background(), SearchRequest{Author: "Ann Lee", MaxResults: 10})
	require.NoError(t, err)

	assert.Contains(t, arxivQuery, "search_query=au:%22Ann+Lee%22&")
	assert.Equal(t, 1, resp.SourceBreakdown[types.SourceSSRN])
	assert.Equal(t, "Ann Lee", resp.Author)
}

func TestArxivSourceCount(t *testing.T) {
	var maxResults string
	ax := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		maxResults = r.URL.Query().Get("max_results")
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/">
  <opensearch:totalResults>4821</opensearch:totalResults>
</feed>`)
	}))
	defer ax.Close()

	o := newOrchestrator(t, testSources(t, ax.URL, "")...)
	resp, err := o.Count(context.Background(), SearchRequest{Query: "volatility", Source: "arxiv"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{types.SourceArxiv: 4821}, resp.Totals)
	assert.Equal(t, "1", maxResults)
}

func TestSSRNSourceClearCache(t *testing.T) {
	var requests int32
	ss := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write([]byte(ssrnPage))
	}))
	defer ss.Close()

	o := newOrchestrator(t, testSources(t, "", ss.URL)...)
	req := SearchRequest{Query: "liquidity", Source: "ssrn"}
	for i := 0; i < 2; i++ {
		_, err := o.Search(context.Background(), req)
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&requests), "second search uses the cached dataset")

	assert.Equal(t, []string{types.SourceSSRN}, o.ClearCaches())
	_, err := o.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
}
