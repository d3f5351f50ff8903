// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/paper-aggregator/internal/apperr"
	"github.com/pdiddy/paper-aggregator/internal/httputil"
	"github.com/pdiddy/paper-aggregator/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func newTestClient(t *testing.T, ts *httptest.Server, timeout time.Duration) *Client {
	t.Helper()
	return NewClient(
		types.HTTPConfig{Timeout: timeout, UserAgent: "test/0.1"},
		types.SourceConfig{BaseURL: ts.URL, MaxAttempts: 3},
		zaptest.NewLogger(t),
	)
}

func TestFetchBuildsQuery(t *testing.T) {
	var rawQuery, userAgent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		userAgent = r.Header.Get("User-Agent")
		w.Write([]byte(sampleFeed))
	}))
	defer ts.Close()

	c := newTestClient(t, ts, 5*time.Second)
	body, err := c.Fetch(context.Background(), Request{
		Query:      "machine learning",
		From:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:         time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		MaxResults: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, sampleFeed, string(body))

	assert.Contains(t, rawQuery, "search_query=all:machine+AND+all:learning+AND+submittedDate:[202401010000+TO+202403312359]")
	assert.Contains(t, rawQuery, "max_results=5")
	assert.Contains(t, rawQuery, "sortBy=submittedDate")
	assert.Contains(t, rawQuery, "sortOrder=descending")
	assert.Contains(t, rawQuery, "start=0")
	assert.Equal(t, "test/0.1", userAgent)
}

func TestFetchUsesPackageBase(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	}))
	defer ts.Close()

	old := APIBase
	APIBase = ts.URL
	defer func() { APIBase = old }()

	c := NewClient(types.HTTPConfig{Timeout: time.Second}, types.SourceConfig{}, nil)
	_, err := c.Fetch(context.Background(), Request{Query: "x", MaxResults: 1})
	assert.NoError(t, err)
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sampleFeed))
	}))
	defer ts.Close()

	body, err := newTestClient(t, ts, 5*time.Second).Fetch(context.Background(), Request{Query: "x", MaxResults: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, body)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		delay   time.Duration
		timeout time.Duration
		want    apperr.Kind
	}{
		{"rate limited until exhausted", http.StatusTooManyRequests, 0, 5 * time.Second, apperr.KindTransient},
		{"server error until exhausted", http.StatusBadGateway, 0, 5 * time.Second, apperr.KindTransient},
		{"not found", http.StatusNotFound, 0, 5 * time.Second, apperr.KindSource},
		{"timeout", http.StatusOK, 300 * time.Millisecond, 50 * time.Millisecond, apperr.KindTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.delay > 0 {
					select {
					case <-time.After(tt.delay):
					case <-r.Context().Done():
						return
					}
				}
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			_, err := newTestClient(t, ts, tt.timeout).Fetch(context.Background(), Request{Query: "x", MaxResults: 10})
			require.Error(t, err)
			assert.Equal(t, tt.want, apperr.KindOf(err), "error: %v", err)
			assert.Contains(t, err.Error(), types.SourceArxiv)
		})
	}
}

func TestFetchValidatesMaxResults(t *testing.T) {
	c := NewClient(types.HTTPConfig{}, types.SourceConfig{BaseURL: "http://127.0.0.1:0"}, nil)
	for _, n := range []int{0, -1, MaxPageSize + 1} {
		_, err := c.Fetch(context.Background(), Request{Query: "x", MaxResults: n})
		assert.True(t, apperr.Is(err, apperr.KindValidation), "max_results %d", n)
	}
	_, err := c.Fetch(context.Background(), Request{MaxResults: 5})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "empty query")
}

func TestTotalCount(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("max_results"))
		assert.Equal(t, "0", r.URL.Query().Get("start"))
		w.Write([]byte(sampleFeed))
	}))
	defer ts.Close()

	n, err := newTestClient(t, ts, time.Second).TotalCount(context.Background(), Request{Query: "finance", MaxResults: 50, Start: 100})
	require.NoError(t, err)
	assert.Equal(t, 1234, n)
}

func TestBuildQuery(t *testing.T) {
	from := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		query    string
		from, to time.Time
		want     string
	}{
		{"empty", "", time.Time{}, time.Time{}, ""},
		{"single term", "finance", time.Time{}, time.Time{}, "all:finance"},
		{"terms are ANDed", "deep  hedging", time.Time{}, time.Time{}, "all:deep+AND+all:hedging"},
		{"field prefixes kept", "au:Smith cat:q-fin.CP", time.Time{}, time.Time{}, "au:Smith+AND+cat:q-fin.CP"},
		{"special characters escaped", "R&D", time.Time{}, time.Time{}, "all:R%26D"},
		{"date only", "", from, to, "submittedDate:[202312010000+TO+202401312359]"},
		{"query and date", "options", from, to, "all:options+AND+submittedDate:[202312010000+TO+202401312359]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildQuery(tt.query, tt.from, tt.to))
		})
	}
}

func TestAuthorTerm(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"Smith", "au:Smith"},
		{" Jane   Doe ", "au:%22Jane+Doe%22"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AuthorTerm(tt.name))
		})
	}
}

func TestFetchByAuthor(t *testing.T) {
	var rawQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte(sampleFeed))
	}))
	defer ts.Close()

	c := newTestClient(t, ts, time.Second)
	_, err := c.Fetch(context.Background(), Request{Author: "Jane Doe", Query: "hedging", MaxResults: 5})
	require.NoError(t, err)
	assert.Contains(t, rawQuery, "search_query=au:%22Jane+Doe%22+AND+all:hedging&")

	_, err = c.Fetch(context.Background(), Request{Author: "Doe", MaxResults: 5})
	require.NoError(t, err)
	assert.Contains(t, rawQuery, "search_query=au:Doe&")
}
