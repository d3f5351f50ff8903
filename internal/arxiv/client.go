// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-aggregator/internal/apperr"
	"github.com/pdiddy/paper-aggregator/internal/httputil"
	"github.com/pdiddy/paper-aggregator/internal/metrics"
	"github.com/pdiddy/paper-aggregator/pkg/types"
)

// APIBase is the arXiv query endpoint. Declared as a var so tests can
// substitute an httptest server.
var APIBase = "http://export.arxiv.org/api/query"

// MaxPageSize is the largest max_results arXiv accepts in one request.
const MaxPageSize = 2000

// Request describes one arXiv query. Zero From/To means no date filter.
type Request struct {
	Query      string
	Author     string
	From       time.Time
	To         time.Time
	Start      int
	MaxResults int
}

// Client issues throttled, retried requests to the arXiv API. One Client
// holds one throttle; share the instance to share the rate limit.
type Client struct {
	HTTP        *http.Client
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	MaxAttempts int
	Logger      *zap.Logger

	throttle *httputil.Throttle
}

// NewClient builds a client from the shared HTTP settings and the arXiv
// source settings.
func NewClient(httpCfg types.HTTPConfig, cfg types.SourceConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		HTTP:        &http.Client{Timeout: httpCfg.Timeout},
		BaseURL:     cfg.BaseURL,
		UserAgent:   httpCfg.UserAgent,
		Timeout:     httpCfg.Timeout,
		MaxAttempts: cfg.MaxAttempts,
		Logger:      logger.With(zap.String("source", types.SourceArxiv)),
		throttle:    httputil.NewThrottle(cfg.Delay),
	}
}

// Fetch runs the query and returns the raw Atom document.
func (c *Client) Fetch(ctx context.Context, r Request) ([]byte, error) {
	if r.MaxResults < 1 || r.MaxResults > MaxPageSize {
		return nil, apperr.Validation("max_results must be between 1 and %d, got %d", MaxPageSize, r.MaxResults)
	}
	q := BuildQuery(r.Query, r.From, r.To)
	if a := AuthorTerm(r.Author); a != "" {
		q = strings.Join(append([]string{a}, nonEmpty(q)...), "+AND+")
	}
	if q == "" {
		return nil, apperr.Validation("arXiv query is empty")
	}

	params := url.Values{}
	params.Set("start", strconv.Itoa(r.Start))
	params.Set("max_results", strconv.Itoa(r.MaxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	// arXiv rejects an encoded search_query ('+' and ':' must pass through),
	// so it is written into the URL as built.
	u := fmt.Sprintf("%s?search_query=%s&%s", c.base(), q, params.Encode())

	start := time.Now()
	body, err := c.get(ctx, u)
	metrics.ObserveFetch(types.SourceArxiv, err, time.Since(start))
	return body, err
}

// TotalCount returns how many entries arXiv holds for r's query, author,
// and date range. Paging fields of r are ignored.
func (c *Client) TotalCount(ctx context.Context, r Request) (int, error) {
	r.Start, r.MaxResults = 0, 1
	raw, err := c.Fetch(ctx, r)
	if err != nil {
		return 0, err
	}
	return TotalResults(raw)
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	if c.throttle != nil {
		if err := c.throttle.Wait(ctx); err != nil {
			return nil, apperr.Transient(types.SourceArxiv, err, "waiting for rate limit")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, apperr.Source(types.SourceArxiv, err, "creating request")
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	c.Logger.Debug("arxiv request", zap.String("url", u))

	resp, err := httputil.DoWithRetry(ctx, c.client(), req, c.MaxAttempts)
	if err != nil {
		return nil, apperr.Transient(types.SourceArxiv, err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Source(types.SourceArxiv, nil, "API returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Transient(types.SourceArxiv, err, "reading response")
	}
	return body, nil
}

func (c *Client) base() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return APIBase
}

func (c *Client) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// fieldPrefixes are the arXiv search field names a term may already carry.
var fieldPrefixes = map[string]bool{
	"ti": true, "au": true, "abs": true, "co": true, "jr": true,
	"cat": true, "rn": true, "id": true, "all": true,
}

// BuildQuery constructs the search_query parameter. Every whitespace
// separated term is ANDed; bare terms search all fields. A non-zero date
// range appends a submittedDate clause covering whole days.
func BuildQuery(query string, from, to time.Time) string {
	var parts []string
	for _, term := range strings.Fields(query) {
		parts = append(parts, queryTerm(term))
	}

	if !from.IsZero() || !to.IsZero() {
		if to.IsZero() {
			to = time.Now()
		}
		parts = append(parts, fmt.Sprintf("submittedDate:[%s0000+TO+%s2359]",
			from.Format("20060102"), to.Format("20060102")))
	}
	return strings.Join(parts, "+AND+")
}

// AuthorTerm returns the au: clause for name. Multi-word names are quoted
// so arXiv matches them as a phrase.
func AuthorTerm(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	if strings.Contains(name, " ") {
		name = `"` + name + `"`
	}
	return "au:" + url.QueryEscape(name)
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func queryTerm(term string) string {
	if field, value, ok := strings.Cut(term, ":"); ok && fieldPrefixes[strings.ToLower(field)] && value != "" {
		return strings.ToLower(field) + ":" + url.QueryEscape(value)
	}
	return "all:" + url.QueryEscape(term)
}
