// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ssrn

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-aggregator/internal/apperr"
	"github.com/pdiddy/paper-aggregator/internal/httputil"
	"github.com/pdiddy/paper-aggregator/internal/metrics"
	"github.com/pdiddy/paper-aggregator/pkg/types"
)

// APIBase is the SSRN papers endpoint. Declared as a var so tests can
// substitute an httptest server.
var APIBase = "https://api.ssrn.com/content/v1/bindings/204/papers"

// PageSize is the largest page the SSRN API serves.
const PageSize = 200

// overfetch is how many papers are downloaded per requested result, to
// leave room for client-side filtering.
const overfetch = 5

// MaxFetchResults caps the requested results used to size a download.
const MaxFetchResults = 2000

// defaultUserAgent mimics a browser; the SSRN API rejects obvious bots.
const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Request describes one filtered SSRN query.
type Request struct {
	Query      string
	Author     string
	From       time.Time
	To         time.Time
	MaxResults int
}

// Client pages through the SSRN dataset with throttling and retries, and
// keeps the downloaded dataset for a bounded time. Now drives cache
// expiry; tests replace it.
type Client struct {
	HTTP        *http.Client
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	MaxAttempts int
	Logger      *zap.Logger
	Now         func() time.Time

	throttle *httputil.Throttle
	cache    *datasetCache
}

// NewClient builds a client from the shared HTTP settings and the SSRN
// settings. The configured User-Agent is ignored in favour of a browser
// string.
func NewClient(httpCfg types.HTTPConfig, cfg types.SSRNConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		HTTP:        &http.Client{Timeout: httpCfg.Timeout},
		BaseURL:     cfg.BaseURL,
		UserAgent:   defaultUserAgent,
		Timeout:     httpCfg.Timeout,
		MaxAttempts: cfg.MaxAttempts,
		Logger:      logger.With(zap.String("source", types.SourceSSRN)),
		Now:         time.Now,
		throttle:    httputil.NewThrottle(cfg.Delay),
		cache:       &datasetCache{ttl: cfg.CacheTTL},
	}
}

// Fetch downloads (or reuses) the dataset, filters it, and returns at most
// r.MaxResults papers as a raw {"papers": [...]} envelope.
func (c *Client) Fetch(ctx context.Context, r Request) ([]byte, error) {
	if r.MaxResults < 1 {
		return nil, apperr.Validation("max_results must be positive, got %d", r.MaxResults)
	}

	start := time.Now()
	items, err := c.AllPapers(ctx, min(r.MaxResults, MaxFetchResults)*overfetch)
	metrics.ObserveFetch(types.SourceSSRN, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	f := Filter{Text: r.Query, Author: r.Author, From: r.From, To: r.To}
	matched := f.Apply(items, r.MaxResults)
	c.Logger.Debug("ssrn filter",
		zap.Int("candidates", len(items)), zap.Int("matched", len(matched)))

	body, err := json.Marshal(envelope{Papers: matched})
	if err != nil {
		return nil, apperr.Source(types.SourceSSRN, err, "encoding filtered papers")
	}
	return body, nil
}

// AllPapers returns up to limit unfiltered papers, from the cache when it is
// fresh. Paging stops at a short page or at limit. A failure after the first
// page keeps what was fetched; a failure on the first page is returned.
func (c *Client) AllPapers(ctx context.Context, limit int) ([]json.RawMessage, error) {
	if items, ok := c.cacheStore().get(c.now(), limit); ok {
		c.Logger.Debug("using cached SSRN papers", zap.Int("count", len(items)))
		return items, nil
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var all []json.RawMessage
	complete := false
	for index := 0; len(all) < limit; index += PageSize {
		count := min(PageSize, limit-len(all))
		page, err := c.page(ctx, index, count)
		if err != nil {
			if len(all) == 0 {
				return nil, err
			}
			c.Logger.Warn("stopping SSRN pagination early",
				zap.Int("index", index), zap.Int("fetched", len(all)), zap.Error(err))
			break
		}
		all = append(all, page...)
		if len(page) < count {
			complete = true
			break
		}
	}

	c.cacheStore().put(c.now(), all, complete)
	c.Logger.Info("fetched SSRN papers", zap.Int("count", len(all)), zap.Bool("complete", complete))
	return all, nil
}

// ClearCache forgets the cached dataset.
func (c *Client) ClearCache() {
	c.cacheStore().clear()
}

func (c *Client) page(ctx context.Context, index, count int) ([]json.RawMessage, error) {
	if c.throttle != nil {
		if err := c.throttle.Wait(ctx); err != nil {
			return nil, apperr.Transient(types.SourceSSRN, err, "waiting for rate limit")
		}
	}

	params := url.Values{}
	params.Set("index", strconv.Itoa(index))
	params.Set("count", strconv.Itoa(count))
	params.Set("sort", "0")
	u := c.base() + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, apperr.Source(types.SourceSSRN, err, "creating request")
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("DNT", "1")

	c.Logger.Debug("ssrn request", zap.String("url", u))

	resp, err := httputil.DoWithRetry(ctx, c.client(), req, c.MaxAttempts)
	if err != nil {
		return nil, apperr.Transient(types.SourceSSRN, err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Source(types.SourceSSRN, nil, "API returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Transient(types.SourceSSRN, err, "reading response")
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperr.Source(types.SourceSSRN, err, "decoding response")
	}
	return env.Papers, nil
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

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Client) cacheStore() *datasetCache {
	if c.cache == nil {
		c.cache = &datasetCache{}
	}
	return c.cache
}
