// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP helpers shared by the source clients.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"syscall"
	"time"
)

// RetryBaseDelay is the unit of exponential backoff. Tests override this
// to avoid real sleeps.
var RetryBaseDelay = 1 * time.Second

// DefaultMaxAttempts bounds the attempts of one request when the caller
// passes zero.
const DefaultMaxAttempts = 3

// ErrRetriesExhausted is wrapped by the error returned once every attempt
// hit a transient failure.
var ErrRetriesExhausted = errors.New("retries exhausted")

// StatusError records a retryable HTTP status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// DoWithRetry executes req and retries transient failures: HTTP 429, HTTP
// 5xx, timeouts, and connection errors. Attempt n (from zero) waits
// RetryBaseDelay*2^n plus up to RetryBaseDelay of jitter before the next
// try.
//
// Any other status is returned to the caller as-is. When every attempt
// fails the returned error wraps ErrRetriesExhausted and the last failure.
// If ctx is cancelled the function returns without further attempts.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxAttempts int) (*http.Response, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("waiting to retry after %v: %w", lastErr, ctx.Err())
			case <-time.After(Backoff(attempt - 1)):
			}
		}

		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			if ctx.Err() != nil || !IsTransient(err) {
				return nil, err
			}
			lastErr = err
			continue
		}

		if !RetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = &StatusError{StatusCode: resp.StatusCode}
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, maxAttempts, lastErr)
}

// Backoff returns the wait after the given zero-based failed attempt.
func Backoff(attempt int) time.Duration {
	d := RetryBaseDelay << attempt
	if RetryBaseDelay > 0 {
		d += time.Duration(rand.Int64N(int64(RetryBaseDelay)))
	}
	return d
}

// RetryableStatus reports whether an HTTP status is worth retrying.
func RetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// IsTransient reports whether a transport error is a timeout or a
// connection failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED)
}
