// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package edge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the EDGE portal root.
	DefaultBaseURL = "https://edge.pse.com.ph"

	// DefaultRateLimit is the minimum delay between outbound requests.
	DefaultRateLimit = 600 * time.Millisecond

	// DefaultMaxAttempts bounds retries of transient failures per request.
	DefaultMaxAttempts = 4

	defaultTimeout      = 30 * time.Second
	defaultRetryWait    = 500 * time.Millisecond
	defaultRetryWaitCap = 8 * time.Second
	defaultMaxElapsed   = 2 * time.Minute
)

// Client issues rate-limited HTTP requests against the EDGE portal, retrying
// transient failures with capped exponential backoff and optionally serving
// repeated requests from a local response cache.
//
// The limiter is the single shared clock for all outbound requests: every
// attempt serializes through it, so the gap between consecutive request
// starts is at least the configured minimum delay. Cache hits never touch
// the limiter.
type Client struct {
	http         *resty.Client
	limiter      *rate.Limiter
	cache        *Cache
	bypassCache  bool
	baseURL      string
	maxAttempts  int
	retryWait    time.Duration
	retryWaitCap time.Duration
	maxElapsed   time.Duration
}

type ClientOption func(*Client)

// WithBaseURL points the client at a different portal root.
func WithBaseURL(baseURL string) ClientOption {
	return func(client *Client) {
		client.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithRateLimit sets the minimum delay between outbound requests. A
// non-positive delay disables rate limiting.
func WithRateLimit(delay time.Duration) ClientOption {
	return func(client *Client) {
		if delay <= 0 {
			client.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}

		client.limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
}

// WithCache attaches a response cache. A nil cache disables caching.
func WithCache(cache *Cache) ClientOption {
	return func(client *Client) {
		client.cache = cache
	}
}

// WithCacheBypass makes the client skip cache reads while still writing
// fresh responses through, so a forced refresh reaches the source but
// leaves the cache current.
func WithCacheBypass() ClientOption {
	return func(client *Client) {
		client.bypassCache = true
	}
}

// WithMaxAttempts bounds the number of tries per request.
func WithMaxAttempts(attempts int) ClientOption {
	return func(client *Client) {
		if attempts > 0 {
			client.maxAttempts = attempts
		}
	}
}

// WithRetryWait sets the base backoff between retries. The wait doubles per
// attempt up to an internal cap.
func WithRetryWait(wait time.Duration) ClientOption {
	return func(client *Client) {
		if wait > 0 {
			client.retryWait = wait
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(client *Client) {
		if timeout > 0 {
			client.http.SetTimeout(timeout)
		}
	}
}

func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		baseURL:      DefaultBaseURL,
		limiter:      rate.NewLimiter(rate.Every(DefaultRateLimit), 1),
		maxAttempts:  DefaultMaxAttempts,
		retryWait:    defaultRetryWait,
		retryWaitCap: defaultRetryWaitCap,
		maxElapsed:   defaultMaxElapsed,
	}

	client.http = resty.New().
		SetTimeout(defaultTimeout).
		SetHeader("User-Agent", "Mozilla/5.0").
		SetHeader("Accept", "application/json, text/html, */*; q=0.01")

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Close releases the attached response cache, if any.
func (client *Client) Close() {
	if client.cache != nil {
		client.cache.Close()
	}
}

// Get issues a rate-limited GET and returns the raw response body.
func (client *Client) Get(ctx context.Context, path string, headers map[string]string) ([]byte, error) {
	return client.do(ctx, http.MethodGet, path, nil, headers)
}

// PostJSON issues a rate-limited POST with a JSON body and returns the raw
// response body.
func (client *Client) PostJSON(ctx context.Context, path string, body []byte, headers map[string]string) ([]byte, error) {
	merged := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		merged[k] = v
	}

	return client.do(ctx, http.MethodPost, path, body, merged)
}

func (client *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	return client.baseURL + path
}

// do runs the per-request retry state machine: consult the cache, then
// attempt until success, a permanent failure, or the retry budget (attempt
// count or total elapsed time) runs out.
func (client *Client) do(ctx context.Context, method, path string, body []byte, headers map[string]string) ([]byte, error) {
	url := client.url(path)
	sig := requestSignature(method, url, body)

	if client.cache != nil && !client.bypassCache {
		if payload, ok := client.cache.Lookup(sig); ok {
			log.Debug().Str("URL", url).Msg("serving response from cache")
			return payload, nil
		}
	}

	start := time.Now()

	for attempt := 1; ; attempt++ {
		if err := client.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req := client.http.R().SetContext(ctx).SetHeaders(headers)
		if body != nil {
			req.SetBody(body)
		}

		resp, err := req.Execute(method, url)

		status := 0

		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// network-level failure (timeout, reset, refused): transient

		case resp.StatusCode() < 300:
			payload := resp.Body()
			if client.cache != nil {
				client.cache.Store(sig, payload)
			}

			return payload, nil

		case resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= 500:
			status = resp.StatusCode()

		default:
			return nil, &TransportError{
				StatusCode: resp.StatusCode(),
				Attempts:   attempt,
				Err:        fmt.Errorf("permanent HTTP failure: %s", resp.Status()),
			}
		}

		wait := client.backoff(attempt)

		if attempt >= client.maxAttempts || time.Since(start)+wait > client.maxElapsed {
			failure := error(ErrRetriesExhausted)
			if err != nil {
				failure = fmt.Errorf("%w: %w", ErrRetriesExhausted, err)
			}

			return nil, &TransportError{
				Transient:  true,
				StatusCode: status,
				Attempts:   attempt,
				Err:        failure,
			}
		}

		log.Warn().Int("Attempt", attempt).Int("StatusCode", status).
			Str("URL", url).Dur("Wait", wait).Err(err).
			Msg("transient failure, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// backoff doubles the base wait per attempt up to the cap and jitters the
// upper half so shared retry timers do not align.
func (client *Client) backoff(attempt int) time.Duration {
	wait := client.retryWait
	for i := 1; i < attempt && wait < client.retryWaitCap; i++ {
		wait *= 2
	}

	if wait > client.retryWaitCap {
		wait = client.retryWaitCap
	}

	half := wait / 2

	return half + time.Duration(rand.Int64N(int64(half)+1))
}

// requestSignature is the cache key: method, full URL with its ordered query
// parameters, and the request body.
func requestSignature(method, url string, body []byte) string {
	h := sha256.New()
	io.WriteString(h, method)
	h.Write([]byte{'\n'})
	io.WriteString(h, url)
	h.Write([]byte{'\n'})
	h.Write(body)

	return hex.EncodeToString(h.Sum(nil))
}
