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
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryBoundOnPersistentServerError(t *testing.T) {
	var attempts atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(
		WithBaseURL(srv.URL),
		WithRateLimit(0),
		WithMaxAttempts(3),
		WithRetryWait(time.Millisecond),
	)

	_, err := client.Get(context.Background(), "/always-503", nil)
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 3, transportErr.Attempts)
	assert.Equal(t, http.StatusServiceUnavailable, transportErr.StatusCode)
	assert.True(t, transportErr.Transient)
	assert.ErrorIs(t, err, ErrRetriesExhausted)

	assert.EqualValues(t, 3, attempts.Load())
}

func TestNoRetryOnPermanentClientError(t *testing.T) {
	var attempts atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(0), WithRetryWait(time.Millisecond))

	_, err := client.Get(context.Background(), "/missing", nil)
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusNotFound, transportErr.StatusCode)
	assert.Equal(t, 1, transportErr.Attempts)
	assert.False(t, transportErr.Transient)
	assert.NotErrorIs(t, err, ErrRetriesExhausted)

	assert.EqualValues(t, 1, attempts.Load())
}

func TestRetryOnTooManyRequests(t *testing.T) {
	var attempts atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewClient(
		WithBaseURL(srv.URL),
		WithRateLimit(0),
		WithMaxAttempts(4),
		WithRetryWait(time.Millisecond),
	)

	body, err := client.Get(context.Background(), "/flaky", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.EqualValues(t, 3, attempts.Load())
}

func TestRateLimitGapBetweenRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	const delay = 60 * time.Millisecond

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(delay))

	start := time.Now()

	for i := 0; i < 3; i++ {
		_, err := client.Get(context.Background(), "/ok", nil)
		require.NoError(t, err)
	}

	// burst of 1: the first request is immediate, the next two each wait
	// out the full delay
	assert.GreaterOrEqual(t, time.Since(start), 2*delay)
}

func TestCacheHitSkipsNetworkAndDelay(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("payload-" + r.URL.Path))
	}))
	defer srv.Close()

	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	client := NewClient(
		WithBaseURL(srv.URL),
		WithRateLimit(300*time.Millisecond),
		WithCache(cache),
	)

	first, err := client.Get(context.Background(), "/a", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, hits.Load())

	// repeated identical requests are served from cache without touching
	// the network or consuming a rate-limit slot
	start := time.Now()

	for i := 0; i < 3; i++ {
		cached, err := client.Get(context.Background(), "/a", nil)
		require.NoError(t, err)
		assert.Equal(t, first, cached)
	}

	assert.EqualValues(t, 1, hits.Load())
	assert.Less(t, time.Since(start), 150*time.Millisecond)

	// a different signature misses and goes to the network
	_, err = client.Get(context.Background(), "/b", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, hits.Load())
}

func TestCacheBypassReadsSourceAndWritesThrough(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "payload-%d", hits.Add(1))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "cache.db")

	cache, err := OpenCache(path)
	require.NoError(t, err)

	// prime the cache with the first response
	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(0), WithCache(cache))

	first, err := client.Get(context.Background(), "/a", nil)
	require.NoError(t, err)
	assert.Equal(t, "payload-1", string(first))
	client.Close()

	// a bypassing client ignores the pinned entry and refreshes it
	cache, err = OpenCache(path)
	require.NoError(t, err)

	bypassing := NewClient(WithBaseURL(srv.URL), WithRateLimit(0), WithCache(cache), WithCacheBypass())

	fresh, err := bypassing.Get(context.Background(), "/a", nil)
	require.NoError(t, err)
	assert.Equal(t, "payload-2", string(fresh))
	assert.EqualValues(t, 2, hits.Load())
	bypassing.Close()

	// the refreshed payload was written through for later cached reads
	cache, err = OpenCache(path)
	require.NoError(t, err)

	client = NewClient(WithBaseURL(srv.URL), WithRateLimit(0), WithCache(cache))
	defer client.Close()

	cached, err := client.Get(context.Background(), "/a", nil)
	require.NoError(t, err)
	assert.Equal(t, "payload-2", string(cached))
	assert.EqualValues(t, 2, hits.Load())
}

func TestCancellationStopsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(0), WithRetryWait(time.Millisecond))

	_, err := client.Get(ctx, "/never", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
