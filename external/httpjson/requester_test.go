package httpjson

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-insights/internal/platform/logging"
	"github.com/riskibarqy/fantasy-insights/internal/platform/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequester(baseURL string, retries int, circuit resilience.BreakerConfig) *Requester {
	return New(Config{
		Name:       "test",
		HTTPClient: &http.Client{Timeout: 2 * time.Second},
		BaseURL:    baseURL,
		MaxRetries: retries,
		Headers:    map[string]string{"x-api-key": "secret"},
		Circuit:    circuit,
		Logger:     logging.NewNop(),
		Backoff:    func(int) time.Duration { return time.Millisecond },
	})
}

func TestGetJSON_DecodesAndSendsHeaders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/leagues/314", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		_, _ = w.Write([]byte(`{"name":"Overall","size":3}`))
	}))
	defer srv.Close()

	var out struct {
		Name string `json:"name"`
		Size int    `json:"size"`
	}
	req := newTestRequester(srv.URL+"/", 0, resilience.BreakerConfig{})
	err := req.GetJSON(context.Background(), "leagues/314", url.Values{"page": {"2"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Overall", out.Name)
	assert.Equal(t, 3, out.Size)
}

func TestGetJSON_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out map[string]bool
	err := newTestRequester(srv.URL, 2, resilience.BreakerConfig{}).GetJSON(context.Background(), "/x", nil, &out)
	require.NoError(t, err)
	assert.True(t, out["ok"])
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetJSON_DoesNotRetryClientError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestRequester(srv.URL, 3, resilience.BreakerConfig{}).GetJSON(context.Background(), "/x", nil, &out)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.False(t, crerr.Is(err, ErrTransient))
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetJSON_ExhaustedRetriesAreTransient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestRequester(srv.URL, 1, resilience.BreakerConfig{}).GetJSON(context.Background(), "/x", nil, &out)
	require.Error(t, err)
	assert.True(t, crerr.Is(err, ErrTransient))
	assert.Equal(t, http.StatusTooManyRequests, StatusCode(err))
}

func TestGetJSON_CircuitOpensAfterFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	req := newTestRequester(srv.URL, 0, resilience.BreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	var out map[string]any
	for i := 0; i < 2; i++ {
		require.Error(t, req.GetJSON(context.Background(), "/x", nil, &out))
	}
	err := req.GetJSON(context.Background(), "/x", nil, &out)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetJSON_WithoutBreakerIgnoresOpenCircuit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	req := newTestRequester(srv.URL, 0, resilience.BreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	var out map[string]bool
	for i := 0; i < 5; i++ {
		err := req.GetJSON(context.Background(), "/bad", nil, &out, WithoutBreaker())
		require.Error(t, err)
		assert.NotErrorIs(t, err, resilience.ErrCircuitOpen)
	}
	assert.Equal(t, resilience.CircuitStateClosed, req.breaker.State())
	assert.Equal(t, int32(5), calls.Load())

	for i := 0; i < 2; i++ {
		require.Error(t, req.GetJSON(context.Background(), "/bad", nil, &out))
	}
	require.ErrorIs(t, req.GetJSON(context.Background(), "/good", nil, &out), resilience.ErrCircuitOpen)

	require.NoError(t, req.GetJSON(context.Background(), "/good", nil, &out, WithoutBreaker()))
	assert.True(t, out["ok"])
}

func TestGetJSON_SpacesRequestsByDelay(t *testing.T) {
	t.Parallel()

	const delay = 50 * time.Millisecond

	hits := make(chan time.Time, 3)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits <- time.Now()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	req := New(Config{
		Name:         "test",
		HTTPClient:   &http.Client{Timeout: 2 * time.Second},
		BaseURL:      srv.URL,
		RequestDelay: delay,
		Logger:       logging.NewNop(),
	})

	start := time.Now()
	var out map[string]any
	for _, path := range []string{"/a", "/b", "/c"} {
		require.NoError(t, req.GetJSON(context.Background(), path, nil, &out))
	}
	assert.GreaterOrEqual(t, time.Since(start), 2*delay)

	close(hits)
	var prev time.Time
	for hit := range hits {
		if !prev.IsZero() {
			assert.GreaterOrEqual(t, hit.Sub(prev), delay-10*time.Millisecond)
		}
		prev = hit
	}
}

func TestGetJSON_InvalidBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestRequester(srv.URL, 0, resilience.BreakerConfig{}).GetJSON(context.Background(), "/x", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode test payload")
}

func TestAbbreviateBody(t *testing.T) {
	t.Parallel()

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	got := abbreviateBody(long)
	assert.Len(t, got, 243)
	assert.Equal(t, "short", abbreviateBody([]byte("  short  ")))
}
