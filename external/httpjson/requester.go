// Package httpjson performs rate-limited, retried JSON GET requests against a
// single upstream provider.
package httpjson

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-insights/internal/platform/logging"
	"github.com/riskibarqy/fantasy-insights/internal/platform/resilience"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 6 << 20

// ErrTransient marks failures worth retrying: network errors, 429 and 5xx.
var ErrTransient = crerr.New("provider transient failure")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider status=%d body=%s", e.StatusCode, e.Body)
}

type Config struct {
	Name         string
	HTTPClient   *http.Client
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RequestDelay time.Duration
	Headers      map[string]string
	Circuit      resilience.BreakerConfig
	Logger       *logging.Logger

	// Backoff returns the wait before retry attempt n (0-based).
	// Defaults to n+1 seconds.
	Backoff func(attempt int) time.Duration
}

type Requester struct {
	name       string
	httpClient *http.Client
	baseURL    string
	maxRetries int
	headers    http.Header
	limiter    *rate.Limiter
	breaker    *resilience.Breaker
	backoff    func(int) time.Duration
	logger     *logging.Logger
	flight     singleflight.Group
}

func New(cfg Config) *Requester {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestDelay > 0 {
		limit = rate.Every(cfg.RequestDelay)
	}

	headers := http.Header{}
	headers.Set("accept", "application/json")
	for key, value := range cfg.Headers {
		headers.Set(key, value)
	}

	backoff := cfg.Backoff
	if backoff == nil {
		backoff = func(attempt int) time.Duration { return time.Duration(attempt+1) * time.Second }
	}

	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = "provider"
	}

	return &Requester{
		name:       name,
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		maxRetries: max(cfg.MaxRetries, 0),
		headers:    headers,
		limiter:    rate.NewLimiter(limit, 1),
		breaker:    resilience.NewBreaker(cfg.Circuit),
		backoff:    backoff,
		logger:     logger.With("provider", name),
	}
}

// RequestOption adjusts a single GetJSON call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	skipBreaker bool
}

// WithoutBreaker sends the request even while the circuit is open and keeps
// its outcome out of the breaker's counts. Rate limiting and retries still
// apply. Per-entity endpoints use it so one failing entity does not lock out
// the rest.
func WithoutBreaker() RequestOption {
	return func(o *requestOptions) {
		o.skipBreaker = true
	}
}

// GetJSON fetches path relative to the base URL and decodes the body into
// target. Identical concurrent requests share a single upstream call.
func (r *Requester) GetJSON(ctx context.Context, path string, query url.Values, target any, opts ...RequestOption) error {
	var options requestOptions
	for _, opt := range opts {
		opt(&options)
	}

	fullURL := r.baseURL + "/" + strings.TrimLeft(path, "/")
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := r.flight.Do(fullURL, func() (any, error) {
		if options.skipBreaker {
			return r.execute(ctx, fullURL)
		}

		var raw []byte
		err := r.breaker.Execute(func() error {
			var reqErr error
			raw, reqErr = r.execute(ctx, fullURL)
			return reqErr
		}, isCircuitFailure)
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			r.logger.WarnContext(ctx, "circuit breaker rejected request", "state", r.breaker.State())
		}
		return raw, err
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode %s payload: %w", r.name, err)
	}
	return nil
}

func (r *Requester) execute(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		raw, err := r.do(ctx, fullURL)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !crerr.Is(err, ErrTransient) || attempt == r.maxRetries {
			break
		}

		timer := time.NewTimer(r.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	r.logger.WarnContext(ctx, "request failed", "url", redactURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func (r *Requester) do(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header = r.headers.Clone()

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, crerr.Mark(fmt.Errorf("send request: %w", err), ErrTransient)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, crerr.Mark(fmt.Errorf("read response body: %w", err), ErrTransient)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	statusErr := &StatusError{StatusCode: resp.StatusCode, Body: abbreviateBody(raw)}
	if isRetryableStatus(resp.StatusCode) {
		return nil, crerr.Mark(statusErr, ErrTransient)
	}
	return nil, statusErr
}

// StatusCode extracts the upstream HTTP status from err, or 0.
func StatusCode(err error) int {
	var statusErr *StatusError
	if crerr.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, ErrTransient)
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	const limit = 240
	body := strings.TrimSpace(string(raw))
	if len(body) <= limit {
		return body
	}
	return body[:limit] + "..."
}

func redactURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	parsed.RawQuery = ""
	return parsed.String()
}
