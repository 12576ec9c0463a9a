// Package http provides the outbound HTTP client shared by every adapter.
// It wraps HashiCorp's retryablehttp.Client and adds JSON helpers, optional
// request pacing, static headers, and rewriting of requests through the
// walletscope CORS relay.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/gabapcia/walletscope/internal/pkg/logger"
)

// ErrorBodyLimit is the number of bytes of a non-2xx response body kept in a
// StatusError.
const ErrorBodyLimit = 512

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// config holds internal settings for the HTTP client.
type config struct {
	timeout      time.Duration
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	retryMax     int
	relayURL     string
	limiter      *rate.Limiter
	header       http.Header
	noRedirects  bool
}

// Option defines a functional option for configuring the HTTP client.
type Option func(*config)

// Client sends requests with retries and decodes JSON responses.
type Client struct {
	http     *retryablehttp.Client
	relayURL string
	limiter  *rate.Limiter
	header   http.Header
}

// NewClient creates a Client. Defaults:
//
//   - timeout:      5 seconds
//   - retryWaitMin: 1 second
//   - retryWaitMax: 5 seconds
//   - retryMax:     2 retries
func NewClient(opts ...Option) *Client {
	cfg := config{
		timeout:      5 * time.Second,
		retryWaitMin: 1 * time.Second,
		retryWaitMax: 5 * time.Second,
		retryMax:     2,
		header:       make(http.Header),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	client := retryablehttp.NewClient()
	client.Logger = nil
	client.HTTPClient.Timeout = cfg.timeout
	client.RetryWaitMin = cfg.retryWaitMin
	client.RetryWaitMax = cfg.retryWaitMax
	client.RetryMax = cfg.retryMax
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if cfg.noRedirects {
		client.HTTPClient.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			logger.Warn(req.Context(), "retrying request", "host", req.URL.Host, "path", req.URL.Path, "attempt", attempt)
		}
	}

	return &Client{
		http:     client,
		relayURL: strings.TrimRight(cfg.relayURL, "/"),
		limiter:  cfg.limiter,
		header:   cfg.header,
	}
}

// RelayTarget returns the URL that forwards target through the relay at
// relayURL.
func RelayTarget(relayURL, target string) string {
	return strings.TrimRight(relayURL, "/") + "/relay?url=" + url.QueryEscape(target)
}

// Do sends a request and returns the raw response regardless of its status.
// The caller must close the body.
func (c *Client) Do(ctx context.Context, method, target string, body io.Reader, header http.Header) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if c.relayURL != "" {
		target = RelayTarget(c.relayURL, target)
	}

	var rawBody any
	if body != nil {
		rawBody = body
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, target, rawBody)
	if err != nil {
		return nil, err
	}

	for k, values := range c.header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	for k, values := range header {
		req.Header.Del(k)
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	return c.http.Do(req)
}

// RequestOption adjusts the headers of a single request.
type RequestOption func(http.Header)

// WithRequestHeader sets a header on a single request.
func WithRequestHeader(key, value string) RequestOption {
	return func(h http.Header) {
		h.Set(key, value)
	}
}

// GetJSON issues a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, target string, out any, opts ...RequestOption) error {
	return c.doJSON(ctx, http.MethodGet, target, nil, out, opts)
}

// PostJSON encodes in as the request body, issues a POST and decodes the JSON
// response into out.
func (c *Client) PostJSON(ctx context.Context, target string, in, out any, opts ...RequestOption) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	return c.doJSON(ctx, http.MethodPost, target, bytes.NewReader(body), out, opts)
}

func (c *Client) doJSON(ctx context.Context, method, target string, body io.Reader, out any, opts []RequestOption) error {
	header := http.Header{"Accept": {"application/json"}}
	if body != nil {
		header.Set("Content-Type", "application/json")
	}

	for _, opt := range opts {
		opt(header)
	}

	res, err := c.Do(ctx, method, target, body, header)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, ErrorBodyLimit))
		return &StatusError{Code: res.StatusCode, Body: string(snippet)}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// WithTimeout sets the maximum duration allowed for a single HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithRetryWaitMin sets the minimum delay between retry attempts.
func WithRetryWaitMin(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMin = d
	}
}

// WithRetryWaitMax sets the maximum delay between retry attempts.
func WithRetryWaitMax(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMax = d
	}
}

// WithRetryMax sets the maximum number of retries. Zero disables retrying.
func WithRetryMax(n int) Option {
	return func(c *config) {
		c.retryMax = n
	}
}

// WithRelay routes every request through the relay at baseURL. An empty
// baseURL leaves requests direct.
func WithRelay(baseURL string) Option {
	return func(c *config) {
		c.relayURL = baseURL
	}
}

// WithRateLimit paces requests to at most rps per second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *config) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithoutRedirects returns 3xx responses as they are instead of following
// their Location.
func WithoutRedirects() Option {
	return func(c *config) {
		c.noRedirects = true
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *config) {
		c.header.Add(key, value)
	}
}
