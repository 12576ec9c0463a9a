// Package relay forwards browser-originated requests to an allow-listed set
// of upstream hosts, adding nothing but CORS headers on the way back.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/gabapcia/walletscope/internal/pkg/logger"
	"github.com/gabapcia/walletscope/internal/pkg/telemetry"
	transporthttp "github.com/gabapcia/walletscope/internal/pkg/transport/http"
	"github.com/gabapcia/walletscope/internal/pkg/types"
)

const (
	// DefaultMaxBodySize caps upstream and request bodies.
	DefaultMaxBodySize = 10 << 20

	// DefaultContentType is used when the upstream does not send one.
	DefaultContentType = "application/json"
)

var (
	// ErrInvalidTarget is returned for a missing or non-http(s) target URL.
	ErrInvalidTarget = errors.New("invalid target url")

	// ErrHostNotAllowed is returned when the target host is not on the
	// allow-list.
	ErrHostNotAllowed = errors.New("host not allowed")

	// ErrUpstreamUnavailable wraps transport failures reaching the target.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// UpstreamError reports a non-2xx upstream response.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream responded %d", e.Status)
}

// Request is one call to forward.
type Request struct {
	Method      string
	Target      string
	ContentType string
	Body        io.Reader
}

// Response is the upstream answer to forward back.
type Response struct {
	ContentType string
	Body        []byte
	Cached      bool
}

// Service forwards requests to allow-listed hosts.
type Service interface {
	// Forward validates req.Target, consults the cache for GETs and calls
	// the upstream. Non-2xx upstream answers are returned as *UpstreamError.
	Forward(ctx context.Context, req Request) (Response, error)

	// Allowed reports whether host may be forwarded to.
	Allowed(host string) bool
}

type config struct {
	cache       Cache
	ttl         time.Duration
	maxBodySize int64
}

// Option configures the relay service.
type Option func(*config)

// WithCache caches successful GET responses in cache for ttl. A zero ttl
// disables caching.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *config) {
		c.cache = cache
		c.ttl = ttl
	}
}

// WithMaxBodySize overrides DefaultMaxBodySize.
func WithMaxBodySize(n int64) Option {
	return func(c *config) {
		c.maxBodySize = n
	}
}

type service struct {
	client   *transporthttp.Client
	allowed  types.Set[string]
	cfg      config
	requests metric.Int64Counter
}

var _ Service = (*service)(nil)

// New returns a relay forwarding through client to the hosts in allowList.
// Hosts are compared case-insensitively and exactly: subdomains of an allowed
// host are not allowed. client should be built with
// transporthttp.WithoutRedirects so a redirect cannot leave the allow-list.
func New(client *transporthttp.Client, allowList []string, opts ...Option) (*service, error) {
	cfg := config{maxBodySize: DefaultMaxBodySize}
	for _, opt := range opts {
		opt(&cfg)
	}

	requests, err := telemetry.Meter().Int64Counter(
		"relay.requests",
		metric.WithDescription("Relay requests by outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create relay.requests counter: %w", err)
	}

	allowed := types.NewSet[string]()
	for _, host := range allowList {
		if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
			allowed.Add(host)
		}
	}

	return &service{
		client:   client,
		allowed:  allowed,
		cfg:      cfg,
		requests: requests,
	}, nil
}

func (s *service) Allowed(host string) bool {
	return s.allowed.Has(strings.ToLower(host))
}

func (s *service) Forward(ctx context.Context, req Request) (resp Response, err error) {
	outcome := "ok"
	defer func() {
		s.requests.Add(ctx, 1, metric.WithAttributes(
			attribute.String("outcome", outcome),
			attribute.String("method", req.Method),
		))
	}()

	target, err := parseTarget(req.Target)
	if err != nil {
		outcome = "invalid"
		return Response{}, err
	}

	if !s.Allowed(target.Hostname()) {
		outcome = "forbidden"
		return Response{}, fmt.Errorf("%w: %s", ErrHostNotAllowed, target.Hostname())
	}

	cacheable := req.Method == http.MethodGet && s.cfg.cache != nil && s.cfg.ttl > 0
	key := CacheKey(target.String())
	if cacheable {
		entry, ok, err := s.cfg.cache.Get(ctx, key)
		switch {
		case err != nil:
			logger.Warn(ctx, "relay cache read failed", "error", err)
		case ok:
			outcome = "cached"
			return Response{ContentType: entry.ContentType, Body: entry.Body, Cached: true}, nil
		}
	}

	header := http.Header{}
	if req.ContentType != "" {
		header.Set("Content-Type", req.ContentType)
	}
	header.Set("Accept", "application/json")

	upstream, err := s.client.Do(ctx, req.Method, target.String(), req.Body, header)
	if err != nil {
		outcome = "unavailable"
		return Response{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	defer upstream.Body.Close()

	body, err := io.ReadAll(io.LimitReader(upstream.Body, s.cfg.maxBodySize))
	if err != nil {
		outcome = "unavailable"
		return Response{}, fmt.Errorf("%w: read body: %w", ErrUpstreamUnavailable, err)
	}

	if upstream.StatusCode < 200 || upstream.StatusCode > 299 {
		outcome = "upstream_error"
		if len(body) > transporthttp.ErrorBodyLimit {
			body = body[:transporthttp.ErrorBodyLimit]
		}
		return Response{}, &UpstreamError{Status: upstream.StatusCode, Body: string(body)}
	}

	contentType := upstream.Header.Get("Content-Type")
	if contentType == "" {
		contentType = DefaultContentType
	}
	resp = Response{ContentType: contentType, Body: body}

	if cacheable {
		if err := s.cfg.cache.Set(ctx, key, Entry{ContentType: contentType, Body: body}, s.cfg.ttl); err != nil {
			logger.Warn(ctx, "relay cache write failed", "error", err)
		}
	}

	return resp, nil
}

func parseTarget(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidTarget)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, raw)
	}

	return u, nil
}
