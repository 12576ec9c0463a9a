// Package txsession drives one wallet query: it resolves the adapter, fetches
// the first page, appends further pages on request and exposes the
// accumulated records together with the query state.
package txsession

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gabapcia/walletscope/internal/ledger"
	"github.com/gabapcia/walletscope/internal/pkg/logger"
	"github.com/gabapcia/walletscope/internal/pkg/telemetry"
	"github.com/gabapcia/walletscope/internal/pkg/types"
)

// DefaultPageTimeout bounds every page request.
const DefaultPageTimeout = 60 * time.Second

// ErrSuperseded is returned by a fetch whose result was discarded because a
// newer Fetch started while it was in flight.
var ErrSuperseded = errors.New("fetch superseded by a newer query")

// State is the lifecycle state of a session.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateError   State = "error"
)

// Resolver finds the adapter for a chain id.
type Resolver interface {
	Lookup(chainID string) (ledger.Adapter, error)
}

// View is a point-in-time copy of a session.
type View struct {
	State      State
	ChainID    string
	Address    string
	Records    []ledger.Transaction
	HasMore    bool
	TotalCount *int
	Err        string
}

type config struct {
	pageTimeout time.Duration
	pageLimit   int
}

// Option configures a Session.
type Option func(*config)

// WithPageTimeout overrides DefaultPageTimeout.
func WithPageTimeout(d time.Duration) Option {
	return func(c *config) {
		c.pageTimeout = d
	}
}

// WithPageLimit sets the page size requested from adapters. Zero lets each
// adapter use its default.
func WithPageLimit(n int) Option {
	return func(c *config) {
		c.pageLimit = n
	}
}

// Session holds the state of one query. It is safe for concurrent use; at
// most one page request is in flight at a time.
type Session struct {
	resolver Resolver
	cfg      config

	mu         sync.Mutex
	generation uint64
	state      State
	adapter    ledger.Adapter
	chainID    string
	address    string
	records    []ledger.Transaction
	seen       types.Set[string]
	cursor     string
	hasMore    bool
	totalCount *int
	err        string
}

// New returns an idle session resolving adapters through resolver.
func New(resolver Resolver, opts ...Option) *Session {
	cfg := config{pageTimeout: DefaultPageTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Session{
		resolver: resolver,
		cfg:      cfg,
		state:    StateIdle,
		seen:     types.NewSet[string](),
	}
}

// Fetch starts a new query, discarding everything the session held. Unknown
// chains and malformed addresses fail without any network call. A page
// request still in flight from an earlier query is superseded.
func (s *Session) Fetch(ctx context.Context, chainID, address string) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.reset(chainID, address)

	adapter, err := s.resolver.Lookup(chainID)
	if err != nil {
		s.fail(err)
		s.mu.Unlock()
		return err
	}

	if !adapter.ValidateAddress(address) {
		err := fmt.Errorf("%w: %q is not valid for %s", ledger.ErrInvalidAddress, address, chainID)
		s.fail(err)
		s.mu.Unlock()
		return err
	}

	s.adapter = adapter
	s.state = StateLoading
	s.mu.Unlock()

	return s.load(ctx, gen, adapter, address, ledger.FetchOptions{Limit: s.cfg.pageLimit})
}

// LoadMore appends the next page. It is a no-op unless the last request
// succeeded and the source reported more records behind a cursor.
func (s *Session) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateSuccess || !s.hasMore || s.cursor == "" {
		s.mu.Unlock()
		return nil
	}

	gen := s.generation
	adapter, address := s.adapter, s.address
	opts := ledger.FetchOptions{Cursor: s.cursor, Limit: s.cfg.pageLimit}
	s.state = StateLoading
	s.mu.Unlock()

	return s.load(ctx, gen, adapter, address, opts)
}

// FetchAll runs Fetch and then LoadMore until the source is exhausted or
// maxPages pages were read. A maxPages below one reads every page.
func (s *Session) FetchAll(ctx context.Context, chainID, address string, maxPages int) error {
	if err := s.Fetch(ctx, chainID, address); err != nil {
		return err
	}

	for pages := 1; maxPages < 1 || pages < maxPages; pages++ {
		if !s.Snapshot().HasMore {
			break
		}

		if err := s.LoadMore(ctx); err != nil {
			return err
		}
	}

	return nil
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total *int
	if s.totalCount != nil {
		n := *s.totalCount
		total = &n
	}

	return View{
		State:      s.state,
		ChainID:    s.chainID,
		Address:    s.address,
		Records:    slices.Clone(s.records),
		HasMore:    s.hasMore,
		TotalCount: total,
		Err:        s.err,
	}
}

func (s *Session) load(ctx context.Context, gen uint64, adapter ledger.Adapter, address string, opts ledger.FetchOptions) error {
	page, err := s.fetchPage(ctx, adapter, address, opts)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		logger.Debug(ctx, "discarding superseded page", "chain", adapter.ChainID())
		return ErrSuperseded
	}

	if err != nil {
		s.fail(err)
		return err
	}

	dropped := 0
	for _, r := range page.Records {
		if !s.seen.AddIfAbsent(r.Hash) {
			dropped++
			continue
		}
		s.records = append(s.records, r)
	}
	if dropped > 0 {
		logger.Debug(ctx, "dropped records already held by the session", "count", dropped)
	}

	s.cursor = page.NextCursor
	s.hasMore = page.HasMore
	s.totalCount = page.TotalCount
	s.state = StateSuccess
	s.err = ""

	return nil
}

func (s *Session) fetchPage(ctx context.Context, adapter ledger.Adapter, address string, opts ledger.FetchOptions) (ledger.Page, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "txsession.page", trace.WithAttributes(
		attribute.String("chain.id", adapter.ChainID()),
		attribute.Bool("page.first", opts.Cursor == ""),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.pageTimeout)
	defer cancel()

	start := time.Now()
	page, err := adapter.FetchTransactions(ctx, address, opts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: page request timed out after %s", ledger.ErrTransport, s.cfg.pageTimeout)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn(ctx, "page fetch failed", "chain", adapter.ChainID(), "error", err)
		return ledger.Page{}, err
	}

	span.SetAttributes(attribute.Int("page.records", len(page.Records)), attribute.Bool("page.has_more", page.HasMore))
	logger.Info(ctx, "page fetched",
		"chain", adapter.ChainID(),
		"records", len(page.Records),
		"has_more", page.HasMore,
		"duration", time.Since(start).String(),
	)

	return page, nil
}

func (s *Session) reset(chainID, address string) {
	s.state = StateIdle
	s.adapter = nil
	s.chainID = chainID
	s.address = address
	s.records = nil
	s.seen = types.NewSet[string]()
	s.cursor = ""
	s.hasMore = false
	s.totalCount = nil
	s.err = ""
}

// fail records err as the session error. Records of earlier pages stay; the
// failed page contributes nothing.
func (s *Session) fail(err error) {
	s.state = StateError
	s.hasMore = false
	s.err = err.Error()
}
