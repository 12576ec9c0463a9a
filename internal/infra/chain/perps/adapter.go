package perps

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gabapcia/walletscope/internal/ledger"
	"github.com/gabapcia/walletscope/internal/pkg/logger"
	"github.com/gabapcia/walletscope/internal/pkg/resilience/retry"
	"github.com/gabapcia/walletscope/internal/pkg/units"
	"github.com/gabapcia/walletscope/internal/pkg/validator"
)

// DefaultMaxPages bounds each stream so a misbehaving venue cannot keep a
// fetch looping.
const DefaultMaxPages = 50

// VenueConfig describes a venue to the shared adapter.
type VenueConfig struct {
	ID              string `validate:"required,chainid"`
	Name            string `validate:"required"`
	ExplorerURL     string `validate:"required,url"`
	SettlementToken string `validate:"required"`
	FillPageSize    int    `validate:"gt=0"`
	FundingPageSize int    `validate:"gt=0"`
	MaxPages        int    `validate:"gte=0"`
}

type config struct {
	retry retry.Retry
}

// Option configures the adapter.
type Option func(*config)

// WithRetry replaces the retry policy applied to every page read. The
// default retries rate-limited reads three times with backoff.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

// Adapter is the ledger adapter shared by every perpetuals venue.
type Adapter struct {
	cfg   VenueConfig
	venue Venue
	retry retry.Retry
}

var _ ledger.Adapter = (*Adapter)(nil)

// New validates cfg and returns an adapter reading from venue.
func New(cfg VenueConfig, venue Venue, opts ...Option) (*Adapter, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("perps venue %q: %w", cfg.ID, err)
	}

	if cfg.MaxPages == 0 {
		cfg.MaxPages = DefaultMaxPages
	}

	c := config{
		retry: retry.New(
			retry.WithAttempts(3),
			retry.WithDelay(500*time.Millisecond),
			retry.WithMaxDelay(4*time.Second),
			retry.WithRetryIf(func(err error) bool { return errors.Is(err, ledger.ErrRateLimited) }),
		),
	}
	for _, opt := range opts {
		opt(&c)
	}

	return &Adapter{
		cfg:   cfg,
		venue: venue,
		retry: c.retry,
	}, nil
}

func (a *Adapter) ChainID() string {
	return a.cfg.ID
}

func (a *Adapter) ValidateAddress(address string) bool {
	return a.venue.ValidateAddress(address)
}

func (a *Adapter) ExplorerURL(hash string) string {
	return ledger.ExplorerLink(a.cfg.ExplorerURL, "tx", baseHash(hash))
}

// FetchTransactions returns the whole fill and funding history in one page.
// Cursor and Limit are ignored.
func (a *Adapter) FetchTransactions(ctx context.Context, address string, _ ledger.FetchOptions) (ledger.Page, error) {
	if !a.venue.ValidateAddress(address) {
		return ledger.Page{}, fmt.Errorf("%w: %q is not a %s account", ledger.ErrInvalidAddress, address, a.cfg.Name)
	}

	ctx = logger.Derive(ctx, "chain", a.cfg.ID)

	var (
		fills   []Fill
		funding []Funding
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		fills, err = collect(gctx, a, a.cfg.FillPageSize, func(ctx context.Context, end time.Time) ([]Fill, error) {
			return a.venue.FillsBefore(ctx, address, end)
		}, func(f Fill) time.Time { return f.Time })
		return err
	})
	g.Go(func() (err error) {
		funding, err = collect(gctx, a, a.cfg.FundingPageSize, func(ctx context.Context, end time.Time) ([]Funding, error) {
			return a.venue.FundingBefore(ctx, address, end)
		}, func(f Funding) time.Time { return f.Time })
		return err
	})
	if err := g.Wait(); err != nil {
		return ledger.Page{}, err
	}

	fillRecords := make([]ledger.Transaction, 0, len(fills))
	for _, f := range fills {
		r, err := a.fillRecord(address, f)
		if err != nil {
			return ledger.Page{}, err
		}
		fillRecords = append(fillRecords, r)
	}

	fundingRecords := make([]ledger.Transaction, 0, len(funding))
	for _, f := range funding {
		fundingRecords = append(fundingRecords, a.fundingRecord(address, f))
	}

	records := ledger.MergeDesc(fillRecords, fundingRecords)
	logger.Debug(ctx, "fetched history", "fills", len(fills), "funding", len(funding), "records", len(records))

	return ledger.Page{Records: records}, nil
}

// collect pages a stream backwards: each request ends one millisecond before
// the oldest event seen so far. It stops on a short page, on a page that
// does not move back in time, or after MaxPages.
func collect[T any](ctx context.Context, a *Adapter, pageSize int, read func(context.Context, time.Time) ([]T, error), at func(T) time.Time) ([]T, error) {
	var (
		all []T
		end time.Time
	)
	for range a.cfg.MaxPages {
		var page []T
		err := a.retry.Execute(ctx, func() (err error) {
			page, err = read(ctx, end)
			return err
		})
		if err != nil {
			return nil, err
		}

		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}

		oldest := at(page[0])
		for _, event := range page[1:] {
			if t := at(event); t.Before(oldest) {
				oldest = t
			}
		}

		next := oldest.Add(-time.Millisecond)
		if !end.IsZero() && !next.Before(end) {
			logger.Warn(ctx, "venue returned a page that does not move back in time", "end", end)
			return all, nil
		}
		end = next
	}

	logger.Warn(ctx, "stopped paging at the page limit", "max_pages", a.cfg.MaxPages)
	return all, nil
}

func (a *Adapter) fillRecord(address string, f Fill) (ledger.Transaction, error) {
	tag, err := classifyFill(f)
	if err != nil {
		return ledger.Transaction{}, err
	}

	pnl, paymentToken := units.Zero, ""
	if tag == ledger.TagClosePosition {
		if f.ClosedPnL != nil {
			pnl = units.Truncate(*f.ClosedPnL)
		}
		paymentToken = a.cfg.SettlementToken
	}

	feeAsset := f.FeeToken
	if feeAsset == "" {
		feeAsset = a.cfg.SettlementToken
	}

	hash := f.Hash + "-" + f.TradeID

	return ledger.Transaction{
		ChainID:      a.cfg.ID,
		Address:      address,
		Timestamp:    f.Time,
		Hash:         hash,
		Type:         string(tag),
		Direction:    direction(tag, pnl),
		Asset:        f.Coin,
		Amount:       units.Abs(units.Truncate(f.Size)),
		Fee:          units.Truncate(f.Fee),
		FeeAsset:     feeAsset,
		Status:       ledger.StatusSuccess,
		ExplorerURL:  a.ExplorerURL(f.Hash),
		Notes:        fmt.Sprintf("%s %s %s @ %s", fillLabel(f), units.Abs(units.Truncate(f.Size)), f.Coin, units.Truncate(f.Price)),
		Tag:          tag,
		PnL:          pnl,
		PaymentToken: paymentToken,
		RawDetails:   f.Raw,
	}, nil
}

func (a *Adapter) fundingRecord(address string, f Funding) ledger.Transaction {
	pnl := units.Truncate(f.Amount)

	return ledger.Transaction{
		ChainID:      a.cfg.ID,
		Address:      address,
		Timestamp:    f.Time,
		Hash:         f.Hash + "-" + f.Coin + "-" + strconv.FormatInt(f.Time.UnixMilli(), 10),
		Type:         ledger.TypeFundingPayment,
		Direction:    direction(ledger.TagFundingPayment, pnl),
		Asset:        a.cfg.SettlementToken,
		Amount:       units.Abs(pnl),
		Fee:          units.Zero,
		FeeAsset:     a.cfg.SettlementToken,
		Status:       ledger.StatusSuccess,
		ExplorerURL:  a.ExplorerURL(f.Hash),
		Notes:        fmt.Sprintf("Funding %s rate %s", f.Coin, f.Rate),
		Tag:          ledger.TagFundingPayment,
		PnL:          pnl,
		PaymentToken: a.cfg.SettlementToken,
		RawDetails:   f.Raw,
	}
}

func fillLabel(f Fill) string {
	if f.Dir != "" {
		return f.Dir
	}

	return f.Side
}

// baseHash strips the composite suffix added to fill and funding hashes.
func baseHash(hash string) string {
	for i := 0; i < len(hash); i++ {
		if hash[i] == '-' {
			return hash[:i]
		}
	}

	return hash
}
