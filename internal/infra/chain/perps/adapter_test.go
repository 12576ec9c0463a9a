package perps

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabapcia/walletscope/internal/ledger"
	"github.com/gabapcia/walletscope/internal/pkg/resilience/retry"
	"github.com/gabapcia/walletscope/internal/pkg/validator"
)

const account = "0x1111111111111111111111111111111111111111"

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// fakeVenue serves pre-built pages in order and records the end bound of
// every call.
type fakeVenue struct {
	mu          sync.Mutex
	fillPages   [][]Fill
	fundPages   [][]Funding
	fillErrs    []error
	fillEnds    []time.Time
	fundingEnds []time.Time
}

func (v *fakeVenue) ValidateAddress(address string) bool {
	return strings.HasPrefix(address, "0x") && len(address) == 42
}

func (v *fakeVenue) FillsBefore(_ context.Context, _ string, end time.Time) ([]Fill, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.fillEnds = append(v.fillEnds, end)
	if len(v.fillErrs) > 0 {
		err := v.fillErrs[0]
		v.fillErrs = v.fillErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if len(v.fillPages) == 0 {
		return nil, nil
	}

	page := v.fillPages[0]
	v.fillPages = v.fillPages[1:]
	return page, nil
}

func (v *fakeVenue) FundingBefore(_ context.Context, _ string, end time.Time) ([]Funding, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.fundingEnds = append(v.fundingEnds, end)
	if len(v.fundPages) == 0 {
		return nil, nil
	}

	page := v.fundPages[0]
	v.fundPages = v.fundPages[1:]
	return page, nil
}

func testConfig() VenueConfig {
	return VenueConfig{
		ID:              "hyperliquid",
		Name:            "Hyperliquid",
		ExplorerURL:     "https://app.hyperliquid.xyz/explorer",
		SettlementToken: "USDC",
		FillPageSize:    2,
		FundingPageSize: 2,
	}
}

func fastRetry() retry.Retry {
	return retry.New(
		retry.WithAttempts(3),
		retry.WithDelay(time.Millisecond),
		retry.WithMaxDelay(time.Millisecond),
		retry.WithRetryIf(func(err error) bool { return errors.Is(err, ledger.ErrRateLimited) }),
	)
}

func newAdapter(t *testing.T, venue Venue) *Adapter {
	t.Helper()

	a, err := New(testConfig(), venue, WithRetry(fastRetry()))
	require.NoError(t, err)

	return a
}

func str(s string) *string {
	return &s
}

func TestNew(t *testing.T) {
	t.Run("defaults the page limit", func(t *testing.T) {
		a, err := New(testConfig(), &fakeVenue{})
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxPages, a.cfg.MaxPages)
		assert.NotNil(t, a.retry)
		assert.Equal(t, "hyperliquid", a.ChainID())
	})

	t.Run("rejects an incomplete config", func(t *testing.T) {
		cfg := testConfig()
		cfg.SettlementToken = ""
		cfg.FillPageSize = 0

		_, err := New(cfg, &fakeVenue{})
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})
}

func TestAdapter_ExplorerURL(t *testing.T) {
	a := newAdapter(t, &fakeVenue{})

	assert.Equal(t, "https://app.hyperliquid.xyz/explorer/tx/0xabc", a.ExplorerURL("0xabc-17"))
	assert.Equal(t, "https://app.hyperliquid.xyz/explorer/tx/0xabc", a.ExplorerURL("0xabc"))
	assert.Empty(t, a.ExplorerURL(""))
}

func TestAdapter_FetchTransactions(t *testing.T) {
	t.Run("rejects a malformed address before any read", func(t *testing.T) {
		venue := &fakeVenue{}
		a := newAdapter(t, venue)

		_, err := a.FetchTransactions(t.Context(), "not-an-address", ledger.FetchOptions{})
		assert.ErrorIs(t, err, ledger.ErrInvalidAddress)
		assert.Empty(t, venue.fillEnds)
		assert.Empty(t, venue.fundingEnds)
	})

	t.Run("builds open close and funding records newest first", func(t *testing.T) {
		closing := Fill{
			Hash: "0xclose", TradeID: "2", Coin: "BTC", Price: "66000.5", Size: "0.5", Side: "A",
			Time: base.Add(2 * time.Hour), Dir: "Close Long", ClosedPnL: str("500.25"),
			Fee: "1.2", FeeToken: "USDC", Raw: json.RawMessage(`{"tid":2}`),
		}
		opening := Fill{
			Hash: "0xopen", TradeID: "1", Coin: "BTC", Price: "65000", Size: "0.5", Side: "B",
			Time: base, Dir: "Open Long", ClosedPnL: str("0"), Fee: "1.1",
		}
		venue := &fakeVenue{
			fillPages: [][]Fill{{closing, opening}, nil},
			fundPages: [][]Funding{{
				{
					Hash: "0xfund", Coin: "BTC", Time: base.Add(time.Hour),
					Amount: "-0.75", Size: "0.5", Rate: "0.0000125", Raw: json.RawMessage(`{"usdc":"-0.75"}`),
				},
			}},
		}
		a := newAdapter(t, venue)

		page, err := a.FetchTransactions(t.Context(), account, ledger.FetchOptions{Cursor: "ignored", Limit: 1})
		require.NoError(t, err)
		assert.False(t, page.HasMore)
		assert.Empty(t, page.NextCursor)
		require.Len(t, page.Records, 3)

		closeRec, fund, open := page.Records[0], page.Records[1], page.Records[2]

		assert.Equal(t, "0xclose-2", closeRec.Hash)
		assert.Equal(t, ledger.TagClosePosition, closeRec.Tag)
		assert.Equal(t, ledger.TypeClosePosition, closeRec.Type)
		assert.Equal(t, ledger.DirectionIn, closeRec.Direction)
		assert.Equal(t, "BTC", closeRec.Asset)
		assert.Equal(t, "0.5", closeRec.Amount)
		assert.Equal(t, "500.25", closeRec.PnL)
		assert.Equal(t, "USDC", closeRec.PaymentToken)
		assert.Equal(t, "1.2", closeRec.Fee)
		assert.Equal(t, "USDC", closeRec.FeeAsset)
		assert.Equal(t, "Close Long 0.5 BTC @ 66000.5", closeRec.Notes)
		assert.Equal(t, "https://app.hyperliquid.xyz/explorer/tx/0xclose", closeRec.ExplorerURL)
		assert.JSONEq(t, `{"tid":2}`, string(closeRec.RawDetails))

		assert.Equal(t, ledger.TagFundingPayment, fund.Tag)
		assert.Equal(t, ledger.TypeFundingPayment, fund.Type)
		assert.Equal(t, ledger.DirectionOut, fund.Direction)
		assert.Equal(t, "USDC", fund.Asset)
		assert.Equal(t, "0.75", fund.Amount)
		assert.Equal(t, "-0.75", fund.PnL)
		assert.Equal(t, "USDC", fund.PaymentToken)
		assert.Equal(t, "0", fund.Fee)
		assert.Equal(t, "0xfund-BTC-"+"1714568400000", fund.Hash)

		assert.Equal(t, "0xopen-1", open.Hash)
		assert.Equal(t, ledger.TagOpenPosition, open.Tag)
		assert.Equal(t, ledger.DirectionOut, open.Direction)
		assert.Equal(t, "0", open.PnL)
		assert.Empty(t, open.PaymentToken)
		assert.Equal(t, "USDC", open.FeeAsset)

		for _, r := range page.Records {
			assert.Equal(t, "hyperliquid", r.ChainID)
			assert.Equal(t, account, r.Address)
			assert.Equal(t, ledger.StatusSuccess, r.Status)
		}
	})

	t.Run("pages backwards from the oldest event", func(t *testing.T) {
		venue := &fakeVenue{
			fillPages: [][]Fill{
				{
					{Hash: "0xa", TradeID: "3", Coin: "ETH", Size: "1", Time: base.Add(time.Hour), Dir: "Open Short"},
					{Hash: "0xb", TradeID: "2", Coin: "ETH", Size: "1", Time: base, Dir: "Open Short"},
				},
				{
					{Hash: "0xc", TradeID: "1", Coin: "ETH", Size: "1", Time: base.Add(-time.Hour), Dir: "Open Short"},
				},
			},
		}
		a := newAdapter(t, venue)

		page, err := a.FetchTransactions(t.Context(), account, ledger.FetchOptions{})
		require.NoError(t, err)
		assert.Len(t, page.Records, 3)

		require.Len(t, venue.fillEnds, 2)
		assert.True(t, venue.fillEnds[0].IsZero())
		assert.Equal(t, base.Add(-time.Millisecond), venue.fillEnds[1])
		assert.Len(t, venue.fundingEnds, 1)
	})

	t.Run("stops when a page does not move back in time", func(t *testing.T) {
		stuck := []Fill{
			{Hash: "0xa", TradeID: "2", Coin: "ETH", Size: "1", Time: base, Dir: "Open Long"},
			{Hash: "0xb", TradeID: "1", Coin: "ETH", Size: "1", Time: base, Dir: "Open Long"},
		}
		venue := &fakeVenue{fillPages: [][]Fill{stuck, stuck, stuck}}
		a := newAdapter(t, venue)

		page, err := a.FetchTransactions(t.Context(), account, ledger.FetchOptions{})
		require.NoError(t, err)
		assert.Len(t, venue.fillEnds, 2)
		assert.Len(t, page.Records, 2)
	})

	t.Run("stops at the page limit", func(t *testing.T) {
		venue := &fakeVenue{}
		for i := range 5 {
			at := base.Add(-time.Duration(i) * time.Hour)
			venue.fillPages = append(venue.fillPages, []Fill{
				{Hash: "0xa", TradeID: "a" + at.String(), Coin: "ETH", Size: "1", Time: at, Dir: "Open Long"},
				{Hash: "0xb", TradeID: "b" + at.String(), Coin: "ETH", Size: "1", Time: at.Add(-time.Minute), Dir: "Open Long"},
			})
		}

		cfg := testConfig()
		cfg.MaxPages = 3
		a, err := New(cfg, venue, WithRetry(fastRetry()))
		require.NoError(t, err)

		page, err := a.FetchTransactions(t.Context(), account, ledger.FetchOptions{})
		require.NoError(t, err)
		assert.Len(t, venue.fillEnds, 3)
		assert.Len(t, page.Records, 6)
	})

	t.Run("retries rate-limited reads", func(t *testing.T) {
		venue := &fakeVenue{
			fillErrs:  []error{ledger.ErrRateLimited, nil},
			fillPages: [][]Fill{{{Hash: "0xa", TradeID: "1", Coin: "SOL", Size: "3", Time: base, Dir: "Open Long"}}},
		}
		a := newAdapter(t, venue)

		page, err := a.FetchTransactions(t.Context(), account, ledger.FetchOptions{})
		require.NoError(t, err)
		assert.Len(t, page.Records, 1)
		assert.Len(t, venue.fillEnds, 2)
	})

	t.Run("does not retry other failures", func(t *testing.T) {
		venue := &fakeVenue{fillErrs: []error{ledger.ErrUpstream, nil}}
		a := newAdapter(t, venue)

		_, err := a.FetchTransactions(t.Context(), account, ledger.FetchOptions{})
		assert.ErrorIs(t, err, ledger.ErrUpstream)
		assert.Len(t, venue.fillEnds, 1)
	})

	t.Run("fails the whole fetch on an unclassifiable fill", func(t *testing.T) {
		venue := &fakeVenue{
			fillPages: [][]Fill{{{Hash: "0xa", TradeID: "1", Coin: "ETH", Size: "1", Time: base}}},
		}
		a := newAdapter(t, venue)

		page, err := a.FetchTransactions(t.Context(), account, ledger.FetchOptions{})
		assert.ErrorIs(t, err, ledger.ErrUnclassifiableFill)
		assert.Empty(t, page.Records)
	})
}

func TestClassifyFill(t *testing.T) {
	cases := []struct {
		name string
		fill Fill
		want ledger.Tag
	}{
		{"open by direction", Fill{Dir: "Open Long", ClosedPnL: str("12")}, ledger.TagOpenPosition},
		{"close by direction", Fill{Dir: "Close Short"}, ledger.TagClosePosition},
		{"flip counts as close", Fill{Dir: "Long > Short"}, ledger.TagClosePosition},
		{"liquidation", Fill{Dir: "Liquidated Isolated Long"}, ledger.TagClosePosition},
		{"auto deleverage", Fill{Dir: "Auto-Deleveraging"}, ledger.TagClosePosition},
		{"nonzero pnl without direction", Fill{ClosedPnL: str("-3.5")}, ledger.TagClosePosition},
		{"zero pnl without direction", Fill{ClosedPnL: str("0.0")}, ledger.TagOpenPosition},
		{"unknown direction falls back to pnl", Fill{Dir: "Buy", ClosedPnL: str("1")}, ledger.TagClosePosition},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := classifyFill(tc.fill)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("rejects a fill with neither direction nor pnl", func(t *testing.T) {
		_, err := classifyFill(Fill{Hash: "0xa", TradeID: "1", Dir: "Buy"})
		assert.ErrorIs(t, err, ledger.ErrUnclassifiableFill)

		_, err = classifyFill(Fill{ClosedPnL: str("n/a")})
		assert.ErrorIs(t, err, ledger.ErrUnclassifiableFill)
	})
}

func TestDirection(t *testing.T) {
	assert.Equal(t, ledger.DirectionOut, direction(ledger.TagOpenPosition, "100"))
	assert.Equal(t, ledger.DirectionIn, direction(ledger.TagClosePosition, "100"))
	assert.Equal(t, ledger.DirectionOut, direction(ledger.TagClosePosition, "-1"))
	assert.Equal(t, ledger.DirectionIn, direction(ledger.TagClosePosition, "0"))
	assert.Equal(t, ledger.DirectionOut, direction(ledger.TagFundingPayment, "-0.01"))
}
