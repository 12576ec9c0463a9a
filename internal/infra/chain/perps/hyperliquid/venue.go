// Package hyperliquid reads fills and funding settlements from the
// Hyperliquid info API.
package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gabapcia/walletscope/internal/infra/chain"
	"github.com/gabapcia/walletscope/internal/infra/chain/perps"
	"github.com/gabapcia/walletscope/internal/ledger"
	transporthttp "github.com/gabapcia/walletscope/internal/pkg/transport/http"
	"github.com/gabapcia/walletscope/internal/pkg/units"
)

const (
	ChainID            = "hyperliquid"
	DefaultEndpoint    = "https://api.hyperliquid.xyz/info"
	DefaultExplorerURL = "https://app.hyperliquid.xyz/explorer"
	SettlementToken    = "USDC"

	// Page sizes the info API caps each response at.
	FillPageSize    = 2000
	FundingPageSize = 500
)

type config struct {
	endpoint    string
	explorerURL string
	maxPages    int
	perpsOpts   []perps.Option
}

// Option configures the Hyperliquid adapter.
type Option func(*config)

// WithEndpoint overrides the info API URL.
func WithEndpoint(endpoint string) Option {
	return func(c *config) {
		c.endpoint = endpoint
	}
}

// WithExplorerURL overrides the explorer used for deep links.
func WithExplorerURL(url string) Option {
	return func(c *config) {
		c.explorerURL = url
	}
}

// WithMaxPages bounds how many pages of each stream are read.
func WithMaxPages(n int) Option {
	return func(c *config) {
		c.maxPages = n
	}
}

// WithPerpsOptions forwards options to the shared perpetuals adapter.
func WithPerpsOptions(opts ...perps.Option) Option {
	return func(c *config) {
		c.perpsOpts = append(c.perpsOpts, opts...)
	}
}

type venue struct {
	http     *transporthttp.Client
	endpoint string
}

var _ perps.Venue = (*venue)(nil)

// New returns the ledger adapter for Hyperliquid.
func New(client *transporthttp.Client, opts ...Option) (*perps.Adapter, error) {
	cfg := config{
		endpoint:    DefaultEndpoint,
		explorerURL: DefaultExplorerURL,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	v := &venue{
		http:     client,
		endpoint: cfg.endpoint,
	}

	return perps.New(perps.VenueConfig{
		ID:              ChainID,
		Name:            "Hyperliquid",
		ExplorerURL:     cfg.explorerURL,
		SettlementToken: SettlementToken,
		FillPageSize:    FillPageSize,
		FundingPageSize: FundingPageSize,
		MaxPages:        cfg.maxPages,
	}, v, cfg.perpsOpts...)
}

func (v *venue) ValidateAddress(address string) bool {
	return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
}

type infoRequest struct {
	Type      string `json:"type"`
	User      string `json:"user"`
	StartTime int64  `json:"startTime"`
	EndTime   *int64 `json:"endTime,omitempty"`
}

type fillResponse struct {
	Coin      string      `json:"coin"`
	Px        string      `json:"px"`
	Sz        string      `json:"sz"`
	Side      string      `json:"side"`
	Time      int64       `json:"time"`
	Dir       string      `json:"dir"`
	ClosedPnl *string     `json:"closedPnl"`
	Hash      string      `json:"hash"`
	Tid       json.Number `json:"tid"`
	Fee       string      `json:"fee"`
	FeeToken  string      `json:"feeToken"`
}

func (f fillResponse) toFill(raw json.RawMessage) perps.Fill {
	return perps.Fill{
		Hash:      f.Hash,
		TradeID:   f.Tid.String(),
		Coin:      f.Coin,
		Price:     f.Px,
		Size:      f.Sz,
		Side:      f.Side,
		Time:      units.FromUnixMilli(f.Time),
		Dir:       f.Dir,
		ClosedPnL: f.ClosedPnl,
		Fee:       f.Fee,
		FeeToken:  f.FeeToken,
		Raw:       raw,
	}
}

type fundingResponse struct {
	Time  int64  `json:"time"`
	Hash  string `json:"hash"`
	Delta struct {
		Coin        string `json:"coin"`
		USDC        string `json:"usdc"`
		Szi         string `json:"szi"`
		FundingRate string `json:"fundingRate"`
	} `json:"delta"`
}

func (f fundingResponse) toFunding(raw json.RawMessage) perps.Funding {
	return perps.Funding{
		Hash:   f.Hash,
		Coin:   f.Delta.Coin,
		Time:   units.FromUnixMilli(f.Time),
		Amount: f.Delta.USDC,
		Size:   f.Delta.Szi,
		Rate:   f.Delta.FundingRate,
		Raw:    raw,
	}
}

func (v *venue) FillsBefore(ctx context.Context, address string, end time.Time) ([]perps.Fill, error) {
	var rows []json.RawMessage
	if err := v.info(ctx, "userFillsByTime", address, end, &rows); err != nil {
		return nil, err
	}

	fills := make([]perps.Fill, 0, len(rows))
	for _, raw := range rows {
		var f fillResponse
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("%w: decode fill: %w", ledger.ErrUpstream, err)
		}
		fills = append(fills, f.toFill(raw))
	}

	return fills, nil
}

func (v *venue) FundingBefore(ctx context.Context, address string, end time.Time) ([]perps.Funding, error) {
	var rows []json.RawMessage
	if err := v.info(ctx, "userFunding", address, end, &rows); err != nil {
		return nil, err
	}

	funding := make([]perps.Funding, 0, len(rows))
	for _, raw := range rows {
		var f fundingResponse
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("%w: decode funding: %w", ledger.ErrUpstream, err)
		}
		funding = append(funding, f.toFunding(raw))
	}

	return funding, nil
}

func (v *venue) info(ctx context.Context, kind, address string, end time.Time, out any) error {
	req := infoRequest{
		Type: kind,
		User: strings.ToLower(address),
	}
	if !end.IsZero() {
		ms := end.UnixMilli()
		req.EndTime = &ms
	}

	return chain.WrapTransport(v.http.PostJSON(ctx, v.endpoint, req, out))
}
