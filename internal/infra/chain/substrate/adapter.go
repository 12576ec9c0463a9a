// Package substrate builds adapters for Substrate chains indexed by Subscan.
// Only balance transfers are covered, since that is what the Subscan
// transfers endpoint returns.
package substrate

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gabapcia/walletscope/internal/infra/chain"
	"github.com/gabapcia/walletscope/internal/ledger"
	"github.com/gabapcia/walletscope/internal/pkg/logger"
	transporthttp "github.com/gabapcia/walletscope/internal/pkg/transport/http"
	"github.com/gabapcia/walletscope/internal/pkg/units"
	"github.com/gabapcia/walletscope/internal/pkg/validator"
)

// DefaultLimit is the page size when none is requested.
const DefaultLimit = 25

// Config describes one Substrate chain. When SS58Prefix is set, addresses
// encoded for other networks are rejected.
type Config struct {
	ID          string  `yaml:"id" validate:"required,chainid"`
	Name        string  `yaml:"name" validate:"required"`
	Symbol      string  `yaml:"symbol" validate:"required"`
	ExplorerURL string  `yaml:"explorer_url" validate:"required,url"`
	SubscanBase string  `yaml:"subscan_base" validate:"required,url"`
	Decimals    int     `yaml:"decimals" validate:"gte=0,lte=36"`
	SS58Prefix  *uint16 `yaml:"ss58_prefix"`
	APIKey      string  `yaml:"-"`
}

type adapter struct {
	cfg    Config
	client *transporthttp.Client
}

var _ ledger.Adapter = (*adapter)(nil)

// New validates cfg and returns an adapter for it.
func New(cfg Config, client *transporthttp.Client) (*adapter, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("substrate chain %q: %w", cfg.ID, err)
	}

	if cfg.SS58Prefix != nil {
		prefix := *cfg.SS58Prefix
		cfg.SS58Prefix = &prefix
	}

	return &adapter{
		cfg:    cfg,
		client: client,
	}, nil
}

func (a *adapter) ChainID() string {
	return a.cfg.ID
}

func (a *adapter) ValidateAddress(address string) bool {
	prefix, ok := decodeSS58(address)
	if !ok {
		return false
	}

	return a.cfg.SS58Prefix == nil || *a.cfg.SS58Prefix == prefix
}

// ExplorerURL links to the extrinsic. Composite record hashes are reduced to
// the extrinsic hash.
func (a *adapter) ExplorerURL(hash string) string {
	base, _, _ := strings.Cut(hash, "-")
	return ledger.ExplorerLink(a.cfg.ExplorerURL, "extrinsic", base)
}

type transfersRequest struct {
	Address string `json:"address"`
	Row     int    `json:"row"`
	Page    int    `json:"page"`
}

type transfer struct {
	From           string      `json:"from"`
	To             string      `json:"to"`
	Hash           string      `json:"hash"`
	BlockNum       json.Number `json:"block_num"`
	BlockTimestamp int64       `json:"block_timestamp"`
	Amount         string      `json:"amount"`
	AmountV2       string      `json:"amount_v2"`
	Fee            string      `json:"fee"`
	Success        bool        `json:"success"`
	AssetSymbol    string      `json:"asset_symbol"`
	ExtrinsicIndex string      `json:"extrinsic_index"`
	EventIdx       int         `json:"event_idx"`
	Module         string      `json:"module"`
}

type transfersResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Count     int               `json:"count"`
		Transfers []json.RawMessage `json:"transfers"`
	} `json:"data"`
}

func (a *adapter) FetchTransactions(ctx context.Context, address string, opts ledger.FetchOptions) (ledger.Page, error) {
	if !a.ValidateAddress(address) {
		return ledger.Page{}, fmt.Errorf("%w: %q is not a %s address", ledger.ErrInvalidAddress, address, a.cfg.Name)
	}

	page, err := chain.PageCursor(opts.Cursor, 0)
	if err != nil {
		return ledger.Page{}, err
	}

	limit := chain.Limit(opts.Limit, DefaultLimit)
	ctx = logger.Derive(ctx, "chain", a.cfg.ID)

	var reqOpts []transporthttp.RequestOption
	if a.cfg.APIKey != "" {
		reqOpts = append(reqOpts, transporthttp.WithRequestHeader("X-API-Key", a.cfg.APIKey))
	}

	target := strings.TrimRight(a.cfg.SubscanBase, "/") + "/api/v2/scan/transfers"
	req := transfersRequest{Address: address, Row: limit, Page: page}

	var res transfersResponse
	if err := a.client.PostJSON(ctx, target, req, &res, reqOpts...); err != nil {
		return ledger.Page{}, chain.WrapTransport(err)
	}

	if res.Code != 0 {
		return ledger.Page{}, fmt.Errorf("%w: subscan code %d: %s", ledger.ErrUpstream, res.Code, res.Message)
	}

	type decoded struct {
		transfer transfer
		raw      json.RawMessage
	}

	transfers := make([]decoded, 0, len(res.Data.Transfers))
	occurrences := make(map[string]int, len(res.Data.Transfers))
	for _, raw := range res.Data.Transfers {
		var t transfer
		if err := json.Unmarshal(raw, &t); err != nil {
			return ledger.Page{}, fmt.Errorf("%w: decode transfer: %w", ledger.ErrUpstream, err)
		}

		if t.Hash == "" {
			continue
		}

		transfers = append(transfers, decoded{transfer: t, raw: raw})
		occurrences[t.Hash]++
	}

	// One extrinsic can emit several transfer events.
	records := make([]ledger.Transaction, 0, len(transfers))
	for _, d := range transfers {
		hash := d.transfer.Hash
		if occurrences[hash] > 1 {
			hash = hash + "-" + strconv.Itoa(d.transfer.EventIdx)
		}

		records = append(records, a.normalize(address, hash, d.transfer, d.raw))
	}

	count := res.Data.Count
	result := ledger.Page{
		Records:    ledger.DedupByHash(records),
		TotalCount: &count,
	}
	if (page+1)*limit < count {
		result.HasMore = true
		result.NextCursor = strconv.Itoa(page + 1)
	}

	logger.Debug(ctx, "fetched page", "page", page, "records", len(result.Records), "total", count)

	return result, nil
}

func (a *adapter) normalize(address, hash string, t transfer, raw json.RawMessage) ledger.Transaction {
	asset := a.cfg.Symbol
	amount := units.FormatBaseUnits(t.AmountV2, a.cfg.Decimals)
	if t.AmountV2 == "" {
		amount = units.Truncate(t.Amount)
	}

	if t.AssetSymbol != "" && !strings.EqualFold(t.AssetSymbol, a.cfg.Symbol) {
		// amount_v2 is in the asset's own precision, which is not known here.
		asset, amount = t.AssetSymbol, units.Truncate(t.Amount)
	}

	status := ledger.StatusSuccess
	if !t.Success {
		status = ledger.StatusFailed
	}

	return ledger.Transaction{
		ChainID:      a.cfg.ID,
		Address:      address,
		Timestamp:    units.FromUnix(t.BlockTimestamp),
		Hash:         hash,
		Type:         ledger.TypeTransfer,
		Direction:    ledger.ResolveDirection(address, t.From, t.To),
		Counterparty: ledger.Counterparty(address, t.From, t.To),
		Asset:        asset,
		Amount:       amount,
		Fee:          units.FormatBaseUnits(t.Fee, a.cfg.Decimals),
		FeeAsset:     a.cfg.Symbol,
		Status:       status,
		Block:        t.BlockNum.String(),
		ExplorerURL:  a.ExplorerURL(hash),
		PnL:          units.Zero,
		RawDetails:   raw,
	}
}
