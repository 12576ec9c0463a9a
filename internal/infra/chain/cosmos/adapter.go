// Package cosmos builds adapters for Cosmos SDK chains from a configuration
// entry. Transactions come from the LCD tx-search endpoint, queried once for
// the address as sender and once as recipient, with ordered failover across
// the configured LCD endpoints.
package cosmos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gabapcia/walletscope/internal/infra/chain"
	"github.com/gabapcia/walletscope/internal/ledger"
	"github.com/gabapcia/walletscope/internal/pkg/logger"
	transporthttp "github.com/gabapcia/walletscope/internal/pkg/transport/http"
	"github.com/gabapcia/walletscope/internal/pkg/units"
	"github.com/gabapcia/walletscope/internal/pkg/validator"
)

const (
	// DefaultLimit is the page size when none is requested.
	DefaultLimit = 50

	// DefaultAddressLength is the bech32 data length of a 20-byte account.
	DefaultAddressLength = 38
)

// Config describes one Cosmos SDK chain.
type Config struct {
	ID            string   `yaml:"id" validate:"required,chainid"`
	Name          string   `yaml:"name" validate:"required"`
	Symbol        string   `yaml:"symbol" validate:"required"`
	ExplorerURL   string   `yaml:"explorer_url" validate:"required,url"`
	AddressPrefix string   `yaml:"address_prefix" validate:"required,alphanum,lowercase"`
	AddressLength int      `yaml:"address_length" validate:"gte=0"`
	LCDEndpoints  []string `yaml:"lcd_endpoints" validate:"required,min=1,dive,url"`
	Decimals      int      `yaml:"decimals" validate:"gte=0,lte=36"`
	Denom         string   `yaml:"denom" validate:"required"`
}

type adapter struct {
	cfg     Config
	client  *transporthttp.Client
	address *regexp.Regexp
}

var _ ledger.Adapter = (*adapter)(nil)

// New validates cfg and returns an adapter for it. The client should be
// built without retries: failover across endpoints replaces them. Zero
// Decimals and AddressLength fall back to 6 and DefaultAddressLength.
func New(cfg Config, client *transporthttp.Client) (*adapter, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("cosmos chain %q: %w", cfg.ID, err)
	}

	if cfg.Decimals == 0 {
		cfg.Decimals = DefaultDenomDecimals
	}

	if cfg.AddressLength == 0 {
		cfg.AddressLength = DefaultAddressLength
	}

	cfg.LCDEndpoints = append([]string(nil), cfg.LCDEndpoints...)

	return &adapter{
		cfg:     cfg,
		client:  client,
		address: regexp.MustCompile(fmt.Sprintf(`^%s1[02-9ac-hj-np-z]{%d}$`, regexp.QuoteMeta(cfg.AddressPrefix), cfg.AddressLength)),
	}, nil
}

func (a *adapter) ChainID() string {
	return a.cfg.ID
}

// ValidateAddress checks the human-readable prefix and the data length. The
// bech32 checksum is not verified.
func (a *adapter) ValidateAddress(address string) bool {
	return a.address.MatchString(address)
}

func (a *adapter) ExplorerURL(hash string) string {
	return ledger.ExplorerLink(a.cfg.ExplorerURL, "tx", hash)
}

type event struct {
	Type       string `json:"type"`
	Attributes []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"attributes"`
}

type txResponse struct {
	Height    string `json:"height"`
	TxHash    string `json:"txhash"`
	Code      int    `json:"code"`
	RawLog    string `json:"raw_log"`
	Timestamp string `json:"timestamp"`
	Tx        struct {
		Body struct {
			Messages []message `json:"messages"`
			Memo     string    `json:"memo"`
		} `json:"body"`
		AuthInfo struct {
			Fee struct {
				Amount []coin `json:"amount"`
			} `json:"fee"`
		} `json:"auth_info"`
	} `json:"tx"`
	Events []event `json:"events"`

	raw json.RawMessage
}

// eventCoin returns the first coin in the first attribute key of an event
// of the given type.
func (t txResponse) eventCoin(eventType, key string) (coin, bool) {
	for _, e := range t.Events {
		if e.Type != eventType {
			continue
		}
		for _, attr := range e.Attributes {
			if attr.Key == key {
				return parseCoin(attr.Value)
			}
		}
	}

	return coin{}, false
}

type searchResponse struct {
	// Code and Message are only set on an LCD error body.
	Code        int               `json:"code"`
	Message     string            `json:"message"`
	TxResponses []json.RawMessage `json:"tx_responses"`
}

// search runs one tx-search event query, trying each LCD endpoint in order
// until one answers. Endpoints are never retried.
func (a *adapter) search(ctx context.Context, query string, offset, limit int) ([]txResponse, error) {
	params := url.Values{
		"events":            {query},
		"pagination.limit":  {strconv.Itoa(limit)},
		"pagination.offset": {strconv.Itoa(offset)},
		"order_by":          {"ORDER_BY_DESC"},
	}

	var errs []error
	for _, endpoint := range a.cfg.LCDEndpoints {
		target := strings.TrimRight(endpoint, "/") + "/cosmos/tx/v1beta1/txs?" + params.Encode()

		txs, err := a.searchEndpoint(ctx, target)
		if err == nil {
			return txs, nil
		}

		if ctx.Err() != nil {
			return nil, chain.WrapTransport(ctx.Err())
		}

		logger.Warn(ctx, "lcd endpoint failed", "endpoint", endpoint, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", endpoint, err))
	}

	return nil, fmt.Errorf("all lcd endpoints failed: %w", errors.Join(errs...))
}

func (a *adapter) searchEndpoint(ctx context.Context, target string) ([]txResponse, error) {
	var res searchResponse
	if err := a.client.GetJSON(ctx, target, &res); err != nil {
		return nil, chain.WrapTransport(err)
	}

	if res.Code != 0 {
		return nil, fmt.Errorf("%w: lcd code %d: %s", ledger.ErrUpstream, res.Code, res.Message)
	}

	txs := make([]txResponse, 0, len(res.TxResponses))
	for _, raw := range res.TxResponses {
		var tx txResponse
		if err := json.Unmarshal(raw, &tx); err != nil {
			return nil, fmt.Errorf("%w: decode tx response: %w", ledger.ErrUpstream, err)
		}
		tx.raw = raw
		txs = append(txs, tx)
	}

	return txs, nil
}

func (a *adapter) FetchTransactions(ctx context.Context, address string, opts ledger.FetchOptions) (ledger.Page, error) {
	if !a.ValidateAddress(address) {
		return ledger.Page{}, fmt.Errorf("%w: %q is not a %s address", ledger.ErrInvalidAddress, address, a.cfg.AddressPrefix)
	}

	cur, err := parseCursor(opts.Cursor)
	if err != nil {
		return ledger.Page{}, err
	}

	limit := chain.Limit(opts.Limit, DefaultLimit)
	ctx = logger.Derive(ctx, "chain", a.cfg.ID)

	var sent, received []txResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sent, err = a.search(gctx, fmt.Sprintf("message.sender='%s'", address), cur.sender, limit)
		return err
	})
	g.Go(func() (err error) {
		received, err = a.search(gctx, fmt.Sprintf("transfer.recipient='%s'", address), cur.recipient, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return ledger.Page{}, err
	}

	records, next := merge(a.normalizeAll(ctx, address, sent), a.normalizeAll(ctx, address, received), cur, limit)

	page := ledger.Page{Records: records}
	if len(sent) == limit || len(received) == limit || next.sender < cur.sender+len(sent) || next.recipient < cur.recipient+len(received) {
		page.HasMore = true
		page.NextCursor = next.String()
	}

	logger.Debug(ctx, "fetched page", "sent", len(sent), "received", len(received), "records", len(records), "has_more", page.HasMore)

	return page, nil
}

// normalizeAll converts tx responses in source order. Entries with no hash
// or an unparsable timestamp stay in the slice as invalid so that they still
// count towards the stream offset.
func (a *adapter) normalizeAll(ctx context.Context, address string, txs []txResponse) []entry {
	entries := make([]entry, 0, len(txs))
	for _, tx := range txs {
		if tx.TxHash == "" {
			entries = append(entries, entry{})
			continue
		}

		r, err := a.normalize(address, tx)
		if err != nil {
			logger.Warn(ctx, "skipping transaction", "hash", tx.TxHash, "error", err)
			entries = append(entries, entry{})
			continue
		}

		entries = append(entries, entry{record: r, valid: true})
	}

	return entries
}

func (a *adapter) normalize(address string, tx txResponse) (ledger.Transaction, error) {
	ts, err := units.ParseTime(tx.Timestamp)
	if err != nil {
		return ledger.Transaction{}, err
	}

	var mv movement
	if len(tx.Tx.Body.Messages) > 0 {
		mv = classify(tx.Tx.Body.Messages[0], tx)
	} else {
		mv = movement{txType: ledger.TypeContract}
	}

	asset, amount := a.cfg.Symbol, units.Zero
	if mv.coin != nil {
		asset, amount = a.format(*mv.coin)
	}

	feeAsset, fee := a.cfg.Symbol, units.Zero
	if len(tx.Tx.AuthInfo.Fee.Amount) > 0 {
		feeAsset, fee = a.format(tx.Tx.AuthInfo.Fee.Amount[0])
	}

	direction := ledger.DirectionUnknown
	if mv.known {
		direction = ledger.ResolveDirection(address, mv.from, mv.to)
	}

	status := ledger.StatusSuccess
	if tx.Code != 0 {
		status = ledger.StatusFailed
	}

	notes := strings.TrimSpace(tx.Tx.Body.Memo)
	if notes == "" {
		notes = mv.txType + " " + asset
	}

	return ledger.Transaction{
		ChainID:      a.cfg.ID,
		Address:      address,
		Timestamp:    ts,
		Hash:         tx.TxHash,
		Type:         mv.txType,
		Direction:    direction,
		Counterparty: ledger.Counterparty(address, mv.from, mv.to),
		Asset:        asset,
		Amount:       amount,
		Fee:          fee,
		FeeAsset:     feeAsset,
		Status:       status,
		Block:        tx.Height,
		ExplorerURL:  a.ExplorerURL(tx.TxHash),
		Notes:        notes,
		PnL:          units.Zero,
		RawDetails:   tx.raw,
	}, nil
}
