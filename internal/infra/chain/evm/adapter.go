// Package evm builds adapters for EVM chains from a configuration entry. Two
// explorer API flavours are supported: Blockscout's REST v2 API, paged by an
// opaque continuation tuple, and the Etherscan-compatible txlist API, paged
// by page number.
package evm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gabapcia/walletscope/internal/ledger"
	"github.com/gabapcia/walletscope/internal/pkg/logger"
	transporthttp "github.com/gabapcia/walletscope/internal/pkg/transport/http"
	"github.com/gabapcia/walletscope/internal/pkg/units"
	"github.com/gabapcia/walletscope/internal/pkg/validator"
)

// APIType selects the explorer API flavour.
type APIType string

const (
	APIBlockscout APIType = "blockscout"
	APIEtherscan  APIType = "etherscan"
)

// DefaultDecimals is the native-asset precision of every EVM chain we ship.
const DefaultDecimals = 18

// Config describes one EVM chain.
type Config struct {
	ID          string  `yaml:"id" validate:"required,chainid"`
	Name        string  `yaml:"name" validate:"required"`
	Symbol      string  `yaml:"symbol" validate:"required"`
	ExplorerURL string  `yaml:"explorer_url" validate:"required,url"`
	APIBase     string  `yaml:"api_base" validate:"required,url"`
	APIType     APIType `yaml:"api_type" validate:"required,oneof=blockscout etherscan"`
	Decimals    int     `yaml:"decimals" validate:"gte=0,lte=36"`
	APIKey      string  `yaml:"-"`
}

type adapter struct {
	cfg    Config
	client *transporthttp.Client
}

var _ ledger.Adapter = (*adapter)(nil)

// New validates cfg and returns an adapter for it. A zero Decimals means
// DefaultDecimals.
func New(cfg Config, client *transporthttp.Client) (*adapter, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("evm chain %q: %w", cfg.ID, err)
	}

	if cfg.Decimals == 0 {
		cfg.Decimals = DefaultDecimals
	}

	return &adapter{
		cfg:    cfg,
		client: client,
	}, nil
}

func (a *adapter) ChainID() string {
	return a.cfg.ID
}

// ValidateAddress accepts 0x-prefixed 20-byte hex addresses of any casing.
func (a *adapter) ValidateAddress(address string) bool {
	return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
}

func (a *adapter) ExplorerURL(hash string) string {
	return ledger.ExplorerLink(a.cfg.ExplorerURL, "tx", hash)
}

func (a *adapter) FetchTransactions(ctx context.Context, address string, opts ledger.FetchOptions) (ledger.Page, error) {
	if !a.ValidateAddress(address) {
		return ledger.Page{}, fmt.Errorf("%w: %q is not an EVM address", ledger.ErrInvalidAddress, address)
	}

	ctx = logger.Derive(ctx, "chain", a.cfg.ID, "api", string(a.cfg.APIType))

	var (
		page ledger.Page
		err  error
	)
	switch a.cfg.APIType {
	case APIEtherscan:
		page, err = a.fetchEtherscan(ctx, address, opts)
	default:
		page, err = a.fetchBlockscout(ctx, address, opts)
	}
	if err != nil {
		return ledger.Page{}, err
	}

	page.Records = ledger.DedupByHash(page.Records)
	logger.Debug(ctx, "fetched page", "records", len(page.Records), "has_more", page.HasMore)

	return page, nil
}

// record holds the source-independent fields both API flavours decode into.
type record struct {
	hash            string
	timestamp       time.Time
	from            string
	to              string
	createdContract string
	value           string
	gasUsed         string
	gasPrice        string
	fee             string // base units, used when gasUsed or gasPrice is missing
	status          ledger.Status
	block           string
	method          string
	txType          string
	raw             json.RawMessage
}

func (a *adapter) normalize(address string, r record) ledger.Transaction {
	to, notes := r.to, r.method
	if to == "" && r.createdContract != "" {
		to, notes = r.createdContract, "contract creation"
	}

	fee := units.MulBaseUnits(r.gasUsed, r.gasPrice)
	if fee == units.Zero && r.fee != "" {
		fee = r.fee
	}

	return ledger.Transaction{
		ChainID:      a.cfg.ID,
		Address:      address,
		Timestamp:    r.timestamp,
		Hash:         r.hash,
		Type:         r.txType,
		Direction:    ledger.ResolveDirection(address, r.from, r.to),
		Counterparty: ledger.Counterparty(address, r.from, to),
		Asset:        a.cfg.Symbol,
		Amount:       units.FormatBaseUnits(r.value, a.cfg.Decimals),
		Fee:          units.FormatBaseUnits(fee, a.cfg.Decimals),
		FeeAsset:     a.cfg.Symbol,
		Status:       r.status,
		Block:        r.block,
		ExplorerURL:  a.ExplorerURL(r.hash),
		Notes:        notes,
		PnL:          units.Zero,
		RawDetails:   r.raw,
	}
}
