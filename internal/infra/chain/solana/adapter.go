// Package solana reads wallet history from a Solana JSON-RPC node: one
// getSignaturesForAddress call per page, then one getTransaction per
// signature.
package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
	"golang.org/x/sync/errgroup"

	"github.com/gabapcia/walletscope/internal/infra/chain"
	"github.com/gabapcia/walletscope/internal/ledger"
	"github.com/gabapcia/walletscope/internal/pkg/logger"
	"github.com/gabapcia/walletscope/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/walletscope/internal/pkg/validator"
)

const (
	DefaultLimit       = 25
	MaxLimit           = 1000
	DefaultConcurrency = 5

	// Decimals of the native token (lamports per SOL).
	Decimals = 9
)

type Config struct {
	ID          string `yaml:"id" validate:"required,chainid"`
	Name        string `yaml:"name" validate:"required"`
	Symbol      string `yaml:"symbol" validate:"required"`
	ExplorerURL string `yaml:"explorer_url" validate:"required,url"`
	Concurrency int    `yaml:"concurrency" validate:"gte=0"`
}

type adapter struct {
	cfg Config
	rpc jsonrpc.Client
}

var _ ledger.Adapter = (*adapter)(nil)

// New returns an adapter that queries rpc.
func New(cfg Config, rpc jsonrpc.Client) (*adapter, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("solana chain %q: %w", cfg.ID, err)
	}

	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	return &adapter{
		cfg: cfg,
		rpc: rpc,
	}, nil
}

func (a *adapter) ChainID() string {
	return a.cfg.ID
}

func (a *adapter) ValidateAddress(address string) bool {
	_, err := solanago.PublicKeyFromBase58(address)
	return err == nil
}

func (a *adapter) ExplorerURL(hash string) string {
	return ledger.ExplorerLink(a.cfg.ExplorerURL, "tx", hash)
}

func (a *adapter) FetchTransactions(ctx context.Context, address string, opts ledger.FetchOptions) (ledger.Page, error) {
	if !a.ValidateAddress(address) {
		return ledger.Page{}, fmt.Errorf("%w: %q is not a %s account", ledger.ErrInvalidAddress, address, a.cfg.Name)
	}

	ctx = logger.Derive(ctx, "chain", a.cfg.ID)
	limit := min(chain.Limit(opts.Limit, DefaultLimit), MaxLimit)

	query := map[string]any{"limit": limit}
	if opts.Cursor != "" {
		if _, err := solanago.SignatureFromBase58(opts.Cursor); err != nil {
			return ledger.Page{}, fmt.Errorf("%w: %q", ledger.ErrInvalidCursor, opts.Cursor)
		}
		query["before"] = opts.Cursor
	}

	var signatures []signatureInfo
	if err := a.call(ctx, &signatures, "getSignaturesForAddress", address, query); err != nil {
		return ledger.Page{}, err
	}

	txs := make([]json.RawMessage, len(signatures))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Concurrency)
	for i, sig := range signatures {
		g.Go(func() error {
			return a.call(gctx, &txs[i], "getTransaction", sig.Signature, map[string]any{
				"encoding":                       "jsonParsed",
				"maxSupportedTransactionVersion": 0,
				"commitment":                     "confirmed",
			})
		})
	}
	if err := g.Wait(); err != nil {
		return ledger.Page{}, err
	}

	records := make([]ledger.Transaction, 0, len(signatures))
	for i, sig := range signatures {
		record, ok, err := a.normalize(address, sig, txs[i])
		if err != nil {
			return ledger.Page{}, err
		}
		if !ok {
			logger.Warn(ctx, "skipping transaction without block time", "signature", sig.Signature)
			continue
		}
		records = append(records, record)
	}

	page := ledger.Page{
		Records: ledger.SortByTimestampDesc(ledger.DedupByHash(records)),
		HasMore: len(signatures) == limit,
	}
	if page.HasMore {
		page.NextCursor = signatures[len(signatures)-1].Signature
	}

	return page, nil
}

// call runs method through the node and maps its failures onto the ledger
// taxonomy.
func (a *adapter) call(ctx context.Context, out any, method string, params ...any) error {
	err := a.rpc.Call(ctx, out, method, params...)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jsonrpc.ErrProviderReturnedError), errors.Is(err, jsonrpc.ErrDecodeResult):
		return fmt.Errorf("%w: %s: %w", ledger.ErrUpstream, method, err)
	default:
		return chain.WrapTransport(err)
	}
}
