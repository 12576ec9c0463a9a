package evm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gabapcia/walletscope/internal/infra/chain"
	"github.com/gabapcia/walletscope/internal/ledger"
	"github.com/gabapcia/walletscope/internal/pkg/logger"
	"github.com/gabapcia/walletscope/internal/pkg/units"
)

type blockscoutAddress struct {
	Hash string `json:"hash"`
}

type blockscoutFee struct {
	Value string `json:"value"`
}

type blockscoutTransaction struct {
	Hash            string             `json:"hash"`
	Timestamp       string             `json:"timestamp"`
	BlockNumber     json.Number        `json:"block_number"`
	Block           json.Number        `json:"block"`
	From            blockscoutAddress  `json:"from"`
	To              *blockscoutAddress `json:"to"`
	CreatedContract *blockscoutAddress `json:"created_contract"`
	Value           string             `json:"value"`
	GasUsed         string             `json:"gas_used"`
	GasPrice        string             `json:"gas_price"`
	Fee             *blockscoutFee     `json:"fee"`
	Status          *string            `json:"status"`
	Result          string             `json:"result"`
	Method          *string            `json:"method"`
}

type blockscoutPageParams struct {
	BlockNumber json.Number `json:"block_number"`
	Index       json.Number `json:"index"`
	ItemsCount  json.Number `json:"items_count"`
}

type blockscoutResponse struct {
	Items          []json.RawMessage     `json:"items"`
	NextPageParams *blockscoutPageParams `json:"next_page_params"`
}

// cursor serializes the continuation tuple as block_number:index:items_count.
func (p *blockscoutPageParams) cursor() string {
	return strings.Join([]string{p.BlockNumber.String(), p.Index.String(), p.ItemsCount.String()}, ":")
}

func parseBlockscoutCursor(cursor string) (url.Values, error) {
	parts := strings.Split(cursor, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %q", ledger.ErrInvalidCursor, cursor)
	}

	for _, p := range parts {
		if _, err := json.Number(p).Int64(); err != nil {
			return nil, fmt.Errorf("%w: %q", ledger.ErrInvalidCursor, cursor)
		}
	}

	return url.Values{
		"block_number": {parts[0]},
		"index":        {parts[1]},
		"items_count":  {parts[2]},
	}, nil
}

func (t blockscoutTransaction) status() ledger.Status {
	switch {
	case t.Status == nil || t.Result == "pending":
		return ledger.StatusPending
	case *t.Status == "ok":
		return ledger.StatusSuccess
	default:
		return ledger.StatusFailed
	}
}

func (t blockscoutTransaction) toRecord(raw json.RawMessage) (record, error) {
	ts, err := units.ParseTime(t.Timestamp)
	if err != nil {
		return record{}, err
	}

	block := t.BlockNumber.String()
	if block == "" {
		block = t.Block.String()
	}

	r := record{
		hash:      t.Hash,
		timestamp: ts,
		from:      t.From.Hash,
		value:     t.Value,
		gasUsed:   t.GasUsed,
		gasPrice:  t.GasPrice,
		status:    t.status(),
		block:     block,
		raw:       raw,
	}

	if t.To != nil {
		r.to = t.To.Hash
	}

	if t.CreatedContract != nil {
		r.createdContract = t.CreatedContract.Hash
	}

	if t.Fee != nil {
		r.fee = t.Fee.Value
	}

	if t.Method != nil {
		r.method = *t.Method
	}

	switch {
	case r.to == "" && r.createdContract != "":
		r.txType = ledger.TypeContract
	default:
		r.txType = classifyMethod(r.method)
	}

	return r, nil
}

func (a *adapter) fetchBlockscout(ctx context.Context, address string, opts ledger.FetchOptions) (ledger.Page, error) {
	target := strings.TrimRight(a.cfg.APIBase, "/") + "/api/v2/addresses/" + address + "/transactions"
	if opts.Cursor != "" {
		query, err := parseBlockscoutCursor(opts.Cursor)
		if err != nil {
			return ledger.Page{}, err
		}
		target += "?" + query.Encode()
	}

	var res blockscoutResponse
	if err := a.client.GetJSON(ctx, target, &res); err != nil {
		return ledger.Page{}, chain.WrapTransport(err)
	}

	records := make([]ledger.Transaction, 0, len(res.Items))
	for _, raw := range res.Items {
		var item blockscoutTransaction
		if err := json.Unmarshal(raw, &item); err != nil {
			return ledger.Page{}, fmt.Errorf("%w: decode transaction: %w", ledger.ErrUpstream, err)
		}

		if item.Hash == "" {
			continue
		}

		r, err := item.toRecord(raw)
		if err != nil {
			logger.Warn(ctx, "skipping transaction with malformed timestamp", "hash", item.Hash, "error", err)
			continue
		}

		records = append(records, a.normalize(address, r))
	}

	page := ledger.Page{Records: records}
	if res.NextPageParams != nil {
		page.HasMore = true
		page.NextCursor = res.NextPageParams.cursor()
	}

	return page, nil
}
