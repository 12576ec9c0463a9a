package evm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gabapcia/walletscope/internal/infra/chain"
	"github.com/gabapcia/walletscope/internal/ledger"
	"github.com/gabapcia/walletscope/internal/pkg/logger"
	"github.com/gabapcia/walletscope/internal/pkg/units"
)

// DefaultEtherscanLimit is the txlist page size when none is requested.
const DefaultEtherscanLimit = 100

const noTransactionsFound = "No transactions found"

type etherscanResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type etherscanTransaction struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	GasPrice        string `json:"gasPrice"`
	GasUsed         string `json:"gasUsed"`
	IsError         string `json:"isError"`
	TxReceiptStatus string `json:"txreceipt_status"`
	Input           string `json:"input"`
	MethodID        string `json:"methodId"`
	FunctionName    string `json:"functionName"`
	ContractAddress string `json:"contractAddress"`
}

func (t etherscanTransaction) status() ledger.Status {
	if t.IsError == "1" || t.TxReceiptStatus == "0" {
		return ledger.StatusFailed
	}

	return ledger.StatusSuccess
}

func (t etherscanTransaction) toRecord(raw json.RawMessage) (record, error) {
	ts, err := units.ParseUnix(t.TimeStamp)
	if err != nil {
		return record{}, err
	}

	input := t.Input
	if input == "" {
		input = t.MethodID
	}

	r := record{
		hash:            t.Hash,
		timestamp:       ts,
		from:            t.From,
		to:              t.To,
		createdContract: t.ContractAddress,
		value:           t.Value,
		gasUsed:         t.GasUsed,
		gasPrice:        t.GasPrice,
		status:          t.status(),
		block:           t.BlockNumber,
		method:          methodName(t.FunctionName),
		raw:             raw,
	}

	if r.to == "" && r.createdContract != "" {
		r.txType = ledger.TypeContract
	} else {
		r.txType = classifyInput(input, t.FunctionName)
	}

	return r, nil
}

// upstreamError interprets a status "0" envelope. A nil return means the
// envelope is an empty result rather than a failure.
func (r etherscanResponse) upstreamError() error {
	var text string
	_ = json.Unmarshal(r.Result, &text)

	switch {
	case strings.EqualFold(strings.TrimSpace(r.Message), noTransactionsFound):
		return nil
	case strings.Contains(strings.ToLower(text), "rate limit"),
		strings.Contains(strings.ToLower(r.Message), "rate limit"):
		return fmt.Errorf("%w: %s", ledger.ErrRateLimited, text)
	case text != "":
		return fmt.Errorf("%w: %s: %s", ledger.ErrUpstream, r.Message, text)
	default:
		return fmt.Errorf("%w: %s", ledger.ErrUpstream, r.Message)
	}
}

func (a *adapter) etherscanURL(address string, page, limit int) (string, error) {
	target, err := url.Parse(a.cfg.APIBase)
	if err != nil {
		return "", err
	}

	query := target.Query()
	query.Set("module", "account")
	query.Set("action", "txlist")
	query.Set("address", address)
	query.Set("startblock", "0")
	query.Set("endblock", "99999999")
	query.Set("page", strconv.Itoa(page))
	query.Set("offset", strconv.Itoa(limit))
	query.Set("sort", "desc")
	if a.cfg.APIKey != "" {
		query.Set("apikey", a.cfg.APIKey)
	}

	target.RawQuery = query.Encode()
	return target.String(), nil
}

// fetchEtherscan reads one txlist page. HasMore is a heuristic: a full page
// suggests more rows, since the API does not report a total.
func (a *adapter) fetchEtherscan(ctx context.Context, address string, opts ledger.FetchOptions) (ledger.Page, error) {
	page, err := chain.PageCursor(opts.Cursor, 1)
	if err != nil {
		return ledger.Page{}, err
	}

	limit := chain.Limit(opts.Limit, DefaultEtherscanLimit)

	target, err := a.etherscanURL(address, page, limit)
	if err != nil {
		return ledger.Page{}, fmt.Errorf("%w: %w", ledger.ErrTransport, err)
	}

	var res etherscanResponse
	if err := a.client.GetJSON(ctx, target, &res); err != nil {
		return ledger.Page{}, chain.WrapTransport(err)
	}

	if res.Status != "1" {
		if err := res.upstreamError(); err != nil {
			return ledger.Page{}, err
		}

		return ledger.Page{Records: []ledger.Transaction{}}, nil
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(res.Result, &rows); err != nil {
		return ledger.Page{}, fmt.Errorf("%w: decode result: %w", ledger.ErrUpstream, err)
	}

	records := make([]ledger.Transaction, 0, len(rows))
	for _, raw := range rows {
		var row etherscanTransaction
		if err := json.Unmarshal(raw, &row); err != nil {
			return ledger.Page{}, fmt.Errorf("%w: decode transaction: %w", ledger.ErrUpstream, err)
		}

		if row.Hash == "" {
			continue
		}

		r, err := row.toRecord(raw)
		if err != nil {
			logger.Warn(ctx, "skipping transaction with malformed timestamp", "hash", row.Hash, "error", err)
			continue
		}

		records = append(records, a.normalize(address, r))
	}

	result := ledger.Page{Records: records}
	if len(rows) == limit {
		result.HasMore = true
		result.NextCursor = strconv.Itoa(page + 1)
	}

	return result, nil
}
