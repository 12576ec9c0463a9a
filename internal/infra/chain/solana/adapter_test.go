package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabapcia/walletscope/internal/ledger"
	transporthttp "github.com/gabapcia/walletscope/internal/pkg/transport/http"
	"github.com/gabapcia/walletscope/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/walletscope/internal/pkg/validator"
)

const (
	wallet = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	peer   = "HN7cABqLq46Es1jh92dQQisAq662SmxELLLsHHe4YWrH"
	mint   = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

// fakeRPC answers getSignaturesForAddress with sigs and getTransaction from
// txs, keyed by signature.
type fakeRPC struct {
	mu     sync.Mutex
	sigs   string
	txs    map[string]string
	err    error
	calls  []string
	params [][]any
}

func (f *fakeRPC) Fetch(_ context.Context, method string, params ...any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, method)
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}

	switch method {
	case "getSignaturesForAddress":
		return json.RawMessage(f.sigs), nil
	case "getTransaction":
		if tx, ok := f.txs[params[0].(string)]; ok {
			return json.RawMessage(tx), nil
		}
		return json.RawMessage("null"), nil
	}

	return nil, fmt.Errorf("unexpected method %s", method)
}

func (f *fakeRPC) Call(ctx context.Context, out any, method string, params ...any) error {
	raw, err := f.Fetch(ctx, method, params...)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %w", jsonrpc.ErrDecodeResult, method, err)
	}

	return nil
}

var _ jsonrpc.Client = (*fakeRPC)(nil)

func newAdapter(t *testing.T, rpc jsonrpc.Client) *adapter {
	t.Helper()

	a, err := New(Config{
		ID:          "solana",
		Name:        "Solana",
		Symbol:      "SOL",
		ExplorerURL: "https://solscan.io",
	}, rpc)
	require.NoError(t, err)

	return a
}

func signature(b byte) string {
	var sig solanago.Signature
	sig[0] = b
	return sig.String()
}

const solTransfer = `{
  "slot": 250000001, "blockTime": 1714560000,
  "meta": {"err": null, "fee": 5000,
    "preBalances": [3000000000, 1000000000, 1],
    "postBalances": [1499995000, 2500000000, 1],
    "preTokenBalances": [], "postTokenBalances": []},
  "transaction": {"message": {
    "accountKeys": [
      {"pubkey": "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", "signer": true},
      {"pubkey": "HN7cABqLq46Es1jh92dQQisAq662SmxELLLsHHe4YWrH", "signer": false},
      {"pubkey": "11111111111111111111111111111111", "signer": false}],
    "instructions": [
      {"program": "compute-budget", "programId": "ComputeBudget111111111111111111111111111111", "parsed": null},
      {"program": "system", "programId": "11111111111111111111111111111111",
       "parsed": {"type": "transfer", "info": {"source": "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", "destination": "HN7cABqLq46Es1jh92dQQisAq662SmxELLLsHHe4YWrH", "lamports": 1500000000}}}]}}
}`

const tokenReceive = `{
  "slot": 250000000, "blockTime": 1714550000,
  "meta": {"err": null, "fee": 5000,
    "preBalances": [900000000, 2039280, 2039280],
    "postBalances": [899995000, 2039280, 2039280],
    "preTokenBalances": [
      {"accountIndex": 1, "mint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "owner": "HN7cABqLq46Es1jh92dQQisAq662SmxELLLsHHe4YWrH", "uiTokenAmount": {"amount": "50000000", "decimals": 6}},
      {"accountIndex": 2, "mint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "owner": "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", "uiTokenAmount": {"amount": "0", "decimals": 6}}],
    "postTokenBalances": [
      {"accountIndex": 1, "mint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "owner": "HN7cABqLq46Es1jh92dQQisAq662SmxELLLsHHe4YWrH", "uiTokenAmount": {"amount": "37500000", "decimals": 6}},
      {"accountIndex": 2, "mint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "owner": "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", "uiTokenAmount": {"amount": "12500000", "decimals": 6}}]},
  "transaction": {"message": {
    "accountKeys": [
      {"pubkey": "HN7cABqLq46Es1jh92dQQisAq662SmxELLLsHHe4YWrH", "signer": true},
      {"pubkey": "5ZWj7a1f8tWkjBESHKgrLmXshuXxqeY9SYcfbshpAqPG", "signer": false},
      {"pubkey": "6ZWj7a1f8tWkjBESHKgrLmXshuXxqeY9SYcfbshpAqPG", "signer": false}],
    "instructions": [
      {"program": "spl-token", "programId": "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
       "parsed": {"type": "transferChecked", "info": {"source": "5ZWj7a1f8tWkjBESHKgrLmXshuXxqeY9SYcfbshpAqPG", "destination": "6ZWj7a1f8tWkjBESHKgrLmXshuXxqeY9SYcfbshpAqPG", "authority": "HN7cABqLq46Es1jh92dQQisAq662SmxELLLsHHe4YWrH"}}}]}}
}`

const failedSwap = `{
  "slot": 249999999, "blockTime": 1714540000,
  "meta": {"err": {"InstructionError": [0, {"Custom": 6001}]}, "fee": 10000,
    "preBalances": [500000000], "postBalances": [499990000],
    "preTokenBalances": [], "postTokenBalances": []},
  "transaction": {"message": {
    "accountKeys": [{"pubkey": "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", "signer": true}],
    "instructions": [
      {"programId": "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4", "accounts": [], "data": "3Bxs"}]}}
}`

const selfSend = `{
  "slot": 250000002, "blockTime": 1714570000,
  "meta": {"err": null, "fee": 5000,
    "preBalances": [1000000000, 1], "postBalances": [999995000, 1],
    "preTokenBalances": [], "postTokenBalances": []},
  "transaction": {"message": {
    "accountKeys": [
      {"pubkey": "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", "signer": true},
      {"pubkey": "11111111111111111111111111111111", "signer": false}],
    "instructions": [
      {"program": "system", "programId": "11111111111111111111111111111111",
       "parsed": {"type": "transfer", "info": {"source": "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", "destination": "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", "lamports": 250000000}}}]}}
}`

func sigsFixture(sigs ...string) string {
	rows := make([]string, 0, len(sigs))
	for i, s := range sigs {
		errField := "null"
		if i == 2 {
			errField = `{"InstructionError":[0,{"Custom":6001}]}`
		}
		rows = append(rows, fmt.Sprintf(`{"signature":%q,"slot":%d,"err":%s,"memo":null,"blockTime":%d,"confirmationStatus":"finalized"}`, s, 250000001-i, errField, 1714560000-i*10000))
	}

	out := "["
	for i, r := range rows {
		if i > 0 {
			out += ","
		}
		out += r
	}

	return out + "]"
}

func TestNew(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		a := newAdapter(t, &fakeRPC{})
		assert.Equal(t, DefaultConcurrency, a.cfg.Concurrency)
		assert.Equal(t, "solana", a.ChainID())
		assert.Equal(t, "https://solscan.io/tx/abc", a.ExplorerURL("abc"))
	})

	t.Run("rejects an invalid config", func(t *testing.T) {
		_, err := New(Config{ID: "Solana!"}, &fakeRPC{})
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})
}

func TestAdapter_ValidateAddress(t *testing.T) {
	a := newAdapter(t, &fakeRPC{})

	assert.True(t, a.ValidateAddress(wallet))
	assert.True(t, a.ValidateAddress(solanago.SystemProgramID.String()))
	assert.False(t, a.ValidateAddress("0x1111111111111111111111111111111111111111"))
	assert.False(t, a.ValidateAddress("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWW0"))
	assert.False(t, a.ValidateAddress(""))
}

func TestAdapter_FetchTransactions(t *testing.T) {
	s1, s2, s3 := signature(1), signature(2), signature(3)

	t.Run("normalizes native token and failed transactions", func(t *testing.T) {
		rpc := &fakeRPC{
			sigs: sigsFixture(s1, s2, s3),
			txs:  map[string]string{s1: solTransfer, s2: tokenReceive, s3: failedSwap},
		}
		a := newAdapter(t, rpc)

		page, err := a.FetchTransactions(t.Context(), wallet, ledger.FetchOptions{Limit: 3})
		require.NoError(t, err)
		assert.True(t, page.HasMore)
		assert.Equal(t, s3, page.NextCursor)
		require.Len(t, page.Records, 3)

		sent := page.Records[0]
		assert.Equal(t, s1, sent.Hash)
		assert.Equal(t, ledger.TypeTransfer, sent.Type)
		assert.Equal(t, ledger.DirectionOut, sent.Direction)
		assert.Equal(t, "SOL", sent.Asset)
		assert.Equal(t, "1.5", sent.Amount)
		assert.Equal(t, "0.000005", sent.Fee)
		assert.Equal(t, "SOL", sent.FeeAsset)
		assert.Equal(t, peer, sent.Counterparty)
		assert.Equal(t, ledger.StatusSuccess, sent.Status)
		assert.Equal(t, "250000001", sent.Block)
		assert.Equal(t, "transfer SOL", sent.Notes)

		received := page.Records[1]
		assert.Equal(t, ledger.TypeTransfer, received.Type)
		assert.Equal(t, ledger.DirectionIn, received.Direction)
		assert.Equal(t, "USDC", received.Asset)
		assert.Equal(t, "12.5", received.Amount)
		assert.Equal(t, "0", received.Fee)
		assert.Empty(t, received.FeeAsset)

		swap := page.Records[2]
		assert.Equal(t, ledger.TypeContract, swap.Type)
		assert.Equal(t, ledger.StatusFailed, swap.Status)
		assert.Equal(t, ledger.DirectionUnknown, swap.Direction)
		assert.Equal(t, "0", swap.Amount)
		assert.Equal(t, "0.00001", swap.Fee)

		require.NotEmpty(t, rpc.params)
		query := rpc.params[0][1].(map[string]any)
		assert.Equal(t, 3, query["limit"])
		assert.NotContains(t, query, "before")
	})

	t.Run("marks only a transfer to itself as self", func(t *testing.T) {
		s4 := signature(4)
		rpc := &fakeRPC{
			sigs: sigsFixture(s4, s3),
			txs:  map[string]string{s4: selfSend, s3: failedSwap},
		}
		a := newAdapter(t, rpc)

		page, err := a.FetchTransactions(t.Context(), wallet, ledger.FetchOptions{})
		require.NoError(t, err)
		require.Len(t, page.Records, 2)

		self := page.Records[0]
		assert.Equal(t, ledger.TypeTransfer, self.Type)
		assert.Equal(t, ledger.DirectionSelf, self.Direction)
		assert.Equal(t, "0", self.Amount)
		assert.Equal(t, "0.000005", self.Fee)
		assert.Equal(t, wallet, self.Counterparty)

		signedCall := page.Records[1]
		assert.Equal(t, ledger.TypeContract, signedCall.Type)
		assert.Equal(t, ledger.DirectionUnknown, signedCall.Direction)
	})

	t.Run("continues before the cursor signature", func(t *testing.T) {
		rpc := &fakeRPC{sigs: sigsFixture(s1), txs: map[string]string{s1: solTransfer}}
		a := newAdapter(t, rpc)

		page, err := a.FetchTransactions(t.Context(), wallet, ledger.FetchOptions{Cursor: s3})
		require.NoError(t, err)
		assert.False(t, page.HasMore)
		assert.Empty(t, page.NextCursor)
		assert.Len(t, page.Records, 1)

		query := rpc.params[0][1].(map[string]any)
		assert.Equal(t, s3, query["before"])
		assert.Equal(t, DefaultLimit, query["limit"])
	})

	t.Run("keeps a signature whose transaction is not available", func(t *testing.T) {
		rpc := &fakeRPC{sigs: sigsFixture(s1), txs: map[string]string{}}
		a := newAdapter(t, rpc)

		page, err := a.FetchTransactions(t.Context(), wallet, ledger.FetchOptions{})
		require.NoError(t, err)
		require.Len(t, page.Records, 1)
		assert.Equal(t, "transaction details unavailable", page.Records[0].Notes)
		assert.Equal(t, ledger.DirectionUnknown, page.Records[0].Direction)
	})

	t.Run("rejects bad input before any call", func(t *testing.T) {
		rpc := &fakeRPC{}
		a := newAdapter(t, rpc)

		_, err := a.FetchTransactions(t.Context(), "not-base58!", ledger.FetchOptions{})
		assert.ErrorIs(t, err, ledger.ErrInvalidAddress)

		_, err = a.FetchTransactions(t.Context(), wallet, ledger.FetchOptions{Cursor: "xyz"})
		assert.ErrorIs(t, err, ledger.ErrInvalidCursor)
		assert.Empty(t, rpc.calls)
	})

	t.Run("maps node errors to upstream", func(t *testing.T) {
		rpc := &fakeRPC{err: fmt.Errorf("%w: [-32005] - node is behind", jsonrpc.ErrProviderReturnedError)}
		a := newAdapter(t, rpc)

		_, err := a.FetchTransactions(t.Context(), wallet, ledger.FetchOptions{})
		assert.ErrorIs(t, err, ledger.ErrUpstream)
	})

	t.Run("maps http failures through the transport taxonomy", func(t *testing.T) {
		rpc := &fakeRPC{err: &transporthttp.StatusError{Code: 429}}
		a := newAdapter(t, rpc)

		_, err := a.FetchTransactions(t.Context(), wallet, ledger.FetchOptions{})
		assert.ErrorIs(t, err, ledger.ErrRateLimited)

		rpc.err = errors.New("connection reset")
		_, err = a.FetchTransactions(t.Context(), wallet, ledger.FetchOptions{})
		assert.ErrorIs(t, err, ledger.ErrTransport)
	})

	t.Run("reports a malformed result as upstream", func(t *testing.T) {
		rpc := &fakeRPC{sigs: `{"oops":true}`}
		a := newAdapter(t, rpc)

		_, err := a.FetchTransactions(t.Context(), wallet, ledger.FetchOptions{})
		assert.ErrorIs(t, err, ledger.ErrUpstream)
	})
}

func TestMintSymbol(t *testing.T) {
	assert.Equal(t, "USDC", mintSymbol(mint))
	assert.Equal(t, "HN7c...YWrH", mintSymbol(peer))
	assert.Equal(t, "not-a-key", mintSymbol("not-a-key"))
}
