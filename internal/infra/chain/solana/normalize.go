package solana

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	solanago "github.com/gagliardetto/solana-go"

	"github.com/gabapcia/walletscope/internal/ledger"
	"github.com/gabapcia/walletscope/internal/pkg/units"
)

// knownMints maps the mints common enough to deserve a ticker.
var knownMints = map[string]string{
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": "USDC",
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": "USDT",
	"So11111111111111111111111111111111111111112":  "WSOL",
	"JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN":  "JUP",
}

func mintSymbol(mint string) string {
	if symbol, ok := knownMints[mint]; ok {
		return symbol
	}

	key, err := solanago.PublicKeyFromBase58(mint)
	if err != nil {
		return mint
	}

	return key.Short(4)
}

// classify picks the record type from the first instruction that says
// something about intent. Compute budget, memo and associated token account
// instructions are bookkeeping and skipped.
func classify(instructions []instruction) (string, *transferInfo) {
	for _, ix := range instructions {
		switch ix.ProgramID {
		case solanago.ComputeBudget.String(),
			solanago.MemoProgramID.String(),
			solanago.SPLAssociatedTokenAccountProgramID.String():
			continue
		}

		if ix.Parsed == nil {
			return ledger.TypeContract, nil
		}

		switch ix.ProgramID {
		case solanago.SystemProgramID.String(), solanago.TokenProgramID.String(), solanago.Token2022ProgramID.String():
			switch ix.Parsed.Type {
			case "transfer", "transferChecked", "transferWithSeed":
				var info transferInfo
				if err := json.Unmarshal(ix.Parsed.Info, &info); err != nil {
					return ledger.TypeTransfer, nil
				}
				return ledger.TypeTransfer, &info
			}
		case solanago.StakeProgramID.String():
			switch ix.Parsed.Type {
			case "delegate":
				return ledger.TypeStake, nil
			case "withdraw", "deactivate":
				return ledger.TypeUnstake, nil
			}
		}

		return ledger.TypeContract, nil
	}

	return ledger.TypeContract, nil
}

// tokenDelta returns the first mint whose balance owned by address changed,
// with the signed change in base units and the mint decimals.
func tokenDelta(address string, pre, post []tokenBalance) (string, *big.Int, int) {
	type holding struct {
		mint     string
		decimals int
		amount   *big.Int
	}

	var (
		order    []string
		holdings = map[string]*holding{}
	)
	add := func(balances []tokenBalance, sign int64) {
		for _, b := range balances {
			if b.Owner != address {
				continue
			}

			amount, ok := new(big.Int).SetString(b.UITokenAmount.Amount, 10)
			if !ok {
				continue
			}

			h, seen := holdings[b.Mint]
			if !seen {
				h = &holding{mint: b.Mint, decimals: b.UITokenAmount.Decimals, amount: new(big.Int)}
				holdings[b.Mint] = h
				order = append(order, b.Mint)
			}
			h.amount.Add(h.amount, amount.Mul(amount, big.NewInt(sign)))
		}
	}
	add(pre, -1)
	add(post, 1)

	for _, mint := range order {
		if h := holdings[mint]; h.amount.Sign() != 0 {
			return h.mint, h.amount, h.decimals
		}
	}

	return "", nil, 0
}

// selfTransfer reports whether a parsed transfer moves funds from address
// back to address.
func selfTransfer(address string, transfer *transferInfo) bool {
	if transfer == nil || transfer.Destination != address {
		return false
	}

	return transfer.Source == address || transfer.Authority == address
}

func directionOf(sign int) ledger.Direction {
	switch {
	case sign > 0:
		return ledger.DirectionIn
	case sign < 0:
		return ledger.DirectionOut
	default:
		return ledger.DirectionUnknown
	}
}

func status(err json.RawMessage) ledger.Status {
	if failed(err) {
		return ledger.StatusFailed
	}

	return ledger.StatusSuccess
}

// normalize builds the record for one signature. The bool is false when the
// transaction has no block time yet.
func (a *adapter) normalize(address string, sig signatureInfo, raw json.RawMessage) (ledger.Transaction, bool, error) {
	var tx *transaction
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	if err := json.Unmarshal(raw, &tx); err != nil {
		return ledger.Transaction{}, false, fmt.Errorf("%w: decode transaction %s: %w", ledger.ErrUpstream, sig.Signature, err)
	}

	blockTime := sig.BlockTime
	if tx != nil && tx.BlockTime != nil {
		blockTime = tx.BlockTime
	}
	if blockTime == nil {
		return ledger.Transaction{}, false, nil
	}

	record := ledger.Transaction{
		ChainID:     a.cfg.ID,
		Address:     address,
		Timestamp:   units.FromUnix(*blockTime),
		Hash:        sig.Signature,
		Type:        ledger.TypeContract,
		Direction:   ledger.DirectionUnknown,
		Asset:       a.cfg.Symbol,
		Amount:      units.Zero,
		Fee:         units.Zero,
		Status:      status(sig.Err),
		Block:       strconv.FormatUint(sig.Slot, 10),
		ExplorerURL: a.ExplorerURL(sig.Signature),
		PnL:         units.Zero,
		RawDetails:  raw,
	}
	if sig.Memo != nil {
		record.Notes = *sig.Memo
	}

	if tx == nil || tx.Meta == nil {
		record.RawDetails = nil
		if record.Notes == "" {
			record.Notes = "transaction details unavailable"
		}
		return record, true, nil
	}

	meta := tx.Meta
	keys := tx.Transaction.Message.AccountKeys
	record.Status = status(meta.Err)

	index := -1
	for i, k := range keys {
		if k.Pubkey == address {
			index = i
			break
		}
	}

	feePayer := index == 0
	if feePayer {
		record.Fee = units.FormatBaseUnits(strconv.FormatUint(meta.Fee, 10), Decimals)
		record.FeeAsset = a.cfg.Symbol
	}

	var lamports int64
	if index >= 0 && index < len(meta.PreBalances) && index < len(meta.PostBalances) {
		lamports = meta.PostBalances[index] - meta.PreBalances[index]
		if feePayer {
			lamports += int64(meta.Fee)
		}
	}

	txType, transfer := classify(tx.Transaction.Message.Instructions)
	record.Type = txType

	switch {
	case lamports != 0:
		record.Amount = units.FormatBaseUnits(new(big.Int).Abs(big.NewInt(lamports)).String(), Decimals)
		record.Direction = directionOf(big.NewInt(lamports).Sign())
	default:
		if mint, delta, decimals := tokenDelta(address, meta.PreTokenBalances, meta.PostTokenBalances); delta != nil {
			record.Asset = mintSymbol(mint)
			record.Amount = units.FormatBaseUnits(new(big.Int).Abs(delta).String(), decimals)
			record.Direction = directionOf(delta.Sign())
		} else if selfTransfer(address, transfer) {
			record.Direction = ledger.DirectionSelf
		}
	}

	if transfer != nil {
		switch address {
		case transfer.Source, transfer.Authority:
			record.Counterparty = transfer.Destination
		case transfer.Destination:
			record.Counterparty = transfer.Source
		}
	}

	if record.Notes == "" {
		record.Notes = fmt.Sprintf("%s %s", record.Type, record.Asset)
	}

	return record, true, nil
}
