// Package ledger defines the canonical transaction record every chain adapter
// produces, the adapter contract, and the merge helpers adapters share.
package ledger

import (
	"encoding/json"
	"time"
)

// Direction is the polarity of a record relative to the queried address.
type Direction string

const (
	DirectionIn      Direction = "in"
	DirectionOut     Direction = "out"
	DirectionSelf    Direction = "self"
	DirectionUnknown Direction = "unknown"
)

// Status is the on-chain outcome of the underlying event.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusPending Status = "pending"
)

// Tag classifies derivatives records for tax bookkeeping.
type Tag string

const (
	TagNone           Tag = ""
	TagOpenPosition   Tag = "open_position"
	TagClosePosition  Tag = "close_position"
	TagFundingPayment Tag = "funding_payment"
)

// Common record types. Sources may add their own (e.g. "vote", "join_pool").
const (
	TypeTransfer       = "transfer"
	TypeSwap           = "swap"
	TypeStake          = "stake"
	TypeUnstake        = "unstake"
	TypeClaim          = "claim"
	TypeApprove        = "approve"
	TypeContract       = "contract"
	TypeOpenPosition   = string(TagOpenPosition)
	TypeClosePosition  = string(TagClosePosition)
	TypeFundingPayment = string(TagFundingPayment)
)

// Transaction is the canonical, display-ready record of one on-chain (or
// venue) event for one queried address.
//
// Amount and Fee are unsigned display decimals; polarity is carried by
// Direction only. PnL is signed.
type Transaction struct {
	ChainID      string          `json:"chainId"`
	Address      string          `json:"address"`
	Timestamp    time.Time       `json:"timestamp"`
	Hash         string          `json:"hash"`
	Type         string          `json:"type"`
	Direction    Direction       `json:"direction"`
	Counterparty string          `json:"counterparty,omitempty"`
	Asset        string          `json:"asset"`
	Amount       string          `json:"amount"`
	Fee          string          `json:"fee"`
	FeeAsset     string          `json:"feeAsset,omitempty"`
	Status       Status          `json:"status"`
	Block        string          `json:"block,omitempty"`
	ExplorerURL  string          `json:"explorerUrl,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Tag          Tag             `json:"tag,omitempty"`
	PnL          string          `json:"pnl,omitempty"`
	PaymentToken string          `json:"paymentToken,omitempty"`
	RawDetails   json.RawMessage `json:"rawDetails,omitempty"`
}
