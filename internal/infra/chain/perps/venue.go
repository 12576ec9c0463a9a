// Package perps turns the fill and funding streams of a perpetuals venue into
// ledger records. Venues only implement the two backward-paged reads; paging,
// classification, and merging live here.
package perps

import (
	"context"
	"encoding/json"
	"time"
)

// Fill is one trade execution as reported by a venue.
type Fill struct {
	Hash    string
	TradeID string
	Coin    string
	Price   string
	Size    string
	Side    string
	Time    time.Time

	// Dir is the venue's own description of the fill, e.g. "Open Long",
	// "Close Short", "Long > Short" or "Liquidated Isolated Long". Empty
	// when the venue does not report it.
	Dir string

	// ClosedPnL is the realized PnL in the settlement token, nil when the
	// venue does not report it.
	ClosedPnL *string

	Fee      string
	FeeToken string
	Raw      json.RawMessage
}

// Funding is one periodic funding settlement.
type Funding struct {
	Hash string
	Coin string
	Time time.Time

	// Amount is signed: positive when the account received funding.
	Amount string
	Size   string
	Rate   string
	Raw    json.RawMessage
}

// Venue reads the two event streams of one account. Both reads return at most
// the configured page size of events at or before end, in any order. A zero
// end means "up to now".
type Venue interface {
	ValidateAddress(address string) bool
	FillsBefore(ctx context.Context, address string, end time.Time) ([]Fill, error)
	FundingBefore(ctx context.Context, address string, end time.Time) ([]Funding, error)
}
