// Package txview filters and sorts an accumulated record list for display.
// Both operations are pure: they return new slices and never modify their
// input.
package txview

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/gabapcia/walletscope/internal/ledger"
	"github.com/gabapcia/walletscope/internal/pkg/units"
)

// DirectionAll disables the direction filter.
const DirectionAll = "all"

// SortKey names a sortable column.
type SortKey string

const (
	SortDate   SortKey = "date"
	SortAmount SortKey = "amount"
	SortFee    SortKey = "fee"
	SortType   SortKey = "type"
	SortAsset  SortKey = "asset"
)

// Order is a sort direction.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Filters selects records. Zero values disable each criterion.
type Filters struct {
	// From and To bound the timestamp, both inclusive.
	From *time.Time
	To   *time.Time

	// Direction is "in", "out", "self", "unknown", or empty/"all".
	Direction string

	// Type matches exactly.
	Type string

	// Asset matches case-insensitively.
	Asset string

	// Search is a case-insensitive substring matched against hash,
	// counterparty, notes and asset.
	Search string
}

// Apply returns the records matching every set filter, in input order.
func Apply(records []ledger.Transaction, f Filters) []ledger.Transaction {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]ledger.Transaction, 0, len(records))
	for _, r := range records {
		if f.From != nil && r.Timestamp.Before(*f.From) {
			continue
		}
		if f.To != nil && r.Timestamp.After(*f.To) {
			continue
		}
		if f.Direction != "" && f.Direction != DirectionAll && string(r.Direction) != f.Direction {
			continue
		}
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if f.Asset != "" && !strings.EqualFold(r.Asset, f.Asset) {
			continue
		}
		if search != "" && !matches(r, search) {
			continue
		}
		out = append(out, r)
	}

	return out
}

func matches(r ledger.Transaction, term string) bool {
	for _, field := range []string{r.Hash, r.Counterparty, r.Notes, r.Asset} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}

	return false
}

// Sort returns a stably sorted copy of records. Amount and fee compare
// numerically. An unknown key returns an unchanged copy; an unknown order
// sorts descending.
func Sort(records []ledger.Transaction, key SortKey, order Order) []ledger.Transaction {
	out := slices.Clone(records)

	var compare func(a, b ledger.Transaction) int
	switch key {
	case SortDate:
		compare = func(a, b ledger.Transaction) int { return a.Timestamp.Compare(b.Timestamp) }
	case SortAmount:
		compare = func(a, b ledger.Transaction) int { return units.Parse(a.Amount).Cmp(units.Parse(b.Amount)) }
	case SortFee:
		compare = func(a, b ledger.Transaction) int { return units.Parse(a.Fee).Cmp(units.Parse(b.Fee)) }
	case SortType:
		compare = func(a, b ledger.Transaction) int { return cmp.Compare(a.Type, b.Type) }
	case SortAsset:
		compare = func(a, b ledger.Transaction) int { return cmp.Compare(a.Asset, b.Asset) }
	default:
		return out
	}

	if order != OrderAsc {
		asc := compare
		compare = func(a, b ledger.Transaction) int { return asc(b, a) }
	}

	slices.SortStableFunc(out, compare)

	return out
}
