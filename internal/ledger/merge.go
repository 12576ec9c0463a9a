package ledger

import (
	"slices"
	"strings"

	"github.com/gabapcia/walletscope/internal/pkg/types"
)

// SameAddress compares two addresses case-insensitively, ignoring
// surrounding whitespace. Empty addresses never match.
func SameAddress(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}

	return strings.EqualFold(a, b)
}

// ResolveDirection derives a record's direction from its resolved sender and
// recipient: self when both are the same address, out when the queried
// address sent, in when it received, unknown otherwise.
func ResolveDirection(address, from, to string) Direction {
	switch {
	case SameAddress(from, to):
		return DirectionSelf
	case SameAddress(from, address):
		return DirectionOut
	case SameAddress(to, address):
		return DirectionIn
	default:
		return DirectionUnknown
	}
}

// Counterparty returns the side of a transfer that is not the queried
// address, or "" when neither side is.
func Counterparty(address, from, to string) string {
	switch {
	case SameAddress(from, address):
		return to
	case SameAddress(to, address):
		return from
	default:
		return ""
	}
}

// DedupByHash drops every record whose hash was already seen, keeping the
// first occurrence. The input is not modified.
func DedupByHash(records []Transaction) []Transaction {
	seen := types.NewSet[string]()
	out := make([]Transaction, 0, len(records))
	for _, r := range records {
		if seen.AddIfAbsent(r.Hash) {
			out = append(out, r)
		}
	}

	return out
}

// SortByTimestampDesc returns a copy of records ordered newest first. Ties
// keep their input order.
func SortByTimestampDesc(records []Transaction) []Transaction {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b Transaction) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	return out
}

// MergeDesc concatenates result sets from independent sub-queries,
// deduplicates them by hash and orders them newest first.
func MergeDesc(sets ...[]Transaction) []Transaction {
	var all []Transaction
	for _, s := range sets {
		all = append(all, s...)
	}

	return SortByTimestampDesc(DedupByHash(all))
}

// ExplorerLink joins an explorer base URL, a path segment and an id.
func ExplorerLink(base, segment, id string) string {
	if base == "" || id == "" {
		return ""
	}

	return strings.TrimRight(base, "/") + "/" + segment + "/" + id
}
