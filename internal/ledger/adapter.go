package ledger

import (
	"context"
	"errors"
)

var (
	// ErrUnknownChain is returned when no adapter is registered for a chain id.
	ErrUnknownChain = errors.New("unknown chain")

	// ErrInvalidAddress is returned before any network call when an address
	// is malformed for the selected chain.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrTransport covers network failures and non-2xx responses.
	ErrTransport = errors.New("transport error")

	// ErrUpstream is an application-level failure reported inside an
	// otherwise successful (HTTP 200) response.
	ErrUpstream = errors.New("upstream error")

	// ErrRateLimited is a distinguished upstream failure: the source
	// refused the request because of its rate limit.
	ErrRateLimited = errors.New("rate limited by upstream")

	// ErrInvalidCursor is returned when a cursor cannot be decoded.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrUnclassifiableFill is returned when a derivatives fill carries
	// neither a direction nor a realized PnL, so it cannot be tagged as an
	// open or a close without guessing.
	ErrUnclassifiableFill = errors.New("fill cannot be classified as open or close")
)

// FetchOptions controls one page request. A zero Cursor requests the first
// page; a zero Limit lets the adapter pick its default page size.
type FetchOptions struct {
	Cursor string
	Limit  int
}

// Page is the result of one FetchTransactions call.
type Page struct {
	Records    []Transaction
	NextCursor string
	HasMore    bool
	TotalCount *int
}

// Adapter is implemented by every chain or venue integration.
//
// FetchTransactions converts all internal failures into one error wrapping
// one of the package sentinels. It never returns partial pages.
type Adapter interface {
	// ChainID returns the registry identifier of the chain.
	ChainID() string

	// ValidateAddress reports whether address is well-formed for the chain.
	ValidateAddress(address string) bool

	// FetchTransactions returns one page of normalized records for address.
	FetchTransactions(ctx context.Context, address string, opts FetchOptions) (Page, error)

	// ExplorerURL returns a deep link to the event identified by hash.
	ExplorerURL(hash string) string
}
