// Package chain holds helpers shared by the per-ecosystem adapters.
package chain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gabapcia/walletscope/internal/ledger"
	transporthttp "github.com/gabapcia/walletscope/internal/pkg/transport/http"
)

// WrapTransport maps a transport failure onto the ledger error taxonomy.
// HTTP 429 becomes ErrRateLimited; every other failure, context deadlines
// included, becomes ErrTransport. A nil error stays nil.
func WrapTransport(err error) error {
	if err == nil {
		return nil
	}

	var statusErr *transporthttp.StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", ledger.ErrRateLimited, err)
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	return fmt.Errorf("%w: %w", ledger.ErrTransport, err)
}

// PageCursor parses a numeric page cursor. An empty cursor yields first.
func PageCursor(cursor string, first int) (int, error) {
	if cursor == "" {
		return first, nil
	}

	page, err := strconv.Atoi(cursor)
	if err != nil || page < first {
		return 0, fmt.Errorf("%w: %q", ledger.ErrInvalidCursor, cursor)
	}

	return page, nil
}

// Limit returns requested when positive, otherwise fallback.
func Limit(requested, fallback int) int {
	if requested > 0 {
		return requested
	}

	return fallback
}
