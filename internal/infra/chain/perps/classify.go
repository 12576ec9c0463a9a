package perps

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gabapcia/walletscope/internal/ledger"
	"github.com/gabapcia/walletscope/internal/pkg/units"
)

// classifyFill decides whether a fill opened or closed exposure. The venue's
// direction wins; the realized PnL is used when the direction is absent or
// not conclusive. A fill with neither cannot be classified.
func classifyFill(f Fill) (ledger.Tag, error) {
	dir := strings.ToLower(strings.TrimSpace(f.Dir))

	switch {
	case strings.HasPrefix(dir, "open"):
		return ledger.TagOpenPosition, nil
	case strings.HasPrefix(dir, "close"),
		strings.Contains(dir, ">"),
		strings.Contains(dir, "liquidat"),
		strings.Contains(dir, "auto-deleverag"):
		return ledger.TagClosePosition, nil
	}

	if f.ClosedPnL != nil {
		if pnl, err := decimal.NewFromString(strings.TrimSpace(*f.ClosedPnL)); err == nil {
			if !pnl.IsZero() {
				return ledger.TagClosePosition, nil
			}
			return ledger.TagOpenPosition, nil
		}
	}

	return ledger.TagNone, fmt.Errorf("%w: fill %s-%s (%s, dir %q)", ledger.ErrUnclassifiableFill, f.Hash, f.TradeID, f.Coin, f.Dir)
}

// direction applies the shared policy: opens are outflows, closes and
// funding follow the sign of the PnL.
func direction(tag ledger.Tag, pnl string) ledger.Direction {
	if tag == ledger.TagOpenPosition {
		return ledger.DirectionOut
	}

	if units.Sign(pnl) < 0 {
		return ledger.DirectionOut
	}

	return ledger.DirectionIn
}
