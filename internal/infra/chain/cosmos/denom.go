package cosmos

import (
	"regexp"
	"strings"

	"github.com/gabapcia/walletscope/internal/pkg/units"
)

// DefaultDenomDecimals is assumed for any denom that is neither the chain's
// native denom nor in knownDenoms.
const DefaultDenomDecimals = 6

// lpShareDecimals is the precision of Osmosis gamm pool shares.
const lpShareDecimals = 18

type denomInfo struct {
	symbol   string
	decimals int
}

var knownDenoms = map[string]denomInfo{
	"uatom":  {"ATOM", 6},
	"uosmo":  {"OSMO", 6},
	"uion":   {"ION", 6},
	"utia":   {"TIA", 6},
	"uakt":   {"AKT", 6},
	"inj":    {"INJ", 18},
	"ujuno":  {"JUNO", 6},
	"ustars": {"STARS", 6},
	"uusdc":  {"USDC", 6},
	"ntrn":   {"NTRN", 6},
}

// resolveDenom returns the display symbol and precision of a denom.
//
// IBC vouchers are not traced to their origin chain: ibc/27394FB0... is shown
// as IBC/273940 with the default precision.
func (a *adapter) resolveDenom(denom string) denomInfo {
	switch {
	case denom == "":
		return denomInfo{a.cfg.Symbol, a.cfg.Decimals}
	case denom == a.cfg.Denom:
		return denomInfo{a.cfg.Symbol, a.cfg.Decimals}
	case strings.HasPrefix(denom, "ibc/"):
		hash := strings.TrimPrefix(denom, "ibc/")
		if len(hash) > 6 {
			hash = hash[:6]
		}
		return denomInfo{"IBC/" + strings.ToUpper(hash), DefaultDenomDecimals}
	case strings.HasPrefix(denom, "gamm/pool/"):
		return denomInfo{"LP-" + strings.TrimPrefix(denom, "gamm/pool/"), lpShareDecimals}
	case strings.HasPrefix(denom, "factory/"):
		return denomInfo{strings.ToUpper(denom[strings.LastIndex(denom, "/")+1:]), DefaultDenomDecimals}
	}

	if info, ok := knownDenoms[denom]; ok {
		return info
	}

	return denomInfo{strings.ToUpper(denom), DefaultDenomDecimals}
}

// coin is the LCD representation of an amount.
type coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// format returns the display symbol and amount of c.
func (a *adapter) format(c coin) (string, string) {
	info := a.resolveDenom(c.Denom)
	return info.symbol, units.FormatBaseUnits(c.Amount, info.decimals)
}

var coinPattern = regexp.MustCompile(`^([0-9]+)([a-zA-Z][a-zA-Z0-9/:._-]*)$`)

// parseCoin reads the first coin of an event attribute such as
// "1234uatom,5ibc/ABC".
func parseCoin(s string) (coin, bool) {
	first, _, _ := strings.Cut(strings.TrimSpace(s), ",")
	m := coinPattern.FindStringSubmatch(first)
	if m == nil {
		return coin{}, false
	}

	return coin{Denom: m[2], Amount: m[1]}, true
}
