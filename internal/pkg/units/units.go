// Package units converts on-chain integer amounts and venue-reported numeric
// strings into the display decimal form used by every ledger record.
//
// All arithmetic is arbitrary precision. Display values keep at most
// DisplayPrecision fractional digits, truncated rather than rounded, with
// trailing zeros and a trailing decimal point removed. Malformed input never
// panics or errors: it formats as "0".
package units

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// DisplayPrecision is the maximum number of fractional digits kept in a
// display value.
const DisplayPrecision = 8

// Zero is the display form of an absent or unparsable amount.
const Zero = "0"

// FormatBaseUnits divides a non-negative base-unit integer (wei, planck,
// lamports, uatom, ...) by 10^decimals and returns its display form.
//
// Example:
//
//	FormatBaseUnits("1500000000000000000", 18) // "1.5"
//	FormatBaseUnits("123", 6)                  // "0.000123"
//	FormatBaseUnits("0x10", 18)                // "0"
func FormatBaseUnits(raw string, decimals int) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || decimals < 0 {
		return Zero
	}

	n, ok := new(big.Int).SetString(raw, 10)
	if !ok || n.Sign() < 0 {
		return Zero
	}

	return display(decimal.NewFromBigInt(n, int32(-decimals)))
}

// MulBaseUnits multiplies two non-negative base-unit integers (e.g. gasUsed and
// gasPrice) and returns the product as a base-unit integer string.
// Malformed input yields "0".
func MulBaseUnits(a, b string) string {
	x, ok := new(big.Int).SetString(strings.TrimSpace(a), 10)
	if !ok || x.Sign() < 0 {
		return Zero
	}

	y, ok := new(big.Int).SetString(strings.TrimSpace(b), 10)
	if !ok || y.Sign() < 0 {
		return Zero
	}

	return new(big.Int).Mul(x, y).String()
}

// Truncate normalizes a value that is already in decimal form (for example a
// perpetuals venue's "0.123456789") to display precision. The sign is kept.
func Truncate(value string) string {
	d, ok := parse(value)
	if !ok {
		return Zero
	}

	return display(d)
}

// Abs returns the truncated magnitude of a decimal value.
func Abs(value string) string {
	d, ok := parse(value)
	if !ok {
		return Zero
	}

	return display(d.Abs())
}

// Sign returns -1, 0 or +1 for a decimal value. Malformed input is 0.
func Sign(value string) int {
	d, ok := parse(value)
	if !ok {
		return 0
	}

	return d.Sign()
}

// Parse converts a display string into a decimal. Malformed input is zero.
func Parse(value string) decimal.Decimal {
	d, ok := parse(value)
	if !ok {
		return decimal.Zero
	}

	return d
}

func parse(value string) (decimal.Decimal, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false
	}

	return d, true
}

func display(d decimal.Decimal) string {
	t := d.Truncate(DisplayPrecision)
	if t.IsZero() {
		return Zero
	}

	return t.String()
}
