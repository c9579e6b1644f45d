// Package units converts between human-entered display amounts and the
// ledger's integer base-unit representation. All monetary conversion is
// exact decimal arithmetic on the parsed mantissa; no value ever passes
// through a binary float, so "0.1" at scale 18 is exactly 10^17.
package units

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chainraise/backend/internal/apperrors"
)

// DefaultScale is the number of decimal digits in one display unit,
// matching an 18-decimal chain currency (wei per ether).
const DefaultScale = 18

// ToBaseUnits parses a decimal display amount and scales it to integer
// base units. Fractional digits beyond the scale are truncated toward
// zero; inputs with at most `scale` fractional digits convert exactly.
func ToBaseUnits(amount string, scale int32) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, &apperrors.ValidationError{Field: "amount", Reason: "not a decimal number"}
	}
	return d.Shift(scale).Truncate(0).BigInt(), nil
}

// FromBaseUnits renders an integer base-unit amount as a display-unit
// decimal string. Display only: results are not fed back into
// computation.
func FromBaseUnits(amount *big.Int, scale int32) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -scale).String()
}

// Accepted layouts for user-entered deadlines, matching what an HTML
// datetime-local input submits.
var deadlineLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ToUnixSeconds parses a local date-time string into epoch seconds,
// floored to the whole second.
func ToUnixSeconds(s string) (int64, error) {
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, &apperrors.ValidationError{Field: "deadline", Reason: "not a recognized date-time"}
}
