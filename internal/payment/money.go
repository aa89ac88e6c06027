package payment

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	hundred  = decimal.NewFromInt(100)
	maxMinor = decimal.NewFromInt(math.MaxInt64)
)

// ToMinorUnits converts a major-unit amount (20.00) to the provider's minor
// unit (2000), rounding half away from zero. Amounts whose minor value does
// not fit in an int64 yield 0, which the gateways reject as ErrInvalidAmount.
func ToMinorUnits(amount decimal.Decimal) int64 {
	minor := amount.Mul(hundred).Round(0)
	if minor.Abs().GreaterThan(maxMinor) {
		return 0
	}
	return minor.IntPart()
}

func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
