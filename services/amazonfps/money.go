package amazonfps

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinimumChargeableUnitInCents is the smallest amount the provider accepts: 0.01
const MinimumChargeableUnitInCents = int64(1)

func formatAmount(amountInCents int64) string {
	return decimal.New(amountInCents, -2).StringFixed(2)
}

func parseAmount(value string) (int64, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid amount '%s': %w", value, err)
	}
	if !amount.Equal(amount.Round(2)) {
		return 0, fmt.Errorf("invalid amount '%s': more than 2 decimals", value)
	}
	return amount.Shift(2).IntPart(), nil
}
