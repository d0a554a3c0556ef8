package intake

import (
	"strings"

	"github.com/lexflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ParseMoney parses a non-negative amount with at most two decimal places.
// An empty string yields an invalid (absent) amount.
func ParseMoney(raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, shared.NewDomainError("INVALID_AMOUNT", "Amount must be a decimal number")
	}
	if amount.IsNegative() {
		return decimal.NullDecimal{}, shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	if !amount.Equal(amount.Round(2)) {
		return decimal.NullDecimal{}, shared.NewDomainError("INVALID_AMOUNT", "Amount cannot have more than two decimal places")
	}
	return decimal.NullDecimal{Decimal: amount, Valid: true}, nil
}

// FormatMoney renders an amount with two decimal places, or "" when absent
func FormatMoney(amount decimal.NullDecimal) string {
	if !amount.Valid {
		return ""
	}
	return amount.Decimal.StringFixed(2)
}

// MinorUnits converts an amount to cents
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
