package utils

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxChargeMinorUnits - наибольшая сумма одного платежа у провайдера.
// Колонки NUMERIC(10,2) вмещают больше, поэтому ограничивает именно она.
const MaxChargeMinorUnits = 99_999_999

var (
	hundred   = decimal.NewFromInt(100)
	maxCharge = decimal.New(MaxChargeMinorUnits, -2)
)

// ToMinorUnits переводит сумму в минимальные единицы валюты (центы).
// Суммы с точностью выше двух знаков отклоняются, а не округляются.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	cents := amount.Mul(hundred)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than two decimal places", amount.String())
	}
	return cents.IntPart(), nil
}

// FromMinorUnits переводит центы обратно в десятичную сумму.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// LineSubtotal считает стоимость строки заказа.
func LineSubtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// SumsTo проверяет, что total равен сумме частей.
func SumsTo(total decimal.Decimal, parts ...decimal.Decimal) bool {
	sum := decimal.Zero
	for _, p := range parts {
		sum = sum.Add(p)
	}
	return sum.Equal(total)
}

// WithinChargeLimit сообщает, можно ли провести сумму одним платежом.
func WithinChargeLimit(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(maxCharge)
}
