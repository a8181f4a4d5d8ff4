package service

import (
	"fmt"
	"math"
	"mediastore-checkout/internal/model"

	"github.com/shopspring/decimal"
)

// OrderTotal sums unit price × quantity in cents. A total that does not fit
// in int64 is rejected instead of wrapping.
func OrderTotal(items []*model.OrderItem) (int64, error) {
	var total int64
	for _, item := range items {
		if item.UnitPrice < 0 || item.Quantity < 0 {
			return 0, fmt.Errorf("%w: negative price or quantity for product %d", ErrValidation, item.ProductID)
		}
		if item.Quantity > 0 && item.UnitPrice > math.MaxInt64/item.Quantity {
			return 0, fmt.Errorf("%w: line total for product %d is out of range", ErrValidation, item.ProductID)
		}

		subtotal := item.UnitPrice * item.Quantity
		if total > math.MaxInt64-subtotal {
			return 0, fmt.Errorf("%w: order total is out of range", ErrValidation)
		}
		total += subtotal
	}
	return total, nil
}

// FormatAmount renders cents for display, e.g. 6000 -> "60.00 USD".
func FormatAmount(amount int64, currency string) string {
	return decimal.New(amount, -2).StringFixed(2) + " " + currency
}
