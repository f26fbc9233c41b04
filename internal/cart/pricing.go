package cart

import (
	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
)

// Totals is the derived pricing summary for a set of cart lines. Shipping and
// order-level discounts are applied later, at order scope, so a cart-level
// recalculation always carries them as zero.
type Totals struct {
	ItemCount      int
	Subtotal       int
	Rental         int
	Total          int
	PointsEarnable int
}

// Recalculate derives totals from the given lines. It is a pure function;
// persisting the result onto the cart header is the caller's job.
func Recalculate(items []models.CartItem) Totals {
	var totals Totals
	for _, item := range items {
		base := LineAmount(item)
		if item.RefType == enums.RefTypeBookRental {
			totals.Rental += base
		} else {
			totals.Subtotal += base
		}
		totals.ItemCount += item.Quantity
		totals.PointsEarnable += LinePoints(base, item.PointsRate)
	}
	totals.Total = totals.Subtotal + totals.Rental
	return totals
}

// LineAmount computes the base amount one cart line contributes.
// Rental lines charge per day; everything else charges the effective unit
// price, preferring the sale price when one is set.
func LineAmount(item models.CartItem) int {
	if item.RefType == enums.RefTypeBookRental {
		return item.RentalUnitPrice * item.RentalDays * item.Quantity
	}
	return EffectiveUnitPrice(item) * item.Quantity
}

// EffectiveUnitPrice prefers the sale price over the list price.
func EffectiveUnitPrice(item models.CartItem) int {
	if item.SaleUnitPrice != nil {
		return *item.SaleUnitPrice
	}
	return item.ListUnitPrice
}

// LinePoints applies the points floor law: floor(base * rate / 100).
// Fractional points are always dropped, never rounded up.
func LinePoints(baseAmount, ratePercent int) int {
	if baseAmount <= 0 || ratePercent <= 0 {
		return 0
	}
	return baseAmount * ratePercent / 100
}
