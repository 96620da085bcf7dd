// Package pricing computes discounted unit prices and order totals.
// All functions are pure and deterministic so recorded order amounts
// can be re-derived for auditing.
package pricing

import "math"

// Round2 rounds a non-negative amount to 2 decimal places, half-up.
func Round2(amount float64) float64 {
	return math.Floor(amount*100+0.5) / 100
}

// DiscountedUnitPrice returns the unit price after applying a
// percentage discount, rounded to 2 decimal places.
func DiscountedUnitPrice(price float64, discountPercent int) float64 {
	return Round2(price - price*float64(discountPercent)/100)
}

// LineTotal returns the total for quantity units at the given
// discounted unit price.
func LineTotal(unitPrice float64, quantity int) float64 {
	return Round2(unitPrice * float64(quantity))
}

// SavedAmount returns how much a single unit is reduced by the
// discount.
func SavedAmount(price float64, discountPercent int) float64 {
	return Round2(price - DiscountedUnitPrice(price, discountPercent))
}

// ApplyPromo reduces an amount by an extra percentage granted by a
// promo code. A zero percent leaves the amount unchanged.
func ApplyPromo(amount float64, percent int) float64 {
	if percent <= 0 {
		return Round2(amount)
	}
	return Round2(amount - amount*float64(percent)/100)
}
