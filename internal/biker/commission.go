package biker

import "math"

// CommissionAmount computes the payout on a sales total at the given
// percentage rate, rounded to two decimal places half away from zero.
// sales*percent is already the amount scaled by 100, so a single Round
// lands exactly on cents.
func CommissionAmount(sales, percent float64) float64 {
	return math.Round(sales*percent) / 100
}
