package booking

import "regatta/internal/models"

// Quote derives the total price for a validated range from a per-day rate.
// Computed once at creation time; the stored price is never recomputed even
// if the yacht's rate changes later.
func Quote(r models.DateRange, pricePerDay float64) float64 {
	return float64(r.Days()) * pricePerDay
}
