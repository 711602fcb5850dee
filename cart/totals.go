package cart

import "math"

// Totals is the derived money breakdown for the active restaurant's cart.
// All amounts are in the smallest currency unit; tax and service fee are
// rounded to the nearest whole unit.
type Totals struct {
	Subtotal          int64   `json:"subtotal"`
	TaxPercentage     float64 `json:"tax_percentage"`
	Tax               int64   `json:"tax"`
	ServicePercentage float64 `json:"service_percentage"`
	ServiceFee        int64   `json:"service_fee"`
	DeliveryFee       int64   `json:"delivery_fee"`
	Total             int64   `json:"total"`
}

func roundPercent(amount int64, percentage float64) int64 {
	return int64(math.Round(float64(amount) * percentage / 100))
}
