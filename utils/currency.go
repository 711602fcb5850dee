package utils

import "strconv"

// FormatRupiah formats an amount stored in whole rupiah as an Indonesian
// currency string, e.g. 1500000 -> "Rp 1.500.000". Amounts are integers
// throughout the app; rupiah has no fractional unit in circulation.
func FormatRupiah(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)

	grouped := ""
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped += "."
		}
		grouped += string(d)
	}

	return "Rp " + sign + grouped
}
