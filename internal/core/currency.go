package core

import "strconv"

// FormatRupiah renders a whole-rupiah amount with id-ID digit grouping,
// e.g. 150000 -> "150.000". No fraction digits: the smallest unit is Rp 1.
func FormatRupiah(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, d)
	}

	if neg {
		return "-" + string(out)
	}
	return string(out)
}
