package utils

import "math"

func RoundWithTwoDecimalPlace(f float64) float64 {
	if f == 0 {
		return 0
	}

	return math.Round(f*100) / 100
}

// PercentDelta returns the period-over-period change in percent, rounded to
// two decimals. A zero previous value yields zero rather than infinity.
func PercentDelta(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return RoundWithTwoDecimalPlace((current - previous) / previous * 100)
}
