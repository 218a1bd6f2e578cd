package domain

import (
	"fmt"
	"math"
)

// Previous-period totals below this floor are too sparse to support a
// meaningful ratio; the trend degrades to "+0%" instead.
const trendMinPreviousTotal = 1000

const (
	trendClampMin = -95
	trendClampMax = 95
)

// TrendText compares current and previous period totals and formats the
// signed percentage change. Non-negative values carry an explicit leading
// plus; the result is always within [-95%, +95%].
func TrendText(current, previous []int) string {
	prevTotal := Total(previous)
	if prevTotal < trendMinPreviousTotal {
		return "+0%"
	}

	curTotal := Total(current)
	pct := int(math.Round(100 * float64(curTotal-prevTotal) / float64(prevTotal)))
	if pct > trendClampMax {
		pct = trendClampMax
	}
	if pct < trendClampMin {
		pct = trendClampMin
	}

	if pct >= 0 {
		return fmt.Sprintf("+%d%%", pct)
	}
	return fmt.Sprintf("%d%%", pct)
}
