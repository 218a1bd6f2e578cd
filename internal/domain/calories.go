package domain

import "strings"

// metFactors maps activity types to MET values used to estimate calorie burn
// when a session is logged without a measured value.
var metFactors = map[string]float64{
	"walking":    3.5,
	"running":    9.8,
	"cycling":    7.5,
	"swimming":   8.0,
	"hiking":     6.0,
	"yoga":       2.5,
	"pilates":    3.0,
	"strength":   5.0,
	"crossfit":   8.0,
	"rowing":     7.0,
	"football":   7.0,
	"basketball": 6.5,
	"tennis":     7.3,
	"dancing":    4.5,
	"climbing":   8.0,
}

const defaultMETFactor = 4.0

// EstimateCalories approximates calories burned for a session via
// kcal = MET * weight(kg) * hours. Unknown activity types use a moderate
// default factor; a non-positive weight yields 0 so callers can tell the
// estimate was impossible.
func EstimateCalories(activityType string, durationMin int, weightKg float64) int {
	if durationMin <= 0 || weightKg <= 0 {
		return 0
	}
	factor, ok := metFactors[strings.ToLower(strings.TrimSpace(activityType))]
	if !ok {
		factor = defaultMETFactor
	}
	return int(factor * weightKg * float64(durationMin) / 60)
}
