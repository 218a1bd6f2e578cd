package domain

import "time"

// ComposeStats builds the per-period report from a user's step and session
// history. ref is the request instant ("now").
func ComposeStats(p Period, ref time.Time, steps []StepsRecord, sessions []ActivitySession) (StatsReport, error) {
	cur, err := CurrentWindow(p, ref)
	if err != nil {
		return StatsReport{}, err
	}
	prev, err := PreviousWindow(p, ref)
	if err != nil {
		return StatsReport{}, err
	}

	curSteps := StepBuckets(p, cur, steps)
	prevSteps := StepBuckets(p, prev, steps)

	report := StatsReport{
		AverageSteps:    averageSteps(p, ref, cur, curSteps),
		TrendPercentage: TrendText(curSteps, prevSteps),
		BestDay:         bestWeekday(ref, steps),
	}

	// Activity totals cover everything from the period start through "now";
	// the nominal period end does not cap them.
	for _, s := range sessions {
		if s.Date.Before(cur.Start) || s.Date.After(ref) {
			continue
		}
		report.TotalActivities++
		report.TotalDurationMin += s.DurationMin
		report.TotalCalories += s.Calories
	}

	return report, nil
}

// averageSteps divides the current-period total by the elapsed day count for
// weeks, but by the full bucket count for months and years. The asymmetry is
// the documented product contract.
func averageSteps(p Period, ref time.Time, w Window, buckets []int) int {
	if len(buckets) == 0 {
		return 0
	}
	divisor := w.Buckets
	if p == PeriodWeek {
		divisor = ElapsedWeekDays(ref)
	}
	if divisor == 0 {
		return 0
	}
	return Total(buckets) / divisor
}

// bestWeekday names the weekday with the strictly largest step bucket of the
// current week. Ties keep the earliest weekday. Clients show this on every
// period view, so it is always computed from the week window.
func bestWeekday(ref time.Time, steps []StepsRecord) string {
	week, _ := CurrentWindow(PeriodWeek, ref)
	buckets := StepBuckets(PeriodWeek, week, steps)

	best := 0
	for i, v := range buckets {
		if v > buckets[best] {
			best = i
		}
	}
	return weekdayNames[best]
}

// StepsTrend aggregates current-period step counts into a trend report.
func StepsTrend(p Period, ref time.Time, steps []StepsRecord) (TrendReport, error) {
	w, err := CurrentWindow(p, ref)
	if err != nil {
		return TrendReport{}, err
	}
	return TrendReport{
		Labels: BucketLabels(p, w),
		Values: StepBuckets(p, w, steps),
		Unit:   "steps",
	}, nil
}

// ActivityTrend aggregates current-period session minutes into a trend report.
func ActivityTrend(p Period, ref time.Time, sessions []ActivitySession) (TrendReport, error) {
	w, err := CurrentWindow(p, ref)
	if err != nil {
		return TrendReport{}, err
	}
	return TrendReport{
		Labels: BucketLabels(p, w),
		Values: ActivityDurationBuckets(p, w, sessions),
		Unit:   "minutes",
	}, nil
}
