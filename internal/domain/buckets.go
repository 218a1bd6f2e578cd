package domain

import (
	"strconv"
	"time"
)

// Rebucket folds dated records into the window's ordered buckets. Records
// outside the window are ignored, including future-dated ones. Buckets with
// no records stay at zero; no interpolation is applied.
func Rebucket[T any](p Period, w Window, records []T, at func(T) time.Time, value func(T) int) []int {
	buckets := make([]int, w.Buckets)
	for _, rec := range records {
		ts := at(rec)
		if !w.Contains(ts) {
			continue
		}
		idx := w.BucketIndex(p, ts)
		if idx < 0 || idx >= len(buckets) {
			continue
		}
		buckets[idx] += value(rec)
	}
	return buckets
}

// Total sums a bucket sequence.
func Total(buckets []int) int {
	sum := 0
	for _, v := range buckets {
		sum += v
	}
	return sum
}

// StepBuckets aggregates step counts for the given window.
func StepBuckets(p Period, w Window, records []StepsRecord) []int {
	return Rebucket(p, w, records,
		func(r StepsRecord) time.Time { return r.Date },
		func(r StepsRecord) int { return r.StepCount })
}

// ActivityDurationBuckets aggregates session minutes for the given window.
func ActivityDurationBuckets(p Period, w Window, sessions []ActivitySession) []int {
	return Rebucket(p, w, sessions,
		func(s ActivitySession) time.Time { return s.Date },
		func(s ActivitySession) int { return s.DurationMin })
}

// BucketLabels returns the display name of each bucket slot: weekday names
// for weeks, day numbers for months, month abbreviations for years.
func BucketLabels(p Period, w Window) []string {
	switch p {
	case PeriodWeek:
		return append([]string(nil), weekdayNames[:]...)
	case PeriodMonth:
		labels := make([]string, w.Buckets)
		for i := range labels {
			labels[i] = strconv.Itoa(i + 1)
		}
		return labels
	case PeriodYear:
		return append([]string(nil), monthNames[:]...)
	default:
		return nil
	}
}

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
