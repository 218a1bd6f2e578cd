package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	for _, raw := range []string{"week", "WEEK", " Month ", "year"} {
		_, err := ParsePeriod(raw)
		require.NoError(t, err, "raw=%q", raw)
	}

	_, err := ParsePeriod("fortnight")
	require.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = ParsePeriod("")
	require.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestWeekWindowStartsMonday(t *testing.T) {
	// Wednesday 2025-06-18.
	ref := time.Date(2025, time.June, 18, 15, 30, 0, 0, time.UTC)

	w, err := CurrentWindow(PeriodWeek, ref)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC), w.Start)
	require.Equal(t, time.Date(2025, time.June, 22, 23, 59, 59, 999000000, time.UTC), w.End)
	require.Equal(t, 7, w.Buckets)
}

func TestWeekWindowSundayRollsBack(t *testing.T) {
	// Sunday 2025-06-22 belongs to the week that started Monday 2025-06-16.
	ref := time.Date(2025, time.June, 22, 8, 0, 0, 0, time.UTC)

	w, err := CurrentWindow(PeriodWeek, ref)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC), w.Start)
}

func TestPreviousWeekShiftedSevenDays(t *testing.T) {
	ref := time.Date(2025, time.June, 18, 12, 0, 0, 0, time.UTC)

	cur, err := CurrentWindow(PeriodWeek, ref)
	require.NoError(t, err)
	prev, err := PreviousWindow(PeriodWeek, ref)
	require.NoError(t, err)

	require.Equal(t, cur.Start.AddDate(0, 0, -7), prev.Start)
	require.Equal(t, cur.End.AddDate(0, 0, -7), prev.End)
}

func TestMonthWindowBucketCounts(t *testing.T) {
	cases := []struct {
		ref  time.Time
		days int
	}{
		{time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC), 28},
		{time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC), 29},
		{time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), 30},
		{time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), 31},
	}

	for _, tc := range cases {
		w, err := CurrentWindow(PeriodMonth, tc.ref)
		require.NoError(t, err)
		require.Equal(t, tc.days, w.Buckets, "ref=%s", tc.ref)
		require.Equal(t, 1, w.Start.Day())
	}
}

func TestPreviousMonthHasOwnDayCount(t *testing.T) {
	// March reference: previous month is February.
	ref := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	prev, err := PreviousWindow(PeriodMonth, ref)
	require.NoError(t, err)
	require.Equal(t, time.February, prev.Start.Month())
	require.Equal(t, 28, prev.Buckets)
}

func TestYearWindow(t *testing.T) {
	ref := time.Date(2025, time.August, 5, 0, 0, 0, 0, time.UTC)

	cur, err := CurrentWindow(PeriodYear, ref)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), cur.Start)
	require.Equal(t, 12, cur.Buckets)

	prev, err := PreviousWindow(PeriodYear, ref)
	require.NoError(t, err)
	require.Equal(t, 2024, prev.Start.Year())
}

func TestBucketIndexMapping(t *testing.T) {
	monday := time.Date(2025, time.June, 16, 10, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, time.June, 22, 10, 0, 0, 0, time.UTC)

	week, err := CurrentWindow(PeriodWeek, monday)
	require.NoError(t, err)
	require.Equal(t, 0, week.BucketIndex(PeriodWeek, monday))
	require.Equal(t, 6, week.BucketIndex(PeriodWeek, sunday))

	month, err := CurrentWindow(PeriodMonth, monday)
	require.NoError(t, err)
	require.Equal(t, 15, month.BucketIndex(PeriodMonth, monday))

	year, err := CurrentWindow(PeriodYear, monday)
	require.NoError(t, err)
	require.Equal(t, 5, year.BucketIndex(PeriodYear, monday))
}

func TestElapsedWeekDays(t *testing.T) {
	require.Equal(t, 1, ElapsedWeekDays(time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC))) // Monday
	require.Equal(t, 3, ElapsedWeekDays(time.Date(2025, time.June, 18, 0, 0, 0, 0, time.UTC))) // Wednesday
	require.Equal(t, 7, ElapsedWeekDays(time.Date(2025, time.June, 22, 0, 0, 0, 0, time.UTC))) // Sunday
}

func TestInvalidPeriodWindow(t *testing.T) {
	_, err := CurrentWindow(Period("decade"), time.Now())
	require.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = PreviousWindow(Period("decade"), time.Now())
	require.ErrorIs(t, err, ErrInvalidPeriod)
}
