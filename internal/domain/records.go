// Package domain implements the analytics and gamification engine for the
// health-tracking backend: period aggregation, trend comparison, daily
// challenge generation and experience-based leveling.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrUserNotFound is returned when an identity does not resolve to a stored user.
	ErrUserNotFound = errors.New("user not found")
	// ErrChallengeNotFound is returned when a challenge cannot be located.
	ErrChallengeNotFound = errors.New("challenge not found")
)

// User is the profile the engine computes against.
type User struct {
	ID                  string
	Email               string
	DisplayName         string
	WeightKg            float64
	SleepObjectiveHours float64
	CreatedAt           time.Time
}

// StepsRecord is one day of step tracking. The caller guarantees at most one
// record per user per date.
type StepsRecord struct {
	ID          string
	UserID      string
	Date        time.Time
	StepCount   int
	DurationMin int
}

// ActivitySession is a single logged workout. Many per day are allowed.
type ActivitySession struct {
	ID           string
	UserID       string
	ActivityType string
	Date         time.Time
	DurationMin  int
	Calories     int
}

// SleepRecord is one night of sleep tracking.
type SleepRecord struct {
	ID             string
	UserID         string
	Date           time.Time
	DurationMin    int
	QualityPercent int
}

// HydrationRecord is a single water intake entry.
type HydrationRecord struct {
	ID       string
	UserID   string
	Date     time.Time
	AmountML int
}

// StatsReport is the per-period activity summary returned to clients.
type StatsReport struct {
	AverageSteps     int
	TrendPercentage  string
	BestDay          string
	TotalActivities  int
	TotalDurationMin int
	TotalCalories    int
}

// TrendReport carries per-bucket totals for one period, labels aligned with values.
type TrendReport struct {
	Labels []string
	Values []int
	Unit   string
}
