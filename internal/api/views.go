package api

import (
	"errors"
	"strings"
	"time"

	"github.com/SergiSalas/TFGAplicacioSalut-sub000/internal/domain"
)

// StatsView is the body for GET /v1/stats.
type StatsView struct {
	AverageSteps     int    `json:"average_steps"`
	TrendPercentage  string `json:"trend_percentage"`
	BestDay          string `json:"best_day"`
	TotalActivities  int    `json:"total_activities"`
	TotalDurationMin int    `json:"total_duration_min"`
	TotalCalories    int    `json:"total_calories"`
}

// TrendView carries aligned label/value series for one period.
type TrendView struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
	Unit   string   `json:"unit"`
}

// LevelView is the body for GET /v1/level.
type LevelView struct {
	Level     int `json:"level"`
	Exp       int `json:"exp"`
	ExpToNext int `json:"exp_to_next"`
}

// ChallengeView exposes one challenge to clients.
type ChallengeView struct {
	ChallengeID string     `json:"challenge_id"`
	Kind        string     `json:"kind"`
	Description string     `json:"description"`
	Target      int        `json:"target"`
	Current     int        `json:"current"`
	Completed   bool       `json:"completed"`
	ExpReward   int        `json:"exp_reward"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ChallengeListResponse packages challenge results.
type ChallengeListResponse struct {
	Items []ChallengeView `json:"items"`
}

func toChallengeViews(challenges []domain.Challenge) []ChallengeView {
	views := make([]ChallengeView, 0, len(challenges))
	for _, ch := range challenges {
		views = append(views, ChallengeView{
			ChallengeID: ch.ID,
			Kind:        string(ch.Kind),
			Description: ch.Description,
			Target:      ch.Target,
			Current:     ch.Current,
			Completed:   ch.Completed,
			ExpReward:   ch.ExpReward,
			CreatedAt:   ch.CreatedAt,
			CompletedAt: ch.CompletedAt,
		})
	}
	return views
}

// ProgressRequest is the payload for POST /v1/challenges/progress.
type ProgressRequest struct {
	Kind   string `json:"kind"`
	Amount int    `json:"amount"`
}

// Validate ensures request correctness.
func (r ProgressRequest) Validate() error {
	if strings.TrimSpace(r.Kind) == "" {
		return errors.New("kind is required")
	}
	if r.Amount < 0 {
		return errors.New("amount must be >= 0")
	}
	return nil
}

// LogStepsRequest is the payload for POST /v1/records/steps.
type LogStepsRequest struct {
	Date        time.Time `json:"date"`
	StepCount   int       `json:"step_count"`
	DurationMin int       `json:"duration_min"`
}

// Validate ensures request correctness.
func (r LogStepsRequest) Validate() error {
	if r.Date.IsZero() {
		return errors.New("date is required")
	}
	if r.StepCount < 0 {
		return errors.New("step_count must be >= 0")
	}
	if r.DurationMin < 0 {
		return errors.New("duration_min must be >= 0")
	}
	return nil
}

// LogActivityRequest is the payload for POST /v1/records/activities.
type LogActivityRequest struct {
	ActivityType string    `json:"activity_type"`
	Date         time.Time `json:"date"`
	DurationMin  int       `json:"duration_min"`
	// Calories is optional; zero asks the server to estimate from the
	// activity type and the user's weight.
	Calories int `json:"calories"`
}

// Validate ensures request correctness.
func (r LogActivityRequest) Validate() error {
	if strings.TrimSpace(r.ActivityType) == "" {
		return errors.New("activity_type is required")
	}
	if r.Date.IsZero() {
		return errors.New("date is required")
	}
	if r.DurationMin <= 0 {
		return errors.New("duration_min must be > 0")
	}
	if r.Calories < 0 {
		return errors.New("calories must be >= 0")
	}
	return nil
}

// LogSleepRequest is the payload for POST /v1/records/sleep.
type LogSleepRequest struct {
	Date           time.Time `json:"date"`
	DurationMin    int       `json:"duration_min"`
	QualityPercent int       `json:"quality_percent"`
}

// Validate ensures request correctness.
func (r LogSleepRequest) Validate() error {
	if r.Date.IsZero() {
		return errors.New("date is required")
	}
	if r.DurationMin <= 0 {
		return errors.New("duration_min must be > 0")
	}
	if r.QualityPercent < 0 || r.QualityPercent > 100 {
		return errors.New("quality_percent must be between 0 and 100")
	}
	return nil
}

// LogHydrationRequest is the payload for POST /v1/records/hydration.
type LogHydrationRequest struct {
	Date     time.Time `json:"date"`
	AmountML int       `json:"amount_ml"`
}

// Validate ensures request correctness.
func (r LogHydrationRequest) Validate() error {
	if r.Date.IsZero() {
		return errors.New("date is required")
	}
	if r.AmountML <= 0 {
		return errors.New("amount_ml must be > 0")
	}
	return nil
}

// RecordCreatedResponse acknowledges a stored record.
type RecordCreatedResponse struct {
	RecordID string `json:"record_id"`
}

// ActivityCreatedResponse acknowledges a stored session, echoing the
// calories actually persisted so clients see server-side estimates.
type ActivityCreatedResponse struct {
	RecordID string `json:"record_id"`
	Calories int    `json:"calories"`
}

// ActivityView exposes one logged session.
type ActivityView struct {
	RecordID     string    `json:"record_id"`
	ActivityType string    `json:"activity_type"`
	Date         time.Time `json:"date"`
	DurationMin  int       `json:"duration_min"`
	Calories     int       `json:"calories"`
}

// ListActivitiesResponse packages list results.
type ListActivitiesResponse struct {
	Items      []ActivityView `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
