package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// ChallengeKind categorizes a daily challenge.
type ChallengeKind string

const (
	KindSteps            ChallengeKind = "steps"
	KindActivityDuration ChallengeKind = "activity_duration"
	KindSleepHours       ChallengeKind = "sleep_hours"
	KindSleepQuality     ChallengeKind = "sleep_quality"
	KindHydration        ChallengeKind = "hydration"
)

// AllChallengeKinds lists every kind the generator can pick from.
var AllChallengeKinds = []ChallengeKind{
	KindSteps,
	KindActivityDuration,
	KindSleepHours,
	KindSleepQuality,
	KindHydration,
}

// challengeExpRewards fixes the experience granted on completion per kind.
var challengeExpRewards = map[ChallengeKind]int{
	KindSteps:            20,
	KindActivityDuration: 25,
	KindSleepHours:       15,
	KindSleepQuality:     30,
	KindHydration:        15,
}

// ExpRewardFor returns the completion reward for a kind, 0 for unknown kinds.
func ExpRewardFor(kind ChallengeKind) int {
	return challengeExpRewards[kind]
}

// ParseChallengeKind validates a raw kind value.
func ParseChallengeKind(raw string) (ChallengeKind, error) {
	kind := ChallengeKind(raw)
	if _, ok := challengeExpRewards[kind]; !ok {
		return "", fmt.Errorf("unknown challenge kind: %q", raw)
	}
	return kind, nil
}

// Challenge is a generated daily goal. Completed flips false->true exactly
// once, when Current first reaches Target; CompletedAt is set iff Completed.
type Challenge struct {
	ID          string
	UserID      string
	Kind        ChallengeKind
	Description string
	Target      int
	Current     int
	Completed   bool
	ExpReward   int
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Active reports whether the challenge can still accumulate progress.
func (c *Challenge) Active() bool {
	return !c.Completed
}

// Advance adds progress and marks completion when the target is reached.
// Returns true on the completing call only.
func (c *Challenge) Advance(amount int, now time.Time) bool {
	if c.Completed || amount < 0 {
		return false
	}
	c.Current += amount
	if c.Current < c.Target {
		return false
	}
	c.Completed = true
	completedAt := now
	c.CompletedAt = &completedAt
	return true
}

// GenerationInputs carries the slice of user history the generator derives
// target values from.
type GenerationInputs struct {
	// RecentSteps holds step records from the trailing seven days.
	RecentSteps []StepsRecord
	// SleepObjectiveHours is the user's configured nightly goal, 0 if unset.
	SleepObjectiveHours float64
}

const (
	defaultStepsBaseline  = 8000
	stepsBonusRange       = 2000
	minDurationTarget     = 30
	maxDurationTarget     = 60
	defaultSleepHours     = 8.0
	minSleepQualityTarget = 70
	maxSleepQualityTarget = 90
	minHydrationTargetML  = 2000
	maxHydrationTargetML  = 3000
	minChallengesPerDay   = 3
	staleChallengeAge     = 24 * time.Hour
	recentHistoryWindow   = 7 * 24 * time.Hour
)

// GenerateBatch creates a randomized set of challenges for one user: between
// three and len(AllChallengeKinds) distinct kinds, each with a target derived
// from the user's recent history.
func GenerateBatch(rng Rand, userID string, now time.Time, inputs GenerationInputs) []Challenge {
	kinds := append([]ChallengeKind(nil), AllChallengeKinds...)
	rng.Shuffle(len(kinds), func(i, j int) {
		kinds[i], kinds[j] = kinds[j], kinds[i]
	})

	n := minChallengesPerDay + rng.IntN(len(kinds)-minChallengesPerDay+1)

	batch := make([]Challenge, 0, n)
	for _, kind := range kinds[:n] {
		target := targetFor(rng, kind, now, inputs)
		batch = append(batch, Challenge{
			ID:          uuid.NewString(),
			UserID:      userID,
			Kind:        kind,
			Description: describeChallenge(kind, target),
			Target:      target,
			ExpReward:   challengeExpRewards[kind],
			CreatedAt:   now,
		})
	}
	return batch
}

func targetFor(rng Rand, kind ChallengeKind, now time.Time, inputs GenerationInputs) int {
	switch kind {
	case KindSteps:
		return stepsBaseline(now, inputs.RecentSteps) + rng.IntN(stepsBonusRange)
	case KindActivityDuration:
		return minDurationTarget + rng.IntN(maxDurationTarget-minDurationTarget+1)
	case KindSleepHours:
		hours := defaultSleepHours
		if inputs.SleepObjectiveHours > 0 {
			hours = inputs.SleepObjectiveHours
		}
		// Round the objective to one decimal, then convert to whole minutes.
		// Integer tenths keep 7.3h at exactly 438 minutes.
		tenths := int(math.Round(hours * 10))
		return tenths * 6
	case KindSleepQuality:
		return minSleepQualityTarget + rng.IntN(maxSleepQualityTarget-minSleepQualityTarget+1)
	case KindHydration:
		return minHydrationTargetML + rng.IntN(maxHydrationTargetML-minHydrationTargetML+1)
	default:
		return 0
	}
}

// stepsBaseline averages the step counts recorded in the trailing seven days,
// falling back to 8000 when there is no history.
func stepsBaseline(now time.Time, records []StepsRecord) int {
	cutoff := now.Add(-recentHistoryWindow)
	total, count := 0, 0
	for _, r := range records {
		if r.Date.Before(cutoff) || r.Date.After(now) {
			continue
		}
		total += r.StepCount
		count++
	}
	if count == 0 {
		return defaultStepsBaseline
	}
	return total / count
}

func describeChallenge(kind ChallengeKind, target int) string {
	switch kind {
	case KindSteps:
		return fmt.Sprintf("Walk %d steps today", target)
	case KindActivityDuration:
		return fmt.Sprintf("Complete %d minutes of activity", target)
	case KindSleepHours:
		return fmt.Sprintf("Sleep at least %.1f hours tonight", float64(target)/60)
	case KindSleepQuality:
		return fmt.Sprintf("Reach %d%% sleep quality", target)
	case KindHydration:
		return fmt.Sprintf("Drink %d ml of water today", target)
	default:
		return ""
	}
}
