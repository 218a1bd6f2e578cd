// Package events defines the payloads published by the outbox dispatcher and
// consumed by the gamification worker.
package events

import "time"

// RecordLogged is emitted whenever a health record (steps, activity, sleep,
// hydration) is accepted. Value carries the magnitude the gamification
// consumer feeds into challenge progress: step count, minutes, or milliliters.
type RecordLogged struct {
	RecordID   string    `json:"record_id"`
	UserID     string    `json:"user_id"`
	RecordType string    `json:"record_type"`
	Date       time.Time `json:"date"`
	Value      int       `json:"value"`
	// Extra carries a secondary magnitude for record types that have one
	// (sleep quality percent alongside sleep minutes).
	Extra int `json:"extra,omitempty"`
}

// Record types carried by RecordLogged.
const (
	RecordTypeSteps     = "steps"
	RecordTypeActivity  = "activity"
	RecordTypeSleep     = "sleep"
	RecordTypeHydration = "hydration"
)

// ChallengeCompleted is emitted when a challenge reaches its target.
type ChallengeCompleted struct {
	ChallengeID string    `json:"challenge_id"`
	UserID      string    `json:"user_id"`
	Kind        string    `json:"kind"`
	Target      int       `json:"target"`
	ExpReward   int       `json:"exp_reward"`
	CompletedAt time.Time `json:"completed_at"`
}

// LevelUp is emitted when accumulated experience rolls a user's level forward.
type LevelUp struct {
	UserID       string    `json:"user_id"`
	Level        int       `json:"level"`
	LevelsGained int       `json:"levels_gained"`
	OccurredAt   time.Time `json:"occurred_at"`
}
