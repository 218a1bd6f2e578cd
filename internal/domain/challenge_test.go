package domain

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func seededRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestGenerateBatchSizeAndKinds(t *testing.T) {
	now := time.Date(2025, time.June, 18, 9, 0, 0, 0, time.UTC)

	for seed := uint64(1); seed <= 20; seed++ {
		batch := GenerateBatch(seededRand(seed), "user-1", now, GenerationInputs{})

		require.GreaterOrEqual(t, len(batch), 3, "seed=%d", seed)
		require.LessOrEqual(t, len(batch), len(AllChallengeKinds), "seed=%d", seed)

		seen := make(map[ChallengeKind]bool)
		for _, ch := range batch {
			require.False(t, seen[ch.Kind], "duplicate kind %s", ch.Kind)
			seen[ch.Kind] = true

			require.Equal(t, "user-1", ch.UserID)
			require.NotEmpty(t, ch.ID)
			require.NotEmpty(t, ch.Description)
			require.Positive(t, ch.Target)
			require.Zero(t, ch.Current)
			require.False(t, ch.Completed)
			require.Nil(t, ch.CompletedAt)
			require.Equal(t, now, ch.CreatedAt)
			require.Equal(t, ExpRewardFor(ch.Kind), ch.ExpReward)
		}
	}
}

func TestGenerateBatchTargetRanges(t *testing.T) {
	now := time.Date(2025, time.June, 18, 9, 0, 0, 0, time.UTC)

	for seed := uint64(1); seed <= 50; seed++ {
		batch := GenerateBatch(seededRand(seed), "user-1", now, GenerationInputs{})
		for _, ch := range batch {
			switch ch.Kind {
			case KindSteps:
				require.GreaterOrEqual(t, ch.Target, 8000)
				require.Less(t, ch.Target, 10000)
			case KindActivityDuration:
				require.GreaterOrEqual(t, ch.Target, 30)
				require.LessOrEqual(t, ch.Target, 60)
			case KindSleepHours:
				require.Equal(t, 480, ch.Target) // 8.0h default, stored as minutes
			case KindSleepQuality:
				require.GreaterOrEqual(t, ch.Target, 70)
				require.LessOrEqual(t, ch.Target, 90)
			case KindHydration:
				require.GreaterOrEqual(t, ch.Target, 2000)
				require.LessOrEqual(t, ch.Target, 3000)
			}
		}
	}
}

func TestStepsTargetFromRecentHistory(t *testing.T) {
	now := time.Date(2025, time.June, 18, 9, 0, 0, 0, time.UTC)
	inputs := GenerationInputs{
		RecentSteps: []StepsRecord{
			stepsOn(now.AddDate(0, 0, -1), 12000),
			stepsOn(now.AddDate(0, 0, -2), 10000),
			// Outside the trailing week, must not shift the baseline.
			stepsOn(now.AddDate(0, 0, -10), 100),
		},
	}

	for seed := uint64(1); seed <= 20; seed++ {
		batch := GenerateBatch(seededRand(seed), "user-1", now, inputs)
		for _, ch := range batch {
			if ch.Kind != KindSteps {
				continue
			}
			require.GreaterOrEqual(t, ch.Target, 11000)
			require.Less(t, ch.Target, 13000)
		}
	}
}

func TestSleepTargetFromObjective(t *testing.T) {
	now := time.Date(2025, time.June, 18, 9, 0, 0, 0, time.UTC)
	inputs := GenerationInputs{SleepObjectiveHours: 7.25}

	for seed := uint64(1); seed <= 20; seed++ {
		batch := GenerateBatch(seededRand(seed), "user-1", now, inputs)
		for _, ch := range batch {
			if ch.Kind != KindSleepHours {
				continue
			}
			// 7.25 rounds to 7.3 hours -> 438 minutes.
			require.Equal(t, 438, ch.Target)
		}
	}
}

func TestExpRewards(t *testing.T) {
	require.Equal(t, 20, ExpRewardFor(KindSteps))
	require.Equal(t, 25, ExpRewardFor(KindActivityDuration))
	require.Equal(t, 15, ExpRewardFor(KindSleepHours))
	require.Equal(t, 30, ExpRewardFor(KindSleepQuality))
	require.Equal(t, 15, ExpRewardFor(KindHydration))
	require.Equal(t, 0, ExpRewardFor(ChallengeKind("nope")))
}

func TestParseChallengeKind(t *testing.T) {
	kind, err := ParseChallengeKind("hydration")
	require.NoError(t, err)
	require.Equal(t, KindHydration, kind)

	_, err = ParseChallengeKind("jumping")
	require.Error(t, err)
}

func TestAdvanceCompletesOnce(t *testing.T) {
	now := time.Date(2025, time.June, 18, 21, 0, 0, 0, time.UTC)
	ch := Challenge{Kind: KindSteps, Target: 10000, Current: 9500}

	completed := ch.Advance(600, now)
	require.True(t, completed)
	require.Equal(t, 10100, ch.Current)
	require.True(t, ch.Completed)
	require.NotNil(t, ch.CompletedAt)
	require.Equal(t, now, *ch.CompletedAt)

	// Further progress must not re-complete or mutate.
	require.False(t, ch.Advance(500, now.Add(time.Hour)))
	require.Equal(t, 10100, ch.Current)
	require.Equal(t, now, *ch.CompletedAt)
}

func TestAdvanceBelowTarget(t *testing.T) {
	ch := Challenge{Kind: KindHydration, Target: 2500}

	require.False(t, ch.Advance(1000, time.Now()))
	require.Equal(t, 1000, ch.Current)
	require.False(t, ch.Completed)
	require.Nil(t, ch.CompletedAt)

	require.False(t, ch.Advance(-100, time.Now()))
	require.Equal(t, 1000, ch.Current, "negative amounts are ignored")
}

func TestAdvanceExactTarget(t *testing.T) {
	ch := Challenge{Kind: KindSleepQuality, Target: 80, Current: 0}
	require.True(t, ch.Advance(80, time.Now()))
	require.True(t, ch.Completed)
}
