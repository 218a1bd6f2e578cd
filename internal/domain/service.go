package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UserRepository resolves stored user profiles.
type UserRepository interface {
	GetUser(ctx context.Context, userID string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// RecordRepository captures persistence for logged health records.
type RecordRepository interface {
	CreateSteps(ctx context.Context, record StepsRecord) error
	CreateActivity(ctx context.Context, session ActivitySession) error
	CreateSleep(ctx context.Context, record SleepRecord) error
	CreateHydration(ctx context.Context, record HydrationRecord) error
	StepsByUser(ctx context.Context, userID string) ([]StepsRecord, error)
	ActivitiesByUser(ctx context.Context, userID string) ([]ActivitySession, error)
	ListActivities(ctx context.Context, userID string, cursor *Cursor, limit int) ([]ActivitySession, *Cursor, error)
}

// ChallengeRepository captures persistence for daily challenges.
type ChallengeRepository interface {
	DeleteStaleBefore(ctx context.Context, userID string, cutoff time.Time) error
	CreatedSince(ctx context.Context, userID string, since time.Time) ([]Challenge, error)
	SaveBatch(ctx context.Context, batch []Challenge) error
	ActiveByKind(ctx context.Context, userID string, kind ChallengeKind) ([]Challenge, error)
	UpdateProgress(ctx context.Context, challenge Challenge) error
	MarkCompleted(ctx context.Context, challenge Challenge) error
}

// LevelRepository captures persistence for progression state.
type LevelRepository interface {
	GetLevel(ctx context.Context, userID string) (*Level, error)
	// SaveLevel upserts the level row; levelsGained > 0 signals a level-up
	// so the store can record the event alongside the write.
	SaveLevel(ctx context.Context, level Level, levelsGained int) error
}

// UserLocker serializes the read-check-write spans that must not interleave
// for the same user (challenge generation, progress application).
type UserLocker interface {
	LockUser(ctx context.Context, userID string) (unlock func(), err error)
}

// Cursor models the pagination token for activity listings.
type Cursor struct {
	Date time.Time
	ID   string
}

// Service implements the analytics and gamification operations on top of the
// injected repositories. It holds no per-user state of its own.
type Service struct {
	users      UserRepository
	records    RecordRepository
	challenges ChallengeRepository
	levels     LevelRepository
	locker     UserLocker
	rng        Rand
	now        func() time.Time
}

// Option configures optional Service behaviour.
type Option func(*Service)

// WithRand overrides the random source used by challenge generation.
func WithRand(rng Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// WithClock overrides the reference clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs a Service.
func NewService(users UserRepository, records RecordRepository, challenges ChallengeRepository, levels LevelRepository, locker UserLocker, opts ...Option) *Service {
	s := &Service{
		users:      users,
		records:    records,
		challenges: challenges,
		levels:     levels,
		locker:     locker,
		rng:        NewRand(),
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) requireUser(ctx context.Context, userID string) (*User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetActivityStats builds the per-period stats report. An empty period
// defaults to week.
func (s *Service) GetActivityStats(ctx context.Context, userID, rawPeriod string) (StatsReport, error) {
	if rawPeriod == "" {
		rawPeriod = string(PeriodWeek)
	}
	period, err := ParsePeriod(rawPeriod)
	if err != nil {
		return StatsReport{}, err
	}
	if _, err := s.requireUser(ctx, userID); err != nil {
		return StatsReport{}, err
	}

	steps, err := s.records.StepsByUser(ctx, userID)
	if err != nil {
		return StatsReport{}, fmt.Errorf("loading steps history: %w", err)
	}
	sessions, err := s.records.ActivitiesByUser(ctx, userID)
	if err != nil {
		return StatsReport{}, fmt.Errorf("loading activity history: %w", err)
	}

	return ComposeStats(period, s.now(), steps, sessions)
}

// GetStepsTrends returns current-period step totals per bucket.
func (s *Service) GetStepsTrends(ctx context.Context, userID, rawPeriod string) (TrendReport, error) {
	period, err := ParsePeriod(rawPeriod)
	if err != nil {
		return TrendReport{}, err
	}
	if _, err := s.requireUser(ctx, userID); err != nil {
		return TrendReport{}, err
	}
	steps, err := s.records.StepsByUser(ctx, userID)
	if err != nil {
		return TrendReport{}, fmt.Errorf("loading steps history: %w", err)
	}
	return StepsTrend(period, s.now(), steps)
}

// GetActivityTrends returns current-period session minutes per bucket.
func (s *Service) GetActivityTrends(ctx context.Context, userID, rawPeriod string) (TrendReport, error) {
	period, err := ParsePeriod(rawPeriod)
	if err != nil {
		return TrendReport{}, err
	}
	if _, err := s.requireUser(ctx, userID); err != nil {
		return TrendReport{}, err
	}
	sessions, err := s.records.ActivitiesByUser(ctx, userID)
	if err != nil {
		return TrendReport{}, fmt.Errorf("loading activity history: %w", err)
	}
	return ActivityTrend(period, s.now(), sessions)
}

// GetUserLevel returns the user's progression, creating the starting state
// on first access.
func (s *Service) GetUserLevel(ctx context.Context, userID string) (Level, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return Level{}, err
	}
	level, err := s.levels.GetLevel(ctx, userID)
	if err != nil {
		return Level{}, err
	}
	if level == nil {
		fresh := NewLevel(userID)
		if err := s.levels.SaveLevel(ctx, fresh, 0); err != nil {
			return Level{}, err
		}
		return fresh, nil
	}
	return *level, nil
}

// GenerateDailyChallenges retires stale incomplete challenges and tops the
// user up to a fresh daily batch. Calling it again the same day returns the
// existing set unchanged once three or more challenges exist for today.
func (s *Service) GenerateDailyChallenges(ctx context.Context, userID string) ([]Challenge, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.LockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := s.now()
	if err := s.challenges.DeleteStaleBefore(ctx, userID, now.Add(-staleChallengeAge)); err != nil {
		return nil, fmt.Errorf("cleaning stale challenges: %w", err)
	}

	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	existing, err := s.challenges.CreatedSince(ctx, userID, startOfToday)
	if err != nil {
		return nil, err
	}
	if len(existing) >= minChallengesPerDay {
		return existing, nil
	}

	recentSteps, err := s.records.StepsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading steps history: %w", err)
	}

	batch := GenerateBatch(s.rng, userID, now, GenerationInputs{
		RecentSteps:         recentSteps,
		SleepObjectiveHours: user.SleepObjectiveHours,
	})
	if err := s.challenges.SaveBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("saving challenge batch: %w", err)
	}

	return append(existing, batch...), nil
}

// GetUserChallenges returns all challenges created within the last 24 hours,
// completed or not.
func (s *Service) GetUserChallenges(ctx context.Context, userID string) ([]Challenge, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.challenges.CreatedSince(ctx, userID, s.now().Add(-staleChallengeAge))
}

// ApplyChallengeProgress advances every active challenge of the given kind.
// A kind with no active challenges is a no-op. Completion awards the
// challenge's experience exactly once.
func (s *Service) ApplyChallengeProgress(ctx context.Context, userID string, kind ChallengeKind, amount int) error {
	if amount < 0 {
		return fmt.Errorf("progress amount must be non-negative, got %d", amount)
	}
	if _, err := s.requireUser(ctx, userID); err != nil {
		return err
	}

	unlock, err := s.locker.LockUser(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()

	active, err := s.challenges.ActiveByKind(ctx, userID, kind)
	if err != nil {
		return err
	}

	now := s.now()
	for i := range active {
		ch := active[i]
		if ch.Advance(amount, now) {
			if err := s.challenges.MarkCompleted(ctx, ch); err != nil {
				return fmt.Errorf("completing challenge %s: %w", ch.ID, err)
			}
			if err := s.awardExperience(ctx, userID, ch.ExpReward); err != nil {
				return err
			}
			continue
		}
		if err := s.challenges.UpdateProgress(ctx, ch); err != nil {
			return fmt.Errorf("updating challenge %s: %w", ch.ID, err)
		}
	}
	return nil
}

func (s *Service) awardExperience(ctx context.Context, userID string, exp int) error {
	level, err := s.levels.GetLevel(ctx, userID)
	if err != nil {
		return err
	}
	current := NewLevel(userID)
	if level != nil {
		current = *level
	}
	gained := current.AddExperience(exp)
	if err := s.levels.SaveLevel(ctx, current, gained); err != nil {
		return fmt.Errorf("saving level: %w", err)
	}
	return nil
}

// LogSteps stores a daily step record.
func (s *Service) LogSteps(ctx context.Context, userID string, date time.Time, stepCount, durationMin int) (*StepsRecord, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	record := StepsRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		Date:        date.UTC(),
		StepCount:   stepCount,
		DurationMin: durationMin,
	}
	if err := s.records.CreateSteps(ctx, record); err != nil {
		return nil, err
	}
	return &record, nil
}

// LogActivity stores a workout session, estimating calories from the MET
// table when the client did not measure them.
func (s *Service) LogActivity(ctx context.Context, userID, activityType string, date time.Time, durationMin, calories int) (*ActivitySession, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if calories <= 0 {
		calories = EstimateCalories(activityType, durationMin, user.WeightKg)
	}
	session := ActivitySession{
		ID:           uuid.NewString(),
		UserID:       userID,
		ActivityType: activityType,
		Date:         date.UTC(),
		DurationMin:  durationMin,
		Calories:     calories,
	}
	if err := s.records.CreateActivity(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// LogSleep stores a sleep record.
func (s *Service) LogSleep(ctx context.Context, userID string, date time.Time, durationMin, qualityPercent int) (*SleepRecord, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	record := SleepRecord{
		ID:             uuid.NewString(),
		UserID:         userID,
		Date:           date.UTC(),
		DurationMin:    durationMin,
		QualityPercent: qualityPercent,
	}
	if err := s.records.CreateSleep(ctx, record); err != nil {
		return nil, err
	}
	return &record, nil
}

// LogHydration stores a water intake record.
func (s *Service) LogHydration(ctx context.Context, userID string, date time.Time, amountML int) (*HydrationRecord, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	record := HydrationRecord{
		ID:       uuid.NewString(),
		UserID:   userID,
		Date:     date.UTC(),
		AmountML: amountML,
	}
	if err := s.records.CreateHydration(ctx, record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListActivities pages through a user's session history.
func (s *Service) ListActivities(ctx context.Context, userID string, cursor *Cursor, limit int) ([]ActivitySession, *Cursor, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, nil, err
	}
	return s.records.ListActivities(ctx, userID, cursor, limit)
}
