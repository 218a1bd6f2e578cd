//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/SergiSalas/TFGAplicacioSalut-sub000/internal/domain"
)

func TestStepsRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	repo := NewRepository(pool)
	userID := seedUser(t, ctx, pool)

	record := domain.StepsRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		Date:        time.Date(2025, time.October, 13, 0, 0, 0, 0, time.UTC),
		StepCount:   8200,
		DurationMin: 75,
	}
	require.NoError(t, repo.CreateSteps(ctx, record))

	records, err := repo.StepsByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, record.StepCount, records[0].StepCount)

	var topic, eventType string
	err = pool.QueryRow(ctx,
		`SELECT topic, event_type FROM outbox WHERE aggregate_id = $1`, record.ID,
	).Scan(&topic, &eventType)
	require.NoError(t, err)
	require.Equal(t, "health_record_events", topic)
	require.Equal(t, "record.logged", eventType)
}

func TestChallengeLifecycle(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	repo := NewRepository(pool)
	userID := seedUser(t, ctx, pool)
	now := time.Now().UTC().Truncate(time.Millisecond)

	stale := domain.Challenge{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      domain.KindHydration,
		Target:    2500,
		ExpReward: 15,
		CreatedAt: now.Add(-48 * time.Hour),
	}
	fresh := domain.Challenge{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      domain.KindSteps,
		Target:    9000,
		ExpReward: 20,
		CreatedAt: now,
	}
	require.NoError(t, repo.SaveBatch(ctx, []domain.Challenge{stale, fresh}))

	require.NoError(t, repo.DeleteStaleBefore(ctx, userID, now.Add(-24*time.Hour)))

	remaining, err := repo.CreatedSince(ctx, userID, now.Add(-72*time.Hour))
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, fresh.ID, remaining[0].ID)

	active, err := repo.ActiveByKind(ctx, userID, domain.KindSteps)
	require.NoError(t, err)
	require.Len(t, active, 1)

	ch := active[0]
	require.False(t, ch.Advance(4000, now))
	require.NoError(t, repo.UpdateProgress(ctx, ch))

	require.True(t, ch.Advance(6000, now))
	require.NoError(t, repo.MarkCompleted(ctx, ch))

	completed, err := repo.CreatedSince(ctx, userID, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, completed, 1)
	require.True(t, completed[0].Completed)
	require.NotNil(t, completed[0].CompletedAt)

	active, err = repo.ActiveByKind(ctx, userID, domain.KindSteps)
	require.NoError(t, err)
	require.Empty(t, active)

	var eventType string
	err = pool.QueryRow(ctx,
		`SELECT event_type FROM outbox WHERE aggregate_id = $1`, ch.ID,
	).Scan(&eventType)
	require.NoError(t, err)
	require.Equal(t, "challenge.completed", eventType)
}

func TestMarkCompletedUnknownChallenge(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	repo := NewRepository(pool)
	err := repo.MarkCompleted(ctx, domain.Challenge{ID: uuid.NewString(), Kind: domain.KindSteps})
	require.ErrorIs(t, err, domain.ErrChallengeNotFound)
}

func TestSaveLevelEmitsEventOnlyOnGain(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	repo := NewRepository(pool)
	userID := seedUser(t, ctx, pool)

	level := domain.NewLevel(userID)
	require.NoError(t, repo.SaveLevel(ctx, level, 0))

	var eventCount int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outbox WHERE event_type = 'level.up' AND partition_key = $1`, userID,
	).Scan(&eventCount))
	require.Zero(t, eventCount)

	level.AddExperience(130)
	require.NoError(t, repo.SaveLevel(ctx, level, 1))

	stored, err := repo.GetLevel(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 2, stored.Level)

	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outbox WHERE event_type = 'level.up' AND partition_key = $1`, userID,
	).Scan(&eventCount))
	require.Equal(t, 1, eventCount)
}

func TestLockUserIsReentrantAfterUnlock(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	repo := NewRepository(pool)
	userID := seedUser(t, ctx, pool)

	unlock, err := repo.LockUser(ctx, userID)
	require.NoError(t, err)

	blocked := make(chan struct{})
	go func() {
		second, lockErr := repo.LockUser(ctx, userID)
		require.NoError(t, lockErr)
		second()
		close(blocked)
	}()

	select {
	case <-blocked:
		t.Fatal("second lock acquired while first still held")
	case <-time.After(200 * time.Millisecond):
	}

	unlock()

	select {
	case <-blocked:
	case <-time.After(5 * time.Second):
		t.Fatal("second lock never acquired after unlock")
	}
}

func TestListActivitiesKeysetPagination(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	repo := NewRepository(pool)
	userID := seedUser(t, ctx, pool)
	base := time.Date(2025, time.October, 15, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.CreateActivity(ctx, domain.ActivitySession{
			ID:           uuid.NewString(),
			UserID:       userID,
			ActivityType: "running",
			Date:         base.Add(-time.Duration(i) * time.Hour),
			DurationMin:  30,
			Calories:     250,
		}))
	}

	page1, cursor, err := repo.ListActivities(ctx, userID, nil, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, cursor)
	require.True(t, page1[0].Date.After(page1[1].Date))

	page2, _, err := repo.ListActivities(ctx, userID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	require.True(t, page1[1].Date.After(page2[0].Date))
}

func seedUser(t *testing.T, ctx context.Context, pool *pgxpool.Pool) string {
	t.Helper()

	userID := uuid.NewString()
	_, err := pool.Exec(ctx,
		`INSERT INTO users (user_id, email, display_name, weight_kg, sleep_objective_hours)
         VALUES ($1, $2, 'Integration Tester', 70, 8)`,
		userID, userID+"@example.com")
	require.NoError(t, err)
	return userID
}

func setupPostgres(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("healthtrack"),
		postgrescontainer.WithUsername("platform"),
		postgrescontainer.WithPassword("platform"),
	)
	require.NoError(t, err)

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))

	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pg.Terminate(ctx)
	}
	return pool, cleanup
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	t.Helper()

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	migrationsDir := resolvePath(t, "../../../db/postgres/migrations")
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files, "expected at least one migration .up.sql file")

	sort.Strings(files)

	for _, file := range files {
		contents, readErr := os.ReadFile(file)
		require.NoErrorf(t, readErr, "read migration %s", file)

		if _, execErr := pool.Exec(ctx, string(contents)); execErr != nil {
			require.NoErrorf(t, execErr, "execute migration %s", file)
		}
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
