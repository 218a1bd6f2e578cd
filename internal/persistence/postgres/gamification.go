package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SergiSalas/TFGAplicacioSalut-sub000/internal/domain"
	"github.com/SergiSalas/TFGAplicacioSalut-sub000/internal/events"
	"github.com/SergiSalas/TFGAplicacioSalut-sub000/internal/observability"
)

const challengeColumns = `challenge_id, user_id, kind, description, target_value, current_value, completed, exp_reward, created_at, completed_at`

// DeleteStaleBefore removes incomplete challenges created before the cutoff.
func (r *Repository) DeleteStaleBefore(ctx context.Context, userID string, cutoff time.Time) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM challenges WHERE user_id=$1 AND completed=false AND created_at < $2`,
		userID, cutoff)
	return err
}

// CreatedSince returns challenges created at or after the given instant.
func (r *Repository) CreatedSince(ctx context.Context, userID string, since time.Time) ([]domain.Challenge, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+challengeColumns+` FROM challenges
         WHERE user_id=$1 AND created_at >= $2 ORDER BY created_at, challenge_id`,
		userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChallenges(rows)
}

// ActiveByKind returns incomplete challenges of one kind.
func (r *Repository) ActiveByKind(ctx context.Context, userID string, kind domain.ChallengeKind) ([]domain.Challenge, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+challengeColumns+` FROM challenges
         WHERE user_id=$1 AND kind=$2 AND completed=false ORDER BY created_at, challenge_id`,
		userID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChallenges(rows)
}

func scanChallenges(rows pgx.Rows) ([]domain.Challenge, error) {
	var out []domain.Challenge
	for rows.Next() {
		var ch domain.Challenge
		var kind string
		if err := rows.Scan(&ch.ID, &ch.UserID, &kind, &ch.Description, &ch.Target, &ch.Current, &ch.Completed, &ch.ExpReward, &ch.CreatedAt, &ch.CompletedAt); err != nil {
			return nil, err
		}
		ch.Kind = domain.ChallengeKind(kind)
		out = append(out, ch)
	}
	return out, rows.Err()
}

// SaveBatch inserts a generated challenge set in a single transaction.
func (r *Repository) SaveBatch(ctx context.Context, batch []domain.Challenge) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const stmt = `INSERT INTO challenges (` + challengeColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`

	for _, ch := range batch {
		if _, err = tx.Exec(ctx, stmt,
			ch.ID, ch.UserID, string(ch.Kind), ch.Description, ch.Target, ch.Current,
			ch.Completed, ch.ExpReward, ch.CreatedAt, ch.CompletedAt,
		); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordChallengesGenerated(len(batch))
	return nil
}

// UpdateProgress stores an advanced but still incomplete challenge.
func (r *Repository) UpdateProgress(ctx context.Context, ch domain.Challenge) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE challenges SET current_value=$1 WHERE challenge_id=$2`,
		ch.Current, ch.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrChallengeNotFound
	}
	return nil
}

// MarkCompleted stores a completed challenge and queues the completion event
// in the same transaction.
func (r *Repository) MarkCompleted(ctx context.Context, ch domain.Challenge) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx,
		`UPDATE challenges SET current_value=$1, completed=true, completed_at=$2 WHERE challenge_id=$3`,
		ch.Current, ch.CompletedAt, ch.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = domain.ErrChallengeNotFound
		return err
	}

	completedAt := time.Now().UTC()
	if ch.CompletedAt != nil {
		completedAt = *ch.CompletedAt
	}
	if err = insertOutbox(ctx, tx, ch.UserID, "challenge", ch.ID, "challenge.completed", events.ChallengeCompleted{
		ChallengeID: ch.ID,
		UserID:      ch.UserID,
		Kind:        string(ch.Kind),
		Target:      ch.Target,
		ExpReward:   ch.ExpReward,
		CompletedAt: completedAt,
	}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordChallengeCompleted(string(ch.Kind))
	return nil
}

// GetLevel fetches the user's progression row. Returns nil when absent.
func (r *Repository) GetLevel(ctx context.Context, userID string) (*domain.Level, error) {
	var level domain.Level
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, current_level, current_exp, exp_to_next FROM levels WHERE user_id=$1`,
		userID).Scan(&level.UserID, &level.Level, &level.Exp, &level.ExpToNext)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &level, nil
}

// SaveLevel upserts the progression row, queuing a level.up event when the
// write carries one or more level gains.
func (r *Repository) SaveLevel(ctx context.Context, level domain.Level, levelsGained int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx,
		`INSERT INTO levels (user_id, current_level, current_exp, exp_to_next)
         VALUES ($1,$2,$3,$4)
         ON CONFLICT (user_id) DO UPDATE
         SET current_level=EXCLUDED.current_level, current_exp=EXCLUDED.current_exp, exp_to_next=EXCLUDED.exp_to_next`,
		level.UserID, level.Level, level.Exp, level.ExpToNext,
	); err != nil {
		return err
	}

	if levelsGained > 0 {
		// Dedupe on the level reached so repeated gains each get an event.
		aggregateID := fmt.Sprintf("%s:level-%d", level.UserID, level.Level)
		if err = insertOutbox(ctx, tx, level.UserID, "level", aggregateID, "level.up", events.LevelUp{
			UserID:       level.UserID,
			Level:        level.Level,
			LevelsGained: levelsGained,
			OccurredAt:   time.Now().UTC(),
		}); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordLevelUps(levelsGained)
	return nil
}

// LockUser takes a session-scoped advisory lock serializing the generator's
// and progress tracker's read-check-write spans for one user. The returned
// function releases the lock and its connection.
func (r *Repository) LockUser(ctx context.Context, userID string) (func(), error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtext($1))`, userID); err != nil {
		conn.Release()
		return nil, err
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		// Unlock on a background context so cancellation cannot leak the lock.
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock(hashtext($1))`, userID)
		conn.Release()
	}, nil
}
