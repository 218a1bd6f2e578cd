// Package postgres provides pgx-backed persistence for users, health records,
// challenges, levels and the transactional outbox.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SergiSalas/TFGAplicacioSalut-sub000/internal/domain"
	"github.com/SergiSalas/TFGAplicacioSalut-sub000/internal/events"
	"github.com/SergiSalas/TFGAplicacioSalut-sub000/internal/observability"
)

// Repository implements the domain repository interfaces on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetUser fetches a user profile by ID. Returns nil when absent.
func (r *Repository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	const query = `SELECT user_id, email, display_name, weight_kg, sleep_objective_hours, created_at
        FROM users WHERE user_id=$1`
	return r.scanUser(r.pool.QueryRow(ctx, query, userID))
}

// GetUserByEmail fetches a user profile by email. Returns nil when absent.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT user_id, email, display_name, weight_kg, sleep_objective_hours, created_at
        FROM users WHERE email=$1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *Repository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.WeightKg, &user.SleepObjectiveHours, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// CreateSteps persists a daily step record and queues the record.logged event.
func (r *Repository) CreateSteps(ctx context.Context, record domain.StepsRecord) error {
	return r.createRecord(ctx,
		`INSERT INTO steps_records (record_id, user_id, record_date, step_count, duration_min)
         VALUES ($1,$2,$3,$4,$5)`,
		[]interface{}{record.ID, record.UserID, record.Date, record.StepCount, record.DurationMin},
		events.RecordLogged{
			RecordID:   record.ID,
			UserID:     record.UserID,
			RecordType: events.RecordTypeSteps,
			Date:       record.Date,
			Value:      record.StepCount,
		})
}

// CreateActivity persists a workout session and queues the record.logged event.
func (r *Repository) CreateActivity(ctx context.Context, session domain.ActivitySession) error {
	return r.createRecord(ctx,
		`INSERT INTO activity_sessions (session_id, user_id, activity_type, session_date, duration_min, calories)
         VALUES ($1,$2,$3,$4,$5,$6)`,
		[]interface{}{session.ID, session.UserID, session.ActivityType, session.Date, session.DurationMin, session.Calories},
		events.RecordLogged{
			RecordID:   session.ID,
			UserID:     session.UserID,
			RecordType: events.RecordTypeActivity,
			Date:       session.Date,
			Value:      session.DurationMin,
		})
}

// CreateSleep persists a sleep record and queues the record.logged event.
func (r *Repository) CreateSleep(ctx context.Context, record domain.SleepRecord) error {
	return r.createRecord(ctx,
		`INSERT INTO sleep_records (record_id, user_id, record_date, duration_min, quality_percent)
         VALUES ($1,$2,$3,$4,$5)`,
		[]interface{}{record.ID, record.UserID, record.Date, record.DurationMin, record.QualityPercent},
		events.RecordLogged{
			RecordID:   record.ID,
			UserID:     record.UserID,
			RecordType: events.RecordTypeSleep,
			Date:       record.Date,
			Value:      record.DurationMin,
			Extra:      record.QualityPercent,
		})
}

// CreateHydration persists a water intake record and queues the record.logged event.
func (r *Repository) CreateHydration(ctx context.Context, record domain.HydrationRecord) error {
	return r.createRecord(ctx,
		`INSERT INTO hydration_records (record_id, user_id, record_date, amount_ml)
         VALUES ($1,$2,$3,$4)`,
		[]interface{}{record.ID, record.UserID, record.Date, record.AmountML},
		events.RecordLogged{
			RecordID:   record.ID,
			UserID:     record.UserID,
			RecordType: events.RecordTypeHydration,
			Date:       record.Date,
			Value:      record.AmountML,
		})
}

func (r *Repository) createRecord(ctx context.Context, insert string, args []interface{}, event events.RecordLogged) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, insert, args...); err != nil {
		return err
	}

	if err = insertOutbox(ctx, tx, event.UserID, "record", event.RecordID, "record.logged", event); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordPersisted(time.Now().UTC())
	return nil
}

// StepsByUser returns the full step history ordered by date.
func (r *Repository) StepsByUser(ctx context.Context, userID string) ([]domain.StepsRecord, error) {
	const query = `SELECT record_id, user_id, record_date, step_count, duration_min
        FROM steps_records WHERE user_id=$1 ORDER BY record_date`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.StepsRecord
	for rows.Next() {
		var rec domain.StepsRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Date, &rec.StepCount, &rec.DurationMin); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ActivitiesByUser returns the full session history ordered by date.
func (r *Repository) ActivitiesByUser(ctx context.Context, userID string) ([]domain.ActivitySession, error) {
	const query = `SELECT session_id, user_id, activity_type, session_date, duration_min, calories
        FROM activity_sessions WHERE user_id=$1 ORDER BY session_date`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.ActivitySession
	for rows.Next() {
		var s domain.ActivitySession
		if err := rows.Scan(&s.ID, &s.UserID, &s.ActivityType, &s.Date, &s.DurationMin, &s.Calories); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ListActivities pages sessions newest-first using a (date, id) keyset cursor.
func (r *Repository) ListActivities(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.ActivitySession, *domain.Cursor, error) {
	args := []interface{}{userID, limit}
	query := `SELECT session_id, user_id, activity_type, session_date, duration_min, calories
        FROM activity_sessions WHERE user_id=$1`

	if cursor != nil {
		query += ` AND (session_date, session_id) < ($3, $4)`
		args = append(args, cursor.Date, cursor.ID)
	}

	query += ` ORDER BY session_date DESC, session_id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]domain.ActivitySession, 0, limit)
	for rows.Next() {
		var s domain.ActivitySession
		if err := rows.Scan(&s.ID, &s.UserID, &s.ActivityType, &s.Date, &s.DurationMin, &s.Calories); err != nil {
			return nil, nil, err
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var next *domain.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		next = &domain.Cursor{Date: last.Date, ID: last.ID}
	}
	return results, next, nil
}

func insertOutbox(ctx context.Context, tx pgx.Tx, userID, aggregateType, aggregateID, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta, ok := eventCatalog[eventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	dedupeKey := fmt.Sprintf("%s:%s", aggregateID, eventType)

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err = tx.Exec(ctx, stmt,
		aggregateType,
		aggregateID,
		eventType,
		meta.Topic,
		meta.SchemaSubject,
		userID,
		body,
		dedupeKey,
	)
	return err
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic         string
	SchemaSubject string
}

var eventCatalog = map[string]EventMetadata{
	"record.logged": {
		Topic:         "health_record_events",
		SchemaSubject: "health_record_events-value",
	},
	"challenge.completed": {
		Topic:         "gamification_events",
		SchemaSubject: "gamification_events-value",
	},
	"level.up": {
		Topic:         "gamification_events",
		SchemaSubject: "gamification_events-value",
	},
}
