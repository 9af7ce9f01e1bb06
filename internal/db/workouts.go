package db

import (
	"context"
	"time"

	"github.com/runcoach/backend/internal/model"
)

func (db *Postgres) EnsureWorkoutSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS workouts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			plan_id TEXT REFERENCES plans(id) ON DELETE SET NULL,
			scheduled_on DATE NOT NULL,
			kind TEXT NOT NULL,
			title TEXT NOT NULL,
			distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
			duration_min INTEGER,
			notes TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL CHECK (status IN ('planned', 'completed', 'skipped')),
			source TEXT NOT NULL CHECK (source IN ('plan', 'telegram', 'manual')),
			completed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS workouts_user_date_idx ON workouts(user_id, scheduled_on)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func (db *Postgres) InsertWorkout(ctx context.Context, w model.Workout) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO workouts (id, user_id, plan_id, scheduled_on, kind, title, distance_km, duration_min, notes, status, source, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
	`, w.ID, w.UserID, w.PlanID, w.ScheduledOn, w.Kind, w.Title, w.DistanceKm, w.DurationMin, w.Notes, w.Status, w.Source, w.CompletedAt)
	return err
}

func (db *Postgres) ListWorkouts(ctx context.Context, userID string, from, to time.Time) ([]model.Workout, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, plan_id, scheduled_on, kind, title, distance_km, duration_min, notes, status, source, completed_at, created_at
		FROM workouts
		WHERE user_id = $1 AND scheduled_on BETWEEN $2 AND $3
		ORDER BY scheduled_on ASC, created_at ASC
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Workout
	for rows.Next() {
		var w model.Workout
		if err := rows.Scan(&w.ID, &w.UserID, &w.PlanID, &w.ScheduledOn, &w.Kind, &w.Title, &w.DistanceKm, &w.DurationMin, &w.Notes, &w.Status, &w.Source, &w.CompletedAt, &w.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, w)
	}

	if list == nil {
		list = []model.Workout{}
	}
	return list, rows.Err()
}

func (db *Postgres) ListWorkoutsByPlan(ctx context.Context, planID, userID string) ([]model.Workout, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, plan_id, scheduled_on, kind, title, distance_km, duration_min, notes, status, source, completed_at, created_at
		FROM workouts
		WHERE plan_id = $1 AND user_id = $2
		ORDER BY scheduled_on ASC
	`, planID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Workout
	for rows.Next() {
		var w model.Workout
		if err := rows.Scan(&w.ID, &w.UserID, &w.PlanID, &w.ScheduledOn, &w.Kind, &w.Title, &w.DistanceKm, &w.DurationMin, &w.Notes, &w.Status, &w.Source, &w.CompletedAt, &w.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, w)
	}

	if list == nil {
		list = []model.Workout{}
	}
	return list, rows.Err()
}

func (db *Postgres) GetWorkout(ctx context.Context, id, userID string) (*model.Workout, error) {
	var w model.Workout
	err := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, plan_id, scheduled_on, kind, title, distance_km, duration_min, notes, status, source, completed_at, created_at
		FROM workouts
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&w.ID, &w.UserID, &w.PlanID, &w.ScheduledOn, &w.Kind, &w.Title, &w.DistanceKm, &w.DurationMin, &w.Notes, &w.Status, &w.Source, &w.CompletedAt, &w.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

// UpdateWorkout applies the non-nil fields of req. Status moves to completed
// stamp completed_at; any other status clears it.
func (db *Postgres) UpdateWorkout(ctx context.Context, id, userID string, req model.UpdateWorkoutRequest) (*model.Workout, error) {
	var w model.Workout
	err := db.Pool.QueryRow(ctx, `
		UPDATE workouts
		SET status = COALESCE($3, status),
			distance_km = COALESCE($4, distance_km),
			duration_min = COALESCE($5, duration_min),
			notes = COALESCE($6, notes),
			completed_at = CASE
				WHEN COALESCE($3, status) = 'completed' THEN COALESCE(completed_at, NOW())
				ELSE NULL
			END
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, plan_id, scheduled_on, kind, title, distance_km, duration_min, notes, status, source, completed_at, created_at
	`, id, userID, req.Status, req.DistanceKm, req.DurationMin, req.Notes).Scan(
		&w.ID, &w.UserID, &w.PlanID, &w.ScheduledOn, &w.Kind, &w.Title, &w.DistanceKm, &w.DurationMin, &w.Notes, &w.Status, &w.Source, &w.CompletedAt, &w.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}
