package db

import (
	"context"

	"github.com/runcoach/backend/internal/model"
)

func (db *Postgres) EnsurePlanSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS plans (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			goal TEXT NOT NULL,
			target_date DATE NOT NULL,
			summary TEXT NOT NULL,
			model TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS plans_user_id_idx ON plans(user_id, created_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// InsertPlan stores the plan and its generated workouts in one transaction so
// a half-written plan never shows up on the calendar.
func (db *Postgres) InsertPlan(ctx context.Context, plan model.Plan, workouts []model.Workout) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err = tx.Exec(ctx, `
		INSERT INTO plans (id, user_id, goal, target_date, summary, model, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, plan.ID, plan.UserID, plan.Goal, plan.TargetDate, plan.Summary, plan.Model); err != nil {
		return err
	}

	for _, w := range workouts {
		if _, err = tx.Exec(ctx, `
			INSERT INTO workouts (id, user_id, plan_id, scheduled_on, kind, title, distance_km, duration_min, notes, status, source, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		`, w.ID, w.UserID, w.PlanID, w.ScheduledOn, w.Kind, w.Title, w.DistanceKm, w.DurationMin, w.Notes, w.Status, w.Source); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (db *Postgres) GetPlans(ctx context.Context, userID string) ([]model.Plan, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, goal, target_date, summary, model, created_at
		FROM plans
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Plan
	for rows.Next() {
		var p model.Plan
		if err := rows.Scan(&p.ID, &p.UserID, &p.Goal, &p.TargetDate, &p.Summary, &p.Model, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	if list == nil {
		list = []model.Plan{}
	}
	return list, rows.Err()
}

func (db *Postgres) GetPlan(ctx context.Context, id, userID string) (*model.Plan, error) {
	var p model.Plan
	err := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, goal, target_date, summary, model, created_at
		FROM plans
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&p.ID, &p.UserID, &p.Goal, &p.TargetDate, &p.Summary, &p.Model, &p.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
