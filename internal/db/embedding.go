package db

import (
	"context"

	"github.com/pgvector/pgvector-go"
)

func (db *Postgres) EnsureEmbeddingSchema(ctx context.Context) error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`
		CREATE TABLE IF NOT EXISTS workout_embeddings (
			id BIGSERIAL PRIMARY KEY,
			workout_id TEXT NOT NULL REFERENCES workouts(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			summary TEXT NOT NULL,
			embedding vector(768) NOT NULL,
			model TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS workout_embeddings_user_idx ON workout_embeddings(user_id)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func (db *Postgres) InsertWorkoutEmbedding(ctx context.Context, workoutID, userID, summary, model string, vector []float32) (int64, error) {
	var id int64
	query := `
		INSERT INTO workout_embeddings (workout_id, user_id, summary, embedding, model)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := db.Pool.QueryRow(ctx, query, workoutID, userID, summary, pgvector.NewVector(vector), model).Scan(&id)
	return id, err
}

// SimilarWorkoutSummaries returns past workout summaries ordered by cosine
// distance to the query vector.
func (db *Postgres) SimilarWorkoutSummaries(ctx context.Context, userID string, vector []float32, limit int) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT summary
		FROM workout_embeddings
		WHERE user_id = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`, userID, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
