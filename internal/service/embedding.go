package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/runcoach/backend/internal/model"
)

type EmbeddingStore interface {
	InsertWorkoutEmbedding(ctx context.Context, workoutID, userID, summary, model string, vector []float32) (int64, error)
	SimilarWorkoutSummaries(ctx context.Context, userID string, vector []float32, limit int) ([]string, error)
}

type EmbeddingClient interface {
	EmbedText(ctx context.Context, text string) ([]float32, string, error)
}

type EmbeddingService struct {
	store  EmbeddingStore
	client EmbeddingClient
}

func NewEmbeddingService(store EmbeddingStore, client EmbeddingClient) *EmbeddingService {
	return &EmbeddingService{store: store, client: client}
}

// IndexWorkout embeds a one-line summary of a completed workout so later plan
// prompts can cite it.
func (s *EmbeddingService) IndexWorkout(ctx context.Context, w model.Workout) error {
	summary := workoutSummary(w)
	vector, modelName, err := s.client.EmbedText(ctx, summary)
	if err != nil {
		return err
	}
	_, err = s.store.InsertWorkoutEmbedding(ctx, w.ID, w.UserID, summary, modelName, vector)
	return err
}

func (s *EmbeddingService) SimilarSummaries(ctx context.Context, userID, text string, limit int) ([]string, error) {
	vector, _, err := s.client.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.store.SimilarWorkoutSummaries(ctx, userID, vector, limit)
}

func workoutSummary(w model.Workout) string {
	parts := []string{
		fmt.Sprintf("%s: %.1f km %s run", w.ScheduledOn.Format("2006-01-02"), w.DistanceKm, w.Kind),
	}
	if w.DurationMin != nil {
		parts = append(parts, fmt.Sprintf("%d min", *w.DurationMin))
	}
	if w.Notes != "" {
		parts = append(parts, w.Notes)
	}
	return strings.Join(parts, ", ")
}
