package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/runcoach/backend/internal/model"
)

type WorkoutStore interface {
	InsertWorkout(ctx context.Context, w model.Workout) error
	ListWorkouts(ctx context.Context, userID string, from, to time.Time) ([]model.Workout, error)
	GetWorkout(ctx context.Context, id, userID string) (*model.Workout, error)
	UpdateWorkout(ctx context.Context, id, userID string, req model.UpdateWorkoutRequest) (*model.Workout, error)
}

// WorkoutIndexer makes a completed workout retrievable for plan prompts.
type WorkoutIndexer interface {
	IndexWorkout(ctx context.Context, w model.Workout) error
}

type WorkoutService struct {
	store   WorkoutStore
	indexer WorkoutIndexer
}

func NewWorkoutService(store WorkoutStore, indexer WorkoutIndexer) *WorkoutService {
	return &WorkoutService{store: store, indexer: indexer}
}

func (s *WorkoutService) Create(ctx context.Context, userID string, req model.CreateWorkoutRequest) (*model.Workout, error) {
	scheduledOn, err := time.Parse("2006-01-02", req.ScheduledOn)
	if err != nil {
		return nil, fmt.Errorf("%w: scheduled_on must be YYYY-MM-DD", ErrInvalidInput)
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if req.DistanceKm < 0 {
		return nil, fmt.Errorf("%w: distance_km must not be negative", ErrInvalidInput)
	}

	kind := strings.TrimSpace(req.Kind)
	if kind == "" {
		kind = "easy"
	}

	w := model.Workout{
		ID:          "wrk_" + uuid.NewString(),
		UserID:      userID,
		ScheduledOn: scheduledOn,
		Kind:        kind,
		Title:       req.Title,
		DistanceKm:  req.DistanceKm,
		DurationMin: req.DurationMin,
		Notes:       strings.TrimSpace(req.Notes),
		Status:      model.WorkoutStatusPlanned,
		Source:      model.WorkoutSourceManual,
		CreatedAt:   time.Now(),
	}
	if err := s.store.InsertWorkout(ctx, w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Get returns a single workout, or (nil, nil) when it does not exist or is
// not owned by the user.
func (s *WorkoutService) Get(ctx context.Context, userID, id string) (*model.Workout, error) {
	return s.store.GetWorkout(ctx, id, userID)
}

// List returns the user's workouts for the calendar range. An absent range
// defaults to the current month.
func (s *WorkoutService) List(ctx context.Context, userID, fromStr, toStr string) ([]model.Workout, error) {
	var from, to time.Time
	if fromStr == "" && toStr == "" {
		now := time.Now()
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, -1)
	} else {
		var err error
		from, err = time.Parse("2006-01-02", fromStr)
		if err != nil {
			return nil, fmt.Errorf("%w: from must be YYYY-MM-DD", ErrInvalidInput)
		}
		to, err = time.Parse("2006-01-02", toStr)
		if err != nil {
			return nil, fmt.Errorf("%w: to must be YYYY-MM-DD", ErrInvalidInput)
		}
		if to.Before(from) {
			return nil, fmt.Errorf("%w: to is before from", ErrInvalidInput)
		}
	}

	return s.store.ListWorkouts(ctx, userID, from, to)
}

// Update patches the workout and returns (nil, nil) when it does not exist or
// is not owned by the user. A transition to completed feeds the workout into
// the history index, best-effort.
func (s *WorkoutService) Update(ctx context.Context, userID, id string, req model.UpdateWorkoutRequest) (*model.Workout, error) {
	if req.Status != nil {
		switch *req.Status {
		case model.WorkoutStatusPlanned, model.WorkoutStatusCompleted, model.WorkoutStatusSkipped:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
	}
	if req.DistanceKm != nil && *req.DistanceKm < 0 {
		return nil, fmt.Errorf("%w: distance_km must not be negative", ErrInvalidInput)
	}

	w, err := s.store.UpdateWorkout(ctx, id, userID, req)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, nil
	}

	if w.Status == model.WorkoutStatusCompleted && s.indexer != nil {
		if err := s.indexer.IndexWorkout(ctx, *w); err != nil {
			log.Printf("workout: indexing %s failed: %v", w.ID, err)
		}
	}

	return w, nil
}

// RecordCompleted stores an already-finished workout, e.g. one parsed from a
// Telegram screenshot.
func (s *WorkoutService) RecordCompleted(ctx context.Context, userID, source string, parsed model.ParsedWorkout) (*model.Workout, error) {
	scheduledOn := time.Now()
	if parsed.Date != "" {
		d, err := time.Parse("2006-01-02", parsed.Date)
		if err == nil {
			scheduledOn = d
		}
	}

	kind := strings.TrimSpace(parsed.Kind)
	if kind == "" {
		return nil, fmt.Errorf("%w: workout kind is required", ErrInvalidInput)
	}

	now := time.Now()
	w := model.Workout{
		ID:          "wrk_" + uuid.NewString(),
		UserID:      userID,
		ScheduledOn: scheduledOn,
		Kind:        kind,
		Title:       fmt.Sprintf("%.1f km %s run", parsed.DistanceKm, kind),
		DistanceKm:  parsed.DistanceKm,
		Notes:       strings.TrimSpace(parsed.Notes),
		Status:      model.WorkoutStatusCompleted,
		Source:      source,
		CompletedAt: &now,
		CreatedAt:   now,
	}
	if parsed.DurationMin > 0 {
		d := parsed.DurationMin
		w.DurationMin = &d
	}

	if err := s.store.InsertWorkout(ctx, w); err != nil {
		return nil, err
	}

	if s.indexer != nil {
		if err := s.indexer.IndexWorkout(ctx, w); err != nil {
			log.Printf("workout: indexing %s failed: %v", w.ID, err)
		}
	}

	return &w, nil
}
