package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/runcoach/backend/internal/model"
	"github.com/runcoach/backend/internal/template"
)

const similarWorkoutLimit = 5

type PlanStore interface {
	InsertPlan(ctx context.Context, plan model.Plan, workouts []model.Workout) error
	GetPlans(ctx context.Context, userID string) ([]model.Plan, error)
	GetPlan(ctx context.Context, id, userID string) (*model.Plan, error)
	ListWorkoutsByPlan(ctx context.Context, planID, userID string) ([]model.Workout, error)
}

type PlanGenerator interface {
	GeneratePlan(ctx context.Context, prompt string) (string, string, error)
}

// HistoryProvider supplies past workout summaries to ground the prompt in.
type HistoryProvider interface {
	SimilarSummaries(ctx context.Context, userID, text string, limit int) ([]string, error)
}

type PlanService struct {
	store   PlanStore
	coach   PlanGenerator
	history HistoryProvider
}

func NewPlanService(store PlanStore, coach PlanGenerator, history HistoryProvider) *PlanService {
	return &PlanService{store: store, coach: coach, history: history}
}

// CreatePlan renders the coaching prompt for the athlete profile, asks the
// model for a plan and persists it together with its scheduled workouts.
func (s *PlanService) CreatePlan(ctx context.Context, userID string, req model.PlanRequest) (*model.PlanDetailResponse, error) {
	if s.coach == nil {
		return nil, fmt.Errorf("%w: AI_API_KEY is not set", ErrMisconfigured)
	}

	req.Goal = strings.TrimSpace(req.Goal)
	if req.Goal == "" {
		return nil, fmt.Errorf("%w: goal is required", ErrInvalidInput)
	}
	targetDate, err := time.Parse("2006-01-02", req.TargetDate)
	if err != nil {
		return nil, fmt.Errorf("%w: target_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if !targetDate.After(time.Now()) {
		return nil, fmt.Errorf("%w: target_date must be in the future", ErrInvalidInput)
	}
	if req.RunsPerWeek < 1 || req.RunsPerWeek > 7 {
		return nil, fmt.Errorf("%w: runs_per_week must be 1-7", ErrInvalidInput)
	}
	if req.WeeklyMileageKm < 0 {
		return nil, fmt.Errorf("%w: weekly_mileage_km must not be negative", ErrInvalidInput)
	}

	// History lookup is best-effort context, never a reason to fail the plan.
	var history []string
	if s.history != nil {
		history, err = s.history.SimilarSummaries(ctx, userID, req.Goal, similarWorkoutLimit)
		if err != nil {
			log.Printf("plan: history lookup failed: %v", err)
			history = nil
		}
	}

	prompt := template.RenderPlanPrompt(template.ProfileData{
		Goal:            req.Goal,
		TargetDate:      targetDate,
		WeeklyMileageKm: req.WeeklyMileageKm,
		RunsPerWeek:     req.RunsPerWeek,
		Experience:      strings.TrimSpace(req.Experience),
		Notes:           strings.TrimSpace(req.Notes),
		Today:           time.Now(),
		History:         history,
	})

	raw, modelName, err := s.coach.GeneratePlan(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}

	var generated model.GeneratedPlan
	if err := json.Unmarshal([]byte(raw), &generated); err != nil {
		return nil, fmt.Errorf("generate plan: unparseable model response: %w", err)
	}
	if len(generated.Workouts) == 0 {
		return nil, fmt.Errorf("generate plan: model returned no workouts")
	}

	plan := model.Plan{
		ID:         "pln_" + uuid.NewString(),
		UserID:     userID,
		Goal:       req.Goal,
		TargetDate: targetDate,
		Summary:    generated.Summary,
		Model:      modelName,
		CreatedAt:  time.Now(),
	}

	workouts := make([]model.Workout, 0, len(generated.Workouts))
	for _, g := range generated.Workouts {
		scheduledOn, err := time.Parse("2006-01-02", g.Date)
		if err != nil {
			return nil, fmt.Errorf("generate plan: bad workout date %q", g.Date)
		}
		planID := plan.ID
		w := model.Workout{
			ID:          "wrk_" + uuid.NewString(),
			UserID:      userID,
			PlanID:      &planID,
			ScheduledOn: scheduledOn,
			Kind:        g.Kind,
			Title:       g.Title,
			DistanceKm:  g.DistanceKm,
			Notes:       g.Notes,
			Status:      model.WorkoutStatusPlanned,
			Source:      model.WorkoutSourcePlan,
		}
		if g.DurationMin > 0 {
			d := g.DurationMin
			w.DurationMin = &d
		}
		workouts = append(workouts, w)
	}

	if err := s.store.InsertPlan(ctx, plan, workouts); err != nil {
		return nil, err
	}

	return &model.PlanDetailResponse{Plan: plan, Workouts: workouts}, nil
}

func (s *PlanService) GetPlans(ctx context.Context, userID string) ([]model.Plan, error) {
	return s.store.GetPlans(ctx, userID)
}

// GetPlanDetail returns (nil, nil) when the plan does not exist or belongs to
// another user.
func (s *PlanService) GetPlanDetail(ctx context.Context, id, userID string) (*model.PlanDetailResponse, error) {
	plan, err := s.store.GetPlan(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, nil
	}

	workouts, err := s.store.ListWorkoutsByPlan(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	return &model.PlanDetailResponse{Plan: *plan, Workouts: workouts}, nil
}
