package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/runcoach/backend/internal/model"
)

type fakePlanStore struct {
	plans    map[string]model.Plan
	workouts map[string][]model.Workout
}

func newFakePlanStore() *fakePlanStore {
	return &fakePlanStore{
		plans:    make(map[string]model.Plan),
		workouts: make(map[string][]model.Workout),
	}
}

func (f *fakePlanStore) InsertPlan(ctx context.Context, plan model.Plan, workouts []model.Workout) error {
	f.plans[plan.ID] = plan
	f.workouts[plan.ID] = workouts
	return nil
}

func (f *fakePlanStore) GetPlans(ctx context.Context, userID string) ([]model.Plan, error) {
	var list []model.Plan
	for _, p := range f.plans {
		if p.UserID == userID {
			list = append(list, p)
		}
	}
	return list, nil
}

func (f *fakePlanStore) GetPlan(ctx context.Context, id, userID string) (*model.Plan, error) {
	if p, ok := f.plans[id]; ok && p.UserID == userID {
		return &p, nil
	}
	return nil, nil
}

func (f *fakePlanStore) ListWorkoutsByPlan(ctx context.Context, planID, userID string) ([]model.Workout, error) {
	return f.workouts[planID], nil
}

type fakeGenerator struct {
	response string
	err      error
	prompt   string
}

func (f *fakeGenerator) GeneratePlan(ctx context.Context, prompt string) (string, string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", "test-model", f.err
	}
	return f.response, "test-model", nil
}

type fakeHistory struct {
	summaries []string
	err       error
}

func (f *fakeHistory) SimilarSummaries(ctx context.Context, userID, text string, limit int) ([]string, error) {
	return f.summaries, f.err
}

func planResponse(dates ...string) string {
	var items []string
	for _, d := range dates {
		items = append(items, `{"date":"`+d+`","kind":"easy","title":"Easy run","distance_km":8,"duration_min":45,"notes":"conversational pace"}`)
	}
	return `{"summary":"Base building first.","workouts":[` + strings.Join(items, ",") + `]}`
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func validPlanRequest() model.PlanRequest {
	return model.PlanRequest{
		Goal:            "sub-4 marathon",
		TargetDate:      futureDate(90),
		WeeklyMileageKm: 40,
		RunsPerWeek:     4,
		Experience:      "intermediate",
	}
}

func TestCreatePlanStoresPlanAndWorkouts(t *testing.T) {
	store := newFakePlanStore()
	gen := &fakeGenerator{response: planResponse(futureDate(7), futureDate(9))}
	svc := NewPlanService(store, gen, nil)

	detail, err := svc.CreatePlan(context.Background(), "usr_1", validPlanRequest())
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if detail.Plan.Summary != "Base building first." || detail.Plan.Model != "test-model" {
		t.Fatalf("unexpected plan %+v", detail.Plan)
	}
	if len(detail.Workouts) != 2 {
		t.Fatalf("expected 2 workouts, got %d", len(detail.Workouts))
	}
	for _, w := range detail.Workouts {
		if w.Status != model.WorkoutStatusPlanned || w.Source != model.WorkoutSourcePlan {
			t.Fatalf("generated workout should be planned/plan, got %s/%s", w.Status, w.Source)
		}
		if w.PlanID == nil || *w.PlanID != detail.Plan.ID {
			t.Fatalf("workout not bound to plan")
		}
	}
	if len(store.plans) != 1 {
		t.Fatalf("plan not persisted")
	}
}

func TestCreatePlanValidation(t *testing.T) {
	svc := NewPlanService(newFakePlanStore(), &fakeGenerator{response: planResponse(futureDate(7))}, nil)
	ctx := context.Background()

	cases := []model.PlanRequest{
		{TargetDate: futureDate(30), RunsPerWeek: 3},                                        // no goal
		{Goal: "5k PR", TargetDate: "next month", RunsPerWeek: 3},                           // bad date
		{Goal: "5k PR", TargetDate: "2020-01-01", RunsPerWeek: 3},                           // past date
		{Goal: "5k PR", TargetDate: futureDate(30), RunsPerWeek: 0},                         // runs too low
		{Goal: "5k PR", TargetDate: futureDate(30), RunsPerWeek: 8},                         // runs too high
		{Goal: "5k PR", TargetDate: futureDate(30), RunsPerWeek: 3, WeeklyMileageKm: -5},    // negative mileage
	}
	for i, req := range cases {
		if _, err := svc.CreatePlan(ctx, "usr_1", req); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestCreatePlanWithoutCoach(t *testing.T) {
	svc := NewPlanService(newFakePlanStore(), nil, nil)
	_, err := svc.CreatePlan(context.Background(), "usr_1", validPlanRequest())
	if !errors.Is(err, ErrMisconfigured) {
		t.Fatalf("expected ErrMisconfigured, got %v", err)
	}
}

func TestCreatePlanUnparseableResponse(t *testing.T) {
	gen := &fakeGenerator{response: "sorry, here is your plan in prose"}
	svc := NewPlanService(newFakePlanStore(), gen, nil)
	if _, err := svc.CreatePlan(context.Background(), "usr_1", validPlanRequest()); err == nil {
		t.Fatalf("expected error for unparseable response")
	}
}

func TestCreatePlanIncludesHistoryInPrompt(t *testing.T) {
	gen := &fakeGenerator{response: planResponse(futureDate(7))}
	history := &fakeHistory{summaries: []string{"2026-08-20: 12.0 km long run"}}
	svc := NewPlanService(newFakePlanStore(), gen, history)

	if _, err := svc.CreatePlan(context.Background(), "usr_1", validPlanRequest()); err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if !strings.Contains(gen.prompt, "12.0 km long run") {
		t.Fatalf("prompt should cite training history")
	}
}

func TestCreatePlanHistoryFailureIsNonFatal(t *testing.T) {
	gen := &fakeGenerator{response: planResponse(futureDate(7))}
	history := &fakeHistory{err: errors.New("vector store down")}
	svc := NewPlanService(newFakePlanStore(), gen, history)

	if _, err := svc.CreatePlan(context.Background(), "usr_1", validPlanRequest()); err != nil {
		t.Fatalf("history failure must not fail the plan: %v", err)
	}
}

func TestGetPlanDetailNotFound(t *testing.T) {
	svc := NewPlanService(newFakePlanStore(), nil, nil)
	detail, err := svc.GetPlanDetail(context.Background(), "pln_missing", "usr_1")
	if err != nil || detail != nil {
		t.Fatalf("expected none for missing plan, got %v err=%v", detail, err)
	}
}
