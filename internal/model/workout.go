package model

import "time"

const (
	WorkoutStatusPlanned   = "planned"
	WorkoutStatusCompleted = "completed"
	WorkoutStatusSkipped   = "skipped"

	WorkoutSourcePlan     = "plan"
	WorkoutSourceTelegram = "telegram"
	WorkoutSourceManual   = "manual"
)

type Workout struct {
	ID          string     `json:"id"`
	UserID      string     `json:"-"`
	PlanID      *string    `json:"planId,omitempty"`
	ScheduledOn time.Time  `json:"scheduledOn"`
	Kind        string     `json:"kind"`
	Title       string     `json:"title"`
	DistanceKm  float64    `json:"distanceKm"`
	DurationMin *int       `json:"durationMin,omitempty"`
	Notes       string     `json:"notes"`
	Status      string     `json:"status"`
	Source      string     `json:"source"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type CreateWorkoutRequest struct {
	ScheduledOn string  `json:"scheduled_on"`
	Kind        string  `json:"kind"`
	Title       string  `json:"title"`
	DistanceKm  float64 `json:"distance_km"`
	DurationMin *int    `json:"duration_min"`
	Notes       string  `json:"notes"`
}

type UpdateWorkoutRequest struct {
	Status      *string  `json:"status"`
	DistanceKm  *float64 `json:"distance_km"`
	DurationMin *int     `json:"duration_min"`
	Notes       *string  `json:"notes"`
}

type WorkoutListResponse struct {
	Status string    `json:"status"`
	Data   []Workout `json:"data"`
}
