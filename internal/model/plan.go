package model

import "time"

type Plan struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Goal       string    `json:"goal"`
	TargetDate time.Time `json:"targetDate"`
	Summary    string    `json:"summary"`
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"createdAt"`
}

type PlanRequest struct {
	Goal            string  `json:"goal"`
	TargetDate      string  `json:"target_date"`
	WeeklyMileageKm float64 `json:"weekly_mileage_km"`
	RunsPerWeek     int     `json:"runs_per_week"`
	Experience      string  `json:"experience"`
	Notes           string  `json:"notes"`
}

type PlanDetailResponse struct {
	Plan     Plan      `json:"plan"`
	Workouts []Workout `json:"workouts"`
}

// GeneratedPlan is the JSON document the coaching model is asked to return.
type GeneratedPlan struct {
	Summary  string             `json:"summary"`
	Workouts []GeneratedWorkout `json:"workouts"`
}

type GeneratedWorkout struct {
	Date        string  `json:"date"`
	Kind        string  `json:"kind"`
	Title       string  `json:"title"`
	DistanceKm  float64 `json:"distance_km"`
	DurationMin int     `json:"duration_min"`
	Notes       string  `json:"notes"`
}
