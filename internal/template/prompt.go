// Package template renders the prompts sent to the coaching model.
//
// Supported variables:
//
//	{{profile.goal}}, {{profile.target_date}}, {{profile.weekly_mileage_km}},
//	{{profile.runs_per_week}}, {{profile.experience}}, {{profile.notes}},
//	{{profile.today}}, {{profile.history}}
package template

import (
	"fmt"
	"strings"
	"time"
)

// ProfileData holds the athlete inputs interpolated into the plan prompt.
type ProfileData struct {
	Goal            string
	TargetDate      time.Time
	WeeklyMileageKm float64
	RunsPerWeek     int
	Experience      string
	Notes           string
	Today           time.Time
	History         []string
}

const planPromptTemplate = `You are an experienced running coach. Build a training plan for the athlete below.

Athlete:
- Goal: {{profile.goal}}
- Target date: {{profile.target_date}}
- Current weekly mileage: {{profile.weekly_mileage_km}} km
- Runs per week: {{profile.runs_per_week}}
- Experience: {{profile.experience}}
- Notes: {{profile.notes}}

Today is {{profile.today}}.
{{profile.history}}
Respond with a single JSON object and nothing else:
{"summary": "<2-3 sentence overview of the plan>",
 "workouts": [{"date": "YYYY-MM-DD", "kind": "easy|tempo|interval|long|rest",
               "title": "<short title>", "distance_km": <number>,
               "duration_min": <number>, "notes": "<pacing guidance>"}]}

Dates must fall between today and the target date. Schedule {{profile.runs_per_week}} runs per week and build volume gradually from the current mileage.`

const workoutParsePrompt = `This image is a screenshot of a finished run from a fitness app. Extract the workout and respond with a single JSON object and nothing else:
{"kind": "easy|tempo|interval|long|race",
 "date": "YYYY-MM-DD or empty string if not visible",
 "distance_km": <number>,
 "duration_min": <number>,
 "notes": "<pace, heart rate or anything else visible, one sentence>"}
If the image is not a workout screenshot, respond with {"kind": ""}.`

// RenderPlanPrompt substitutes profile values into the plan prompt template.
func RenderPlanPrompt(profile ProfileData) string {
	history := ""
	if len(profile.History) > 0 {
		var b strings.Builder
		b.WriteString("Recent training history:\n")
		for _, h := range profile.History {
			b.WriteString("- ")
			b.WriteString(h)
			b.WriteString("\n")
		}
		history = b.String()
	}

	r := strings.NewReplacer(
		"{{profile.goal}}", profile.Goal,
		"{{profile.target_date}}", profile.TargetDate.Format("2006-01-02"),
		"{{profile.weekly_mileage_km}}", fmt.Sprintf("%.0f", profile.WeeklyMileageKm),
		"{{profile.runs_per_week}}", fmt.Sprintf("%d", profile.RunsPerWeek),
		"{{profile.experience}}", profile.Experience,
		"{{profile.notes}}", profile.Notes,
		"{{profile.today}}", profile.Today.Format("2006-01-02"),
		"{{profile.history}}", history,
	)
	return r.Replace(planPromptTemplate)
}

// WorkoutParsePrompt returns the extraction prompt for workout screenshots.
func WorkoutParsePrompt() string {
	return workoutParsePrompt
}
