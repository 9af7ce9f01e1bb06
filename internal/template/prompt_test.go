package template

import (
	"strings"
	"testing"
	"time"
)

func TestRenderPlanPrompt(t *testing.T) {
	prompt := RenderPlanPrompt(ProfileData{
		Goal:            "sub-4 marathon",
		TargetDate:      time.Date(2026, 12, 6, 0, 0, 0, 0, time.UTC),
		WeeklyMileageKm: 42,
		RunsPerWeek:     4,
		Experience:      "intermediate",
		Notes:           "prone to shin splints",
		Today:           time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	})

	for _, want := range []string{
		"sub-4 marathon",
		"2026-12-06",
		"42 km",
		"intermediate",
		"prone to shin splints",
		"Today is 2026-09-01.",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "{{profile.") {
		t.Fatalf("unreplaced variable left in prompt:\n%s", prompt)
	}
	if strings.Contains(prompt, "Recent training history") {
		t.Fatalf("history block rendered without history")
	}
}

func TestRenderPlanPromptWithHistory(t *testing.T) {
	prompt := RenderPlanPrompt(ProfileData{
		Goal:        "first 10k",
		TargetDate:  time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		RunsPerWeek: 3,
		Today:       time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		History: []string{
			"2026-08-30: 12.0 km long run",
			"2026-08-27: 5.0 km easy run",
		},
	})

	if !strings.Contains(prompt, "Recent training history:\n- 2026-08-30: 12.0 km long run\n- 2026-08-27: 5.0 km easy run\n") {
		t.Fatalf("history block missing or malformed:\n%s", prompt)
	}
}

func TestWorkoutParsePromptDemandsJSON(t *testing.T) {
	prompt := WorkoutParsePrompt()
	if !strings.Contains(prompt, `{"kind": ""}`) {
		t.Fatalf("prompt missing the not-a-workout fallback:\n%s", prompt)
	}
}
