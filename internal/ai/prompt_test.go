package ai

import (
	"strings"
	"testing"
	"time"

	"github.com/psjostrom/springa/internal/model"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "plain json",
			raw:  `{"note": "Fuel early and hold Z2."}`,
			want: "Fuel early and hold Z2.",
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"note\": \"Take 40 g/h from the start.\"}\n```",
			want: "Take 40 g/h from the start.",
		},
		{
			name:    "empty note",
			raw:     `{"note": ""}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     "Sure! Here is your note.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseReply(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("note = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildUserPrompt_IncludesContext(t *testing.T) {
	target := &model.TargetFuelRate{
		Category:       model.CategoryLong,
		TargetFuelRate: 60,
		CurrentAvgFuel: 40,
		Method:         model.MethodRegression,
	}
	req := NoteRequest{
		Category:    model.CategoryLong,
		Date:        time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC),
		Description: "2h long run",
		FuelRate:    60,
		Changes:     []string{"fuel raised from 40 to 60 g/h"},
		Stats: &model.CategoryStats{
			Category:      model.CategoryLong,
			AvgRate:       -0.8,
			ActivityCount: 6,
			Confidence:    model.ConfidenceMedium,
		},
		TargetFuel: target,
		Load:       model.TrainingLoad{CTL: 52, ATL: 60, TSB: -8, RampRate: 2.5},
	}

	prompt := buildUserPrompt(req)
	for _, want := range []string{
		"2h long run",
		"60 g/h",
		"fuel raised from 40 to 60 g/h",
		"avg -0.8 mmol/10min over 6 runs",
		"TSB -8",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildSystemPrompt_EmbedsSchema(t *testing.T) {
	prompt := buildSystemPrompt()
	if !strings.Contains(prompt, `"note"`) {
		t.Errorf("system prompt missing note schema:\n%s", prompt)
	}
}
