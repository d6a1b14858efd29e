package readiness

import (
	"strings"
	"testing"

	"github.com/psjostrom/springa/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func reading(bg float64, slope *float64) model.GlucoseReading {
	return model.GlucoseReading{Mmol: bg, TrendSlope: slope}
}

func TestAssess_BGLevelBoundaries(t *testing.T) {
	a := NewAssessor(DefaultThresholds())
	stable := floatPtr(0.0)

	tests := []struct {
		bg   float64
		want model.ReadinessLevel
	}{
		{4.4, model.LevelWait},
		{4.5, model.LevelCaution},
		{5.5, model.LevelCaution},
		{5.6, model.LevelReady},
		{14.0, model.LevelReady},
		{14.1, model.LevelCaution},
	}
	for _, tt := range tests {
		g := a.Assess(reading(tt.bg, stable), nil, model.CategoryEasy)
		if g.Level != tt.want {
			t.Errorf("bg %.1f: level = %s, want %s", tt.bg, g.Level, tt.want)
		}
	}
}

func TestAssess_TrendBoundaries(t *testing.T) {
	a := NewAssessor(DefaultThresholds())

	tests := []struct {
		name  string
		slope *float64
		want  model.ReadinessLevel
	}{
		{"fast drop", floatPtr(-0.6), model.LevelWait},
		{"exactly -0.5 is caution", floatPtr(-0.5), model.LevelCaution},
		{"trending down", floatPtr(-0.4), model.LevelCaution},
		{"stable low edge", floatPtr(-0.3), model.LevelReady},
		{"stable high edge", floatPtr(0.3), model.LevelReady},
		{"rising", floatPtr(0.6), model.LevelReady},
		{"no data", nil, model.LevelCaution},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := a.Assess(reading(7.0, tt.slope), nil, model.CategoryEasy)
			if g.Level != tt.want {
				t.Errorf("level = %s, want %s", g.Level, tt.want)
			}
		})
	}
}

func TestAssess_ForecastPredictsHypo(t *testing.T) {
	a := NewAssessor(DefaultThresholds())
	m := &model.BGResponseModel{
		ByStartLevel: []model.BucketStats{
			{Bucket: string(model.BandBelow8), AvgRate: -1.5, SampleCount: 12, ActivityCount: 6},
		},
	}

	g := a.Assess(reading(6.0, floatPtr(0.0)), m, model.CategoryEasy)
	if g.PredictedDrop == nil || *g.PredictedDrop != -4.5 {
		t.Fatalf("predicted drop = %v, want -4.5", g.PredictedDrop)
	}
	if g.EstimatedBGAt30m == nil || *g.EstimatedBGAt30m != 1.5 {
		t.Fatalf("estimate = %v, want 1.5", g.EstimatedBGAt30m)
	}
	if g.Level != model.LevelCaution {
		t.Errorf("level = %s, want caution on predicted hypo", g.Level)
	}
	found := false
	for _, r := range g.Reasons {
		if strings.Contains(r, "hypo within 30 min") {
			found = true
		}
	}
	if !found {
		t.Errorf("reasons = %v, want hypo warning", g.Reasons)
	}
}

func TestAssess_EntrySlopeRatePreferred(t *testing.T) {
	a := NewAssessor(DefaultThresholds())
	m := &model.BGResponseModel{
		ByStartLevel: []model.BucketStats{
			{Bucket: string(model.Band8to10), AvgRate: -0.4},
		},
		ByEntrySlope: []model.BucketStats{
			{Bucket: string(model.SlopeDropping), AvgRate: -1.0},
		},
	}

	g := a.Assess(reading(9.0, floatPtr(-0.4)), m, model.CategoryEasy)
	if g.PredictedDrop == nil || *g.PredictedDrop != -3.0 {
		t.Fatalf("predicted drop = %v, want -3.0 from the slope bucket", g.PredictedDrop)
	}
}

func TestAssess_NoMatchingBandNoForecast(t *testing.T) {
	a := NewAssessor(DefaultThresholds())
	m := &model.BGResponseModel{
		ByStartLevel: []model.BucketStats{
			{Bucket: string(model.BandAbove12), AvgRate: -2.0},
		},
	}

	g := a.Assess(reading(7.0, floatPtr(0.0)), m, model.CategoryEasy)
	if g.PredictedDrop != nil || g.EstimatedBGAt30m != nil {
		t.Errorf("expected no forecast, got drop=%v estimate=%v", g.PredictedDrop, g.EstimatedBGAt30m)
	}
	if g.Level != model.LevelReady {
		t.Errorf("level = %s, want ready", g.Level)
	}
}

func TestAssess_ReasonsCappedAtThree(t *testing.T) {
	a := NewAssessor(DefaultThresholds())
	m := &model.BGResponseModel{
		ByStartLevel: []model.BucketStats{
			{Bucket: string(model.BandBelow8), AvgRate: -2.0},
		},
	}

	// Low BG, fast drop, and a predicted hypo: three reasons, wait level.
	g := a.Assess(reading(4.6, floatPtr(-0.8)), m, model.CategoryEasy)
	if len(g.Reasons) > 3 {
		t.Errorf("reasons = %v, want at most 3", g.Reasons)
	}
	if g.Level != model.LevelWait {
		t.Errorf("level = %s, want wait", g.Level)
	}
}

func TestAssess_TargetFuelSuggestion(t *testing.T) {
	a := NewAssessor(DefaultThresholds())
	m := &model.BGResponseModel{
		TargetFuelRates: []model.TargetFuelRate{
			{Category: model.CategoryLong, TargetFuelRate: 55},
		},
	}

	g := a.Assess(reading(8.0, floatPtr(0.0)), m, model.CategoryLong)
	if g.TargetFuel == nil || *g.TargetFuel != 55 {
		t.Fatalf("target fuel = %v, want 55", g.TargetFuel)
	}
	want := "Take 55g carbs/h"
	found := false
	for _, s := range g.Suggestions {
		if s == want {
			found = true
		}
	}
	if !found {
		t.Errorf("suggestions = %v, want %q", g.Suggestions, want)
	}
}
