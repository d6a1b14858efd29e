package adapt

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/psjostrom/springa/internal/ai"
	"github.com/psjostrom/springa/internal/model"
)

type stubProvider struct {
	mu    sync.Mutex
	note  string
	err   error
	delay time.Duration
	calls int
}

func (s *stubProvider) GenerateNote(ctx context.Context, req ai.NoteRequest) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.err != nil {
		return "", s.err
	}
	return s.note, nil
}

func modelWithTarget(cat model.Category, target float64) *model.BGResponseModel {
	return &model.BGResponseModel{
		TargetFuelRates: []model.TargetFuelRate{{
			Category:       cat,
			TargetFuelRate: target,
			CurrentAvgFuel: 20,
			Method:         model.MethodRegression,
			Confidence:     model.ConfidenceHigh,
		}},
	}
}

func plannedLong(fuel float64) model.PlannedEvent {
	return model.PlannedEvent{
		ID:          "ev1",
		Category:    model.CategoryLong,
		Date:        time.Date(2026, 4, 5, 8, 0, 0, 0, time.UTC),
		FuelRate:    fuel,
		Description: "2h long run @ Z2",
		DurationSec: 7200,
	}
}

func TestAdapt_FuelRaiseIsCapped(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil, nil)
	result, err := engine.Adapt(context.Background(), Input{
		Plan:  []model.PlannedEvent{plannedLong(20)},
		Model: modelWithTarget(model.CategoryLong, 60),
	})
	if err != nil {
		t.Fatal(err)
	}

	ev := result.Events[0]
	// 1.5x the current 20 g/h, not the full 60 g/h target.
	if ev.FuelRate != 30 {
		t.Errorf("fuel = %.0f, want 30", ev.FuelRate)
	}
	if len(ev.Changes) != 1 || ev.Changes[0].Reason != ReasonFuelAdjusted {
		t.Errorf("changes = %+v, want one fuel adjustment", ev.Changes)
	}
}

func TestAdapt_FuelCapAbsolute(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil, nil)
	result, err := engine.Adapt(context.Background(), Input{
		Plan:  []model.PlannedEvent{plannedLong(80)},
		Model: modelWithTarget(model.CategoryLong, 140),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := result.Events[0].FuelRate; got != 90 {
		t.Errorf("fuel = %.0f, want 90 (absolute cap)", got)
	}
}

func TestAdapt_FuelLoweredWithoutCap(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil, nil)
	result, err := engine.Adapt(context.Background(), Input{
		Plan:  []model.PlannedEvent{plannedLong(60)},
		Model: modelWithTarget(model.CategoryLong, 40),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := result.Events[0].FuelRate; got != 40 {
		t.Errorf("fuel = %.0f, want 40", got)
	}
}

func TestAdapt_NoTargetNoChange(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil, nil)
	result, err := engine.Adapt(context.Background(), Input{
		Plan: []model.PlannedEvent{plannedLong(40)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed() {
		t.Errorf("expected no changes, got %+v", result.Events[0].Changes)
	}
	if result.Events[0].Notes != "No changes." {
		t.Errorf("notes = %q", result.Events[0].Notes)
	}
}

func TestAdapt_IntervalSwappedWhenOverreaching(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil, nil)
	result, err := engine.Adapt(context.Background(), Input{
		Plan: []model.PlannedEvent{{
			ID:          "ev2",
			Category:    model.CategoryInterval,
			Date:        time.Date(2026, 4, 6, 18, 0, 0, 0, time.UTC),
			FuelRate:    30,
			Description: "6 x 3min @ Z4 + 2min jog",
			DurationSec: 1200,
		}},
		Load: model.TrainingLoad{TSB: -25},
	})
	if err != nil {
		t.Fatal(err)
	}

	ev := result.Events[0]
	if len(ev.Changes) != 1 || ev.Changes[0].Reason != ReasonWorkoutSwapped {
		t.Fatalf("changes = %+v, want one swap", ev.Changes)
	}
	// Same total duration, now easy.
	desc := ev.Description()
	if !strings.Contains(desc, "20min easy @ Z2") {
		t.Errorf("description = %q, want 20min easy", desc)
	}
}

func TestAdapt_EasyShortenedOnHighRamp(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil, nil)
	result, err := engine.Adapt(context.Background(), Input{
		Plan: []model.PlannedEvent{{
			ID:          "ev3",
			Category:    model.CategoryEasy,
			Date:        time.Date(2026, 4, 7, 7, 0, 0, 0, time.UTC),
			Description: "40min easy @ Z2",
			DurationSec: 2400,
		}},
		Load: model.TrainingLoad{RampRate: 9},
	})
	if err != nil {
		t.Fatal(err)
	}

	ev := result.Events[0]
	if len(ev.Changes) != 1 || ev.Changes[0].Reason != ReasonWorkoutShortened {
		t.Fatalf("changes = %+v, want one shorten", ev.Changes)
	}
	if !strings.Contains(ev.Description(), "30min easy @ Z2") {
		t.Errorf("description = %q, want 30min", ev.Description())
	}
}

func TestAdapt_RaceNeverTouched(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil, nil)
	result, err := engine.Adapt(context.Background(), Input{
		Plan: []model.PlannedEvent{{
			ID:          "race",
			Category:    model.CategoryRace,
			Date:        time.Date(2026, 4, 12, 9, 0, 0, 0, time.UTC),
			Description: "Half marathon",
		}},
		Load: model.TrainingLoad{TSB: -30, RampRate: 12},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed() {
		t.Errorf("race was changed: %+v", result.Events[0].Changes)
	}
}

func TestAdapt_MaxEventsLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvents = 2

	plan := make([]model.PlannedEvent, 5)
	for i := range plan {
		plan[i] = plannedLong(40)
		plan[i].Date = time.Date(2026, 4, 5+i, 8, 0, 0, 0, time.UTC)
	}

	engine := NewEngine(cfg, nil, nil)
	result, err := engine.Adapt(context.Background(), Input{Plan: plan})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Events) != 2 {
		t.Errorf("events = %d, want 2", len(result.Events))
	}
	if result.RunID == "" {
		t.Error("missing run id")
	}
}

func TestAdapt_NotesFromProvider(t *testing.T) {
	provider := &stubProvider{note: "Hold Z2 and fuel from the gun."}
	engine := NewEngine(DefaultConfig(), provider, nil)

	result, err := engine.Adapt(context.Background(), Input{
		Plan:  []model.PlannedEvent{plannedLong(20), plannedLong(20)},
		Model: modelWithTarget(model.CategoryLong, 60),
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, ev := range result.Events {
		if ev.Notes != "Hold Z2 and fuel from the gun." {
			t.Errorf("notes = %q", ev.Notes)
		}
	}
	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2", provider.calls)
	}
}

func TestAdapt_ProviderFailureFallsBack(t *testing.T) {
	provider := &stubProvider{err: errors.New("rate limited")}
	engine := NewEngine(DefaultConfig(), provider, nil)

	result, err := engine.Adapt(context.Background(), Input{
		Plan:  []model.PlannedEvent{plannedLong(20)},
		Model: modelWithTarget(model.CategoryLong, 60),
	})
	if err != nil {
		t.Fatal(err)
	}

	notes := result.Events[0].Notes
	if !strings.Contains(notes, "Fuel rate raised from 20 to 30 g/h") {
		t.Errorf("fallback notes = %q", notes)
	}
}

func TestAdapt_ProviderTimeoutFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NoteTimeout = 10 * time.Millisecond
	provider := &stubProvider{note: "too slow", delay: 500 * time.Millisecond}
	engine := NewEngine(cfg, provider, nil)

	result, err := engine.Adapt(context.Background(), Input{
		Plan: []model.PlannedEvent{plannedLong(40)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Events[0].Notes != "No changes." {
		t.Errorf("notes = %q, want fallback", result.Events[0].Notes)
	}
}
