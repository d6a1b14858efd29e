// Package adapt applies the fueling and load rules to upcoming planned
// workouts and attaches generated coaching notes to the result.
package adapt

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/psjostrom/springa/internal/ai"
	"github.com/psjostrom/springa/internal/model"
	"github.com/psjostrom/springa/internal/workout"
)

// ChangeReason tags what kind of adjustment was made to an event.
type ChangeReason string

const (
	ReasonFuelAdjusted     ChangeReason = "fuel_adjusted"
	ReasonWorkoutSwapped   ChangeReason = "workout_swapped"
	ReasonWorkoutShortened ChangeReason = "workout_shortened"
)

// Change records one adjustment to a planned event.
type Change struct {
	Reason ChangeReason
	Detail string
	Before string
	After  string
}

// AdaptedEvent is a planned event after the rules have run, carrying its
// final fuel rate, structure, and note.
type AdaptedEvent struct {
	Event     model.PlannedEvent
	FuelRate  float64
	Structure []workout.Segment
	Changes   []Change
	Notes     string
}

/// Description renders the event's final upload text: the (possibly swapped
// or shortened) structure followed by the coaching note.
func (e AdaptedEvent) Description() string {
	structure := workout.Render(e.Structure)
	if structure == "" {
		structure = e.Event.Description
	}
	return workout.Reassemble(structure, e.Notes)
}

// Result is one adaptation run over the upcoming plan.
type Result struct {
	RunID  string
	RunAt  time.Time
	Events []AdaptedEvent
}

// Changed reports whether any event in the run was adjusted.
func (r *Result) Changed() bool {
	for _, e := range r.Events {
		if len(e.Changes) > 0 {
			return true
		}
	}
	return false
}

// Config holds the adaptation policy knobs.
type Config struct {
	MaxEvents         int     // how many upcoming events to adapt
	FuelCapFactor     float64 // per-run increase cap as a multiple of current
	FuelCapAbsolute   float64 // hard ceiling, g/h
	TSBSwapThreshold  float64 // swap hard workouts below this TSB
	RampSwapThreshold float64 // swap hard workouts above this HR ramp, bpm/week
	EasyShortenFactor float64
	NoteTimeout       time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxEvents:         4,
		FuelCapFactor:     1.5,
		FuelCapAbsolute:   90,
		TSBSwapThreshold:  -20,
		RampSwapThreshold: 8,
		EasyShortenFactor: 0.75,
		NoteTimeout:       30 * time.Second,
	}
}

// Input is everything one adaptation run needs.
type Input struct {
	Plan     []model.PlannedEvent
	Model    *model.BGResponseModel
	Load     model.TrainingLoad
	Recent   map[model.Category][]ai.RunSummary
	Feedback []model.Feedback
}

// Engine runs the adaptation rules over a plan.
type Engine struct {
	cfg      Config
	provider ai.Provider
	logger   *slog.Logger
}

// NewEngine creates an engine. A nil provider disables generated notes and
// falls back to deterministic summaries; a nil logger discards output.
func NewEngine(cfg Config, provider ai.Provider, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{cfg: cfg, provider: provider, logger: logger}
}

// Adapt applies the fueling and load rules to the next events in the plan,
// then generates notes for all adapted events concurrently. The rules
// themselves are deterministic; only the note text depends on the provider.
func (e *Engine) Adapt(ctx context.Context, in Input) (*Result, error) {
	plan := make([]model.PlannedEvent, len(in.Plan))
	copy(plan, in.Plan)
	sort.Slice(plan, func(i, j int) bool { return plan[i].Date.Before(plan[j].Date) })
	if e.cfg.MaxEvents > 0 && len(plan) > e.cfg.MaxEvents {
		plan = plan[:e.cfg.MaxEvents]
	}

	result := &Result{
		RunID:  uuid.NewString(),
		RunAt:  time.Now(),
		Events: make([]AdaptedEvent, len(plan)),
	}

	for i, ev := range plan {
		adapted := AdaptedEvent{
			Event:     ev,
			FuelRate:  ev.FuelRate,
			Structure: workout.Parse(ev.Description),
		}
		e.applyFuelRule(&adapted, in.Model)
		e.applyLoadRule(&adapted, in.Load)
		result.Events[i] = adapted
	}

	e.attachNotes(ctx, result, in)

	e.logger.Info("adaptation run complete",
		"run_id", result.RunID,
		"events", len(result.Events),
		"changed", result.Changed())
	return result, nil
}

// applyFuelRule moves the event's fuel rate toward the model's target for
// its category. Increases are capped per run so fueling ramps gradually.
func (e *Engine) applyFuelRule(adapted *AdaptedEvent, m *model.BGResponseModel) {
	if m == nil {
		return
	}
	target := m.TargetFuelFor(adapted.Event.Category)
	if target == nil {
		return
	}

	current := adapted.Event.FuelRate
	next := target.TargetFuelRate
	if next > current {
		ceiling := e.cfg.FuelCapAbsolute
		if current > 0 {
			ceiling = math.Min(ceiling, current*e.cfg.FuelCapFactor)
		}
		next = math.Min(next, ceiling)
	}
	next = math.Round(next)
	if next == current {
		return
	}

	adapted.FuelRate = next
	adapted.Changes = append(adapted.Changes, Change{
		Reason: ReasonFuelAdjusted,
		Detail: fmt.Sprintf("fuel rate %s from %.0f to %.0f g/h (target %.0f, %s confidence)",
			direction(current, next), current, next, target.TargetFuelRate, target.Confidence),
		Before: fmt.Sprintf("%.0f g/h", current),
		After:  fmt.Sprintf("%.0f g/h", next),
	})
}

// applyLoadRule swaps or shortens the workout when training load says the
// athlete is overreaching: intervals become an easy run of the same
// duration, easy and long runs get shortened. Races are never touched.
func (e *Engine) applyLoadRule(adapted *AdaptedEvent, load model.TrainingLoad) {
	overreaching := load.TSB < e.cfg.TSBSwapThreshold || load.RampRate > e.cfg.RampSwapThreshold
	if !overreaching || adapted.Event.Category == model.CategoryRace {
		return
	}

	before := workout.Render(adapted.Structure)
	switch adapted.Event.Category {
	case model.CategoryInterval:
		duration := workout.TotalDuration(adapted.Structure)
		if duration == 0 {
			duration = adapted.Event.DurationSec
		}
		adapted.Structure = workout.EasyEquivalent(duration)
		adapted.Changes = append(adapted.Changes, Change{
			Reason: ReasonWorkoutSwapped,
			Detail: fmt.Sprintf("intervals swapped for an easy run (TSB %.0f, ramp %.1f bpm/week)",
				load.TSB, load.RampRate),
			Before: before,
			After:  workout.Render(adapted.Structure),
		})
	default:
		adapted.Structure = workout.Shorten(adapted.Structure, e.cfg.EasyShortenFactor)
		adapted.Changes = append(adapted.Changes, Change{
			Reason: ReasonWorkoutShortened,
			Detail: fmt.Sprintf("run shortened to recover (TSB %.0f, ramp %.1f bpm/week)",
				load.TSB, load.RampRate),
			Before: before,
			After:  workout.Render(adapted.Structure),
		})
	}
}

// attachNotes generates coaching notes for every event concurrently, each
// under its own timeout. A failed or missing provider degrades to the
// deterministic fallback note, never to an error.
func (e *Engine) attachNotes(ctx context.Context, result *Result, in Input) {
	var wg sync.WaitGroup
	for i := range result.Events {
		wg.Add(1)
		go func(adapted *AdaptedEvent) {
			defer wg.Done()
			adapted.Notes = e.noteFor(ctx, *adapted, in)
		}(&result.Events[i])
	}
	wg.Wait()
}

func (e *Engine) noteFor(ctx context.Context, adapted AdaptedEvent, in Input) string {
	if e.provider == nil {
		return fallbackNote(adapted)
	}

	noteCtx, cancel := context.WithTimeout(ctx, e.cfg.NoteTimeout)
	defer cancel()

	note, err := e.provider.GenerateNote(noteCtx, buildNoteRequest(adapted, in))
	if err != nil {
		e.logger.Warn("note generation failed, using fallback",
			"event", adapted.Event.ID, "error", err)
		return fallbackNote(adapted)
	}
	return note
}

func direction(before, after float64) string {
	if after > before {
		return "raised"
	}
	return "lowered"
}
