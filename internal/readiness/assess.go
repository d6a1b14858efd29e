// Package readiness classifies pre-run safety from a live glucose reading
// and the response model. Assessment is a pure function of its inputs and
// is recomputed from scratch on every call.
package readiness

import (
	"fmt"

	"github.com/psjostrom/springa/internal/model"
)

const maxReasons = 3

// Thresholds are the policy boundaries for the assessment. All lower
// bounds are inclusive on the safer side as documented per field.
type Thresholds struct {
	BGWaitBelow    float64 // below this, wait
	BGCautionBelow float64 // up to and including this, caution
	BGCautionAbove float64 // above this, caution (steep drops expected)
	SlopeWaitBelow float64 // strictly below this, wait
	SlopeCutoff    float64 // dropping/rising classification boundary
	Hypo           float64 // clinical low, mmol/L
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		BGWaitBelow:    4.5,
		BGCautionBelow: 5.5,
		BGCautionAbove: 14.0,
		SlopeWaitBelow: -0.5,
		SlopeCutoff:    0.3,
		Hypo:           3.9,
	}
}

// Guidance is the result of one assessment.
type Guidance struct {
	Level            model.ReadinessLevel
	Reasons          []string
	Suggestions      []string
	PredictedDrop    *float64 // mmol/L over the next 30 minutes
	EstimatedBGAt30m *float64
	TargetFuel       *float64 // g/h, when the model has one for the category
}

// Assessor evaluates readiness against configurable thresholds.
type Assessor struct {
	t Thresholds
}

func NewAssessor(t Thresholds) *Assessor {
	return &Assessor{t: t}
}

// Assess classifies the reading into ready/caution/wait. Three signal
// dimensions contribute reasons independently; the final level is the
// highest severity among them. A nil model degrades to the level and
// trend dimensions only.
func (a *Assessor) Assess(reading model.GlucoseReading, m *model.BGResponseModel, cat model.Category) Guidance {
	g := Guidance{Level: model.LevelReady}

	a.assessLevel(&g, reading.Mmol)
	a.assessTrend(&g, reading.TrendSlope)
	a.assessForecast(&g, reading, m)

	if len(g.Reasons) > maxReasons {
		g.Reasons = g.Reasons[:maxReasons]
	}

	if m != nil {
		if target := m.TargetFuelFor(cat); target != nil {
			fuel := target.TargetFuelRate
			g.TargetFuel = &fuel
			g.Suggestions = append(g.Suggestions, fmt.Sprintf("Take %.0fg carbs/h", fuel))
		}
	}
	return g
}

func (a *Assessor) assessLevel(g *Guidance, bg float64) {
	switch {
	case bg < a.t.BGWaitBelow:
		g.escalate(model.LevelWait, "BG too low to start")
	case bg <= a.t.BGCautionBelow:
		g.escalate(model.LevelCaution, "BG on the low side")
	case bg > a.t.BGCautionAbove:
		g.escalate(model.LevelCaution, "BG high, expect a steeper drop")
	}
}

func (a *Assessor) assessTrend(g *Guidance, slope *float64) {
	if slope == nil {
		g.escalate(model.LevelCaution, "No recent BG data")
		return
	}
	switch {
	case *slope < a.t.SlopeWaitBelow:
		g.escalate(model.LevelWait, "BG dropping fast")
	case *slope < -a.t.SlopeCutoff:
		g.escalate(model.LevelCaution, "BG trending down")
	}
}

// assessForecast projects 30 minutes out from the model's observed drop
// rates. The entry-slope-specific rate is preferred over the plain
// start-band rate when both exist. No matching band means no forecast,
// which is not an error.
func (a *Assessor) assessForecast(g *Guidance, reading model.GlucoseReading, m *model.BGResponseModel) {
	if m == nil {
		return
	}
	band := m.StartLevelStats(model.BandFor(reading.Mmol))
	if band == nil {
		return
	}

	rate := band.AvgRate
	if reading.TrendSlope != nil {
		bucket := model.BucketForSlope(*reading.TrendSlope, a.t.SlopeCutoff)
		if bySlope := m.EntrySlopeStats(bucket); bySlope != nil {
			rate = bySlope.AvgRate
		}
	}

	drop := rate * 3
	estimate := reading.Mmol + drop
	g.PredictedDrop = &drop
	g.EstimatedBGAt30m = &estimate

	if estimate < a.t.Hypo {
		g.escalate(model.LevelCaution, "Model predicts hypo within 30 min")
	}
}

// escalate raises the level when the new one is more severe and records
// the reason.
func (g *Guidance) escalate(level model.ReadinessLevel, reason string) {
	if level.Severity() > g.Level.Severity() {
		g.Level = level
	}
	g.Reasons = append(g.Reasons, reason)
}
