// Package report scores one completed run after the fact: glucose
// stability, HR-zone compliance, fuel adherence, pre-start trend, and
// recovery. Scores are independent and each is nil when its inputs are
// missing.
package report

import (
	"github.com/psjostrom/springa/internal/model"
	"github.com/psjostrom/springa/internal/stream"
)

// BGScore rates overall glucose stability across the run.
type BGScore struct {
	Rating       model.Rating
	RatePer10Min float64
	MinGlucose   float64
	Hypo         bool
}

// ZoneScore rates time spent in the category's target HR zones.
type ZoneScore struct {
	Rating      model.Rating
	TargetZones []model.HRZone
	PctInTarget float64
}

// FuelScore rates actual vs planned carb intake.
type FuelScore struct {
	Rating       model.Rating
	PlannedCarbs float64
	ActualCarbs  float64
	Pct          float64
}

// TrendScore rates the glucose trend going into the run.
type TrendScore struct {
	Rating model.Rating
	Slope  float64
	Bucket model.SlopeBucket
}

// RecoveryScore rates the glucose rebound after the in-run minimum.
type RecoveryScore struct {
	Rating  model.Rating
	Rebound float64 // mmol/L from minimum to final reading
}

// Card carries whichever scores had enough data for one run.
type Card struct {
	ActivityID string
	BG         *BGScore
	Zones      *ZoneScore
	Fuel       *FuelScore
	EntryTrend *TrendScore
	Recovery   *RecoveryScore
}

// Scorer evaluates completed runs against fixed rating boundaries.
type Scorer struct {
	Hypo        float64 // mmol/L
	SlopeCutoff float64 // entry-trend classification boundary
}

func NewScorer() *Scorer {
	return &Scorer{Hypo: 3.9, SlopeCutoff: 0.3}
}

// Score builds the report card for one completed event. Scorers are
// order-insensitive and never fail; missing data yields nil scores.
func (s *Scorer) Score(ev model.CompletedEvent) Card {
	return Card{
		ActivityID: ev.ID,
		BG:         s.scoreBG(ev),
		Zones:      s.scoreZones(ev),
		Fuel:       s.scoreFuel(ev),
		EntryTrend: s.scoreEntryTrend(ev),
		Recovery:   s.scoreRecovery(ev),
	}
}

func (s *Scorer) scoreBG(ev model.CompletedEvent) *BGScore {
	samples := inRunSamples(ev.Glucose)
	if len(samples) < 2 {
		return nil
	}

	first, last := samples[0], samples[len(samples)-1]
	rate := 0.0
	if elapsed := last.Offset - first.Offset; elapsed > 0 {
		rate = (last.Value - first.Value) / (float64(elapsed) / 600)
	}

	min := samples[0].Value
	for _, sm := range samples[1:] {
		if sm.Value < min {
			min = sm.Value
		}
	}
	hypo := min < s.Hypo

	score := &BGScore{RatePer10Min: rate, MinGlucose: min, Hypo: hypo}
	switch {
	case hypo || rate < -2.0:
		score.Rating = model.RatingBad
	case rate < -1.0:
		score.Rating = model.RatingOK
	default:
		score.Rating = model.RatingGood
	}
	return score
}

func (s *Scorer) scoreZones(ev model.CompletedEvent) *ZoneScore {
	total := 0.0
	for _, sec := range ev.ZoneSeconds {
		total += sec
	}
	if total == 0 {
		return nil
	}

	targets := targetZones(ev.Category)
	inTarget := 0.0
	for _, z := range targets {
		inTarget += ev.ZoneSeconds[z-1]
	}
	pct := inTarget / total * 100

	score := &ZoneScore{TargetZones: targets, PctInTarget: pct}
	switch {
	case pct >= 60:
		score.Rating = model.RatingGood
	case pct >= 40:
		score.Rating = model.RatingOK
	default:
		score.Rating = model.RatingBad
	}
	return score
}

func targetZones(cat model.Category) []model.HRZone {
	switch cat {
	case model.CategoryInterval:
		return []model.HRZone{model.Zone4}
	case model.CategoryRace:
		return []model.HRZone{model.Zone2, model.Zone3}
	default:
		return []model.HRZone{model.Zone2}
	}
}

func (s *Scorer) scoreFuel(ev model.CompletedEvent) *FuelScore {
	if ev.PlannedCarbs <= 0 || ev.ActualCarbs <= 0 {
		return nil
	}
	pct := ev.ActualCarbs / ev.PlannedCarbs * 100

	score := &FuelScore{PlannedCarbs: ev.PlannedCarbs, ActualCarbs: ev.ActualCarbs, Pct: pct}
	switch {
	case pct >= 80 && pct <= 120:
		score.Rating = model.RatingGood
	case pct >= 60 && pct <= 150:
		score.Rating = model.RatingOK
	default:
		score.Rating = model.RatingBad
	}
	return score
}

func (s *Scorer) scoreEntryTrend(ev model.CompletedEvent) *TrendScore {
	slope := stream.EntrySlope(ev.Glucose)
	if slope == nil {
		return nil
	}

	bucket := model.BucketForSlope(*slope, s.SlopeCutoff)
	score := &TrendScore{Slope: *slope, Bucket: bucket}
	switch bucket {
	case model.SlopeStable:
		score.Rating = model.RatingGood
	case model.SlopeRising:
		score.Rating = model.RatingOK
	default:
		score.Rating = model.RatingBad
	}
	return score
}

// scoreRecovery looks at how glucose rebounded after its in-run minimum.
// A run that never dropped below its start, or one where the minimum sits
// at the very end, gives no score.
func (s *Scorer) scoreRecovery(ev model.CompletedEvent) *RecoveryScore {
	samples := inRunSamples(ev.Glucose)
	if len(samples) < 3 {
		return nil
	}

	minIdx := 0
	for i, sm := range samples {
		if sm.Value < samples[minIdx].Value {
			minIdx = i
		}
	}
	if minIdx == 0 || len(samples)-minIdx-1 < 2 {
		return nil
	}

	rebound := samples[len(samples)-1].Value - samples[minIdx].Value
	score := &RecoveryScore{Rebound: rebound}
	switch {
	case rebound >= 1.0:
		score.Rating = model.RatingGood
	case rebound >= 0.3:
		score.Rating = model.RatingOK
	default:
		score.Rating = model.RatingBad
	}
	return score
}

// inRunSamples drops the pre-start portion of a series.
func inRunSamples(samples []model.TimeSample) []model.TimeSample {
	for i, sm := range samples {
		if sm.Offset >= 0 {
			return samples[i:]
		}
	}
	return nil
}
