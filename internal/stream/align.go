// Package stream turns raw per-sample activity channels into per-minute
// aligned series, sliding windows, and normalized glucose observations.
package stream

import (
	"sort"

	"github.com/psjostrom/springa/internal/model"
)

// Plausible running-pace range in min/km. Velocity samples converting to a
// pace outside this range are sensor noise and get dropped.
const (
	minPlausiblePace = 2.0
	maxPlausiblePace = 12.0
)

// Raw holds the unaligned per-sample channels of one activity as delivered
// by the training platform.
type Raw struct {
	Velocity []model.TimeSample // m/s
	Cadence  []model.TimeSample // half-steps/min
	Altitude []model.TimeSample // m
}

// Aligned holds the per-minute bucketed output channels. Glucose and HR
// arrive minute-aligned upstream and are not re-bucketed here.
type Aligned struct {
	Pace     []model.TimeSample // min/km
	Cadence  []model.TimeSample // steps/min
	Altitude []model.TimeSample // m
}

// Align buckets the raw channels onto a common per-minute axis. Each sample
// lands in the minute containing its offset; samples sharing a minute are
// averaged. Missing input channels yield empty outputs.
func Align(raw Raw) Aligned {
	var pace []model.TimeSample
	for _, s := range raw.Velocity {
		if s.Value <= 0 {
			continue
		}
		p := 1000 / (s.Value * 60)
		if p < minPlausiblePace || p > maxPlausiblePace {
			continue
		}
		pace = append(pace, model.TimeSample{Offset: s.Offset, Value: p})
	}

	var cadence []model.TimeSample
	for _, s := range raw.Cadence {
		if s.Value == 0 {
			continue
		}
		cadence = append(cadence, model.TimeSample{Offset: s.Offset, Value: s.Value * 2})
	}

	return Aligned{
		Pace:     bucketByMinute(pace),
		Cadence:  bucketByMinute(cadence),
		Altitude: bucketByMinute(raw.Altitude),
	}
}

// bucketByMinute rounds offsets down to their containing minute and averages
// samples that share one, returning a series sorted by minute.
func bucketByMinute(samples []model.TimeSample) []model.TimeSample {
	if len(samples) == 0 {
		return nil
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, s := range samples {
		minute := s.Offset / 60
		if s.Offset < 0 && s.Offset%60 != 0 {
			minute-- // round down, not toward zero
		}
		sums[minute] += s.Value
		counts[minute]++
	}

	minutes := make([]int, 0, len(sums))
	for m := range sums {
		minutes = append(minutes, m)
	}
	sort.Ints(minutes)

	out := make([]model.TimeSample, 0, len(minutes))
	for _, m := range minutes {
		out = append(out, model.TimeSample{
			Offset: m * 60,
			Value:  sums[m] / float64(counts[m]),
		})
	}
	return out
}
