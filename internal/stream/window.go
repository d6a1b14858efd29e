package stream

import "github.com/psjostrom/springa/internal/model"

// Extractor slides a fixed-duration window across an activity's aligned
// glucose/HR/pace series. The zero value is not usable; use NewExtractor.
type Extractor struct {
	WindowSec         int
	StepSec           int
	MinDurationSec    int
	MinGlucoseSamples int
}

// NewExtractor returns an extractor with the standard 5-minute window,
// 1-minute step, 12-minute activity floor, and 3-sample window minimum.
func NewExtractor() Extractor {
	return Extractor{
		WindowSec:         5 * 60,
		StepSec:           60,
		MinDurationSec:    12 * 60,
		MinGlucoseSamples: 3,
	}
}

// Windows extracts all qualifying windows from the given series. Activities
// whose glucose span is shorter than the duration floor contribute no
// windows; that is not an error.
func (e Extractor) Windows(glucose, hr, pace []model.TimeSample) []model.SlidingWindow {
	run := inRun(glucose)
	if len(run) < 2 {
		return nil
	}

	first := run[0].Offset
	last := run[len(run)-1].Offset
	if last-first < e.MinDurationSec {
		return nil
	}

	var windows []model.SlidingWindow
	for start := first; start+e.WindowSec <= last; start += e.StepSec {
		end := start + e.WindowSec

		g := samplesIn(run, start, end)
		if len(g) < e.MinGlucoseSamples {
			continue
		}

		windows = append(windows, model.SlidingWindow{
			StartOffset:          start,
			EndOffset:            end,
			AvgHR:                average(samplesIn(hr, start, end)),
			AvgPace:              average(samplesIn(pace, start, end)),
			GlucoseStart:         g[0].Value,
			GlucoseSlopePer10Min: SlopePer10Min(g),
			GlucoseSamples:       len(g),
		})
	}
	return windows
}

// EntrySlope returns the glucose trend over the ~30 minutes before the run
// start (offsets in [-30min, 0]), in mmol/L per 10 min. Nil when fewer than
// two pre-start samples exist.
func EntrySlope(glucose []model.TimeSample) *float64 {
	var pre []model.TimeSample
	for _, s := range glucose {
		if s.Offset >= -30*60 && s.Offset <= 0 {
			pre = append(pre, s)
		}
	}
	if len(pre) < 2 {
		return nil
	}
	slope := SlopePer10Min(pre)
	return &slope
}

// SlopePer10Min fits a least-squares line to the samples and returns its
// slope scaled to value units per 10 minutes. A degenerate series (all
// samples at one offset) yields 0.
func SlopePer10Min(samples []model.TimeSample) float64 {
	if len(samples) < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for _, s := range samples {
		x := float64(s.Offset) / 60 // minutes
		sumX += x
		sumY += s.Value
		sumXY += x * s.Value
		sumXX += x * x
	}

	n := float64(len(samples))
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}

	perMinute := (n*sumXY - sumX*sumY) / denom
	return perMinute * 10
}

// inRun drops pre-start samples (negative offsets) from a series.
func inRun(samples []model.TimeSample) []model.TimeSample {
	for i, s := range samples {
		if s.Offset >= 0 {
			return samples[i:]
		}
	}
	return nil
}

// samplesIn returns the samples with offset in [start, end).
func samplesIn(samples []model.TimeSample, start, end int) []model.TimeSample {
	var out []model.TimeSample
	for _, s := range samples {
		if s.Offset >= start && s.Offset < end {
			out = append(out, s)
		}
	}
	return out
}

func average(samples []model.TimeSample) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s.Value
	}
	return sum / float64(len(samples))
}
