// Package bgmodel aggregates glucose observations into the BG response
// model: per-category, per-band, and per-slope statistics plus derived
// target fuel rates.
package bgmodel

import (
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/psjostrom/springa/internal/model"
)

// Config holds the aggregation policy constants. They are observed working
// values, not first principles; revisit as the analyzed history grows.
type Config struct {
	MediumConfidenceMin int // distinct activities for medium confidence
	HighConfidenceMin   int // distinct activities for high confidence
	MinFuelGroups       int // distinct fuel-rate groups required to regress
	MinGroupSamples     int // observations per group required to regress
	TargetRateLow       float64 // mild-stable band, mmol/L per 10 min
	TargetRateHigh      float64
	FuelPerMmol         float64 // g/h of fuel per 1 mmol/10min, for extrapolation
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MediumConfidenceMin: 5,
		HighConfidenceMin:   10,
		MinFuelGroups:       2,
		MinGroupSamples:     3,
		TargetRateLow:       -0.3,
		TargetRateHigh:      0,
		FuelPerMmol:         10,
	}
}

// Builder rebuilds the full BG response model from an observation set.
type Builder struct {
	cfg    Config
	logger *slog.Logger
}

func NewBuilder(cfg Config, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Builder{cfg: cfg, logger: logger}
}

// Build is a pure fold over the complete observation set. Identical input
// produces identical output; no state survives between calls.
func (b *Builder) Build(observations []model.BGObservation) *model.BGResponseModel {
	m := &model.BGResponseModel{
		Categories:   make(map[model.Category]*model.CategoryStats),
		Observations: observations,
		BuiltAt:      time.Now(),
	}

	activities := make(map[string]bool)
	for _, o := range observations {
		activities[o.ActivityID] = true
	}
	m.ActivitiesAnalyzed = len(activities)

	for _, cat := range model.Categories {
		var group []model.BGObservation
		for _, o := range observations {
			if o.Category == cat {
				group = append(group, o)
			}
		}
		if len(group) == 0 {
			continue
		}
		s := b.bucketStats(string(cat), group)
		m.Categories[cat] = &model.CategoryStats{
			Category:      cat,
			AvgRate:       s.AvgRate,
			MedianRate:    s.MedianRate,
			SampleCount:   s.SampleCount,
			ActivityCount: s.ActivityCount,
			Confidence:    s.Confidence,
		}
	}

	for _, band := range model.StartBands {
		var group []model.BGObservation
		for _, o := range observations {
			if o.StartBand == band {
				group = append(group, o)
			}
		}
		if len(group) == 0 {
			continue
		}
		m.ByStartLevel = append(m.ByStartLevel, b.bucketStats(string(band), group))
	}

	for _, bucket := range model.SlopeBuckets {
		var group []model.BGObservation
		for _, o := range observations {
			if o.EntrySlope == bucket {
				group = append(group, o)
			}
		}
		if len(group) == 0 {
			continue
		}
		m.ByEntrySlope = append(m.ByEntrySlope, b.bucketStats(string(bucket), group))
	}

	for _, tb := range timeBuckets {
		var group []model.BGObservation
		for _, o := range observations {
			if tb.contains(o.ElapsedMin) {
				group = append(group, o)
			}
		}
		if len(group) == 0 {
			continue
		}
		m.ByTime = append(m.ByTime, b.bucketStats(tb.label, group))
	}

	m.TargetFuelRates = b.targetFuelRates(observations)

	b.logger.Debug("model rebuilt",
		"observations", len(observations),
		"activities", m.ActivitiesAnalyzed,
		"categories", len(m.Categories),
		"fuel_targets", len(m.TargetFuelRates),
	)

	return m
}

type timeBucket struct {
	label    string
	fromMin  int
	toMin    int // exclusive; -1 means open-ended
}

func (t timeBucket) contains(min int) bool {
	if min < t.fromMin {
		return false
	}
	return t.toMin < 0 || min < t.toMin
}

var timeBuckets = []timeBucket{
	{"0-15", 0, 15},
	{"15-30", 15, 30},
	{"30-45", 30, 45},
	{"45+", 45, -1},
}

func (b *Builder) bucketStats(label string, group []model.BGObservation) model.BucketStats {
	rates := make([]float64, len(group))
	activities := make(map[string]bool)
	var sum float64
	for i, o := range group {
		rates[i] = o.RatePer10Min
		sum += o.RatePer10Min
		activities[o.ActivityID] = true
	}

	return model.BucketStats{
		Bucket:        label,
		AvgRate:       sum / float64(len(group)),
		MedianRate:    median(rates),
		SampleCount:   len(group),
		ActivityCount: len(activities),
		Confidence:    b.confidence(len(activities)),
	}
}

func (b *Builder) confidence(activityCount int) model.Confidence {
	switch {
	case activityCount >= b.cfg.HighConfidenceMin:
		return model.ConfidenceHigh
	case activityCount >= b.cfg.MediumConfidenceMin:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
