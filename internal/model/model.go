// Package model contains the data structures shared across the analysis
// pipeline. Glucose is always expressed in mmol/L internally; upstream mg/dL
// values are converted at the boundary.
package model

import "time"

const mgdlPerMmol = 18.0182

// MmolFromMgdl converts a glucose value from mg/dL to mmol/L.
func MmolFromMgdl(v float64) float64 {
	return v / mgdlPerMmol
}

// Category is the workout type of a planned or completed event.
type Category string

const (
	CategoryEasy     Category = "easy"
	CategoryLong     Category = "long"
	CategoryInterval Category = "interval"
	CategoryRace     Category = "race"
)

// Categories lists all workout categories in canonical order.
var Categories = []Category{CategoryEasy, CategoryLong, CategoryInterval, CategoryRace}

// ParseCategory maps a free-form workout type string onto a Category,
// defaulting to easy for anything unrecognized.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryLong, CategoryInterval, CategoryRace:
		return Category(s)
	default:
		return CategoryEasy
	}
}

// StartBand is a fixed glucose-value bucket used for grouping observations
// by starting level. Bands are lower-inclusive.
type StartBand string

const (
	BandBelow8 StartBand = "<8"
	Band8to10  StartBand = "8-10"
	Band10to12 StartBand = "10-12"
	BandAbove12 StartBand = "12+"
)

// StartBands lists the bands in ascending glucose order.
var StartBands = []StartBand{BandBelow8, Band8to10, Band10to12, BandAbove12}

// BandFor buckets a glucose value (mmol/L) into its start-level band.
func BandFor(glucose float64) StartBand {
	switch {
	case glucose < 8:
		return BandBelow8
	case glucose < 10:
		return Band8to10
	case glucose < 12:
		return Band10to12
	default:
		return BandAbove12
	}
}

// SlopeBucket classifies a glucose trend (mmol/L per 10 min).
type SlopeBucket string

const (
	SlopeDropping SlopeBucket = "dropping"
	SlopeStable   SlopeBucket = "stable"
	SlopeRising   SlopeBucket = "rising"
)

// SlopeBuckets lists the buckets in canonical order.
var SlopeBuckets = []SlopeBucket{SlopeDropping, SlopeStable, SlopeRising}

// BucketForSlope classifies a trend slope against the given cutoff:
// below -cutoff is dropping, above +cutoff is rising, everything in between
// (boundaries included) is stable.
func BucketForSlope(slopePer10Min, cutoff float64) SlopeBucket {
	switch {
	case slopePer10Min < -cutoff:
		return SlopeDropping
	case slopePer10Min > cutoff:
		return SlopeRising
	default:
		return SlopeStable
	}
}

// HRZone is a heart-rate training zone, Z1 through Z5.
type HRZone int

const (
	Zone1 HRZone = iota + 1
	Zone2
	Zone3
	Zone4
	Zone5
)

func (z HRZone) String() string {
	switch z {
	case Zone1:
		return "Z1"
	case Zone2:
		return "Z2"
	case Zone3:
		return "Z3"
	case Zone4:
		return "Z4"
	case Zone5:
		return "Z5"
	}
	return "Z?"
}

// ZoneBoundaries holds the upper HR limit of zones 1-4; anything at or above
// Z4Max is zone 5. Boundaries come from the athlete's settings, not from
// this subsystem.
type ZoneBoundaries struct {
	Z1Max float64
	Z2Max float64
	Z3Max float64
	Z4Max float64
}

// ZonesFromLTHR derives zone boundaries from lactate-threshold heart rate
// using the usual 85/90/95/100 percent splits.
func ZonesFromLTHR(lthr float64) ZoneBoundaries {
	return ZoneBoundaries{
		Z1Max: lthr * 0.85,
		Z2Max: lthr * 0.90,
		Z3Max: lthr * 0.95,
		Z4Max: lthr * 1.00,
	}
}

// ZoneFor returns the zone containing the given heart rate.
func (b ZoneBoundaries) ZoneFor(hr float64) HRZone {
	switch {
	case hr < b.Z1Max:
		return Zone1
	case hr < b.Z2Max:
		return Zone2
	case hr < b.Z3Max:
		return Zone3
	case hr < b.Z4Max:
		return Zone4
	default:
		return Zone5
	}
}

// Confidence grades how well-backed a derived statistic is, from the number
// of distinct activities behind it.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// FuelMethod tags how a target fuel rate was derived.
type FuelMethod string

const (
	MethodRegression    FuelMethod = "regression"
	MethodExtrapolation FuelMethod = "extrapolation"
)

// Rating is a three-tier report-card grade.
type Rating string

const (
	RatingGood Rating = "good"
	RatingOK   Rating = "ok"
	RatingBad  Rating = "bad"
)

// ReadinessLevel is the pre-run safety classification. Severity orders
// wait > caution > ready.
type ReadinessLevel string

const (
	LevelReady   ReadinessLevel = "ready"
	LevelCaution ReadinessLevel = "caution"
	LevelWait    ReadinessLevel = "wait"
)

// Severity returns the numeric severity of a level for max-comparison.
func (l ReadinessLevel) Severity() int {
	switch l {
	case LevelWait:
		return 2
	case LevelCaution:
		return 1
	}
	return 0
}

// TimeSample is one channel value at a time offset from activity start.
// Offsets can be negative for CGM readings recorded before the run began.
type TimeSample struct {
	Offset int     // seconds from activity start
	Value  float64
}

// SlidingWindow is one fixed-duration slice of an activity's aligned series.
type SlidingWindow struct {
	StartOffset          int // seconds
	EndOffset            int // seconds
	AvgHR                float64
	AvgPace              float64 // min/km, 0 when no pace samples
	GlucoseStart         float64 // mmol/L at window start
	GlucoseSlopePer10Min float64
	GlucoseSamples       int
}

// BGObservation is one qualifying window normalized for aggregation.
// Observations are immutable once created and retained on the model for
// audit.
type BGObservation struct {
	ActivityID   string
	Category     Category
	StartBand    StartBand
	EntrySlope   SlopeBucket
	HRZone       HRZone
	RatePer10Min float64
	FuelRate     float64 // g/h actually used in the parent activity
	ElapsedMin   int     // minutes into the run at window start
	Timestamp    time.Time
}

// CategoryStats aggregates observations for one workout category.
type CategoryStats struct {
	Category      Category
	AvgRate       float64
	MedianRate    float64
	SampleCount   int
	ActivityCount int
	Confidence    Confidence
}

// BucketStats aggregates observations for one grouping bucket (start band,
// entry slope, or elapsed-time range).
type BucketStats struct {
	Bucket        string
	AvgRate       float64
	MedianRate    float64
	SampleCount   int
	ActivityCount int
	Confidence    Confidence
}

// TargetFuelRate is the derived fueling recommendation for one category.
type TargetFuelRate struct {
	Category       Category
	TargetFuelRate float64 // g/h
	CurrentAvgFuel float64 // g/h
	Method         FuelMethod
	Confidence     Confidence
}

// BGResponseModel is the aggregate statistical model of glucose response to
// exercise. It is rebuilt wholesale from the full observation set on every
// recompute, never patched incrementally.
type BGResponseModel struct {
	Categories         map[Category]*CategoryStats
	Observations       []BGObservation
	ActivitiesAnalyzed int
	ByStartLevel       []BucketStats
	ByEntrySlope       []BucketStats
	ByTime             []BucketStats
	TargetFuelRates    []TargetFuelRate
	BuiltAt            time.Time
}

// StartLevelStats returns the stats for the given band, or nil when the
// model has no data for it.
func (m *BGResponseModel) StartLevelStats(band StartBand) *BucketStats {
	for i := range m.ByStartLevel {
		if m.ByStartLevel[i].Bucket == string(band) {
			return &m.ByStartLevel[i]
		}
	}
	return nil
}

// EntrySlopeStats returns the stats for the given slope bucket, or nil.
func (m *BGResponseModel) EntrySlopeStats(bucket SlopeBucket) *BucketStats {
	for i := range m.ByEntrySlope {
		if m.ByEntrySlope[i].Bucket == string(bucket) {
			return &m.ByEntrySlope[i]
		}
	}
	return nil
}

// TargetFuelFor returns the target fuel rate for the given category, or nil.
func (m *BGResponseModel) TargetFuelFor(cat Category) *TargetFuelRate {
	for i := range m.TargetFuelRates {
		if m.TargetFuelRates[i].Category == cat {
			return &m.TargetFuelRates[i]
		}
	}
	return nil
}

// CompletedEvent is a finished activity as supplied by the training
// platform, with streams already parsed and minute-aligned for glucose/HR.
type CompletedEvent struct {
	ID           string
	Start        time.Time
	Category     Category
	DurationSec  int
	Glucose      []TimeSample // mmol/L
	HR           []TimeSample
	Pace         []TimeSample // min/km
	ZoneSeconds  [5]float64   // time in Z1..Z5
	PlannedCarbs float64      // g
	ActualCarbs  float64      // g
	FuelRate     float64      // g/h actually consumed
}

// PlannedEvent is an upcoming workout on the calendar.
type PlannedEvent struct {
	ID          string
	Category    Category
	Date        time.Time
	FuelRate    float64 // g/h
	Description string
	DurationSec int
}

// GlucoseReading is one live CGM reading.
type GlucoseReading struct {
	Time       time.Time
	Mmol       float64
	TrendSlope *float64 // mmol/L per 10 min, nil when not enough recent data
}

// TrainingLoad carries the standard load metrics as of an adaptation run.
type TrainingLoad struct {
	CTL      float64
	ATL      float64
	TSB      float64
	RampRate float64 // 7-day HR ramp, bpm/week
}

// Feedback is one subjective post-run entry.
type Feedback struct {
	Date     time.Time
	Category Category
	Effort   int // 1 (trivial) .. 5 (maximal)
	Felt     string
	Note     string
}
