package bgmodel

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/psjostrom/springa/internal/model"
)

func obs(activity string, cat model.Category, band model.StartBand, rate, fuel float64) model.BGObservation {
	return model.BGObservation{
		ActivityID:   activity,
		Category:     cat,
		StartBand:    band,
		EntrySlope:   model.SlopeStable,
		HRZone:       model.Zone2,
		RatePer10Min: rate,
		FuelRate:     fuel,
		ElapsedMin:   10,
	}
}

func TestBuild_CategoryAndBandStats(t *testing.T) {
	observations := []model.BGObservation{
		obs("a1", model.CategoryEasy, model.Band8to10, -1.0, 30),
		obs("a1", model.CategoryEasy, model.Band8to10, -0.5, 30),
		obs("a2", model.CategoryEasy, model.BandBelow8, -1.5, 30),
	}

	m := NewBuilder(DefaultConfig(), nil).Build(observations)

	if m.ActivitiesAnalyzed != 2 {
		t.Errorf("activities analyzed = %d, want 2", m.ActivitiesAnalyzed)
	}

	easy := m.Categories[model.CategoryEasy]
	if easy == nil {
		t.Fatal("expected easy category stats")
	}
	if easy.SampleCount != 3 || easy.ActivityCount != 2 {
		t.Errorf("easy counts = %d samples / %d activities, want 3/2",
			easy.SampleCount, easy.ActivityCount)
	}
	if math.Abs(easy.AvgRate-(-1.0)) > 1e-9 {
		t.Errorf("easy avg = %.4f, want -1.0", easy.AvgRate)
	}
	if easy.MedianRate != -1.0 {
		t.Errorf("easy median = %.4f, want -1.0", easy.MedianRate)
	}
	if easy.Confidence != model.ConfidenceLow {
		t.Errorf("easy confidence = %s, want low", easy.Confidence)
	}

	if m.Categories[model.CategoryInterval] != nil {
		t.Error("expected no interval stats for empty category")
	}

	band := m.StartLevelStats(model.Band8to10)
	if band == nil {
		t.Fatal("expected 8-10 band stats")
	}
	if band.SampleCount != 2 {
		t.Errorf("band samples = %d, want 2", band.SampleCount)
	}
}

func TestBuild_ConfidenceTiers(t *testing.T) {
	cases := []struct {
		activities int
		want       model.Confidence
	}{
		{4, model.ConfidenceLow},
		{5, model.ConfidenceMedium},
		{9, model.ConfidenceMedium},
		{10, model.ConfidenceHigh},
	}

	for _, tc := range cases {
		var observations []model.BGObservation
		for i := 0; i < tc.activities; i++ {
			observations = append(observations,
				obs(fmt.Sprintf("a%d", i), model.CategoryEasy, model.Band8to10, -1.0, 30))
		}

		m := NewBuilder(DefaultConfig(), nil).Build(observations)
		if got := m.Categories[model.CategoryEasy].Confidence; got != tc.want {
			t.Errorf("%d activities: confidence = %s, want %s", tc.activities, got, tc.want)
		}
	}
}

func TestBuild_Idempotent(t *testing.T) {
	observations := []model.BGObservation{
		obs("a1", model.CategoryEasy, model.Band8to10, -1.2, 20),
		obs("a2", model.CategoryLong, model.Band10to12, -0.8, 40),
		obs("a3", model.CategoryInterval, model.BandBelow8, 0.4, 60),
	}

	b := NewBuilder(DefaultConfig(), nil)
	first := b.Build(observations)
	second := b.Build(observations)

	first.BuiltAt = second.BuiltAt
	if !reflect.DeepEqual(first, second) {
		t.Error("rebuilding from identical observations produced different models")
	}
}

func TestTargetFuel_Regression(t *testing.T) {
	// Two fuel groups with three observations each: 20 g/h averaging
	// -1.15 and 40 g/h averaging -0.15. The fit crosses the target band
	// midpoint (-0.15) at exactly 40 g/h.
	var observations []model.BGObservation
	for i, rate := range []float64{-1.2, -1.15, -1.1} {
		observations = append(observations,
			obs(fmt.Sprintf("lo%d", i), model.CategoryLong, model.Band8to10, rate, 20))
	}
	for i, rate := range []float64{-0.2, -0.15, -0.1} {
		observations = append(observations,
			obs(fmt.Sprintf("hi%d", i), model.CategoryLong, model.Band8to10, rate, 40))
	}

	m := NewBuilder(DefaultConfig(), nil).Build(observations)

	target := m.TargetFuelFor(model.CategoryLong)
	if target == nil {
		t.Fatal("expected a long target fuel rate")
	}
	if target.Method != model.MethodRegression {
		t.Fatalf("method = %s, want regression", target.Method)
	}
	if math.Abs(target.TargetFuelRate-40) > 1e-6 {
		t.Errorf("target fuel = %.2f, want 40", target.TargetFuelRate)
	}
	if math.Abs(target.CurrentAvgFuel-30) > 1e-9 {
		t.Errorf("current avg fuel = %.2f, want 30", target.CurrentAvgFuel)
	}
}

func TestTargetFuel_ExtrapolationWhenSparse(t *testing.T) {
	// A single fuel group: no regression possible. Observed -1.15 per
	// 10 min at 20 g/h; the nudge toward -0.15 adds 1.0 * FuelPerMmol.
	var observations []model.BGObservation
	for i, rate := range []float64{-1.2, -1.15, -1.1} {
		observations = append(observations,
			obs(fmt.Sprintf("a%d", i), model.CategoryEasy, model.Band8to10, rate, 20))
	}

	m := NewBuilder(DefaultConfig(), nil).Build(observations)

	target := m.TargetFuelFor(model.CategoryEasy)
	if target == nil {
		t.Fatal("expected an easy target fuel rate")
	}
	if target.Method != model.MethodExtrapolation {
		t.Fatalf("method = %s, want extrapolation", target.Method)
	}
	if math.Abs(target.TargetFuelRate-30) > 1e-6 {
		t.Errorf("target fuel = %.2f, want 30", target.TargetFuelRate)
	}
}

func TestTargetFuel_ExtrapolationNeverNegative(t *testing.T) {
	// Glucose rising while fueling: the nudge pushes fuel down, clamped
	// at zero.
	observations := []model.BGObservation{
		obs("a1", model.CategoryEasy, model.Band8to10, 1.0, 5),
		obs("a2", model.CategoryEasy, model.Band8to10, 1.2, 5),
	}

	m := NewBuilder(DefaultConfig(), nil).Build(observations)

	target := m.TargetFuelFor(model.CategoryEasy)
	if target == nil {
		t.Fatal("expected a target")
	}
	if target.TargetFuelRate < 0 {
		t.Errorf("target fuel = %.2f, want >= 0", target.TargetFuelRate)
	}
}

func TestBuild_TimeBuckets(t *testing.T) {
	observations := []model.BGObservation{
		obs("a1", model.CategoryEasy, model.Band8to10, -1.0, 30),
	}
	observations[0].ElapsedMin = 50

	m := NewBuilder(DefaultConfig(), nil).Build(observations)

	if len(m.ByTime) != 1 {
		t.Fatalf("expected 1 time bucket, got %d", len(m.ByTime))
	}
	if m.ByTime[0].Bucket != "45+" {
		t.Errorf("bucket = %s, want 45+", m.ByTime[0].Bucket)
	}
}
