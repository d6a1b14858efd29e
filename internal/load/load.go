// Package load computes training-load metrics from completed activities:
// TRIMP per activity, CTL/ATL/TSB via exponential moving averages, and the
// 7-day heart-rate ramp rate.
package load

import (
	"math"
	"sort"
	"time"

	"github.com/psjostrom/springa/internal/model"
)

// HRParams anchors the load calculation to the athlete's heart-rate range.
type HRParams struct {
	RestingHR float64
	MaxHR     float64
}

// DefaultHRParams returns sensible defaults when nothing is configured.
func DefaultHRParams() HRParams {
	return HRParams{RestingHR: 50, MaxHR: 185}
}

// TRIMP calculates the Banister training impulse for one activity:
// duration (min) * HR-reserve ratio * e^(1.92 * ratio).
func TRIMP(durationSec int, avgHR float64, params HRParams) float64 {
	reserve := params.MaxHR - params.RestingHR
	if reserve <= 0 || avgHR <= 0 {
		return 0
	}

	ratio := (avgHR - params.RestingHR) / reserve
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	minutes := float64(durationSec) / 60
	return minutes * ratio * math.Exp(1.92*ratio)
}

// DailyLoad is the summed TRIMP of one calendar day.
type DailyLoad struct {
	Date  time.Time
	TRIMP float64
}

// FitnessPoint is CTL/ATL/TSB for one day.
type FitnessPoint struct {
	Date time.Time
	CTL  float64
	ATL  float64
	TSB  float64
}

// FitnessTrend folds daily loads into CTL (42-day EMA), ATL (7-day EMA) and
// their difference, filling missing days with zero load.
func FitnessTrend(daily []DailyLoad) []FitnessPoint {
	if len(daily) == 0 {
		return nil
	}

	sorted := make([]DailyLoad, len(daily))
	copy(sorted, daily)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	loadByDay := make(map[string]float64)
	for _, d := range sorted {
		loadByDay[d.Date.Format("2006-01-02")] += d.TRIMP
	}

	ctlDecay := 2.0 / (42.0 + 1.0)
	atlDecay := 2.0 / (7.0 + 1.0)

	start := sorted[0].Date.Truncate(24 * time.Hour)
	end := sorted[len(sorted)-1].Date.Truncate(24 * time.Hour)

	var points []FitnessPoint
	var ctl, atl float64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		trimp := loadByDay[d.Format("2006-01-02")]
		ctl += ctlDecay * (trimp - ctl)
		atl += atlDecay * (trimp - atl)
		points = append(points, FitnessPoint{Date: d, CTL: ctl, ATL: atl, TSB: ctl - atl})
	}
	return points
}

// FromEvents derives the current TrainingLoad from the completed history.
func FromEvents(events []model.CompletedEvent, params HRParams, now time.Time) model.TrainingLoad {
	var daily []DailyLoad
	for _, ev := range events {
		daily = append(daily, DailyLoad{
			Date:  ev.Start,
			TRIMP: TRIMP(ev.DurationSec, avgHR(ev), params),
		})
	}

	var out model.TrainingLoad
	if points := FitnessTrend(daily); len(points) > 0 {
		last := points[len(points)-1]
		out.CTL = last.CTL
		out.ATL = last.ATL
		out.TSB = last.TSB
	}
	out.RampRate = RampRate(events, now)
	return out
}

// RampRate compares the average easy-run heart rate of the last 7 days
// against the 7 days before that, in bpm/week. A rising value at constant
// effort signals accumulating fatigue. Zero when either window is empty.
func RampRate(events []model.CompletedEvent, now time.Time) float64 {
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	var recentSum, priorSum float64
	var recentN, priorN int
	for _, ev := range events {
		if ev.Category != model.CategoryEasy && ev.Category != model.CategoryLong {
			continue
		}
		hr := avgHR(ev)
		if hr == 0 {
			continue
		}
		switch {
		case ev.Start.After(weekAgo):
			recentSum += hr
			recentN++
		case ev.Start.After(twoWeeksAgo):
			priorSum += hr
			priorN++
		}
	}

	if recentN == 0 || priorN == 0 {
		return 0
	}
	return recentSum/float64(recentN) - priorSum/float64(priorN)
}

func avgHR(ev model.CompletedEvent) float64 {
	if len(ev.HR) == 0 {
		return 0
	}
	var sum float64
	for _, s := range ev.HR {
		sum += s.Value
	}
	return sum / float64(len(ev.HR))
}
