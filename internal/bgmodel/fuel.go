package bgmodel

import (
	"math"
	"sort"

	"github.com/psjostrom/springa/internal/model"
)

// targetFuelRates derives a fueling recommendation per category. When the
// history covers enough distinct fuel rates, the fuel→rate relationship is
// regressed and solved for the mild-stable target; otherwise the single
// best-populated fuel group is nudged toward the target.
func (b *Builder) targetFuelRates(observations []model.BGObservation) []model.TargetFuelRate {
	var targets []model.TargetFuelRate

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

		activities := make(map[string]bool)
		var fuelSum float64
		for _, o := range group {
			activities[o.ActivityID] = true
			fuelSum += o.FuelRate
		}
		currentAvg := fuelSum / float64(len(group))

		target, method := b.solveTargetFuel(group)
		targets = append(targets, model.TargetFuelRate{
			Category:       cat,
			TargetFuelRate: target,
			CurrentAvgFuel: currentAvg,
			Method:         method,
			Confidence:     b.confidence(len(activities)),
		})

		b.logger.Debug("target fuel derived",
			"category", cat,
			"target_g_per_h", target,
			"current_avg", currentAvg,
			"method", method,
		)
	}

	return targets
}

type fuelGroup struct {
	fuel    float64
	avgRate float64
	count   int
}

func (b *Builder) solveTargetFuel(group []model.BGObservation) (float64, model.FuelMethod) {
	targetMid := (b.cfg.TargetRateLow + b.cfg.TargetRateHigh) / 2

	groups := groupByFuel(group)
	var qualified []fuelGroup
	for _, g := range groups {
		if g.count >= b.cfg.MinGroupSamples {
			qualified = append(qualified, g)
		}
	}

	if len(qualified) >= b.cfg.MinFuelGroups {
		if fuel, ok := regressFuel(qualified, targetMid); ok {
			return fuel, model.MethodRegression
		}
	}

	// Sparse data: extrapolate from the best-populated group, nudging its
	// fuel rate in proportion to the deviation from the target band.
	best := groups[0]
	for _, g := range groups[1:] {
		if g.count > best.count {
			best = g
		}
	}
	fuel := best.fuel + (targetMid-best.avgRate)*b.cfg.FuelPerMmol
	return math.Max(0, fuel), model.MethodExtrapolation
}

// groupByFuel buckets observations by the fuel rate used in their parent
// activity, rounded to the nearest g/h.
func groupByFuel(observations []model.BGObservation) []fuelGroup {
	sums := make(map[float64]float64)
	counts := make(map[float64]int)
	for _, o := range observations {
		key := math.Round(o.FuelRate)
		sums[key] += o.RatePer10Min
		counts[key]++
	}

	groups := make([]fuelGroup, 0, len(sums))
	for fuel, sum := range sums {
		groups = append(groups, fuelGroup{
			fuel:    fuel,
			avgRate: sum / float64(counts[fuel]),
			count:   counts[fuel],
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].fuel < groups[j].fuel })
	return groups
}

// regressFuel fits an unweighted line through (fuel, avgRate) group points
// and solves for the fuel rate hitting the target rate. Returns false when
// the fit is degenerate or the solution is outside a sane fueling range.
func regressFuel(groups []fuelGroup, targetRate float64) (float64, bool) {
	var sumX, sumY, sumXY, sumXX float64
	for _, g := range groups {
		sumX += g.fuel
		sumY += g.avgRate
		sumXY += g.fuel * g.avgRate
		sumXX += g.fuel * g.fuel
	}

	n := float64(len(groups))
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, false
	}

	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n
	if slope <= 0 {
		// More fuel should raise the rate; a non-positive fit means the
		// groups do not separate cleanly.
		return 0, false
	}

	fuel := (targetRate - intercept) / slope
	if fuel < 0 || fuel > 150 {
		return 0, false
	}
	return fuel, true
}
