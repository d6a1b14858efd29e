package intervals

import (
	"fmt"

	"github.com/psjostrom/springa/internal/model"
	"github.com/psjostrom/springa/internal/stream"
)

// ToCompletedEvent combines an activity with its streams into the shape the
// analysis pipeline consumes. Pace comes out of the raw velocity channel
// via the aligner; glucose prefers the native mmol/L channel and falls back
// to converting mg/dL.
func ToCompletedEvent(act Activity, streams *Streams) model.CompletedEvent {
	ev := model.CompletedEvent{
		ID:           act.ID,
		Start:        act.StartDate,
		Category:     CategoryForEvent(act.Name, ""),
		DurationSec:  act.MovingTime,
		PlannedCarbs: act.CarbsPlanned,
		ActualCarbs:  act.CarbsIngested,
	}

	if act.MovingTime > 0 && act.CarbsIngested > 0 {
		ev.FuelRate = act.CarbsIngested / (float64(act.MovingTime) / 3600)
	}

	for i, sec := range act.ZoneTimes {
		if i >= len(ev.ZoneSeconds) {
			break
		}
		ev.ZoneSeconds[i] = sec
	}

	if streams == nil {
		return ev
	}

	ev.HR = channelSamples(streams.Time, streams.HR)

	glucose := streams.Glucose
	if len(glucose) == 0 && len(streams.GlucoseMg) > 0 {
		glucose = make([]float64, len(streams.GlucoseMg))
		for i, mgdl := range streams.GlucoseMg {
			glucose[i] = model.MmolFromMgdl(mgdl)
		}
	}
	ev.Glucose = channelSamples(streams.Time, glucose)

	aligned := stream.Align(stream.Raw{
		Velocity: channelSamples(streams.Time, streams.Velocity),
		Cadence:  channelSamples(streams.Time, streams.Cadence),
	})
	ev.Pace = aligned.Pace

	return ev
}

// ToPlannedEvent maps a calendar event onto the planner's shape. The fuel
// rate falls back to planned carbs spread over the planned duration.
func ToPlannedEvent(e Event) model.PlannedEvent {
	fuel := e.FuelRatePerHr
	if fuel == 0 && e.MovingTime > 0 && e.CarbsPlanned > 0 {
		fuel = e.CarbsPlanned / (float64(e.MovingTime) / 3600)
	}
	return model.PlannedEvent{
		ID:          fmt.Sprintf("%d", e.ID),
		Category:    CategoryForEvent(e.Name, e.Category),
		Date:        e.StartDate,
		FuelRate:    fuel,
		Description: e.Description,
		DurationSec: e.MovingTime,
	}
}

// channelSamples zips the shared time axis with one value channel. Channels
// shorter than the time axis are truncated to their own length.
func channelSamples(offsets []int, values []float64) []model.TimeSample {
	n := len(values)
	if len(offsets) < n {
		n = len(offsets)
	}
	samples := make([]model.TimeSample, 0, n)
	for i := 0; i < n; i++ {
		samples = append(samples, model.TimeSample{Offset: offsets[i], Value: values[i]})
	}
	return samples
}
