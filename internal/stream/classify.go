package stream

import "github.com/psjostrom/springa/internal/model"

// Classifier labels sliding windows with the fixed enumerations the model
// builder aggregates over. Zone boundaries come from the athlete's settings.
type Classifier struct {
	Zones       model.ZoneBoundaries
	SlopeCutoff float64 // mmol/L per 10 min; ±cutoff bounds the stable bucket
}

// NewClassifier returns a classifier with the standard ±0.3 slope cutoff.
func NewClassifier(zones model.ZoneBoundaries) Classifier {
	return Classifier{Zones: zones, SlopeCutoff: 0.3}
}

// Observations maps each window of a completed event onto a BGObservation.
// The entry-slope bucket is shared by all windows of one activity: it
// classifies the trend immediately preceding the run start. Events whose
// pre-start trend is unknown are classified as stable.
func (c Classifier) Observations(ev model.CompletedEvent, windows []model.SlidingWindow) []model.BGObservation {
	entry := model.SlopeStable
	if slope := EntrySlope(ev.Glucose); slope != nil {
		entry = model.BucketForSlope(*slope, c.SlopeCutoff)
	}

	out := make([]model.BGObservation, 0, len(windows))
	for _, w := range windows {
		out = append(out, model.BGObservation{
			ActivityID:   ev.ID,
			Category:     ev.Category,
			StartBand:    model.BandFor(w.GlucoseStart),
			EntrySlope:   entry,
			HRZone:       c.Zones.ZoneFor(w.AvgHR),
			RatePer10Min: w.GlucoseSlopePer10Min,
			FuelRate:     ev.FuelRate,
			ElapsedMin:   w.StartOffset / 60,
			Timestamp:    ev.Start,
		})
	}
	return out
}
