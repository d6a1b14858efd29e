package ai

import (
	"time"

	"github.com/psjostrom/springa/internal/model"
)

// NoteRequest carries everything the text generator needs to write one
// coaching note for one adapted event.
type NoteRequest struct {
	Category    model.Category
	Date        time.Time
	Description string
	FuelRate    float64 // g/h after adaptation
	Changes     []string

	RecentRuns []RunSummary
	Stats      *model.CategoryStats
	TargetFuel *model.TargetFuelRate
	Load       model.TrainingLoad
	Feedback   []model.Feedback
}

// RunSummary condenses one recent same-category completed run for prompt
// context.
type RunSummary struct {
	Date         time.Time
	Description  string
	BGRatePer10  float64
	FuelRate     float64
	MinGlucose   float64
}

type noteReply struct {
	Note string `json:"note" jsonschema:"description=Two to four sentences of coaching advice for this workout"`
}
