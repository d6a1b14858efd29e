package intervals

import (
	"strings"
	"time"

	"github.com/psjostrom/springa/internal/model"
)

// Activity is one completed activity as returned by the API.
type Activity struct {
	ID            string    `json:"id"`
	StartDate     time.Time `json:"start_date"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	MovingTime    int       `json:"moving_time"`
	AverageHR     float64   `json:"average_heartrate"`
	ZoneTimes     []float64 `json:"icu_zone_times"`
	CarbsIngested float64   `json:"carbs_ingested"`
	CarbsPlanned  float64   `json:"carbs_planned"`
	WorkoutDoc    string    `json:"description"`
}

// Event is one planned calendar event.
type Event struct {
	ID            int       `json:"id"`
	StartDate     time.Time `json:"start_date_local"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	MovingTime    int       `json:"moving_time"`
	CarbsPlanned  float64   `json:"carbs_planned"`
	FuelRatePerHr float64   `json:"fuel_rate"`
}

// EventUpdate is the writable subset sent on update.
type EventUpdate struct {
	Description  string  `json:"description"`
	CarbsPlanned float64 `json:"carbs_planned"`
}

// Athlete holds the zone-relevant settings.
type Athlete struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	LTHR      float64 `json:"lthr"`
	MaxHR     float64 `json:"max_hr"`
	RestingHR float64 `json:"resting_hr"`
}

// Streams is the per-channel sample data for one activity. Channels the
// activity lacks come back as empty arrays.
type Streams struct {
	Time      []int     `json:"time"`
	HR        []float64 `json:"heartrate"`
	Velocity  []float64 `json:"velocity_smooth"`
	Cadence   []float64 `json:"cadence"`
	Altitude  []float64 `json:"altitude"`
	Glucose   []float64 `json:"glucose"`
	GlucoseMg []float64 `json:"bg_mgdl"`
}

// CategoryForEvent maps the platform's naming onto the fixed category
// enumeration. Unrecognized names default to easy.
func CategoryForEvent(name, category string) model.Category {
	if category != "" {
		return model.ParseCategory(strings.ToLower(category))
	}
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "race"):
		return model.CategoryRace
	case strings.Contains(lower, "interval"), strings.Contains(lower, "x "), strings.Contains(lower, "threshold"):
		return model.CategoryInterval
	case strings.Contains(lower, "long"):
		return model.CategoryLong
	default:
		return model.CategoryEasy
	}
}
