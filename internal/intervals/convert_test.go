package intervals

import (
	"testing"
	"time"

	"github.com/psjostrom/springa/internal/model"
)

func TestCategoryForEvent(t *testing.T) {
	tests := []struct {
		name     string
		category string
		want     model.Category
	}{
		{"Morning easy run", "", model.CategoryEasy},
		{"Long run", "", model.CategoryLong},
		{"6 x 3min threshold", "", model.CategoryInterval},
		{"Spring half marathon RACE", "", model.CategoryRace},
		{"Whatever", "interval", model.CategoryInterval},
		{"Unknown tag", "tempo", model.CategoryEasy},
	}
	for _, tt := range tests {
		if got := CategoryForEvent(tt.name, tt.category); got != tt.want {
			t.Errorf("CategoryForEvent(%q, %q) = %s, want %s", tt.name, tt.category, got, tt.want)
		}
	}
}

func TestToCompletedEvent(t *testing.T) {
	act := Activity{
		ID:            "i1",
		StartDate:     time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		Name:          "Long run",
		MovingTime:    7200,
		ZoneTimes:     []float64{600, 5400, 1200, 0, 0},
		CarbsIngested: 80,
		CarbsPlanned:  90,
	}
	streams := &Streams{
		Time:      []int{0, 60, 120},
		HR:        []float64{120, 135, 140},
		GlucoseMg: []float64{180.182, 162.1638, 144.1456},
		Velocity:  []float64{3.0, 3.2, 3.1},
	}

	ev := ToCompletedEvent(act, streams)
	if ev.Category != model.CategoryLong {
		t.Errorf("category = %s, want long", ev.Category)
	}
	if ev.FuelRate != 40 {
		t.Errorf("fuel rate = %v, want 40 g/h", ev.FuelRate)
	}
	if ev.ZoneSeconds[1] != 5400 {
		t.Errorf("Z2 seconds = %v, want 5400", ev.ZoneSeconds[1])
	}
	if len(ev.Glucose) != 3 {
		t.Fatalf("glucose samples = %d, want 3", len(ev.Glucose))
	}
	// mg/dL channel converted to mmol/L.
	if got := ev.Glucose[0].Value; got < 9.99 || got > 10.01 {
		t.Errorf("glucose[0] = %v, want ~10.0 mmol/L", got)
	}
	if len(ev.Pace) != 3 {
		t.Errorf("pace samples = %d, want 3", len(ev.Pace))
	}
}

func TestToCompletedEvent_NoStreams(t *testing.T) {
	ev := ToCompletedEvent(Activity{ID: "i2", Name: "easy"}, nil)
	if len(ev.Glucose) != 0 || len(ev.HR) != 0 || len(ev.Pace) != 0 {
		t.Errorf("expected empty streams, got %+v", ev)
	}
}

func TestToPlannedEvent_FuelFallback(t *testing.T) {
	ev := ToPlannedEvent(Event{
		ID:           42,
		Name:         "Long run",
		StartDate:    time.Date(2026, 2, 8, 9, 0, 0, 0, time.UTC),
		Description:  "90min easy @ Z2",
		MovingTime:   5400,
		CarbsPlanned: 60,
	})
	if ev.ID != "42" {
		t.Errorf("id = %q, want 42", ev.ID)
	}
	if ev.FuelRate != 40 {
		t.Errorf("fuel rate = %v, want 40 g/h", ev.FuelRate)
	}
	if ev.Category != model.CategoryLong {
		t.Errorf("category = %s, want long", ev.Category)
	}
}
