package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/psjostrom/springa/internal/adapt"
	"github.com/psjostrom/springa/internal/model"
	"github.com/psjostrom/springa/internal/workout"
)

func TestFromAdaptedAndWrite(t *testing.T) {
	result := &adapt.Result{
		RunID: "run-1",
		Events: []adapt.AdaptedEvent{
			{
				Event: model.PlannedEvent{
					ID:          "ev1",
					Category:    model.CategoryLong,
					Date:        time.Date(2026, 4, 5, 8, 0, 0, 0, time.UTC),
					DurationSec: 7200,
				},
				FuelRate:  55,
				Structure: workout.Parse("2h easy @ Z2"),
				Notes:     "Fuel from the start.",
			},
		},
	}

	events := FromAdapted(result)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].UID != "run-1-ev1@springa" {
		t.Errorf("uid = %q", events[0].UID)
	}
	if events[0].Duration != 2*time.Hour {
		t.Errorf("duration = %v, want 2h", events[0].Duration)
	}

	var buf bytes.Buffer
	if err := Write(&buf, events); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"BEGIN:VEVENT",
		"SUMMARY:long run (55 g/h)",
		"END:VCALENDAR",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "Fuel from the start.") {
		t.Errorf("output missing the note:\n%s", out)
	}
}
