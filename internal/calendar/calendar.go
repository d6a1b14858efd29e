// Package calendar exports an adapted training plan as iCalendar so it can
// be subscribed to from any calendar app.
package calendar

import (
	"fmt"
	"io"
	"time"

	ical "github.com/emersion/go-ical"

	"github.com/psjostrom/springa/internal/adapt"
)

// Event is one exported calendar entry.
type Event struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	Duration    time.Duration
}

// FromAdapted turns an adaptation run into exportable events. The summary
// carries the category and fuel plan; the description carries the full
// workout text with notes.
func FromAdapted(result *adapt.Result) []Event {
	events := make([]Event, 0, len(result.Events))
	for _, ev := range result.Events {
		duration := time.Duration(ev.Event.DurationSec) * time.Second
		if duration == 0 {
			duration = time.Hour
		}
		events = append(events, Event{
			UID:         fmt.Sprintf("%s-%s@springa", result.RunID, ev.Event.ID),
			Summary:     fmt.Sprintf("%s run (%.0f g/h)", ev.Event.Category, ev.FuelRate),
			Description: ev.Description(),
			Start:       ev.Event.Date,
			Duration:    duration,
		})
	}
	return events
}

// Write encodes the events as a single VCALENDAR stream.
func Write(w io.Writer, events []Event) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//springa//training plan//EN")

	now := time.Now().UTC()
	for _, e := range events {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, e.UID)
		event.Props.SetDateTime(ical.PropDateTimeStamp, now)
		event.Props.SetDateTime(ical.PropDateTimeStart, e.Start)
		event.Props.SetDateTime(ical.PropDateTimeEnd, e.Start.Add(e.Duration))
		event.Props.SetText(ical.PropSummary, e.Summary)
		if e.Description != "" {
			event.Props.SetText(ical.PropDescription, e.Description)
		}
		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	return nil
}
