package adapt

import (
	"strings"

	"github.com/psjostrom/springa/internal/ai"
)

func buildNoteRequest(adapted AdaptedEvent, in Input) ai.NoteRequest {
	req := ai.NoteRequest{
		Category:    adapted.Event.Category,
		Date:        adapted.Event.Date,
		Description: adapted.Event.Description,
		FuelRate:    adapted.FuelRate,
		Load:        in.Load,
		Feedback:    in.Feedback,
	}
	for _, c := range adapted.Changes {
		req.Changes = append(req.Changes, c.Detail)
	}
	if in.Recent != nil {
		req.RecentRuns = in.Recent[adapted.Event.Category]
	}
	if in.Model != nil {
		req.Stats = in.Model.Categories[adapted.Event.Category]
		req.TargetFuel = in.Model.TargetFuelFor(adapted.Event.Category)
	}
	return req
}

// fallbackNote summarizes the changes when no generated note is available.
func fallbackNote(adapted AdaptedEvent) string {
	if len(adapted.Changes) == 0 {
		return "No changes."
	}
	details := make([]string, 0, len(adapted.Changes))
	for _, c := range adapted.Changes {
		details = append(details, capitalize(c.Detail)+".")
	}
	return strings.Join(details, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
