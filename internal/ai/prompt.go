package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// replySchema is the JSON schema the model is asked to answer with,
// generated once from the reply struct.
var replySchema = func() string {
	r := jsonschema.Reflector{DoNotReference: true}
	data, err := json.Marshal(r.Reflect(&noteReply{}))
	if err != nil {
		panic(fmt.Sprintf("reflecting note schema: %v", err))
	}
	return string(data)
}()

func buildSystemPrompt() string {
	return fmt.Sprintf(`You are a running coach for an athlete managing type-1 diabetes.
You write short, practical notes for upcoming workouts: pacing advice, fueling reminders, and what the athlete's glucose history suggests for this session.

Rules:
- 2 to 4 sentences, plain text, no markdown
- Glucose values are in mmol/L, fuel rates in g/h
- If the workout was changed, explain the change in one sentence
- Never give medical advice beyond fueling and pacing
- Respond with valid JSON matching this schema:
%s`, replySchema)
}

func buildUserPrompt(req NoteRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Upcoming %s workout on %s: %s\n",
		req.Category, req.Date.Format("Monday Jan 2"), req.Description)
	fmt.Fprintf(&b, "Planned fuel: %.0f g/h\n", req.FuelRate)

	if len(req.Changes) > 0 {
		b.WriteString("Changes made by the planner:\n")
		for _, c := range req.Changes {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}

	if req.Stats != nil {
		fmt.Fprintf(&b, "Glucose response for %s runs: avg %.1f mmol/10min over %d runs (%s confidence)\n",
			req.Category, req.Stats.AvgRate, req.Stats.ActivityCount, req.Stats.Confidence)
	}
	if req.TargetFuel != nil {
		fmt.Fprintf(&b, "Target fuel for this category: %.0f g/h (currently averaging %.0f, derived by %s)\n",
			req.TargetFuel.TargetFuelRate, req.TargetFuel.CurrentAvgFuel, req.TargetFuel.Method)
	}

	fmt.Fprintf(&b, "Training load: CTL %.0f, ATL %.0f, TSB %.0f, HR ramp %.1f bpm/week\n",
		req.Load.CTL, req.Load.ATL, req.Load.TSB, req.Load.RampRate)

	if len(req.RecentRuns) > 0 {
		b.WriteString("Recent runs of the same category:\n")
		for _, r := range req.RecentRuns {
			fmt.Fprintf(&b, "- %s: %s, BG %.1f mmol/10min at %.0f g/h, low %.1f\n",
				r.Date.Format("Jan 2"), r.Description, r.BGRatePer10, r.FuelRate, r.MinGlucose)
		}
	}

	if len(req.Feedback) > 0 {
		b.WriteString("Recent subjective feedback:\n")
		for _, f := range req.Feedback {
			fmt.Fprintf(&b, "- %s (%s): effort %d/5, felt %s", f.Date.Format("Jan 2"), f.Category, f.Effort, f.Felt)
			if f.Note != "" {
				fmt.Fprintf(&b, " — %s", f.Note)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// parseReply extracts the note text from the model's JSON reply, tolerating
// a fenced code block around it.
func parseReply(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var reply noteReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return "", fmt.Errorf("parsing note reply: %w", err)
	}
	if strings.TrimSpace(reply.Note) == "" {
		return "", fmt.Errorf("note reply is empty")
	}
	return strings.TrimSpace(reply.Note), nil
}
