package readiness

import (
	"fmt"
	"strings"

	"github.com/gen2brain/beeep"
)

// Notify raises a desktop notification for the guidance. Used by the watch
// loop so a wait or caution state is visible without a terminal open.
func Notify(g Guidance) error {
	title := fmt.Sprintf("Readiness: %s", g.Level)
	body := strings.Join(g.Reasons, ". ")
	if body == "" {
		body = "Good to go."
	}
	if len(g.Suggestions) > 0 {
		body += "\n" + strings.Join(g.Suggestions, ". ")
	}
	if err := beeep.Notify(title, body, ""); err != nil {
		return fmt.Errorf("sending readiness notification: %w", err)
	}
	return nil
}
