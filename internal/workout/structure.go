// Package workout parses planned-workout description text into typed
// segments and renders segments back to text, so the adaptation engine can
// swap and shorten workouts without losing their structure.
package workout

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/psjostrom/springa/internal/model"
)

// Segment is one block of a structured workout. Zone 0 means unspecified.
type Segment struct {
	Reps        int // 1 for a plain block
	DurationSec int // duration of one rep
	Zone        model.HRZone
	Label       string // "easy", "jog", freeform remainder
}

// TotalSec returns the segment's total duration across reps.
func (s Segment) TotalSec() int {
	reps := s.Reps
	if reps < 1 {
		reps = 1
	}
	return reps * s.DurationSec
}

var (
	repsRe     = regexp.MustCompile(`^(\d+)\s*[xX]\s*`)
	durationRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(h|hr|min|m|s)\b`)
	zoneRe     = regexp.MustCompile(`@\s*[zZ]([1-5])`)
)

// Parse splits a workout description like "6 x 3min @ Z4 + 2min jog" or
// "45min easy @ Z2" into segments. Parts it cannot understand become a
// single zero-duration segment carrying the raw text as label, so nothing
// is ever silently dropped.
func Parse(description string) []Segment {
	var segments []Segment
	for _, part := range strings.Split(description, "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		segments = append(segments, parsePart(part))
	}
	return segments
}

func parsePart(part string) Segment {
	seg := Segment{Reps: 1}
	rest := part

	if m := repsRe.FindStringSubmatch(rest); m != nil {
		seg.Reps, _ = strconv.Atoi(m[1])
		rest = strings.TrimSpace(rest[len(m[0]):])
		rest = strings.Trim(rest, "()")
		rest = strings.TrimSpace(rest)
	}

	if m := durationRe.FindStringSubmatch(rest); m != nil {
		value, _ := strconv.ParseFloat(m[1], 64)
		switch m[2] {
		case "h", "hr":
			seg.DurationSec = int(value * 3600)
		case "s":
			seg.DurationSec = int(value)
		default:
			seg.DurationSec = int(value * 60)
		}
		rest = strings.TrimSpace(rest[len(m[0]):])
	}

	if m := zoneRe.FindStringSubmatch(rest); m != nil {
		z, _ := strconv.Atoi(m[1])
		seg.Zone = model.HRZone(z)
		rest = strings.TrimSpace(strings.Replace(rest, m[0], "", 1))
	}

	seg.Label = strings.TrimSpace(rest)
	if seg.DurationSec == 0 && seg.Zone == 0 {
		// Nothing parseable: keep the whole part as a freeform label.
		seg.Label = part
		seg.Reps = 1
	}
	return seg
}

// TotalDuration sums all segments, in seconds.
func TotalDuration(segments []Segment) int {
	total := 0
	for _, s := range segments {
		total += s.TotalSec()
	}
	return total
}

// Render turns segments back into description text.
func Render(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, renderSegment(s))
	}
	return strings.Join(parts, " + ")
}

func renderSegment(s Segment) string {
	var b strings.Builder
	if s.Reps > 1 {
		fmt.Fprintf(&b, "%d x ", s.Reps)
	}
	if s.DurationSec > 0 {
		b.WriteString(formatDuration(s.DurationSec))
	}
	if s.Label != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(s.Label)
	}
	if s.Zone != 0 {
		fmt.Fprintf(&b, " @ %s", s.Zone)
	}
	return strings.TrimSpace(b.String())
}

func formatDuration(sec int) string {
	if sec >= 3600 && sec%3600 == 0 {
		return fmt.Sprintf("%dh", sec/3600)
	}
	if sec%60 == 0 {
		return fmt.Sprintf("%dmin", sec/60)
	}
	return fmt.Sprintf("%ds", sec)
}

// EasyEquivalent builds an easy-run structure of the given total duration,
// used when a hard workout is swapped out.
func EasyEquivalent(durationSec int) []Segment {
	return []Segment{{Reps: 1, DurationSec: durationSec, Zone: model.Zone2, Label: "easy"}}
}

// Shorten scales every segment's duration by the given factor, rounding
// down to whole minutes (but never below one minute for non-empty
// segments).
func Shorten(segments []Segment, factor float64) []Segment {
	out := make([]Segment, len(segments))
	for i, s := range segments {
		out[i] = s
		if s.DurationSec > 0 {
			scaled := int(float64(s.DurationSec)*factor) / 60 * 60
			if scaled < 60 {
				scaled = 60
			}
			out[i].DurationSec = scaled
		}
	}
	return out
}

// Reassemble combines the structural description with coaching notes into
// the event description text.
func Reassemble(structure string, notes string) string {
	structure = strings.TrimSpace(structure)
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return structure
	}
	if structure == "" {
		return notes
	}
	return structure + "\n\n" + notes
}
