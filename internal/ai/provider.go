// Package ai generates freeform coaching notes for adapted workouts via an
// external text-generation service. Every failure mode (auth, rate limit,
// timeout, malformed reply) surfaces as an error; the caller owns the
// deterministic fallback.
package ai

import "context"

type Provider interface {
	GenerateNote(ctx context.Context, req NoteRequest) (string, error)
}
