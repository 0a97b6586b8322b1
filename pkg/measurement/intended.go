package measurement

import (
	"context"
	"time"
)

type contextKey string

const intendedStartKey = contextKey("intendedStart")

// WithIntendedStart records the time at which the worker's schedule wanted
// the next operation to begin. Without a target rate it equals the actual
// start.
func WithIntendedStart(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, intendedStartKey, t)
}

// IntendedStart returns the intended start time stored in ctx, or fallback
// when the worker is not throttled.
func IntendedStart(ctx context.Context, fallback time.Time) time.Time {
	if t, ok := ctx.Value(intendedStartKey).(time.Time); ok && !t.IsZero() {
		return t
	}
	return fallback
}
