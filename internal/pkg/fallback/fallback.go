package fallback

import (
	"context"
	"errors"
)

// Attempt is one way of producing a T
type Attempt[T any] func(ctx context.Context) (T, error)

// OrElse runs primary and, when it fails, runs secondary instead. The
// returned error joins both failures when secondary fails too. A
// cancelled context stops before secondary is tried.
func OrElse[T any](ctx context.Context, primary, secondary Attempt[T]) (T, error) {
	v, err := primary(ctx)
	if err == nil {
		return v, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		var zero T
		return zero, errors.Join(err, ctxErr)
	}

	v, err2 := secondary(ctx)
	if err2 == nil {
		return v, nil
	}
	var zero T
	return zero, errors.Join(err, err2)
}

// Tier is a named step of an ordered fallback chain
type Tier[T any] struct {
	Name string
	Run  Attempt[T]
}

// Outcome reports what happened to a single tier in First
type Outcome struct {
	Tier string
	Err  error
}

// First runs tiers in order and returns the first value accepted by ok,
// together with the name of the tier that produced it. Tier errors are
// handed to observe (which may be nil) and never stop the chain. When no
// tier produces an accepted value found is false.
func First[T any](ctx context.Context, tiers []Tier[T], ok func(T) bool, observe func(Outcome)) (v T, tier string, found bool) {
	for _, t := range tiers {
		if ctx.Err() != nil {
			break
		}
		got, err := t.Run(ctx)
		if observe != nil {
			observe(Outcome{Tier: t.Name, Err: err})
		}
		if err == nil && ok(got) {
			return got, t.Name, true
		}
	}
	var zero T
	return zero, "", false
}
