package ctxutil

import (
	"context"
)

type ctxKey string

const actorKey ctxKey = "actor"

// Actor identifies who performs a mutation
type Actor struct {
	EmployeeID string
	Name       string
	Role       string
	SessionID  string
}

// WithActor stores the acting principal in the context.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromCtx extracts the acting principal.
// Returns false if the value is missing, has no name, or has the wrong type.
func ActorFromCtx(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey).(Actor)
	if !ok || a.Name == "" {
		return Actor{}, false
	}
	return a, true
}

// ActorName returns the actor's name, or fallback when no actor is set.
func ActorName(ctx context.Context, fallback string) string {
	if a, ok := ActorFromCtx(ctx); ok {
		return a.Name
	}
	return fallback
}
