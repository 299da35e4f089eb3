// Package ctxutil provides context helpers with no internal dependencies.
package ctxutil

import "context"

type actorKey struct{}

// WithActor records who triggered an operation, e.g. "telegram:100001" or "cli".
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the recorded actor, or "system" for engine-initiated work.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok && v != "" {
		return v
	}
	return "system"
}
