package httpx

import (
	"context"
)

// consoleSessionKey is an unexported context key type to avoid collisions across packages.
type consoleSessionKey struct{}

// SetConsoleSession returns a child context carrying the console session id.
// An empty id returns ctx unchanged.
func SetConsoleSession(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, consoleSessionKey{}, id)
}

// ConsoleSessionFromContext returns the console session id and whether one is present.
func ConsoleSessionFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(consoleSessionKey{}).(string)
	return id, ok && id != ""
}
