// Package requestmeta carries per-request metadata (request id, device,
// origin address) through context. Every call that records audit events
// reads it explicitly; there is no ambient request lookup.
package requestmeta

import "context"

type ctxKey struct{}

// Meta describes where a request came from. Device and IP end up on
// audit rows; RequestID ties log lines to a single request.
type Meta struct {
	RequestID string
	Device    string
	IP        string
}

func WithMeta(ctx context.Context, m Meta) context.Context {
	return context.WithValue(ctx, ctxKey{}, m)
}

// FromContext returns the metadata stored by the HTTP middleware.
// A zero Meta is returned for calls that did not pass through it
// (background jobs, tests).
func FromContext(ctx context.Context) Meta {
	if m, ok := ctx.Value(ctxKey{}).(Meta); ok {
		return m
	}
	return Meta{}
}
