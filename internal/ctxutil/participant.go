// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// ParticipantKey is the context key for the participant ID.
type ParticipantKey struct{}

// SessionKey is the context key for the session ID.
type SessionKey struct{}

// WithParticipantID returns a context with the participant ID embedded.
func WithParticipantID(ctx context.Context, participantID string) context.Context {
	return context.WithValue(ctx, ParticipantKey{}, participantID)
}

// ParticipantFromContext returns the participant ID from context, or empty string if not set.
func ParticipantFromContext(ctx context.Context) string {
	if v := ctx.Value(ParticipantKey{}); v != nil {
		return v.(string)
	}
	return ""
}

// WithSessionID returns a context with the session ID embedded.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionKey{}, sessionID)
}

// SessionFromContext returns the session ID from context, or empty string if not set.
func SessionFromContext(ctx context.Context) string {
	if v := ctx.Value(SessionKey{}); v != nil {
		return v.(string)
	}
	return ""
}
