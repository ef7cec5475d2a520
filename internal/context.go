package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextUserKey    ctxKey = "userID"
	ContextSessionKey ctxKey = "sessionID"
	ContextClientKey  ctxKey = "clientKey"
)

func UserIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ContextUserKey)
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}

func SessionIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ContextSessionKey)
}

func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ContextSessionKey, sessionID)
}

// ClientKeyFromContext identifies the caller for per-client state: the session
// id when logged in, the visitor cookie id otherwise.
func ClientKeyFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ContextClientKey)
}

// SessionClientKey and VisitorClientKey build the two client key forms.
func SessionClientKey(sessionID string) string { return "session:" + sessionID }
func VisitorClientKey(visitorID string) string { return "visitor:" + visitorID }

func ContextWithClientKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ContextClientKey, key)
}

func stringFromContext(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
