package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
)

// PendingNotices yields the notices stored for a session while it had no
// request in flight.
type PendingNotices interface {
	Notices(ctx context.Context, sessionID string) ([]notify.Notice, error)
}

// Notices opens the request's notice collector. The session's pending
// notices are taken from storage only when the response drains the
// collector, so redirects and file downloads leave them for the next page.
// It must run after the session is resolved.
func Notices(pending PendingNotices, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, collector := notify.WithCollector(r.Context())
			if sid := internal.SessionIDFromContext(ctx); sid != "" && pending != nil {
				collector.Defer(func() []notify.Notice {
					stored, err := pending.Notices(context.WithoutCancel(ctx), sid)
					if err != nil {
						logger.Error("failed to load pending notices", "session_id", sid, "error", err)
					}
					return stored
				})
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
