// Package notify carries transient user notifications ("toasts") from
// services to the response that delivers them.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func Success(msg string) Notice { return Notice{Level: LevelSuccess, Message: msg} }
func Info(msg string) Notice    { return Notice{Level: LevelInfo, Message: msg} }
func Warning(msg string) Notice { return Notice{Level: LevelWarning, Message: msg} }
func Error(msg string) Notice   { return Notice{Level: LevelError, Message: msg} }

const SessionExpiredMessage = "Your session has expired. Please log in again."

// FromError maps a failure to the notices shown for it. Validation failures
// yield one notice per detail; file-type and rate-limit rejections are
// warnings; anything unrecognised falls back to the generic message.
func FromError(err error, fallback string) []Notice {
	if err == nil {
		return nil
	}
	if apiErr, ok := villageapi.AsAPIError(err); ok {
		switch apiErr.Kind {
		case villageapi.KindValidation:
			if len(apiErr.Details) == 0 {
				return []Notice{Error(apiErr.Message)}
			}
			out := make([]Notice, 0, len(apiErr.Details))
			for _, d := range apiErr.Details {
				out = append(out, Error(d.Message))
			}
			return out
		case villageapi.KindFileType, villageapi.KindRateLimit:
			return []Notice{Warning(apiErr.Message)}
		case villageapi.KindUnauthorized:
			return []Notice{Warning(SessionExpiredMessage)}
		case villageapi.KindNotFound:
			return []Notice{Error("The requested data was not found.")}
		}
		return []Notice{Error(fallback)}
	}
	if appErr, ok := internal.IsAppError(err); ok {
		if details, ok := appErr.Details.(internal.ValidationErrors); ok && len(details.Errors) > 0 {
			out := make([]Notice, 0, len(details.Errors))
			for _, d := range details.Errors {
				out = append(out, Error(d.Message))
			}
			return out
		}
		if appErr.Type == internal.ErrorTypeRateLimited || appErr.Type == internal.ErrorTypePrecondition {
			return []Notice{Info(appErr.Message)}
		}
		if appErr.Type != internal.ErrorTypeInternal {
			return []Notice{Error(appErr.Message)}
		}
	}
	return []Notice{Error(fallback)}
}

// Notifier accepts notices produced outside the HTTP layer.
type Notifier interface {
	Notify(ctx context.Context, notices ...Notice)
}

// Collector gathers the notices raised while serving one request.
type Collector struct {
	mu      sync.Mutex
	notices []Notice
	stored  func() []Notice
}

func (c *Collector) Add(notices ...Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, notices...)
}

// Defer registers the loader of notices stored for the session. It runs on
// the first Drain only, so a response that never drains leaves them stored.
func (c *Collector) Defer(load func() []Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored = load
}

// Drain returns the stored notices followed by the collected ones and
// empties the collector.
func (c *Collector) Drain() []Notice {
	c.mu.Lock()
	load := c.stored
	c.stored = nil
	c.mu.Unlock()

	var out []Notice
	if load != nil {
		out = load()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	out = append(out, c.notices...)
	c.notices = nil
	return out
}

type collectorKey struct{}

func WithCollector(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

func CollectorFrom(ctx context.Context) *Collector {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(collectorKey{}).(*Collector)
	return c
}

// Pending stores notices for a session that has no request in flight.
type Pending interface {
	Notify(ctx context.Context, sessionID string, notices ...Notice) error
}

// Router delivers notices to the request collector when one is present,
// otherwise to the session's pending store, otherwise to the log.
type Router struct {
	pending Pending
	logger  *slog.Logger
}

func NewRouter(pending Pending, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{pending: pending, logger: logger}
}

func (r *Router) Notify(ctx context.Context, notices ...Notice) {
	if len(notices) == 0 {
		return
	}
	if c := CollectorFrom(ctx); c != nil {
		c.Add(notices...)
		return
	}
	if sid := internal.SessionIDFromContext(ctx); sid != "" && r.pending != nil {
		err := r.pending.Notify(ctx, sid, notices...)
		if err == nil {
			return
		}
		r.logger.Error("failed to store pending notices", "session_id", sid, "error", err)
	}
	for _, n := range notices {
		r.logger.Info("undelivered notice", "level", n.Level, "message", n.Message)
	}
}

type reported struct{ err error }

func (r *reported) Error() string { return r.err.Error() }
func (r *reported) Unwrap() error { return r.err }

// Reported marks err as already turned into notices so the HTTP boundary
// does not raise them a second time.
func Reported(err error) error {
	if err == nil || WasReported(err) {
		return err
	}
	return &reported{err: err}
}

func WasReported(err error) bool {
	var r *reported
	return errors.As(err, &r)
}
