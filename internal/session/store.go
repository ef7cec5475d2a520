package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sessionDatamodel "github.com/frahmantamala/tandengan-portal/internal/core/datamodel/session"
	"github.com/frahmantamala/tandengan-portal/internal/core/events"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

type RepositoryAPI interface {
	Get(ctx context.Context, id string) (*sessionDatamodel.Session, error)
	Save(ctx context.Context, s *sessionDatamodel.Session) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	AddNotices(ctx context.Context, notices []*sessionDatamodel.Notice) error
	DrainNotices(ctx context.Context, sessionID string) ([]*sessionDatamodel.Notice, error)
}

// Store is the single owner of session state: get, set, clear, and one
// subscription point for invalidation.
type Store struct {
	repo   RepositoryAPI
	bus    *events.EventBus
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewStore(repo RepositoryAPI, bus *events.EventBus, ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{repo: repo, bus: bus, ttl: ttl, logger: logger, now: time.Now}
}

// SetClock replaces the time source; used by tests.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Get returns ErrNotFound for missing and expired sessions alike.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	row, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if row == nil {
		return nil, ErrNotFound
	}
	sess := FromDataModel(row)
	if sess.Expired(s.now()) {
		if err := s.repo.Delete(ctx, id); err != nil {
			s.logger.Warn("failed to delete expired session", "session_id", id, "error", err)
		}
		return nil, ErrNotFound
	}
	return sess, nil
}

// Set opens a new session for user.
func (s *Store) Set(ctx context.Context, user villageapi.User, upstreamCookie string) (*Session, error) {
	now := s.now()
	sess := &Session{
		ID:             uuid.NewString(),
		User:           user,
		UpstreamCookie: upstreamCookie,
		ExpiresAt:      now.Add(s.ttl),
		CreatedAt:      now,
	}
	if err := s.repo.Save(ctx, ToDataModel(sess)); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.logger.Info("session opened", "session_id", sess.ID, "user_id", user.ID, "role", user.Role)
	return sess, nil
}

// Clear deletes the session with its pending notices and announces the
// invalidation. Clearing an unknown id still notifies subscribers.
func (s *Store) Clear(ctx context.Context, id, reason string) error {
	if id == "" {
		return nil
	}
	userID := ""
	if row, err := s.repo.Get(ctx, id); err == nil && row != nil {
		userID = row.UserID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("session cleared", "session_id", id, "reason", reason)

	if s.bus != nil {
		if err := s.bus.PublishSync(ctx, events.NewSessionInvalidatedEvent(id, userID, reason)); err != nil {
			s.logger.Warn("session invalidation subscriber failed", "session_id", id, "error", err)
		}
	}
	return nil
}

// OnInvalidated subscribes fn to session invalidation. The returned func unsubscribes.
func (s *Store) OnInvalidated(fn func(ctx context.Context, sessionID string)) func() {
	if s.bus == nil {
		return func() {}
	}
	return s.bus.Subscribe(events.EventTypeSessionInvalidated, func(ctx context.Context, event events.Event) error {
		if e, ok := event.(*events.SessionInvalidatedEvent); ok {
			fn(ctx, e.SessionID)
		}
		return nil
	})
}

// Notify queues notices for delivery with the session's next response.
func (s *Store) Notify(ctx context.Context, sessionID string, notices ...notify.Notice) error {
	if sessionID == "" || len(notices) == 0 {
		return nil
	}
	rows := make([]*sessionDatamodel.Notice, 0, len(notices))
	now := s.now()
	for _, n := range notices {
		rows = append(rows, &sessionDatamodel.Notice{
			SessionID: sessionID,
			Level:     string(n.Level),
			Message:   n.Message,
			CreatedAt: now,
		})
	}
	return s.repo.AddNotices(ctx, rows)
}

// Notices drains the session's queued notices, oldest first.
func (s *Store) Notices(ctx context.Context, sessionID string) ([]notify.Notice, error) {
	if sessionID == "" {
		return nil, nil
	}
	rows, err := s.repo.DrainNotices(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("drain notices: %w", err)
	}
	out := make([]notify.Notice, 0, len(rows))
	for _, r := range rows {
		out = append(out, notify.Notice{Level: notify.Level(r.Level), Message: r.Message})
	}
	return out, nil
}

// Purge removes expired sessions.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	if n > 0 {
		s.logger.Info("expired sessions purged", "count", n)
	}
	return n, nil
}
