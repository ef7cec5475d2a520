package session

import (
	"context"
	"time"

	sessionDatamodel "github.com/frahmantamala/tandengan-portal/internal/core/datamodel/session"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
)

// Session is the portal's mirror of an upstream login.
type Session struct {
	ID             string
	User           villageapi.User
	UpstreamCookie string
	ExpiresAt      time.Time
	CreatedAt      time.Time
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.User.Role == villageapi.RoleAdmin
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

func FromDataModel(m *sessionDatamodel.Session) *Session {
	return &Session{
		ID: m.ID,
		User: villageapi.User{
			ID:        villageapi.ID(m.UserID),
			FirstName: m.FirstName,
			LastName:  m.LastName,
			Email:     m.Email,
			Role:      villageapi.Role(m.Role),
		},
		UpstreamCookie: m.UpstreamCookie,
		ExpiresAt:      m.ExpiresAt,
		CreatedAt:      m.CreatedAt,
	}
}

func ToDataModel(s *Session) *sessionDatamodel.Session {
	return &sessionDatamodel.Session{
		ID:             s.ID,
		UserID:         string(s.User.ID),
		FirstName:      s.User.FirstName,
		LastName:       s.User.LastName,
		Email:          s.User.Email,
		Role:           string(s.User.Role),
		UpstreamCookie: s.UpstreamCookie,
		ExpiresAt:      s.ExpiresAt,
		CreatedAt:      s.CreatedAt,
	}
}

type sessionKey struct{}
type userKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func FromContext(ctx context.Context) *Session {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// WithUser stores the user resolved by the page guard. A nil user marks an
// anonymous visitor.
func WithUser(ctx context.Context, u *villageapi.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

func UserFromContext(ctx context.Context) *villageapi.User {
	if ctx == nil {
		return nil
	}
	u, _ := ctx.Value(userKey{}).(*villageapi.User)
	return u
}
