package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
)

var ErrInvalidCredentials = internal.NewUnauthorizedError("Invalid email or password", internal.ErrCodeInvalidLogin)

type APIClient interface {
	Login(ctx context.Context, req villageapi.LoginRequest) (*villageapi.User, string, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, req villageapi.RegisterRequest) (*villageapi.User, error)
}

// Service signs users in and out against the village API. Credentials are
// checked upstream only; the portal keeps the upstream cookie, never the
// password.
type Service struct {
	api      APIClient
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewService(api APIClient, notifier notify.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, notifier: notifier, logger: logger}
}

// Authenticate returns the user and the upstream cookie to keep in the session.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*villageapi.User, string, error) {
	user, cookie, err := s.api.Login(ctx, villageapi.LoginRequest{Email: dto.Email, Password: dto.Password})
	if err != nil {
		if villageapi.IsUnauthorized(err) || villageapi.KindOf(err) == villageapi.KindNotFound {
			s.logger.Warn("login rejected", "email", dto.Email)
			return nil, "", ErrInvalidCredentials
		}
		s.logger.Error("login failed", "email", dto.Email, "error", err)
		return nil, "", err
	}
	s.logger.Info("user logged in", "user_id", user.ID, "role", user.Role)
	s.notify(ctx, notify.Success(fmt.Sprintf("Welcome, %s.", user.FullName())))
	return user, cookie, nil
}

// Logout tells the API the upstream session is over. Failures are logged
// only; the local session ends regardless.
func (s *Service) Logout(ctx context.Context) {
	if villageapi.CredentialsFromContext(ctx) == "" {
		return
	}
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn("upstream logout failed", "error", err)
	}
}

func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*villageapi.User, error) {
	user, err := s.api.Register(ctx, dto.toRequest())
	if err != nil {
		s.logger.Error("registration failed", "email", dto.Email, "error", err)
		s.notify(ctx, notify.FromError(err, "Registration failed.")...)
		return nil, notify.Reported(err)
	}
	s.logger.Info("user registered", "user_id", user.ID)
	s.notify(ctx, notify.Success("Registration successful. Please log in."))
	return user, nil
}

// LandingPath is where a user goes right after signing in.
func LandingPath(user *villageapi.User) string {
	if user != nil && user.Role == villageapi.RoleAdmin {
		return "/admin"
	}
	return "/"
}

func (s *Service) notify(ctx context.Context, notices ...notify.Notice) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, notices...)
	}
}
