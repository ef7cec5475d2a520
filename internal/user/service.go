package user

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/listing"
	"github.com/frahmantamala/tandengan-portal/internal/mutation"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
	"github.com/frahmantamala/tandengan-portal/internal/resource"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
)

const PageSize = 10

type APIClient interface {
	ListUsers(ctx context.Context) ([]villageapi.User, error)
	CreateUser(ctx context.Context, in villageapi.UserInput) (villageapi.User, error)
	UpdateUser(ctx context.Context, id villageapi.ID, in villageapi.UserInput) (villageapi.User, error)
	DeleteUser(ctx context.Context, id villageapi.ID) error
}

type Service struct {
	api    APIClient
	users  *resource.Resource[villageapi.User]
	logger *slog.Logger
}

func NewService(api APIClient, notifier notify.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api: api,
		users: resource.New(resource.Config[villageapi.User]{
			Label:    "User",
			Strategy: mutation.OptimisticPatch,
			Notifier: notifier,
			Logger:   logger,
			List: listing.Options[villageapi.User]{
				Name:     "users",
				Fetch:    api.ListUsers,
				ID:       func(u villageapi.User) string { return u.ID.String() },
				Search:   func(u villageapi.User) []string { return []string{u.FullName(), u.Email} },
				Category: func(u villageapi.User) []string { return []string{string(u.Role)} },
				SortKeys: []listing.SortKey[villageapi.User]{
					{Name: "name", Less: func(a, b villageapi.User) bool {
						return strings.ToLower(a.FullName()) < strings.ToLower(b.FullName())
					}},
					{Name: "email", Less: func(a, b villageapi.User) bool { return strings.ToLower(a.Email) < strings.ToLower(b.Email) }},
					{Name: "role", Less: func(a, b villageapi.User) bool { return a.Role < b.Role }},
				},
				DefaultSort: "name",
				PageSize:    PageSize,
			},
		}),
		logger: logger,
	}
}

func (s *Service) Users() *resource.Resource[villageapi.User] { return s.users }

func (s *Service) List(ctx context.Context) *listing.Controller[villageapi.User] {
	return s.users.List(ctx)
}

func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (villageapi.User, error) {
	return s.users.Flow(ctx).Create(ctx, func(ctx context.Context) (villageapi.User, error) {
		return s.api.CreateUser(ctx, dto.toInput())
	})
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateUserDTO) (villageapi.User, error) {
	return s.users.Flow(ctx).Update(ctx, func(ctx context.Context) (villageapi.User, error) {
		return s.api.UpdateUser(ctx, villageapi.ID(id), dto.toInput())
	})
}

// Delete removes a user account. Admins cannot delete themselves.
func (s *Service) Delete(ctx context.Context, id string, confirmed bool) error {
	if id == internal.UserIDFromContext(ctx) {
		return internal.NewConflictError("You cannot delete your own account", internal.ErrCodeValidationFailed)
	}
	return s.users.Flow(ctx).Delete(ctx, id, confirmed, func(ctx context.Context) error {
		return s.api.DeleteUser(ctx, villageapi.ID(id))
	})
}
