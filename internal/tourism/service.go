package tourism

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/tandengan-portal/internal/listing"
	"github.com/frahmantamala/tandengan-portal/internal/mutation"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
	"github.com/frahmantamala/tandengan-portal/internal/resource"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
)

const (
	PageSize     = 9
	ImageField   = "image"
	GalleryField = "gallery"
)

type APIClient interface {
	ListDestinations(ctx context.Context) ([]villageapi.Destination, error)
	CreateDestination(ctx context.Context, form *villageapi.Multipart) (villageapi.Destination, error)
	UpdateDestination(ctx context.Context, id villageapi.ID, form *villageapi.Multipart) (villageapi.Destination, error)
	DeleteDestination(ctx context.Context, id villageapi.ID) error
}

type Service struct {
	api          APIClient
	destinations *resource.Resource[villageapi.Destination]
}

func NewService(api APIClient, notifier notify.Notifier, logger *slog.Logger) *Service {
	return &Service{
		api: api,
		destinations: resource.New(resource.Config[villageapi.Destination]{
			Label:    "Destination",
			Strategy: mutation.OptimisticPatch,
			Notifier: notifier,
			Logger:   logger,
			List: listing.Options[villageapi.Destination]{
				Name:  "destinations",
				Fetch: api.ListDestinations,
				ID:    func(d villageapi.Destination) string { return d.ID.String() },
				Search: func(d villageapi.Destination) []string {
					return []string{d.Name, d.Description, d.Location}
				},
				SortKeys: []listing.SortKey[villageapi.Destination]{
					{Name: "name", Less: func(a, b villageapi.Destination) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }},
					{Name: "location", Less: func(a, b villageapi.Destination) bool { return strings.ToLower(a.Location) < strings.ToLower(b.Location) }},
				},
				DefaultSort: "name",
				PageSize:    PageSize,
			},
		}),
	}
}

func (s *Service) Destinations() *resource.Resource[villageapi.Destination] { return s.destinations }

func (s *Service) List(ctx context.Context) *listing.Controller[villageapi.Destination] {
	return s.destinations.List(ctx)
}

func (s *Service) Create(ctx context.Context, form *villageapi.Multipart) (villageapi.Destination, error) {
	return s.destinations.Flow(ctx).Create(ctx, func(ctx context.Context) (villageapi.Destination, error) {
		return s.api.CreateDestination(ctx, form)
	})
}

func (s *Service) Update(ctx context.Context, id string, form *villageapi.Multipart) (villageapi.Destination, error) {
	return s.destinations.Flow(ctx).Update(ctx, func(ctx context.Context) (villageapi.Destination, error) {
		return s.api.UpdateDestination(ctx, villageapi.ID(id), form)
	})
}

func (s *Service) Delete(ctx context.Context, id string, confirmed bool) error {
	return s.destinations.Flow(ctx).Delete(ctx, id, confirmed, func(ctx context.Context) error {
		return s.api.DeleteDestination(ctx, villageapi.ID(id))
	})
}
