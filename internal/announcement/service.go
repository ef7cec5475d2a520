package announcement

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

const PageSize = 10

type APIClient interface {
	ListAnnouncements(ctx context.Context) ([]villageapi.Announcement, error)
	CreateAnnouncement(ctx context.Context, in villageapi.AnnouncementInput) (villageapi.Announcement, error)
	UpdateAnnouncement(ctx context.Context, id villageapi.ID, in villageapi.AnnouncementInput) (villageapi.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id villageapi.ID) error
	ListAnnouncementCategories(ctx context.Context) ([]villageapi.AnnouncementCategory, error)
	CreateAnnouncementCategory(ctx context.Context, name string) (villageapi.AnnouncementCategory, error)
	DeleteAnnouncementCategory(ctx context.Context, id villageapi.ID) error
}

// Service keeps announcements in step by refetching after every change.
type Service struct {
	api           APIClient
	announcements *resource.Resource[villageapi.Announcement]
	categories    *resource.Resource[villageapi.AnnouncementCategory]
	logger        *slog.Logger
}

func NewService(api APIClient, notifier notify.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api: api,
		announcements: resource.New(resource.Config[villageapi.Announcement]{
			Label:    "Announcement",
			Strategy: mutation.FullReload,
			Notifier: notifier,
			Logger:   logger,
			List: listing.Options[villageapi.Announcement]{
				Name:     "announcements",
				Fetch:    api.ListAnnouncements,
				ID:       func(a villageapi.Announcement) string { return a.ID.String() },
				Search:   func(a villageapi.Announcement) []string { return []string{a.Title, a.Body} },
				Category: categoriesOf,
				SortKeys: []listing.SortKey[villageapi.Announcement]{
					{Name: "date", Less: func(a, b villageapi.Announcement) bool { return a.Date.Before(b.Date.Time) }},
					{Name: "title", Less: func(a, b villageapi.Announcement) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }},
				},
				DefaultSort: "date",
				DefaultDir:  listing.Desc,
				PageSize:    PageSize,
			},
		}),
		categories: resource.New(resource.Config[villageapi.AnnouncementCategory]{
			Label:    "Category",
			Strategy: mutation.FullReload,
			Notifier: notifier,
			Logger:   logger,
			List: listing.Options[villageapi.AnnouncementCategory]{
				Name:   "announcement categories",
				Fetch:  api.ListAnnouncementCategories,
				ID:     func(c villageapi.AnnouncementCategory) string { return c.ID.String() },
				Search: func(c villageapi.AnnouncementCategory) []string { return []string{c.Name} },
				SortKeys: []listing.SortKey[villageapi.AnnouncementCategory]{
					{Name: "name", Less: func(a, b villageapi.AnnouncementCategory) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }},
				},
				DefaultSort: "name",
				PageSize:    PageSize,
			},
		}),
		logger: logger,
	}
}

// categoriesOf lets the filter match either the category id or its name.
func categoriesOf(a villageapi.Announcement) []string {
	out := []string{a.CategoryID.String()}
	if a.Category != nil {
		out = append(out, a.Category.ID.String(), a.Category.Name)
	}
	return out
}

func (s *Service) Announcements() *resource.Resource[villageapi.Announcement] { return s.announcements }

func (s *Service) Categories() *resource.Resource[villageapi.AnnouncementCategory] { return s.categories }

func (s *Service) List(ctx context.Context) *listing.Controller[villageapi.Announcement] {
	return s.announcements.List(ctx)
}

func (s *Service) Create(ctx context.Context, dto AnnouncementDTO) (villageapi.Announcement, error) {
	return s.announcements.Flow(ctx).Create(ctx, func(ctx context.Context) (villageapi.Announcement, error) {
		return s.api.CreateAnnouncement(ctx, dto.toInput())
	})
}

func (s *Service) Update(ctx context.Context, id string, dto AnnouncementDTO) (villageapi.Announcement, error) {
	return s.announcements.Flow(ctx).Update(ctx, func(ctx context.Context) (villageapi.Announcement, error) {
		return s.api.UpdateAnnouncement(ctx, villageapi.ID(id), dto.toInput())
	})
}

func (s *Service) Delete(ctx context.Context, id string, confirmed bool) error {
	return s.announcements.Flow(ctx).Delete(ctx, id, confirmed, func(ctx context.Context) error {
		return s.api.DeleteAnnouncement(ctx, villageapi.ID(id))
	})
}

func (s *Service) CategoryList(ctx context.Context) *listing.Controller[villageapi.AnnouncementCategory] {
	return s.categories.List(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, dto CategoryDTO) (villageapi.AnnouncementCategory, error) {
	return s.categories.Flow(ctx).Create(ctx, func(ctx context.Context) (villageapi.AnnouncementCategory, error) {
		return s.api.CreateAnnouncementCategory(ctx, dto.Name)
	})
}

func (s *Service) DeleteCategory(ctx context.Context, id string, confirmed bool) error {
	return s.categories.Flow(ctx).Delete(ctx, id, confirmed, func(ctx context.Context) error {
		return s.api.DeleteAnnouncementCategory(ctx, villageapi.ID(id))
	})
}
