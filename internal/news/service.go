package news

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
	PageSize = 9
	// ImageField is the multipart field carrying the article image.
	ImageField = "image"
)

type APIClient interface {
	ListNews(ctx context.Context) ([]villageapi.NewsArticle, error)
	GetNewsBySlug(ctx context.Context, slug string) (villageapi.NewsArticle, error)
	CreateNews(ctx context.Context, form *villageapi.Multipart) (villageapi.NewsArticle, error)
	UpdateNews(ctx context.Context, id villageapi.ID, form *villageapi.Multipart) (villageapi.NewsArticle, error)
	DeleteNews(ctx context.Context, id villageapi.ID) error
	ListNewsCategories(ctx context.Context) ([]villageapi.NewsCategory, error)
	CreateNewsCategory(ctx context.Context, name string) (villageapi.NewsCategory, error)
	DeleteNewsCategory(ctx context.Context, id villageapi.ID) error
}

type Service struct {
	api        APIClient
	articles   *resource.Resource[villageapi.NewsArticle]
	categories *resource.Resource[villageapi.NewsCategory]
	logger     *slog.Logger
}

func NewService(api APIClient, notifier notify.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api: api,
		articles: resource.New(resource.Config[villageapi.NewsArticle]{
			Label:    "News",
			Strategy: mutation.OptimisticPatch,
			Notifier: notifier,
			Logger:   logger,
			List: listing.Options[villageapi.NewsArticle]{
				Name:  "news",
				Fetch: api.ListNews,
				ID:    func(n villageapi.NewsArticle) string { return n.ID.String() },
				Search: func(n villageapi.NewsArticle) []string {
					return []string{n.Title, n.Summary, n.Body, n.Author}
				},
				Category: func(n villageapi.NewsArticle) []string {
					out := make([]string, 0, 2*len(n.Categories))
					for _, c := range n.Categories {
						out = append(out, c.ID.String(), c.Name)
					}
					return out
				},
				SortKeys: []listing.SortKey[villageapi.NewsArticle]{
					{Name: "date", Less: func(a, b villageapi.NewsArticle) bool { return a.Date.Before(b.Date.Time) }},
					{Name: "title", Less: func(a, b villageapi.NewsArticle) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }},
				},
				DefaultSort: "date",
				DefaultDir:  listing.Desc,
				PageSize:    PageSize,
			},
		}),
		categories: resource.New(resource.Config[villageapi.NewsCategory]{
			Label:    "News category",
			Strategy: mutation.OptimisticPatch,
			Notifier: notifier,
			Logger:   logger,
			List: listing.Options[villageapi.NewsCategory]{
				Name:   "news categories",
				Fetch:  api.ListNewsCategories,
				ID:     func(c villageapi.NewsCategory) string { return c.ID.String() },
				Search: func(c villageapi.NewsCategory) []string { return []string{c.Name} },
				SortKeys: []listing.SortKey[villageapi.NewsCategory]{
					{Name: "name", Less: func(a, b villageapi.NewsCategory) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }},
				},
				DefaultSort: "name",
				PageSize:    10,
			},
		}),
		logger: logger,
	}
}

func (s *Service) Articles() *resource.Resource[villageapi.NewsArticle] { return s.articles }

func (s *Service) Categories() *resource.Resource[villageapi.NewsCategory] { return s.categories }

func (s *Service) List(ctx context.Context) *listing.Controller[villageapi.NewsArticle] {
	return s.articles.List(ctx)
}

// BySlug serves the article from the caller's list when it is held there.
func (s *Service) BySlug(ctx context.Context, slug string) (villageapi.NewsArticle, error) {
	for _, n := range s.List(ctx).Items() {
		if n.Slug == slug {
			return n, nil
		}
	}
	return s.api.GetNewsBySlug(ctx, slug)
}

func (s *Service) Create(ctx context.Context, form *villageapi.Multipart) (villageapi.NewsArticle, error) {
	return s.articles.Flow(ctx).Create(ctx, func(ctx context.Context) (villageapi.NewsArticle, error) {
		return s.api.CreateNews(ctx, form)
	})
}

func (s *Service) Update(ctx context.Context, id string, form *villageapi.Multipart) (villageapi.NewsArticle, error) {
	return s.articles.Flow(ctx).Update(ctx, func(ctx context.Context) (villageapi.NewsArticle, error) {
		return s.api.UpdateNews(ctx, villageapi.ID(id), form)
	})
}

func (s *Service) Delete(ctx context.Context, id string, confirmed bool) error {
	return s.articles.Flow(ctx).Delete(ctx, id, confirmed, func(ctx context.Context) error {
		return s.api.DeleteNews(ctx, villageapi.ID(id))
	})
}

func (s *Service) CategoryList(ctx context.Context) *listing.Controller[villageapi.NewsCategory] {
	return s.categories.List(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, name string) (villageapi.NewsCategory, error) {
	return s.categories.Flow(ctx).Create(ctx, func(ctx context.Context) (villageapi.NewsCategory, error) {
		return s.api.CreateNewsCategory(ctx, name)
	})
}

func (s *Service) DeleteCategory(ctx context.Context, id string, confirmed bool) error {
	return s.categories.Flow(ctx).Delete(ctx, id, confirmed, func(ctx context.Context) error {
		return s.api.DeleteNewsCategory(ctx, villageapi.ID(id))
	})
}
