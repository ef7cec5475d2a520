package letterformat

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

const (
	PageSize  = 10
	FileField = "file"
)

type APIClient interface {
	ListLetterFormats(ctx context.Context) ([]villageapi.LetterFormat, error)
	CreateLetterFormat(ctx context.Context, form *villageapi.Multipart) (villageapi.LetterFormat, error)
	UpdateLetterFormat(ctx context.Context, id villageapi.ID, form *villageapi.Multipart) (villageapi.LetterFormat, error)
	DeleteLetterFormat(ctx context.Context, id villageapi.ID) error
	RecordLetterFormatDownload(ctx context.Context, id villageapi.ID) error
}

type Service struct {
	api     APIClient
	formats *resource.Resource[villageapi.LetterFormat]
	logger  *slog.Logger
}

func NewService(api APIClient, notifier notify.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api: api,
		formats: resource.New(resource.Config[villageapi.LetterFormat]{
			Label:    "Letter format",
			Strategy: mutation.OptimisticPatch,
			Notifier: notifier,
			Logger:   logger,
			List: listing.Options[villageapi.LetterFormat]{
				Name:   "letter formats",
				Fetch:  api.ListLetterFormats,
				ID:     func(f villageapi.LetterFormat) string { return f.ID.String() },
				Search: func(f villageapi.LetterFormat) []string { return []string{f.Name, f.Description} },
				SortKeys: []listing.SortKey[villageapi.LetterFormat]{
					{Name: "name", Less: func(a, b villageapi.LetterFormat) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }},
					{Name: "downloads", Less: func(a, b villageapi.LetterFormat) bool { return a.DownloadCount < b.DownloadCount }},
				},
				DefaultSort: "name",
				PageSize:    PageSize,
			},
		}),
		logger: logger,
	}
}

func (s *Service) Formats() *resource.Resource[villageapi.LetterFormat] { return s.formats }

func (s *Service) List(ctx context.Context) *listing.Controller[villageapi.LetterFormat] {
	return s.formats.List(ctx)
}

// Download counts a download of the format and returns it with the new
// count. The counter is raised locally first and lowered again if the API
// does not record the download.
func (s *Service) Download(ctx context.Context, id string) (villageapi.LetterFormat, error) {
	list := s.List(ctx)
	if err := list.EnsureLoaded(ctx); err != nil {
		return villageapi.LetterFormat{}, err
	}
	if _, ok := list.Find(id); !ok {
		return villageapi.LetterFormat{}, internal.NewNotFoundError("Letter format not found", internal.ErrCodeResourceNotFound)
	}

	bump := func(delta int) func() {
		return func() {
			list.Modify(id, func(f villageapi.LetterFormat) villageapi.LetterFormat {
				f.DownloadCount += delta
				return f
			})
		}
	}
	err := s.formats.Flow(ctx).Patch(ctx, bump(1), bump(-1), func(ctx context.Context) error {
		return s.api.RecordLetterFormatDownload(ctx, villageapi.ID(id))
	})
	if err != nil {
		return villageapi.LetterFormat{}, err
	}

	format, _ := list.Find(id)
	s.logger.Info("letter format downloaded", "letter_format_id", id, "download_count", format.DownloadCount)
	return format, nil
}

func (s *Service) Create(ctx context.Context, form *villageapi.Multipart) (villageapi.LetterFormat, error) {
	return s.formats.Flow(ctx).Create(ctx, func(ctx context.Context) (villageapi.LetterFormat, error) {
		return s.api.CreateLetterFormat(ctx, form)
	})
}

func (s *Service) Update(ctx context.Context, id string, form *villageapi.Multipart) (villageapi.LetterFormat, error) {
	return s.formats.Flow(ctx).Update(ctx, func(ctx context.Context) (villageapi.LetterFormat, error) {
		return s.api.UpdateLetterFormat(ctx, villageapi.ID(id), form)
	})
}

func (s *Service) Delete(ctx context.Context, id string, confirmed bool) error {
	return s.formats.Flow(ctx).Delete(ctx, id, confirmed, func(ctx context.Context) error {
		return s.api.DeleteLetterFormat(ctx, villageapi.ID(id))
	})
}
