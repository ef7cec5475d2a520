// Package herobanner manages the homepage banner images.
package herobanner

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/core/common/validation"
	"github.com/frahmantamala/tandengan-portal/internal/listing"
	"github.com/frahmantamala/tandengan-portal/internal/mutation"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
	"github.com/frahmantamala/tandengan-portal/internal/resource"
	"github.com/frahmantamala/tandengan-portal/internal/transport"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	"github.com/go-chi/chi"
)

const ImageField = "image"

type APIClient interface {
	ListHeroBanners(ctx context.Context) ([]villageapi.HeroBanner, error)
	CreateHeroBanner(ctx context.Context, form *villageapi.Multipart) (villageapi.HeroBanner, error)
	DeleteHeroBanner(ctx context.Context, id villageapi.ID) error
}

type Service struct {
	api     APIClient
	banners *resource.Resource[villageapi.HeroBanner]
}

func NewService(api APIClient, notifier notify.Notifier, logger *slog.Logger) *Service {
	return &Service{
		api: api,
		banners: resource.New(resource.Config[villageapi.HeroBanner]{
			Label:    "Banner",
			Strategy: mutation.OptimisticPatch,
			Notifier: notifier,
			Logger:   logger,
			List: listing.Options[villageapi.HeroBanner]{
				Name:   "hero banners",
				Fetch:  api.ListHeroBanners,
				ID:     func(b villageapi.HeroBanner) string { return b.ID.String() },
				Search: func(b villageapi.HeroBanner) []string { return []string{b.Title} },
				SortKeys: []listing.SortKey[villageapi.HeroBanner]{
					{Name: "order", Less: func(a, b villageapi.HeroBanner) bool { return a.Order < b.Order }},
				},
				DefaultSort: "order",
				PageSize:    10,
			},
		}),
	}
}

func (s *Service) Banners() *resource.Resource[villageapi.HeroBanner] { return s.banners }

func (s *Service) List(ctx context.Context) *listing.Controller[villageapi.HeroBanner] {
	return s.banners.List(ctx)
}

func (s *Service) Create(ctx context.Context, form *villageapi.Multipart) (villageapi.HeroBanner, error) {
	return s.banners.Flow(ctx).Create(ctx, func(ctx context.Context) (villageapi.HeroBanner, error) {
		return s.api.CreateHeroBanner(ctx, form)
	})
}

func (s *Service) Delete(ctx context.Context, id string, confirmed bool) error {
	return s.banners.Flow(ctx).Delete(ctx, id, confirmed, func(ctx context.Context) error {
		return s.api.DeleteHeroBanner(ctx, villageapi.ID(id))
	})
}

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(base *transport.BaseHandler, service *Service) *Handler {
	return &Handler{BaseHandler: base, Service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	transport.ServeList(h.BaseHandler, w, r, h.Service.List(r.Context()))
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	transport.Refresh(h.BaseHandler, w, r, h.Service.List(r.Context()))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, done, err := h.ReadMultipart(r, ImageField)
	defer done()
	if err == nil {
		v := validation.NewValidator()
		v.Field("title", form.Fields["title"]).MaxLength(150)
		v.Field(ImageField, form.FileNames(ImageField)).Required()
		if raw := form.Fields["order"]; raw != "" {
			order, convErr := strconv.Atoi(raw)
			if convErr != nil {
				order = -1
			}
			v.Field("order", order).MinInt(0, internal.ErrCodeValidationFailed)
		}
		if appErr := v.Validate(); appErr != nil {
			err = appErr
		}
	}
	if err != nil {
		h.HandleError(w, r, err, "Failed to create banner.")
		return
	}
	banner, err := h.Service.Create(r.Context(), form)
	if err != nil {
		h.HandleError(w, r, err, "Failed to create banner.")
		return
	}
	h.Respond(w, r, http.StatusCreated, banner)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), id, transport.Confirmed(r)); err != nil {
		h.HandleError(w, r, err, "Failed to delete banner.")
		return
	}
	h.Respond(w, r, http.StatusOK, map[string]string{"id": id})
}
