package announcement

import (
	"context"
	"net/http"

	"github.com/frahmantamala/tandengan-portal/internal/listing"
	"github.com/frahmantamala/tandengan-portal/internal/transport"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context) *listing.Controller[villageapi.Announcement]
	Create(ctx context.Context, dto AnnouncementDTO) (villageapi.Announcement, error)
	Update(ctx context.Context, id string, dto AnnouncementDTO) (villageapi.Announcement, error)
	Delete(ctx context.Context, id string, confirmed bool) error
	CategoryList(ctx context.Context) *listing.Controller[villageapi.AnnouncementCategory]
	CreateCategory(ctx context.Context, dto CategoryDTO) (villageapi.AnnouncementCategory, error)
	DeleteCategory(ctx context.Context, id string, confirmed bool) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, Service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	transport.ServeList(h.BaseHandler, w, r, h.Service.List(r.Context()))
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	transport.Refresh(h.BaseHandler, w, r, h.Service.List(r.Context()))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto AnnouncementDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err, "Failed to create announcement.")
		return
	}
	item, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleError(w, r, err, "Failed to create announcement.")
		return
	}
	h.Respond(w, r, http.StatusCreated, item)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto AnnouncementDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err, "Failed to update announcement.")
		return
	}
	item, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleError(w, r, err, "Failed to update announcement.")
		return
	}
	h.Respond(w, r, http.StatusOK, item)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), id, transport.Confirmed(r)); err != nil {
		h.HandleError(w, r, err, "Failed to delete announcement.")
		return
	}
	h.Respond(w, r, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	transport.ServeList(h.BaseHandler, w, r, h.Service.CategoryList(r.Context()))
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var dto CategoryDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err, "Failed to create category.")
		return
	}
	item, err := h.Service.CreateCategory(r.Context(), dto)
	if err != nil {
		h.HandleError(w, r, err, "Failed to create category.")
		return
	}
	h.Respond(w, r, http.StatusCreated, item)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.DeleteCategory(r.Context(), id, transport.Confirmed(r)); err != nil {
		h.HandleError(w, r, err, "Failed to delete category.")
		return
	}
	h.Respond(w, r, http.StatusOK, map[string]string{"id": id})
}
