package news

import (
	"context"
	"net/http"

	"github.com/frahmantamala/tandengan-portal/internal/core/common/validation"
	"github.com/frahmantamala/tandengan-portal/internal/listing"
	"github.com/frahmantamala/tandengan-portal/internal/transport"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context) *listing.Controller[villageapi.NewsArticle]
	BySlug(ctx context.Context, slug string) (villageapi.NewsArticle, error)
	Create(ctx context.Context, form *villageapi.Multipart) (villageapi.NewsArticle, error)
	Update(ctx context.Context, id string, form *villageapi.Multipart) (villageapi.NewsArticle, error)
	Delete(ctx context.Context, id string, confirmed bool) error
	CategoryList(ctx context.Context) *listing.Controller[villageapi.NewsCategory]
	CreateCategory(ctx context.Context, name string) (villageapi.NewsCategory, error)
	DeleteCategory(ctx context.Context, id string, confirmed bool) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, Service: service}
}

type CategoryDTO struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	transport.ServeList(h.BaseHandler, w, r, h.Service.List(r.Context()))
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	transport.Refresh(h.BaseHandler, w, r, h.Service.List(r.Context()))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	article, err := h.Service.BySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.HandleError(w, r, err, "Failed to load the article.")
		return
	}
	h.Respond(w, r, http.StatusOK, article)
}

func validateForm(form *villageapi.Multipart, requireImage bool) error {
	v := validation.NewValidator()
	v.Field("title", form.Fields["title"]).Required().MaxLength(200)
	v.Field("body", form.Fields["body"]).Required()
	if requireImage {
		v.Field(ImageField, form.FileNames(ImageField)).Required()
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, done, err := h.ReadMultipart(r, ImageField)
	defer done()
	if err == nil {
		err = validateForm(form, true)
	}
	if err != nil {
		h.HandleError(w, r, err, "Failed to create news.")
		return
	}
	article, err := h.Service.Create(r.Context(), form)
	if err != nil {
		h.HandleError(w, r, err, "Failed to create news.")
		return
	}
	h.Respond(w, r, http.StatusCreated, article)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	form, done, err := h.ReadMultipart(r, ImageField)
	defer done()
	if err == nil {
		err = validateForm(form, false)
	}
	if err != nil {
		h.HandleError(w, r, err, "Failed to update news.")
		return
	}
	article, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), form)
	if err != nil {
		h.HandleError(w, r, err, "Failed to update news.")
		return
	}
	h.Respond(w, r, http.StatusOK, article)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), id, transport.Confirmed(r)); err != nil {
		h.HandleError(w, r, err, "Failed to delete news.")
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
		h.HandleError(w, r, err, "Failed to create news category.")
		return
	}
	item, err := h.Service.CreateCategory(r.Context(), dto.Name)
	if err != nil {
		h.HandleError(w, r, err, "Failed to create news category.")
		return
	}
	h.Respond(w, r, http.StatusCreated, item)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.DeleteCategory(r.Context(), id, transport.Confirmed(r)); err != nil {
		h.HandleError(w, r, err, "Failed to delete news category.")
		return
	}
	h.Respond(w, r, http.StatusOK, map[string]string{"id": id})
}
