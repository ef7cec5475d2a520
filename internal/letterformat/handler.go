package letterformat

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
	List(ctx context.Context) *listing.Controller[villageapi.LetterFormat]
	Download(ctx context.Context, id string) (villageapi.LetterFormat, error)
	Create(ctx context.Context, form *villageapi.Multipart) (villageapi.LetterFormat, error)
	Update(ctx context.Context, id string, form *villageapi.Multipart) (villageapi.LetterFormat, error)
	Delete(ctx context.Context, id string, confirmed bool) error
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

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	format, err := h.Service.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleError(w, r, err, "Failed to download the letter format.")
		return
	}
	h.Respond(w, r, http.StatusOK, format)
}

func validateForm(form *villageapi.Multipart, requireFile bool) error {
	v := validation.NewValidator()
	v.Field("name", form.Fields["name"]).Required().MaxLength(150)
	v.Field("description", form.Fields["description"]).MaxLength(1000)
	if requireFile {
		v.Field(FileField, form.FileNames(FileField)).Required()
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, done, err := h.ReadMultipart(r, FileField)
	defer done()
	if err == nil {
		err = validateForm(form, true)
	}
	if err != nil {
		h.HandleError(w, r, err, "Failed to create letter format.")
		return
	}
	format, err := h.Service.Create(r.Context(), form)
	if err != nil {
		h.HandleError(w, r, err, "Failed to create letter format.")
		return
	}
	h.Respond(w, r, http.StatusCreated, format)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	form, done, err := h.ReadMultipart(r, FileField)
	defer done()
	if err == nil {
		err = validateForm(form, false)
	}
	if err != nil {
		h.HandleError(w, r, err, "Failed to update letter format.")
		return
	}
	format, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), form)
	if err != nil {
		h.HandleError(w, r, err, "Failed to update letter format.")
		return
	}
	h.Respond(w, r, http.StatusOK, format)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), id, transport.Confirmed(r)); err != nil {
		h.HandleError(w, r, err, "Failed to delete letter format.")
		return
	}
	h.Respond(w, r, http.StatusOK, map[string]string{"id": id})
}
