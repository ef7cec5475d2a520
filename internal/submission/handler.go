package submission

import (
	"context"
	"net/http"
	"regexp"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/core/common/validation"
	"github.com/frahmantamala/tandengan-portal/internal/listing"
	"github.com/frahmantamala/tandengan-portal/internal/transport"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context) *listing.Controller[villageapi.Submission]
	Submit(ctx context.Context, form *villageapi.Multipart) (villageapi.Submission, error)
	Complete(ctx context.Context, id string) (villageapi.Submission, error)
	Delete(ctx context.Context, id string, confirmed bool) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, Service: service}
}

var whatsAppPattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

func validateForm(form *villageapi.Multipart) error {
	v := validation.NewValidator()
	v.Field("senderName", form.Fields["senderName"]).Required().MaxLength(100)
	v.Field("whatsapp", form.Fields["whatsapp"]).Required().Matches(whatsAppPattern, internal.ErrCodeValidationFailed)
	v.Field("category", form.Fields["category"]).Required().MaxLength(100)
	v.Field("notes", form.Fields["notes"]).MaxLength(1000)
	v.Field(FileField, form.FileNames(FileField)).Required()
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	form, done, err := h.ReadMultipart(r, FileField)
	defer done()
	if err == nil {
		err = validateForm(form)
	}
	if err != nil {
		h.HandleError(w, r, err, "Failed to send the document.")
		return
	}
	sub, err := h.Service.Submit(r.Context(), form)
	if err != nil {
		h.HandleError(w, r, err, "Failed to send the document.")
		return
	}
	h.Respond(w, r, http.StatusCreated, sub)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	transport.ServeList(h.BaseHandler, w, r, h.Service.List(r.Context()))
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	transport.Refresh(h.BaseHandler, w, r, h.Service.List(r.Context()))
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	sub, err := h.Service.Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleError(w, r, err, "Failed to update submission.")
		return
	}
	h.Respond(w, r, http.StatusOK, sub)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), id, transport.Confirmed(r)); err != nil {
		h.HandleError(w, r, err, "Failed to delete submission.")
		return
	}
	h.Respond(w, r, http.StatusOK, map[string]string{"id": id})
}
