package finance

import (
	"context"
	"net/http"

	"github.com/frahmantamala/tandengan-portal/internal/listing"
	"github.com/frahmantamala/tandengan-portal/internal/transport"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context) *listing.Controller[villageapi.FinancePeriod]
	CreatePeriod(ctx context.Context, dto PeriodDTO) (villageapi.FinancePeriod, error)
	DeletePeriod(ctx context.Context, id string, confirmed bool) error
	CreateItem(ctx context.Context, kind villageapi.FinanceItemKind, dto ItemDTO) (villageapi.FinanceItem, error)
	UpdateItem(ctx context.Context, kind villageapi.FinanceItemKind, id string, dto ItemDTO) (villageapi.FinanceItem, error)
	DeleteItem(ctx context.Context, kind villageapi.FinanceItemKind, id string, confirmed bool) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, Service: service}
}

func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	transport.ServeList(h.BaseHandler, w, r, h.Service.List(r.Context()))
}

func (h *Handler) RefreshPeriods(w http.ResponseWriter, r *http.Request) {
	transport.Refresh(h.BaseHandler, w, r, h.Service.List(r.Context()))
}

func (h *Handler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var dto PeriodDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err, "Failed to create finance period.")
		return
	}
	period, err := h.Service.CreatePeriod(r.Context(), dto)
	if err != nil {
		h.HandleError(w, r, err, "Failed to create finance period.")
		return
	}
	h.Respond(w, r, http.StatusCreated, period)
}

func (h *Handler) DeletePeriod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.DeletePeriod(r.Context(), id, transport.Confirmed(r)); err != nil {
		h.HandleError(w, r, err, "Failed to delete finance period.")
		return
	}
	h.Respond(w, r, http.StatusOK, map[string]string{"id": id})
}

func kindParam(r *http.Request) villageapi.FinanceItemKind {
	return villageapi.FinanceItemKind(chi.URLParam(r, "kind"))
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var dto ItemDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err, "Failed to create finance item.")
		return
	}
	item, err := h.Service.CreateItem(r.Context(), kindParam(r), dto)
	if err != nil {
		h.HandleError(w, r, err, "Failed to create finance item.")
		return
	}
	h.Respond(w, r, http.StatusCreated, item)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var dto ItemDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err, "Failed to update finance item.")
		return
	}
	item, err := h.Service.UpdateItem(r.Context(), kindParam(r), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleError(w, r, err, "Failed to update finance item.")
		return
	}
	h.Respond(w, r, http.StatusOK, item)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.DeleteItem(r.Context(), kindParam(r), id, transport.Confirmed(r)); err != nil {
		h.HandleError(w, r, err, "Failed to delete finance item.")
		return
	}
	h.Respond(w, r, http.StatusOK, map[string]string{"id": id})
}
