package guestreport

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/tandengan-portal/internal/listing"
	"github.com/frahmantamala/tandengan-portal/internal/lookup"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
	"github.com/frahmantamala/tandengan-portal/internal/resource"
	"github.com/frahmantamala/tandengan-portal/internal/transport"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context) *listing.Controller[villageapi.GuestReport]
	Register(ctx context.Context, dto RegisterDTO) (villageapi.GuestReport, error)
	Approve(ctx context.Context, id, message string) (villageapi.GuestReport, error)
	Reject(ctx context.Context, id, message string) (villageapi.GuestReport, error)
	Delete(ctx context.Context, id string, confirmed bool) error
	Export(ctx context.Context) ([]villageapi.GuestReport, error)
}

type LookupAPI interface {
	Status(clientKey string) lookup.Outcome
	Check(ctx context.Context, clientKey, code string) (lookup.Outcome, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Tracker LookupAPI
	now     func() time.Time
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI, lookupService LookupAPI) *Handler {
	return &Handler{BaseHandler: base, Service: service, Tracker: lookupService, now: time.Now}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err, "Failed to submit the registration.")
		return
	}
	report, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.HandleError(w, r, err, "Failed to submit the registration.")
		return
	}
	h.Respond(w, r, http.StatusCreated, report)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	transport.ServeList(h.BaseHandler, w, r, h.Service.List(r.Context()))
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	transport.Refresh(h.BaseHandler, w, r, h.Service.List(r.Context()))
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Approve)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id, message string) (villageapi.GuestReport, error)) {
	id := chi.URLParam(r, "id")
	var dto DecisionDTO
	if r.ContentLength != 0 {
		if err := h.DecodeJSON(r, &dto); err != nil {
			h.HandleError(w, r, err, "Failed to update guest report.")
			return
		}
	}
	report, err := fn(r.Context(), id, dto.StatusMessage)
	if err != nil {
		h.Logger.Error("guest report decision failed", "guest_report_id", id, "error", err)
		h.HandleError(w, r, err, "Failed to update guest report.")
		return
	}
	h.Respond(w, r, http.StatusOK, report)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), id, transport.Confirmed(r)); err != nil {
		h.HandleError(w, r, err, "Failed to delete guest report.")
		return
	}
	h.Respond(w, r, http.StatusOK, map[string]string{"id": id})
}

// Export downloads the filtered list as CSV.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if err := transport.ApplyListQuery(h.Service.List(r.Context()), transport.ParseListQuery(r)); err != nil {
		h.HandleError(w, r, err, "invalid list parameters")
		return
	}
	reports, err := h.Service.Export(r.Context())
	if err != nil {
		h.HandleError(w, r, err, "Failed to export guest reports.")
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, reports); err != nil {
		h.HandleError(w, r, err, "Failed to export guest reports.")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, ExportFilename(h.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// CooldownStatus reports whether the caller may check a code right now.
func (h *Handler) CooldownStatus(w http.ResponseWriter, r *http.Request) {
	h.Respond(w, r, http.StatusOK, h.Tracker.Status(resource.ClientKey(r.Context())))
}

// CheckStatus checks a tracking code, given as ?code= or a JSON body.
func (h *Handler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" && r.Method == http.MethodPost {
		var dto LookupDTO
		if err := h.DecodeJSON(r, &dto); err != nil {
			h.HandleError(w, r, err, "Invalid tracking code.")
			return
		}
		code = dto.TrackingCode
	}

	outcome, err := h.Tracker.Check(r.Context(), resource.ClientKey(r.Context()), code)
	if err != nil {
		h.HandleError(w, r, err, "Invalid tracking code.")
		return
	}

	status := http.StatusOK
	c := notify.CollectorFrom(r.Context())
	switch outcome.State {
	case lookup.StateCoolingDown:
		status = http.StatusTooManyRequests
		w.Header().Set("Retry-After", strconv.Itoa(outcome.RetryAfterSeconds))
		if c != nil {
			c.Add(notify.Info(outcome.Message))
		}
	case lookup.StateNotFound:
		status = http.StatusNotFound
	case lookup.StateError:
		status = http.StatusBadGateway
		if c != nil {
			c.Add(notify.Error(outcome.Message))
		}
	}
	h.Respond(w, r, status, outcome)
}
