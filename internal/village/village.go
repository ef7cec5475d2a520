// Package village serves the village profile shown on the about pages.
package village

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/tandengan-portal/internal/notify"
	"github.com/frahmantamala/tandengan-portal/internal/transport"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
)

type APIClient interface {
	GetVillageProfile(ctx context.Context) (villageapi.VillageProfile, error)
	UpdateVillageProfile(ctx context.Context, in villageapi.VillageProfile) (villageapi.VillageProfile, error)
}

type ProfileDTO struct {
	Name       string `json:"name" validate:"required,max=150"`
	Vision     string `json:"vision"`
	Mission    string `json:"mission"`
	History    string `json:"history"`
	Address    string `json:"address" validate:"max=255"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"max=20"`
	Area       string `json:"area" validate:"max=50"`
	Population int    `json:"population" validate:"gte=0"`
}

type Service struct {
	api      APIClient
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewService(api APIClient, notifier notify.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, notifier: notifier, logger: logger}
}

func (s *Service) Profile(ctx context.Context) (villageapi.VillageProfile, error) {
	return s.api.GetVillageProfile(ctx)
}

func (s *Service) UpdateProfile(ctx context.Context, dto ProfileDTO) (villageapi.VillageProfile, error) {
	profile, err := s.api.UpdateVillageProfile(ctx, villageapi.VillageProfile(dto))
	if err != nil {
		s.logger.Error("village profile update failed", "error", err)
		s.notify(ctx, notify.FromError(err, "Failed to update village profile.")...)
		return villageapi.VillageProfile{}, notify.Reported(err)
	}
	s.notify(ctx, notify.Success("Village profile updated successfully."))
	return profile, nil
}

func (s *Service) notify(ctx context.Context, notices ...notify.Notice) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, notices...)
	}
}

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(base *transport.BaseHandler, svc *Service) *Handler {
	return &Handler{BaseHandler: base, Service: svc}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Service.Profile(r.Context())
	if err != nil {
		h.HandleError(w, r, err, "Failed to load village profile.")
		return
	}
	h.Respond(w, r, http.StatusOK, profile)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto ProfileDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err, "Failed to update village profile.")
		return
	}
	profile, err := h.Service.UpdateProfile(r.Context(), dto)
	if err != nil {
		h.HandleError(w, r, err, "Failed to update village profile.")
		return
	}
	h.Respond(w, r, http.StatusOK, profile)
}
