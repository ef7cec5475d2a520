package guestreport

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/listing"
	"github.com/frahmantamala/tandengan-portal/internal/mutation"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
	"github.com/frahmantamala/tandengan-portal/internal/resource"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
)

const PageSize = 10

type APIClient interface {
	ListGuestReports(ctx context.Context) ([]villageapi.GuestReport, error)
	RegisterGuest(ctx context.Context, in villageapi.GuestReportInput) (villageapi.GuestReport, error)
	UpdateGuestReportStatus(ctx context.Context, id villageapi.ID, in villageapi.GuestStatusInput) (villageapi.GuestReport, error)
	DeleteGuestReport(ctx context.Context, id villageapi.ID) error
}

type Service struct {
	api      APIClient
	reports  *resource.Resource[villageapi.GuestReport]
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewService(api APIClient, notifier notify.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{api: api, notifier: notifier, logger: logger}
	s.reports = resource.New(resource.Config[villageapi.GuestReport]{
		Label:    "Guest report",
		Strategy: mutation.OptimisticPatch,
		Notifier: notifier,
		Logger:   logger,
		List: listing.Options[villageapi.GuestReport]{
			Name:  "guest reports",
			Fetch: api.ListGuestReports,
			ID:    func(g villageapi.GuestReport) string { return g.ID.String() },
			Search: func(g villageapi.GuestReport) []string {
				return []string{g.Name, g.TrackingCode, g.NationalID, g.OriginAddress, g.StayLocation, g.Phone}
			},
			Category: func(g villageapi.GuestReport) []string { return []string{string(g.Status)} },
			SortKeys: []listing.SortKey[villageapi.GuestReport]{
				{Name: "createdAt", Less: func(a, b villageapi.GuestReport) bool { return a.CreatedAt.Before(b.CreatedAt.Time) }},
				{Name: "name", Less: func(a, b villageapi.GuestReport) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }},
				{Name: "status", Less: func(a, b villageapi.GuestReport) bool { return a.Status < b.Status }},
			},
			DefaultSort: "createdAt",
			DefaultDir:  listing.Desc,
			PageSize:    PageSize,
		},
	})
	return s
}

func (s *Service) Reports() *resource.Resource[villageapi.GuestReport] {
	return s.reports
}

// List is the caller's admin list of guest reports.
func (s *Service) List(ctx context.Context) *listing.Controller[villageapi.GuestReport] {
	return s.reports.List(ctx)
}

// Register submits the signup form. The tracking code issued by the API is
// shown to the guest once, in the success notice.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (villageapi.GuestReport, error) {
	report, err := s.api.RegisterGuest(ctx, dto.toInput())
	if err != nil {
		s.logger.Error("guest registration failed", "error", err)
		s.notify(ctx, notify.FromError(err, "Failed to submit the registration.")...)
		return villageapi.GuestReport{}, notify.Reported(err)
	}
	s.logger.Info("guest registered", "guest_report_id", report.ID, "tracking_code", report.TrackingCode)
	s.notify(ctx, notify.Success(fmt.Sprintf("Registration received. Your tracking code is %s.", report.TrackingCode)))
	return report, nil
}

func (s *Service) Approve(ctx context.Context, id, message string) (villageapi.GuestReport, error) {
	return s.decide(ctx, id, villageapi.GuestApproved, message)
}

func (s *Service) Reject(ctx context.Context, id, message string) (villageapi.GuestReport, error) {
	return s.decide(ctx, id, villageapi.GuestRejected, message)
}

// decide moves a PENDING report to a terminal status. A report already
// decided locally is refused without calling the API.
func (s *Service) decide(ctx context.Context, id string, status villageapi.GuestStatus, message string) (villageapi.GuestReport, error) {
	list := s.List(ctx)
	if current, ok := list.Find(id); ok && current.Status != villageapi.GuestPending {
		s.logger.Warn("guest report already decided", "guest_report_id", id, "status", current.Status, "requested", status)
		return villageapi.GuestReport{}, internal.ErrInvalidTransition
	}

	return s.reports.Flow(ctx).Update(ctx, func(ctx context.Context) (villageapi.GuestReport, error) {
		return s.api.UpdateGuestReportStatus(ctx, villageapi.ID(id), villageapi.GuestStatusInput{
			Status:        status,
			StatusMessage: message,
		})
	})
}

func (s *Service) Delete(ctx context.Context, id string, confirmed bool) error {
	return s.reports.Flow(ctx).Delete(ctx, id, confirmed, func(ctx context.Context) error {
		return s.api.DeleteGuestReport(ctx, villageapi.ID(id))
	})
}

// Export returns the reports the caller currently sees, filtered and
// sorted but not paginated.
func (s *Service) Export(ctx context.Context) ([]villageapi.GuestReport, error) {
	list := s.List(ctx)
	if err := list.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return list.Visible(), nil
}

func (s *Service) notify(ctx context.Context, notices ...notify.Notice) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, notices...)
	}
}
