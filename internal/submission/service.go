package submission

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
	ListSubmissions(ctx context.Context) ([]villageapi.Submission, error)
	CreateSubmission(ctx context.Context, form *villageapi.Multipart) (villageapi.Submission, error)
	UpdateSubmissionStatus(ctx context.Context, id villageapi.ID, status villageapi.SubmissionStatus) (villageapi.Submission, error)
	DeleteSubmission(ctx context.Context, id villageapi.ID) error
}

type Service struct {
	api         APIClient
	submissions *resource.Resource[villageapi.Submission]
	notifier    notify.Notifier
	logger      *slog.Logger
}

func NewService(api APIClient, notifier notify.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api: api,
		submissions: resource.New(resource.Config[villageapi.Submission]{
			Label:    "Submission",
			Strategy: mutation.OptimisticPatch,
			Notifier: notifier,
			Logger:   logger,
			List: listing.Options[villageapi.Submission]{
				Name:  "submissions",
				Fetch: api.ListSubmissions,
				ID:    func(s villageapi.Submission) string { return s.ID.String() },
				Search: func(s villageapi.Submission) []string {
					return []string{s.SenderName, s.WhatsApp, s.Category, s.Notes, s.FileName}
				},
				Category: func(s villageapi.Submission) []string { return []string{s.Category, string(s.Status)} },
				SortKeys: []listing.SortKey[villageapi.Submission]{
					{Name: "createdAt", Less: func(a, b villageapi.Submission) bool { return a.CreatedAt.Before(b.CreatedAt.Time) }},
					{Name: "senderName", Less: func(a, b villageapi.Submission) bool {
						return strings.ToLower(a.SenderName) < strings.ToLower(b.SenderName)
					}},
					{Name: "status", Less: func(a, b villageapi.Submission) bool { return a.Status < b.Status }},
				},
				DefaultSort: "createdAt",
				DefaultDir:  listing.Desc,
				PageSize:    PageSize,
			},
		}),
		notifier: notifier,
		logger:   logger,
	}
}

func (s *Service) Submissions() *resource.Resource[villageapi.Submission] { return s.submissions }

func (s *Service) List(ctx context.Context) *listing.Controller[villageapi.Submission] {
	return s.submissions.List(ctx)
}

// Submit uploads a citizen's document. Visitors hold no submission list, so
// nothing local is patched.
func (s *Service) Submit(ctx context.Context, form *villageapi.Multipart) (villageapi.Submission, error) {
	sub, err := s.api.CreateSubmission(ctx, form)
	if err != nil {
		s.logger.Error("submission upload failed", "error", err)
		s.notify(ctx, notify.FromError(err, "Failed to send the document.")...)
		return villageapi.Submission{}, notify.Reported(err)
	}
	s.logger.Info("submission received", "submission_id", sub.ID, "category", sub.Category)
	s.notify(ctx, notify.Success("Your document has been sent and will be processed."))
	return sub, nil
}

// Complete marks a DIPROSES submission as SELESAI.
func (s *Service) Complete(ctx context.Context, id string) (villageapi.Submission, error) {
	list := s.List(ctx)
	if err := list.EnsureLoaded(ctx); err != nil {
		return villageapi.Submission{}, err
	}
	if current, ok := list.Find(id); ok && current.Status != villageapi.SubmissionProcessing {
		s.logger.Warn("submission already completed", "submission_id", id, "status", current.Status)
		return villageapi.Submission{}, internal.ErrInvalidTransition
	}
	return s.submissions.Flow(ctx).Update(ctx, func(ctx context.Context) (villageapi.Submission, error) {
		return s.api.UpdateSubmissionStatus(ctx, villageapi.ID(id), villageapi.SubmissionDone)
	})
}

func (s *Service) Delete(ctx context.Context, id string, confirmed bool) error {
	return s.submissions.Flow(ctx).Delete(ctx, id, confirmed, func(ctx context.Context) error {
		return s.api.DeleteSubmission(ctx, villageapi.ID(id))
	})
}

func (s *Service) notify(ctx context.Context, notices ...notify.Notice) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, notices...)
	}
}
