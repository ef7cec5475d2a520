package submission_test

import (
	"context"
	"testing"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/submission"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSubmission(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Submission Suite")
}

type mockAPI struct {
	submissions []villageapi.Submission
	statusCalls []villageapi.SubmissionStatus
}

func (m *mockAPI) ListSubmissions(context.Context) ([]villageapi.Submission, error) {
	return append([]villageapi.Submission(nil), m.submissions...), nil
}

func (m *mockAPI) CreateSubmission(context.Context, *villageapi.Multipart) (villageapi.Submission, error) {
	return villageapi.Submission{ID: "9", Status: villageapi.SubmissionProcessing}, nil
}

func (m *mockAPI) UpdateSubmissionStatus(_ context.Context, id villageapi.ID, status villageapi.SubmissionStatus) (villageapi.Submission, error) {
	m.statusCalls = append(m.statusCalls, status)
	for _, s := range m.submissions {
		if s.ID == id {
			s.Status = status
			return s, nil
		}
	}
	return villageapi.Submission{}, &villageapi.APIError{Kind: villageapi.KindNotFound, Message: "not found"}
}

func (m *mockAPI) DeleteSubmission(context.Context, villageapi.ID) error { return nil }

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		api     *mockAPI
		service *submission.Service
	)

	BeforeEach(func() {
		ctx = internal.ContextWithClientKey(context.Background(), internal.SessionClientKey("admin-1"))
		api = &mockAPI{submissions: []villageapi.Submission{
			{ID: "1", SenderName: "Yohana", Status: villageapi.SubmissionProcessing},
			{ID: "2", SenderName: "Stevan", Status: villageapi.SubmissionDone},
		}}
		service = submission.NewService(api, nil, nil)
		Expect(service.List(ctx).Load(ctx)).To(Succeed())
	})

	It("should complete a submission that is being processed", func() {
		// When
		sub, err := service.Complete(ctx, "1")

		// Then
		Expect(err).NotTo(HaveOccurred())
		Expect(sub.Status).To(Equal(villageapi.SubmissionDone))
		held, ok := service.List(ctx).Find("1")
		Expect(ok).To(BeTrue())
		Expect(held.Status).To(Equal(villageapi.SubmissionDone))
	})

	It("should refuse to complete a finished submission without calling the api", func() {
		_, err := service.Complete(ctx, "2")

		Expect(err).To(Equal(internal.ErrInvalidTransition))
		Expect(api.statusCalls).To(BeEmpty())
	})

	It("should ask for confirmation before deleting", func() {
		err := service.Delete(ctx, "1", false)

		Expect(err).To(Equal(internal.ErrConfirmationRequired))
		_, ok := service.List(ctx).Find("1")
		Expect(ok).To(BeTrue())
	})
})
