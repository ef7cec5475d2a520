package notify_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestNotify(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notify Suite")
}

type pendingStore struct {
	sessions map[string][]notify.Notice
	err      error
}

func (p *pendingStore) Notify(_ context.Context, sessionID string, notices ...notify.Notice) error {
	if p.err != nil {
		return p.err
	}
	p.sessions[sessionID] = append(p.sessions[sessionID], notices...)
	return nil
}

var _ = Describe("FromError", func() {
	It("should raise one error per validation detail", func() {
		err := &villageapi.APIError{Kind: villageapi.KindValidation, Message: "Validation failed", Details: []villageapi.FieldDetail{
			{Field: "title", Message: "Title is required"},
			{Field: "date", Message: "Date is invalid"},
		}}

		Expect(notify.FromError(err, "fallback")).To(Equal([]notify.Notice{
			notify.Error("Title is required"),
			notify.Error("Date is invalid"),
		}))
	})

	It("should warn on file type and rate limit rejections", func() {
		Expect(notify.FromError(&villageapi.APIError{Kind: villageapi.KindFileType, Message: "Tipe file tidak didukung"}, "x")).
			To(ConsistOf(notify.Warning("Tipe file tidak didukung")))
		Expect(notify.FromError(&villageapi.APIError{Kind: villageapi.KindRateLimit, Message: "Terlalu banyak"}, "x")).
			To(ConsistOf(notify.Warning("Terlalu banyak")))
	})

	It("should fall back for unrecognised failures", func() {
		Expect(notify.FromError(errors.New("socket closed"), "Failed to load news.")).
			To(ConsistOf(notify.Error("Failed to load news.")))
		Expect(notify.FromError(internal.NewInternalError("db", nil), "Failed.")).
			To(ConsistOf(notify.Error("Failed.")))
	})

	It("should inform rather than alarm on a missing confirmation", func() {
		Expect(notify.FromError(internal.ErrConfirmationRequired, "x")).
			To(ConsistOf(notify.Info(internal.ErrConfirmationRequired.Message)))
	})

	It("should return nothing for a nil error", func() {
		Expect(notify.FromError(nil, "x")).To(BeEmpty())
	})
})

var _ = Describe("Router", func() {
	var (
		pending *pendingStore
		router  *notify.Router
	)

	BeforeEach(func() {
		pending = &pendingStore{sessions: map[string][]notify.Notice{}}
		router = notify.NewRouter(pending, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	It("should prefer the request collector", func() {
		ctx, collector := notify.WithCollector(internal.ContextWithSessionID(context.Background(), "s1"))

		router.Notify(ctx, notify.Success("Saved."))

		Expect(collector.Drain()).To(ConsistOf(notify.Success("Saved.")))
		Expect(pending.sessions).To(BeEmpty())
	})

	It("should queue for the session when no request is collecting", func() {
		ctx := internal.ContextWithSessionID(context.Background(), "s1")

		router.Notify(ctx, notify.Info("Data refreshed."))

		Expect(pending.sessions["s1"]).To(ConsistOf(notify.Info("Data refreshed.")))
	})

	It("should not panic when neither target exists", func() {
		pending.err = errors.New("db down")

		Expect(func() {
			router.Notify(internal.ContextWithSessionID(context.Background(), "s1"), notify.Error("x"))
			router.Notify(context.Background(), notify.Error("y"))
		}).NotTo(Panic())
	})
})

var _ = Describe("Reported", func() {
	It("should wrap once and keep the cause reachable", func() {
		cause := errors.New("boom")

		err := notify.Reported(notify.Reported(cause))

		Expect(notify.WasReported(err)).To(BeTrue())
		Expect(errors.Is(err, cause)).To(BeTrue())
		Expect(errors.Unwrap(err)).To(Equal(cause))
	})

	It("should leave nil alone", func() {
		Expect(notify.Reported(nil)).To(BeNil())
		Expect(notify.WasReported(errors.New("plain"))).To(BeFalse())
	})
})
