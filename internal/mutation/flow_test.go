package mutation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/listing"
	"github.com/frahmantamala/tandengan-portal/internal/mutation"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMutation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Mutation Suite")
}

type banner struct {
	ID    string
	Title string
	Hits  int
}

type captureNotifier struct {
	notices []notify.Notice
}

func (n *captureNotifier) Notify(_ context.Context, notices ...notify.Notice) {
	n.notices = append(n.notices, notices...)
}

var _ = Describe("Flow", func() {
	var (
		ctx      context.Context
		notifier *captureNotifier
		list     *listing.Controller[banner]
		fetches  int
		remote   []banner
	)

	BeforeEach(func() {
		ctx = context.Background()
		notifier = &captureNotifier{}
		fetches = 0
		remote = []banner{{ID: "1", Title: "Panen raya"}, {ID: "2", Title: "Festival danau"}}
		list = listing.New(listing.Options[banner]{
			Name: "banners",
			Fetch: func(ctx context.Context) ([]banner, error) {
				fetches++
				return append([]banner(nil), remote...), nil
			},
			ID: func(b banner) string { return b.ID },
		})
		Expect(list.Load(ctx)).To(Succeed())
		fetches = 0
	})

	Context("with optimistic patching", func() {
		var flow *mutation.Flow[banner]

		BeforeEach(func() {
			flow = mutation.New[banner](list, mutation.OptimisticPatch, notifier, "Banner", nil)
		})

		It("should merge a created item without refetching", func() {
			// When
			created, err := flow.Create(ctx, func(ctx context.Context) (banner, error) {
				return banner{ID: "3", Title: "Baru"}, nil
			})

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(Equal("3"))
			Expect(list.Items()).To(HaveLen(3))
			Expect(fetches).To(BeZero())
			Expect(notifier.notices).To(ConsistOf(notify.Success("Banner created successfully.")))
		})

		It("should replace the updated item in place", func() {
			_, err := flow.Update(ctx, func(ctx context.Context) (banner, error) {
				return banner{ID: "2", Title: "Festival"}, nil
			})

			Expect(err).NotTo(HaveOccurred())
			b, ok := list.Find("2")
			Expect(ok).To(BeTrue())
			Expect(b.Title).To(Equal("Festival"))
		})

		It("should refuse to delete without confirmation", func() {
			called := false

			err := flow.Delete(ctx, "1", false, func(ctx context.Context) error {
				called = true
				return nil
			})

			Expect(err).To(Equal(internal.ErrConfirmationRequired))
			Expect(called).To(BeFalse())
			Expect(list.Items()).To(HaveLen(2))
		})

		It("should call the API but leave the list unchanged for an id not held locally", func() {
			called := false

			err := flow.Delete(ctx, "99", true, func(ctx context.Context) error {
				called = true
				return nil
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(called).To(BeTrue())
			Expect(list.Items()).To(HaveLen(2))
		})

		It("should keep the local list and report the failure once", func() {
			// Given
			apiErr := errors.New("upstream down")

			// When
			err := flow.Delete(ctx, "1", true, func(ctx context.Context) error { return apiErr })

			// Then
			Expect(errors.Is(err, apiErr)).To(BeTrue())
			Expect(notify.WasReported(err)).To(BeTrue())
			Expect(list.Items()).To(HaveLen(2))
			Expect(notifier.notices).To(ConsistOf(notify.Error("Failed to delete Banner.")))
		})
	})

	Context("with full reload", func() {
		It("should refetch the collection after a successful change", func() {
			flow := mutation.New[banner](list, mutation.FullReload, notifier, "Banner", nil)
			remote = append(remote, banner{ID: "3", Title: "Server side"})

			_, err := flow.Create(ctx, func(ctx context.Context) (banner, error) {
				return banner{ID: "3", Title: "Local copy"}, nil
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(fetches).To(Equal(1))
			b, _ := list.Find("3")
			Expect(b.Title).To(Equal("Server side"))
		})
	})

	Describe("Patch", func() {
		var flow *mutation.Flow[banner]

		bump := func(delta int) func() {
			return func() {
				list.Modify("1", func(b banner) banner {
					b.Hits += delta
					return b
				})
			}
		}

		BeforeEach(func() {
			flow = mutation.New[banner](list, mutation.OptimisticPatch, notifier, "Banner", nil)
		})

		It("should keep the local change when the call succeeds", func() {
			Expect(flow.Patch(ctx, bump(1), bump(-1), func(ctx context.Context) error { return nil })).To(Succeed())

			b, _ := list.Find("1")
			Expect(b.Hits).To(Equal(1))
		})

		It("should revert the local change when the call fails", func() {
			err := flow.Patch(ctx, bump(1), bump(-1), func(ctx context.Context) error { return errors.New("nope") })

			Expect(err).To(HaveOccurred())
			b, _ := list.Find("1")
			Expect(b.Hits).To(BeZero())
			Expect(notifier.notices).To(HaveLen(1))
		})
	})
})
