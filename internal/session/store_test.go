package session_test

import (
	"context"
	"time"

	"github.com/frahmantamala/tandengan-portal/internal/core/events"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
	"github.com/frahmantamala/tandengan-portal/internal/session"
	sessionPostgres "github.com/frahmantamala/tandengan-portal/internal/session/postgres"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Store", func() {
	var (
		ctx   context.Context
		now   time.Time
		store *session.Store
		user  villageapi.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		store = session.NewStore(sessionPostgres.NewSessionRepository(openTestDB()), events.NewEventBus(quietLogger), 30*time.Minute, quietLogger)
		store.SetClock(func() time.Time { return now })
		user = villageapi.User{ID: "9", FirstName: "Yohan", LastName: "Rumengan", Email: "yohan@desa.id", Role: villageapi.RoleUser}
	})

	It("should return a session it has stored", func() {
		// Given
		sess, err := store.Set(ctx, user, "connect.sid=abc")
		Expect(err).NotTo(HaveOccurred())

		// When
		got, err := store.Get(ctx, sess.ID)

		// Then
		Expect(err).NotTo(HaveOccurred())
		Expect(got.User).To(Equal(user))
		Expect(got.UpstreamCookie).To(Equal("connect.sid=abc"))
		Expect(got.ExpiresAt).To(BeTemporally("==", now.Add(30*time.Minute)))
	})

	It("should treat an expired session as missing", func() {
		sess, err := store.Set(ctx, user, "")
		Expect(err).NotTo(HaveOccurred())

		now = now.Add(31 * time.Minute)
		_, err = store.Get(ctx, sess.ID)

		Expect(err).To(MatchError(session.ErrNotFound))
	})

	It("should report an unknown id as missing", func() {
		_, err := store.Get(ctx, "no-such-session")

		Expect(err).To(MatchError(session.ErrNotFound))
	})

	It("should announce a cleared session to subscribers", func() {
		// Given
		sess, err := store.Set(ctx, user, "")
		Expect(err).NotTo(HaveOccurred())
		var cleared []string
		unsubscribe := store.OnInvalidated(func(_ context.Context, id string) { cleared = append(cleared, id) })
		defer unsubscribe()

		// When
		Expect(store.Clear(ctx, sess.ID, session.ReasonLogout)).To(Succeed())

		// Then
		Expect(cleared).To(Equal([]string{sess.ID}))
		_, err = store.Get(ctx, sess.ID)
		Expect(err).To(MatchError(session.ErrNotFound))
	})

	It("should drain queued notices oldest first and only once", func() {
		sess, err := store.Set(ctx, user, "")
		Expect(err).NotTo(HaveOccurred())

		Expect(store.Notify(ctx, sess.ID, notify.Success("Saved."))).To(Succeed())
		Expect(store.Notify(ctx, sess.ID, notify.Warning("Careful."))).To(Succeed())

		notices, err := store.Notices(ctx, sess.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(notices).To(Equal([]notify.Notice{notify.Success("Saved."), notify.Warning("Careful.")}))

		again, err := store.Notices(ctx, sess.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(BeEmpty())
	})

	It("should purge only expired sessions", func() {
		old, err := store.Set(ctx, user, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Notify(ctx, old.ID, notify.Info("pending"))).To(Succeed())

		now = now.Add(20 * time.Minute)
		fresh, err := store.Set(ctx, user, "")
		Expect(err).NotTo(HaveOccurred())

		now = now.Add(15 * time.Minute)
		n, err := store.Purge(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(1)))
		_, err = store.Get(ctx, fresh.ID)
		Expect(err).NotTo(HaveOccurred())
	})
})
