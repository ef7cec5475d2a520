package session_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/core/events"
	"github.com/frahmantamala/tandengan-portal/internal/session"
	sessionPostgres "github.com/frahmantamala/tandengan-portal/internal/session/postgres"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubMe struct {
	user *villageapi.User
	err  error
}

func (s *stubMe) Me(context.Context) (*villageapi.User, error) {
	return s.user, s.err
}

var _ = Describe("Decide", func() {
	DescribeTable("route access",
		func(path string, state session.State, redirect string, clear bool) {
			d := session.Decide(path, state)
			Expect(d.Redirect).To(Equal(redirect))
			Expect(d.ClearCookie).To(Equal(clear))
		},
		Entry("anonymous on home", "/", session.StateAnonymous, "", false),
		Entry("anonymous on admin", "/admin", session.StateAnonymous, session.PathUnauthorized, false),
		Entry("user on admin subpage", "/admin/berita", session.StateUser, session.PathUnauthorized, false),
		Entry("admin on admin", "/admin/berita/", session.StateAdmin, "", false),
		Entry("anonymous on guest signup", "/tamu-wajib-lapor/daftar", session.StateAnonymous, session.PathLogin, false),
		Entry("user on guest signup", "/tamu-wajib-lapor/daftar", session.StateUser, "", false),
		Entry("user on login", "/login", session.StateUser, session.PathHome, false),
		Entry("admin on register", "/register", session.StateAdmin, session.PathHome, false),
		Entry("anonymous on login", "/login", session.StateAnonymous, "", false),
		Entry("malformed anywhere", "/berita", session.StateMalformed, session.PathHome, true),
		Entry("lookalike prefix is not admin", "/administrasi", session.StateAnonymous, "", false),
	)
})

var _ = Describe("CookieCodec", func() {
	var (
		now   time.Time
		codec *session.CookieCodec
		sess  *session.Session
	)

	BeforeEach(func() {
		now = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
		codec = session.NewCookieCodec(session.CookieConfig{Secret: testSecret, TTL: time.Hour})
		codec.SetClock(func() time.Time { return now })
		sess = &session.Session{
			ID:        "sess-1",
			User:      villageapi.User{ID: "7", Role: villageapi.RoleAdmin},
			ExpiresAt: now.Add(time.Hour),
		}
	})

	It("should decode what it encodes", func() {
		raw, err := codec.Encode(sess)
		Expect(err).NotTo(HaveOccurred())

		claims, err := codec.Decode(raw)

		Expect(err).NotTo(HaveOccurred())
		Expect(claims.SessionID).To(Equal("sess-1"))
		Expect(claims.Role).To(Equal(villageapi.RoleAdmin))
		Expect(claims.Subject).To(Equal("7"))
	})

	It("should flag a token signed with another secret as malformed", func() {
		other := session.NewCookieCodec(session.CookieConfig{Secret: "another-secret-another-secret-xx"})
		raw, err := other.Encode(sess)
		Expect(err).NotTo(HaveOccurred())

		_, err = codec.Decode(raw)

		Expect(err).To(MatchError(session.ErrMalformedCookie))
	})

	It("should flag garbage as malformed", func() {
		_, err := codec.Decode("not-a-token")

		Expect(err).To(MatchError(session.ErrMalformedCookie))
	})

	It("should report an expired token separately", func() {
		raw, err := codec.Encode(sess)
		Expect(err).NotTo(HaveOccurred())

		now = now.Add(2 * time.Hour)
		_, err = codec.Decode(raw)

		Expect(err).To(Equal(session.ErrExpiredCookie))
	})
})

var _ = Describe("Guard", func() {
	var (
		ctx         context.Context
		store       *session.Store
		codec       *session.CookieCodec
		me          *stubMe
		guard       *session.Guard
		invalidated []string
		reached     *http.Request
	)

	BeforeEach(func() {
		ctx = context.Background()
		bus := events.NewEventBus(quietLogger)
		store = session.NewStore(sessionPostgres.NewSessionRepository(openTestDB()), bus, time.Hour, quietLogger)
		codec = session.NewCookieCodec(session.CookieConfig{Name: "sid", Secret: testSecret, TTL: time.Hour})
		me = &stubMe{}
		guard = session.NewGuard(store, codec, me, quietLogger)
		invalidated = nil
		reached = nil
		store.OnInvalidated(func(_ context.Context, id string) { invalidated = append(invalidated, id) })
	})

	login := func(role villageapi.Role) (*session.Session, *http.Cookie) {
		rec := httptest.NewRecorder()
		sess, err := guard.Start(ctx, rec, villageapi.User{ID: "42", FirstName: "Sari", Email: "sari@desa.id", Role: role}, "connect.sid=upstream")
		Expect(err).NotTo(HaveOccurred())
		cookies := rec.Result().Cookies()
		Expect(cookies).To(HaveLen(1))
		return sess, cookies[0]
	}

	serve := func(h http.Handler, method, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = "203.0.113.9:5555"
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = r
		w.WriteHeader(http.StatusNoContent)
	})

	It("should send anonymous visitors away from the admin area", func() {
		rec := serve(guard.Resolve(final), http.MethodGet, "/admin", nil)

		Expect(rec.Code).To(Equal(http.StatusSeeOther))
		Expect(rec.Header().Get("Location")).To(Equal(session.PathUnauthorized))
		Expect(reached).To(BeNil())
	})

	Describe("anonymous visitors", func() {
		visitorCookie := func(rec *httptest.ResponseRecorder) *http.Cookie {
			for _, c := range rec.Result().Cookies() {
				if c.Name == codec.VisitorName() {
					return c
				}
			}
			return nil
		}

		It("should give two visitors behind one address their own keys", func() {
			// Given
			first := serve(guard.Resolve(final), http.MethodGet, "/api/news", nil)
			firstKey := internal.ClientKeyFromContext(reached.Context())

			// When
			second := serve(guard.Resolve(final), http.MethodGet, "/api/news", nil)
			secondKey := internal.ClientKeyFromContext(reached.Context())

			// Then
			Expect(first.Code).To(Equal(http.StatusNoContent))
			Expect(firstKey).To(HavePrefix("visitor:"))
			Expect(secondKey).To(HavePrefix("visitor:"))
			Expect(secondKey).NotTo(Equal(firstKey))
			Expect(visitorCookie(first)).NotTo(BeNil())
			Expect(visitorCookie(second)).NotTo(BeNil())
		})

		It("should keep the key of a returning visitor", func() {
			first := serve(guard.Resolve(final), http.MethodGet, "/api/news", nil)
			firstKey := internal.ClientKeyFromContext(reached.Context())

			again := serve(guard.Resolve(final), http.MethodGet, "/api/announcements", visitorCookie(first))

			Expect(internal.ClientKeyFromContext(reached.Context())).To(Equal(firstKey))
			Expect(visitorCookie(again)).To(BeNil())
		})

		It("should replace a forged visitor cookie", func() {
			serve(guard.Resolve(final), http.MethodGet, "/api/news", &http.Cookie{Name: codec.VisitorName(), Value: "forged"})

			Expect(internal.ClientKeyFromContext(reached.Context())).To(HavePrefix("visitor:"))
			Expect(internal.ClientKeyFromContext(reached.Context())).NotTo(Equal("visitor:forged"))
		})
	})

	It("should clear a malformed cookie and redirect home", func() {
		rec := serve(guard.Resolve(final), http.MethodGet, "/berita", &http.Cookie{Name: "sid", Value: "garbage"})

		Expect(rec.Code).To(Equal(http.StatusSeeOther))
		Expect(rec.Header().Get("Location")).To(Equal(session.PathHome))
		cleared := rec.Result().Cookies()
		Expect(cleared).NotTo(BeEmpty())
		Expect(cleared[0].MaxAge).To(BeNumerically("<", 0))
	})

	It("should let an admin through with session credentials in the context", func() {
		// Given
		sess, cookie := login(villageapi.RoleAdmin)

		// When
		rec := serve(guard.Resolve(final), http.MethodGet, "/admin/users", cookie)

		// Then
		Expect(rec.Code).To(Equal(http.StatusNoContent))
		rctx := reached.Context()
		Expect(internal.ClientKeyFromContext(rctx)).To(Equal(internal.SessionClientKey(sess.ID)))
		Expect(villageapi.CredentialsFromContext(rctx)).To(Equal("connect.sid=upstream"))
		Expect(session.FromContext(rctx).User.Email).To(Equal("sari@desa.id"))
	})

	It("should send a signed-in user away from the login page", func() {
		_, cookie := login(villageapi.RoleUser)

		rec := serve(guard.Resolve(final), http.MethodGet, "/login", cookie)

		Expect(rec.Header().Get("Location")).To(Equal(session.PathHome))
	})

	It("should treat a cookie for a cleared session as anonymous", func() {
		sess, cookie := login(villageapi.RoleAdmin)
		Expect(store.Clear(ctx, sess.ID, session.ReasonLogout)).To(Succeed())

		rec := serve(guard.Resolve(final), http.MethodGet, "/admin", cookie)

		Expect(rec.Header().Get("Location")).To(Equal(session.PathUnauthorized))
	})

	Describe("RequireUser", func() {
		It("should refuse an admin page to a user whose upstream role is not admin", func() {
			// Given
			_, cookie := login(villageapi.RoleAdmin)
			me.user = &villageapi.User{ID: "42", Role: villageapi.RoleUser}

			// When
			rec := serve(guard.Resolve(guard.RequireUser(true)(final)), http.MethodGet, "/admin", cookie)

			// Then
			Expect(rec.Header().Get("Location")).To(Equal(session.PathUnauthorized))
		})

		It("should continue anonymously on public pages when the lookup fails", func() {
			me.err = &villageapi.APIError{Kind: villageapi.KindUnknown, Message: "down"}
			_, cookie := login(villageapi.RoleUser)

			rec := serve(guard.Resolve(guard.RequireUser(false)(final)), http.MethodGet, "/me", cookie)

			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(session.UserFromContext(reached.Context())).To(BeNil())
		})
	})

	Describe("GlobalLogout", func() {
		It("should clear the session once and redirect to login with a notice", func() {
			// Given
			sess, cookie := login(villageapi.RoleAdmin)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				guard.GlobalLogout(r.Context())
				guard.GlobalLogout(r.Context())
				Expect(guard.LoggedOut(w, r)).To(BeTrue())
			})

			// When
			rec := serve(guard.Resolve(handler), http.MethodGet, "/admin/berita", cookie)

			// Then
			Expect(rec.Code).To(Equal(http.StatusSeeOther))
			Expect(rec.Header().Get("Location")).To(Equal(session.PathLogin + "?reason=" + session.ReasonSessionExpired))
			var body struct {
				Notices []struct {
					Level string `json:"level"`
				} `json:"notices"`
			}
			Expect(json.NewDecoder(rec.Body).Decode(&body)).To(Succeed())
			Expect(body.Notices).To(HaveLen(1))
			Expect(invalidated).To(Equal([]string{sess.ID}))

			_, err := store.Get(ctx, sess.ID)
			Expect(err).To(MatchError(session.ErrNotFound))
		})

		It("should do nothing for an anonymous request", func() {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				guard.GlobalLogout(r.Context())
				Expect(guard.LoggedOut(w, r)).To(BeFalse())
				w.WriteHeader(http.StatusOK)
			})

			rec := serve(guard.Resolve(handler), http.MethodGet, "/", nil)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(invalidated).To(BeEmpty())
		})
	})
})
