package auth_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/auth"
	sessionDatamodel "github.com/frahmantamala/tandengan-portal/internal/core/datamodel/session"
	"github.com/frahmantamala/tandengan-portal/internal/core/events"
	"github.com/frahmantamala/tandengan-portal/internal/session"
	sessionPostgres "github.com/frahmantamala/tandengan-portal/internal/session/postgres"
	"github.com/frahmantamala/tandengan-portal/internal/transport"
	"github.com/frahmantamala/tandengan-portal/internal/transport/middleware"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

const cookieName = "sid"

type mockAPI struct {
	user        *villageapi.User
	loginErr    error
	logoutCalls []string
}

func (m *mockAPI) Login(context.Context, villageapi.LoginRequest) (*villageapi.User, string, error) {
	if m.loginErr != nil {
		return nil, "", m.loginErr
	}
	return m.user, "connect.sid=s%3Aupstream", nil
}

func (m *mockAPI) Logout(ctx context.Context) error {
	m.logoutCalls = append(m.logoutCalls, villageapi.CredentialsFromContext(ctx))
	return nil
}

func (m *mockAPI) Register(_ context.Context, req villageapi.RegisterRequest) (*villageapi.User, error) {
	return &villageapi.User{ID: "8", FirstName: req.FirstName, Email: req.Email}, nil
}

func (m *mockAPI) Me(context.Context) (*villageapi.User, error) {
	return m.user, nil
}

func openTestDB() *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())

	sqlDB, err := db.DB()
	Expect(err).NotTo(HaveOccurred())
	sqlDB.SetMaxOpenConns(1)
	DeferCleanup(sqlDB.Close)

	Expect(db.AutoMigrate(&sessionDatamodel.Session{}, &sessionDatamodel.Notice{})).To(Succeed())
	return db
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

var _ = Describe("Auth Handler Integration", func() {
	var (
		ctx     context.Context
		api     *mockAPI
		store   *session.Store
		router  *chi.Mux
		reached *http.Request
	)

	BeforeEach(func() {
		ctx = context.Background()
		slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
		api = &mockAPI{user: &villageapi.User{ID: "42", FirstName: "Sari", Email: "sari@desa.id", Role: villageapi.RoleAdmin}}
		store = session.NewStore(sessionPostgres.NewSessionRepository(openTestDB()), events.NewEventBus(slogger), time.Hour, slogger)
		codec := session.NewCookieCodec(session.CookieConfig{Name: cookieName, Secret: "0123456789abcdef0123456789abcdef", TTL: time.Hour})
		guard := session.NewGuard(store, codec, api, slogger)
		handler := auth.NewHandler(transport.NewBaseHandler(slogger, guard, 0), auth.NewService(api, nil, slogger))
		reached = nil

		router = chi.NewRouter()
		router.Use(guard.Resolve)
		router.Use(middleware.Notices(store, slogger))
		router.Post(session.PathLogin, handler.Login)
		router.Post("/logout", handler.Logout)
		router.Get("/admin/dashboard", func(w http.ResponseWriter, r *http.Request) {
			reached = r
			w.WriteHeader(http.StatusNoContent)
		})
	})

	send := func(method, target, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
		var rdr io.Reader
		if body != "" {
			rdr = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, target, rdr)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	login := func() *http.Cookie {
		rec := send(http.MethodPost, session.PathLogin, `{"email":"sari@desa.id","password":"rahasia"}`, nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		cookie := cookieNamed(rec, cookieName)
		Expect(cookie).NotTo(BeNil())
		return cookie
	}

	It("should start a session that opens the admin area", func() {
		// Given
		cookie := login()

		// When
		rec := send(http.MethodGet, "/admin/dashboard", "", cookie)

		// Then
		Expect(rec.Code).To(Equal(http.StatusNoContent))
		sess := session.FromContext(reached.Context())
		Expect(sess).NotTo(BeNil())
		Expect(sess.UpstreamCookie).To(Equal("connect.sid=s%3Aupstream"))
		Expect(internal.ClientKeyFromContext(reached.Context())).To(Equal(internal.SessionClientKey(sess.ID)))
	})

	It("should end the session on logout and send the browser to login", func() {
		// Given
		cookie := login()
		send(http.MethodGet, "/admin/dashboard", "", cookie)
		sessionID := session.FromContext(reached.Context()).ID

		// When
		rec := send(http.MethodPost, "/logout", "", cookie)

		// Then
		Expect(rec.Code).To(Equal(http.StatusSeeOther))
		Expect(rec.Header().Get("Location")).To(Equal(session.PathLogin))
		cleared := cookieNamed(rec, cookieName)
		Expect(cleared).NotTo(BeNil())
		Expect(cleared.MaxAge).To(BeNumerically("<", 0))
		Expect(api.logoutCalls).To(ConsistOf("connect.sid=s%3Aupstream"))

		_, err := store.Get(ctx, sessionID)
		Expect(err).To(MatchError(session.ErrNotFound))

		again := send(http.MethodGet, "/admin/dashboard", "", cookie)
		Expect(again.Header().Get("Location")).To(Equal(session.PathUnauthorized))
	})

	It("should reject bad credentials without setting a session cookie", func() {
		api.loginErr = &villageapi.APIError{Kind: villageapi.KindUnauthorized, Status: http.StatusUnauthorized, Message: "invalid"}

		rec := send(http.MethodPost, session.PathLogin, `{"email":"sari@desa.id","password":"salah"}`, nil)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(cookieNamed(rec, cookieName)).To(BeNil())
	})
})
