package announcement_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/announcement"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
	"github.com/frahmantamala/tandengan-portal/internal/transport"
	"github.com/frahmantamala/tandengan-portal/internal/transport/middleware"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAnnouncement(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Announcement Suite")
}

type mockAPI struct {
	items   []villageapi.Announcement
	deleted []villageapi.ID
	fetches int
}

func (m *mockAPI) ListAnnouncements(context.Context) ([]villageapi.Announcement, error) {
	m.fetches++
	return append([]villageapi.Announcement(nil), m.items...), nil
}

func (m *mockAPI) CreateAnnouncement(_ context.Context, in villageapi.AnnouncementInput) (villageapi.Announcement, error) {
	a := villageapi.Announcement{ID: "3", Title: in.Title, Body: in.Body, CategoryID: villageapi.ID(in.CategoryID)}
	m.items = append(m.items, a)
	return a, nil
}

func (m *mockAPI) UpdateAnnouncement(_ context.Context, id villageapi.ID, in villageapi.AnnouncementInput) (villageapi.Announcement, error) {
	return villageapi.Announcement{ID: id, Title: in.Title}, nil
}

func (m *mockAPI) DeleteAnnouncement(_ context.Context, id villageapi.ID) error {
	m.deleted = append(m.deleted, id)
	kept := m.items[:0]
	for _, a := range m.items {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	m.items = kept
	return nil
}

func (m *mockAPI) ListAnnouncementCategories(context.Context) ([]villageapi.AnnouncementCategory, error) {
	return []villageapi.AnnouncementCategory{{ID: "1", Name: "Umum"}}, nil
}

func (m *mockAPI) CreateAnnouncementCategory(_ context.Context, name string) (villageapi.AnnouncementCategory, error) {
	return villageapi.AnnouncementCategory{ID: "2", Name: name}, nil
}

func (m *mockAPI) DeleteAnnouncementCategory(context.Context, villageapi.ID) error { return nil }

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Type string `json:"type"`
		Code string `json:"code"`
	} `json:"error"`
	Notices []notify.Notice `json:"notices"`
}

var _ = Describe("Announcement Handler Integration", func() {
	var (
		api    *mockAPI
		router *chi.Mux
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
		day := func(s string) villageapi.Timestamp {
			t, _ := time.Parse("2006-01-02", s)
			return villageapi.Timestamp{Time: t}
		}
		api = &mockAPI{items: []villageapi.Announcement{
			{ID: "1", Title: "Kerja bakti", Body: "Minggu pagi", Date: day("2025-03-01"), CategoryID: "1"},
			{ID: "2", Title: "Posyandu", Body: "Balai desa", Date: day("2025-03-05"), CategoryID: "1"},
		}}
		service := announcement.NewService(api, notify.NewRouter(nil, slogger), slogger)
		handler := announcement.NewHandler(transport.NewBaseHandler(slogger, nil, 0), service)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if v := r.Header.Get("X-Visitor"); v != "" {
					r = r.WithContext(internal.ContextWithClientKey(r.Context(), internal.VisitorClientKey(v)))
				}
				next.ServeHTTP(w, r)
			})
		})
		router.Use(middleware.Notices(nil, slogger))
		router.Get("/announcements", handler.List)
		router.Post("/announcements", handler.Create)
		router.Delete("/announcements/{id}", handler.Delete)
	})

	doAs := func(visitor, method, target, body string) (*httptest.ResponseRecorder, envelope) {
		var rdr io.Reader
		if body != "" {
			rdr = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, target, rdr)
		req.RemoteAddr = "10.0.0.1:4000"
		if visitor != "" {
			req.Header.Set("X-Visitor", visitor)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var env envelope
		Expect(json.NewDecoder(w.Body).Decode(&env)).To(Succeed())
		return w, env
	}

	do := func(method, target, body string) (*httptest.ResponseRecorder, envelope) {
		return doAs("", method, target, body)
	}

	total := func(env envelope) int {
		var view struct {
			Total int `json:"total"`
		}
		Expect(json.Unmarshal(env.Data, &view)).To(Succeed())
		return view.Total
	}

	It("should handle GET /announcements with a search term", func() {
		w, env := do(http.MethodGet, "/announcements?search=KERJA", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		var view struct {
			Items []villageapi.Announcement `json:"items"`
			Total int                       `json:"total"`
			Page  int                       `json:"page"`
		}
		Expect(json.Unmarshal(env.Data, &view)).To(Succeed())
		Expect(view.Total).To(Equal(1))
		Expect(view.Items[0].Title).To(Equal("Kerja bakti"))
		Expect(view.Page).To(Equal(1))
	})

	It("should not carry one visitor's search over to another behind the same address", func() {
		// Given
		_, first := doAs("a", http.MethodGet, "/announcements?search=Posyandu", "")
		Expect(total(first)).To(Equal(1))

		// When
		_, second := doAs("b", http.MethodGet, "/announcements", "")

		// Then
		Expect(total(second)).To(Equal(2))
		_, again := doAs("a", http.MethodGet, "/announcements", "")
		Expect(total(again)).To(Equal(1))
	})

	It("should reject an incomplete announcement with field notices", func() {
		w, env := do(http.MethodPost, "/announcements", `{"title":"Rapat"}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(env.Error.Type).To(Equal("VALIDATION_ERROR"))
		Expect(env.Notices).NotTo(BeEmpty())
		Expect(api.items).To(HaveLen(2))
	})

	It("should create an announcement and report success", func() {
		w, env := do(http.MethodPost, "/announcements", `{"title":"Rapat","body":"Balai","date":"2025-04-01","categoryId":"1"}`)

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(env.Notices).To(ConsistOf(notify.Success("Announcement created successfully.")))
	})

	It("should ask for confirmation before deleting", func() {
		w, env := do(http.MethodDelete, "/announcements/1", "")

		Expect(w.Code).To(Equal(http.StatusPreconditionRequired))
		Expect(env.Error.Code).To(Equal("CONFIRMATION_REQUIRED"))
		Expect(api.deleted).To(BeEmpty())
	})

	It("should delete a confirmed announcement", func() {
		w, env := do(http.MethodDelete, "/announcements/1?confirm=true", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(api.deleted).To(ConsistOf(villageapi.ID("1")))
		Expect(env.Notices).To(ConsistOf(notify.Success("Announcement deleted successfully.")))
	})
})
