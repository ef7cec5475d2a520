package middleware_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
	"github.com/frahmantamala/tandengan-portal/internal/transport/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type pendingStore struct {
	stored map[string][]notify.Notice
	reads  int
}

func (p *pendingStore) Notices(_ context.Context, sessionID string) ([]notify.Notice, error) {
	p.reads++
	out := p.stored[sessionID]
	delete(p.stored, sessionID)
	return out, nil
}

var _ = Describe("CORS", func() {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	request := func(origins []string, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		middleware.CORS(origins)(ok).ServeHTTP(rec, req)
		return rec
	}

	It("should share credentials with a configured origin", func() {
		rec := request([]string{"https://tandengan.desa.id/"}, "https://tandengan.desa.id")

		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://tandengan.desa.id"))
		Expect(rec.Header().Get("Access-Control-Allow-Credentials")).To(Equal("true"))
	})

	It("should not reflect arbitrary origins for a wildcard entry", func() {
		rec := request([]string{"*"}, "https://evil.example")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
		Expect(rec.Header().Get("Access-Control-Allow-Credentials")).To(BeEmpty())
	})

	It("should answer a preflight from a configured origin", func() {
		req := httptest.NewRequest(http.MethodOptions, "/api/news", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
		rec := httptest.NewRecorder()

		middleware.CORS([]string{"http://localhost:3000"})(ok).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(rec.Header().Get("Access-Control-Allow-Headers")).To(ContainSubstring("X-Confirm"))
	})
})

var _ = Describe("Notices", func() {
	var store *pendingStore

	BeforeEach(func() {
		store = &pendingStore{stored: map[string][]notify.Notice{
			"sess-1": {notify.Warning("Stored earlier.")},
		}}
	})

	serve := func(h http.Handler) {
		req := httptest.NewRequest(http.MethodGet, "/admin/tamu-wajib-lapor/export", nil)
		req = req.WithContext(internal.ContextWithSessionID(req.Context(), "sess-1"))
		middleware.Notices(store, quietLogger)(h).ServeHTTP(httptest.NewRecorder(), req)
	}

	It("should leave stored notices in place when the response never drains them", func() {
		// When
		serve(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			notify.CollectorFrom(r.Context()).Add(notify.Info("Exported."))
			w.Header().Set("Content-Type", "text/csv")
		}))

		// Then
		Expect(store.reads).To(BeZero())
		Expect(store.stored["sess-1"]).To(HaveLen(1))
	})

	It("should hand stored notices out before the request's own", func() {
		var drained []notify.Notice

		serve(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := notify.CollectorFrom(r.Context())
			c.Add(notify.Success("Saved."))
			drained = c.Drain()
		}))

		Expect(drained).To(Equal([]notify.Notice{notify.Warning("Stored earlier."), notify.Success("Saved.")}))
		Expect(store.stored).To(BeEmpty())
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("should mask personal fields and count the response without copying it", func() {
		// Given
		buf := &bytes.Buffer{}
		lg := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		csvBody := "Kode Pelacakan,Nama\nTWL-1,Maria\n"
		handler := middleware.LoggingMiddleware(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("rahasia"))
			w.Header().Set("Content-Type", "text/csv")
			_, _ = io.WriteString(w, csvBody)
		}))
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"sari@desa.id","password":"rahasia","whatsapp":"0812"}`))
		req.Header.Set("Content-Type", "application/json")

		// When
		handler.ServeHTTP(httptest.NewRecorder(), req)

		// Then
		out := buf.String()
		Expect(out).NotTo(ContainSubstring("rahasia"))
		Expect(out).NotTo(ContainSubstring("0812"))
		Expect(out).To(ContainSubstring("sari@desa.id"))
		Expect(out).NotTo(ContainSubstring("TWL-1"))
		Expect(out).To(ContainSubstring("response_size=" + strconv.Itoa(len(csvBody))))
		Expect(out).To(ContainSubstring("status_code=200"))
	})
})
