package villageapi_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestVillageAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Village API Suite")
}

var _ = Describe("Client", func() {
	var (
		ctx    context.Context
		mux    *http.ServeMux
		server *httptest.Server
		client *villageapi.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		mux = http.NewServeMux()
		server = httptest.NewServer(mux)
		DeferCleanup(server.Close)
		client = villageapi.NewClient(villageapi.Config{BaseURL: server.URL + "/api/"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	respond := func(status int, body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, body)
		}
	}

	Describe("decoding", func() {
		It("should unwrap a data envelope and accept numeric ids", func() {
			mux.HandleFunc("GET /api/pengumuman", respond(http.StatusOK,
				`{"data":[{"id":12,"title":"Kerja bakti","date":"2025-02-01","categoryId":"3"}]}`))

			items, err := client.ListAnnouncements(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].ID).To(Equal(villageapi.ID("12")))
			Expect(items[0].Date.Year()).To(Equal(2025))
		})

		It("should accept a bare body", func() {
			mux.HandleFunc("GET /api/hero-banner", respond(http.StatusOK, `[{"id":"b1","title":"Danau"}]`))

			items, err := client.ListHeroBanners(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(ConsistOf(HaveField("Title", "Danau")))
		})

		It("should forward the session credentials as a cookie", func() {
			var seen string
			mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
				seen = r.Header.Get("Cookie")
				respond(http.StatusOK, `{"data":{"user":{"id":1,"email":"a@desa.id","role":"ADMIN"}}}`)(w, r)
			})

			user, err := client.Me(villageapi.WithCredentials(ctx, "connect.sid=xyz"))

			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(Equal("connect.sid=xyz"))
			Expect(user.Role).To(Equal(villageapi.RoleAdmin))
		})

		It("should return the upstream cookie from login", func() {
			mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
				http.SetCookie(w, &http.Cookie{Name: "connect.sid", Value: "s%3Aabc"})
				respond(http.StatusOK, `{"user":{"id":"u1","email":"b@desa.id","role":"USER"}}`)(w, r)
			})

			user, cookie, err := client.Login(ctx, villageapi.LoginRequest{Email: "b@desa.id", Password: "secret"})

			Expect(err).NotTo(HaveOccurred())
			Expect(user.ID).To(Equal(villageapi.ID("u1")))
			Expect(cookie).To(Equal("connect.sid=s%3Aabc"))
		})

		It("should send multipart forms with their files", func() {
			var title, fileName string
			mux.HandleFunc("POST /api/hero-banner", func(w http.ResponseWriter, r *http.Request) {
				title = r.FormValue("title")
				if _, header, err := r.FormFile("image"); err == nil {
					fileName = header.Filename
				}
				respond(http.StatusCreated, `{"data":{"id":5,"title":"Festival"}}`)(w, r)
			})
			form := &villageapi.Multipart{}
			form.Set("title", "Festival")
			form.Files = append(form.Files, villageapi.File{FieldName: "image", FileName: "festival.jpg", ContentType: "image/jpeg", Content: strings.NewReader("jpeg")})

			banner, err := client.CreateHeroBanner(ctx, form)

			Expect(err).NotTo(HaveOccurred())
			Expect(banner.ID).To(Equal(villageapi.ID("5")))
			Expect(title).To(Equal("Festival"))
			Expect(fileName).To(Equal("festival.jpg"))
		})
	})

	Describe("error classification", func() {
		DescribeTable("tags each failure once",
			func(status int, body string, kind villageapi.ErrorKind) {
				mux.HandleFunc("GET /api/pengumuman", respond(status, body))

				_, err := client.ListAnnouncements(ctx)

				Expect(villageapi.KindOf(err)).To(Equal(kind))
			},
			Entry("unauthorized", http.StatusUnauthorized, `{"message":"Unauthorized"}`, villageapi.KindUnauthorized),
			Entry("not found", http.StatusNotFound, `{"message":"Tidak ditemukan"}`, villageapi.KindNotFound),
			Entry("rate limited", http.StatusTooManyRequests, `{"message":"slow down"}`, villageapi.KindRateLimit),
			Entry("rate limit hinted in text", http.StatusBadRequest, `{"message":"Terlalu banyak permintaan"}`, villageapi.KindRateLimit),
			Entry("unsupported media", http.StatusUnsupportedMediaType, `{"message":"bad"}`, villageapi.KindFileType),
			Entry("file type hinted in text", http.StatusBadRequest, `{"message":"Tipe file tidak didukung"}`, villageapi.KindFileType),
			Entry("validation", http.StatusBadRequest, `{"message":"Invalid input"}`, villageapi.KindValidation),
			Entry("server error", http.StatusInternalServerError, `oops`, villageapi.KindUnknown),
		)

		It("should keep field details from a validation failure", func() {
			mux.HandleFunc("GET /api/pengumuman", respond(http.StatusUnprocessableEntity,
				`{"message":"Validation failed","errors":[{"path":["body","title"],"msg":"Title is required"},"Date is invalid"]}`))

			_, err := client.ListAnnouncements(ctx)

			apiErr, ok := villageapi.AsAPIError(err)
			Expect(ok).To(BeTrue())
			Expect(apiErr.Kind).To(Equal(villageapi.KindValidation))
			Expect(apiErr.Details).To(Equal([]villageapi.FieldDetail{
				{Field: "body.title", Message: "Title is required"},
				{Message: "Date is invalid"},
			}))
		})

		It("should run the unauthorized hooks with the request context", func() {
			mux.HandleFunc("GET /api/pengumuman", respond(http.StatusUnauthorized, `{}`))
			type marker struct{}
			var got interface{}
			client.OnUnauthorized(func(ctx context.Context) { got = ctx.Value(marker{}) })

			_, err := client.ListAnnouncements(context.WithValue(ctx, marker{}, "req-1"))

			Expect(villageapi.IsUnauthorized(err)).To(BeTrue())
			Expect(got).To(Equal("req-1"))
		})

		It("should report an unreachable API as unknown", func() {
			server.Close()

			_, err := client.ListAnnouncements(ctx)

			apiErr, ok := villageapi.AsAPIError(err)
			Expect(ok).To(BeTrue())
			Expect(apiErr.Kind).To(Equal(villageapi.KindUnknown))
			Expect(apiErr.Cause).To(HaveOccurred())
		})
	})
})
