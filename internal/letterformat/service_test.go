package letterformat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/letterformat"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLetterFormat(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Letter Format Suite")
}

type mockAPI struct {
	formats     []villageapi.LetterFormat
	downloadErr error
	downloads   []villageapi.ID
}

func (m *mockAPI) ListLetterFormats(context.Context) ([]villageapi.LetterFormat, error) {
	return append([]villageapi.LetterFormat(nil), m.formats...), nil
}

func (m *mockAPI) CreateLetterFormat(context.Context, *villageapi.Multipart) (villageapi.LetterFormat, error) {
	return villageapi.LetterFormat{}, nil
}

func (m *mockAPI) UpdateLetterFormat(_ context.Context, id villageapi.ID, _ *villageapi.Multipart) (villageapi.LetterFormat, error) {
	return villageapi.LetterFormat{ID: id}, nil
}

func (m *mockAPI) DeleteLetterFormat(context.Context, villageapi.ID) error { return nil }

func (m *mockAPI) RecordLetterFormatDownload(_ context.Context, id villageapi.ID) error {
	m.downloads = append(m.downloads, id)
	return m.downloadErr
}

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		api     *mockAPI
		service *letterformat.Service
	)

	BeforeEach(func() {
		ctx = internal.ContextWithClientKey(context.Background(), internal.VisitorClientKey("v-1"))
		api = &mockAPI{formats: []villageapi.LetterFormat{
			{ID: "1", Name: "Surat Keterangan Domisili", DownloadCount: 12},
			{ID: "2", Name: "Surat Pengantar Nikah", DownloadCount: 3},
		}}
		service = letterformat.NewService(api, nil, nil)
	})

	countOf := func(id string) int {
		f, ok := service.List(ctx).Find(id)
		Expect(ok).To(BeTrue())
		return f.DownloadCount
	}

	It("should raise the download counter once the api records it", func() {
		// When
		format, err := service.Download(ctx, "1")

		// Then
		Expect(err).NotTo(HaveOccurred())
		Expect(format.DownloadCount).To(Equal(13))
		Expect(countOf("1")).To(Equal(13))
		Expect(api.downloads).To(ConsistOf(villageapi.ID("1")))
	})

	It("should lower the counter again when the api does not record the download", func() {
		// Given
		failure := &villageapi.APIError{Kind: villageapi.KindUnknown, Message: "server error"}
		api.downloadErr = failure

		// When
		_, err := service.Download(ctx, "1")

		// Then
		Expect(err).To(MatchError(failure))
		Expect(countOf("1")).To(Equal(12))
		Expect(countOf("2")).To(Equal(3))
	})

	It("should refuse an unknown format without calling the api", func() {
		_, err := service.Download(ctx, "404")

		var appErr *internal.AppError
		Expect(errors.As(err, &appErr)).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		Expect(api.downloads).To(BeEmpty())
	})
})
