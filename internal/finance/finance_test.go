package finance_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/core/events"
	"github.com/frahmantamala/tandengan-portal/internal/finance"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestFinance(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Finance Suite")
}

type mockFinanceAPI struct {
	mu      sync.Mutex
	periods []villageapi.FinancePeriod
	fetches map[string]int
}

func (m *mockFinanceAPI) ListFinancePeriods(ctx context.Context) ([]villageapi.FinancePeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches[internal.ClientKeyFromContext(ctx)]++
	return append([]villageapi.FinancePeriod(nil), m.periods...), nil
}

func (m *mockFinanceAPI) CreateFinancePeriod(_ context.Context, year int) (villageapi.FinancePeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := villageapi.FinancePeriod{ID: "p2026", Year: year}
	m.periods = append(m.periods, p)
	return p, nil
}

func (m *mockFinanceAPI) DeleteFinancePeriod(context.Context, villageapi.ID) error { return nil }

func (m *mockFinanceAPI) CreateFinanceItem(_ context.Context, _ villageapi.FinanceItemKind, in villageapi.FinanceItemInput) (villageapi.FinanceItem, error) {
	return villageapi.FinanceItem{ID: "i1", Description: in.Description, Amount: villageapi.Amount(in.Amount)}, nil
}

func (m *mockFinanceAPI) UpdateFinanceItem(_ context.Context, _ villageapi.FinanceItemKind, id villageapi.ID, in villageapi.FinanceItemInput) (villageapi.FinanceItem, error) {
	return villageapi.FinanceItem{ID: id, Description: in.Description}, nil
}

func (m *mockFinanceAPI) DeleteFinanceItem(context.Context, villageapi.FinanceItemKind, villageapi.ID) error {
	return nil
}

func (m *mockFinanceAPI) fetchesFor(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches[key]
}

func clientCtx(sessionID string) context.Context {
	ctx := internal.ContextWithSessionID(context.Background(), sessionID)
	return internal.ContextWithClientKey(ctx, internal.SessionClientKey(sessionID))
}

var _ = Describe("Service", func() {
	var (
		api     *mockFinanceAPI
		bus     *events.EventBus
		service *finance.Service
		admin   context.Context
		other   context.Context
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		api = &mockFinanceAPI{
			periods: []villageapi.FinancePeriod{{ID: "p2025", Year: 2025}},
			fetches: map[string]int{},
		}
		bus = events.NewEventBus(logger)
		service = finance.NewService(api, bus, nil, logger)
		unsubscribe := finance.NewEventHandler(service, logger).RegisterEventHandlers(bus)
		DeferCleanup(unsubscribe)

		admin = clientCtx("admin")
		other = clientCtx("other")
		Expect(service.List(admin).EnsureLoaded(admin)).To(Succeed())
		Expect(service.List(other).EnsureLoaded(other)).To(Succeed())
	})

	It("should refetch the creator's list and mark other lists stale", func() {
		// When
		period, err := service.CreatePeriod(admin, finance.PeriodDTO{Year: 2026})

		// Then
		Expect(err).NotTo(HaveOccurred())
		Expect(period.Year).To(Equal(2026))
		Expect(api.fetchesFor("session:admin")).To(Equal(2))
		Expect(service.List(admin).Items()).To(HaveLen(2))

		Expect(api.fetchesFor("session:other")).To(Equal(1))
		Expect(service.List(other).EnsureLoaded(other)).To(Succeed())
		Expect(api.fetchesFor("session:other")).To(Equal(2))
		Expect(service.List(other).Items()).To(HaveLen(2))
	})

	It("should refetch periods after an item change", func() {
		_, err := service.CreateItem(admin, villageapi.FinanceIncome, finance.ItemDTO{Description: "Dana desa", Amount: 1000, PeriodID: "p2025"})

		Expect(err).NotTo(HaveOccurred())
		Expect(api.fetchesFor("session:admin")).To(Equal(2))
	})

	It("should reject an unknown item kind", func() {
		_, err := service.CreateItem(admin, villageapi.FinanceItemKind("gift"), finance.ItemDTO{Description: "x", PeriodID: "p2025"})

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		Expect(api.fetchesFor("session:admin")).To(Equal(1))
	})
})
