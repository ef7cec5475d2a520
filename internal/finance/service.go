package finance

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/core/events"
	"github.com/frahmantamala/tandengan-portal/internal/listing"
	"github.com/frahmantamala/tandengan-portal/internal/mutation"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
	"github.com/frahmantamala/tandengan-portal/internal/resource"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
)

const PageSize = 5

type APIClient interface {
	ListFinancePeriods(ctx context.Context) ([]villageapi.FinancePeriod, error)
	CreateFinancePeriod(ctx context.Context, year int) (villageapi.FinancePeriod, error)
	DeleteFinancePeriod(ctx context.Context, id villageapi.ID) error
	CreateFinanceItem(ctx context.Context, kind villageapi.FinanceItemKind, in villageapi.FinanceItemInput) (villageapi.FinanceItem, error)
	UpdateFinanceItem(ctx context.Context, kind villageapi.FinanceItemKind, id villageapi.ID, in villageapi.FinanceItemInput) (villageapi.FinanceItem, error)
	DeleteFinanceItem(ctx context.Context, kind villageapi.FinanceItemKind, id villageapi.ID) error
}

// Service manages finance periods and their income, expense and financing
// items. Summaries are computed by the API, so item changes always refetch
// the periods.
type Service struct {
	api      APIClient
	periods  *resource.Resource[villageapi.FinancePeriod]
	bus      *events.EventBus
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewService(api APIClient, bus *events.EventBus, notifier notify.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api: api,
		periods: resource.New(resource.Config[villageapi.FinancePeriod]{
			Label:    "Finance period",
			Strategy: mutation.OptimisticPatch,
			Notifier: notifier,
			Logger:   logger,
			List: listing.Options[villageapi.FinancePeriod]{
				Name:   "finance periods",
				Fetch:  api.ListFinancePeriods,
				ID:     func(p villageapi.FinancePeriod) string { return p.ID.String() },
				Search: func(p villageapi.FinancePeriod) []string { return []string{strconv.Itoa(p.Year)} },
				SortKeys: []listing.SortKey[villageapi.FinancePeriod]{
					{Name: "year", Less: func(a, b villageapi.FinancePeriod) bool { return a.Year < b.Year }},
				},
				DefaultSort: "year",
				DefaultDir:  listing.Desc,
				PageSize:    PageSize,
			},
		}),
		bus:      bus,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *Service) Periods() *resource.Resource[villageapi.FinancePeriod] { return s.periods }

func (s *Service) List(ctx context.Context) *listing.Controller[villageapi.FinancePeriod] {
	return s.periods.List(ctx)
}

// CreatePeriod adds a year and announces it so every open period list
// refetches.
func (s *Service) CreatePeriod(ctx context.Context, dto PeriodDTO) (villageapi.FinancePeriod, error) {
	period, err := s.periods.Flow(ctx).Create(ctx, func(ctx context.Context) (villageapi.FinancePeriod, error) {
		return s.api.CreateFinancePeriod(ctx, dto.Year)
	})
	if err != nil {
		return period, err
	}
	if s.bus != nil {
		evt := events.NewFinancePeriodCreatedEvent(period.ID.String(), period.Year, internal.SessionIDFromContext(ctx))
		if err := s.bus.PublishSync(ctx, evt); err != nil {
			s.logger.Error("failed to publish finance period created", "period_id", period.ID, "error", err)
		}
	}
	return period, nil
}

func (s *Service) DeletePeriod(ctx context.Context, id string, confirmed bool) error {
	return s.periods.Flow(ctx).Delete(ctx, id, confirmed, func(ctx context.Context) error {
		return s.api.DeleteFinancePeriod(ctx, villageapi.ID(id))
	})
}

func (s *Service) itemFlow(ctx context.Context, kind villageapi.FinanceItemKind) (*mutation.Flow[villageapi.FinanceItem], error) {
	if !kind.Valid() {
		return nil, internal.NewValidationFieldError("kind", fmt.Sprintf("unknown finance item kind %q", kind), internal.ErrCodeValidationFailed)
	}
	target := reloadTarget{list: s.List(ctx)}
	return mutation.New[villageapi.FinanceItem](target, mutation.FullReload, s.notifier, itemLabel(kind), s.logger), nil
}

func (s *Service) CreateItem(ctx context.Context, kind villageapi.FinanceItemKind, dto ItemDTO) (villageapi.FinanceItem, error) {
	flow, err := s.itemFlow(ctx, kind)
	if err != nil {
		return villageapi.FinanceItem{}, err
	}
	return flow.Create(ctx, func(ctx context.Context) (villageapi.FinanceItem, error) {
		return s.api.CreateFinanceItem(ctx, kind, dto.toInput())
	})
}

func (s *Service) UpdateItem(ctx context.Context, kind villageapi.FinanceItemKind, id string, dto ItemDTO) (villageapi.FinanceItem, error) {
	flow, err := s.itemFlow(ctx, kind)
	if err != nil {
		return villageapi.FinanceItem{}, err
	}
	return flow.Update(ctx, func(ctx context.Context) (villageapi.FinanceItem, error) {
		return s.api.UpdateFinanceItem(ctx, kind, villageapi.ID(id), dto.toInput())
	})
}

func (s *Service) DeleteItem(ctx context.Context, kind villageapi.FinanceItemKind, id string, confirmed bool) error {
	flow, err := s.itemFlow(ctx, kind)
	if err != nil {
		return err
	}
	return flow.Delete(ctx, id, confirmed, func(ctx context.Context) error {
		return s.api.DeleteFinanceItem(ctx, kind, villageapi.ID(id))
	})
}

func itemLabel(kind villageapi.FinanceItemKind) string {
	switch kind {
	case villageapi.FinanceIncome:
		return "Income"
	case villageapi.FinanceExpense:
		return "Expense"
	}
	return "Financing"
}

// reloadTarget points item mutations at the period list, which is always
// refetched in full.
type reloadTarget struct {
	list *listing.Controller[villageapi.FinancePeriod]
}

func (t reloadTarget) Upsert(villageapi.FinanceItem) {}
func (t reloadTarget) Remove(string) bool           { return false }
func (t reloadTarget) Load(ctx context.Context) error {
	return t.list.Load(ctx)
}
