package finance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/core/events"
	"github.com/frahmantamala/tandengan-portal/internal/listing"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
)

type EventHandler struct {
	periods *listing.Registry[villageapi.FinancePeriod]
	logger  *slog.Logger
}

func NewEventHandler(service *Service, logger *slog.Logger) *EventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHandler{periods: service.Periods().Registry(), logger: logger}
}

// HandlePeriodCreated refetches the creator's period list right away. Other
// clients' lists are marked stale and refetch with their own credentials on
// their next view.
func (h *EventHandler) HandlePeriodCreated(ctx context.Context, event events.Event) error {
	created, ok := event.(*events.FinancePeriodCreatedEvent)
	if !ok {
		h.logger.Error("invalid event type for finance period handler", "event_type", event.EventType())
		return fmt.Errorf("expected FinancePeriodCreatedEvent, got %T", event)
	}

	own := internal.ClientKeyFromContext(ctx)
	if created.SessionID != "" {
		own = internal.SessionClientKey(created.SessionID)
	}

	reloaded, marked := 0, 0
	h.periods.Each(func(key string, c *listing.Controller[villageapi.FinancePeriod]) {
		if key == own {
			_ = c.Load(ctx)
			reloaded++
			return
		}
		c.MarkStale()
		marked++
	})

	h.logger.Info("finance period lists refreshed",
		"period_id", created.PeriodID,
		"year", created.Year,
		"reloaded", reloaded,
		"marked_stale", marked,
		"event_id", created.EventID())
	return nil
}

func (h *EventHandler) RegisterEventHandlers(bus *events.EventBus) func() {
	unsubscribe := bus.Subscribe(events.EventTypeFinancePeriodCreated, h.HandlePeriodCreated)
	h.logger.Info("finance event handlers registered", "handlers", []string{events.EventTypeFinancePeriodCreated})
	return unsubscribe
}
