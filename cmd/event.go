package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/tandengan-portal/internal/core/events"
	"github.com/frahmantamala/tandengan-portal/internal/finance"
	"github.com/frahmantamala/tandengan-portal/internal/session"
	"github.com/spf13/cobra"
)

// clientLists is the per-client list state one resource keeps.
type clientLists interface {
	Label() string
	Forget(ctx context.Context, sessionID string)
	Sweep(idle time.Duration) int
}

// registerEventHandlers subscribes the server's event consumers. The
// returned func removes every subscription.
func registerEventHandlers(bus *events.EventBus, store *session.Store, financeEvents *finance.EventHandler, lists []clientLists, logger *slog.Logger) func() {
	unsubscribers := []func(){
		financeEvents.RegisterEventHandlers(bus),
		store.OnInvalidated(func(ctx context.Context, sessionID string) {
			for _, l := range lists {
				l.Forget(ctx, sessionID)
			}
			logger.Debug("session list state dropped", "session_id", sessionID, "resources", len(lists))
		}),
	}

	return func() {
		for _, unsubscribe := range unsubscribers {
			unsubscribe()
		}
	}
}

var eventCmd = &cobra.Command{
	Use:   "events",
	Short: "List the in-process event types and their consumers",
	Run: func(cmd *cobra.Command, args []string) {
		for eventType, consumer := range map[string]string{
			events.EventTypeSessionInvalidated:   "drops the session's list state in every resource",
			events.EventTypeFinancePeriodCreated: "reloads the creator's finance periods and marks other clients stale",
		} {
			cmd.Printf("%-26s %s\n", eventType, consumer)
		}
	},
}

func init() {
	rootCmd.AddCommand(eventCmd)
}
