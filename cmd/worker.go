package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/tandengan-portal/internal/core/events"
	"github.com/frahmantamala/tandengan-portal/internal/lookup"
	"github.com/frahmantamala/tandengan-portal/internal/session"
	sessionPostgres "github.com/frahmantamala/tandengan-portal/internal/session/postgres"
	"github.com/frahmantamala/tandengan-portal/pkg/logger"
	"github.com/spf13/cobra"
)

const (
	defaultJanitorInterval = time.Minute
	defaultListIdle        = 30 * time.Minute
)

type sessionPurger interface {
	Purge(ctx context.Context) (int64, error)
}

// janitor frees per-client state that nobody will read again: idle list
// controllers, elapsed lookup cooldowns and expired sessions.
type janitor struct {
	lists    []clientLists
	cooldown *lookup.Cooldown
	sessions sessionPurger
	interval time.Duration
	idle     time.Duration
	logger   *slog.Logger
}

func newJanitor(lists []clientLists, cooldown *lookup.Cooldown, sessions sessionPurger, logger *slog.Logger) *janitor {
	return &janitor{
		lists:    lists,
		cooldown: cooldown,
		sessions: sessions,
		interval: defaultJanitorInterval,
		idle:     defaultListIdle,
		logger:   logger,
	}
}

func (j *janitor) Run(ctx context.Context) {
	if j.interval <= 0 {
		j.interval = defaultJanitorInterval
	}
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("janitor started", "interval", j.interval, "list_idle", j.idle)
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *janitor) sweep(ctx context.Context) {
	dropped := 0
	for _, l := range j.lists {
		dropped += l.Sweep(j.idle)
	}
	cooled := 0
	if j.cooldown != nil {
		cooled = j.cooldown.Sweep()
	}
	var purged int64
	if j.sessions != nil {
		n, err := j.sessions.Purge(ctx)
		if err != nil {
			j.logger.Error("session purge failed", "error", err)
		}
		purged = n
	}
	if dropped+cooled > 0 || purged > 0 {
		j.logger.Debug("janitor sweep", "lists_dropped", dropped, "cooldowns_cleared", cooled, "sessions_purged", purged)
	}
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers that run outside the HTTP server`,
}

var sessionWorkerCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Purge expired sessions on an interval",
	Long:  `Purge expired sessions and their pending notices. Useful when several portal instances share one session database.`,
	Run: func(cmd *cobra.Command, args []string) {
		startSessionWorker()
	},
}

var purgeInterval time.Duration

func startSessionWorker() {
	config, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	lg := logger.LoggerWrapper()

	db, err := openDatabase(config.Database, lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	store := session.NewStore(sessionPostgres.NewSessionRepository(db.Gorm), events.NewEventBus(lg), config.Security.SessionTTL, lg)
	j := &janitor{sessions: store, interval: purgeInterval, logger: lg}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		lg.Info("Received signal, stopping worker...", "signal", sig)
		cancel()
	}()

	j.sweep(ctx)
	j.Run(ctx)
}

func init() {
	sessionWorkerCmd.Flags().DurationVar(&purgeInterval, "interval", defaultJanitorInterval, "time between purges")

	workerCmd.AddCommand(sessionWorkerCmd)
	rootCmd.AddCommand(workerCmd)
}
