package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/announcement"
	"github.com/frahmantamala/tandengan-portal/internal/auth"
	"github.com/frahmantamala/tandengan-portal/internal/core/events"
	"github.com/frahmantamala/tandengan-portal/internal/finance"
	"github.com/frahmantamala/tandengan-portal/internal/guestreport"
	"github.com/frahmantamala/tandengan-portal/internal/herobanner"
	"github.com/frahmantamala/tandengan-portal/internal/letterformat"
	"github.com/frahmantamala/tandengan-portal/internal/lookup"
	"github.com/frahmantamala/tandengan-portal/internal/news"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
	"github.com/frahmantamala/tandengan-portal/internal/session"
	sessionPostgres "github.com/frahmantamala/tandengan-portal/internal/session/postgres"
	"github.com/frahmantamala/tandengan-portal/internal/submission"
	"github.com/frahmantamala/tandengan-portal/internal/tourism"
	"github.com/frahmantamala/tandengan-portal/internal/transport"
	"github.com/frahmantamala/tandengan-portal/internal/transport/rest"
	"github.com/frahmantamala/tandengan-portal/internal/transport/swagger"
	"github.com/frahmantamala/tandengan-portal/internal/user"
	"github.com/frahmantamala/tandengan-portal/internal/village"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	"github.com/frahmantamala/tandengan-portal/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the portal HTTP server in front of the village API`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config        *internal.Config
	DB            *Database
	Router        *chi.Mux
	HealthChecker *rest.HealthHandler
	Logger        *slog.Logger
	Bus           *events.EventBus
	Sessions      *session.Store
	Guard         *session.Guard
	Janitor       *janitor
	Handlers      rest.Handlers
	unsubscribe   func()
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.unsubscribe()

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "village_api", deps.Config.VillageAPI.BaseURL)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go deps.Janitor.Run(janitorCtx)

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			stopJanitor()
			_ = deps.DB.Close()
			os.Exit(1)
		}
	}

	stopJanitor()
	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("Database close error", "error", err)
	}
	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	rest.RegisterAllRoutes(deps.Router, rest.RouterConfig{
		Guard:          deps.Guard,
		Pending:        deps.Sessions,
		Health:         deps.HealthChecker,
		OpenAPIPath:    deps.Config.Server.OpenAPIPath,
		AllowedOrigins: deps.Config.Server.Origins(),
	}, deps.Handlers, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	if err := checkOpenAPI(config, lg); err != nil {
		return nil, err
	}

	db, err := openDatabase(config.Database, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	bus := events.NewEventBus(lg)
	client := villageapi.NewClient(villageapi.Config{
		BaseURL: config.VillageAPI.BaseURL,
		Timeout: config.VillageAPI.Timeout,
	}, lg)

	store := session.NewStore(sessionPostgres.NewSessionRepository(db.Gorm), bus, config.Security.SessionTTL, lg)
	codec := session.NewCookieCodec(session.CookieConfig{
		Name:   config.Security.CookieName,
		Secret: config.Security.SessionSecret,
		Secure: config.Security.CookieSecure,
		TTL:    config.Security.SessionTTL,
	})
	guard := session.NewGuard(store, codec, client, lg)
	client.OnUnauthorized(guard.GlobalLogout)

	notifier := notify.NewRouter(store, lg)
	cooldown := lookup.NewCooldown(config.Lookup.Cooldown, nil)
	tracker := lookup.NewService(client, cooldown, lg)

	authService := auth.NewService(client, notifier, lg)
	announcementService := announcement.NewService(client, notifier, lg)
	newsService := news.NewService(client, notifier, lg)
	financeService := finance.NewService(client, bus, notifier, lg)
	tourismService := tourism.NewService(client, notifier, lg)
	guestReportService := guestreport.NewService(client, notifier, lg)
	submissionService := submission.NewService(client, notifier, lg)
	letterFormatService := letterformat.NewService(client, notifier, lg)
	heroBannerService := herobanner.NewService(client, notifier, lg)
	villageService := village.NewService(client, notifier, lg)
	userService := user.NewService(client, notifier, lg)

	lists := []clientLists{
		announcementService.Announcements(),
		announcementService.Categories(),
		newsService.Articles(),
		newsService.Categories(),
		financeService.Periods(),
		tourismService.Destinations(),
		guestReportService.Reports(),
		submissionService.Submissions(),
		letterFormatService.Formats(),
		heroBannerService.Banners(),
		userService.Users(),
	}
	unsubscribe := registerEventHandlers(bus, store, finance.NewEventHandler(financeService, lg), lists, lg)

	base := transport.NewBaseHandler(lg, guard, config.Server.MaxUploadBytes)
	handlers := rest.Handlers{
		Auth:         auth.NewHandler(base, authService),
		Announcement: announcement.NewHandler(base, announcementService),
		News:         news.NewHandler(base, newsService),
		Finance:      finance.NewHandler(base, financeService),
		Tourism:      tourism.NewHandler(base, tourismService),
		GuestReport:  guestreport.NewHandler(base, guestReportService, tracker),
		Submission:   submission.NewHandler(base, submissionService),
		LetterFormat: letterformat.NewHandler(base, letterFormatService),
		HeroBanner:   herobanner.NewHandler(base, heroBannerService),
		Village:      village.NewHandler(base, villageService),
		User:         user.NewHandler(base, userService),
	}

	return &Dependencies{
		Config:        config,
		DB:            db,
		Router:        chi.NewRouter(),
		HealthChecker: rest.NewHealthHandler(db.Pinger(), config.Database.Driver),
		Logger:        lg,
		Bus:           bus,
		Sessions:      store,
		Guard:         guard,
		Janitor:       newJanitor(lists, cooldown, store, lg),
		Handlers:      handlers,
		unsubscribe:   unsubscribe,
	}, nil
}

// checkOpenAPI refuses to start with a broken API document. A missing file
// only disables the docs routes.
func checkOpenAPI(config *internal.Config, lg *slog.Logger) error {
	path := config.Server.OpenAPIPath
	if _, err := os.Stat(path); err != nil {
		lg.Warn("openapi document not found, docs disabled", "path", path)
		config.Server.OpenAPIPath = ""
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	doc, err := swagger.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("invalid openapi document: %w", err)
	}
	lg.Info("openapi document loaded", "path", path, "title", doc.Info.Title, "paths", doc.Paths.Len())
	return nil
}
