package rest

import (
	"log/slog"

	"github.com/frahmantamala/tandengan-portal/internal/announcement"
	"github.com/frahmantamala/tandengan-portal/internal/auth"
	"github.com/frahmantamala/tandengan-portal/internal/finance"
	"github.com/frahmantamala/tandengan-portal/internal/guestreport"
	"github.com/frahmantamala/tandengan-portal/internal/herobanner"
	"github.com/frahmantamala/tandengan-portal/internal/letterformat"
	"github.com/frahmantamala/tandengan-portal/internal/news"
	"github.com/frahmantamala/tandengan-portal/internal/session"
	"github.com/frahmantamala/tandengan-portal/internal/submission"
	"github.com/frahmantamala/tandengan-portal/internal/tourism"
	"github.com/frahmantamala/tandengan-portal/internal/transport/middleware"
	"github.com/frahmantamala/tandengan-portal/internal/transport/swagger"
	"github.com/frahmantamala/tandengan-portal/internal/user"
	"github.com/frahmantamala/tandengan-portal/internal/village"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Auth         *auth.Handler
	Announcement *announcement.Handler
	News         *news.Handler
	Finance      *finance.Handler
	Tourism      *tourism.Handler
	GuestReport  *guestreport.Handler
	Submission   *submission.Handler
	LetterFormat *letterformat.Handler
	HeroBanner   *herobanner.Handler
	Village      *village.Handler
	User         *user.Handler
}

type RouterConfig struct {
	Guard          *session.Guard
	Pending        middleware.PendingNotices
	Health         *HealthHandler
	OpenAPIPath    string
	AllowedOrigins []string
}

func RegisterAllRoutes(router *chi.Mux, cfg RouterConfig, h Handlers, logger *slog.Logger) {
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	if cfg.OpenAPIPath != "" {
		router.Get(swagger.SpecURL, swagger.SpecHandler(cfg.OpenAPIPath))
		router.Handle("/swagger/*", swagger.Handler())
	}

	if cfg.Health != nil {
		router.Get("/health", cfg.Health.healthCheckHandler)
		router.Get("/ping", cfg.Health.pingHandler)
	}

	guard := cfg.Guard
	router.Group(func(r chi.Router) {
		r.Use(guard.Resolve)
		r.Use(middleware.Notices(cfg.Pending, logger))

		r.Get(session.PathLogin, h.Auth.LoginPage)
		r.Post(session.PathLogin, h.Auth.Login)
		r.Get(session.PathRegister, h.Auth.RegisterPage)
		r.Post(session.PathRegister, h.Auth.Register)
		r.Post("/logout", h.Auth.Logout)
		r.Get(session.PathUnauthorized, h.Auth.Unauthorized)
		r.With(guard.RequireUser(false)).Get("/me", h.Auth.Me)

		r.With(guard.RequireUser(false)).Post(session.PathGuestSignup, h.GuestReport.Register)

		r.Route("/api", func(pr chi.Router) {
			pr.Get("/announcements", h.Announcement.List)
			pr.Get("/announcement-categories", h.Announcement.ListCategories)

			pr.Get("/news", h.News.List)
			pr.Get("/news/{slug}", h.News.Get)
			pr.Get("/news-categories", h.News.ListCategories)

			pr.Get("/finance/periods", h.Finance.ListPeriods)
			pr.Get("/tourism", h.Tourism.List)
			pr.Get("/hero-banners", h.HeroBanner.List)
			pr.Get("/village/profile", h.Village.Get)

			pr.Get("/letter-formats", h.LetterFormat.List)
			pr.Post("/letter-formats/{id}/download", h.LetterFormat.Download)

			pr.Get("/guest-reports/status", h.GuestReport.CheckStatus)
			pr.Post("/guest-reports/status", h.GuestReport.CheckStatus)
			pr.Get("/guest-reports/status/cooldown", h.GuestReport.CooldownStatus)

			pr.Post("/submissions", h.Submission.Submit)
		})

		r.Route(session.PathAdmin, func(ar chi.Router) {
			ar.Use(guard.RequireUser(true))
			ar.Get("/", h.Auth.Me)

			ar.Route("/announcements", func(rr chi.Router) {
				rr.Get("/", h.Announcement.List)
				rr.Post("/refresh", h.Announcement.Refresh)
				rr.Post("/", h.Announcement.Create)
				rr.Put("/{id}", h.Announcement.Update)
				rr.Delete("/{id}", h.Announcement.Delete)
			})
			ar.Route("/announcement-categories", func(rr chi.Router) {
				rr.Get("/", h.Announcement.ListCategories)
				rr.Post("/", h.Announcement.CreateCategory)
				rr.Delete("/{id}", h.Announcement.DeleteCategory)
			})

			ar.Route("/news", func(rr chi.Router) {
				rr.Get("/", h.News.List)
				rr.Post("/refresh", h.News.Refresh)
				rr.Post("/", h.News.Create)
				rr.Put("/{id}", h.News.Update)
				rr.Delete("/{id}", h.News.Delete)
			})
			ar.Route("/news-categories", func(rr chi.Router) {
				rr.Get("/", h.News.ListCategories)
				rr.Post("/", h.News.CreateCategory)
				rr.Delete("/{id}", h.News.DeleteCategory)
			})

			ar.Route("/finance", func(rr chi.Router) {
				rr.Get("/periods", h.Finance.ListPeriods)
				rr.Post("/periods/refresh", h.Finance.RefreshPeriods)
				rr.Post("/periods", h.Finance.CreatePeriod)
				rr.Delete("/periods/{id}", h.Finance.DeletePeriod)
				rr.Post("/items/{kind}", h.Finance.CreateItem)
				rr.Put("/items/{kind}/{id}", h.Finance.UpdateItem)
				rr.Delete("/items/{kind}/{id}", h.Finance.DeleteItem)
			})

			ar.Route("/tourism", func(rr chi.Router) {
				rr.Get("/", h.Tourism.List)
				rr.Post("/refresh", h.Tourism.Refresh)
				rr.Post("/", h.Tourism.Create)
				rr.Put("/{id}", h.Tourism.Update)
				rr.Delete("/{id}", h.Tourism.Delete)
			})

			ar.Route("/guest-reports", func(rr chi.Router) {
				rr.Get("/", h.GuestReport.List)
				rr.Post("/refresh", h.GuestReport.Refresh)
				rr.Get("/export", h.GuestReport.Export)
				rr.Post("/{id}/approve", h.GuestReport.Approve)
				rr.Post("/{id}/reject", h.GuestReport.Reject)
				rr.Delete("/{id}", h.GuestReport.Delete)
			})

			ar.Route("/submissions", func(rr chi.Router) {
				rr.Get("/", h.Submission.List)
				rr.Post("/refresh", h.Submission.Refresh)
				rr.Patch("/{id}/complete", h.Submission.Complete)
				rr.Delete("/{id}", h.Submission.Delete)
			})

			ar.Route("/letter-formats", func(rr chi.Router) {
				rr.Get("/", h.LetterFormat.List)
				rr.Post("/refresh", h.LetterFormat.Refresh)
				rr.Post("/", h.LetterFormat.Create)
				rr.Put("/{id}", h.LetterFormat.Update)
				rr.Delete("/{id}", h.LetterFormat.Delete)
			})

			ar.Route("/hero-banners", func(rr chi.Router) {
				rr.Get("/", h.HeroBanner.List)
				rr.Post("/refresh", h.HeroBanner.Refresh)
				rr.Post("/", h.HeroBanner.Create)
				rr.Delete("/{id}", h.HeroBanner.Delete)
			})

			ar.Put("/village/profile", h.Village.Update)

			ar.Route("/users", func(rr chi.Router) {
				rr.Get("/", h.User.List)
				rr.Post("/refresh", h.User.Refresh)
				rr.Post("/", h.User.Create)
				rr.Put("/{id}", h.User.Update)
				rr.Delete("/{id}", h.User.Delete)
			})
		})
	})
}
