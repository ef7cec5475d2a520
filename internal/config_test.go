package internal_test

import (
	"testing"
	"time"

	"github.com/frahmantamala/tandengan-portal/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestInternal(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal Suite")
}

func validConfig() *internal.Config {
	cfg := &internal.Config{
		Database: internal.DatabaseConfig{Driver: "sqlite", Source: "file::memory:"},
		Security: internal.SecurityConfig{SessionSecret: "0123456789abcdef0123456789abcdef"},
		VillageAPI: internal.VillageAPIConfig{
			BaseURL: "http://localhost:5000/api",
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

var _ = Describe("Config", func() {
	It("should fill the optional values", func() {
		cfg := validConfig()

		Expect(cfg.Env).To(Equal("development"))
		Expect(cfg.Server.Port).To(Equal(8080))
		Expect(cfg.Lookup.Cooldown).To(Equal(5 * time.Second))
		Expect(cfg.Security.CookieName).To(Equal(internal.DefaultCookieName))
		Expect(cfg.VillageAPI.Timeout).To(Equal(internal.DefaultAPITimeout))
	})

	It("should accept a complete configuration", func() {
		Expect(validConfig().Validate()).To(Succeed())
	})

	It("should reject a short session secret", func() {
		cfg := validConfig()
		cfg.Security.SessionSecret = "short"

		err := cfg.Validate()

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("SessionSecret"))
	})

	It("should reject a village api url without http scheme", func() {
		cfg := validConfig()
		cfg.VillageAPI.BaseURL = "ftp://example.org"

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("base_url must use http or https")))
	})

	It("should reject more idle than open connections", func() {
		cfg := validConfig()
		cfg.Database.MaxIdleConns = 50

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("max_idle_conns")))
	})

	It("should refuse a wildcard origin for credentialed requests", func() {
		cfg := validConfig()
		cfg.Server.AllowedOrigins = "https://tandengan.desa.id,*"

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("allowed_origins cannot be *")))
	})

	It("should allow no cross-origin callers unless configured", func() {
		GinkgoT().Setenv("HTTP_ALLOWED_ORIGINS", "")

		Expect(internal.LoadConfigFromEnv().Server.Origins()).To(BeEmpty())
	})

	It("should split allowed origins", func() {
		server := internal.ServerConfig{AllowedOrigins: " https://tandengan.desa.id , http://localhost:3000,,"}

		Expect(server.Origins()).To(Equal([]string{"https://tandengan.desa.id", "http://localhost:3000"}))
	})
})

var _ = Describe("AppError", func() {
	It("should surface the first field message", func() {
		err := internal.NewValidationFieldError("year", "Year is required", internal.ErrCodeMissingField)

		Expect(err.Error()).To(Equal("Year is required"))
		Expect(err.StatusCode).To(Equal(400))
	})

	It("should require confirmation with a precondition status", func() {
		Expect(internal.ErrConfirmationRequired.StatusCode).To(Equal(428))
	})
})
