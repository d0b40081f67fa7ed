package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	infisical "github.com/infisical/go-sdk"

	"github.com/web3-frozen/traffic-dashboard/internal/traffic"
)

type Config struct {
	Port           string `env:"PORT" envDefault:"8080"`
	FrontendOrigin string `env:"FRONTEND_ORIGIN" envDefault:"*"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`

	// Upstream provider. A missing or placeholder key keeps the service in
	// synthetic mode.
	TrafficAPIKey         string        `env:"TRAFFIC_API_KEY"`
	TrafficAPIHost        string        `env:"TRAFFIC_API_HOST"`
	TrafficAPIScheme      string        `env:"TRAFFIC_API_SCHEME" envDefault:"https"`
	TrafficAPIMethod      string        `env:"TRAFFIC_API_METHOD" envDefault:"GET"`
	TrafficAPIPath        string        `env:"TRAFFIC_API_PATH" envDefault:"/data"`
	TrafficAPIDomainParam string        `env:"TRAFFIC_API_DOMAIN_PARAM" envDefault:"domain"`
	TrafficAPITimeout     time.Duration `env:"TRAFFIC_API_TIMEOUT" envDefault:"0s"`
	SyntheticDelay        time.Duration `env:"SYNTHETIC_DELAY" envDefault:"1500ms"`

	// Recent lookups; empty RedisURL disables the feature.
	RedisURL           string `env:"REDIS_URL"`
	RedisPassword      string `env:"REDIS_PASSWORD"`
	RecentLookupsLimit int    `env:"RECENT_LOOKUPS_LIMIT" envDefault:"10"`
}

// Credentials returns the trimmed provider credentials shared by the mode
// resolver and the provider client.
func (c Config) Credentials() traffic.Credentials {
	return traffic.Credentials{
		APIKey:  strings.TrimSpace(c.TrafficAPIKey),
		APIHost: strings.TrimSpace(c.TrafficAPIHost),
	}
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads configuration from the environment once at process start.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	// If Infisical credentials are available, fill unset secrets from Infisical
	clientID := os.Getenv("INFISICAL_CLIENT_ID")
	clientSecret := os.Getenv("INFISICAL_CLIENT_SECRET")
	if clientID != "" && clientSecret != "" {
		loadFromInfisical(&cfg, clientID, clientSecret)
	}

	return cfg, nil
}

func loadFromInfisical(cfg *Config, clientID, clientSecret string) {
	siteURL := envOr("INFISICAL_SITE_URL", "https://app.infisical.com")
	projectID := os.Getenv("INFISICAL_PROJECT_ID")
	envSlug := envOr("INFISICAL_ENV", "prod")

	if projectID == "" {
		slog.Warn("INFISICAL_PROJECT_ID not set, skipping Infisical")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := infisical.NewInfisicalClient(ctx, infisical.Config{
		SiteUrl:          siteURL,
		AutoTokenRefresh: false,
	})

	_, err := client.Auth().UniversalAuthLogin(clientID, clientSecret)
	if err != nil {
		slog.Error("infisical auth failed", "error", err)
		return
	}

	secrets := map[string]*string{
		"TRAFFIC_API_KEY":  &cfg.TrafficAPIKey,
		"TRAFFIC_API_HOST": &cfg.TrafficAPIHost,
		"REDIS_PASSWORD":   &cfg.RedisPassword,
	}

	for key, target := range secrets {
		if *target != "" {
			continue // env var already set, skip
		}
		secret, err := client.Secrets().Retrieve(infisical.RetrieveSecretOptions{
			SecretKey:   key,
			Environment: envSlug,
			ProjectID:   projectID,
			SecretPath:  "/",
		})
		if err != nil {
			slog.Warn("failed to retrieve secret from infisical", "key", key, "error", err)
			continue
		}
		*target = secret.SecretValue
		slog.Info("loaded secret from infisical", "key", key)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
