package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port       string
	DBPath     string
	Env        string
	AdminToken string
	PublicURL  string

	GeoAPIURL string
	GeoAPIKey string
	GeoIPPath string

	GitHubUser   string
	GitHubAPIURL string
	GitHubTTL    time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
}

func Load() (*Config, error) {
	token := os.Getenv("FOLIO_ADMIN_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("FOLIO_ADMIN_TOKEN is required")
	}

	cfg := &Config{
		Port:       envOrDefault("FOLIO_PORT", "8080"),
		DBPath:     envOrDefault("FOLIO_DB_PATH", "./folio.db"),
		Env:        envOrDefault("FOLIO_ENV", "production"),
		AdminToken: token,
		PublicURL:  envOrDefault("FOLIO_PUBLIC_URL", "http://localhost:8080"),

		GeoAPIURL: envOrDefault("FOLIO_GEO_API_URL", "https://api.ipgeolocation.io/ipgeo"),
		GeoAPIKey: os.Getenv("FOLIO_GEO_API_KEY"),
		GeoIPPath: os.Getenv("FOLIO_GEOIP_PATH"),

		GitHubUser:   os.Getenv("FOLIO_GITHUB_USER"),
		GitHubAPIURL: envOrDefault("FOLIO_GITHUB_API_URL", "https://api.github.com"),
		GitHubTTL:    parseDuration("FOLIO_GITHUB_TTL", time.Hour),

		SMTPHost:     os.Getenv("FOLIO_SMTP_HOST"),
		SMTPPort:     parseInt("FOLIO_SMTP_PORT", 587),
		SMTPUser:     os.Getenv("FOLIO_SMTP_USER"),
		SMTPPassword: os.Getenv("FOLIO_SMTP_PASSWORD"),
		MailFrom:     os.Getenv("FOLIO_MAIL_FROM"),
	}

	switch cfg.Env {
	case "local", "test", "production":
	default:
		return nil, fmt.Errorf("FOLIO_ENV must be local, test or production, got %q", cfg.Env)
	}

	if cfg.GitHubTTL <= 0 {
		return nil, fmt.Errorf("FOLIO_GITHUB_TTL must be positive")
	}
	if cfg.SMTPPort <= 0 {
		return nil, fmt.Errorf("FOLIO_SMTP_PORT must be positive")
	}

	return cfg, nil
}

// IsLocal reports whether the deployment runs in a local or test
// environment, where geolocation lookups short-circuit to a sentinel.
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == "test"
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
