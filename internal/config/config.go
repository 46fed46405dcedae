// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds everything the tracker reads from its environment. It is
// built once in main and handed to constructors; no other component
// reads ambient process state.
type Config struct {
	ListenAddr   string
	DatabaseURL  string
	OTLPEndpoint string

	Catalog CatalogConfig
	Mailer  MailerConfig

	// CheckDelay is the pause between consecutive catalog queries in a
	// reconciliation run, protecting the provider's informal rate limit.
	CheckDelay time.Duration
}

// CatalogConfig points at the external library-availability provider.
type CatalogConfig struct {
	BaseURL string
	Timeout time.Duration
}

// MailerConfig points at the transactional email provider. The mailer is
// optional for reconciliation (change notices are skipped when absent)
// and required for the weekly digest.
type MailerConfig struct {
	Endpoint  string
	APIKey    string
	From      string
	Recipient string
	Timeout   time.Duration
}

// Enabled reports whether the mailer has enough configuration to send.
func (m MailerConfig) Enabled() bool {
	return m.Endpoint != "" && m.Recipient != ""
}

// Load reads the process environment into a validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:   getEnv("LISTEN_ADDR", ":8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		OTLPEndpoint: os.Getenv("OTLP_ENDPOINT"),
		Catalog: CatalogConfig{
			BaseURL: os.Getenv("CATALOG_BASE_URL"),
		},
		Mailer: MailerConfig{
			Endpoint:  os.Getenv("MAILER_ENDPOINT"),
			APIKey:    os.Getenv("MAILER_API_KEY"),
			From:      getEnv("MAILER_FROM", "tracker@shelfwatch.local"),
			Recipient: os.Getenv("MAILER_RECIPIENT"),
		},
	}

	var err error
	if cfg.CheckDelay, err = getDuration("CHECK_DELAY", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.Catalog.Timeout, err = getDuration("CATALOG_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Mailer.Timeout, err = getDuration("MAILER_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Catalog.BaseURL == "" {
		return nil, fmt.Errorf("CATALOG_BASE_URL is required")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
