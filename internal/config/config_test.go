// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/shelfwatch")
	t.Setenv("CATALOG_BASE_URL", "https://catalog.example.com/api")
	t.Setenv("CHECK_DELAY", "500ms")
	t.Setenv("MAILER_ENDPOINT", "https://mail.example.com/send")
	t.Setenv("MAILER_RECIPIENT", "reader@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "postgres://localhost/shelfwatch", cfg.DatabaseURL)
	assert.Equal(t, "https://catalog.example.com/api", cfg.Catalog.BaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.CheckDelay)
	assert.Equal(t, 10*time.Second, cfg.Catalog.Timeout)
	assert.True(t, cfg.Mailer.Enabled())
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CATALOG_BASE_URL", "https://catalog.example.com/api")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadMissingCatalogBaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/shelfwatch")
	t.Setenv("CATALOG_BASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadBadDuration(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/shelfwatch")
	t.Setenv("CATALOG_BASE_URL", "https://catalog.example.com/api")
	t.Setenv("CHECK_DELAY", "fast")

	_, err := Load()
	assert.Error(t, err)
}

func TestMailerDisabledWithoutRecipient(t *testing.T) {
	m := MailerConfig{Endpoint: "https://mail.example.com/send"}
	assert.False(t, m.Enabled())
}
