package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("API_BASE_URL", "http://api.local:5000/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "http://api.local:5000", cfg.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Equal(t, 10, cfg.PageSize)
	assert.NoError(t, cfg.ValidateUI())
}

func TestValidate(t *testing.T) {
	cfg := &Config{APIBaseURL: "http://x"}
	assert.EqualError(t, cfg.ValidateUI(), "SESSION_SECRET is not set")
	assert.EqualError(t, cfg.ValidateAPI(), "DB_DSN is not set")

	cfg.DBDSN = "postgres://"
	assert.EqualError(t, cfg.ValidateAPI(), "JWT_SECRET is not set")
}

func TestLoad_PageSizeFromEnv(t *testing.T) {
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("CORS_ORIGINS", "http://a,http://b")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.CORSOrigins)
}
