package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Empty(t, cfg.Token)
	assert.Equal(t, "https://api.replicate.com/v1", cfg.BaseURL)
	assert.Equal(t, "replicate-go/"+Version, cfg.UserAgent)
	assert.Equal(t, time.Second, cfg.PollInterval)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("REPLICATE_API_TOKEN", "test-token")
	t.Setenv("REPLICATE_BASE_URL", "http://localhost:8080/v1")
	t.Setenv("REPLICATE_POLL_INTERVAL", "250ms")
	t.Setenv("REPLICATE_MAX_POLLS", "10")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.Token)
	assert.Equal(t, "http://localhost:8080/v1", cfg.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 10, cfg.MaxPolls)
	assert.Equal(t, "replicate-go/"+Version, cfg.UserAgent)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Token = "tok"
	require.NoError(t, cfg.Validate())

	missing := Default()
	assert.Error(t, missing.Validate(), "missing token must be rejected")

	noBase := cfg
	noBase.BaseURL = ""
	assert.Error(t, noBase.Validate())

	negative := cfg
	negative.PollInterval = -time.Second
	assert.Error(t, negative.Validate())
}
