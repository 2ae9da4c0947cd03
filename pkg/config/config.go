// Package config holds the shared client configuration. A Config is
// immutable once constructed and is copied by value into every accessor.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Version of this library, reported in the User-Agent header.
const Version = "0.1.0"

// DefaultBaseURL is the production API endpoint. Override it primarily
// for testing against a mock server.
const DefaultBaseURL = "https://api.replicate.com/v1"

// Config carries the credential and endpoint settings shared by every
// accessor, plus the defaults used by the prediction polling loop.
type Config struct {
	// Token is the API credential, sent as "Authorization: Token <...>".
	Token string `envconfig:"REPLICATE_API_TOKEN"`

	// BaseURL is the endpoint all request URLs are built from.
	BaseURL string `envconfig:"REPLICATE_BASE_URL" default:"https://api.replicate.com/v1"`

	// UserAgent identifies the client and its version on every request.
	UserAgent string `ignored:"true"`

	// PollInterval is the fixed delay between status polls while a
	// prediction is still running.
	PollInterval time.Duration `envconfig:"REPLICATE_POLL_INTERVAL" default:"1s"`

	// MaxPolls bounds the polling loop. Zero means poll until terminal.
	MaxPolls int `envconfig:"REPLICATE_MAX_POLLS" default:"0"`
}

// Default returns a Config with production defaults and no token. Fill
// in Token, or use FromEnv to read REPLICATE_API_TOKEN.
func Default() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		UserAgent:    fmt.Sprintf("replicate-go/%s", Version),
		PollInterval: time.Second,
	}
}

// FromEnv builds a Config from REPLICATE_* environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config from environment: %w", err)
	}
	cfg.UserAgent = fmt.Sprintf("replicate-go/%s", Version)
	return cfg, nil
}

// Validate checks that the configuration can authenticate. A missing
// token is a constructor-time error here, never a process exit.
func (c Config) Validate() error {
	if c.Token == "" {
		return errors.New("no api token provided: set REPLICATE_API_TOKEN or fill in Config.Token")
	}
	if c.BaseURL == "" {
		return errors.New("base url must not be empty")
	}
	if c.PollInterval < 0 {
		return errors.New("poll interval must not be negative")
	}
	return nil
}
