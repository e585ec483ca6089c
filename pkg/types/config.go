package types

import (
	"errors"
	"time"
)

// Config holds the connection parameters for the HubSpot API.
// Either AccessToken, or the ClientID/ClientSecret/RefreshToken triple,
// must be set.
type Config struct {
	BaseURL      string        `json:"base_url" yaml:"base_url"`
	AccessToken  string        `json:"access_token" yaml:"access_token"`
	ClientID     string        `json:"client_id" yaml:"client_id"`
	ClientSecret string        `json:"client_secret" yaml:"client_secret"`
	RefreshToken string        `json:"refresh_token" yaml:"refresh_token"`
	Timeout      time.Duration `json:"timeout" yaml:"timeout"`
	RateLimit    float64       `json:"rate_limit" yaml:"rate_limit"` // Requests per second; zero disables.
	RateBurst    int           `json:"rate_burst" yaml:"rate_burst"`
}

// Defaults applied by WithDefaults.
const (
	DefaultBaseURL   = "https://api.hubapi.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10.0
	DefaultRateBurst = 10
)

// Config validation errors.
var (
	ErrCredentialsMissing   = errors.New("access token or oauth refresh credentials are required")
	ErrCredentialsAmbiguous = errors.New("access token and refresh token are mutually exclusive")
	ErrRefreshIncomplete    = errors.New("refresh token requires client id and client secret")
	ErrTimeoutInvalid       = errors.New("timeout must not be negative")
	ErrRateLimitInvalid     = errors.New("rate limit must not be negative")
	ErrRateBurstInvalid     = errors.New("rate burst must be positive when rate limit is set")
)

// UsesRefreshToken reports whether the config authenticates through the
// OAuth refresh-token flow rather than a static access token.
func (c Config) UsesRefreshToken() bool {
	return c.RefreshToken != ""
}

// WithDefaults returns a copy with empty fields set to their defaults.
// RateLimit is left alone: zero is a valid "unlimited" setting.
func (c Config) WithDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit > 0 && c.RateBurst == 0 {
		c.RateBurst = DefaultRateBurst
	}
	return c
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	switch {
	case c.AccessToken != "" && c.RefreshToken != "":
		return ErrCredentialsAmbiguous
	case c.AccessToken == "" && c.RefreshToken == "":
		return ErrCredentialsMissing
	case c.RefreshToken != "" && (c.ClientID == "" || c.ClientSecret == ""):
		return ErrRefreshIncomplete
	}
	if c.Timeout < 0 {
		return ErrTimeoutInvalid
	}
	if c.RateLimit < 0 {
		return ErrRateLimitInvalid
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		return ErrRateBurstInvalid
	}
	return nil
}
