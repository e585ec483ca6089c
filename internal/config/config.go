// Package config loads hubcontacts settings from config.yaml and the
// environment using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/hubcontacts/internal/paths"
	"github.com/mesh-intelligence/hubcontacts/pkg/types"
)

// EnvPrefix is prepended to every key when reading the environment
// (HUBCONTACTS_ACCESS_TOKEN and so on).
const EnvPrefix = "HUBCONTACTS"

// Config keys.
const (
	KeyBaseURL      = "base_url"
	KeyAccessToken  = "access_token"
	KeyClientID     = "client_id"
	KeyClientSecret = "client_secret"
	KeyRefreshToken = "refresh_token"
	KeyTimeout      = "timeout"
	KeyRateLimit    = "rate_limit"
	KeyRateBurst    = "rate_burst"
	KeyLogLevel     = "log_level"
	KeyLogFormat    = "log_format"
	KeyDataDir      = "data_dir"
)

// envKeys are bound to HUBCONTACTS_<KEY>. data_dir is absent because its
// environment override is applied by paths.ResolveDataDir after the file.
var envKeys = []string{
	KeyBaseURL, KeyAccessToken, KeyClientID, KeyClientSecret, KeyRefreshToken,
	KeyTimeout, KeyRateLimit, KeyRateBurst, KeyLogLevel, KeyLogFormat,
}

// Settings is the fully loaded configuration.
type Settings struct {
	API       types.Config
	LogLevel  string
	LogFormat string
	DataDir   string // Raw data_dir from config.yaml; empty when unset.
}

// File is the on-disk shape of config.yaml.
type File struct {
	BaseURL      string  `yaml:"base_url,omitempty"`
	AccessToken  string  `yaml:"access_token,omitempty"`
	ClientID     string  `yaml:"client_id,omitempty"`
	ClientSecret string  `yaml:"client_secret,omitempty"`
	RefreshToken string  `yaml:"refresh_token,omitempty"`
	Timeout      string  `yaml:"timeout,omitempty"`
	RateLimit    float64 `yaml:"rate_limit,omitempty"`
	RateBurst    int     `yaml:"rate_burst,omitempty"`
	LogLevel     string  `yaml:"log_level,omitempty"`
	LogFormat    string  `yaml:"log_format,omitempty"`
	DataDir      string  `yaml:"data_dir,omitempty"`
}

// DefaultFile is written to config.yaml on first run. Credentials are
// left empty.
func DefaultFile() File {
	return File{
		BaseURL:   types.DefaultBaseURL,
		Timeout:   types.DefaultTimeout.String(),
		RateLimit: types.DefaultRateLimit,
		RateBurst: types.DefaultRateBurst,
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

// Load reads config.yaml from configDir and overlays HUBCONTACTS_*
// environment variables. A missing config.yaml is not an error.
func Load(configDir string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return &Settings{
		API: types.Config{
			BaseURL:      v.GetString(KeyBaseURL),
			AccessToken:  v.GetString(KeyAccessToken),
			ClientID:     v.GetString(KeyClientID),
			ClientSecret: v.GetString(KeyClientSecret),
			RefreshToken: v.GetString(KeyRefreshToken),
			Timeout:      v.GetDuration(KeyTimeout),
			RateLimit:    v.GetFloat64(KeyRateLimit),
			RateBurst:    v.GetInt(KeyRateBurst),
		},
		LogLevel:  v.GetString(KeyLogLevel),
		LogFormat: v.GetString(KeyLogFormat),
		DataDir:   v.GetString(KeyDataDir),
	}, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultFile()
	v.SetDefault(KeyBaseURL, d.BaseURL)
	v.SetDefault(KeyTimeout, d.Timeout)
	v.SetDefault(KeyRateLimit, d.RateLimit)
	v.SetDefault(KeyRateBurst, d.RateBurst)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)
}

// EnsureFile creates configDir and writes f as config.yaml unless the file
// already exists. It reports whether a file was written.
func EnsureFile(configDir string, f File) (bool, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}

	path := paths.ConfigFile(configDir)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	// Credentials may be stored here.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}

// ReadFile decodes config.yaml in configDir without environment overlay.
func ReadFile(configDir string) (File, error) {
	var f File
	data, err := os.ReadFile(paths.ConfigFile(configDir))
	if err != nil {
		return f, err
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse config: %w", err)
	}
	return f, nil
}
