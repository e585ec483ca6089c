package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hubcontacts/pkg/types"
)

// clearEnv blanks every bound variable so the host environment does not
// leak into the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		name := EnvPrefix + "_" + strings.ToUpper(key)
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func writeYAML(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	s, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, types.DefaultBaseURL, s.API.BaseURL)
	assert.Equal(t, types.DefaultTimeout, s.API.Timeout)
	assert.Equal(t, types.DefaultRateLimit, s.API.RateLimit)
	assert.Equal(t, types.DefaultRateBurst, s.API.RateBurst)
	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, "text", s.LogFormat)
	assert.Empty(t, s.API.AccessToken)
	assert.Empty(t, s.DataDir)
}

func TestLoadReadsFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeYAML(t, dir, `
base_url: http://localhost:9999
access_token: file-token
timeout: 5s
rate_limit: 2.5
rate_burst: 3
log_level: debug
log_format: json
data_dir: /var/lib/hubcontacts
`)

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999", s.API.BaseURL)
	assert.Equal(t, "file-token", s.API.AccessToken)
	assert.Equal(t, 5*time.Second, s.API.Timeout)
	assert.Equal(t, 2.5, s.API.RateLimit)
	assert.Equal(t, 3, s.API.RateBurst)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "json", s.LogFormat)
	assert.Equal(t, "/var/lib/hubcontacts", s.DataDir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeYAML(t, dir, "access_token: file-token\nlog_level: info\n")
	t.Setenv("HUBCONTACTS_ACCESS_TOKEN", "env-token")
	t.Setenv("HUBCONTACTS_TIMEOUT", "1m")

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "env-token", s.API.AccessToken)
	assert.Equal(t, time.Minute, s.API.Timeout)
	assert.Equal(t, "info", s.LogLevel)
}

func TestLoadDataDirIgnoresEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HUBCONTACTS_DATA_DIR", "/from/env")
	s, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, s.DataDir)
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeYAML(t, dir, "access_token: [unclosed\n")
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestEnsureFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cfg")

	f := DefaultFile()
	f.AccessToken = "tok"
	written, err := EnsureFile(dir, f)
	require.NoError(t, err)
	assert.True(t, written)

	info, err := os.Stat(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := ReadFile(dir)
	require.NoError(t, err)
	assert.Equal(t, f, got)

	// Existing file is left alone.
	written, err = EnsureFile(dir, DefaultFile())
	require.NoError(t, err)
	assert.False(t, written)
	got, err = ReadFile(dir)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.AccessToken)
}

func TestEnsureFileThenLoad(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	_, err := EnsureFile(dir, DefaultFile())
	require.NoError(t, err)

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultTimeout, s.API.Timeout)
	assert.Equal(t, types.DefaultRateBurst, s.API.RateBurst)
}
