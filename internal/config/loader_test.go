package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFillsProfileNames(t *testing.T) {
	path := writeConfig(t, `
profiles:
  prod:
    host: logs.example.com
    token: abc
  staging:
    host: staging.example.com
    polling_interval: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Profiles, 2)
	assert.Equal(t, "prod", cfg.Profiles["prod"].Name)
	assert.Equal(t, "staging", cfg.Profiles["staging"].Name)
	assert.Equal(t, 10, cfg.Profiles["staging"].PollingInterval)
}

func TestLoadInterpolatesEnvRecursively(t *testing.T) {
	t.Setenv("EMBERTAIL_TEST_PASSWORD", "s3cret")
	t.Setenv("EMBERTAIL_TEST_SINK_TOKEN", "sinktok")

	path := writeConfig(t, `
forward:
  url: https://sink.example.com/ingest
  auth_token: env:EMBERTAIL_TEST_SINK_TOKEN
profiles:
  prod:
    host: logs.example.com
    username: ops
    password: env:EMBERTAIL_TEST_PASSWORD
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Profiles["prod"].Password)
	require.NotNil(t, cfg.Forward)
	assert.Equal(t, "sinktok", cfg.Forward.AuthToken)
}

func TestLoadFailsOnUnsetEnvReference(t *testing.T) {
	path := writeConfig(t, `
profiles:
  prod:
    host: logs.example.com
    password: env:EMBERTAIL_TEST_DEFINITELY_UNSET
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EMBERTAIL_TEST_DEFINITELY_UNSET")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadInteractiveFlag(t *testing.T) {
	path := writeConfig(t, `
interactive: false
profiles:
  prod:
    host: logs.example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Interactive)
	assert.False(t, *cfg.Interactive)
}
