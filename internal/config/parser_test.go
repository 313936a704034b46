package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	specsyncerrors "specsync/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "services.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
version: "1.0"
name: platform
services:
  - name: billing
    base_url: https://billing.internal
    spec_paths: ["/openapi.json"]
    artifacts: ["client-stub"]
`

func TestParseConfigMinimal(t *testing.T) {
	cfg, err := ParseConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	require.Len(t, cfg.Services, 1)
	svc := cfg.Services[0]
	assert.Equal(t, "billing", svc.Name)
	assert.True(t, svc.Enabled)
	assert.Equal(t, "none", svc.Auth.Kind)
}

func TestParseConfigAppliesDefaults(t *testing.T) {
	cfg, err := ParseConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Settings.Parallel)
	assert.Equal(t, 300, cfg.Settings.Interval)
	assert.Equal(t, 10, cfg.Settings.FetchTimeout)
	assert.Equal(t, "generated", cfg.Settings.OutputDir)
	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, ".specsync/checksums.json", cfg.Store.Path)
	assert.Equal(t, "log", cfg.Notifier.Driver)
	assert.Equal(t, "specsync.changes", cfg.Notifier.Topic)
	assert.True(t, cfg.Settings.ChangeGateEnabled())
}

func TestParseConfigBoltStoreDefaultPath(t *testing.T) {
	cfg, err := ParseConfig(writeConfig(t, minimalConfig+`
store:
  driver: bolt
`))
	require.NoError(t, err)
	assert.Equal(t, ".specsync/checksums.db", cfg.Store.Path)
}

func TestParseConfigMissingFile(t *testing.T) {
	_, err := ParseConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	var parseErr *specsyncerrors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParseConfigInvalidYAML(t *testing.T) {
	_, err := ParseConfig(writeConfig(t, "version: [unclosed"))
	require.Error(t, err)
	var parseErr *specsyncerrors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParseConfigDisabledService(t *testing.T) {
	cfg, err := ParseConfig(writeConfig(t, minimalConfig+`
  - name: ledger
    base_url: https://ledger.internal
    spec_paths: ["/openapi.json"]
    artifacts: ["registration"]
    enabled: false
`))
	require.NoError(t, err)

	require.Len(t, cfg.Services, 2)
	assert.False(t, cfg.Services[1].Enabled)
	enabled := cfg.EnabledServices()
	require.Len(t, enabled, 1)
	assert.Equal(t, "billing", enabled[0].Name)
}

func TestServiceOverridesTimeoutsAndRetries(t *testing.T) {
	cfg, err := ParseConfig(writeConfig(t, `
version: "1.0"
name: platform
settings:
  fetch_timeout: 20
  fetch_retries: 5
services:
  - name: billing
    base_url: https://billing.internal
    spec_paths: ["/openapi.json"]
    artifacts: ["client-stub"]
    timeout: 3
    retries: 0
  - name: ledger
    base_url: https://ledger.internal
    spec_paths: ["/openapi.json"]
    artifacts: ["client-stub"]
`))
	require.NoError(t, err)

	billing, ledger := cfg.Services[0], cfg.Services[1]
	assert.Equal(t, 3, int(billing.FetchTimeout(cfg.Settings).Seconds()))
	assert.Equal(t, 0, billing.FetchRetries(cfg.Settings))
	assert.Equal(t, 20, int(ledger.FetchTimeout(cfg.Settings).Seconds()))
	assert.Equal(t, 5, ledger.FetchRetries(cfg.Settings))
}
