package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modelbundle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Empty(t, cfg.ResourceDirs)
	assert.Equal(t, "bundles.db", cfg.Database)
	assert.Equal(t, "extracted", cfg.Output)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
resource_dirs:
  - /opt/models
  - ~/assets
database: /tmp/catalog.db
log_level: debug
log_format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"/opt/models", "~/assets"}, cfg.ResourceDirs)
	assert.Equal(t, "/tmp/catalog.db", cfg.Database)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, "log_level: loud\n"))
	assert.ErrorContains(t, err, "unsupported log level 'loud'")

	_, err = Load(writeConfig(t, "log_format: xml\n"))
	assert.ErrorContains(t, err, "unsupported log format 'xml'")

	_, err = Load(writeConfig(t, "resource_dirs: ['']\n"))
	assert.ErrorContains(t, err, "resource directory 0 cannot be empty")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}
