package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, CatalogJSON, cfg.CatalogBackend)
	assert.Equal(t, 30*time.Second, cfg.WebImportTimeout)
	assert.Equal(t, 60*time.Second, cfg.ScanImportTimeout)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 15*time.Second, cfg.ResourceTimeout)
	assert.Equal(t, int64(1_000_000), cfg.MaxBodyBytes)
	assert.Equal(t, 50_000, cfg.MaxContentChars)
	assert.Equal(t, "tesseract", cfg.TesseractPath)
	assert.Equal(t, "eng", cfg.OCRLanguage)
	assert.Equal(t, AppName, filepath.Base(cfg.DataDir))
	assert.Equal(t, filepath.Join(cfg.DataDir, "documents"), cfg.DocumentsDir)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"no data dir", func(c *Config) { c.DataDir = "" }, ErrNoDataDir},
		{"unknown backend", func(c *Config) { c.CatalogBackend = "postgres" }, ErrInvalidCatalogBackend},
		{"zero web timeout", func(c *Config) { c.WebImportTimeout = 0 }, ErrInvalidTimeout},
		{"negative scan timeout", func(c *Config) { c.ScanImportTimeout = -time.Second }, ErrInvalidTimeout},
		{"request longer than resource", func(c *Config) { c.ResourceTimeout = 5 * time.Second }, ErrRequestTimeoutTooLong},
		{"request timeout above limit", func(c *Config) { c.RequestTimeout = 45 * time.Second }, ErrRequestTimeoutAboveLimit},
		{"resource timeout above limit", func(c *Config) { c.ResourceTimeout = 90 * time.Second }, ErrResourceTimeoutAboveLimit},
		{"zero body cap", func(c *Config) { c.MaxBodyBytes = 0 }, ErrInvalidMaxBodyBytes},
		{"body cap above limit", func(c *Config) { c.MaxBodyBytes = 50_000_000 }, ErrMaxBodyBytesAboveLimit},
		{"zero content ceiling", func(c *Config) { c.MaxContentChars = 0 }, ErrInvalidMaxContentChars},
		{"content ceiling above limit", func(c *Config) { c.MaxContentChars = 5_000_000 }, ErrMaxContentCharsAboveLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "readmate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: `+dir+`
catalog_backend: SQLite
web_import_timeout: 45s
max_body_bytes: 2048
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Empty(t, cfg.DocumentsDir)
	assert.Equal(t, filepath.Join(dir, "documents"), cfg.Documents())
	assert.Equal(t, CatalogSQLite, cfg.CatalogBackend)
	assert.Equal(t, 45*time.Second, cfg.WebImportTimeout)
	assert.Equal(t, int64(2048), cfg.MaxBodyBytes)
	assert.Equal(t, 60*time.Second, cfg.ScanImportTimeout, "unset keys keep defaults")
	assert.Equal(t, path, cfg.ConfigFile)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("READMATE_DATA_DIR", dir)
	t.Setenv("READMATE_DOCUMENTS_DIR", filepath.Join(dir, "pdfs"))
	t.Setenv("READMATE_SCAN_IMPORT_TIMEOUT", "2m")
	t.Setenv("READMATE_VERBOSE", "true")

	cfg, err := Load(filepath.Join(writeEmpty(t), "empty.yaml"))
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "pdfs"), cfg.DocumentsDir)
	assert.Equal(t, 2*time.Minute, cfg.ScanImportTimeout)
	assert.True(t, cfg.Verbose)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func writeEmpty(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.yaml"), []byte("{}\n"), 0o644))
	return dir
}
