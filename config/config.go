// Package config holds Readmate's settings: defaults, loading from a config
// file and READMATE_* environment variables, and validation.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/gaurav-prasanna/readmate/core/extract"
	"github.com/gaurav-prasanna/readmate/core/fetch"
	"github.com/gaurav-prasanna/readmate/core/importer"
	"github.com/gaurav-prasanna/readmate/core/ocr"
)

// AppName is the application name used for XDG directory paths.
const AppName = "readmate"

// Catalog backends.
const (
	CatalogJSON   = "json"
	CatalogSQLite = "sqlite"
)

// Config holds all configuration options. It is built once at startup and
// passed down explicitly.
type Config struct {
	// DataDir holds the catalog. Defaults to $XDG_DATA_HOME/readmate.
	DataDir string
	// DocumentsDir holds imported document files. Defaults to DataDir/documents.
	DocumentsDir string
	// CatalogBackend is json (a books.json file) or sqlite.
	CatalogBackend string

	WebImportTimeout  time.Duration
	ScanImportTimeout time.Duration

	// RequestTimeout bounds connecting and waiting for response headers;
	// ResourceTimeout bounds the whole fetch including the body.
	RequestTimeout  time.Duration
	ResourceTimeout time.Duration

	MaxBodyBytes    int64
	MaxContentChars int
	UserAgent       string

	TesseractPath string
	OCRLanguage   string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFile is the file the configuration was read from, if any.
	ConfigFile string
}

// DefaultDataDir returns the XDG data directory for Readmate.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	dataDir := DefaultDataDir()
	return &Config{
		DataDir:           dataDir,
		DocumentsDir:      filepath.Join(dataDir, "documents"),
		CatalogBackend:    CatalogJSON,
		WebImportTimeout:  importer.DefaultWebTimeout,
		ScanImportTimeout: importer.DefaultScanTimeout,
		RequestTimeout:    fetch.DefaultRequestTimeout,
		ResourceTimeout:   fetch.DefaultResourceTimeout,
		MaxBodyBytes:      fetch.DefaultMaxBodyBytes,
		MaxContentChars:   extract.DefaultMaxChars,
		UserAgent:         fetch.DefaultUserAgent,
		TesseractPath:     ocr.DefaultTesseractPath,
		OCRLanguage:       ocr.DefaultLanguage,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return ErrNoDataDir
	}
	if c.CatalogBackend != CatalogJSON && c.CatalogBackend != CatalogSQLite {
		return fmt.Errorf("%w: %q", ErrInvalidCatalogBackend, c.CatalogBackend)
	}
	for _, d := range []time.Duration{c.WebImportTimeout, c.ScanImportTimeout, c.RequestTimeout, c.ResourceTimeout} {
		if d <= 0 {
			return ErrInvalidTimeout
		}
	}
	if c.RequestTimeout > fetch.DefaultRequestTimeout {
		return fmt.Errorf("%w: %s", ErrRequestTimeoutAboveLimit, c.RequestTimeout)
	}
	if c.ResourceTimeout > fetch.DefaultResourceTimeout {
		return fmt.Errorf("%w: %s", ErrResourceTimeoutAboveLimit, c.ResourceTimeout)
	}
	if c.RequestTimeout > c.ResourceTimeout {
		return ErrRequestTimeoutTooLong
	}
	if c.MaxBodyBytes <= 0 {
		return ErrInvalidMaxBodyBytes
	}
	if c.MaxBodyBytes > fetch.DefaultMaxBodyBytes {
		return fmt.Errorf("%w: %d", ErrMaxBodyBytesAboveLimit, c.MaxBodyBytes)
	}
	if c.MaxContentChars <= 0 {
		return ErrInvalidMaxContentChars
	}
	if c.MaxContentChars > extract.DefaultMaxChars {
		return fmt.Errorf("%w: %d", ErrMaxContentCharsAboveLimit, c.MaxContentChars)
	}
	return nil
}

// Documents returns the documents directory, derived from DataDir when unset.
func (c *Config) Documents() string {
	if c.DocumentsDir != "" {
		return c.DocumentsDir
	}
	return filepath.Join(c.DataDir, "documents")
}
