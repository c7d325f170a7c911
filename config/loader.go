package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables, e.g. READMATE_DATA_DIR.
const EnvPrefix = "READMATE"

// Load builds a Config from defaults, an optional config file and the
// environment, in increasing order of precedence. With an empty path the
// file is looked up as config.{yaml,toml,json} in $XDG_CONFIG_HOME/readmate
// and a missing file is not an error. DocumentsDir stays empty unless set, so
// callers can still move DataDir before resolving it with Documents.
func Load(path string) (*Config, error) {
	defaults := NewConfig()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("documents_dir", "")
	v.SetDefault("catalog_backend", defaults.CatalogBackend)
	v.SetDefault("web_import_timeout", defaults.WebImportTimeout)
	v.SetDefault("scan_import_timeout", defaults.ScanImportTimeout)
	v.SetDefault("request_timeout", defaults.RequestTimeout)
	v.SetDefault("resource_timeout", defaults.ResourceTimeout)
	v.SetDefault("max_body_bytes", defaults.MaxBodyBytes)
	v.SetDefault("max_content_chars", defaults.MaxContentChars)
	v.SetDefault("user_agent", defaults.UserAgent)
	v.SetDefault("tesseract_path", defaults.TesseractPath)
	v.SetDefault("ocr_language", defaults.OCRLanguage)
	v.SetDefault("verbose", false)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, AppName))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg := &Config{
		DataDir:           v.GetString("data_dir"),
		DocumentsDir:      v.GetString("documents_dir"),
		CatalogBackend:    strings.ToLower(v.GetString("catalog_backend")),
		WebImportTimeout:  v.GetDuration("web_import_timeout"),
		ScanImportTimeout: v.GetDuration("scan_import_timeout"),
		RequestTimeout:    v.GetDuration("request_timeout"),
		ResourceTimeout:   v.GetDuration("resource_timeout"),
		MaxBodyBytes:      v.GetInt64("max_body_bytes"),
		MaxContentChars:   v.GetInt("max_content_chars"),
		UserAgent:         v.GetString("user_agent"),
		TesseractPath:     v.GetString("tesseract_path"),
		OCRLanguage:       v.GetString("ocr_language"),
		Verbose:           v.GetBool("verbose"),
		ConfigFile:        v.ConfigFileUsed(),
	}
	return cfg, nil
}
