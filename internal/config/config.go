// Package config reads the client's configuration from SHOPLIST_*
// environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/shoplist/internal/categorize"
	"github.com/dukerupert/shoplist/internal/model"
)

type Config struct {
	// DatabaseURL selects the hosted Postgres collection. Empty means the
	// local SQLite file at DBPath.
	DatabaseURL       string
	DBPath            string
	ListID            string
	APIURL            string
	RealtimeURL       string
	CategorizeTimeout time.Duration
	LogLevel          string
	SettingsPath      string
}

// Load reads the environment through getenv, which is os.Getenv outside tests.
func Load(getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	env := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		DatabaseURL:       getenv("SHOPLIST_DATABASE_URL"),
		DBPath:            env("SHOPLIST_DB_PATH", "shoplist.db"),
		ListID:            env("SHOPLIST_LIST_ID", model.DefaultListID),
		APIURL:            getenv("SHOPLIST_API_URL"),
		RealtimeURL:       getenv("SHOPLIST_REALTIME_URL"),
		CategorizeTimeout: categorize.DefaultTimeout,
		LogLevel:          env("SHOPLIST_LOG_LEVEL", "info"),
		SettingsPath:      getenv("SHOPLIST_SETTINGS_PATH"),
	}

	if v := getenv("SHOPLIST_CATEGORIZE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("SHOPLIST_CATEGORIZE_TIMEOUT: %w", err)
		}
		cfg.CategorizeTimeout = d
	}

	if cfg.SettingsPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = "."
		}
		cfg.SettingsPath = filepath.Join(dir, "shoplist", "settings.yaml")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	// Change payloads carry the canonical lower-case form.
	cfg.ListID = uuid.MustParse(cfg.ListID).String()
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := uuid.Parse(c.ListID); err != nil {
		return fmt.Errorf("SHOPLIST_LIST_ID: %w", err)
	}
	if c.CategorizeTimeout <= 0 {
		return fmt.Errorf("SHOPLIST_CATEGORIZE_TIMEOUT must be positive, got %s", c.CategorizeTimeout)
	}
	for name, raw := range map[string]string{
		"SHOPLIST_API_URL":      c.APIURL,
		"SHOPLIST_REALTIME_URL": c.RealtimeURL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s: not an absolute URL: %q", name, raw)
		}
	}
	return nil
}

// Local reports whether the list lives in the local SQLite file.
func (c Config) Local() bool {
	return c.DatabaseURL == ""
}
