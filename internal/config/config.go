// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"
)

const (
	configEnv = "ADDRESSPARTS"

	ProviderGoogle       = "google"
	ProviderNominatim    = "nominatim"
	ProviderOpenCage     = "opencage"
	ProviderGeocodeEarth = "geocode-earth"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config represents the application's configuration structure.
type Config struct {
	LogLevel slog.Level `fig:"loglevel" default:"0"`
	// Language of the geocoding results, e.g. "es" or "en-US". Detected from the
	// environment if empty.
	Locale string `fig:"locale"`
	// Default ccTLD region bias, e.g. "co"
	Region string `fig:"region"`

	GeoCoder struct {
		// Allowed values: google, nominatim, opencage, geocode-earth
		Provider string `fig:"provider" default:"nominatim"`
		APIKey   string `fig:"apikey"`
	} `fig:"geocoder"`

	Cache struct {
		Disable bool `fig:"disable"`
		// Allowed values: memory, redis
		Backend       string        `fig:"backend" default:"memory"`
		HitTTL        time.Duration `fig:"hit_ttl" default:"24h"`
		MissTTL       time.Duration `fig:"miss_ttl" default:"10m"`
		PurgeInterval time.Duration `fig:"purge_interval" default:"5m"`
		Redis         struct {
			Addr     string `fig:"addr" default:"localhost:6379"`
			Password string `fig:"password"`
			DB       int    `fig:"db"`
		} `fig:"redis"`
	} `fig:"cache"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	c.GeoCoder.Provider = strings.ToLower(strings.TrimSpace(c.GeoCoder.Provider))
	switch c.GeoCoder.Provider {
	case ProviderGoogle, ProviderOpenCage, ProviderGeocodeEarth:
		if c.GeoCoder.APIKey == "" {
			return fmt.Errorf("%s geocoder requires an API key", c.GeoCoder.Provider)
		}
	case ProviderNominatim:
	default:
		return fmt.Errorf("unsupported geocoder provider: %s", c.GeoCoder.Provider)
	}
	if !c.Cache.Disable {
		if c.Cache.HitTTL <= 0 || c.Cache.MissTTL <= 0 {
			return fmt.Errorf("invalid cache TTLs: hit %s, miss %s", c.Cache.HitTTL, c.Cache.MissTTL)
		}
		c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
		switch c.Cache.Backend {
		case CacheMemory:
			if c.Cache.PurgeInterval <= 0 {
				return fmt.Errorf("invalid cache purge interval: %s", c.Cache.PurgeInterval)
			}
		case CacheRedis:
			if c.Cache.Redis.Addr == "" {
				return fmt.Errorf("redis cache requires an address")
			}
		default:
			return fmt.Errorf("unsupported cache backend: %s", c.Cache.Backend)
		}
	}
	if c.Locale == "" {
		c.Locale = getLocale()
	}
	c.Region = strings.ToLower(c.Region)

	return nil
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
