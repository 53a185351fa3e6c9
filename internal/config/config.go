// Package config loads the filter configuration from the environment.
// The configuration is read once at startup and never reloaded.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/TomasB/geoblock/internal/data"
	"github.com/TomasB/geoblock/internal/policy"
)

// Config is the startup configuration, immutable for the run.
type Config struct {
	LogLevel   string
	StatusPort string

	MMDBPath       string
	MMDBAutoUpdate bool
	MMDBUpdateURL  string
	MMDBMaxAge     time.Duration

	BlockedCountries []string
	Window           policy.PortWindow

	QueueNum       uint16
	ManageNftables bool
}

// FromEnv reads the configuration from environment variables.
func FromEnv() (Config, error) {
	cfg := Config{
		LogLevel:      envOr("LOG_LEVEL", "info"),
		StatusPort:    envOr("STATUS_PORT", "8080"),
		MMDBPath:      envOr("MMDB_PATH", "GeoLite2-Country.mmdb"),
		MMDBUpdateURL: envOr("MMDB_UPDATE_URL", data.DefaultUpdateURL),
		MMDBMaxAge:    data.DefaultMaxAge,
	}

	for _, cc := range strings.Split(os.Getenv("BLOCKED_COUNTRIES"), ",") {
		cc = strings.ToUpper(strings.TrimSpace(cc))
		if cc != "" {
			cfg.BlockedCountries = append(cfg.BlockedCountries, cc)
		}
	}
	if len(cfg.BlockedCountries) == 0 {
		return Config{}, fmt.Errorf("BLOCKED_COUNTRIES is required (comma-separated ISO country codes)")
	}

	min, err := envUint16("MONITOR_PORT_MIN", 15000)
	if err != nil {
		return Config{}, err
	}
	max, err := envUint16("MONITOR_PORT_MAX", 15999)
	if err != nil {
		return Config{}, err
	}
	cfg.Window, err = policy.NewPortWindow(min, max)
	if err != nil {
		return Config{}, err
	}

	cfg.QueueNum, err = envUint16("NFQUEUE_NUM", 0)
	if err != nil {
		return Config{}, err
	}

	cfg.ManageNftables, err = envBool("MANAGE_NFTABLES", false)
	if err != nil {
		return Config{}, err
	}
	cfg.MMDBAutoUpdate, err = envBool("MMDB_AUTO_UPDATE", false)
	if err != nil {
		return Config{}, err
	}

	if v := os.Getenv("MMDB_MAX_AGE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MMDB_MAX_AGE: %w", err)
		}
		cfg.MMDBMaxAge = d
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envUint16(key string, def uint16) (uint16, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return uint16(n), nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
