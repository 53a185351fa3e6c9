package data

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DefaultUpdateURL points at a GeoLite2 country database mirror that does not
// require a MaxMind license key.
const DefaultUpdateURL = "https://github.com/P3TERX/GeoLite.mmdb/raw/download/GeoLite2-Country.mmdb"

// DefaultMaxAge is how old the database file may get before EnsureDatabase
// refreshes it.
const DefaultMaxAge = 30 * 24 * time.Hour

// EnsureDatabase downloads the database to path when the file is missing or
// older than maxAge. A failed download is returned to the caller but leaves
// any existing file in place, so a stale database keeps working.
func EnsureDatabase(ctx context.Context, client *http.Client, path, url string, maxAge time.Duration) error {
	if info, err := os.Stat(path); err == nil {
		age := time.Since(info.ModTime())
		if age <= maxAge {
			slog.Info("geoip database up to date", "path", path, "age", age.Round(time.Hour).String())
			return nil
		}
		slog.Info("geoip database stale, updating", "path", path, "age", age.Round(time.Hour).String())
	} else {
		slog.Info("geoip database missing, downloading", "path", path)
	}

	return download(ctx, client, path, url)
}

func download(ctx context.Context, client *http.Client, path, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download geoip database: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download geoip database: unexpected status %s", resp.Status)
	}

	// Write to a temp file in the same directory and rename, so a reader
	// never sees a half-written database.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".geoblock-mmdb-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write geoip database: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write geoip database: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace geoip database: %w", err)
	}

	slog.Info("geoip database downloaded", "path", path)
	return nil
}
