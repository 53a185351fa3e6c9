package data

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ReloadingReader wraps an MmdbReader and swaps it out when the database file
// is replaced on disk. A missing or unreadable database is tolerated: lookups
// fail until a usable file appears, and callers are expected to treat that as
// an unknown country.
type ReloadingReader struct {
	path string

	mu    sync.RWMutex
	inner *MmdbReader
}

// NewReloadingReader opens the database at path if possible. Open failure is
// not fatal; the reader starts empty and can be filled in later via Reload or
// the file watcher.
func NewReloadingReader(path string) *ReloadingReader {
	r := &ReloadingReader{path: path}
	inner, err := NewMmdbReader(path)
	if err != nil {
		slog.Warn("geoip database not loaded, all lookups will resolve as unknown", "path", path, "error", err)
		return r
	}
	r.inner = inner
	return r
}

// Loaded reports whether a database is currently open.
func (r *ReloadingReader) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.inner != nil
}

// LookupCountry returns the ISO-3166 country code for the given IP address.
func (r *ReloadingReader) LookupCountry(ip net.IP) (string, error) {
	r.mu.RLock()
	inner := r.inner
	r.mu.RUnlock()

	if inner == nil {
		return "", fmt.Errorf("geoip database not loaded")
	}
	return inner.LookupCountry(ip)
}

// Reload opens the file again and swaps it in, closing the previous reader.
// On failure the previous reader stays active.
func (r *ReloadingReader) Reload() error {
	inner, err := NewMmdbReader(r.path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	old := r.inner
	r.inner = inner
	r.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			slog.Warn("failed to close previous geoip reader", "error", err)
		}
	}
	return nil
}

// Close releases the underlying reader, if any.
func (r *ReloadingReader) Close() error {
	r.mu.Lock()
	inner := r.inner
	r.inner = nil
	r.mu.Unlock()

	if inner == nil {
		return nil
	}
	return inner.Close()
}

// Watch reloads the database whenever the file is rewritten or replaced.
// It blocks until ctx is cancelled.
func (r *ReloadingReader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: downloads land as temp file + rename, which
	// would not be seen by a watch on the file itself.
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(r.path), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != r.path {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if err := r.Reload(); err != nil {
				slog.Warn("geoip database reload failed", "path", r.path, "error", err)
				continue
			}
			slog.Info("geoip database reloaded", "path", r.path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("geoip database watch error", "error", err)
		}
	}
}
