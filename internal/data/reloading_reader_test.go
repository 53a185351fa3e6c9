package data

import (
	"net"
	"os"
	"path/filepath"
	"testing"
)

func TestReloadingReader_MissingFile(t *testing.T) {
	r := NewReloadingReader(filepath.Join(t.TempDir(), "missing.mmdb"))
	defer r.Close()

	if r.Loaded() {
		t.Error("expected reader to start unloaded")
	}
	if _, err := r.LookupCountry(net.ParseIP("2.125.160.216")); err == nil {
		t.Error("expected lookup error while unloaded")
	}
}

func TestReloadingReader_LoadsOnReload(t *testing.T) {
	skipIfNoMMDB(t)

	path := filepath.Join(t.TempDir(), "country.mmdb")
	r := NewReloadingReader(path)
	defer r.Close()

	if r.Loaded() {
		t.Fatal("expected reader to start unloaded")
	}

	copyFile(t, testMMDBPath, path)
	if err := r.Reload(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !r.Loaded() {
		t.Fatal("expected reader to be loaded after reload")
	}

	country, err := r.LookupCountry(net.ParseIP("2.125.160.216"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if country != "GB" {
		t.Errorf("expected GB, got %q", country)
	}
}

func TestReloadingReader_ReloadFailureKeepsOld(t *testing.T) {
	skipIfNoMMDB(t)

	path := filepath.Join(t.TempDir(), "country.mmdb")
	copyFile(t, testMMDBPath, path)

	r := NewReloadingReader(path)
	defer r.Close()
	if !r.Loaded() {
		t.Fatal("expected reader to open existing database")
	}

	// Corrupt the file on disk; the reload must fail and the reader must
	// keep serving from the previously opened database.
	if err := os.WriteFile(path, []byte("not an mmdb"), 0o644); err != nil {
		t.Fatalf("failed to overwrite database: %v", err)
	}
	if err := r.Reload(); err == nil {
		t.Fatal("expected reload of corrupt file to fail")
	}
	if !r.Loaded() {
		t.Error("expected previous reader to stay active")
	}
	if _, err := r.LookupCountry(net.ParseIP("2.125.160.216")); err != nil {
		t.Errorf("lookup should still work: %v", err)
	}
}

func TestReloadingReader_Close(t *testing.T) {
	skipIfNoMMDB(t)

	path := filepath.Join(t.TempDir(), "country.mmdb")
	copyFile(t, testMMDBPath, path)

	r := NewReloadingReader(path)
	if err := r.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if r.Loaded() {
		t.Error("expected reader to be unloaded after close")
	}
	if err := r.Close(); err != nil {
		t.Errorf("second close should be a no-op: %v", err)
	}
}

func copyFile(t *testing.T, src, dst string) {
	t.Helper()
	raw, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("failed to read %s: %v", src, err)
	}
	if err := os.WriteFile(dst, raw, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", dst, err)
	}
}
