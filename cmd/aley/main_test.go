package main

import (
	"path/filepath"
	"testing"
	"time"

	"client-aley/internal/config"
)

func TestHTTPClientForUsesConfiguredTimeout(t *testing.T) {
	client := httpClientFor(config.Config{HTTPTimeout: 7 * time.Second})
	if client.Timeout != 7*time.Second {
		t.Fatalf("timeout = %v, want 7s", client.Timeout)
	}
}

func TestHTTPClientForDefaultsTimeout(t *testing.T) {
	client := httpClientFor(config.Config{})
	if client.Timeout != 30*time.Second {
		t.Fatalf("timeout = %v, want 30s", client.Timeout)
	}
}

func TestNewAppWiresConfig(t *testing.T) {
	t.Setenv("ALEY_SESSION_DB", filepath.Join(t.TempDir(), "session.db"))
	t.Setenv("ALEY_HTTP_TIMEOUT", "7s")
	t.Setenv("ALEY_PAGE_LIMIT", "42")

	a, err := newApp()
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	if a.cfg.HTTPTimeout != 7*time.Second {
		t.Fatalf("http timeout = %v", a.cfg.HTTPTimeout)
	}
	if a.cfg.PageLimit != 42 {
		t.Fatalf("page limit = %d", a.cfg.PageLimit)
	}
	if a.client == nil || a.resolver == nil || a.feed == nil {
		t.Fatalf("app not fully wired: %+v", a)
	}
}
