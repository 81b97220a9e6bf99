package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	naverrors "github.com/affectively-ai/aeon-nav/internal/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestNewDefaults(t *testing.T) {
	cfg := New()

	if cfg.Cache.MaxSessions != 50 {
		t.Errorf("MaxSessions = %d, want 50", cfg.Cache.MaxSessions)
	}
	if cfg.SessionTTL() != 5*time.Minute {
		t.Errorf("SessionTTL = %v, want 5m", cfg.SessionTTL())
	}
	if cfg.SkeletonTTL() != 30*time.Minute {
		t.Errorf("SkeletonTTL = %v, want 30m", cfg.SkeletonTTL())
	}
	if cfg.HoverDelay() != 100*time.Millisecond {
		t.Errorf("HoverDelay = %v, want 100ms", cfg.HoverDelay())
	}
	if cfg.Prediction.PrefetchThreshold != 0.3 {
		t.Errorf("PrefetchThreshold = %g, want 0.3", cfg.Prediction.PrefetchThreshold)
	}
	if got := cfg.ServeAddress(); got != "localhost:4600" {
		t.Errorf("ServeAddress = %q, want localhost:4600", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadAppliesDefaultsToPartialConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{
  "name": "demo",
  "cache": {"maxSessions": 200},
  "serve": {"port": 9000}
}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Name != "demo" {
		t.Errorf("Name = %q, want demo", cfg.Name)
	}
	if cfg.Cache.MaxSessions != 200 {
		t.Errorf("MaxSessions = %d, want 200", cfg.Cache.MaxSessions)
	}
	if cfg.Cache.SessionTTL != "5m" {
		t.Errorf("SessionTTL = %q, want default 5m", cfg.Cache.SessionTTL)
	}
	if cfg.Serve.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Serve.Port)
	}
	if cfg.Serve.Host != DefaultHost {
		t.Errorf("Host = %q, want default", cfg.Serve.Host)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	if !errors.Is(err, naverrors.New("C001")) {
		t.Fatalf("Load on empty dir = %v, want C001", err)
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"cache": `)

	_, err := Load(dir)
	if !errors.Is(err, naverrors.New("C001")) {
		t.Fatalf("Load malformed = %v, want C001", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad session ttl", `{"cache": {"sessionTtl": "soon"}}`},
		{"bad hover delay", `{"speculation": {"hoverDelay": "fast"}}`},
		{"threshold too high", `{"prediction": {"prefetchThreshold": 1.5}}`},
		{"negative sessions", `{"cache": {"maxSessions": -1}}`},
		{"port out of range", `{"serve": {"port": 70000}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tc.body)

			_, err := Load(dir)
			if !errors.Is(err, naverrors.New("C002")) {
				t.Fatalf("Load = %v, want C002", err)
			}
		})
	}
}

func TestManifestPathResolvesRelative(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"manifest": "app/routes.json"}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "app", "routes.json")
	if got := cfg.ManifestPath(); got != want {
		t.Errorf("ManifestPath = %q, want %q", got, want)
	}
}

func TestSaveToRoundTrips(t *testing.T) {
	dir := t.TempDir()
	cfg := New()
	cfg.Name = "roundtrip"
	cfg.Serve.Port = 8080

	path := filepath.Join(dir, ConfigFileName)
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if loaded.Name != "roundtrip" || loaded.Serve.Port != 8080 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	if Exists(dir) {
		t.Error("Exists should be false before writing")
	}
	writeConfig(t, dir, `{}`)
	if !Exists(dir) {
		t.Error("Exists should be true after writing")
	}
}
