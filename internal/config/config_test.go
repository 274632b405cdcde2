package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hintapp/hint/internal/hn"
)

func clearHintEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HINT_BASE_URL", "HINT_FEED", "HINT_LIMIT",
		"HINT_FETCH_INTERVAL", "HINT_REQUEST_TIMEOUT", "HINT_MAX_ATTEMPTS",
	} {
		t.Setenv(key, "")
	}
}

func TestNewDefaultsWhenFileMissing(t *testing.T) {
	clearHintEnv(t)
	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.BaseURL != hn.DefaultBaseURL {
		t.Fatalf("base url = %q, want %q", cfg.BaseURL, hn.DefaultBaseURL)
	}
	if cfg.Feed != hn.FeedTop {
		t.Fatalf("feed = %q, want top", cfg.Feed)
	}
	if cfg.Limit != DefaultLimit {
		t.Fatalf("limit = %d, want %d", cfg.Limit, DefaultLimit)
	}
	if cfg.FetchInterval != DefaultFetchInterval {
		t.Fatalf("fetch interval = %v, want %v", cfg.FetchInterval, DefaultFetchInterval)
	}
	if cfg.RequestTimeout != DefaultRequestTimeout {
		t.Fatalf("request timeout = %v, want %v", cfg.RequestTimeout, DefaultRequestTimeout)
	}
	if cfg.MaxAttempts != DefaultMaxAttempts {
		t.Fatalf("max attempts = %d, want %d", cfg.MaxAttempts, DefaultMaxAttempts)
	}
}

func TestNewParsesYaml(t *testing.T) {
	clearHintEnv(t)
	dir := t.TempDir()
	configYAML := strings.TrimSpace(`
base_url: http://localhost:8080/v0/
feed: Ask
limit: 5
fetch_interval: 1s
request_timeout: 2s
max_attempts: 3
`)
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8080/v0" {
		t.Fatalf("base url = %q, want trailing slash trimmed", cfg.BaseURL)
	}
	if cfg.Feed != hn.FeedAsk {
		t.Fatalf("feed = %q, want ask", cfg.Feed)
	}
	if cfg.Limit != 5 || cfg.MaxAttempts != 3 {
		t.Fatalf("limit/attempts = %d/%d, want 5/3", cfg.Limit, cfg.MaxAttempts)
	}
	if cfg.FetchInterval != time.Second || cfg.RequestTimeout != 2*time.Second {
		t.Fatalf("durations = %v/%v, want 1s/2s", cfg.FetchInterval, cfg.RequestTimeout)
	}
}

func TestNewAppliesEnvOverrides(t *testing.T) {
	clearHintEnv(t)
	dir := t.TempDir()
	configYAML := "limit: 5\nfeed: top\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HINT_LIMIT", "7")
	t.Setenv("HINT_FEED", "new")
	t.Setenv("HINT_FETCH_INTERVAL", "100ms")
	t.Setenv("HINT_MAX_ATTEMPTS", "zero")

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Limit != 7 {
		t.Fatalf("limit = %d, want env override 7", cfg.Limit)
	}
	if cfg.Feed != hn.FeedNew {
		t.Fatalf("feed = %q, want env override new", cfg.Feed)
	}
	if cfg.FetchInterval != 100*time.Millisecond {
		t.Fatalf("fetch interval = %v, want 100ms", cfg.FetchInterval)
	}
	if cfg.MaxAttempts != DefaultMaxAttempts {
		t.Fatalf("max attempts = %d, malformed override should be ignored", cfg.MaxAttempts)
	}
}

func TestNewRejectsInvalidValues(t *testing.T) {
	clearHintEnv(t)
	cases := []struct {
		name string
		yaml string
	}{
		{"unknown feed", "feed: best\n"},
		{"negative limit", "limit: -1\n"},
		{"bad duration", "fetch_interval: fast\n"},
		{"zero attempts", "max_attempts: 0\n"},
	}
	for _, tc := range cases {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(tc.yaml), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := New(dir); err == nil {
			t.Fatalf("%s: expected error but got none", tc.name)
		}
	}
}

func TestLimitZeroIsAllowed(t *testing.T) {
	clearHintEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("limit: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Limit != 0 {
		t.Fatalf("limit = %d, want 0", cfg.Limit)
	}
}

func TestInitDirWritesDefaultConfigOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hint")
	if err := InitDir(dir); err != nil {
		t.Fatalf("init dir: %v", err)
	}
	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read default config: %v", err)
	}
	if !strings.Contains(string(data), "# hint configuration") {
		t.Fatalf("default config missing header:\n%s", data)
	}

	if err := os.WriteFile(path, []byte("limit: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := InitDir(dir); err != nil {
		t.Fatalf("second init dir: %v", err)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "limit: 3\n" {
		t.Fatalf("init dir overwrote existing config:\n%s", data)
	}
}

func TestResolveDirPrecedence(t *testing.T) {
	t.Setenv(EnvDir, "/tmp/hint-env")

	dir, err := ResolveDir("/tmp/hint-flag")
	if err != nil {
		t.Fatalf("resolve dir: %v", err)
	}
	if dir != "/tmp/hint-flag" {
		t.Fatalf("dir = %q, want flag value to win", dir)
	}

	dir, err = ResolveDir("")
	if err != nil {
		t.Fatalf("resolve dir: %v", err)
	}
	if dir != "/tmp/hint-env" {
		t.Fatalf("dir = %q, want env value", dir)
	}
}
