package config

import (
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// env returns a lookup over a fixed set of variables.
func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Database.Enabled() {
		t.Error("Database.Enabled() = true with no URL")
	}
	if cfg.Database.RowLimit != 500 {
		t.Errorf("Database.RowLimit = %d, want 500", cfg.Database.RowLimit)
	}
	if cfg.Sort.MaxUploadSize != 10<<20 {
		t.Errorf("Sort.MaxUploadSize = %d, want %d", cfg.Sort.MaxUploadSize, 10<<20)
	}
	if cfg.Sort.MaxLoadWait != 15*time.Second {
		t.Errorf("Sort.MaxLoadWait = %v, want 15s", cfg.Sort.MaxLoadWait)
	}
	if !cfg.Rate.Enabled || cfg.Rate.RequestsPerMinute != 300 {
		t.Errorf("Rate = %+v, want enabled at 300/min", cfg.Rate)
	}
	if !cfg.Security.EnableCSP {
		t.Error("Security.EnableCSP = false, want true")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"SERVER_PORT":            "9090",
		"SORT_MAX_UPLOAD_SIZE":   "2048",
		"LOG_LEVEL":              "debug",
		"SERVER_REQUEST_TIMEOUT": "5s",
		"RATE_LIMIT_ENABLED":     "false",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Sort.MaxUploadSize != 2048 {
		t.Errorf("Sort.MaxUploadSize = %d, want 2048", cfg.Sort.MaxUploadSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Server.RequestTimeout != 5*time.Second {
		t.Errorf("Server.RequestTimeout = %v, want 5s", cfg.Server.RequestTimeout)
	}
	if cfg.Rate.Enabled {
		t.Error("Rate.Enabled = true, want false")
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "postgres://localhost/alttest")
	t.Setenv("DB_TABLES", "orders, reporting.refunds ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.URL != "postgres://localhost/alttest" {
		t.Errorf("Database.URL = %q, want the DB_URL fallback", cfg.Database.URL)
	}
	if diff := cmp.Diff([]string{"orders", "reporting.refunds"}, cfg.Database.Tables); diff != "" {
		t.Errorf("Database.Tables (-want +got):\n%s", diff)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"bad integer", map[string]string{"SERVER_PORT": "eighty"}, "SERVER_PORT"},
		{"bad duration", map[string]string{"SERVER_READ_TIMEOUT": "soon"}, "invalid duration"},
		{"bad bool", map[string]string{"RATE_LIMIT_ENABLED": "maybe"}, "invalid boolean"},
		{"port range", map[string]string{"SERVER_PORT": "70000"}, "SERVER_PORT (70000)"},
		{"log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"tables without db", map[string]string{"DB_TABLES": "orders"}, "DB_TABLES"},
		{"not postgres", map[string]string{"DATABASE_URL": "mysql://app@db/shop"}, "must be PostgreSQL"},
		{"not a url", map[string]string{"DATABASE_URL": "localhost"}, "not a valid database URL"},
		{"bad proxy", map[string]string{"TRUSTED_PROXIES": "10.0.0.0/8,nope"}, `"nope"`},
		{"missing preload dir", map[string]string{"SORT_PRELOAD_DIR": "/does/not/exist"}, "SORT_PRELOAD_DIR"},
		{
			"min conns above max",
			map[string]string{"DATABASE_URL": "postgres://x", "DB_MAX_CONNS": "2", "DB_MIN_CONNS": "5"},
			"DB_MIN_CONNS (5)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(env(tt.vars))
			if err == nil {
				t.Fatal("LoadFrom() expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Server.Port = 0
	cfg.Logging.Level = "loud"

	err = cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"SERVER_PORT", "LOG_LEVEL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error missing %s: %v", want, err)
		}
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"", 3000, ":3000"},
		{"::1", 443, "[::1]:443"},
	}

	for _, tt := range tests {
		cfg := ServerConfig{Host: tt.host, Port: tt.port}
		if got := cfg.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}

func TestTrustedPrefixes(t *testing.T) {
	sec := SecurityConfig{TrustedProxies: []string{"10.0.0.0/8", "192.168.1.5", "::1"}}

	want := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.5/32"),
		netip.MustParsePrefix("::1/128"),
	}
	got := sec.TrustedPrefixes()
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b netip.Prefix) bool { return a == b })); diff != "" {
		t.Errorf("TrustedPrefixes() (-want +got):\n%s", diff)
	}
}

func TestConfigString_MasksURL(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{"DATABASE_URL": "postgres://user:secret@db/app"}))
	if err != nil {
		t.Fatal(err)
	}

	s := cfg.String()
	if strings.Contains(s, "secret") {
		t.Errorf("String() leaks the database password: %s", s)
	}
	if !strings.Contains(s, "[MASKED]") {
		t.Errorf("String() = %s, want masked URL", s)
	}
}
