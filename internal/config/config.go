// Package config loads server settings from environment variables and
// validates them on startup.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Sort     SortConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 15s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds the optional PostgreSQL source. With no URL the
// server runs with file uploads only.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string; DATABASE_URL or DB_URL.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Tables lists tables to load as widgets at startup, comma-separated.
	// Names may be schema-qualified.
	Tables []string `env:"DB_TABLES"`

	// RowLimit caps rows read per table (default: 500)
	RowLimit int `env:"DB_ROW_LIMIT" default:"500"`
}

// Enabled reports whether a database URL is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// SortConfig holds widget defaults and sources.
type SortConfig struct {
	// OptionsFile is a YAML file of default sorter options.
	OptionsFile string `env:"SORT_OPTIONS_FILE"`

	// PreloadDir holds .html, .csv and .xlsx files loaded at startup.
	PreloadDir string `env:"SORT_PRELOAD_DIR"`

	// MaxUploadSize is the upload limit in bytes (default: 10MB)
	MaxUploadSize int64 `env:"SORT_MAX_UPLOAD_SIZE" default:"10485760"`

	// MaxConcurrentLoads bounds parallel file and query loads (default: 4)
	MaxConcurrentLoads int `env:"SORT_MAX_CONCURRENT_LOADS" default:"4"`

	// MaxLoadWait is how long a load waits for a slot (default: 15s)
	MaxLoadWait time.Duration `env:"SORT_MAX_LOAD_WAIT" default:"15s"`
}

// RateLimitConfig holds per-IP rate limits.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute applies to every route (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// UploadLimit applies to widget creation (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies lists proxy IPs or CIDRs whose forwarding headers are
	// believed, comma-separated.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// CORSOrigins lists origins allowed to call /api from a browser,
	// comma-separated. Empty disables CORS.
	CORSOrigins []string `env:"SECURITY_CORS_ORIGINS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is debug, info, warn or error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
