package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every variable, e.g. SHOPBOARD_PORT.
const EnvPrefix = "SHOPBOARD"

// Session storage backends.
const (
	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8085"`
	BindAddr string `envconfig:"BIND_ADDR" default:"127.0.0.1"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Shopboard backend
	APIBaseURL  string `envconfig:"API_BASE_URL" default:"http://localhost:5000"`
	FileBaseURL string `envconfig:"FILE_BASE_URL"`

	// HTTP client
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`

	// Resilience (retries apply to GETs only)
	MaxRetries     int           `envconfig:"MAX_RETRIES" default:"2"`
	InitialBackoff time.Duration `envconfig:"INITIAL_BACKOFF" default:"150ms"`
	MaxConcurrency int           `envconfig:"MAX_CONCURRENCY" default:"8"`

	// Cache
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	// Observability
	OTLPEndpoint string `envconfig:"OTLP_ENDPOINT"`

	// Session persistence
	SessionBackend string `envconfig:"SESSION_BACKEND" default:"file"`
	SessionFile    string `envconfig:"SESSION_FILE" default:".shopboard-session.json"`
	SessionSecret  string `envconfig:"SESSION_SECRET"`
	RedisURL       string `envconfig:"REDIS_URL"`
	RedisAddr      string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD"`
	RedisDB        int    `envconfig:"REDIS_DB" default:"0"`

	// Behaviour
	SendPermissionsHeader bool   `envconfig:"SEND_PERMISSIONS_HEADER" default:"true"`
	DefaultRoute          string `envconfig:"DEFAULT_ROUTE" default:"/dashboard"`
}

// Load reads configuration from SHOPBOARD_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if cfg.FileBaseURL == "" {
		cfg.FileBaseURL = cfg.APIBaseURL
	}
	cfg.FileBaseURL = strings.TrimRight(cfg.FileBaseURL, "/")
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ListenAddr is the host:port the dashboard binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.BindAddr, c.Port)
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SHOPBOARD_API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL)
	}
	switch c.SessionBackend {
	case SessionBackendFile:
		if c.SessionFile == "" {
			return fmt.Errorf("SHOPBOARD_SESSION_FILE is required for the file session backend")
		}
	case SessionBackendRedis:
		if c.RedisURL == "" && c.RedisAddr == "" {
			return fmt.Errorf("SHOPBOARD_REDIS_URL or SHOPBOARD_REDIS_ADDR is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown SHOPBOARD_SESSION_BACKEND %q", c.SessionBackend)
	}
	if !strings.HasPrefix(c.DefaultRoute, "/") {
		return fmt.Errorf("SHOPBOARD_DEFAULT_ROUTE must start with '/', got %q", c.DefaultRoute)
	}
	return nil
}
