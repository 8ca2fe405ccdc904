package spacetraveling

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/pagecache"
)

// SiteConfig holds all configuration for a spacetraveling site.
type SiteConfig struct {
	Name        string `env:"SITE_NAME"`        // Site name (default "spacetraveling")
	URL         string `env:"SITE_URL"`         // Canonical URL (default "http://localhost:3000")
	Description string `env:"SITE_DESCRIPTION"` // Site description for RSS and meta tags
	Author      string `env:"SITE_AUTHOR"`      // Fallback author for JSON-LD
	Locale      string `env:"SITE_LOCALE"`      // BCP 47 tag (default "pt-BR")

	Addr string `env:"ADDR"` // Listen address (default ":3000")

	PrismicEndpoint    string `env:"PRISMIC_ENDPOINT"`     // Required: https://<repo>.cdn.prismic.io/api/v2
	PrismicAccessToken string `env:"PRISMIC_ACCESS_TOKEN"` // Optional for public repositories

	CacheBackend string `env:"CACHE_BACKEND"` // memory, sqlite or redis (default "memory")
	CacheDBPath  string `env:"CACHE_DB_PATH"` // SQLite path (default "data/pages.db")
	RedisURL     string `env:"REDIS_URL"`
	CachePrefix  string `env:"CACHE_PREFIX"` // Redis key prefix (default "spacetraveling:")

	PostTTL          time.Duration `env:"POST_TTL"`          // Post page TTL (default 5m)
	ListingTTL       time.Duration `env:"LISTING_TTL"`       // Listing TTL; 0 never goes stale
	GenerateTimeout  time.Duration `env:"GENERATE_TIMEOUT"`  // Bound for one page generation (default 30s)
	BlockingFallback bool          `env:"BLOCKING_FALLBACK"` // Block on first render instead of the loading page
	WarmSchedule     string        `env:"WARM_SCHEDULE"`     // cron spec (default "@every 10m"; "off" disables)

	SessionSecret string `env:"SESSION_SECRET"` // Required by serve: session encryption secret
	CookieSecure  bool   `env:"COOKIE_SECURE"`  // Set true for HTTPS

	LogLevel      string `env:"LOG_LEVEL"`       // debug, info, warn or error (default "info")
	LoadMoreLimit int    `env:"LOAD_MORE_LIMIT"` // Uncached CMS requests (load-more, post misses) per IP per minute (default 60)
}

// LoadConfig reads SiteConfig from the environment and applies defaults.
func LoadConfig() (SiteConfig, error) {
	var cfg SiteConfig
	if err := env.Parse(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "spacetraveling"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Locale == "" {
		c.Locale = "pt-BR"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.CacheBackend == "" {
		c.CacheBackend = "memory"
	}
	if c.CacheDBPath == "" {
		c.CacheDBPath = "data/pages.db"
	}
	if c.CachePrefix == "" {
		c.CachePrefix = "spacetraveling:"
	}
	if c.PostTTL == 0 {
		c.PostTTL = 5 * time.Minute
	}
	if c.GenerateTimeout == 0 {
		c.GenerateTimeout = 30 * time.Second
	}
	if c.WarmSchedule == "" {
		c.WarmSchedule = "@every 10m"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LoadMoreLimit == 0 {
		c.LoadMoreLimit = 60
	}
}

// WarmEnabled reports whether the background warmer should run.
func (c SiteConfig) WarmEnabled() bool {
	return c.WarmSchedule != "off"
}

// SlogLevel maps LogLevel to a slog level; unknown values mean info.
func (c SiteConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func openBackend(c SiteConfig) (pagecache.Backend, error) {
	switch c.CacheBackend {
	case "memory":
		return pagecache.NewMemoryBackend(), nil
	case "sqlite":
		return pagecache.NewSQLiteBackend(c.CacheDBPath)
	case "redis":
		return pagecache.NewRedisBackend(pagecache.RedisOptions{URL: c.RedisURL, Prefix: c.CachePrefix})
	}
	return nil, fmt.Errorf("unknown cache backend %q", c.CacheBackend)
}

// Option configures additional App behavior.
type Option func(*App)

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithSource replaces the Prismic-backed post source.
func WithSource(src content.Source) Option {
	return func(a *App) {
		a.Source = src
	}
}

// WithBackend replaces the page cache backend selected by CACHE_BACKEND.
func WithBackend(b pagecache.Backend) Option {
	return func(a *App) {
		a.backend = b
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}
