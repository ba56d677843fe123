package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aagoldberg/far-mca-sub002/internal/scoring"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP    HTTPConfig
	Graph   GraphConfig
	Social  SocialConfig
	Chain   ChainConfig
	Cache   CacheConfig
	Logging LoggingConfig
	Scoring scoring.Params
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	AllowedOriginsCSV string
}

// GraphConfig describes connectivity to the Neo4j social graph.
type GraphConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
	QueryTimeout   time.Duration
}

// Social provider kinds.
const (
	ProviderNeo4j = "neo4j"
	ProviderHTTP  = "http"
)

// SocialConfig selects and configures the social graph provider.
type SocialConfig struct {
	Provider string // neo4j|http
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	PageSize int
	MaxPages int
}

// ChainConfig configures the Solana wallet history provider. An empty
// RPCEndpoint disables wallet scoring.
type ChainConfig struct {
	RPCEndpoint string
	Commitment  string
	PageSize    int
	MaxPages    int
}

// Cache backends.
const (
	CacheMemory = "memory"
	CacheSQLite = "sqlite"
)

// CacheConfig selects the cache store.
type CacheConfig struct {
	Backend string // memory|sqlite
	Path    string
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 30 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultGraphMaxSessions = 10
	defaultGraphTimeout     = 5 * time.Second
	defaultSocialTimeout    = 10 * time.Second
	defaultCachePath        = "~/.repscore/cache.db"
)

// Load reads configuration from the environment, after merging an optional
// .env file (ENV_FILE), and the scoring parameter file named by
// SCORING_CONFIG.
func Load() (Config, error) {
	if err := godotenv.Load(valueOrDefault("ENV_FILE", ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	cfg := Config{
		HTTP: HTTPConfig{
			Host:              valueOrDefault("SERVER_HOST", defaultHost),
			AllowedOriginsCSV: os.Getenv("SERVER_ALLOWED_ORIGINS"),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
		Graph: GraphConfig{
			URI:            os.Getenv("GRAPH_URI"),
			Database:       valueOrDefault("GRAPH_DATABASE", ""),
			Username:       os.Getenv("GRAPH_USERNAME"),
			Password:       os.Getenv("GRAPH_PASSWORD"),
			MaxConnections: parseIntWithDefault("GRAPH_MAX_CONNECTIONS", defaultGraphMaxSessions),
		},
		Social: SocialConfig{
			Provider: strings.ToLower(valueOrDefault("SOCIAL_PROVIDER", ProviderNeo4j)),
			BaseURL:  valueOrDefault("SOCIAL_BASE_URL", "https://api.neynar.com"),
			APIKey:   os.Getenv("SOCIAL_API_KEY"),
			PageSize: parseIntWithDefault("SOCIAL_PAGE_SIZE", 100),
			MaxPages: parseIntWithDefault("SOCIAL_MAX_PAGES", 50),
		},
		Chain: ChainConfig{
			RPCEndpoint: os.Getenv("CHAIN_RPC_ENDPOINT"),
			Commitment:  valueOrDefault("CHAIN_COMMITMENT", "confirmed"),
			PageSize:    parseIntWithDefault("CHAIN_PAGE_SIZE", 1000),
			MaxPages:    parseIntWithDefault("CHAIN_MAX_PAGES", 5),
		},
		Cache: CacheConfig{
			Backend: strings.ToLower(valueOrDefault("CACHE_BACKEND", CacheMemory)),
			Path:    valueOrDefault("CACHE_PATH", defaultCachePath),
		},
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key      string
		target   *time.Duration
		fallback time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout, defaultReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout, defaultWriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout, defaultIdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout, defaultShutdownTimeout},
		{"GRAPH_QUERY_TIMEOUT", &cfg.Graph.QueryTimeout, defaultGraphTimeout},
		{"SOCIAL_TIMEOUT", &cfg.Social.Timeout, defaultSocialTimeout},
	}
	for _, d := range durations {
		value, err := parseDurationWithDefault(d.key, d.fallback)
		if err != nil {
			return Config{}, err
		}
		*d.target = value
	}

	switch cfg.Social.Provider {
	case ProviderNeo4j, ProviderHTTP:
	default:
		return Config{}, fmt.Errorf("invalid SOCIAL_PROVIDER %q: want %s or %s", cfg.Social.Provider, ProviderNeo4j, ProviderHTTP)
	}
	switch cfg.Cache.Backend {
	case CacheMemory, CacheSQLite:
	default:
		return Config{}, fmt.Errorf("invalid CACHE_BACKEND %q: want %s or %s", cfg.Cache.Backend, CacheMemory, CacheSQLite)
	}

	params, err := LoadScoringParams(os.Getenv("SCORING_CONFIG"))
	if err != nil {
		return Config{}, err
	}
	cfg.Scoring = params

	return cfg, nil
}

// AllowedOrigins splits AllowedOriginsCSV into trimmed, non-empty origins.
func (c HTTPConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOriginsCSV, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseDurationWithDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
