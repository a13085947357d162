package config

import (
	"atm-route-service/internal/domain"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	ProviderTomTom       = "tomtom"
	ProviderORS          = "ors"
	ProviderStraightLine = "straightline"

	CacheNone  = "none"
	CacheRedis = "redis"
	CacheSQL   = "sql"
)

type Config struct {
	Port string

	DBDriver    string
	DBPath      string
	DatabaseURL string
	SeedPath    string

	TravelProvider string
	TomTomAPIKey   string
	ORSAPIKey      string

	CacheBackend string
	RedisURL     string
	CacheTTL     time.Duration

	MatrixConcurrency   int
	SearchMaxExpansions int
	SearchMaxNodes      int
	SearchTimeout       time.Duration
	DefaultAlpha        float64
	DefaultBeta         float64
	// Nil when START_LON/START_LAT are unset; plan requests must then carry a start.
	Start *domain.Coordinates

	OverpassURL string
}

// Get returns the value of key, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads the process environment. Call godotenv.Load first to pick up a .env file.
func Load() (Config, error) {
	cfg := Config{
		Port:           Get("PORT", "8080"),
		DBDriver:       strings.ToLower(Get("DB_DRIVER", DriverSQLite)),
		DBPath:         Get("DB_PATH", "data/app.db"),
		DatabaseURL:    Get("DATABASE_URL", ""),
		SeedPath:       Get("SEED_PATH", "data/seeds/atms.json"),
		TravelProvider: strings.ToLower(Get("TRAVEL_PROVIDER", ProviderStraightLine)),
		TomTomAPIKey:   Get("TOMTOM_API_KEY", ""),
		ORSAPIKey:      Get("ORS_API_KEY", ""),
		CacheBackend:   strings.ToLower(Get("CACHE_BACKEND", CacheSQL)),
		RedisURL:       Get("REDIS_URL", "redis://localhost:6379/0"),
		OverpassURL:    Get("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
	}

	var err error
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.SearchTimeout, err = getDuration("SEARCH_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.MatrixConcurrency, err = getInt("MATRIX_CONCURRENCY", 8); err != nil {
		return Config{}, err
	}
	if cfg.SearchMaxExpansions, err = getInt("SEARCH_MAX_EXPANSIONS", 50000); err != nil {
		return Config{}, err
	}
	if cfg.SearchMaxNodes, err = getInt("SEARCH_MAX_NODES", 250000); err != nil {
		return Config{}, err
	}
	if cfg.DefaultAlpha, err = getFloat("DEFAULT_ALPHA", 0.3); err != nil {
		return Config{}, err
	}
	if cfg.DefaultBeta, err = getFloat("DEFAULT_BETA", 0.7); err != nil {
		return Config{}, err
	}

	lon, lat := Get("START_LON", ""), Get("START_LAT", "")
	if lon != "" || lat != "" {
		start, err := parseStart(lon, lat)
		if err != nil {
			return Config{}, err
		}
		cfg.Start = &start
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required when DB_DRIVER=%s", DriverPostgres)
		}
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.DBDriver)
	}

	switch c.TravelProvider {
	case ProviderStraightLine:
	case ProviderTomTom:
		if c.TomTomAPIKey == "" {
			return fmt.Errorf("config: TOMTOM_API_KEY is required when TRAVEL_PROVIDER=%s", ProviderTomTom)
		}
	case ProviderORS:
		if c.ORSAPIKey == "" {
			return fmt.Errorf("config: ORS_API_KEY is required when TRAVEL_PROVIDER=%s", ProviderORS)
		}
	default:
		return fmt.Errorf("config: unknown TRAVEL_PROVIDER %q", c.TravelProvider)
	}

	switch c.CacheBackend {
	case CacheNone, CacheRedis, CacheSQL:
	default:
		return fmt.Errorf("config: unknown CACHE_BACKEND %q", c.CacheBackend)
	}

	if c.DefaultAlpha < 0 || c.DefaultAlpha > 1 || c.DefaultBeta < 0 || c.DefaultBeta > 1 {
		return fmt.Errorf("config: DEFAULT_ALPHA and DEFAULT_BETA must be within [0, 1]")
	}
	if c.SearchMaxExpansions < 0 {
		return fmt.Errorf("config: SEARCH_MAX_EXPANSIONS must be non-negative")
	}
	if c.SearchMaxNodes <= 0 {
		return fmt.Errorf("config: SEARCH_MAX_NODES must be positive")
	}
	return nil
}

func parseStart(lon, lat string) (domain.Coordinates, error) {
	if lon == "" || lat == "" {
		return domain.Coordinates{}, fmt.Errorf("config: START_LON and START_LAT must be set together")
	}
	x, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("config: START_LON: %w", err)
	}
	y, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("config: START_LAT: %w", err)
	}
	c := domain.Coordinates{Lon: x, Lat: y}
	if err := c.Validate(); err != nil {
		return domain.Coordinates{}, fmt.Errorf("config: start: %w", err)
	}
	return c, nil
}

func getInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
