package main

import (
	"atm-route-service/internal/adapters/cache"
	"atm-route-service/internal/adapters/repositories"
	"atm-route-service/internal/adapters/traveltime"
	"atm-route-service/internal/api"
	"atm-route-service/internal/api/handlers"
	"atm-route-service/internal/config"
	"atm-route-service/internal/platform/db"
	"atm-route-service/internal/ports"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

// Straight-line estimates assume urban driving with a typical road detour.
const (
	straightLineSpeedKmh = 30
	straightLineDetour   = 1.3
)

// main is the application composition root.
// It wires concrete adapters (SQLite or Postgres, a travel-time API, a cache) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	conn, repo, err := openRepository(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	// Seed demo data on startup for local runs.
	if _, err := os.Stat(cfg.SeedPath); err == nil {
		n, err := repositories.SeedFromJSON(ctx, repo, cfg.SeedPath)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("seeded atms count=%d path=%s", n, cfg.SeedPath)
	} else {
		log.Printf("seed file not found, skipping path=%s", cfg.SeedPath)
	}

	provider, err := newProvider(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ttCache, closeCache, err := newCache(ctx, cfg, conn)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	if ttCache != nil {
		cached, err := traveltime.NewCachedProvider(provider, ttCache)
		if err != nil {
			log.Fatal(err)
		}
		provider = cached
	}

	router := api.NewRouter(repo, provider, handlers.PlanDefaults{
		Start:             cfg.Start,
		Alpha:             cfg.DefaultAlpha,
		Beta:              cfg.DefaultBeta,
		MaxExpansions:     cfg.SearchMaxExpansions,
		MaxNodes:          cfg.SearchMaxNodes,
		SearchTimeout:     cfg.SearchTimeout,
		MatrixConcurrency: cfg.MatrixConcurrency,
	})

	// Timeouts are tuned for cold-cache planning (one external call per ordered pair).
	log.Printf("Server listening addr=:%s db=%s provider=%s cache=%s", cfg.Port, cfg.DBDriver, cfg.TravelProvider, cfg.CacheBackend)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func openRepository(cfg config.Config) (*sql.DB, ports.ATMRepository, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitPostgresSchema(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return conn, repositories.NewPostgresATMRepository(conn), nil
	default:
		conn, err := db.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitSchema(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return conn, repositories.NewSqliteATMRepository(conn), nil
	}
}

func newProvider(cfg config.Config) (ports.TravelTimeProvider, error) {
	switch cfg.TravelProvider {
	case config.ProviderTomTom:
		return traveltime.NewTomTomProvider(cfg.TomTomAPIKey)
	case config.ProviderORS:
		return traveltime.NewORSProvider(cfg.ORSAPIKey)
	default:
		return traveltime.NewStraightLineProvider(straightLineSpeedKmh, straightLineDetour)
	}
}

// newCache returns nil when caching is disabled. The close func is always non-nil.
func newCache(ctx context.Context, cfg config.Config, conn *sql.DB) (ports.TravelTimeCache, func(), error) {
	noop := func() {}

	switch cfg.CacheBackend {
	case config.CacheRedis:
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("new cache: %w", err)
		}
		return cache.NewRedisTravelTimeCache(client, cfg.CacheTTL), func() { _ = client.Close() }, nil
	case config.CacheSQL:
		if cfg.DBDriver == config.DriverPostgres {
			return cache.NewSQLTravelTimeCache(conn, cfg.CacheTTL), noop, nil
		}
		return cache.NewSqliteTravelTimeCache(conn, cfg.CacheTTL), noop, nil
	default:
		return nil, noop, nil
	}
}
