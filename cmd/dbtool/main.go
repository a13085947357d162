package main

import (
	"atm-route-service/internal/adapters/osm"
	"atm-route-service/internal/adapters/repositories"
	"atm-route-service/internal/config"
	"atm-route-service/internal/platform/db"
	"context"
	"database/sql"
	"flag"
	"log"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	initSchema := flag.Bool("init", false, "create the postgres schema")
	seedPath := flag.String("seed", "", "seed ATMs from a JSON file")
	importBBox := flag.String("import-osm", "", `import OpenStreetMap ATMs inside "south,west,north,east"`)
	remaining := flag.Float64("remaining", 100, "remaining cash percentage assigned to imported ATMs")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	if !*initSchema && *seedPath == "" && *importBBox == "" {
		flag.Usage()
		log.Fatal("nothing to do: pass -init, -seed or -import-osm")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx := context.Background()

	if *initSchema {
		initDB(conn)
	}
	if *seedPath != "" {
		seed(ctx, conn, *seedPath)
	}
	if *importBBox != "" {
		importOSM(ctx, conn, *importBBox, *remaining)
	}
}

func initDB(conn *sql.DB) {
	log.Println("Initializing database schema...")
	if err := repositories.InitPostgresSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")
}

func seed(ctx context.Context, conn *sql.DB, path string) {
	log.Println("Seeding database...")
	n, err := repositories.SeedFromJSON(ctx, repositories.NewPostgresATMRepository(conn), path)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Printf("Seeding complete. count=%d", n)
}

func importOSM(ctx context.Context, conn *sql.DB, bbox string, remaining float64) {
	endpoint := config.Get("OVERPASS_URL", "https://overpass-api.de/api/interpreter")
	src, err := osm.NewOverpassATMSource(endpoint, 60*time.Second, remaining)
	if err != nil {
		log.Fatalf("osm import failed: %v", err)
	}

	log.Printf("Importing ATMs from OpenStreetMap bbox=%s", bbox)
	atms, err := src.FetchATMs(ctx, bbox)
	if err != nil {
		log.Fatalf("osm import failed: %v", err)
	}
	if err := repositories.NewPostgresATMRepository(conn).UpsertATMs(ctx, atms); err != nil {
		log.Fatalf("osm import failed: %v", err)
	}
	log.Printf("Import complete. count=%d", len(atms))
}
