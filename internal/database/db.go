// internal/database/db.go
package database

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the global connection pool. Connect it once at application startup.
var DB *pgxpool.Pool

// ConnectDB initializes the global pool from environment variables:
//   - POSTGRES_USER / POSTGRES_PASSWORD
//   - PG_HOST (default "localhost"), PG_PORT (default "5432")
//   - PG_DATABASE (default "kozyri")
func ConnectDB() {
	host := getEnv("PG_HOST", "localhost")
	port := getEnv("PG_PORT", "5432")
	dbName := getEnv("PG_DATABASE", "kozyri")

	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		url.QueryEscape(os.Getenv("POSTGRES_USER")),
		url.QueryEscape(os.Getenv("POSTGRES_PASSWORD")),
		host, port, dbName,
	)

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		log.Fatalf("unable to parse pgx config: %v", err)
	}

	DB, err = pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatalf("unable to create pgx pool: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := DB.Ping(ctx); err != nil {
		log.Fatalf("db ping error: %v", err)
	}

	// Credentials stay out of the log line.
	log.Printf("Connected to database at %s:%s/%s", host, port, dbName)
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
