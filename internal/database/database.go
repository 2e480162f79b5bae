package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// DB is the shared connection pool. It is nil until Connect succeeds.
var DB *sql.DB

// ErrMissingDatabaseURL is returned when no connection string is configured.
var ErrMissingDatabaseURL = errors.New("database URL not set (use DATABASE_URL or database_url)")

// Connect opens the pool for databaseURL and verifies it with a ping.
func Connect(databaseURL string) error {
	databaseURL = strings.TrimSpace(databaseURL)
	if databaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if !strings.HasPrefix(databaseURL, "postgres://") && !strings.HasPrefix(databaseURL, "postgresql://") {
		return fmt.Errorf("unsupported database URL scheme: %s", schemeOf(databaseURL))
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	DB = db
	return nil
}

// Ping checks the shared pool.
func Ping(ctx context.Context) error {
	if DB == nil {
		return errors.New("database not connected")
	}
	return DB.PingContext(ctx)
}

// Close releases the shared pool.
func Close() error {
	if DB == nil {
		return nil
	}
	err := DB.Close()
	DB = nil
	return err
}

func schemeOf(databaseURL string) string {
	if idx := strings.Index(databaseURL, "://"); idx > 0 {
		return databaseURL[:idx]
	}
	return "none"
}
