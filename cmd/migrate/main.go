package main

// Run database migrations standalone:
//   go run ./cmd/migrate

import (
	"context"
	"log"
	"os"

	"mycv-backend/internal/shared/config"
	"mycv-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	database, err := db.Open(ctx, cfg.DBPath, db.DefaultOptions())
	if err != nil {
		log.Printf("failed to open database: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}

	log.Printf("database schema is up to date: %s", cfg.DBPath)
}
