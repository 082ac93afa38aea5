package main

// Run database migrations:
//   go run ./cmd/migrate -command up

import (
	"context"
	"flag"
	"log"
	"os"

	"journey-backend/internal/shared/config"
	"journey-backend/internal/shared/storage/db"
)

func main() {
	command := flag.String("command", "up", "goose command: up, down, redo, status, version")
	flag.Parse()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL is required")
		os.Exit(1)
	}
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.Migrate(ctx, sqlDB, *command); err != nil {
		log.Printf("migrate %s failed: %v", *command, err)
		os.Exit(1)
	}
	log.Printf("migrate %s complete", *command)
}
