package main

import (
	"context"
	"log"
	"time"

	"shelf-scan/api/internal/config"
	"shelf-scan/api/internal/store"
)

func main() {
	dsn := config.ResolveDSN()
	if dsn == "" {
		log.Fatal("database DSN is empty: set DATABASE_URL or POSTGRES_* env vars")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := store.Open(ctx, dsn)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	if err := store.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Printf("schema applied")
}
