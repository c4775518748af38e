package main

import (
	"flag"
	"log"

	"github.com/baxromumarov/job-tracker/internal/config"
	"github.com/baxromumarov/job-tracker/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbURL := flag.String("db", cfg.DatabaseURL, "Database URL")
	schema := flag.String("schema", cfg.SchemaPath, "Path to schema file")
	flag.Parse()

	db, err := store.NewStore(*dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(*schema); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations executed successfully")
}
