package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/model"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/database"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. Extension, table and vector index
	log.Println("Running migration for document_chunks...")
	if err := model.Migrate(db); err != nil {
		log.Fatalf("Error: Migration failed: %v", err)
	}

	log.Println("✅ Migration completed")
}
