package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/auth"
	"github.com/safework-dev/safework/internal/logger"
	"github.com/safework-dev/safework/internal/router"
	"github.com/safework-dev/safework/internal/scheduler"
	"github.com/safework-dev/safework/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	if err := logger.Initialize(); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := auth.InitJWTSecret(); err != nil {
		logger.Log.Fatalf("Failed to initialize JWT: %v", err)
	}

	services.InitChatbot()

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		logger.Log.Fatal("DATABASE_URL is required")
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		logger.Log.Fatalf("Failed to migrate database: %v", err)
	}

	if err := db.SeedAdmin(); err != nil {
		logger.Log.Fatalf("Failed to seed admin user: %v", err)
	}

	scheduler.Initialize()
	defer scheduler.Shutdown()

	r := router.NewRouter()

	port := os.Getenv("PORT")

	if port == "" {
		port = "3000"
		logger.Log.Info("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
