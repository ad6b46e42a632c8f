package main

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"boost-service/internal/config"
	"boost-service/internal/database"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found in current directory, trying parent")
		if err := godotenv.Load("../.env"); err != nil {
			logrus.Info("No .env file found, using system environment variables")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Database
	database.Connect(cfg)

	// Run Migrations
	logrus.Info("Running database migrations...")
	database.Migrate()

	logrus.Info("Migrations completed successfully!")
}
