package main

import (
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"boost-service/internal/config"
	"boost-service/internal/database"
	"boost-service/internal/services"
	"boost-service/internal/worker"
)

func main() {
	// Load env
	if err := godotenv.Load("../../.env"); err != nil {
		logrus.Info("No .env file found in ../../.env, trying .env")
		if err := godotenv.Load(".env"); err != nil {
			logrus.Info("No .env file found, using system env")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect DB
	database.Connect(cfg)
	db := database.DB

	pixService := services.NewPixService(cfg)
	withdrawalService := services.NewWithdrawalService(db, nil, pixService, cfg.MinWithdrawalAmount)

	logrus.Info("Starting Asynq Worker...")
	worker.StartWorker(asynq.RedisClientOpt{Addr: cfg.RedisURL}, withdrawalService)
}
