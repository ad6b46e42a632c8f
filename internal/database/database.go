package database

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/sirupsen/logrus"

	"boost-service/internal/config"
	"boost-service/internal/models"
)

var DB *gorm.DB

func Connect(cfg *config.Config) {
	var err error
	DB, err = gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	logrus.Info("Database connection established")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.Payment{},
		&models.BoosterCommission{},
		&models.AdminRevenue{},
		&models.BoosterCommissionHistory{},
		&models.CommissionConfig{},
		&models.Withdrawal{},
		&models.Dispute{},
		&models.DisputeMessage{},
		&models.PricingConfig{},
		&models.Notification{},
		&models.CallbackLog{},
	)
	if err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}
	logrus.Info("Database migration completed")
}
