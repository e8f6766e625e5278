package initializers

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/basit/sharelink/models"
)

var DB *gorm.DB

func ConnectToDatabase(dsn string) error {
	var err error
	DB, err = gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}

	if err := Migrate(DB); err != nil {
		return err
	}
	Log.Info("Database connected and migrated successfully")
	return nil
}

// Migrate creates or updates the schema on db. Tests call it on SQLite.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.File{},
		&models.Share{},
		&models.ActivityLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}
	return nil
}

// CloseDatabase releases the pool; errors only get logged since this runs on shutdown.
func CloseDatabase() {
	if DB == nil {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		Log.Warn("Failed to get underlying SQL DB instance", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		Log.Warn("Failed to close database", zap.Error(err))
	}
}
