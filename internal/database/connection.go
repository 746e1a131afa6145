// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/beathaus/beathaus-backend/internal/config"
	"github.com/beathaus/beathaus-backend/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Beat{},
		&models.BeatFile{},
		&models.SoundPack{},
		&models.Discount{},
		&models.ContractTemplate{},
		&models.Contract{},
		&models.Payment{},
		&models.Sale{},
		&models.Wishlist{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)",

		// Catalog indexes
		"CREATE INDEX IF NOT EXISTS idx_beats_producer ON beats(producer_id)",
		"CREATE INDEX IF NOT EXISTS idx_beats_genre ON beats(genre)",
		"CREATE INDEX IF NOT EXISTS idx_beats_created_at ON beats(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_soundpacks_producer ON soundpacks(producer_id)",

		// Payment indexes
		"CREATE INDEX IF NOT EXISTS idx_payments_user_status ON payments(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_payments_created_at ON payments(created_at DESC)",

		// Sale uniqueness: the durable guard against duplicate fulfillment.
		// Two concurrent webhook deliveries can both pass the in-transaction
		// existence check; the second insert must fail here.
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_sales_buyer_beat_filetype ON sales(buyer_id, beat_id, file_type) WHERE beat_id IS NOT NULL AND deleted_at IS NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_sales_buyer_soundpack ON sales(buyer_id, soundpack_id) WHERE soundpack_id IS NOT NULL AND deleted_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales(created_at DESC)",

		// One contract per (buyer, beat, file_type)
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_contracts_buyer_beat_filetype ON contracts(buyer_id, beat_id, file_type) WHERE deleted_at IS NULL",

		// Discount validity scan for the active-discounts listing
		"CREATE INDEX IF NOT EXISTS idx_discounts_active_window ON discounts(is_active, start_date, end_date)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}
