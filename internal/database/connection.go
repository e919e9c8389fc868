// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/relaystation/backend/internal/config"
	"github.com/relaystation/backend/internal/models"
	"github.com/relaystation/backend/internal/normalize"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
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
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
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
	return DB, nil
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

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.Deal{},
		&models.DealPriceHistory{},
		&models.CategoryRule{},
		&models.Project{},
		&models.ScheduledPost{},
		&models.ClickEvent{},
		&models.ShareEvent{},
		&models.CronJobHealth{},
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
		// Deal indexes
		"CREATE INDEX IF NOT EXISTS idx_deals_fetched_at ON deals(fetched_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_deals_category_fetched ON deals(category, fetched_at DESC)",
		// Verification batch selection: unready deals under the retry ceiling,
		// oldest check first with never-checked rows leading
		"CREATE INDEX IF NOT EXISTS idx_deals_image_verification ON deals(image_last_checked ASC NULLS FIRST) WHERE image_ready = false",

		// Price history indexes
		"CREATE INDEX IF NOT EXISTS idx_price_history_deal_created ON deal_price_history(deal_id, created_at DESC)",

		// Tracking indexes
		"CREATE INDEX IF NOT EXISTS idx_click_tracking_deal_created ON click_tracking(deal_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_click_tracking_project ON click_tracking(project_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_share_tracking_deal_created ON share_tracking(deal_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_share_tracking_project ON share_tracking(project_id, created_at DESC)",

		// Scheduled post indexes
		"CREATE INDEX IF NOT EXISTS idx_scheduled_posts_due ON scheduled_posts(status, scheduled_at)",

		// Full-text search index for the dashboard deal search
		"CREATE INDEX IF NOT EXISTS idx_deals_search ON deals USING GIN(to_tsvector('english', title || ' ' || description))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	// Create default admin user
	var adminCount int64
	db.Model(&models.User{}).Where("user_type = ?", models.UserTypeAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			Username: "admin",
			Email:    "admin@relaystation.app",
			UserType: models.UserTypeAdmin,
			Status:   models.UserStatusActive,
			ProfileData: models.JSONB{
				"display_name": "Relay Station Admin",
			},
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("Default admin user created successfully")
	}

	// Seed category rules from the built-in keyword table
	var ruleCount int64
	db.Model(&models.CategoryRule{}).Count(&ruleCount)

	if ruleCount == 0 {
		for i, entry := range normalize.DefaultCategoryTable() {
			rule := models.CategoryRule{
				Category: entry.Category,
				Keywords: pq.StringArray(entry.Keywords),
				Priority: i,
			}
			if err := db.Create(&rule).Error; err != nil {
				log.Printf("Warning: Failed to seed category rule %s: %v", entry.Category, err)
			}
		}
		log.Println("Category rules seeded successfully")
	}

	log.Println("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
