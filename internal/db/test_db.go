package db

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	// every new connection to :memory: is a separate empty database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get test database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := migrateSchema(db); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return db, nil
}

// SeedTestDB loads the default categories and shipping zones
func SeedTestDB(db *gorm.DB) error {
	if err := seedCategories(db); err != nil {
		return err
	}
	return seedShippingZones(db)
}

// CleanupTestDB cleans up the test database
func CleanupTestDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Failed to get DB instance: %v", err)
		return
	}
	sqlDB.Close()
}

// TruncateAllTables removes all data from tables
func TruncateAllTables(db *gorm.DB) error {
	tables := []string{
		"order_details", "orders", "cart_items", "carts", "reviews", "favorites",
		"marketer_packages", "lessons", "courses", "products", "travel_packages",
		"shipping_zones", "blog_posts", "categories", "companies", "users",
	}
	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return err
		}
	}
	return nil
}
