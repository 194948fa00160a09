package db

import (
	"errors"

	"github.com/mithaqq/mithaqq-backend/config"
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/mithaqq/mithaqq-backend/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	if err := migrateSchema(DB); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(model.All()),
	})
	return nil
}

func migrateSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return err
	}
	for _, stmt := range model.CompositeIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// Seed adds initial data to the database
func Seed(admin config.AdminConfig) error {
	logger.Info("Seeding initial data...")

	if err := seedCategories(DB); err != nil {
		logger.Error("Failed to seed categories", err)
		return err
	}
	if err := seedShippingZones(DB); err != nil {
		logger.Error("Failed to seed shipping zones", err)
		return err
	}
	if err := SeedAdmin(DB, admin); err != nil {
		logger.Error("Failed to seed admin account", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

func seedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Categories already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	categories := []model.Category{
		{Name: "Electronics"},
		{Name: "Fashion"},
		{Name: "Home"},
		{Name: "Programming"},
		{Name: "Languages"},
		{Name: "Business"},
		{Name: "Travel"},
	}
	if err := db.Create(&categories).Error; err != nil {
		return err
	}

	logger.Info("Categories seeded", map[string]interface{}{
		"count": len(categories),
	})
	return nil
}

func seedShippingZones(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.ShippingZone{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Shipping zones already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	zones := []model.ShippingZone{
		{ZoneName: "Cairo", City: "Cairo", ShippingCost: decimal.NewFromInt(50)},
		{ZoneName: "Giza", City: "Giza", ShippingCost: decimal.NewFromInt(55)},
		{ZoneName: "Alexandria", City: "Alexandria", ShippingCost: decimal.NewFromInt(70)},
		{ZoneName: "Upper Egypt", City: "Assiut", ShippingCost: decimal.NewFromInt(95)},
	}
	if err := db.Create(&zones).Error; err != nil {
		return err
	}

	logger.Info("Shipping zones seeded", map[string]interface{}{
		"count": len(zones),
	})
	return nil
}

// SeedAdmin creates the configured admin account, or promotes it when the
// email is already registered. The stored password is never overwritten.
func SeedAdmin(db *gorm.DB, admin config.AdminConfig) error {
	if admin.Email == "" {
		return nil
	}

	var user model.User
	err := db.Where("email = ?", admin.Email).First(&user).Error
	switch {
	case err == nil:
		if user.Role == model.RoleAdmin {
			return nil
		}
		if err := db.Model(&user).Update("role", model.RoleAdmin).Error; err != nil {
			return err
		}
		logger.Info("Existing account promoted to admin", map[string]interface{}{
			"user_id": user.ID,
			"email":   admin.Email,
		})
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	hash, err := util.HashPassword(admin.Password)
	if err != nil {
		return err
	}
	user = model.User{
		Email:          admin.Email,
		PasswordHash:   hash,
		FirstName:      "Admin",
		Role:           model.RoleAdmin,
		UserType:       model.DefaultUserType,
		CommissionRate: model.DefaultCommissionRate,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	logger.Info("Admin account seeded", map[string]interface{}{
		"user_id": user.ID,
		"email":   admin.Email,
	})
	return nil
}
