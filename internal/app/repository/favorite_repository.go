package repository

import (
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteRepository interface {
	Add(favorite *model.Favorite) error
	FindByUserID(userID uint) ([]model.Favorite, error)
	Exists(userID uint, ref model.ItemRef) (bool, error)
	Remove(userID uint, ref model.ItemRef) error
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Add is idempotent: favoriting the same item twice keeps one row.
func (r *favoriteRepository) Add(favorite *model.Favorite) error {
	logger.Debug("Adding favorite in database", map[string]interface{}{
		"user_id": favorite.UserID,
		"item":    favorite.Item.String(),
	})

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_type"}, {Name: "item_id"}},
		DoNothing: true,
	}).Create(favorite).Error
	if err != nil {
		logger.Error("Failed to add favorite in database", err, map[string]interface{}{
			"user_id": favorite.UserID,
			"item":    favorite.Item.String(),
		})
		return err
	}
	return nil
}

func (r *favoriteRepository) FindByUserID(userID uint) ([]model.Favorite, error) {
	var favorites []model.Favorite
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		logger.Error("Failed to find favorites by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return favorites, nil
}

func (r *favoriteRepository) Exists(userID uint, ref model.ItemRef) (bool, error) {
	var count int64
	err := r.db.Model(&model.Favorite{}).
		Where("user_id = ? AND item_type = ? AND item_id = ?", userID, ref.Type, ref.ID).
		Count(&count).Error
	return count > 0, err
}

func (r *favoriteRepository) Remove(userID uint, ref model.ItemRef) error {
	result := r.db.Where("user_id = ? AND item_type = ? AND item_id = ?", userID, ref.Type, ref.ID).
		Delete(&model.Favorite{})
	if result.Error != nil {
		logger.Error("Failed to remove favorite from database", result.Error, map[string]interface{}{
			"user_id": userID,
			"item":    ref.String(),
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
