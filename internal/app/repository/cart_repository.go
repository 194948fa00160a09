package repository

import (
	"time"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindCartByUserID(userID uint) (*model.Cart, error)
	LockCartByUserID(userID uint) (*model.Cart, error)
	GetOrCreateCart(userID uint) (*model.Cart, error)
	FindItems(cartID uint) ([]model.CartItem, error)
	FindItemByID(id uint) (*model.CartItem, error)
	UpsertItem(item *model.CartItem) error
	UpdateItemQuantity(id uint, quantity int) error
	DeleteItem(id uint) error
	DeleteCart(cartID uint) error
	CountItems(cartID uint) (int, error)
	Touch(cartID uint) error
	DeleteStaleCarts(before time.Time) (int64, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

func (r *cartRepository) FindCartByUserID(userID uint) (*model.Cart, error) {
	logger.Debug("Finding cart by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var cart model.Cart
	if err := r.db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// LockCartByUserID selects the cart row FOR UPDATE. Call it inside a transaction.
func (r *cartRepository) LockCartByUserID(userID uint) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}

	logger.Debug("Cart locked for checkout", map[string]interface{}{
		"cart_id": cart.ID,
		"user_id": userID,
	})
	return &cart, nil
}

// GetOrCreateCart inserts the cart if missing; concurrent callers converge on the same row
// through the unique user_id index.
func (r *cartRepository) GetOrCreateCart(userID uint) (*model.Cart, error) {
	cart := model.Cart{UserID: userID}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&cart).Error
	if err != nil {
		logger.Error("Failed to create cart in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	var existing model.Cart
	if err := r.db.Where("user_id = ?", userID).First(&existing).Error; err != nil {
		logger.Error("Failed to load cart after create", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return &existing, nil
}

func (r *cartRepository) FindItems(cartID uint) ([]model.CartItem, error) {
	var items []model.CartItem
	if err := r.db.Where("cart_id = ?", cartID).Order("id ASC").Find(&items).Error; err != nil {
		logger.Error("Failed to find cart items in database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, err
	}

	logger.Debug("Cart items found in database", map[string]interface{}{
		"cart_id": cartID,
		"count":   len(items),
	})
	return items, nil
}

func (r *cartRepository) FindItemByID(id uint) (*model.CartItem, error) {
	var item model.CartItem
	if err := r.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpsertItem adds a line in one statement. Product lines accumulate quantity;
// pinned lines (courses, travel packages) are left as they are.
func (r *cartRepository) UpsertItem(item *model.CartItem) error {
	logger.Debug("Upserting cart item in database", map[string]interface{}{
		"cart_id":  item.CartID,
		"item":     item.Item.String(),
		"quantity": item.Quantity,
	})

	conflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "item_type"}, {Name: "item_id"}},
	}
	if item.Item.QuantityPinned() {
		conflict.DoNothing = true
	} else {
		conflict.DoUpdates = clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		})
	}

	if err := r.db.Clauses(conflict).Create(item).Error; err != nil {
		logger.Error("Failed to upsert cart item in database", err, map[string]interface{}{
			"cart_id": item.CartID,
			"item":    item.Item.String(),
		})
		return err
	}
	return nil
}

func (r *cartRepository) UpdateItemQuantity(id uint, quantity int) error {
	err := r.db.Model(&model.CartItem{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
	if err != nil {
		logger.Error("Failed to update cart item quantity in database", err, map[string]interface{}{
			"cart_item_id": id,
			"quantity":     quantity,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteItem(id uint) error {
	if err := r.db.Delete(&model.CartItem{}, id).Error; err != nil {
		logger.Error("Failed to delete cart item from database", err, map[string]interface{}{
			"cart_item_id": id,
		})
		return err
	}
	return nil
}

// DeleteCart removes the cart together with its lines.
func (r *cartRepository) DeleteCart(cartID uint) error {
	if err := r.db.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to delete cart items from database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return err
	}
	if err := r.db.Delete(&model.Cart{}, cartID).Error; err != nil {
		logger.Error("Failed to delete cart from database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return err
	}

	logger.Debug("Cart deleted from database", map[string]interface{}{
		"cart_id": cartID,
	})
	return nil
}

func (r *cartRepository) CountItems(cartID uint) (int, error) {
	var total int64
	err := r.db.Model(&model.CartItem{}).
		Where("cart_id = ?", cartID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func (r *cartRepository) Touch(cartID uint) error {
	return r.db.Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("updated_at", time.Now()).Error
}

// DeleteStaleCarts removes carts untouched since before, along with their
// lines, in one transaction.
func (r *cartRepository) DeleteStaleCarts(before time.Time) (int64, error) {
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&model.Cart{}).Where("updated_at < ?", before).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("cart_id IN ?", ids).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&model.Cart{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete stale carts", err, map[string]interface{}{
			"before": before,
		})
		return 0, err
	}

	logger.Info("Stale carts deleted", map[string]interface{}{
		"count":  deleted,
		"before": before,
	})
	return deleted, nil
}
