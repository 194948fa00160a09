package repository

import (
	"strings"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderFilter struct {
	SearchTerm string
	Status     *model.OrderStatus
	Limit      int
	Offset     int
}

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	FindByPaymentID(paymentID string) (*model.Order, error)
	UpdateStatus(id uint, status model.OrderStatus) error
	UpdateStatusFrom(id uint, from, to model.OrderStatus) (bool, error)
	List(filter OrderFilter) ([]model.Order, int64, error)
	HasPurchased(userID uint, ref model.ItemRef, statuses []model.OrderStatus) (bool, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("Details", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_details.id ASC")
	})
}

// Create inserts the order and its Details in one call.
func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":        order.UserID,
		"order_total":    order.OrderTotal.String(),
		"payment_method": order.PaymentMethod,
		"details":        len(order.Details),
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id":        order.UserID,
			"payment_method": order.PaymentMethod,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		logger.Debug("Order not found by ID in database", map[string]interface{}{
			"order_id": id,
			"error":    err.Error(),
		})
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.preloadOrder().
		Where("user_id = ?", userID).
		Order("order_date DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Orders found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

func (r *orderRepository) FindByPaymentID(paymentID string) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().Where("payment_id = ?", paymentID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus) error {
	logger.Debug("Updating order status in database", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})

	result := r.db.Model(&model.Order{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update order status in database", result.Error, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateStatusFrom moves the order to `to` only while it is still in `from`.
// It reports false when another writer changed the status first.
func (r *orderRepository) UpdateStatusFrom(id uint, from, to model.OrderStatus) (bool, error) {
	result := r.db.Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		logger.Error("Failed to update order status in database", result.Error, map[string]interface{}{
			"order_id": id,
			"from":     from,
			"to":       to,
		})
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// List serves the admin order table. SearchTerm matches the order id,
// customer email or name, address and phone.
func (r *orderRepository) List(filter OrderFilter) ([]model.Order, int64, error) {
	filtered := func() *gorm.DB {
		query := r.db.Model(&model.Order{}).
			Joins("LEFT JOIN users ON users.id = orders.user_id")
		if term := strings.TrimSpace(filter.SearchTerm); term != "" {
			like := "%" + strings.ToLower(term) + "%"
			query = query.Where(
				"CAST(orders.id AS TEXT) = ? OR LOWER(users.email) LIKE ? OR LOWER(users.first_name) LIKE ? OR LOWER(users.last_name) LIKE ? OR LOWER(orders.shipping_address) LIKE ? OR orders.phone_number LIKE ?",
				term, like, like, like, like, like,
			)
		}
		if filter.Status != nil {
			query = query.Where("orders.status = ?", *filter.Status)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		logger.Error("Failed to count orders", err, nil)
		return nil, 0, err
	}

	query := filtered().Select("orders.*").Order("orders.order_date DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var orders []model.Order
	if err := query.Find(&orders).Error; err != nil {
		logger.Error("Failed to list orders", err, map[string]interface{}{
			"search_term": filter.SearchTerm,
		})
		return nil, 0, err
	}
	return orders, total, nil
}

// HasPurchased reports whether userID holds an order line for ref in one of statuses.
func (r *orderRepository) HasPurchased(userID uint, ref model.ItemRef, statuses []model.OrderStatus) (bool, error) {
	var count int64
	err := r.db.Model(&model.OrderDetail{}).
		Joins("JOIN orders ON orders.id = order_details.order_id").
		Where("orders.user_id = ? AND orders.status IN ?", userID, statuses).
		Where("order_details.item_type = ? AND order_details.item_id = ?", ref.Type, ref.ID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check purchase history", err, map[string]interface{}{
			"user_id": userID,
			"item":    ref.String(),
		})
		return false, err
	}
	return count > 0, nil
}
