package repository

import (
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MarketerRepository interface {
	ReferredSales(code string, status model.OrderStatus) (decimal.Decimal, error)
	AddPackage(pkg *model.MarketerPackage) error
	RemovePackage(marketerID, productID uint) error
	FindPackages(marketerID uint) ([]model.Product, error)
}

type marketerRepository struct {
	db *gorm.DB
}

func NewMarketerRepository(db *gorm.DB) MarketerRepository {
	return &marketerRepository{db: db}
}

// ReferredSales sums the totals of orders in status placed by users who signed up with code.
func (r *marketerRepository) ReferredSales(code string, status model.OrderStatus) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Model(&model.Order{}).
		Select("COALESCE(SUM(orders.order_total), 0)").
		Joins("JOIN users ON users.id = orders.user_id").
		Where("users.referred_by = ? AND orders.status = ?", code, status).
		Row().Scan(&total)
	if err != nil {
		logger.Error("Failed to sum referred sales", err, map[string]interface{}{
			"referral_code": code,
		})
		return decimal.Zero, err
	}
	return total, nil
}

func (r *marketerRepository) AddPackage(pkg *model.MarketerPackage) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "marketer_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(pkg).Error
	if err != nil {
		logger.Error("Failed to add marketer package", err, map[string]interface{}{
			"marketer_id": pkg.MarketerID,
			"product_id":  pkg.ProductID,
		})
		return err
	}
	return nil
}

func (r *marketerRepository) RemovePackage(marketerID, productID uint) error {
	result := r.db.Where("marketer_id = ? AND product_id = ?", marketerID, productID).
		Delete(&model.MarketerPackage{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *marketerRepository) FindPackages(marketerID uint) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Model(&model.Product{}).
		Joins("JOIN marketer_packages ON marketer_packages.product_id = products.id").
		Where("marketer_packages.marketer_id = ?", marketerID).
		Order("marketer_packages.created_at DESC").
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to find marketer packages", err, map[string]interface{}{
			"marketer_id": marketerID,
		})
		return nil, err
	}
	return products, nil
}
