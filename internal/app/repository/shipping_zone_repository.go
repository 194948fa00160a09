package repository

import (
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"gorm.io/gorm"
)

type ShippingZoneRepository interface {
	FindAll() ([]model.ShippingZone, error)
	FindByID(id uint) (*model.ShippingZone, error)
	Create(zone *model.ShippingZone) error
	Update(zone *model.ShippingZone) error
	Delete(id uint) error
}

type shippingZoneRepository struct {
	db *gorm.DB
}

func NewShippingZoneRepository(db *gorm.DB) ShippingZoneRepository {
	return &shippingZoneRepository{db: db}
}

func (r *shippingZoneRepository) FindAll() ([]model.ShippingZone, error) {
	var zones []model.ShippingZone
	if err := r.db.Order("zone_name ASC").Find(&zones).Error; err != nil {
		logger.Error("Failed to find shipping zones in database", err, nil)
		return nil, err
	}
	return zones, nil
}

func (r *shippingZoneRepository) FindByID(id uint) (*model.ShippingZone, error) {
	var zone model.ShippingZone
	if err := r.db.First(&zone, id).Error; err != nil {
		return nil, err
	}
	return &zone, nil
}

func (r *shippingZoneRepository) Create(zone *model.ShippingZone) error {
	if err := r.db.Create(zone).Error; err != nil {
		logger.Error("Failed to create shipping zone in database", err, map[string]interface{}{
			"zone_name": zone.ZoneName,
		})
		return err
	}
	return nil
}

func (r *shippingZoneRepository) Update(zone *model.ShippingZone) error {
	return r.db.Save(zone).Error
}

func (r *shippingZoneRepository) Delete(id uint) error {
	result := r.db.Delete(&model.ShippingZone{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
