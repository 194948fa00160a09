package repository

import (
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"gorm.io/gorm"
)

type TravelPackageRepository interface {
	Create(pkg *model.TravelPackage) error
	FindWithFilter(filter CatalogFilter) ([]model.TravelPackage, int64, error)
	FindByID(id uint) (*model.TravelPackage, error)
	Update(pkg *model.TravelPackage) error
	Delete(id uint) error
}

type travelPackageRepository struct {
	db *gorm.DB
}

func NewTravelPackageRepository(db *gorm.DB) TravelPackageRepository {
	return &travelPackageRepository{db: db}
}

func (r *travelPackageRepository) Create(pkg *model.TravelPackage) error {
	if err := r.db.Create(pkg).Error; err != nil {
		logger.Error("Failed to create travel package in database", err, map[string]interface{}{
			"name": pkg.Name,
		})
		return err
	}
	return nil
}

// FindWithFilter ignores CategoryID; packages are grouped by destination instead.
func (r *travelPackageRepository) FindWithFilter(filter CatalogFilter) ([]model.TravelPackage, int64, error) {
	filter.CategoryID = nil

	var total int64
	if err := filter.apply(r.db.Model(&model.TravelPackage{}), "travel_packages", "name", "destination").Count(&total).Error; err != nil {
		logger.Error("Failed to count travel packages", err, nil)
		return nil, 0, err
	}

	var pkgs []model.TravelPackage
	query := filter.apply(r.db.Model(&model.TravelPackage{}), "travel_packages", "name", "destination").
		Order(filter.order("travel_packages", false))
	if err := filter.page(query).Find(&pkgs).Error; err != nil {
		logger.Error("Failed to find travel packages with filter", err, nil)
		return nil, 0, err
	}
	return pkgs, total, nil
}

func (r *travelPackageRepository) FindByID(id uint) (*model.TravelPackage, error) {
	var pkg model.TravelPackage
	if err := r.db.First(&pkg, id).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *travelPackageRepository) Update(pkg *model.TravelPackage) error {
	return r.db.Save(pkg).Error
}

func (r *travelPackageRepository) Delete(id uint) error {
	result := r.db.Delete(&model.TravelPackage{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
