package repository

import (
	"strings"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"gorm.io/gorm"
)

type CatalogSort string

const (
	CatalogSortNewest CatalogSort = "newest"
	CatalogSortPrice  CatalogSort = "price"
	CatalogSortRating CatalogSort = "rating"
)

// CatalogFilter is shared by product, course and travel package listings.
type CatalogFilter struct {
	CategoryID    *uint
	CompanyID     *uint
	Search        string
	SortBy        CatalogSort
	SortAscending bool
	Limit         int
	Offset        int
}

func (f CatalogFilter) apply(query *gorm.DB, table string, searchColumns ...string) *gorm.DB {
	if f.CategoryID != nil {
		query = query.Where(table+".category_id = ?", *f.CategoryID)
	}
	if f.CompanyID != nil {
		query = query.Where(table+".company_id = ?", *f.CompanyID)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		conds := make([]string, 0, len(searchColumns))
		args := make([]interface{}, 0, len(searchColumns))
		for _, col := range searchColumns {
			conds = append(conds, "LOWER("+table+"."+col+") LIKE ?")
			args = append(args, like)
		}
		query = query.Where(strings.Join(conds, " OR "), args...)
	}
	return query
}

func (f CatalogFilter) order(table string, hasRating bool) string {
	dir := " DESC"
	if f.SortAscending {
		dir = " ASC"
	}
	switch f.SortBy {
	case CatalogSortPrice:
		return table + ".price" + dir
	case CatalogSortRating:
		if hasRating {
			return table + ".average_rating" + dir
		}
	}
	return table + ".created_at" + dir
}

func (f CatalogFilter) page(query *gorm.DB) *gorm.DB {
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	if f.Offset > 0 {
		query = query.Offset(f.Offset)
	}
	return query
}

type ProductRepository interface {
	Create(product *model.Product) error
	CreateInBatches(products []model.Product, batchSize int) error
	FindWithFilter(filter CatalogFilter) ([]model.Product, int64, error)
	FindByID(id uint) (*model.Product, error)
	FindByIDs(ids []uint) ([]model.Product, error)
	Update(product *model.Product) error
	Delete(id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":       product.Name,
		"company_id": product.CompanyID,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name":       product.Name,
			"company_id": product.CompanyID,
		})
		return err
	}
	return nil
}

func (r *productRepository) CreateInBatches(products []model.Product, batchSize int) error {
	if len(products) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(products, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create products", err, map[string]interface{}{
			"count": len(products),
		})
		return err
	}
	return nil
}

func (r *productRepository) FindWithFilter(filter CatalogFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"category_id": filter.CategoryID,
		"company_id":  filter.CompanyID,
		"search":      filter.Search,
		"sort_by":     filter.SortBy,
		"limit":       filter.Limit,
		"offset":      filter.Offset,
	})

	var total int64
	if err := filter.apply(r.db.Model(&model.Product{}), "products", "name", "description").Count(&total).Error; err != nil {
		logger.Error("Failed to count products", err, nil)
		return nil, 0, err
	}

	var products []model.Product
	query := filter.apply(r.db.Model(&model.Product{}), "products", "name", "description").
		Order(filter.order("products", true))
	if err := filter.page(query).Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, nil)
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDs(ids []uint) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepository) Update(product *model.Product) error {
	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id uint) error {
	result := r.db.Delete(&model.Product{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete product from database", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
