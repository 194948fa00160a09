package repository

import (
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"gorm.io/gorm"
)

// CatalogRepository covers the small reference tables: categories, companies and blog posts.
type CatalogRepository interface {
	ListCategories() ([]model.Category, error)
	FindCategoryByID(id uint) (*model.Category, error)
	CreateCategory(category *model.Category) error
	UpdateCategory(category *model.Category) error
	DeleteCategory(id uint) error
	CountCategoryReferences(id uint) (int64, error)

	ListCompanies() ([]model.Company, error)
	FindCompanyByID(id uint) (*model.Company, error)
	CreateCompany(company *model.Company) error
	UpdateCompany(company *model.Company) error
	DeleteCompany(id uint) error
	CountCompanyReferences(id uint) (int64, error)

	ListBlogPosts(limit int) ([]model.BlogPost, error)
	FindBlogPostByID(id uint) (*model.BlogPost, error)
	CreateBlogPost(post *model.BlogPost) error
	UpdateBlogPost(post *model.BlogPost) error
	DeleteBlogPost(id uint) error
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) ListCategories() ([]model.Category, error) {
	var categories []model.Category
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *catalogRepository) FindCategoryByID(id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *catalogRepository) CreateCategory(category *model.Category) error {
	if err := r.db.Create(category).Error; err != nil {
		logger.Error("Failed to create category in database", err, map[string]interface{}{
			"name": category.Name,
		})
		return err
	}
	return nil
}

func (r *catalogRepository) UpdateCategory(category *model.Category) error {
	if err := r.db.Save(category).Error; err != nil {
		logger.Error("Failed to update category in database", err, map[string]interface{}{
			"category_id": category.ID,
		})
		return err
	}
	return nil
}

func (r *catalogRepository) DeleteCategory(id uint) error {
	result := r.db.Delete(&model.Category{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountCategoryReferences counts live products and courses filed under the category.
func (r *catalogRepository) CountCategoryReferences(id uint) (int64, error) {
	return r.countReferences("category_id = ?", id, &model.Product{}, &model.Course{})
}

func (r *catalogRepository) ListCompanies() ([]model.Company, error) {
	var companies []model.Company
	err := r.db.Order("name ASC").Find(&companies).Error
	return companies, err
}

func (r *catalogRepository) FindCompanyByID(id uint) (*model.Company, error) {
	var company model.Company
	if err := r.db.First(&company, id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *catalogRepository) CreateCompany(company *model.Company) error {
	if err := r.db.Create(company).Error; err != nil {
		logger.Error("Failed to create company in database", err, map[string]interface{}{
			"name": company.Name,
		})
		return err
	}
	return nil
}

func (r *catalogRepository) UpdateCompany(company *model.Company) error {
	return r.db.Save(company).Error
}

func (r *catalogRepository) DeleteCompany(id uint) error {
	result := r.db.Delete(&model.Company{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete company from database", result.Error, map[string]interface{}{
			"company_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountCompanyReferences counts the catalog entries and company admins tied to the company.
func (r *catalogRepository) CountCompanyReferences(id uint) (int64, error) {
	return r.countReferences("company_id = ?", id, &model.Product{}, &model.Course{}, &model.TravelPackage{}, &model.User{})
}

func (r *catalogRepository) countReferences(cond string, id uint, tables ...interface{}) (int64, error) {
	var total int64
	for _, table := range tables {
		var n int64
		if err := r.db.Model(table).Where(cond, id).Count(&n).Error; err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (r *catalogRepository) ListBlogPosts(limit int) ([]model.BlogPost, error) {
	var posts []model.BlogPost
	query := r.db.Order("publish_date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&posts).Error
	return posts, err
}

func (r *catalogRepository) FindBlogPostByID(id uint) (*model.BlogPost, error) {
	var post model.BlogPost
	if err := r.db.First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *catalogRepository) CreateBlogPost(post *model.BlogPost) error {
	if err := r.db.Create(post).Error; err != nil {
		logger.Error("Failed to create blog post in database", err, map[string]interface{}{
			"title": post.Title,
		})
		return err
	}
	return nil
}

func (r *catalogRepository) UpdateBlogPost(post *model.BlogPost) error {
	return r.db.Save(post).Error
}

func (r *catalogRepository) DeleteBlogPost(id uint) error {
	result := r.db.Delete(&model.BlogPost{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
