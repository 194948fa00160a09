package service

import (
	"errors"
	"strings"
	"time"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryInUse    = errors.New("category still has products or courses")
	ErrCompanyNotFound  = errors.New("company not found")
	ErrCompanyInUse     = errors.New("company still has catalog entries or admins")
	ErrBlogPostNotFound = errors.New("blog post not found")
)

type CompanyInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url"`
}

type BlogPostInput struct {
	Title          string     `json:"title" binding:"required"`
	Subtitle       string     `json:"subtitle"`
	Content        string     `json:"content"`
	AuthorName     string     `json:"author_name"`
	AuthorTitle    string     `json:"author_title"`
	AuthorImageURL string     `json:"author_image_url"`
	ImageURL       string     `json:"image_url"`
	PublishDate    *time.Time `json:"publish_date"`
}

// ContentService covers the admin-managed catalog scaffolding: categories, companies and the blog.
type ContentService interface {
	ListCategories() ([]model.Category, error)
	GetCategory(id uint) (*model.Category, error)
	CreateCategory(name string) (*model.Category, error)
	UpdateCategory(id uint, name string) (*model.Category, error)
	DeleteCategory(id uint) error

	ListCompanies() ([]model.Company, error)
	GetCompany(id uint) (*model.Company, error)
	CreateCompany(input CompanyInput) (*model.Company, error)
	UpdateCompany(id uint, input CompanyInput) (*model.Company, error)
	DeleteCompany(id uint) error

	ListBlogPosts(limit int) ([]model.BlogPost, error)
	GetBlogPost(id uint) (*model.BlogPost, error)
	CreateBlogPost(input BlogPostInput) (*model.BlogPost, error)
	UpdateBlogPost(id uint, input BlogPostInput) (*model.BlogPost, error)
	DeleteBlogPost(id uint) error
}

type contentService struct {
	catalogRepo repository.CatalogRepository
}

func NewContentService(catalogRepo repository.CatalogRepository) ContentService {
	return &contentService{catalogRepo: catalogRepo}
}

func (s *contentService) ListCategories() ([]model.Category, error) {
	return s.catalogRepo.ListCategories()
}

func (s *contentService) CreateCategory(name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	category := &model.Category{Name: name}
	if err := s.catalogRepo.CreateCategory(category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}

	logger.Info("Category created", map[string]interface{}{
		"category_id": category.ID,
		"name":        name,
	})
	return category, nil
}

func (s *contentService) GetCategory(id uint) (*model.Category, error) {
	category, err := s.catalogRepo.FindCategoryByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *contentService) UpdateCategory(id uint, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}
	category.Name = name
	if err := s.catalogRepo.UpdateCategory(category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	return category, nil
}

// DeleteCategory refuses while any product or course is filed under it.
func (s *contentService) DeleteCategory(id uint) error {
	if _, err := s.GetCategory(id); err != nil {
		return err
	}
	refs, err := s.catalogRepo.CountCategoryReferences(id)
	if err != nil {
		return err
	}
	if refs > 0 {
		logger.Warn("Refusing to delete category in use", map[string]interface{}{
			"category_id": id,
			"references":  refs,
		})
		return ErrCategoryInUse
	}
	if err := s.catalogRepo.DeleteCategory(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	logger.Info("Category deleted", map[string]interface{}{
		"category_id": id,
	})
	return nil
}

func (s *contentService) ListCompanies() ([]model.Company, error) {
	return s.catalogRepo.ListCompanies()
}

func (s *contentService) GetCompany(id uint) (*model.Company, error) {
	company, err := s.catalogRepo.FindCompanyByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return company, nil
}

func (s *contentService) CreateCompany(input CompanyInput) (*model.Company, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidInput
	}
	company := &model.Company{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		LogoURL:     input.LogoURL,
	}
	if err := s.catalogRepo.CreateCompany(company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *contentService) UpdateCompany(id uint, input CompanyInput) (*model.Company, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidInput
	}
	company, err := s.GetCompany(id)
	if err != nil {
		return nil, err
	}
	company.Name = strings.TrimSpace(input.Name)
	company.Description = input.Description
	company.LogoURL = input.LogoURL
	if err := s.catalogRepo.UpdateCompany(company); err != nil {
		return nil, err
	}
	return company, nil
}

// DeleteCompany refuses while the company still owns catalog entries or admins.
func (s *contentService) DeleteCompany(id uint) error {
	if _, err := s.GetCompany(id); err != nil {
		return err
	}
	refs, err := s.catalogRepo.CountCompanyReferences(id)
	if err != nil {
		return err
	}
	if refs > 0 {
		logger.Warn("Refusing to delete company in use", map[string]interface{}{
			"company_id": id,
			"references": refs,
		})
		return ErrCompanyInUse
	}
	if err := s.catalogRepo.DeleteCompany(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCompanyNotFound
		}
		return err
	}

	logger.Info("Company deleted", map[string]interface{}{
		"company_id": id,
	})
	return nil
}

func (s *contentService) ListBlogPosts(limit int) ([]model.BlogPost, error) {
	return s.catalogRepo.ListBlogPosts(limit)
}

func (s *contentService) GetBlogPost(id uint) (*model.BlogPost, error) {
	post, err := s.catalogRepo.FindBlogPostByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlogPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *contentService) CreateBlogPost(input BlogPostInput) (*model.BlogPost, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrInvalidInput
	}
	post := &model.BlogPost{}
	applyBlogPostInput(post, input)
	if err := s.catalogRepo.CreateBlogPost(post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *contentService) UpdateBlogPost(id uint, input BlogPostInput) (*model.BlogPost, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrInvalidInput
	}
	post, err := s.GetBlogPost(id)
	if err != nil {
		return nil, err
	}
	applyBlogPostInput(post, input)
	if err := s.catalogRepo.UpdateBlogPost(post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *contentService) DeleteBlogPost(id uint) error {
	if err := s.catalogRepo.DeleteBlogPost(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBlogPostNotFound
		}
		return err
	}
	return nil
}

// applyBlogPostInput keeps the existing publish date unless one is given.
func applyBlogPostInput(p *model.BlogPost, in BlogPostInput) {
	p.Title = strings.TrimSpace(in.Title)
	p.Subtitle = in.Subtitle
	p.Content = in.Content
	p.AuthorName = in.AuthorName
	p.AuthorTitle = in.AuthorTitle
	p.AuthorImageURL = in.AuthorImageURL
	p.ImageURL = in.ImageURL
	if in.PublishDate != nil {
		p.PublishDate = *in.PublishDate
	} else if p.PublishDate.IsZero() {
		p.PublishDate = time.Now()
	}
}
