package service

import (
	"errors"
	"strings"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

type ProductInput struct {
	Name               string           `json:"name" binding:"required"`
	Description        string           `json:"description"`
	Price              decimal.Decimal  `json:"price"`
	SalePrice          *decimal.Decimal `json:"sale_price"`
	DiscountPercentage *int             `json:"discount_percentage"`
	ImageURL           string           `json:"image_url"`
	StockQuantity      int              `json:"stock_quantity"`
	CompanyID          uint             `json:"company_id"`
	CategoryID         uint             `json:"category_id"`
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || !in.Price.IsPositive() || in.StockQuantity < 0 {
		return ErrInvalidInput
	}
	if in.SalePrice != nil && (in.SalePrice.IsNegative() || in.SalePrice.GreaterThan(in.Price)) {
		return ErrInvalidInput
	}
	if in.DiscountPercentage != nil && (*in.DiscountPercentage < 0 || *in.DiscountPercentage > 100) {
		return ErrInvalidInput
	}
	return nil
}

type ProductService interface {
	ListProducts(filter repository.CatalogFilter) ([]model.Product, int64, error)
	GetProduct(id uint) (*model.Product, error)
	CreateProduct(actor Actor, input ProductInput) (*model.Product, error)
	UpdateProduct(actor Actor, id uint, input ProductInput) (*model.Product, error)
	DeleteProduct(actor Actor, id uint) error
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) ListProducts(filter repository.CatalogFilter) ([]model.Product, int64, error) {
	logger.Debug("Listing products", map[string]interface{}{
		"search":      filter.Search,
		"category_id": filter.CategoryID,
		"company_id":  filter.CompanyID,
	})

	products, total, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, 0, err
	}
	return products, total, nil
}

func (s *productService) GetProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) CreateProduct(actor Actor, input ProductInput) (*model.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	companyID, err := actor.owningCompany(input.CompanyID)
	if err != nil {
		return nil, err
	}

	product := &model.Product{}
	applyProductInput(product, input)
	product.CompanyID = companyID
	if err := s.productRepo.Create(product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"actor_id": actor.UserID,
		})
		return nil, err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"company_id": product.CompanyID,
		"actor_id":   actor.UserID,
	})
	return product, nil
}

func (s *productService) UpdateProduct(actor Actor, id uint, input ProductInput) (*model.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(product.CompanyID) {
		return nil, ErrCompanyScope
	}

	companyID := product.CompanyID
	applyProductInput(product, input)
	if actor.Role != model.RoleAdmin || input.CompanyID == 0 {
		product.CompanyID = companyID
	}
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": id,
		"actor_id":   actor.UserID,
	})
	return product, nil
}

func (s *productService) DeleteProduct(actor Actor, id uint) error {
	product, err := s.GetProduct(id)
	if err != nil {
		return err
	}
	if !actor.CanManage(product.CompanyID) {
		return ErrCompanyScope
	}
	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
		"actor_id":   actor.UserID,
	})
	return nil
}

func applyProductInput(p *model.Product, in ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price
	p.SalePrice = in.SalePrice
	p.DiscountPercentage = in.DiscountPercentage
	p.ImageURL = in.ImageURL
	p.StockQuantity = in.StockQuantity
	p.CompanyID = in.CompanyID
	p.CategoryID = in.CategoryID
}
