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

var ErrTravelPackageNotFound = errors.New("travel package not found")

type TravelPackageInput struct {
	Name         string          `json:"name" binding:"required"`
	Destination  string          `json:"destination"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	DurationDays int             `json:"duration_days"`
	Inclusions   string          `json:"inclusions"`
	ImageURL     string          `json:"image_url"`
	CompanyID    uint            `json:"company_id"`
}

type TravelPackageService interface {
	ListPackages(filter repository.CatalogFilter) ([]model.TravelPackage, int64, error)
	GetPackage(id uint) (*model.TravelPackage, error)
	CreatePackage(actor Actor, input TravelPackageInput) (*model.TravelPackage, error)
	UpdatePackage(actor Actor, id uint, input TravelPackageInput) (*model.TravelPackage, error)
	DeletePackage(actor Actor, id uint) error
}

type travelPackageService struct {
	packageRepo repository.TravelPackageRepository
}

func NewTravelPackageService(packageRepo repository.TravelPackageRepository) TravelPackageService {
	return &travelPackageService{packageRepo: packageRepo}
}

func (s *travelPackageService) ListPackages(filter repository.CatalogFilter) ([]model.TravelPackage, int64, error) {
	return s.packageRepo.FindWithFilter(filter)
}

func (s *travelPackageService) GetPackage(id uint) (*model.TravelPackage, error) {
	pkg, err := s.packageRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTravelPackageNotFound
		}
		return nil, err
	}
	return pkg, nil
}

func (s *travelPackageService) CreatePackage(actor Actor, input TravelPackageInput) (*model.TravelPackage, error) {
	if strings.TrimSpace(input.Name) == "" || input.Price.IsNegative() || input.DurationDays < 0 {
		return nil, ErrInvalidInput
	}
	companyID, err := actor.owningCompany(input.CompanyID)
	if err != nil {
		return nil, err
	}

	pkg := &model.TravelPackage{}
	applyPackageInput(pkg, input)
	pkg.CompanyID = companyID
	if err := s.packageRepo.Create(pkg); err != nil {
		return nil, err
	}

	logger.Info("Travel package created", map[string]interface{}{
		"package_id": pkg.ID,
		"company_id": companyID,
	})
	return pkg, nil
}

func (s *travelPackageService) UpdatePackage(actor Actor, id uint, input TravelPackageInput) (*model.TravelPackage, error) {
	if strings.TrimSpace(input.Name) == "" || input.Price.IsNegative() || input.DurationDays < 0 {
		return nil, ErrInvalidInput
	}
	pkg, err := s.GetPackage(id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(pkg.CompanyID) {
		return nil, ErrCompanyScope
	}

	companyID := pkg.CompanyID
	applyPackageInput(pkg, input)
	if actor.Role != model.RoleAdmin || input.CompanyID == 0 {
		pkg.CompanyID = companyID
	}
	if err := s.packageRepo.Update(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

func (s *travelPackageService) DeletePackage(actor Actor, id uint) error {
	pkg, err := s.GetPackage(id)
	if err != nil {
		return err
	}
	if !actor.CanManage(pkg.CompanyID) {
		return ErrCompanyScope
	}
	if err := s.packageRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTravelPackageNotFound
		}
		return err
	}
	return nil
}

func applyPackageInput(p *model.TravelPackage, in TravelPackageInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Destination = in.Destination
	p.Description = in.Description
	p.Price = in.Price
	p.DurationDays = in.DurationDays
	p.Inclusions = in.Inclusions
	p.ImageURL = in.ImageURL
	p.CompanyID = in.CompanyID
}
