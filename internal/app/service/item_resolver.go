package service

import (
	"errors"
	"fmt"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrItemNotFound = errors.New("item not found")

// ResolvedItem is the catalog data behind an ItemRef.
type ResolvedItem struct {
	Ref       model.ItemRef
	Name      string
	ImageURL  string
	Price     decimal.Decimal // effective price at lookup time
	CompanyID uint
}

// ItemResolver looks up any ItemRef in its catalog table.
type ItemResolver interface {
	Resolve(ref model.ItemRef) (*ResolvedItem, error)
}

type itemResolver struct {
	productRepo repository.ProductRepository
	courseRepo  repository.CourseRepository
	packageRepo repository.TravelPackageRepository
}

func NewItemResolver(
	productRepo repository.ProductRepository,
	courseRepo repository.CourseRepository,
	packageRepo repository.TravelPackageRepository,
) ItemResolver {
	return &itemResolver{
		productRepo: productRepo,
		courseRepo:  courseRepo,
		packageRepo: packageRepo,
	}
}

func (r *itemResolver) Resolve(ref model.ItemRef) (*ResolvedItem, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	var (
		item *ResolvedItem
		err  error
	)
	switch ref.Type {
	case model.ItemTypeProduct:
		var p *model.Product
		if p, err = r.productRepo.FindByID(ref.ID); err == nil {
			item = &ResolvedItem{Ref: ref, Name: p.Name, ImageURL: p.ImageURL, Price: p.EffectivePrice(), CompanyID: p.CompanyID}
		}
	case model.ItemTypeCourse:
		var c *model.Course
		if c, err = r.courseRepo.FindByID(ref.ID); err == nil {
			item = &ResolvedItem{Ref: ref, Name: c.Name, ImageURL: c.ImageURL, Price: c.EffectivePrice(), CompanyID: c.CompanyID}
		}
	case model.ItemTypeTravelPackage:
		var t *model.TravelPackage
		if t, err = r.packageRepo.FindByID(ref.ID); err == nil {
			item = &ResolvedItem{Ref: ref, Name: t.Name, ImageURL: t.ImageURL, Price: t.Price, CompanyID: t.CompanyID}
		}
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, ref)
		}
		return nil, err
	}
	return item, nil
}
