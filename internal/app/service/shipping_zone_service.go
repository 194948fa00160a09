package service

import (
	"context"
	"errors"
	"time"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/internal/cache"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var ErrShippingZoneNotFound = errors.New("shipping zone not found")

const (
	shippingZonesCacheKey = "shipping_zones:all"
	shippingZonesCacheTTL = 10 * time.Minute
)

type ShippingZoneInput struct {
	ZoneName     string          `json:"zone_name" binding:"required"`
	City         string          `json:"city"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
}

type ShippingZoneService interface {
	ListZones(ctx context.Context) ([]model.ShippingZone, error)
	GetZone(ctx context.Context, id uint) (*model.ShippingZone, error)
	// ShippingCost returns ErrShippingZoneNotFound for ids <= 0 or unknown zones.
	ShippingCost(ctx context.Context, zoneID int) (decimal.Decimal, error)
	CreateZone(ctx context.Context, input ShippingZoneInput) (*model.ShippingZone, error)
	UpdateZone(ctx context.Context, id uint, input ShippingZoneInput) (*model.ShippingZone, error)
	DeleteZone(ctx context.Context, id uint) error
}

type shippingZoneService struct {
	zoneRepo repository.ShippingZoneRepository
	cache    cache.Cache
	group    singleflight.Group
}

func NewShippingZoneService(zoneRepo repository.ShippingZoneRepository, c cache.Cache) ShippingZoneService {
	if c == nil {
		c = cache.NoopCache{}
	}
	return &shippingZoneService{
		zoneRepo: zoneRepo,
		cache:    c,
	}
}

// ListZones reads through the cache. Concurrent misses share one query.
func (s *shippingZoneService) ListZones(ctx context.Context) ([]model.ShippingZone, error) {
	var zones []model.ShippingZone
	err := s.cache.Get(ctx, shippingZonesCacheKey, &zones)
	if err == nil {
		return zones, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn("Shipping zone cache read failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	v, err, _ := s.group.Do(shippingZonesCacheKey, func() (interface{}, error) {
		zones, err := s.zoneRepo.FindAll()
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, shippingZonesCacheKey, zones, shippingZonesCacheTTL); err != nil {
			logger.Warn("Shipping zone cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return zones, nil
	})
	if err != nil {
		logger.Error("Failed to load shipping zones", err)
		return nil, err
	}
	return v.([]model.ShippingZone), nil
}

func (s *shippingZoneService) GetZone(ctx context.Context, id uint) (*model.ShippingZone, error) {
	zones, err := s.ListZones(ctx)
	if err != nil {
		return nil, err
	}
	for i := range zones {
		if zones[i].ID == id {
			return &zones[i], nil
		}
	}
	return nil, ErrShippingZoneNotFound
}

func (s *shippingZoneService) ShippingCost(ctx context.Context, zoneID int) (decimal.Decimal, error) {
	if zoneID <= 0 {
		return decimal.Zero, ErrShippingZoneNotFound
	}
	zone, err := s.GetZone(ctx, uint(zoneID))
	if err != nil {
		return decimal.Zero, err
	}
	return zone.ShippingCost, nil
}

func (s *shippingZoneService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, shippingZonesCacheKey); err != nil {
		logger.Warn("Shipping zone cache invalidation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *shippingZoneService) CreateZone(ctx context.Context, input ShippingZoneInput) (*model.ShippingZone, error) {
	if input.ShippingCost.IsNegative() {
		return nil, ErrInvalidInput
	}
	zone := &model.ShippingZone{
		ZoneName:     input.ZoneName,
		City:         input.City,
		ShippingCost: input.ShippingCost,
	}
	if err := s.zoneRepo.Create(zone); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	logger.Info("Shipping zone created", map[string]interface{}{
		"zone_id": zone.ID,
		"name":    zone.ZoneName,
	})
	return zone, nil
}

func (s *shippingZoneService) UpdateZone(ctx context.Context, id uint, input ShippingZoneInput) (*model.ShippingZone, error) {
	if input.ShippingCost.IsNegative() {
		return nil, ErrInvalidInput
	}
	zone, err := s.zoneRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShippingZoneNotFound
		}
		return nil, err
	}

	zone.ZoneName = input.ZoneName
	zone.City = input.City
	zone.ShippingCost = input.ShippingCost
	if err := s.zoneRepo.Update(zone); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return zone, nil
}

func (s *shippingZoneService) DeleteZone(ctx context.Context, id uint) error {
	if err := s.zoneRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShippingZoneNotFound
		}
		return err
	}
	s.invalidate(ctx)
	return nil
}
