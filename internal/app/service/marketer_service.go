package service

import (
	"errors"
	"time"

	"github.com/mithaqq/mithaqq-backend/config"
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/mithaqq/mithaqq-backend/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrNotMarketer = errors.New("user is not a marketer")

const (
	recentReferralsLimit = 5
	referralCodeAttempts = 3
)

type ReferredUser struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type MarketerDashboard struct {
	ReferralCode    string          `json:"referral_code"`
	ReferredCount   int             `json:"referred_count"`
	TotalSales      decimal.Decimal `json:"total_sales"`
	CommissionRate  decimal.Decimal `json:"commission_rate"`
	Commission      decimal.Decimal `json:"commission"`
	RecentReferrals []ReferredUser  `json:"recent_referrals"`
}

type MarketerService interface {
	Dashboard(userID uint) (*MarketerDashboard, error)
	AddPackage(userID, productID uint) error
	RemovePackage(userID, productID uint) error
	ListPackages(userID uint) ([]model.Product, error)
}

type marketerService struct {
	userRepo     repository.UserRepository
	marketerRepo repository.MarketerRepository
	productRepo  repository.ProductRepository
	cfg          config.MarketerConfig
}

func NewMarketerService(
	userRepo repository.UserRepository,
	marketerRepo repository.MarketerRepository,
	productRepo repository.ProductRepository,
	cfg config.MarketerConfig,
) MarketerService {
	return &marketerService{
		userRepo:     userRepo,
		marketerRepo: marketerRepo,
		productRepo:  productRepo,
		cfg:          cfg,
	}
}

func (s *marketerService) marketer(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Role != model.RoleMarketer {
		return nil, ErrNotMarketer
	}
	return user, nil
}

// ensureReferralCode assigns a code on first use. A collision on the unique index is retried.
func (s *marketerService) ensureReferralCode(user *model.User) (string, error) {
	if user.ReferralCode != nil && *user.ReferralCode != "" {
		return *user.ReferralCode, nil
	}

	var err error
	for i := 0; i < referralCodeAttempts; i++ {
		code := util.GenerateReferralCode()
		user.ReferralCode = &code
		if err = s.userRepo.Update(user); err == nil {
			logger.Info("Referral code generated", map[string]interface{}{
				"user_id": user.ID,
				"code":    code,
			})
			return code, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	user.ReferralCode = nil
	return "", err
}

func (s *marketerService) rate(user *model.User) decimal.Decimal {
	if s.cfg.UseUserCommissionRate {
		return user.CommissionRate
	}
	return s.cfg.FlatCommissionRate
}

func (s *marketerService) Dashboard(userID uint) (*MarketerDashboard, error) {
	user, err := s.marketer(userID)
	if err != nil {
		return nil, err
	}
	code, err := s.ensureReferralCode(user)
	if err != nil {
		return nil, err
	}

	referred, err := s.userRepo.FindReferredUsers(code)
	if err != nil {
		return nil, err
	}
	sales, err := s.marketerRepo.ReferredSales(code, model.OrderStatusCompleted)
	if err != nil {
		return nil, err
	}

	rate := s.rate(user)
	dashboard := &MarketerDashboard{
		ReferralCode:    code,
		ReferredCount:   len(referred),
		TotalSales:      sales,
		CommissionRate:  rate,
		Commission:      sales.Mul(rate).Round(2),
		RecentReferrals: make([]ReferredUser, 0, recentReferralsLimit),
	}
	for i, u := range referred {
		if i == recentReferralsLimit {
			break
		}
		dashboard.RecentReferrals = append(dashboard.RecentReferrals, ReferredUser{
			ID:        u.ID,
			Name:      u.FullName(),
			Email:     u.Email,
			CreatedAt: u.CreatedAt,
		})
	}
	return dashboard, nil
}

func (s *marketerService) AddPackage(userID, productID uint) error {
	if _, err := s.marketer(userID); err != nil {
		return err
	}
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return s.marketerRepo.AddPackage(&model.MarketerPackage{MarketerID: userID, ProductID: productID})
}

func (s *marketerService) RemovePackage(userID, productID uint) error {
	if _, err := s.marketer(userID); err != nil {
		return err
	}
	if err := s.marketerRepo.RemovePackage(userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

func (s *marketerService) ListPackages(userID uint) ([]model.Product, error) {
	if _, err := s.marketer(userID); err != nil {
		return nil, err
	}
	return s.marketerRepo.FindPackages(userID)
}
