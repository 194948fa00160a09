package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/mithaqq/mithaqq-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidReferralCode = errors.New("referral code does not exist")
)

// TokenRevoker blacklists a token id until it expires.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiry time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type RegisterInput struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	Phone        string
	Address      string
	ReferralCode string
}

type ProfileInput struct {
	FirstName string
	LastName  string
	Phone     string
	Address   string
}

type AuthService interface {
	Register(input RegisterInput) (*model.User, *util.TokenPair, error)
	Login(email, password string) (*model.User, *util.TokenPair, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*util.TokenPair, error)
	Logout(ctx context.Context, claims *util.Claims) error
	GetUserByID(id uint) (*model.User, error)
	// ResolveActor loads the role and company scope of an admin caller.
	ResolveActor(userID uint) (Actor, error)
	UpdateProfile(userID uint, input ProfileInput) (*model.User, error)
}

type authService struct {
	userRepo      repository.UserRepository
	revoker       TokenRevoker
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewAuthService builds the service. revoker may be nil, logout then only ends the client session.
func NewAuthService(
	userRepo repository.UserRepository,
	revoker TokenRevoker,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		revoker:       revoker,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *authService) tokens(user *model.User) (*util.TokenPair, error) {
	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	return tokens, nil
}

func (s *authService) Register(input RegisterInput) (*model.User, *util.TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	logger.Info("Attempting user registration", map[string]interface{}{
		"email":    email,
		"referred": input.ReferralCode != "",
	})

	existingUser, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}
	if existingUser != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrEmailAlreadyExists
	}

	code := strings.ToUpper(strings.TrimSpace(input.ReferralCode))
	if code != "" {
		if _, err := s.userRepo.FindByReferralCode(code); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Registration failed: unknown referral code", map[string]interface{}{
					"email": email,
					"code":  code,
				})
				return nil, nil, ErrInvalidReferralCode
			}
			return nil, nil, err
		}
	}

	hashedPassword, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	user := &model.User{
		Email:          email,
		PasswordHash:   hashedPassword,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		Phone:          input.Phone,
		Address:        input.Address,
		Role:           model.RoleUser,
		UserType:       model.DefaultUserType,
		ReferredBy:     code,
		CommissionRate: model.DefaultCommissionRate,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, ErrEmailAlreadyExists
		}
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	tokens, err := s.tokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
		"role":    user.Role,
	})
	return user, tokens, nil
}

func (s *authService) Login(email, password string) (*model.User, *util.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.tokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, tokens, nil
}

// RefreshTokens rotates the pair. The old refresh token is revoked when a revoker is set.
func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, util.ErrInvalidToken
		}
	}

	user, err := s.GetUserByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	tokens, err := s.tokens(user)
	if err != nil {
		return nil, err
	}

	if s.revoker != nil {
		if err := s.revoker.Revoke(ctx, claims.ID, claims.TokenTTL()); err != nil {
			logger.Warn("Failed to revoke rotated refresh token", map[string]interface{}{
				"user_id": user.ID,
				"error":   err.Error(),
			})
		}
	}
	return tokens, nil
}

// Logout blacklists the access token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, claims *util.Claims) error {
	if s.revoker == nil || claims == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.TokenTTL()); err != nil {
		return err
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return user, nil
}

func (s *authService) ResolveActor(userID uint) (Actor, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return Actor{}, err
	}
	return ActorFromUser(user), nil
}

func (s *authService) UpdateProfile(userID uint, input ProfileInput) (*model.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(input.FirstName); v != "" {
		user.FirstName = v
	}
	if v := strings.TrimSpace(input.LastName); v != "" {
		user.LastName = v
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if input.Address != "" {
		user.Address = input.Address
	}

	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update profile", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return user, nil
}
