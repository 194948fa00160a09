package service

import (
	"errors"
	"time"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrFavoriteNotFound = errors.New("favorite not found")

type FavoriteView struct {
	Item     model.ItemRef   `json:"item"`
	Name     string          `json:"name"`
	ImageURL string          `json:"image_url"`
	Price    decimal.Decimal `json:"price"`
	AddedAt  time.Time       `json:"added_at"`
}

type FavoriteService interface {
	AddFavorite(userID uint, ref model.ItemRef) error
	RemoveFavorite(userID uint, ref model.ItemRef) error
	ListFavorites(userID uint) ([]FavoriteView, error)
}

type favoriteService struct {
	favoriteRepo repository.FavoriteRepository
	items        ItemResolver
}

func NewFavoriteService(favoriteRepo repository.FavoriteRepository, items ItemResolver) FavoriteService {
	return &favoriteService{favoriteRepo: favoriteRepo, items: items}
}

// AddFavorite is idempotent.
func (s *favoriteService) AddFavorite(userID uint, ref model.ItemRef) error {
	if !ref.Reviewable() {
		return model.ErrInvalidItemRef
	}
	if _, err := s.items.Resolve(ref); err != nil {
		return err
	}
	if err := s.favoriteRepo.Add(&model.Favorite{UserID: userID, Item: ref}); err != nil {
		return err
	}

	logger.Info("Favorite added", map[string]interface{}{
		"user_id": userID,
		"item":    ref.String(),
	})
	return nil
}

func (s *favoriteService) RemoveFavorite(userID uint, ref model.ItemRef) error {
	if err := s.favoriteRepo.Remove(userID, ref); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFavoriteNotFound
		}
		return err
	}
	return nil
}

// ListFavorites skips favorites whose item was deleted from the catalog.
func (s *favoriteService) ListFavorites(userID uint) ([]FavoriteView, error) {
	favorites, err := s.favoriteRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	views := make([]FavoriteView, 0, len(favorites))
	for _, f := range favorites {
		item, err := s.items.Resolve(f.Item)
		if errors.Is(err, ErrItemNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		views = append(views, FavoriteView{
			Item:     f.Item,
			Name:     item.Name,
			ImageURL: item.ImageURL,
			Price:    item.Price,
			AddedAt:  f.CreatedAt,
		})
	}
	return views, nil
}
