package service

import (
	"errors"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartLine is a cart item joined with its catalog name for display.
type CartLine struct {
	ID        uint            `json:"id"`
	Item      model.ItemRef   `json:"item"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartView struct {
	Items     []CartLine  `json:"items"`
	ItemCount int         `json:"item_count"`
	Summary   CartSummary `json:"summary"`
}

type CartService interface {
	AddItem(userID uint, ref model.ItemRef, quantity int) (int, error)
	UpdateQuantity(userID, cartItemID uint, quantity int) error
	RemoveItem(userID, cartItemID uint) error
	GetCart(userID uint) (*CartView, error)
	ItemCount(userID uint) (int, error)
}

type cartService struct {
	cartRepo repository.CartRepository
	items    ItemResolver
	pricing  *PricingCalculator
}

func NewCartService(
	cartRepo repository.CartRepository,
	items ItemResolver,
	pricing *PricingCalculator,
) CartService {
	return &cartService{
		cartRepo: cartRepo,
		items:    items,
		pricing:  pricing,
	}
}

// AddItem returns the cart's total item count after the add.
func (s *cartService) AddItem(userID uint, ref model.ItemRef, quantity int) (int, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":  userID,
		"item":     ref.String(),
		"quantity": quantity,
	})

	if quantity < 1 {
		quantity = 1
	}
	if ref.QuantityPinned() {
		quantity = 1
	}

	item, err := s.items.Resolve(ref)
	if err != nil {
		logger.Warn("Cannot add item to cart", map[string]interface{}{
			"user_id": userID,
			"item":    ref.String(),
			"error":   err.Error(),
		})
		return 0, err
	}

	cart, err := s.cartRepo.GetOrCreateCart(userID)
	if err != nil {
		return 0, err
	}

	if err := s.cartRepo.UpsertItem(&model.CartItem{
		CartID:   cart.ID,
		Item:     ref,
		Quantity: quantity,
		Price:    item.Price,
	}); err != nil {
		return 0, err
	}
	if err := s.cartRepo.Touch(cart.ID); err != nil {
		return 0, err
	}

	count, err := s.cartRepo.CountItems(cart.ID)
	if err != nil {
		return 0, err
	}

	logger.Info("Item added to cart", map[string]interface{}{
		"user_id":    userID,
		"cart_id":    cart.ID,
		"item":       ref.String(),
		"item_count": count,
	})
	return count, nil
}

// ownedItem loads a line and checks it belongs to the user's cart.
func (s *cartService) ownedItem(userID, cartItemID uint) (*model.CartItem, error) {
	cart, err := s.cartRepo.FindCartByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}

	item, err := s.cartRepo.FindItemByID(cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	if item.CartID != cart.ID {
		logger.Warn("Cart item does not belong to user", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
		})
		return nil, ErrCartItemNotFound
	}
	return item, nil
}

// UpdateQuantity ignores quantities below one and pinned lines.
func (s *cartService) UpdateQuantity(userID, cartItemID uint, quantity int) error {
	item, err := s.ownedItem(userID, cartItemID)
	if err != nil {
		return err
	}

	if quantity <= 0 || item.Item.QuantityPinned() {
		logger.Debug("Cart quantity update ignored", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
			"quantity":     quantity,
		})
		return nil
	}

	if err := s.cartRepo.UpdateItemQuantity(item.ID, quantity); err != nil {
		return err
	}
	return s.cartRepo.Touch(item.CartID)
}

func (s *cartService) RemoveItem(userID, cartItemID uint) error {
	item, err := s.ownedItem(userID, cartItemID)
	if err != nil {
		return err
	}

	if err := s.cartRepo.DeleteItem(item.ID); err != nil {
		return err
	}

	logger.Info("Item removed from cart", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": cartItemID,
	})
	return s.cartRepo.Touch(item.CartID)
}

func (s *cartService) GetCart(userID uint) (*CartView, error) {
	items, err := s.userItems(userID)
	if err != nil {
		return nil, err
	}
	return s.view(items), nil
}

func (s *cartService) ItemCount(userID uint) (int, error) {
	cart, err := s.cartRepo.FindCartByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return s.cartRepo.CountItems(cart.ID)
}

// userItems returns no lines when the user has no cart yet.
func (s *cartService) userItems(userID uint) ([]model.CartItem, error) {
	cart, err := s.cartRepo.FindCartByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return s.cartRepo.FindItems(cart.ID)
}

func (s *cartService) view(items []model.CartItem) *CartView {
	view := &CartView{
		Items:   make([]CartLine, 0, len(items)),
		Summary: s.pricing.Summarize(items),
	}
	for _, item := range items {
		line := CartLine{
			ID:        item.ID,
			Item:      item.Item,
			Quantity:  item.Quantity,
			Price:     item.Price,
			LineTotal: item.LineTotal(),
		}
		// deleted catalog entries still show with their snapshot price
		if resolved, err := s.items.Resolve(item.Item); err == nil {
			line.Name = resolved.Name
			line.ImageURL = resolved.ImageURL
		}
		view.Items = append(view.Items, line)
		view.ItemCount += item.Quantity
	}
	return view
}
