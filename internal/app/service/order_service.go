package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrCourseNotFound = errors.New("course not found")

	// ErrPaymentAlreadyUsed is returned when a provider payment is presented
	// by someone other than the user it was recorded for.
	ErrPaymentAlreadyUsed = errors.New("payment already used by another account")
)

// ShippingInfo is what the customer enters on the checkout form.
type ShippingInfo struct {
	ShippingZoneID  int    `json:"shipping_zone_id"`
	ShippingAddress string `json:"shipping_address"`
	PhoneNumber     string `json:"phone_number"`
}

// PaymentResult records how an order was paid. PaymentID is nil for cash orders.
type PaymentResult struct {
	Method    model.PaymentMethod
	Status    model.OrderStatus
	PaymentID *string
}

// OrderNotifier is told about new orders and status changes. Implementations must not block.
type OrderNotifier interface {
	OrderCreated(order *model.Order)
	OrderStatusChanged(order *model.Order)
}

type OrderService interface {
	CreateOrderFromCart(ctx context.Context, userID uint, info ShippingInfo, result PaymentResult) (*model.Order, error)
	CreateOrderForCourse(ctx context.Context, userID, courseID uint, result PaymentResult) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrderByID(userID, orderID uint) (*model.Order, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error)
	SetNotifier(notifier OrderNotifier)
}

type orderService struct {
	orderRepo  repository.OrderRepository
	cartRepo   repository.CartRepository
	courseRepo repository.CourseRepository
	userRepo   repository.UserRepository
	zones      ShippingZoneService
	pricing    *PricingCalculator
	notifier   OrderNotifier
	db         *gorm.DB
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	courseRepo repository.CourseRepository,
	userRepo repository.UserRepository,
	zones ShippingZoneService,
	pricing *PricingCalculator,
	db *gorm.DB,
) OrderService {
	return &orderService{
		orderRepo:  orderRepo,
		cartRepo:   cartRepo,
		courseRepo: courseRepo,
		userRepo:   userRepo,
		zones:      zones,
		pricing:    pricing,
		db:         db,
	}
}

func (s *orderService) SetNotifier(notifier OrderNotifier) {
	s.notifier = notifier
}

// replayed returns the order already recorded for the payment, if any.
// A payment recorded for a different user is never handed out.
func (s *orderService) replayed(userID uint, result PaymentResult) (*model.Order, error) {
	if result.PaymentID == nil {
		return nil, nil
	}
	order, err := s.orderRepo.FindByPaymentID(*result.PaymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.ownedReplay(userID, order, *result.PaymentID)
}

func (s *orderService) ownedReplay(userID uint, order *model.Order, paymentID string) (*model.Order, error) {
	if order.UserID != userID {
		logger.Warn("Payment already recorded for another user", map[string]interface{}{
			"order_id":   order.ID,
			"payment_id": paymentID,
			"user_id":    userID,
			"owner_id":   order.UserID,
		})
		return nil, ErrPaymentAlreadyUsed
	}

	logger.Warn("Payment already recorded, returning existing order", map[string]interface{}{
		"order_id":   order.ID,
		"payment_id": paymentID,
	})
	return order, nil
}

// shippingCost is zero when the zone is missing or unknown.
func (s *orderService) shippingCost(ctx context.Context, zoneID int) (decimal.Decimal, error) {
	if zoneID <= 0 {
		return decimal.Zero, nil
	}
	cost, err := s.zones.ShippingCost(ctx, zoneID)
	if errors.Is(err, ErrShippingZoneNotFound) {
		logger.Warn("Unknown shipping zone at checkout, charging no shipping", map[string]interface{}{
			"zone_id": zoneID,
		})
		return decimal.Zero, nil
	}
	return cost, err
}

// CreateOrderFromCart turns the user's cart into an order and deletes the cart
// in one transaction. The cart row stays locked until commit.
func (s *orderService) CreateOrderFromCart(ctx context.Context, userID uint, info ShippingInfo, result PaymentResult) (_ *model.Order, err error) {
	logger.Info("Creating order from cart", map[string]interface{}{
		"user_id":        userID,
		"payment_method": result.Method,
		"zone_id":        info.ShippingZoneID,
	})

	if existing, err := s.replayed(userID, result); err != nil || existing != nil {
		return existing, err
	}

	shipping, err := s.shippingCost(ctx, info.ShippingZoneID)
	if err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			err = fmt.Errorf("order creation aborted: %v", r)
			logger.Error("Panic during order creation, rolling back", err, map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	carts := s.cartRepo.WithTx(tx)
	cart, err := carts.LockCartByUserID(userID)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot create order: no cart", map[string]interface{}{
				"user_id": userID,
			})
			return nil, ErrEmptyCart
		}
		return nil, err
	}

	items, err := carts.FindItems(cart.ID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if len(items) == 0 {
		tx.Rollback()
		logger.Warn("Cannot create order: cart is empty", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrEmptyCart
	}

	order := &model.Order{
		UserID:          userID,
		OrderDate:       time.Now(),
		OrderTotal:      s.pricing.CheckoutTotal(items, shipping),
		Status:          result.Status,
		ShippingAddress: strings.TrimSpace(info.ShippingAddress),
		PhoneNumber:     strings.TrimSpace(info.PhoneNumber),
		PaymentMethod:   result.Method,
		PaymentID:       result.PaymentID,
		Details:         make([]model.OrderDetail, 0, len(items)),
	}
	for _, item := range items {
		order.Details = append(order.Details, model.OrderDetail{
			Item:      item.Item,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
	}

	if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
		tx.Rollback()
		return s.duplicatePayment(userID, result, err)
	}

	if err := carts.DeleteCart(cart.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order transaction", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Order created from cart", map[string]interface{}{
		"order_id":    order.ID,
		"user_id":     userID,
		"order_total": order.OrderTotal.String(),
		"lines":       len(order.Details),
	})
	s.notifyCreated(order)
	return order, nil
}

// CreateOrderForCourse records a single-course purchase. The cart is not touched.
func (s *orderService) CreateOrderForCourse(ctx context.Context, userID, courseID uint, result PaymentResult) (*model.Order, error) {
	logger.Info("Creating course order", map[string]interface{}{
		"user_id":        userID,
		"course_id":      courseID,
		"payment_method": result.Method,
	})

	if existing, err := s.replayed(userID, result); err != nil || existing != nil {
		return existing, err
	}

	course, err := s.courseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	buyer, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	price := s.pricing.CourseTotal(course)
	order := &model.Order{
		UserID:          userID,
		OrderDate:       time.Now(),
		OrderTotal:      price,
		Status:          result.Status,
		ShippingAddress: model.DigitalDeliveryAddress,
		PhoneNumber:     buyer.Phone,
		PaymentMethod:   result.Method,
		PaymentID:       result.PaymentID,
		Details: []model.OrderDetail{{
			Item:      model.CourseRef(course.ID),
			Quantity:  1,
			UnitPrice: price,
		}},
	}

	if err := s.orderRepo.WithTx(s.db.WithContext(ctx)).Create(order); err != nil {
		return s.duplicatePayment(userID, result, err)
	}

	logger.Info("Course order created", map[string]interface{}{
		"order_id":  order.ID,
		"user_id":   userID,
		"course_id": courseID,
	})
	s.notifyCreated(order)
	return order, nil
}

// duplicatePayment resolves a lost race on the unique payment id to the winning order.
func (s *orderService) duplicatePayment(userID uint, result PaymentResult, err error) (*model.Order, error) {
	if errors.Is(err, gorm.ErrDuplicatedKey) && result.PaymentID != nil {
		if existing, findErr := s.orderRepo.FindByPaymentID(*result.PaymentID); findErr == nil {
			return s.ownedReplay(userID, existing, *result.PaymentID)
		}
	}
	return nil, err
}

func (s *orderService) notifyCreated(order *model.Order) {
	if s.notifier != nil {
		s.notifier.OrderCreated(order)
	}
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (s *orderService) GetOrderByID(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		logger.Warn("Order access denied", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
			"owner_id": order.UserID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// UpdateOrderStatus applies an admin status change allowed by the transition table.
func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.ErrInvalidOrderStatus
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		logger.Warn("Rejected order status transition", map[string]interface{}{
			"order_id": orderID,
			"from":     order.Status,
			"to":       status,
		})
		return nil, fmt.Errorf("%w: %s to %s", model.ErrInvalidStatusTransition, order.Status, status)
	}

	updated, err := s.orderRepo.UpdateStatusFrom(orderID, order.Status, status)
	if err != nil {
		return nil, err
	}
	if !updated {
		logger.Warn("Order status changed concurrently", map[string]interface{}{
			"order_id": orderID,
			"from":     order.Status,
			"to":       status,
		})
		return nil, fmt.Errorf("%w: %s changed before update to %s", model.ErrInvalidStatusTransition, order.Status, status)
	}
	order.Status = status

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
	if s.notifier != nil {
		s.notifier.OrderStatusChanged(order)
	}
	return order, nil
}
