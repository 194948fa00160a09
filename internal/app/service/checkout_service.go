package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/mithaqq/mithaqq-backend/pkg/payment"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotCompleted  = errors.New("payment was not completed")
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")
)

// Stripe session metadata keys. Confirmation rebuilds the order from them.
const (
	metaUserID          = "UserId"
	metaCourseID        = "CourseId"
	metaShippingZoneID  = "ShippingZoneId"
	metaShippingAddress = "ShippingAddress"
	metaPhoneNumber     = "PhoneNumber"
)

// CheckoutRequest starts a provider payment for the cart, or for one course when CourseID is set.
type CheckoutRequest struct {
	CourseID *uint `json:"course_id"`
	ShippingInfo
}

// CaptureRequest finishes a PayPal payment the customer approved.
type CaptureRequest struct {
	OrderID  string `json:"order_id" binding:"required"`
	CourseID *uint  `json:"course_id"`
	ShippingInfo
}

type CheckoutView struct {
	Items         []CartLine           `json:"items"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	ShippingZones []model.ShippingZone `json:"shipping_zones"`
}

type CourseCheckoutView struct {
	Course *model.Course   `json:"course"`
	Total  decimal.Decimal `json:"total"`
}

type CheckoutService interface {
	CheckoutPage(ctx context.Context, userID uint) (*CheckoutView, error)
	CourseCheckoutPage(ctx context.Context, userID, courseID uint) (*CourseCheckoutView, error)
	ShippingCost(ctx context.Context, zoneID int) (decimal.Decimal, error)
	PlaceCashOrder(ctx context.Context, userID uint, info ShippingInfo) (*model.Order, error)
	CreatePayPalOrder(ctx context.Context, userID uint, req CheckoutRequest) (*payment.ChargeSession, error)
	CapturePayPalOrder(ctx context.Context, userID uint, req CaptureRequest) (*model.Order, error)
	CreateStripeSession(ctx context.Context, userID uint, req CheckoutRequest) (*payment.ChargeSession, error)
	ConfirmStripeSession(ctx context.Context, userID uint, sessionID string) (*model.Order, error)
}

type checkoutService struct {
	cart       *cartService
	courseRepo repository.CourseRepository
	zones      ShippingZoneService
	orders     OrderService
	pricing    *PricingCalculator
	paypal     payment.Gateway
	stripe     payment.Gateway
	domain     string
}

// NewCheckoutService wires the providers. Pass payment.Disabled for an unconfigured provider.
func NewCheckoutService(
	cartRepo repository.CartRepository,
	courseRepo repository.CourseRepository,
	items ItemResolver,
	zones ShippingZoneService,
	orders OrderService,
	pricing *PricingCalculator,
	paypal payment.Gateway,
	stripe payment.Gateway,
	domain string,
) CheckoutService {
	return &checkoutService{
		cart:       &cartService{cartRepo: cartRepo, items: items, pricing: pricing},
		courseRepo: courseRepo,
		zones:      zones,
		orders:     orders,
		pricing:    pricing,
		paypal:     paypal,
		stripe:     stripe,
		domain:     domain,
	}
}

func (s *checkoutService) cartItems(userID uint) ([]model.CartItem, error) {
	items, err := s.cart.userItems(userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	return items, nil
}

func (s *checkoutService) course(courseID uint) (*model.Course, error) {
	course, err := s.courseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// zoneCost is zero for a missing or unknown zone; found reports whether it applied.
func (s *checkoutService) zoneCost(ctx context.Context, zoneID int) (cost decimal.Decimal, found bool, err error) {
	cost, err = s.zones.ShippingCost(ctx, zoneID)
	if errors.Is(err, ErrShippingZoneNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return cost, true, nil
}

func (s *checkoutService) CheckoutPage(ctx context.Context, userID uint) (*CheckoutView, error) {
	items, err := s.cartItems(userID)
	if err != nil {
		return nil, err
	}
	zones, err := s.zones.ListZones(ctx)
	if err != nil {
		return nil, err
	}

	view := s.cart.view(items)
	return &CheckoutView{
		Items:         view.Items,
		Subtotal:      view.Summary.Subtotal,
		ShippingZones: zones,
	}, nil
}

func (s *checkoutService) CourseCheckoutPage(ctx context.Context, userID, courseID uint) (*CourseCheckoutView, error) {
	course, err := s.course(courseID)
	if err != nil {
		return nil, err
	}
	return &CourseCheckoutView{Course: course, Total: s.pricing.CourseTotal(course)}, nil
}

func (s *checkoutService) ShippingCost(ctx context.Context, zoneID int) (decimal.Decimal, error) {
	return s.zones.ShippingCost(ctx, zoneID)
}

// PlaceCashOrder needs no provider call. The order starts as Processing.
func (s *checkoutService) PlaceCashOrder(ctx context.Context, userID uint, info ShippingInfo) (*model.Order, error) {
	return s.orders.CreateOrderFromCart(ctx, userID, info, PaymentResult{
		Method: model.PaymentMethodCashOnDelivery,
		Status: model.OrderStatusProcessing,
	})
}

// charge prices the request server side. Client supplied amounts are never trusted.
func (s *checkoutService) charge(ctx context.Context, userID uint, req CheckoutRequest) (payment.Charge, error) {
	if req.CourseID != nil {
		course, err := s.course(*req.CourseID)
		if err != nil {
			return payment.Charge{}, err
		}
		total := s.pricing.CourseTotal(course)
		return payment.Charge{
			Amount:    total,
			LineItems: []payment.LineItem{{Name: course.Name, UnitPrice: total, Quantity: 1}},
			Metadata: map[string]string{
				metaUserID:   formatID(userID),
				metaCourseID: formatID(course.ID),
			},
			SuccessURL: s.domain + "/Checkout/StripeSuccess?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:  fmt.Sprintf("%s/Checkout/CourseCheckout?courseId=%d", s.domain, course.ID),
		}, nil
	}

	items, err := s.cartItems(userID)
	if err != nil {
		return payment.Charge{}, err
	}
	shipping, found, err := s.zoneCost(ctx, req.ShippingZoneID)
	if err != nil {
		return payment.Charge{}, err
	}

	lines := s.cart.view(items).Items
	charge := payment.Charge{
		Amount:    s.pricing.CheckoutTotal(items, shipping),
		LineItems: make([]payment.LineItem, 0, len(lines)+1),
		Metadata: map[string]string{
			metaUserID:          formatID(userID),
			metaShippingZoneID:  strconv.Itoa(req.ShippingZoneID),
			metaShippingAddress: req.ShippingAddress,
			metaPhoneNumber:     req.PhoneNumber,
		},
		SuccessURL: s.domain + "/Checkout/StripeSuccess?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.domain + "/Checkout/Index",
	}
	for _, line := range lines {
		name := line.Name
		if name == "" {
			name = line.Item.String()
		}
		charge.LineItems = append(charge.LineItems, payment.LineItem{Name: name, UnitPrice: line.Price, Quantity: line.Quantity})
	}
	if found {
		charge.LineItems = append(charge.LineItems, payment.LineItem{Name: "Shipping", UnitPrice: shipping, Quantity: 1})
	}
	return charge, nil
}

func (s *checkoutService) createCharge(ctx context.Context, gateway payment.Gateway, userID uint, req CheckoutRequest) (*payment.ChargeSession, error) {
	charge, err := s.charge(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	if !charge.Amount.IsPositive() {
		return nil, ErrInvalidPaymentAmount
	}

	session, err := gateway.CreateCharge(ctx, charge)
	if err != nil {
		logger.Error("Payment provider rejected charge", err, map[string]interface{}{
			"provider": gateway.Name(),
			"user_id":  userID,
			"amount":   charge.Amount.String(),
		})
		return nil, err
	}

	logger.Info("Payment charge created", map[string]interface{}{
		"provider":   gateway.Name(),
		"user_id":    userID,
		"session_id": session.ID,
		"amount":     charge.Amount.String(),
	})
	return session, nil
}

func (s *checkoutService) CreatePayPalOrder(ctx context.Context, userID uint, req CheckoutRequest) (*payment.ChargeSession, error) {
	return s.createCharge(ctx, s.paypal, userID, req)
}

func (s *checkoutService) CreateStripeSession(ctx context.Context, userID uint, req CheckoutRequest) (*payment.ChargeSession, error) {
	return s.createCharge(ctx, s.stripe, userID, req)
}

// confirm asks the provider for the final state. Anything but paid creates no order.
func (s *checkoutService) confirm(ctx context.Context, gateway payment.Gateway, userID uint, reference string) (*payment.Confirmation, error) {
	confirmation, err := gateway.ConfirmCharge(ctx, reference)
	if err != nil {
		logger.Error("Payment confirmation failed", err, map[string]interface{}{
			"provider":  gateway.Name(),
			"user_id":   userID,
			"reference": reference,
		})
		return nil, err
	}
	if !confirmation.Paid {
		logger.Warn("Payment not completed", map[string]interface{}{
			"provider":  gateway.Name(),
			"user_id":   userID,
			"reference": reference,
			"status":    confirmation.Status,
		})
		return nil, fmt.Errorf("%w: status %s", ErrPaymentNotCompleted, confirmation.Status)
	}
	return confirmation, nil
}

func (s *checkoutService) CapturePayPalOrder(ctx context.Context, userID uint, req CaptureRequest) (*model.Order, error) {
	confirmation, err := s.confirm(ctx, s.paypal, userID, req.OrderID)
	if err != nil {
		return nil, err
	}
	return s.recordOrder(ctx, userID, model.PaymentMethodPayPal, confirmation.TransactionID, req.CourseID, req.ShippingInfo)
}

func (s *checkoutService) ConfirmStripeSession(ctx context.Context, userID uint, sessionID string) (*model.Order, error) {
	confirmation, err := s.confirm(ctx, s.stripe, userID, sessionID)
	if err != nil {
		return nil, err
	}

	meta := confirmation.Metadata
	if meta[metaUserID] != formatID(userID) {
		logger.Warn("Stripe session confirmed by a different user", map[string]interface{}{
			"user_id":    userID,
			"owner_id":   meta[metaUserID],
			"session_id": sessionID,
		})
		return nil, ErrPaymentAlreadyUsed
	}

	var courseID *uint
	if raw := meta[metaCourseID]; raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid %s metadata %q: %w", metaCourseID, raw, err)
		}
		cid := uint(id)
		courseID = &cid
	}
	zoneID, _ := strconv.Atoi(meta[metaShippingZoneID])
	info := ShippingInfo{
		ShippingZoneID:  zoneID,
		ShippingAddress: meta[metaShippingAddress],
		PhoneNumber:     meta[metaPhoneNumber],
	}
	return s.recordOrder(ctx, userID, model.PaymentMethodStripe, confirmation.TransactionID, courseID, info)
}

// recordOrder persists a paid provider order. A course order waits for enrollment approval.
func (s *checkoutService) recordOrder(ctx context.Context, userID uint, method model.PaymentMethod, transactionID string, courseID *uint, info ShippingInfo) (*model.Order, error) {
	result := PaymentResult{Method: method, Status: model.OrderStatusProcessing, PaymentID: &transactionID}
	if courseID != nil {
		result.Status = model.OrderStatusPendingApproval
		return s.orders.CreateOrderForCourse(ctx, userID, *courseID, result)
	}
	return s.orders.CreateOrderFromCart(ctx, userID, info, result)
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
