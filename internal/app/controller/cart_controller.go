package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/service"
	apperrors "github.com/mithaqq/mithaqq-backend/internal/errors"
	"github.com/mithaqq/mithaqq-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ItemType string `json:"item_type" binding:"required"`
	ItemID   uint   `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the user's cart with its price summary
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.GetCart(userID)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch cart")
		return
	}

	log.Info("Cart fetched successfully", map[string]interface{}{
		"user_id": userID,
		"lines":   len(cart.Items),
		"total":   cart.Summary.Total.String(),
	})
	c.JSON(http.StatusOK, cart)
}

// AddToCart adds a product, course or travel package to the cart
// POST /api/v1/cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	itemType, err := model.ParseItemType(req.ItemType)
	if err != nil {
		apperrors.BadRequest(c, apperrors.CartInvalidItem, "Unknown item type")
		return
	}
	ref := model.ItemRef{Type: itemType, ID: req.ItemID}

	count, err := ctrl.cartService.AddItem(userID, ref, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Item not found")
			return
		}
		if errors.Is(err, model.ErrInvalidItemRef) {
			apperrors.BadRequest(c, apperrors.CartInvalidItem, "Invalid item")
			return
		}
		log.Error("Failed to add item to cart", err, map[string]interface{}{
			"user_id": userID,
			"item":    ref.String(),
		})
		apperrors.InternalError(c, "Failed to add item to cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"count":   count,
	})
}

// UpdateCartItem sets the quantity of one line. Quantities below one are ignored.
// PUT /api/v1/cart/:id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}
	cartItemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	if err := ctrl.cartService.UpdateQuantity(userID, cartItemID, req.Quantity); err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			apperrors.NotFound(c, apperrors.CartItemNotFound, "Cart item not found")
			return
		}
		log.Error("Failed to update cart item", err, map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
		})
		apperrors.InternalError(c, "Failed to update cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item updated"})
}

// RemoveFromCart removes one line
// DELETE /api/v1/cart/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}
	cartItemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.cartService.RemoveItem(userID, cartItemID); err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			apperrors.NotFound(c, apperrors.CartItemNotFound, "Cart item not found")
			return
		}
		log.Error("Failed to remove cart item", err, map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
		})
		apperrors.InternalError(c, "Failed to remove cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

// GetCartCount returns the total item quantity for the header badge
// GET /api/v1/cart/count
func (ctrl *CartController) GetCartCount(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}

	count, err := ctrl.cartService.ItemCount(userID)
	if err != nil {
		log.Error("Failed to count cart items", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
