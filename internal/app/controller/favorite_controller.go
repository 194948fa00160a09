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

type FavoriteController struct {
	favoriteService service.FavoriteService
}

func NewFavoriteController(favoriteService service.FavoriteService) *FavoriteController {
	return &FavoriteController{favoriteService: favoriteService}
}

// GetFavorites lists the current user's saved items
// GET /api/v1/favorites
func (ctrl *FavoriteController) GetFavorites(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}

	favorites, err := ctrl.favoriteService.ListFavorites(userID)
	if err != nil {
		log.Error("Failed to list favorites", err, map[string]interface{}{"user_id": userID})
		apperrors.InternalError(c, "Failed to fetch favorites")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"favorites": favorites,
		"count":     len(favorites),
	})
}

// AddFavorite
// POST /api/v1/favorites/:type/:id
func (ctrl *FavoriteController) AddFavorite(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}
	ref, ok := itemRefParams(c)
	if !ok {
		return
	}

	if err := ctrl.favoriteService.AddFavorite(userID, ref); err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidItemRef):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Only products and courses can be saved")
		case errors.Is(err, service.ErrItemNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Item not found")
		default:
			log.Error("Failed to add favorite", err, map[string]interface{}{
				"user_id": userID,
				"item":    ref.String(),
			})
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Added to favorites"})
}

// RemoveFavorite
// DELETE /api/v1/favorites/:type/:id
func (ctrl *FavoriteController) RemoveFavorite(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}
	ref, ok := itemRefParams(c)
	if !ok {
		return
	}

	if err := ctrl.favoriteService.RemoveFavorite(userID, ref); err != nil {
		if errors.Is(err, service.ErrFavoriteNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Favorite not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from favorites"})
}
