package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/mithaqq/mithaqq-backend/internal/errors"
	"github.com/mithaqq/mithaqq-backend/internal/middleware"
	"github.com/mithaqq/mithaqq-backend/internal/storage"
)

type UploadController struct {
	storage storage.Presigner
}

// NewUploadController accepts a nil presigner when uploads are not configured.
func NewUploadController(presigner storage.Presigner) *UploadController {
	return &UploadController{storage: presigner}
}

type PresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Folder      string `json:"folder"`
}

// GeneratePresignedURL issues a direct upload URL for a catalog image
// POST /api/v1/admin/uploads/presigned-url
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	if ctrl.storage == nil {
		apperrors.ServiceUnavailable(c, apperrors.UploadUnavailable, "Uploads are not configured")
		return
	}

	var req PresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid presigned URL request", map[string]interface{}{"error": err.Error()})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}
	folder := req.Folder
	if folder == "" {
		folder = "products"
	}

	upload, err := ctrl.storage.PresignUpload(c.Request.Context(), folder, req.Filename, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrContentTypeNotAllowed):
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only image files are allowed (JPEG, PNG, GIF, WEBP)")
		case errors.Is(err, storage.ErrUnknownFolder):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Unknown upload folder")
		default:
			log.Error("Failed to generate presigned URL", err, map[string]interface{}{
				"filename": req.Filename,
				"folder":   folder,
			})
			apperrors.InternalError(c, "Failed to generate presigned URL")
		}
		return
	}

	log.Info("Presigned URL generated", map[string]interface{}{
		"folder": folder,
		"key":    upload.Key,
	})
	c.JSON(http.StatusOK, upload)
}
