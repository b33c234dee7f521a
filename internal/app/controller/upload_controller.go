package controller

import (
	"net/http"

	apperrors "github.com/casarossa/casarossa-backend/internal/errors"
	"github.com/casarossa/casarossa-backend/internal/middleware"
	"github.com/casarossa/casarossa-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

type UploadController struct {
	storage *storage.S3Storage
}

func NewUploadController(storage *storage.S3Storage) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type GeneratePresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// GeneratePresignedURL generates a presigned URL for uploading menu
// images to S3. The client uploads directly; the resulting file URL
// goes into the menu item's image_url field.
// POST /api/v1/admin/upload/presigned-url
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req GeneratePresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid presigned URL request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid upload request")
		return
	}

	if err := ctrl.storage.ValidateImageType(req.ContentType); err != nil {
		log.Warn("Invalid content type", map[string]interface{}{
			"content_type": req.ContentType,
		})
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only image files are allowed (JPEG, PNG, GIF, WEBP)")
		return
	}

	response, err := ctrl.storage.PresignMenuImageUpload(c.Request.Context(), req.Filename, req.ContentType)
	if err != nil {
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename":     req.Filename,
			"content_type": req.ContentType,
		})
		apperrors.InternalError(c, "Failed to generate upload URL")
		return
	}

	log.Info("Presigned URL generated", map[string]interface{}{
		"filename": req.Filename,
		"key":      response.Key,
	})

	c.JSON(http.StatusOK, gin.H{
		"upload_url": response.UploadURL,
		"file_url":   response.FileURL,
		"key":        response.Key,
	})
}
