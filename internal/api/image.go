package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/recipekeeper/backend/internal/middleware"
	"github.com/pageza/recipekeeper/backend/internal/model"
	"github.com/pageza/recipekeeper/backend/internal/service"
)

// multipartOverhead leaves room for form boundaries around the file.
const multipartOverhead = 1 << 20

// ImageHandler handles recipe photo uploads
type ImageHandler struct {
	imageService service.IImageService
	log          *zap.Logger
}

// NewImageHandler creates a new image handler
func NewImageHandler(imageService service.IImageService, log *zap.Logger) *ImageHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImageHandler{imageService: imageService, log: log.With(zap.String("component", "image_handler"))}
}

// RegisterRoutes registers the upload route on an authenticated group
func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/recipes/:id/images", h.UploadRecipeImage)
}

// UploadRecipeImage stores the multipart "image" file and appends its URL to
// the recipe.
func (h *ImageHandler) UploadRecipeImage(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, h.log, service.ErrInvalidToken)
		return
	}
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, h.log, model.InvalidInput("_id", "must be a UUID"))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxImageSize+multipartOverhead)
	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, h.log, model.InvalidInput("image", "is too large"))
			return
		}
		respondError(c, h.log, model.InvalidInput("image", "is required"))
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer file.Close()

	recipe, err := h.imageService.UploadRecipeImage(c.Request.Context(), userID, recipeID, file)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}
