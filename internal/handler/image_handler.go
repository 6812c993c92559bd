package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"feature-service/internal/model"
	"feature-service/pkg/config"
	"feature-service/pkg/logger"
	"feature-service/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// ImageHandler serves image upload, retrieval and deletion. Files live on
// disk under the configured upload directory; only metadata is stored in the
// database.
type ImageHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewImageHandler(db *gorm.DB, cfg *config.Config) *ImageHandler {
	return &ImageHandler{db: db, cfg: cfg}
}

func (h *ImageHandler) imageURL(c echo.Context, filename string) string {
	return c.Scheme() + "://" + c.Request().Host + "/uploads/" + filename
}

// List retrieves all images with their computed URLs
func (h *ImageHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	var images []model.Image
	result := h.db.Order("created_at DESC").Find(&images)
	if result.Error != nil {
		log.Error("Failed to list images", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error retrieving images",
		})
	}

	for i := range images {
		images[i].URL = h.imageURL(c, images[i].Filename)
	}
	return c.JSON(http.StatusOK, images)
}

// Get retrieves a single image by ID
func (h *ImageHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var image model.Image
	result := h.db.First(&image, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Image not found",
			})
		}
		log.Error("Failed to get image", zap.String("image_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error retrieving image",
		})
	}

	image.URL = h.imageURL(c, image.Filename)
	return c.JSON(http.StatusOK, image)
}

// Upload accepts a multipart image upload and stores the file under a
// generated filename.
func (h *ImageHandler) Upload(c echo.Context) error {
	log := logger.FromEcho(c)

	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "No image file uploaded",
		})
	}

	mimeType := file.Header.Get("Content-Type")
	if !allowedImageTypes[mimeType] {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid file type. Only JPEG, PNG and GIF are allowed.",
		})
	}
	if file.Size > h.cfg.Upload.MaxBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Image exceeds the maximum allowed size",
		})
	}

	if err := os.MkdirAll(h.cfg.Upload.Dir, 0o755); err != nil {
		log.Error("Failed to create upload directory", zap.String("dir", h.cfg.Upload.Dir), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error saving image",
		})
	}

	filename := uuid.NewString() + filepath.Ext(file.Filename)
	dstPath := filepath.Join(h.cfg.Upload.Dir, filename)

	src, err := file.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error saving image",
		})
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		log.Error("Failed to create image file", zap.String("path", dstPath), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error saving image",
		})
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		log.Error("Failed to write image file", zap.String("path", dstPath), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error saving image",
		})
	}

	name := c.FormValue("name")
	if name == "" {
		name = "Unnamed Image"
	}
	var featureID *string
	if v := c.FormValue("featureId"); v != "" {
		featureID = &v
	}

	image := model.Image{
		Name:         name,
		Filename:     filename,
		OriginalName: file.Filename,
		MimeType:     mimeType,
		Size:         file.Size,
		FeatureID:    featureID,
	}
	if result := h.db.Create(&image); result.Error != nil {
		log.Error("Failed to save image record", zap.Error(result.Error))
		// Remove the orphaned file so disk and database stay in sync.
		os.Remove(dstPath)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error saving image information",
		})
	}

	prometheus.ImageUploadBytes.Add(float64(written))
	log.Info("Image uploaded successfully",
		zap.String("image_id", image.ID),
		zap.String("filename", filename),
		zap.Int64("size", written))

	image.URL = h.imageURL(c, image.Filename)
	return c.JSON(http.StatusCreated, image)
}

// Delete removes the image record and its file
func (h *ImageHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var image model.Image
	result := h.db.First(&image, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Image not found",
			})
		}
		log.Error("Failed to get image for deletion", zap.String("image_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error deleting image",
		})
	}

	if result := h.db.Delete(&model.Image{}, "id = ?", id); result.Error != nil {
		log.Error("Failed to delete image", zap.String("image_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error deleting image",
		})
	}

	if err := os.Remove(filepath.Join(h.cfg.Upload.Dir, image.Filename)); err != nil && !os.IsNotExist(err) {
		log.Warn("Failed to remove image file",
			zap.String("filename", image.Filename),
			zap.Error(err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Image deleted successfully",
	})
}
