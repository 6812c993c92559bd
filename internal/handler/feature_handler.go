package handler

import (
	"errors"
	"net/http"

	"feature-service/internal/model"
	"feature-service/internal/tree"
	"feature-service/pkg/logger"
	"feature-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FeatureRequest defines the structure for feature creation/update requests
type FeatureRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// FeatureHandler serves feature CRUD and the feature-scoped listings.
type FeatureHandler struct {
	db     *gorm.DB
	engine *tree.Engine
}

func NewFeatureHandler(db *gorm.DB, engine *tree.Engine) *FeatureHandler {
	return &FeatureHandler{db: db, engine: engine}
}

// List retrieves all features, newest first
func (h *FeatureHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	var features []model.Feature
	result := h.db.Order("created_at DESC").Find(&features)
	if result.Error != nil {
		log.Error("Failed to list features", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error retrieving features",
		})
	}

	return c.JSON(http.StatusOK, features)
}

// Get retrieves a single feature by ID
func (h *FeatureHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var feature model.Feature
	result := h.db.First(&feature, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Feature not found",
			})
		}
		log.Error("Failed to get feature", zap.String("feature_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error retrieving feature",
		})
	}

	return c.JSON(http.StatusOK, feature)
}

// ListComponents retrieves the component roots owned by a feature
func (h *FeatureHandler) ListComponents(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	components, err := h.engine.ListRootsByFeature(id)
	if err != nil {
		log.Error("Failed to list feature components", zap.String("feature_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error retrieving components",
		})
	}

	return c.JSON(http.StatusOK, components)
}

// ListEndpoints retrieves the endpoints owned by a feature
func (h *FeatureHandler) ListEndpoints(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var endpoints []model.Endpoint
	result := h.db.Where("feature_id = ?", id).Order("created_at DESC").Find(&endpoints)
	if result.Error != nil {
		log.Error("Failed to list feature endpoints", zap.String("feature_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error retrieving endpoints",
		})
	}

	return c.JSON(http.StatusOK, endpoints)
}

// ListDatabaseChanges retrieves the database changes owned by a feature
func (h *FeatureHandler) ListDatabaseChanges(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var changes []model.DatabaseChange
	result := h.db.Where("feature_id = ?", id).Order("created_at DESC").Find(&changes)
	if result.Error != nil {
		log.Error("Failed to list feature database changes", zap.String("feature_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error retrieving database changes",
		})
	}

	return c.JSON(http.StatusOK, changes)
}

// ListImages retrieves the images owned by a feature
func (h *FeatureHandler) ListImages(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var images []model.Image
	result := h.db.Where("feature_id = ?", id).Order("created_at DESC").Find(&images)
	if result.Error != nil {
		log.Error("Failed to list feature images", zap.String("feature_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error retrieving images",
		})
	}

	baseURL := c.Scheme() + "://" + c.Request().Host
	for i := range images {
		images[i].URL = baseURL + "/uploads/" + images[i].Filename
	}
	return c.JSON(http.StatusOK, images)
}

// Create creates a new feature
func (h *FeatureHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req FeatureRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Feature name is required",
		})
	}

	feature := model.Feature{
		Name:        req.Name,
		Description: req.Description,
	}
	if result := h.db.Create(&feature); result.Error != nil {
		log.Error("Failed to create feature", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error creating feature",
		})
	}

	prometheus.RecordFeatureOperation("create")
	log.Info("Feature created successfully",
		zap.String("feature_id", feature.ID),
		zap.String("name", feature.Name))
	return c.JSON(http.StatusCreated, feature)
}

// Update updates an existing feature
func (h *FeatureHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req FeatureRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("feature_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Feature name is required",
		})
	}

	var feature model.Feature
	result := h.db.First(&feature, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Feature not found",
			})
		}
		log.Error("Failed to get feature for update", zap.String("feature_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error updating feature",
		})
	}

	feature.Name = req.Name
	feature.Description = req.Description
	if result := h.db.Save(&feature); result.Error != nil {
		log.Error("Failed to update feature", zap.String("feature_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error updating feature",
		})
	}

	prometheus.RecordFeatureOperation("update")
	return c.JSON(http.StatusOK, feature)
}

// Delete removes a feature. Owned components, endpoints and changes keep
// their featureId; deletion does not cascade.
func (h *FeatureHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	result := h.db.Delete(&model.Feature{}, "id = ?", id)
	if result.Error != nil {
		log.Error("Failed to delete feature", zap.String("feature_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error deleting feature",
		})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Feature not found",
		})
	}

	prometheus.RecordFeatureOperation("delete")
	log.Info("Feature deleted successfully", zap.String("feature_id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Feature deleted successfully",
	})
}
