package handler

import (
	"errors"
	"net/http"

	"feature-service/internal/model"
	"feature-service/pkg/logger"
	"feature-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DatabaseChangeRequest defines the structure for database change
// creation/update requests
type DatabaseChangeRequest struct {
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Completed   bool    `json:"completed"`
	AssigneeID  *string `json:"assigneeId"`
	FeatureID   *string `json:"featureId"`
}

// CompletedRequest carries the explicit completed state for the complete
// endpoint. The pointer distinguishes a missing field from false.
type CompletedRequest struct {
	Completed *bool `json:"completed"`
}

// DatabaseChangeHandler serves database-change task CRUD.
type DatabaseChangeHandler struct {
	db *gorm.DB
}

func NewDatabaseChangeHandler(db *gorm.DB) *DatabaseChangeHandler {
	return &DatabaseChangeHandler{db: db}
}

// List retrieves all database changes, newest first
func (h *DatabaseChangeHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	var changes []model.DatabaseChange
	result := h.db.Order("created_at DESC").Find(&changes)
	if result.Error != nil {
		log.Error("Failed to list database changes", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error retrieving database changes",
		})
	}

	return c.JSON(http.StatusOK, changes)
}

// Get retrieves a single database change by ID
func (h *DatabaseChangeHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var change model.DatabaseChange
	result := h.db.First(&change, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Database change not found",
			})
		}
		log.Error("Failed to get database change", zap.String("change_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error retrieving database change",
		})
	}

	return c.JSON(http.StatusOK, change)
}

// Create creates a new database change task
func (h *DatabaseChangeHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req DatabaseChangeRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.Type == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Database change type and name are required",
		})
	}

	change := model.DatabaseChange{
		Type:        req.Type,
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Completed:   req.Completed,
		AssigneeID:  req.AssigneeID,
		FeatureID:   req.FeatureID,
	}
	if result := h.db.Create(&change); result.Error != nil {
		log.Error("Failed to create database change", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error creating database change",
		})
	}

	prometheus.RecordDatabaseChangeOperation("create")
	log.Info("Database change created successfully",
		zap.String("change_id", change.ID),
		zap.String("name", change.Name))
	return c.JSON(http.StatusCreated, change)
}

// Update updates an existing database change task
func (h *DatabaseChangeHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req DatabaseChangeRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("change_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.Type == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Database change type and name are required",
		})
	}

	var change model.DatabaseChange
	result := h.db.First(&change, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Database change not found",
			})
		}
		log.Error("Failed to get database change for update", zap.String("change_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error updating database change",
		})
	}

	change.Type = req.Type
	change.Name = req.Name
	change.Description = req.Description
	change.Icon = req.Icon
	change.Completed = req.Completed
	change.AssigneeID = req.AssigneeID
	change.FeatureID = req.FeatureID
	if result := h.db.Save(&change); result.Error != nil {
		log.Error("Failed to update database change", zap.String("change_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error updating database change",
		})
	}

	prometheus.RecordDatabaseChangeOperation("update")
	return c.JSON(http.StatusOK, change)
}

// MarkCompleted sets the completed state to an explicit client-supplied
// value (unlike the component toggle, this endpoint takes the desired state).
func (h *DatabaseChangeHandler) MarkCompleted(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req CompletedRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("change_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.Completed == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Completed status is required",
		})
	}

	var change model.DatabaseChange
	result := h.db.First(&change, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Database change not found",
			})
		}
		log.Error("Failed to get database change", zap.String("change_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error updating database change",
		})
	}

	change.Completed = *req.Completed
	if result := h.db.Save(&change); result.Error != nil {
		log.Error("Failed to mark database change completed", zap.String("change_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error updating database change",
		})
	}

	prometheus.RecordDatabaseChangeOperation("complete")
	return c.JSON(http.StatusOK, change)
}

// Delete removes a database change task
func (h *DatabaseChangeHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	result := h.db.Delete(&model.DatabaseChange{}, "id = ?", id)
	if result.Error != nil {
		log.Error("Failed to delete database change", zap.String("change_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error deleting database change",
		})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Database change not found",
		})
	}

	prometheus.RecordDatabaseChangeOperation("delete")
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Database change deleted successfully",
	})
}
