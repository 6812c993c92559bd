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

// EndpointRequest defines the structure for endpoint creation/update requests
type EndpointRequest struct {
	Method       string               `json:"method"`
	Path         string               `json:"path"`
	QueryParams  model.QueryParamList `json:"queryParams"`
	RequestBody  string               `json:"requestBody"`
	ResponseBody string               `json:"responseBody"`
	Description  string               `json:"description"`
	Completed    bool                 `json:"completed"`
	AssigneeID   *string              `json:"assigneeId"`
	FeatureID    *string              `json:"featureId"`
}

// EndpointHandler serves endpoint specification CRUD.
type EndpointHandler struct {
	db *gorm.DB
}

func NewEndpointHandler(db *gorm.DB) *EndpointHandler {
	return &EndpointHandler{db: db}
}

// List retrieves all endpoints, newest first
func (h *EndpointHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	var endpoints []model.Endpoint
	result := h.db.Order("created_at DESC").Find(&endpoints)
	if result.Error != nil {
		log.Error("Failed to list endpoints", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error retrieving endpoints",
		})
	}

	return c.JSON(http.StatusOK, endpoints)
}

// Get retrieves a single endpoint by ID
func (h *EndpointHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var endpoint model.Endpoint
	result := h.db.First(&endpoint, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Endpoint not found",
			})
		}
		log.Error("Failed to get endpoint", zap.String("endpoint_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error retrieving endpoint",
		})
	}

	return c.JSON(http.StatusOK, endpoint)
}

// Create creates a new endpoint specification
func (h *EndpointHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req EndpointRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.Method == "" || req.Path == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Endpoint method and path are required",
		})
	}

	endpoint := model.Endpoint{
		Method:       req.Method,
		Path:         req.Path,
		QueryParams:  req.QueryParams,
		RequestBody:  req.RequestBody,
		ResponseBody: req.ResponseBody,
		Description:  req.Description,
		Completed:    req.Completed,
		AssigneeID:   req.AssigneeID,
		FeatureID:    req.FeatureID,
	}
	if result := h.db.Create(&endpoint); result.Error != nil {
		log.Error("Failed to create endpoint",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error creating endpoint",
		})
	}

	prometheus.RecordEndpointOperation("create")
	log.Info("Endpoint created successfully",
		zap.String("endpoint_id", endpoint.ID),
		zap.String("method", endpoint.Method),
		zap.String("path", endpoint.Path))
	return c.JSON(http.StatusCreated, endpoint)
}

// Update updates an existing endpoint specification
func (h *EndpointHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req EndpointRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("endpoint_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.Method == "" || req.Path == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Endpoint method and path are required",
		})
	}

	var endpoint model.Endpoint
	result := h.db.First(&endpoint, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Endpoint not found",
			})
		}
		log.Error("Failed to get endpoint for update", zap.String("endpoint_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error updating endpoint",
		})
	}

	endpoint.Method = req.Method
	endpoint.Path = req.Path
	endpoint.QueryParams = req.QueryParams
	endpoint.RequestBody = req.RequestBody
	endpoint.ResponseBody = req.ResponseBody
	endpoint.Description = req.Description
	endpoint.Completed = req.Completed
	endpoint.AssigneeID = req.AssigneeID
	endpoint.FeatureID = req.FeatureID
	if result := h.db.Save(&endpoint); result.Error != nil {
		log.Error("Failed to update endpoint", zap.String("endpoint_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error updating endpoint",
		})
	}

	prometheus.RecordEndpointOperation("update")
	return c.JSON(http.StatusOK, endpoint)
}

// ToggleCompletion flips the completed flag of an endpoint against the
// stored value.
func (h *EndpointHandler) ToggleCompletion(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var endpoint model.Endpoint
	result := h.db.First(&endpoint, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Endpoint not found",
			})
		}
		log.Error("Failed to get endpoint for toggle", zap.String("endpoint_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error updating endpoint",
		})
	}

	endpoint.Completed = !endpoint.Completed
	if result := h.db.Save(&endpoint); result.Error != nil {
		log.Error("Failed to toggle endpoint completion", zap.String("endpoint_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error updating endpoint",
		})
	}

	prometheus.RecordEndpointOperation("toggle")
	return c.JSON(http.StatusOK, endpoint)
}

// Delete removes an endpoint specification
func (h *EndpointHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	result := h.db.Delete(&model.Endpoint{}, "id = ?", id)
	if result.Error != nil {
		log.Error("Failed to delete endpoint", zap.String("endpoint_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error deleting endpoint",
		})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Endpoint not found",
		})
	}

	prometheus.RecordEndpointOperation("delete")
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Endpoint deleted successfully",
	})
}
