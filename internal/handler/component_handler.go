package handler

import (
	"errors"
	"net/http"

	"feature-service/internal/store"
	"feature-service/internal/tree"
	"feature-service/pkg/logger"
	"feature-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ComponentHandler exposes the component tree engine over HTTP.
type ComponentHandler struct {
	engine *tree.Engine
}

// NewComponentHandler creates a handler around an injected engine.
func NewComponentHandler(engine *tree.Engine) *ComponentHandler {
	return &ComponentHandler{engine: engine}
}

// DeleteSelectedRequest is the body of a bulk delete request.
type DeleteSelectedRequest struct {
	IDs []string `json:"ids"`
}

// List retrieves all root components with their children inline
func (h *ComponentHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	components, err := h.engine.ListRoots()
	if err != nil {
		log.Error("Failed to list components", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error retrieving components",
		})
	}

	log.Info("Components retrieved successfully", zap.Int("count", len(components)))
	return c.JSON(http.StatusOK, components)
}

// Get retrieves a single root component by ID
func (h *ComponentHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	component, err := h.engine.GetRoot(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Component not found", zap.String("component_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Component not found",
			})
		}
		log.Error("Failed to get component", zap.String("component_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error retrieving component",
		})
	}

	return c.JSON(http.StatusOK, component)
}

// Create creates a new root component
func (h *ComponentHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req tree.RootInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	component, err := h.engine.CreateRoot(req)
	if err != nil {
		if errors.Is(err, tree.ErrNameRequired) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "Component name is required",
			})
		}
		log.Error("Failed to create component", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error creating component",
		})
	}

	prometheus.RecordComponentOperation("create")
	log.Info("Component created successfully",
		zap.String("component_id", component.ID),
		zap.String("name", component.Name))
	return c.JSON(http.StatusCreated, component)
}

// Update replaces the scalar fields of a root component. Children are only
// mutated through the child routes.
func (h *ComponentHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req tree.RootInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("component_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	component, err := h.engine.UpdateRoot(id, req)
	if err != nil {
		switch {
		case errors.Is(err, tree.ErrNameRequired):
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "Component name is required",
			})
		case errors.Is(err, store.ErrNotFound):
			log.Warn("Component not found for update", zap.String("component_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Component not found",
			})
		default:
			log.Error("Failed to update component", zap.String("component_id", id), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error": "Error updating component",
			})
		}
	}

	prometheus.RecordComponentOperation("update")
	log.Info("Component updated successfully",
		zap.String("component_id", id),
		zap.String("name", component.Name))
	return c.JSON(http.StatusOK, component)
}

// Delete removes a root component and its whole subtree
func (h *ComponentHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	count, err := h.engine.DeleteRoot(id)
	if err != nil {
		log.Error("Failed to delete component", zap.String("component_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error deleting component",
		})
	}
	if count == 0 {
		log.Warn("Component not found for deletion", zap.String("component_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Component not found",
		})
	}

	prometheus.RecordComponentOperation("delete")
	log.Info("Component deleted successfully", zap.String("component_id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Component deleted successfully",
	})
}

// ToggleCompletion flips the completed flag of a root component
func (h *ComponentHandler) ToggleCompletion(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	component, err := h.engine.ToggleRootCompletion(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Component not found for toggle", zap.String("component_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Component not found",
			})
		}
		log.Error("Failed to toggle component completion", zap.String("component_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error updating component",
		})
	}

	prometheus.RecordComponentOperation("toggle")
	log.Info("Component completion toggled",
		zap.String("component_id", id),
		zap.Bool("completed", component.Completed))
	return c.JSON(http.StatusOK, component)
}

// AddChild appends a child component to a root and returns the updated root
func (h *ComponentHandler) AddChild(c echo.Context) error {
	log := logger.FromEcho(c)
	parentID := c.Param("id")

	var req tree.ChildInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("parent_id", parentID), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	component, err := h.engine.AddChild(parentID, req)
	if err != nil {
		switch {
		case errors.Is(err, tree.ErrNameRequired):
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "Child component name is required",
			})
		case errors.Is(err, store.ErrNotFound):
			log.Warn("Parent component not found", zap.String("parent_id", parentID))
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Component not found",
			})
		default:
			log.Error("Failed to add child component", zap.String("parent_id", parentID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error": "Error adding child component",
			})
		}
	}

	prometheus.RecordChildOperation("add")
	log.Info("Child component added",
		zap.String("parent_id", parentID),
		zap.Int("children", len(component.Children)))
	return c.JSON(http.StatusCreated, component)
}

// UpdateChild replaces the scalar fields of one immediate child
func (h *ComponentHandler) UpdateChild(c echo.Context) error {
	log := logger.FromEcho(c)
	parentID := c.Param("id")
	childID := c.Param("childId")

	var req tree.ChildInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data",
			zap.String("parent_id", parentID),
			zap.String("child_id", childID),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	component, err := h.engine.UpdateChild(parentID, childID, req)
	if err != nil {
		switch {
		case errors.Is(err, tree.ErrNameRequired):
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "Child component name is required",
			})
		case errors.Is(err, store.ErrNotFound):
			log.Warn("Component or child not found",
				zap.String("parent_id", parentID),
				zap.String("child_id", childID))
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Child component not found",
			})
		default:
			log.Error("Failed to update child component",
				zap.String("parent_id", parentID),
				zap.String("child_id", childID),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error": "Error updating child component",
			})
		}
	}

	prometheus.RecordChildOperation("update")
	return c.JSON(http.StatusOK, component)
}

// ToggleChildCompletion flips the completed flag of one immediate child
func (h *ComponentHandler) ToggleChildCompletion(c echo.Context) error {
	log := logger.FromEcho(c)
	parentID := c.Param("id")
	childID := c.Param("childId")

	component, err := h.engine.ToggleChildCompletion(parentID, childID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Component or child not found for toggle",
				zap.String("parent_id", parentID),
				zap.String("child_id", childID))
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Child component not found",
			})
		}
		log.Error("Failed to toggle child completion",
			zap.String("parent_id", parentID),
			zap.String("child_id", childID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error updating child component",
		})
	}

	prometheus.RecordChildOperation("toggle")
	return c.JSON(http.StatusOK, component)
}

// RemoveChild removes one immediate child from a root. Removing an id that
// is not in the child list succeeds without changing anything.
func (h *ComponentHandler) RemoveChild(c echo.Context) error {
	log := logger.FromEcho(c)
	parentID := c.Param("id")
	childID := c.Param("childId")

	component, err := h.engine.RemoveChild(parentID, childID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Parent component not found", zap.String("parent_id", parentID))
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Component not found",
			})
		}
		log.Error("Failed to remove child component",
			zap.String("parent_id", parentID),
			zap.String("child_id", childID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error removing child component",
		})
	}

	prometheus.RecordChildOperation("remove")
	log.Info("Child component removed",
		zap.String("parent_id", parentID),
		zap.String("child_id", childID))
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Child component deleted successfully",
		"component": component,
	})
}

// DeleteSelected deletes a batch of ids, each independently. The response
// lists which ids were removed and which failed.
func (h *ComponentHandler) DeleteSelected(c echo.Context) error {
	log := logger.FromEcho(c)

	var req DeleteSelectedRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if len(req.IDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "At least one component id is required",
		})
	}

	result := h.engine.DeleteSelected(req.IDs)
	for range result.Failed {
		prometheus.BulkDeleteFailuresCounter.Inc()
	}

	log.Info("Bulk component delete processed",
		zap.Int("requested", len(req.IDs)),
		zap.Int("removed", len(result.Removed)),
		zap.Int("failed", len(result.Failed)))
	return c.JSON(http.StatusOK, result)
}
