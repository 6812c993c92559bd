package handler

import (
	"errors"
	"net/http"

	"feature-service/internal/model"
	"feature-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserRequest defines the structure for user creation/update requests
type UserRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar"`
}

// UserHandler serves user CRUD and search.
type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// List retrieves all users
func (h *UserHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	var users []model.User
	result := h.db.Order("created_at DESC").Find(&users)
	if result.Error != nil {
		log.Error("Failed to list users", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error retrieving users",
		})
	}

	return c.JSON(http.StatusOK, users)
}

// Get retrieves a single user by ID
func (h *UserHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var user model.User
	result := h.db.First(&user, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "User not found",
			})
		}
		log.Error("Failed to get user", zap.String("user_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error retrieving user",
		})
	}

	return c.JSON(http.StatusOK, user)
}

// Search finds users whose name or email contains the query,
// case-insensitively.
func (h *UserHandler) Search(c echo.Context) error {
	log := logger.FromEcho(c)
	query := c.Param("query")

	var users []model.User
	pattern := "%" + query + "%"
	result := h.db.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern).Find(&users)
	if result.Error != nil {
		log.Error("Failed to search users", zap.String("query", query), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error searching users",
		})
	}

	log.Info("User search completed", zap.String("query", query), zap.Int("count", len(users)))
	return c.JSON(http.StatusOK, users)
}

// Create creates a new user
func (h *UserHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req UserRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.Name == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "User name and email are required",
		})
	}

	var count int64
	h.db.Model(&model.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "User with this email already exists",
		})
	}

	user := model.User{
		Name:   req.Name,
		Email:  req.Email,
		Role:   req.Role,
		Avatar: req.Avatar,
	}
	if result := h.db.Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.String("email", req.Email), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error creating user",
		})
	}

	log.Info("User created successfully",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, user)
}

// Update updates an existing user
func (h *UserHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req UserRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("user_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.Name == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "User name and email are required",
		})
	}

	var user model.User
	result := h.db.First(&user, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "User not found",
			})
		}
		log.Error("Failed to get user for update", zap.String("user_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error updating user",
		})
	}

	if req.Email != user.Email {
		var count int64
		h.db.Model(&model.User{}).Where("email = ? AND id != ?", req.Email, id).Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "User with this email already exists",
			})
		}
	}

	user.Name = req.Name
	user.Email = req.Email
	user.Role = req.Role
	user.Avatar = req.Avatar
	if result := h.db.Save(&user); result.Error != nil {
		log.Error("Failed to update user", zap.String("user_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error updating user",
		})
	}

	return c.JSON(http.StatusOK, user)
}

// Delete removes a user
func (h *UserHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	result := h.db.Delete(&model.User{}, "id = ?", id)
	if result.Error != nil {
		log.Error("Failed to delete user", zap.String("user_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error deleting user",
		})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "User not found",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "User deleted successfully",
	})
}
