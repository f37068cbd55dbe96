package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-stock-service/internal/auth"
	"github.com/fekuna/omnipos-stock-service/internal/response"
	"github.com/fekuna/omnipos-stock-service/internal/user"
	"github.com/fekuna/omnipos-stock-service/internal/user/dto"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	uc     user.UseCase
	logger logger.ZapLogger
}

func NewUserHandler(uc user.UseCase, log logger.ZapLogger) *UserHandler {
	return &UserHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users", auth.Require(auth.ActionManageUsers))
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.PUT("", h.UpdateUser)
	users.DELETE("", h.DeleteUser)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, "Failed to fetch users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var input dto.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	u, err := h.uc.CreateUser(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, h.logger, "Failed to create user", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		response.BadRequest(c, "userId and updates are required")
		return
	}

	u, err := h.uc.UpdateUser(c.Request.Context(), req.UserID, &req.Updates)
	if err != nil {
		response.Error(c, h.logger, "Failed to update user", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	var req dto.DeleteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		response.BadRequest(c, "userId is required")
		return
	}

	if err := h.uc.DeleteUser(c.Request.Context(), req.UserID); err != nil {
		response.Error(c, h.logger, "Failed to delete user", err)
		return
	}
	response.Success(c, nil)
}
