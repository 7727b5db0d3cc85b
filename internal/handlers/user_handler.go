package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"talent2income_backend/internal/services"
	"talent2income_backend/internal/services/dto"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
}

func NewUserHandler(base *BaseHandler, userService services.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, mw RouteMiddlewares) {
	users := rg.Group("/users")
	{
		users.GET("/:userId", h.GetUser)
	}

	protected := rg.Group("/users")
	protected.Use(mw.Auth)
	{
		protected.GET("/me", h.GetMe)
		protected.PATCH("/me", h.UpdateMe)
		protected.POST("/:userId/block", h.Block)
		protected.DELETE("/:userId/block", h.Unblock)
	}

	admin := rg.Group("/admin/users")
	admin.Use(mw.Auth, mw.Admin)
	{
		admin.PATCH("/:userId/status", h.SetStatus)
	}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := ParseParamID(c, "userId")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Block(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	target, ok := ParseParamID(c, "userId")
	if !ok {
		return
	}

	if err := h.userService.Block(c.Request.Context(), userID, target); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Unblock(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	target, ok := ParseParamID(c, "userId")
	if !ok {
		return
	}

	if err := h.userService.Unblock(c.Request.Context(), userID, target); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetStatus - модерация: смена статуса и подтверждение аккаунта
func (h *UserHandler) SetStatus(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	target, ok := ParseParamID(c, "userId")
	if !ok {
		return
	}
	var req dto.UpdateUserStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.SetStatus(c.Request.Context(), adminID, target, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
