package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"talent2income_backend/internal/handlers"
	"talent2income_backend/internal/logger"
	"talent2income_backend/ws"
)

// RegisterRoutes регистрирует все HTTP и WebSocket маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	mw handlers.RouteMiddlewares,
	wsHandler *ws.WebSocketHandler,
) {
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Регистрация HTTP API v1
	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api, mw)
		appHandlers.UserHandler.RegisterRoutes(api, mw)
		appHandlers.JobHandler.RegisterRoutes(api, mw)
		appHandlers.PaymentHandler.RegisterRoutes(api, mw)
		appHandlers.ReviewHandler.RegisterRoutes(api, mw)
		appHandlers.MessageHandler.RegisterRoutes(api, mw)
		appHandlers.SkillHandler.RegisterRoutes(api, mw)
	}

	// Регистрация WebSocket
	if wsHandler != nil {
		wsGroup := ginRouter.Group("/ws")
		wsGroup.Use(mw.Auth)
		{
			wsGroup.GET("", wsHandler.ServeWS)
		}
		logger.Info("WebSocket route /ws registered")
	}
}
