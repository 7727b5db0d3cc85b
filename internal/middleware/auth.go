package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"talent2income_backend/internal/auth"
	"talent2income_backend/internal/logger"
	"talent2income_backend/internal/models"
	"talent2income_backend/pkg/apperrors"
	"talent2income_backend/pkg/contextkeys"
)

// AuthMiddleware - middleware проверки JWT
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, tokens)
		if !ok {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware - для публичных маршрутов, где ответ зависит от зрителя (скрытые отзывы)
func OptionalAuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseBearer(c, tokens); ok {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// RoleMiddleware - middleware ограничения по ролям
func RoleMiddleware(requiredRole models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(contextkeys.RoleKey.String())
		if !exists {
			apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied: no role"))
			return
		}
		if roleStr, _ := role.(string); models.UserRole(roleStr) != requiredRole {
			apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied: insufficient permissions"))
			return
		}
		c.Next()
	}
}

// GetUserID извлекает ID пользователя из контекста (0 - аноним)
func GetUserID(c *gin.Context) uint64 {
	userID, exists := c.Get(contextkeys.UserIDKey.String())
	if !exists {
		return 0
	}
	id, _ := userID.(uint64)
	return id
}

func parseBearer(c *gin.Context, tokens *auth.TokenManager) (*auth.Claims, bool) {
	tokenStr := c.GetHeader("Authorization")
	if !strings.HasPrefix(tokenStr, "Bearer ") {
		// браузерный websocket не умеет заголовки
		tokenStr = c.Query("token")
		if tokenStr == "" {
			return nil, false
		}
	} else {
		tokenStr = strings.TrimPrefix(tokenStr, "Bearer ")
	}

	claims, err := tokens.Parse(tokenStr)
	if err != nil {
		logger.CtxDebug(c.Request.Context(), "token rejected", "error", err.Error())
		return nil, false
	}
	return claims, true
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(contextkeys.UserIDKey.String(), claims.UserID)
	c.Set(contextkeys.RoleKey.String(), claims.Role)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
}
