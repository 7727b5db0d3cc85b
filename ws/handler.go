package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"talent2income_backend/internal/logger"
	"talent2income_backend/internal/middleware"
	"talent2income_backend/pkg/apperrors"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшн добавьте проверку origin
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type WebSocketHandler struct {
	hub      *Hub
	messages MessageSender
}

func NewWebSocketHandler(hub *Hub, messages MessageSender) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		messages: messages,
	}
}

// ServeWS - маршрут закрыт AuthMiddleware, токен можно передать в ?token=
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "WebSocket upgrade error", "error", err.Error())
		return
	}

	// контекст запроса завершится вместе с хэндлером, соединение живет дольше
	ctx := logger.WithUserID(context.WithoutCancel(c.Request.Context()), userID)
	ctx = logger.WithAttrs(ctx, "conn_id", uuid.NewString())
	logger.CtxDebug(ctx, "websocket connected")
	client := &Client{
		UserID:   userID,
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
		hub:      h.hub,
		messages: h.messages,
		ctx:      ctx,
	}

	if !h.hub.join(client) {
		_ = conn.Close()
		return
	}

	go client.readPump()
	go client.writePump()
}
