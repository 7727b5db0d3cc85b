package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"talent2income_backend/internal/services"
	"talent2income_backend/internal/services/dto"
)

type MessageHandler struct {
	*BaseHandler
	messageService services.MessageService
}

func NewMessageHandler(base *BaseHandler, messageService services.MessageService) *MessageHandler {
	return &MessageHandler{
		BaseHandler:    base,
		messageService: messageService,
	}
}

func (h *MessageHandler) RegisterRoutes(rg *gin.RouterGroup, mw RouteMiddlewares) {
	messages := rg.Group("/messages")
	messages.Use(mw.Auth)
	{
		messages.POST("", h.SendMessage)
		messages.GET("/:messageId", h.GetMessage)
		messages.DELETE("/:messageId", h.DeleteMessage)
	}

	conversations := rg.Group("/conversations")
	conversations.Use(mw.Auth)
	{
		conversations.GET("/:userId", h.GetConversation)
		conversations.POST("/:userId/typing", h.Typing)
	}
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) GetMessage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	messageID, ok := ParseParamID(c, "messageId")
	if !ok {
		return
	}

	msg, err := h.messageService.Get(c.Request.Context(), userID, messageID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	messageID, ok := ParseParamID(c, "messageId")
	if !ok {
		return
	}

	if err := h.messageService.Delete(c.Request.Context(), userID, messageID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MessageHandler) GetConversation(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	otherID, ok := ParseParamID(c, "userId")
	if !ok {
		return
	}
	var query dto.ConversationQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	resp, err := h.messageService.Conversation(c.Request.Context(), userID, otherID, query.Limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MessageHandler) Typing(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	otherID, ok := ParseParamID(c, "userId")
	if !ok {
		return
	}

	if err := h.messageService.Typing(c.Request.Context(), userID, otherID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
