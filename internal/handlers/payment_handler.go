package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"talent2income_backend/internal/models"
	"talent2income_backend/internal/services"
	"talent2income_backend/internal/services/dto"
)

type PaymentHandler struct {
	*BaseHandler
	paymentService services.PaymentService
}

func NewPaymentHandler(base *BaseHandler, paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    base,
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup, mw RouteMiddlewares) {
	jobs := rg.Group("/jobs")
	jobs.Use(mw.Auth)
	{
		jobs.POST("/:jobId/payment", h.CreatePayment)
		jobs.GET("/:jobId/payment", h.GetJobPayment)
	}

	payments := rg.Group("/payments")
	payments.Use(mw.Auth)
	{
		payments.GET("/:paymentId", h.GetPayment)
		payments.POST("/:paymentId/hold", h.transition(h.paymentService.Hold))
		payments.POST("/:paymentId/release", h.transition(h.paymentService.Release))
		payments.POST("/:paymentId/refund", h.transition(h.paymentService.Refund))
		payments.POST("/:paymentId/dispute", h.transition(h.paymentService.Dispute))
	}

	// обратный вызов провайдера; в проде закрыт на уровне сети
	admin := rg.Group("/admin/payments")
	admin.Use(mw.Auth, mw.Admin)
	{
		admin.POST("/:paymentId/failed", h.MarkFailed)
	}
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	jobID, ok := ParseParamID(c, "jobId")
	if !ok {
		return
	}
	var req dto.CreatePaymentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	payment, err := h.paymentService.Create(c.Request.Context(), userID, jobID, req.Amount)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandler) GetJobPayment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	jobID, ok := ParseParamID(c, "jobId")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetByJob(c.Request.Context(), userID, jobID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	paymentID, ok := ParseParamID(c, "paymentId")
	if !ok {
		return
	}

	payment, err := h.paymentService.Get(c.Request.Context(), userID, paymentID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

type paymentMove func(ctx context.Context, actorID, paymentID uint64) (*models.Payment, error)

// transition - общий хэндлер для hold/release/refund/dispute
func (h *PaymentHandler) transition(move paymentMove) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := h.GetAndAuthorizeUserID(c)
		if !ok {
			return
		}
		paymentID, ok := ParseParamID(c, "paymentId")
		if !ok {
			return
		}

		payment, err := move(c.Request.Context(), userID, paymentID)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, payment)
	}
}

func (h *PaymentHandler) MarkFailed(c *gin.Context) {
	paymentID, ok := ParseParamID(c, "paymentId")
	if !ok {
		return
	}
	var req dto.PaymentFailedRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	payment, err := h.paymentService.MarkFailed(c.Request.Context(), paymentID, req.Reason)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
