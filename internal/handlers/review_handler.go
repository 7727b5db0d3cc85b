package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"talent2income_backend/internal/middleware"
	"talent2income_backend/internal/services"
	"talent2income_backend/internal/services/dto"
)

type ReviewHandler struct {
	*BaseHandler
	reviewService services.ReviewService
}

func NewReviewHandler(base *BaseHandler, reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   base,
		reviewService: reviewService,
	}
}

func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup, mw RouteMiddlewares) {
	// Public routes: скрытые отзывы видны только участникам, поэтому токен опционален
	public := rg.Group("/users")
	public.Use(mw.OptionalAuth)
	{
		public.GET("/:userId/reviews", h.GetUserReviews)
		public.GET("/:userId/rating", h.GetUserRating)
	}

	jobs := rg.Group("/jobs")
	jobs.Use(mw.Auth)
	{
		jobs.POST("/:jobId/reviews", h.CreateReview)
	}

	reviews := rg.Group("/reviews")
	reviews.Use(mw.Auth)
	{
		reviews.DELETE("/:reviewId", h.DeleteReview)
	}
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	jobID, ok := ParseParamID(c, "jobId")
	if !ok {
		return
	}
	var req dto.CreateReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), userID, jobID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	reviewID, ok := ParseParamID(c, "reviewId")
	if !ok {
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), userID, reviewID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReviewHandler) GetUserReviews(c *gin.Context) {
	revieweeID, ok := ParseParamID(c, "userId")
	if !ok {
		return
	}

	resp, err := h.reviewService.ListForUser(c.Request.Context(), revieweeID, middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) GetUserRating(c *gin.Context) {
	userID, ok := ParseParamID(c, "userId")
	if !ok {
		return
	}

	stats, err := h.reviewService.RatingSummary(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
