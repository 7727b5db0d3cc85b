package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"talent2income_backend/internal/services"
	"talent2income_backend/internal/services/dto"
)

type SkillHandler struct {
	*BaseHandler
	skillService services.SkillService
}

func NewSkillHandler(base *BaseHandler, skillService services.SkillService) *SkillHandler {
	return &SkillHandler{
		BaseHandler:  base,
		skillService: skillService,
	}
}

func (h *SkillHandler) RegisterRoutes(rg *gin.RouterGroup, mw RouteMiddlewares) {
	public := rg.Group("")
	{
		public.GET("/skills/:skillId", h.GetSkill)
		public.GET("/users/:userId/skills", h.ListUserSkills)
	}

	skills := rg.Group("/skills")
	skills.Use(mw.Auth)
	{
		skills.POST("", h.CreateSkill)
		skills.PATCH("/:skillId", h.UpdateSkill)
		skills.DELETE("/:skillId", h.DeleteSkill)
	}
}

func (h *SkillHandler) CreateSkill(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.CreateSkillRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	skill, err := h.skillService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, skill)
}

func (h *SkillHandler) GetSkill(c *gin.Context) {
	skillID, ok := ParseParamID(c, "skillId")
	if !ok {
		return
	}

	skill, err := h.skillService.Get(c.Request.Context(), skillID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, skill)
}

func (h *SkillHandler) ListUserSkills(c *gin.Context) {
	userID, ok := ParseParamID(c, "userId")
	if !ok {
		return
	}

	skills, err := h.skillService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"skills": skills})
}

func (h *SkillHandler) UpdateSkill(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	skillID, ok := ParseParamID(c, "skillId")
	if !ok {
		return
	}
	var req dto.UpdateSkillRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	skill, err := h.skillService.Update(c.Request.Context(), userID, skillID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, skill)
}

func (h *SkillHandler) DeleteSkill(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	skillID, ok := ParseParamID(c, "skillId")
	if !ok {
		return
	}

	if err := h.skillService.Delete(c.Request.Context(), userID, skillID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
