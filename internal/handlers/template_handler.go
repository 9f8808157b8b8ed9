package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/onegreenvn/booking-followup-backend/internal/services"
)

type TemplateHandler struct {
	resolver *services.TemplateVariableResolver
}

func NewTemplateHandler(resolver *services.TemplateVariableResolver) *TemplateHandler {
	return &TemplateHandler{resolver: resolver}
}

// GetTemplates godoc
// @Summary List message templates
// @Description Registered template ids with their channel and variable binding
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param channel query string false "Channel" Enums(email, whatsapp)
// @Success 200 {array} models.TemplateInfo
// @Router /api/v1/templates [get]
func (h *TemplateHandler) GetTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, h.resolver.List(c.Query("channel")))
}

// ResolveTemplate godoc
// @Summary Preview template variables
// @Description Bind the positional variables of a template against a sample context. Unbound variables stay as {{n}}; unknown templates return an empty list.
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param templateId path string true "Template ID"
// @Param request body models.ResolveTemplateRequest true "Sample context"
// @Success 200 {object} models.ResolveTemplateResponse
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/templates/{templateId}/resolve [post]
func (h *TemplateHandler) ResolveTemplate(c *gin.Context) {
	var req models.ResolveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	tctx, err := templateContextFromRequest(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	templateID := c.Param("templateId")
	vars, err := h.resolver.Resolve(templateID, tctx)
	if err != nil {
		respondError(c, err, "Failed to resolve template")
		return
	}

	resp := models.ResolveTemplateResponse{TemplateID: templateID, Variables: vars}
	if req.Body != "" {
		resp.Rendered = services.Render(req.Body, vars)
	}
	c.JSON(http.StatusOK, resp)
}

func templateContextFromRequest(req *models.ResolveTemplateRequest) (services.TemplateContext, error) {
	tctx := services.TemplateContext{
		ClientName:     req.ClientName,
		PlanName:       req.PlanName,
		PlanAmount:     req.PlanAmount,
		MeetingLink:    req.MeetingLink,
		RescheduleLink: req.RescheduleLink,
		ReferenceTime:  time.Now().UTC(),
		Config:         req.TemplateConfig,
	}
	if req.MeetingAt != "" {
		t, err := time.Parse(time.RFC3339, req.MeetingAt)
		if err != nil {
			return tctx, fmt.Errorf("meeting_at: %w", err)
		}
		tctx.MeetingAt = &t
	}
	if req.ReferenceTime != "" {
		t, err := time.Parse(time.RFC3339, req.ReferenceTime)
		if err != nil {
			return tctx, fmt.Errorf("reference_time: %w", err)
		}
		tctx.ReferenceTime = t
	}
	return tctx, nil
}
