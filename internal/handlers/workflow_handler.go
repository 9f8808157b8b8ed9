package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/onegreenvn/booking-followup-backend/internal/services"
)

type WorkflowHandler struct {
	workflowService *services.WorkflowService
}

func NewWorkflowHandler(workflowService *services.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflowService: workflowService}
}

// GetWorkflows godoc
// @Summary List workflows
// @Description Get every workflow definition with its ordered steps
// @Tags workflows
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.WorkflowResponse
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/workflows [get]
func (h *WorkflowHandler) GetWorkflows(c *gin.Context) {
	workflows, err := h.workflowService.ListWorkflows(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get workflows")
		return
	}
	c.JSON(http.StatusOK, workflows)
}

// GetWorkflow godoc
// @Summary Get a workflow
// @Tags workflows
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workflow ID"
// @Success 200 {object} models.WorkflowResponse
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/workflows/{id} [get]
func (h *WorkflowHandler) GetWorkflow(c *gin.Context) {
	workflow, err := h.workflowService.GetWorkflow(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get workflow")
		return
	}
	c.JSON(http.StatusOK, workflow)
}

// CreateWorkflow godoc
// @Summary Create a workflow
// @Description Create a workflow bound to a trigger action. Steps need a template id; orders must be 0..n-1 or omitted.
// @Tags workflows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateWorkflowRequest true "Workflow definition"
// @Success 201 {object} models.WorkflowResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/workflows [post]
func (h *WorkflowHandler) CreateWorkflow(c *gin.Context) {
	var req models.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	workflow, err := h.workflowService.CreateWorkflow(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create workflow")
		return
	}
	c.JSON(http.StatusCreated, workflow)
}

// UpdateWorkflow godoc
// @Summary Update a workflow
// @Description Full or partial update. A body with only is_active activates or deactivates; scheduled entries are not touched.
// @Tags workflows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workflow ID"
// @Param request body models.UpdateWorkflowRequest true "Fields to update"
// @Success 200 {object} models.WorkflowResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/workflows/{id} [put]
func (h *WorkflowHandler) UpdateWorkflow(c *gin.Context) {
	var req models.UpdateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	workflow, err := h.workflowService.UpdateWorkflow(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "Failed to update workflow")
		return
	}
	c.JSON(http.StatusOK, workflow)
}

// DeleteWorkflow godoc
// @Summary Delete a workflow
// @Description Delete a workflow and its steps. Its log entries are kept.
// @Tags workflows
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workflow ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/workflows/{id} [delete]
func (h *WorkflowHandler) DeleteWorkflow(c *gin.Context) {
	if err := h.workflowService.DeleteWorkflow(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete workflow")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Workflow deleted successfully"})
}
