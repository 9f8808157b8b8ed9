package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/onegreenvn/booking-followup-backend/internal/database/repository"
	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// WorkflowService is the workflow definition store: CRUD plus activation
type WorkflowService struct {
	workflowRepo *repository.WorkflowRepository
	resolver     *TemplateVariableResolver
	validate     *validator.Validate
}

func NewWorkflowService(workflowRepo *repository.WorkflowRepository, resolver *TemplateVariableResolver) *WorkflowService {
	return &WorkflowService{
		workflowRepo: workflowRepo,
		resolver:     resolver,
		validate:     validator.New(),
	}
}

// CreateWorkflow validates and persists a new workflow definition
func (s *WorkflowService) CreateWorkflow(ctx context.Context, req *models.CreateWorkflowRequest) (*models.WorkflowResponse, error) {
	steps, err := s.buildSteps(req)
	if err != nil {
		return nil, err
	}

	workflow := &models.Workflow{
		Name:          req.Name,
		Description:   req.Description,
		TriggerAction: req.TriggerAction,
		IsActive:      req.IsActive == nil || *req.IsActive,
		Steps:         steps,
	}

	if err := s.workflowRepo.Create(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"workflow_id": workflow.ID,
		"trigger":     workflow.TriggerAction,
		"steps":       len(workflow.Steps),
	}).Info("Workflow created")

	return s.toResponse(workflow), nil
}

// GetWorkflow retrieves one workflow definition
func (s *WorkflowService) GetWorkflow(ctx context.Context, id string) (*models.WorkflowResponse, error) {
	workflow, err := s.getWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(workflow), nil
}

// ListWorkflows retrieves every workflow definition
func (s *WorkflowService) ListWorkflows(ctx context.Context) ([]*models.WorkflowResponse, error) {
	workflows, err := s.workflowRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	responses := make([]*models.WorkflowResponse, len(workflows))
	for i, workflow := range workflows {
		responses[i] = s.toResponse(workflow)
	}
	return responses, nil
}

// ActiveWorkflows returns the active definitions bound to a trigger action
func (s *WorkflowService) ActiveWorkflows(ctx context.Context, triggerAction string) ([]*models.Workflow, error) {
	workflows, err := s.workflowRepo.GetActiveByTrigger(ctx, triggerAction)
	if err != nil {
		return nil, fmt.Errorf("failed to load active workflows for %s: %w", triggerAction, err)
	}
	return workflows, nil
}

// UpdateWorkflow applies a full or partial update. A body with only
// is_active is routed to SetActive.
func (s *WorkflowService) UpdateWorkflow(ctx context.Context, id string, req *models.UpdateWorkflowRequest) (*models.WorkflowResponse, error) {
	if req.IsActivationOnly() {
		return s.SetActive(ctx, id, *req.IsActive)
	}

	workflow, err := s.getWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := &models.CreateWorkflowRequest{
		Name:          workflow.Name,
		Description:   workflow.Description,
		TriggerAction: workflow.TriggerAction,
		IsActive:      &workflow.IsActive,
		Steps:         stepRequests(workflow.Steps),
	}
	if req.Name != nil {
		merged.Name = *req.Name
	}
	if req.Description != nil {
		merged.Description = *req.Description
	}
	if req.TriggerAction != nil {
		merged.TriggerAction = *req.TriggerAction
	}
	if req.IsActive != nil {
		merged.IsActive = req.IsActive
	}
	if req.Steps != nil {
		merged.Steps = *req.Steps
	}

	steps, err := s.buildSteps(merged)
	if err != nil {
		return nil, err
	}

	workflow.Name = merged.Name
	workflow.Description = merged.Description
	workflow.TriggerAction = merged.TriggerAction
	workflow.IsActive = *merged.IsActive
	workflow.Steps = steps

	if err := s.workflowRepo.Update(ctx, workflow, true); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	logrus.WithField("workflow_id", id).Info("Workflow updated")
	return s.GetWorkflow(ctx, id)
}

// SetActive toggles a workflow. Deactivation only stops future scheduling;
// entries already scheduled are left alone.
func (s *WorkflowService) SetActive(ctx context.Context, id string, active bool) (*models.WorkflowResponse, error) {
	found, err := s.workflowRepo.SetActive(ctx, id, active)
	if err != nil {
		return nil, fmt.Errorf("failed to set workflow active state: %w", err)
	}
	if !found {
		return nil, ErrWorkflowNotFound
	}

	logrus.WithFields(logrus.Fields{"workflow_id": id, "is_active": active}).Info("Workflow activation changed")
	return s.GetWorkflow(ctx, id)
}

// DeleteWorkflow removes a definition. Its log entries stay for audit.
func (s *WorkflowService) DeleteWorkflow(ctx context.Context, id string) error {
	deleted, err := s.workflowRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	if !deleted {
		return ErrWorkflowNotFound
	}

	logrus.WithField("workflow_id", id).Info("Workflow deleted")
	return nil
}

func (s *WorkflowService) getWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := s.workflowRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return workflow, nil
}

// buildSteps validates a definition and returns its steps sorted by order.
// Orders must be a permutation of 0..n-1; when every order is omitted the
// list position is used.
func (s *WorkflowService) buildSteps(req *models.CreateWorkflowRequest) ([]models.WorkflowStep, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, newValidationError(err)
	}

	verr := &ValidationError{}
	n := len(req.Steps)
	explicit := 0
	for _, step := range req.Steps {
		if step.Order != nil {
			explicit++
		}
	}
	if explicit != 0 && explicit != n {
		verr.add("steps", "order must be set on every step or on none")
		return nil, verr
	}

	seen := make(map[int]bool, n)
	steps := make([]models.WorkflowStep, n)
	for i, step := range req.Steps {
		order := i
		if step.Order != nil {
			order = *step.Order
		}
		field := fmt.Sprintf("steps[%d]", i)
		if order < 0 || order >= n {
			verr.add(field+".order", fmt.Sprintf("must be within 0..%d", n-1))
		} else if seen[order] {
			verr.add(field+".order", fmt.Sprintf("duplicate order %d", order))
		}
		seen[order] = true

		if def, ok := s.resolver.Lookup(step.TemplateID); ok && def.Channel != step.Channel {
			verr.add(field+".template_id", fmt.Sprintf("template %s is registered for %s", step.TemplateID, def.Channel))
		}
		if s.resolver.RequiresConfig(step.TemplateID) {
			if step.TemplateConfig == nil {
				verr.add(field+".template_config", "is required for template "+step.TemplateID)
			} else if err := s.validate.Struct(step.TemplateConfig); err != nil {
				for _, fe := range newValidationError(err).Fields {
					verr.add(field+".template_config."+fe.Field, fe.Message)
				}
			}
		}

		steps[i] = models.WorkflowStep{
			Order:          order,
			Channel:        step.Channel,
			DaysAfter:      step.DaysAfter,
			TemplateID:     step.TemplateID,
			TemplateConfig: step.TemplateConfig,
			DomainName:     step.DomainName,
			SenderEmail:    step.SenderEmail,
			SenderName:     step.SenderName,
		}
	}
	if !verr.empty() {
		return nil, verr
	}

	sort.Slice(steps, func(i, j int) bool { return steps[i].Order < steps[j].Order })
	return steps, nil
}

func stepRequests(steps []models.WorkflowStep) []models.WorkflowStepRequest {
	reqs := make([]models.WorkflowStepRequest, len(steps))
	for i := range steps {
		step := steps[i]
		order := step.Order
		reqs[i] = models.WorkflowStepRequest{
			Order:          &order,
			Channel:        step.Channel,
			DaysAfter:      step.DaysAfter,
			TemplateID:     step.TemplateID,
			TemplateConfig: step.TemplateConfig,
			DomainName:     step.DomainName,
			SenderEmail:    step.SenderEmail,
			SenderName:     step.SenderName,
		}
	}
	return reqs
}

func (s *WorkflowService) toResponse(workflow *models.Workflow) *models.WorkflowResponse {
	steps := workflow.Steps
	if steps == nil {
		steps = []models.WorkflowStep{}
	}
	return &models.WorkflowResponse{
		ID:            workflow.ID,
		Name:          workflow.Name,
		Description:   workflow.Description,
		TriggerAction: workflow.TriggerAction,
		IsActive:      workflow.IsActive,
		Steps:         steps,
		CreatedAt:     workflow.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     workflow.UpdatedAt.Format(time.RFC3339),
	}
}
