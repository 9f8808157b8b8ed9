package repository

import (
	"context"
	"time"

	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"gorm.io/gorm"
)

type WorkflowRepository struct {
	db *gorm.DB
}

func NewWorkflowRepository(db *gorm.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

func orderedSteps(db *gorm.DB) *gorm.DB {
	return db.Order("step_order ASC")
}

// Create creates a workflow together with its steps
func (r *WorkflowRepository) Create(ctx context.Context, workflow *models.Workflow) error {
	return r.db.WithContext(ctx).Create(workflow).Error
}

// GetByID retrieves a workflow with its steps in order
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow
	err := r.db.WithContext(ctx).
		Preload("Steps", orderedSteps).
		First(&workflow, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

// GetAll retrieves every workflow, newest first
func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	var workflows []*models.Workflow
	err := r.db.WithContext(ctx).
		Preload("Steps", orderedSteps).
		Order("created_at DESC").
		Find(&workflows).Error
	return workflows, err
}

// GetActiveByTrigger retrieves active workflows bound to a trigger action
func (r *WorkflowRepository) GetActiveByTrigger(ctx context.Context, triggerAction string) ([]*models.Workflow, error) {
	var workflows []*models.Workflow
	err := r.db.WithContext(ctx).
		Where("trigger_action = ? AND is_active = ?", triggerAction, true).
		Preload("Steps", orderedSteps).
		Order("created_at ASC").
		Find(&workflows).Error
	return workflows, err
}

// Update saves workflow fields and, when replaceSteps is set, swaps the step list
func (r *WorkflowRepository) Update(ctx context.Context, workflow *models.Workflow, replaceSteps bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Workflow{}).
			Where("id = ?", workflow.ID).
			Updates(map[string]interface{}{
				"name":           workflow.Name,
				"description":    workflow.Description,
				"trigger_action": workflow.TriggerAction,
				"is_active":      workflow.IsActive,
				"updated_at":     time.Now(),
			}).Error
		if err != nil {
			return err
		}
		if !replaceSteps {
			return nil
		}
		if err := tx.Where("workflow_id = ?", workflow.ID).Delete(&models.WorkflowStep{}).Error; err != nil {
			return err
		}
		for i := range workflow.Steps {
			workflow.Steps[i].ID = ""
			workflow.Steps[i].WorkflowID = workflow.ID
		}
		if len(workflow.Steps) == 0 {
			return nil
		}
		return tx.Create(&workflow.Steps).Error
	})
}

// SetActive flips the activation flag and reports whether the workflow exists
func (r *WorkflowRepository) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Workflow{}).
		Where("id = ?", id).
		Update("is_active", active)
	return result.RowsAffected > 0, result.Error
}

// Delete removes a workflow and its steps. Log entries are kept.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workflow_id = ?", id).Delete(&models.WorkflowStep{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Workflow{})
		deleted = result.RowsAffected > 0
		return result.Error
	})
	return deleted, err
}
