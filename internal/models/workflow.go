package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Trigger actions a workflow can be bound to
const (
	TriggerNoShow     = "no-show"
	TriggerComplete   = "complete"
	TriggerCancel     = "cancel"
	TriggerReschedule = "re-schedule"
)

// Channels a workflow step can send through
const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
)

// TriggerActions lists every supported trigger action
var TriggerActions = []string{TriggerNoShow, TriggerComplete, TriggerCancel, TriggerReschedule}

// Workflow is a named rule: one trigger action mapped to an ordered list of steps
type Workflow struct {
	ID            string         `json:"id" gorm:"primaryKey;type:uuid"`
	Name          string         `json:"name" gorm:"type:varchar(255)"`
	Description   string         `json:"description" gorm:"type:text"`
	TriggerAction string         `json:"trigger_action" gorm:"type:varchar(20);not null;index:idx_workflows_trigger_active,priority:1"`
	IsActive      bool           `json:"is_active" gorm:"not null;index:idx_workflows_trigger_active,priority:2"`
	Steps         []WorkflowStep `json:"steps" gorm:"foreignKey:WorkflowID;references:ID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Workflow model
func (Workflow) TableName() string {
	return "workflows"
}

// BeforeCreate assigns a UUID when none was set
func (w *Workflow) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// WorkflowStep is one ordered unit of a workflow
type WorkflowStep struct {
	ID         string `json:"id" gorm:"primaryKey;type:uuid"`
	WorkflowID string `json:"workflow_id" gorm:"type:uuid;not null;uniqueIndex:idx_workflow_steps_order,priority:1"`
	Order      int    `json:"order" gorm:"column:step_order;not null;uniqueIndex:idx_workflow_steps_order,priority:2"`

	Channel        string          `json:"channel" gorm:"type:varchar(20);not null"`
	DaysAfter      int             `json:"days_after" gorm:"not null;default:0"`
	TemplateID     string          `json:"template_id" gorm:"type:varchar(255);not null"`
	TemplateConfig *TemplateConfig `json:"template_config,omitempty" gorm:"type:jsonb"`

	// Email addressing, passed through to the dispatcher untouched
	DomainName  string `json:"domain_name,omitempty" gorm:"type:varchar(255)"`
	SenderEmail string `json:"sender_email,omitempty" gorm:"type:varchar(255)"`
	SenderName  string `json:"sender_name,omitempty" gorm:"type:varchar(255)"`
}

// TableName specifies the table name for the WorkflowStep model
func (WorkflowStep) TableName() string {
	return "workflow_steps"
}

// BeforeCreate assigns a UUID when none was set
func (s *WorkflowStep) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// TemplateConfig carries the inputs for templates whose variables are computed
// rather than mapped, currently the payment reminder plan configuration
type TemplateConfig struct {
	PlanName   string  `json:"plan_name" validate:"required"`
	PlanAmount float64 `json:"plan_amount" validate:"gte=0"`
	Days       int     `json:"days" validate:"gte=0"`
}

// Value implements driver.Valuer
func (c TemplateConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner
func (c *TemplateConfig) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	return scanJSON(value, c)
}

// WorkflowStepRequest is one step of a create/update request
type WorkflowStepRequest struct {
	Order          *int            `json:"order,omitempty" example:"0"`
	Channel        string          `json:"channel" validate:"required,oneof=email whatsapp" example:"whatsapp"`
	DaysAfter      int             `json:"days_after" validate:"gte=0" example:"1"`
	TemplateID     string          `json:"template_id" validate:"required" example:"noshow_followup"`
	TemplateConfig *TemplateConfig `json:"template_config,omitempty" validate:"omitempty"`
	DomainName     string          `json:"domain_name,omitempty" example:"mail.example.com"`
	SenderEmail    string          `json:"sender_email,omitempty" validate:"omitempty,email" example:"coach@example.com"`
	SenderName     string          `json:"sender_name,omitempty" example:"Coach Team"`
}

// CreateWorkflowRequest represents the request to create a workflow
type CreateWorkflowRequest struct {
	Name          string                `json:"name" example:"No-show recovery"`
	Description   string                `json:"description" example:"Two nudges after a missed call"`
	TriggerAction string                `json:"trigger_action" validate:"required,oneof=no-show complete cancel re-schedule" example:"no-show"`
	IsActive      *bool                 `json:"is_active,omitempty" example:"true"`
	Steps         []WorkflowStepRequest `json:"steps" validate:"required,min=1,dive"`
}

// UpdateWorkflowRequest represents a full or partial workflow update.
// A body carrying only is_active toggles activation.
type UpdateWorkflowRequest struct {
	Name          *string                `json:"name,omitempty"`
	Description   *string                `json:"description,omitempty"`
	TriggerAction *string                `json:"trigger_action,omitempty"`
	IsActive      *bool                  `json:"is_active,omitempty"`
	Steps         *[]WorkflowStepRequest `json:"steps,omitempty"`
}

// IsActivationOnly reports whether the request only toggles is_active
func (r *UpdateWorkflowRequest) IsActivationOnly() bool {
	return r.IsActive != nil && r.Name == nil && r.Description == nil && r.TriggerAction == nil && r.Steps == nil
}

// WorkflowResponse represents the response for workflow operations
type WorkflowResponse struct {
	ID            string         `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name          string         `json:"name" example:"No-show recovery"`
	Description   string         `json:"description"`
	TriggerAction string         `json:"trigger_action" example:"no-show"`
	IsActive      bool           `json:"is_active" example:"true"`
	Steps         []WorkflowStep `json:"steps"`
	CreatedAt     string         `json:"created_at" example:"2025-01-09T10:30:00Z"`
	UpdatedAt     string         `json:"updated_at" example:"2025-01-09T10:30:00Z"`
}
