package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Execution log states. scheduled is the only non-terminal state.
const (
	LogStatusScheduled = "scheduled"
	LogStatusExecuted  = "executed"
	LogStatusFailed    = "failed"
)

// WorkflowLog is one scheduled send attempt for a booking.
// Client fields and the step snapshot are frozen at scheduling time.
type WorkflowLog struct {
	ID         string `json:"id" gorm:"primaryKey;type:uuid"`
	WorkflowID string `json:"workflow_id" gorm:"type:uuid;not null;uniqueIndex:idx_workflow_logs_dedup,priority:2"`
	BookingID  string `json:"booking_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_workflow_logs_dedup,priority:1;index"`
	StepOrder  int    `json:"step_order" gorm:"not null;uniqueIndex:idx_workflow_logs_dedup,priority:3"`
	Attempt    int    `json:"attempt" gorm:"not null;default:1;uniqueIndex:idx_workflow_logs_dedup,priority:4"`
	RetryOfID  string `json:"retry_of_id,omitempty" gorm:"type:varchar(64)"`

	ClientEmail string `json:"client_email" gorm:"type:varchar(255)"`
	ClientName  string `json:"client_name" gorm:"type:varchar(255)"`
	ClientPhone string `json:"client_phone" gorm:"type:varchar(50)"`

	TriggerAction string           `json:"trigger_action" gorm:"type:varchar(20);not null;index"`
	Step          StepSnapshot     `json:"step" gorm:"type:jsonb;not null"`
	Variables     BoundVariableSet `json:"variables" gorm:"type:jsonb"`

	Status       string     `json:"status" gorm:"type:varchar(20);not null;index:idx_workflow_logs_due,priority:1"`
	ScheduledFor time.Time  `json:"scheduled_for" gorm:"not null;index:idx_workflow_logs_due,priority:2"`
	ExecutedAt   *time.Time `json:"executed_at,omitempty"`
	Error        string     `json:"error,omitempty" gorm:"type:text"`
	ErrorDetails JSON       `json:"error_details,omitempty" gorm:"type:jsonb"`
	ResponseData JSON       `json:"response_data,omitempty" gorm:"type:jsonb"`

	// Dispatch lease; holds an entry for one dispatcher without a separate state
	LeaseToken string     `json:"-" gorm:"type:varchar(64)"`
	LeaseUntil *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the WorkflowLog model
func (WorkflowLog) TableName() string {
	return "workflow_logs"
}

// BeforeCreate assigns a UUID when none was set
func (l *WorkflowLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// IsTerminal reports whether the entry reached executed or failed
func (l *WorkflowLog) IsTerminal() bool {
	return l.Status == LogStatusExecuted || l.Status == LogStatusFailed
}

// StepSnapshot is a frozen copy of the workflow step that produced a log entry
type StepSnapshot struct {
	Channel        string          `json:"channel"`
	DaysAfter      int             `json:"days_after"`
	TemplateID     string          `json:"template_id"`
	Order          int             `json:"order"`
	TemplateConfig *TemplateConfig `json:"template_config,omitempty"`
	DomainName     string          `json:"domain_name,omitempty"`
	SenderEmail    string          `json:"sender_email,omitempty"`
	SenderName     string          `json:"sender_name,omitempty"`
}

// NewStepSnapshot copies the fields of a step into a snapshot
func NewStepSnapshot(step *WorkflowStep) StepSnapshot {
	snapshot := StepSnapshot{
		Channel:     step.Channel,
		DaysAfter:   step.DaysAfter,
		TemplateID:  step.TemplateID,
		Order:       step.Order,
		DomainName:  step.DomainName,
		SenderEmail: step.SenderEmail,
		SenderName:  step.SenderName,
	}
	if step.TemplateConfig != nil {
		cfg := *step.TemplateConfig
		snapshot.TemplateConfig = &cfg
	}
	return snapshot
}

// Value implements driver.Valuer
func (s StepSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner
func (s *StepSnapshot) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	return scanJSON(value, s)
}

// BoundVariable is one positional template variable after binding
type BoundVariable struct {
	Position    int    `json:"position"`
	Placeholder string `json:"placeholder"`
	Field       string `json:"field"`
	Value       string `json:"value"`
	Bound       bool   `json:"bound"`
}

// BoundVariableSet is the ordered variable list frozen on a log entry
type BoundVariableSet []BoundVariable

// Value implements driver.Valuer
func (v BoundVariableSet) Value() (driver.Value, error) {
	if v == nil {
		return json.Marshal([]BoundVariable{})
	}
	return json.Marshal([]BoundVariable(v))
}

// Scan implements sql.Scanner
func (v *BoundVariableSet) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}
	return scanJSON(value, v)
}

// Values returns the variable values in positional order
func (v BoundVariableSet) Values() []string {
	values := make([]string, len(v))
	for i, variable := range v {
		values[i] = variable.Value
	}
	return values
}

// WorkflowLogResponse represents a log entry in API responses
type WorkflowLogResponse struct {
	ID            string           `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	WorkflowID    string           `json:"workflow_id"`
	BookingID     string           `json:"booking_id"`
	Attempt       int              `json:"attempt" example:"1"`
	RetryOfID     string           `json:"retry_of_id,omitempty"`
	ClientEmail   string           `json:"client_email"`
	ClientName    string           `json:"client_name"`
	ClientPhone   string           `json:"client_phone"`
	TriggerAction string           `json:"trigger_action" example:"no-show"`
	Step          StepSnapshot     `json:"step"`
	Variables     BoundVariableSet `json:"variables"`
	Status        string           `json:"status" example:"scheduled"`
	ScheduledFor  string           `json:"scheduled_for" example:"2025-01-16T10:30:00Z"`
	ExecutedAt    string           `json:"executed_at,omitempty"`
	Error         string           `json:"error,omitempty"`
	ErrorDetails  JSON             `json:"error_details,omitempty"`
	ResponseData  JSON             `json:"response_data,omitempty"`
	CreatedAt     string           `json:"created_at" example:"2025-01-09T10:30:00Z"`
}

// WorkflowLogStats holds aggregate counts per status
type WorkflowLogStats struct {
	Total     int64 `json:"total" example:"120"`
	Scheduled int64 `json:"scheduled" example:"40"`
	Executed  int64 `json:"executed" example:"75"`
	Failed    int64 `json:"failed" example:"5"`
}
