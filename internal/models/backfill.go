package models

// BookingsByStatusResponse is the dry-run partition of bookings for a status
type BookingsByStatusResponse struct {
	Status                      string           `json:"status" example:"no-show"`
	TriggerAction               string           `json:"trigger_action" example:"no-show"`
	Total                       int              `json:"total" example:"12"`
	ActiveWorkflows             int              `json:"active_workflows" example:"1"`
	WithScheduledWorkflows      []BookingSummary `json:"with_scheduled_workflows"`
	WithoutScheduledWorkflows   []BookingSummary `json:"without_scheduled_workflows"`
	WithScheduledWorkflowsCount int              `json:"with_scheduled_workflows_count" example:"9"`
	WithoutScheduledCount       int              `json:"without_scheduled_workflows_count" example:"3"`
}

// TriggerByStatusRequest asks the backfill engine to schedule a status class
type TriggerByStatusRequest struct {
	Status       string `json:"status" binding:"required" example:"no-show"`
	SkipExisting *bool  `json:"skip_existing,omitempty" example:"true"`
}

// BackfillError records one booking the backfill could not schedule
type BackfillError struct {
	BookingID   string `json:"booking_id" example:"bk_1042"`
	ClientEmail string `json:"client_email" example:"jane@example.com"`
	Error       string `json:"error" example:"client email is required for email steps"`
}

// BackfillResult aggregates one backfill run
type BackfillResult struct {
	Status    string          `json:"status" example:"no-show"`
	Total     int             `json:"total" example:"3"`
	Processed int             `json:"processed" example:"2"`
	Skipped   int             `json:"skipped" example:"0"`
	Created   int             `json:"created" example:"4"`
	Errors    []BackfillError `json:"errors"`
}
