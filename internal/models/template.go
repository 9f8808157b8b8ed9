package models

// TemplateInfo describes a registered message template
type TemplateInfo struct {
	TemplateID string   `json:"template_id" example:"noshow_followup"`
	Channel    string   `json:"channel" example:"whatsapp"`
	Binding    string   `json:"binding" example:"direct"`
	Fields     []string `json:"fields" example:"client_name,reschedule_link"`
}

// ResolveTemplateRequest previews variable binding for a template
type ResolveTemplateRequest struct {
	ClientName     string          `json:"client_name" example:"Jane Doe"`
	PlanName       string          `json:"plan_name,omitempty" example:"PRIME"`
	PlanAmount     float64         `json:"plan_amount,omitempty" example:"119"`
	MeetingAt      string          `json:"meeting_at,omitempty" example:"2025-01-09T10:30:00Z"`
	MeetingLink    string          `json:"meeting_link,omitempty"`
	RescheduleLink string          `json:"reschedule_link,omitempty"`
	ReferenceTime  string          `json:"reference_time,omitempty" example:"2024-03-01T00:00:00Z"`
	TemplateConfig *TemplateConfig `json:"template_config,omitempty"`
	Body           string          `json:"body,omitempty" example:"Hi {{1}}, your {{2}} plan renews on {{3}}"`
}

// ResolveTemplateResponse is the bound variable list and the optional rendered body
type ResolveTemplateResponse struct {
	TemplateID string           `json:"template_id"`
	Variables  BoundVariableSet `json:"variables"`
	Rendered   string           `json:"rendered,omitempty"`
}
