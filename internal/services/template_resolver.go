package services

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/onegreenvn/booking-followup-backend/internal/models"
)

// Semantic fields a positional template variable can map to
const (
	FieldClientName     = "client_name"
	FieldPlanCost       = "plan_cost"
	FieldPlanName       = "plan_name"
	FieldMeetingDate    = "meeting_date"
	FieldMeetingTime    = "meeting_time"
	FieldRescheduleLink = "reschedule_link"
	FieldMeetingLink    = "meeting_link"
	FieldDueDate        = "due_date"
)

const (
	bindingDirect   = "direct"
	bindingComputed = "computed_plan_config"

	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// TemplateBinding is the closed set of template shapes: DirectMapping or ComputedPlanConfig
type TemplateBinding interface {
	bindingKind() string
}

// DirectMapping binds {{1}}..{{n}} to named fields in order
type DirectMapping struct {
	Fields []string
}

func (DirectMapping) bindingKind() string { return bindingDirect }

// ComputedPlanConfig binds client name, configured plan name and today+days.
// The plan amount travels with the config but has no slot.
type ComputedPlanConfig struct{}

func (ComputedPlanConfig) bindingKind() string { return bindingComputed }

var computedPlanFields = []string{FieldClientName, FieldPlanName, FieldDueDate}

// TemplateDefinition registers a template id for a channel
type TemplateDefinition struct {
	ID      string
	Channel string
	Binding TemplateBinding
}

// TemplateContext carries everything a template may bind against
type TemplateContext struct {
	ClientName     string
	PlanName       string
	PlanAmount     float64
	MeetingAt      *time.Time
	MeetingLink    string
	RescheduleLink string
	// ReferenceTime is "today" for computed dates
	ReferenceTime time.Time
	Config        *models.TemplateConfig
}

// TemplateVariableResolver maps a template id and context to bound variables
type TemplateVariableResolver struct {
	templates map[string]TemplateDefinition
}

// NewTemplateVariableResolver builds a resolver over the given templates
func NewTemplateVariableResolver(defs ...TemplateDefinition) *TemplateVariableResolver {
	r := &TemplateVariableResolver{templates: make(map[string]TemplateDefinition, len(defs))}
	for _, def := range defs {
		r.templates[def.ID] = def
	}
	return r
}

// DefaultTemplates is the template set known to the message providers
func DefaultTemplates() []TemplateDefinition {
	return []TemplateDefinition{
		{ID: "finalkk", Channel: models.ChannelWhatsApp, Binding: ComputedPlanConfig{}},
		{ID: "noshow_followup", Channel: models.ChannelWhatsApp, Binding: DirectMapping{Fields: []string{FieldClientName, FieldRescheduleLink}}},
		{ID: "noshow_followup_email", Channel: models.ChannelEmail, Binding: DirectMapping{Fields: []string{FieldClientName, FieldRescheduleLink}}},
		{ID: "payment_reminder", Channel: models.ChannelWhatsApp, Binding: DirectMapping{Fields: []string{FieldClientName, FieldPlanCost, FieldPlanName}}},
		{ID: "meeting_rescheduled", Channel: models.ChannelWhatsApp, Binding: DirectMapping{Fields: []string{FieldClientName, FieldMeetingDate, FieldMeetingTime, FieldMeetingLink}}},
		{ID: "session_feedback", Channel: models.ChannelEmail, Binding: DirectMapping{Fields: []string{FieldClientName}}},
		{ID: "cancellation_winback", Channel: models.ChannelEmail, Binding: DirectMapping{Fields: []string{FieldClientName, FieldPlanName, FieldRescheduleLink}}},
	}
}

// Lookup returns the registered template definition
func (r *TemplateVariableResolver) Lookup(templateID string) (TemplateDefinition, bool) {
	def, ok := r.templates[templateID]
	return def, ok
}

// RequiresConfig reports whether a template needs a TemplateConfig to bind
func (r *TemplateVariableResolver) RequiresConfig(templateID string) bool {
	def, ok := r.templates[templateID]
	if !ok {
		return false
	}
	_, computed := def.Binding.(ComputedPlanConfig)
	return computed
}

// List returns the registered templates, optionally filtered by channel
func (r *TemplateVariableResolver) List(channel string) []models.TemplateInfo {
	infos := make([]models.TemplateInfo, 0, len(r.templates))
	for _, def := range r.templates {
		if channel != "" && def.Channel != channel {
			continue
		}
		info := models.TemplateInfo{
			TemplateID: def.ID,
			Channel:    def.Channel,
			Binding:    def.Binding.bindingKind(),
		}
		switch b := def.Binding.(type) {
		case DirectMapping:
			info.Fields = append([]string(nil), b.Fields...)
		case ComputedPlanConfig:
			info.Fields = append([]string(nil), computedPlanFields...)
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].TemplateID < infos[j].TemplateID })
	return infos
}

// Resolve binds the positional variables of a template.
// An unregistered template yields an empty list; its text goes out as-is.
func (r *TemplateVariableResolver) Resolve(templateID string, ctx TemplateContext) (models.BoundVariableSet, error) {
	def, ok := r.templates[templateID]
	if !ok {
		return models.BoundVariableSet{}, nil
	}

	switch b := def.Binding.(type) {
	case DirectMapping:
		vars := make(models.BoundVariableSet, len(b.Fields))
		for i, field := range b.Fields {
			value, bound := directValue(field, ctx)
			vars[i] = newBoundVariable(i+1, field, value, bound)
		}
		return vars, nil
	case ComputedPlanConfig:
		return resolvePlanConfig(ctx), nil
	default:
		return nil, fmt.Errorf("template %s has unhandled binding %T", templateID, def.Binding)
	}
}

func resolvePlanConfig(ctx TemplateContext) models.BoundVariableSet {
	vars := models.BoundVariableSet{
		newBoundVariable(1, FieldClientName, ctx.ClientName, ctx.ClientName != ""),
		newBoundVariable(2, FieldPlanName, "", false),
		newBoundVariable(3, FieldDueDate, "", false),
	}
	if ctx.Config == nil {
		return vars
	}
	if ctx.Config.PlanName != "" {
		vars[1] = newBoundVariable(2, FieldPlanName, ctx.Config.PlanName, true)
	}
	due := ctx.ReferenceTime.UTC().AddDate(0, 0, ctx.Config.Days)
	vars[2] = newBoundVariable(3, FieldDueDate, due.Format(dateLayout), true)
	return vars
}

func directValue(field string, ctx TemplateContext) (string, bool) {
	var value string
	switch field {
	case FieldClientName:
		value = ctx.ClientName
	case FieldPlanName:
		value = ctx.PlanName
	case FieldPlanCost:
		if ctx.PlanAmount > 0 {
			value = strconv.FormatFloat(ctx.PlanAmount, 'f', -1, 64)
		}
	case FieldMeetingDate:
		if ctx.MeetingAt != nil {
			value = ctx.MeetingAt.UTC().Format(dateLayout)
		}
	case FieldMeetingTime:
		if ctx.MeetingAt != nil {
			value = ctx.MeetingAt.UTC().Format(timeLayout)
		}
	case FieldRescheduleLink:
		value = ctx.RescheduleLink
	case FieldMeetingLink:
		value = ctx.MeetingLink
	}
	return value, value != ""
}

func newBoundVariable(position int, field, value string, bound bool) models.BoundVariable {
	placeholder := fmt.Sprintf("{{%d}}", position)
	if !bound {
		value = placeholder
	}
	return models.BoundVariable{
		Position:    position,
		Placeholder: placeholder,
		Field:       field,
		Value:       value,
		Bound:       bound,
	}
}

var placeholderPattern = regexp.MustCompile(`\{\{(\d+)\}\}`)

// Render substitutes bound variables into a body. Unbound or unknown
// placeholders stay in the text so an operator can spot them.
func Render(body string, vars models.BoundVariableSet) string {
	byPosition := make(map[string]models.BoundVariable, len(vars))
	for _, v := range vars {
		byPosition[strconv.Itoa(v.Position)] = v
	}
	return placeholderPattern.ReplaceAllStringFunc(body, func(match string) string {
		position := placeholderPattern.FindStringSubmatch(match)[1]
		if v, ok := byPosition[position]; ok && v.Bound {
			return v.Value
		}
		return match
	})
}
