package services

import (
	"testing"
	"time"

	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveComputedPlanConfig(t *testing.T) {
	r := NewTemplateVariableResolver(DefaultTemplates()...)

	vars, err := r.Resolve("finalkk", TemplateContext{
		ClientName:    "Jane Doe",
		ReferenceTime: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Config:        &models.TemplateConfig{PlanName: "PRIME", PlanAmount: 119, Days: 7},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Jane Doe", "PRIME", "2024-03-08"}, vars.Values())
	for i, v := range vars {
		assert.Equal(t, i+1, v.Position)
		assert.True(t, v.Bound)
	}
}

func TestResolveComputedUsesUTCDate(t *testing.T) {
	r := NewTemplateVariableResolver(DefaultTemplates()...)
	// 23:30 at UTC-5 is already the next day in UTC
	ref := time.Date(2024, 2, 29, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))

	vars, err := r.Resolve("finalkk", TemplateContext{
		ClientName:    "Jane",
		ReferenceTime: ref,
		Config:        &models.TemplateConfig{PlanName: "PRIME", Days: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", vars[2].Value)
}

func TestResolveComputedWithoutConfigLeavesPlaceholders(t *testing.T) {
	r := NewTemplateVariableResolver(DefaultTemplates()...)

	vars, err := r.Resolve("finalkk", TemplateContext{ClientName: "Jane Doe"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Jane Doe", "{{2}}", "{{3}}"}, vars.Values())
	assert.False(t, vars[1].Bound)
	assert.False(t, vars[2].Bound)
}

func TestResolveDirectMapping(t *testing.T) {
	r := NewTemplateVariableResolver(DefaultTemplates()...)
	meeting := time.Date(2025, 1, 9, 10, 30, 0, 0, time.UTC)

	vars, err := r.Resolve("meeting_rescheduled", TemplateContext{
		ClientName: "Jane Doe",
		MeetingAt:  &meeting,
	})
	require.NoError(t, err)

	require.Len(t, vars, 4)
	assert.Equal(t, "Jane Doe", vars[0].Value)
	assert.Equal(t, "2025-01-09", vars[1].Value)
	assert.Equal(t, "10:30", vars[2].Value)
	// meeting link was not supplied
	assert.Equal(t, "{{4}}", vars[3].Value)
	assert.False(t, vars[3].Bound)
	assert.Equal(t, FieldMeetingLink, vars[3].Field)
}

func TestResolvePlanCost(t *testing.T) {
	r := NewTemplateVariableResolver(DefaultTemplates()...)

	vars, err := r.Resolve("payment_reminder", TemplateContext{
		ClientName: "Jane",
		PlanName:   "PRIME",
		PlanAmount: 119.5,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane", "119.5", "PRIME"}, vars.Values())
}

func TestResolveUnknownTemplate(t *testing.T) {
	r := NewTemplateVariableResolver(DefaultTemplates()...)

	vars, err := r.Resolve("not_registered", TemplateContext{ClientName: "Jane"})
	require.NoError(t, err)
	assert.NotNil(t, vars)
	assert.Empty(t, vars)
}

func TestRequiresConfig(t *testing.T) {
	r := NewTemplateVariableResolver(DefaultTemplates()...)

	assert.True(t, r.RequiresConfig("finalkk"))
	assert.False(t, r.RequiresConfig("noshow_followup"))
	assert.False(t, r.RequiresConfig("unknown"))
}

func TestListTemplates(t *testing.T) {
	r := NewTemplateVariableResolver(DefaultTemplates()...)

	email := r.List(models.ChannelEmail)
	require.NotEmpty(t, email)
	for _, info := range email {
		assert.Equal(t, models.ChannelEmail, info.Channel)
	}

	all := r.List("")
	assert.Len(t, all, len(DefaultTemplates()))
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].TemplateID, all[i].TemplateID)
	}
}

func TestRender(t *testing.T) {
	vars := models.BoundVariableSet{
		{Position: 1, Placeholder: "{{1}}", Value: "Jane", Bound: true},
		{Position: 2, Placeholder: "{{2}}", Value: "{{2}}", Bound: false},
	}

	out := Render("Hi {{1}}, book again at {{2}}. Ref {{3}}", vars)
	assert.Equal(t, "Hi Jane, book again at {{2}}. Ref {{3}}", out)
}
