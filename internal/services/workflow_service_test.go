package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWorkflowSortsStepsByOrder(t *testing.T) {
	svcs, _, _ := newTestServices(t)
	ctx := context.Background()

	wf, err := svcs.Workflows.CreateWorkflow(ctx, &models.CreateWorkflowRequest{
		Name:          "No-show recovery",
		TriggerAction: models.TriggerNoShow,
		Steps: []models.WorkflowStepRequest{
			{Order: intPtr(1), Channel: models.ChannelEmail, DaysAfter: 3, TemplateID: "noshow_followup_email"},
			{Order: intPtr(0), Channel: models.ChannelWhatsApp, DaysAfter: 1, TemplateID: "noshow_followup"},
		},
	})
	require.NoError(t, err)

	assert.True(t, wf.IsActive)
	require.Len(t, wf.Steps, 2)
	assert.Equal(t, 0, wf.Steps[0].Order)
	assert.Equal(t, "noshow_followup", wf.Steps[0].TemplateID)
	assert.Equal(t, 1, wf.Steps[1].Order)

	loaded, err := svcs.Workflows.GetWorkflow(ctx, wf.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Steps, 2)
	assert.Equal(t, models.ChannelWhatsApp, loaded.Steps[0].Channel)
	assert.Equal(t, models.ChannelEmail, loaded.Steps[1].Channel)
}

func TestCreateWorkflowDefaultsOrderToPosition(t *testing.T) {
	svcs, _, _ := newTestServices(t)

	wf := createWorkflow(t, svcs, models.TriggerCancel,
		models.WorkflowStepRequest{Channel: models.ChannelEmail, TemplateID: "cancellation_winback"},
		models.WorkflowStepRequest{Channel: models.ChannelEmail, DaysAfter: 7, TemplateID: "session_feedback"},
	)

	require.Len(t, wf.Steps, 2)
	assert.Equal(t, 0, wf.Steps[0].Order)
	assert.Equal(t, 1, wf.Steps[1].Order)
	assert.Equal(t, 7, wf.Steps[1].DaysAfter)
}

func TestCreateWorkflowRejectsInvalidDefinitions(t *testing.T) {
	tests := []struct {
		name  string
		req   *models.CreateWorkflowRequest
		field string
	}{
		{
			name:  "no steps",
			req:   &models.CreateWorkflowRequest{TriggerAction: models.TriggerNoShow},
			field: "CreateWorkflowRequest.Steps",
		},
		{
			name: "unknown trigger",
			req: &models.CreateWorkflowRequest{
				TriggerAction: "rebooked",
				Steps:         []models.WorkflowStepRequest{whatsappStep(0, "noshow_followup")},
			},
			field: "CreateWorkflowRequest.TriggerAction",
		},
		{
			name: "missing template id",
			req: &models.CreateWorkflowRequest{
				TriggerAction: models.TriggerNoShow,
				Steps:         []models.WorkflowStepRequest{{Channel: models.ChannelWhatsApp}},
			},
			field: "CreateWorkflowRequest.Steps[0].TemplateID",
		},
		{
			name: "unknown channel",
			req: &models.CreateWorkflowRequest{
				TriggerAction: models.TriggerNoShow,
				Steps:         []models.WorkflowStepRequest{{Channel: "sms", TemplateID: "noshow_followup"}},
			},
			field: "CreateWorkflowRequest.Steps[0].Channel",
		},
		{
			name: "negative days after",
			req: &models.CreateWorkflowRequest{
				TriggerAction: models.TriggerNoShow,
				Steps:         []models.WorkflowStepRequest{whatsappStep(-1, "noshow_followup")},
			},
			field: "CreateWorkflowRequest.Steps[0].DaysAfter",
		},
		{
			name: "duplicate order",
			req: &models.CreateWorkflowRequest{
				TriggerAction: models.TriggerNoShow,
				Steps: []models.WorkflowStepRequest{
					{Order: intPtr(0), Channel: models.ChannelWhatsApp, TemplateID: "noshow_followup"},
					{Order: intPtr(0), Channel: models.ChannelWhatsApp, TemplateID: "noshow_followup"},
				},
			},
			field: "steps[1].order",
		},
		{
			name: "order out of range",
			req: &models.CreateWorkflowRequest{
				TriggerAction: models.TriggerNoShow,
				Steps: []models.WorkflowStepRequest{
					{Order: intPtr(0), Channel: models.ChannelWhatsApp, TemplateID: "noshow_followup"},
					{Order: intPtr(2), Channel: models.ChannelWhatsApp, TemplateID: "noshow_followup"},
				},
			},
			field: "steps[1].order",
		},
		{
			name: "order on some steps only",
			req: &models.CreateWorkflowRequest{
				TriggerAction: models.TriggerNoShow,
				Steps: []models.WorkflowStepRequest{
					{Order: intPtr(0), Channel: models.ChannelWhatsApp, TemplateID: "noshow_followup"},
					{Channel: models.ChannelWhatsApp, TemplateID: "noshow_followup"},
				},
			},
			field: "steps",
		},
		{
			name: "template on the wrong channel",
			req: &models.CreateWorkflowRequest{
				TriggerAction: models.TriggerNoShow,
				Steps:         []models.WorkflowStepRequest{{Channel: models.ChannelEmail, TemplateID: "noshow_followup"}},
			},
			field: "steps[0].template_id",
		},
		{
			name: "computed template without config",
			req: &models.CreateWorkflowRequest{
				TriggerAction: models.TriggerComplete,
				Steps:         []models.WorkflowStepRequest{whatsappStep(0, "finalkk")},
			},
			field: "steps[0].template_config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcs, _, _ := newTestServices(t)
			ctx := context.Background()

			_, err := svcs.Workflows.CreateWorkflow(ctx, tt.req)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			fields := make([]string, len(verr.Fields))
			for i, f := range verr.Fields {
				fields[i] = f.Field
			}
			assert.Contains(t, fields, tt.field)
			assert.True(t, IsValidationError(err))

			all, err := svcs.Workflows.ListWorkflows(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestCreateWorkflowInactive(t *testing.T) {
	svcs, _, _ := newTestServices(t)
	ctx := context.Background()

	wf, err := svcs.Workflows.CreateWorkflow(ctx, &models.CreateWorkflowRequest{
		TriggerAction: models.TriggerNoShow,
		IsActive:      boolPtr(false),
		Steps:         []models.WorkflowStepRequest{whatsappStep(1, "noshow_followup")},
	})
	require.NoError(t, err)
	assert.False(t, wf.IsActive)

	active, err := svcs.Workflows.ActiveWorkflows(ctx, models.TriggerNoShow)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestUpdateWorkflowReplacesSteps(t *testing.T) {
	svcs, _, _ := newTestServices(t)
	ctx := context.Background()
	wf := createWorkflow(t, svcs, models.TriggerNoShow, whatsappStep(1, "noshow_followup"))

	name := "Renamed"
	steps := []models.WorkflowStepRequest{
		whatsappStep(0, "noshow_followup"),
		{
			Channel:        models.ChannelWhatsApp,
			DaysAfter:      2,
			TemplateID:     "finalkk",
			TemplateConfig: &models.TemplateConfig{PlanName: "PRIME", PlanAmount: 119, Days: 7},
		},
	}
	updated, err := svcs.Workflows.UpdateWorkflow(ctx, wf.ID, &models.UpdateWorkflowRequest{
		Name:  &name,
		Steps: &steps,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, models.TriggerNoShow, updated.TriggerAction)
	assert.True(t, updated.IsActive)
	require.Len(t, updated.Steps, 2)
	assert.Equal(t, "finalkk", updated.Steps[1].TemplateID)
	require.NotNil(t, updated.Steps[1].TemplateConfig)
	assert.Equal(t, "PRIME", updated.Steps[1].TemplateConfig.PlanName)
}

func TestUpdateWorkflowRejectsInvalidStepsAndKeepsOld(t *testing.T) {
	svcs, _, _ := newTestServices(t)
	ctx := context.Background()
	wf := createWorkflow(t, svcs, models.TriggerNoShow, whatsappStep(1, "noshow_followup"))

	empty := []models.WorkflowStepRequest{}
	_, err := svcs.Workflows.UpdateWorkflow(ctx, wf.ID, &models.UpdateWorkflowRequest{Steps: &empty})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	loaded, err := svcs.Workflows.GetWorkflow(ctx, wf.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Steps, 1)
	assert.Equal(t, 1, loaded.Steps[0].DaysAfter)
}

func TestUpdateWorkflowActivationOnly(t *testing.T) {
	svcs, _, _ := newTestServices(t)
	ctx := context.Background()
	wf := createWorkflow(t, svcs, models.TriggerNoShow, whatsappStep(1, "noshow_followup"))

	updated, err := svcs.Workflows.UpdateWorkflow(ctx, wf.ID, &models.UpdateWorkflowRequest{IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Len(t, updated.Steps, 1)

	updated, err = svcs.Workflows.UpdateWorkflow(ctx, wf.ID, &models.UpdateWorkflowRequest{IsActive: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
}

func TestWorkflowNotFound(t *testing.T) {
	svcs, _, _ := newTestServices(t)
	ctx := context.Background()

	_, err := svcs.Workflows.GetWorkflow(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrWorkflowNotFound)

	_, err = svcs.Workflows.SetActive(ctx, "00000000-0000-0000-0000-000000000000", true)
	assert.ErrorIs(t, err, ErrWorkflowNotFound)

	err = svcs.Workflows.DeleteWorkflow(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
	assert.True(t, IsNotFound(err))
}

func TestDeleteWorkflowKeepsLogs(t *testing.T) {
	svcs, _, db := newTestServices(t)
	ctx := context.Background()
	wf := createWorkflow(t, svcs, models.TriggerNoShow, whatsappStep(1, "noshow_followup"))

	_, err := svcs.Scheduler.Schedule(ctx, noShowEvent("bk_1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	require.NoError(t, svcs.Workflows.DeleteWorkflow(ctx, wf.ID))

	_, err = svcs.Workflows.GetWorkflow(ctx, wf.ID)
	assert.ErrorIs(t, err, ErrWorkflowNotFound)

	var stepCount int64
	require.NoError(t, db.Model(&models.WorkflowStep{}).Count(&stepCount).Error)
	assert.Zero(t, stepCount)

	logs := allLogs(t, db)
	require.Len(t, logs, 1)
	assert.Equal(t, wf.ID, logs[0].WorkflowID)
	assert.Equal(t, models.LogStatusScheduled, logs[0].Status)
}
