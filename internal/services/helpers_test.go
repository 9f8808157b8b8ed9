package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/onegreenvn/booking-followup-backend/internal/database/dbtest"
	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeDispatcher struct {
	mu   sync.Mutex
	err  error
	sent []*models.WorkflowLog
}

func (d *fakeDispatcher) Send(_ context.Context, entry *models.WorkflowLog) (*DispatchReceipt, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, entry)
	if d.err != nil {
		return nil, d.err
	}
	return &DispatchReceipt{Provider: "fake", MessageID: entry.ID}, nil
}

func (d *fakeDispatcher) failWith(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

func (d *fakeDispatcher) sentCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

func newTestServices(t *testing.T) (*Services, *fakeDispatcher, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t)
	dispatcher := &fakeDispatcher{}
	return New(db, dispatcher, Options{BackfillConcurrency: 4}), dispatcher, db
}

func intPtr(n int) *int { return &n }

func boolPtr(b bool) *bool { return &b }

func whatsappStep(daysAfter int, templateID string) models.WorkflowStepRequest {
	return models.WorkflowStepRequest{
		Channel:    models.ChannelWhatsApp,
		DaysAfter:  daysAfter,
		TemplateID: templateID,
	}
}

func createWorkflow(t *testing.T, svcs *Services, trigger string, steps ...models.WorkflowStepRequest) *models.WorkflowResponse {
	t.Helper()
	wf, err := svcs.Workflows.CreateWorkflow(context.Background(), &models.CreateWorkflowRequest{
		Name:          "wf " + trigger,
		TriggerAction: trigger,
		Steps:         steps,
	})
	require.NoError(t, err)
	return wf
}

func createBooking(t *testing.T, db *gorm.DB, id, status string, changedAt time.Time) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		ID:              id,
		ClientName:      "Client " + id,
		ClientEmail:     id + "@example.com",
		ClientPhone:     "+1555" + id,
		Status:          status,
		RescheduleLink:  "https://book.example.com/r/" + id,
		StatusChangedAt: &changedAt,
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}

func allLogs(t *testing.T, db *gorm.DB) []models.WorkflowLog {
	t.Helper()
	var logs []models.WorkflowLog
	require.NoError(t, db.Order("booking_id, step_order, attempt").Find(&logs).Error)
	return logs
}

func noShowEvent(bookingID string, at time.Time) LifecycleEvent {
	return LifecycleEvent{
		BookingID:      bookingID,
		TriggerAction:  models.TriggerNoShow,
		EventTimestamp: at,
		Contact: models.ClientContact{
			Name:  "Jane Doe",
			Email: "jane@example.com",
			Phone: "+15550001",
		},
	}
}
