package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingsByStatusPartitions(t *testing.T) {
	svcs, _, db := newTestServices(t)
	ctx := context.Background()
	createWorkflow(t, svcs, models.TriggerNoShow, whatsappStep(1, "noshow_followup"))
	createBooking(t, db, "bk_1", models.BookingStatusNoShow, jan1)
	createBooking(t, db, "bk_2", models.BookingStatusNoShow, jan1)
	createBooking(t, db, "bk_3", models.BookingStatusCompleted, jan1)

	_, err := svcs.Scheduler.Schedule(ctx, noShowEvent("bk_1", jan1))
	require.NoError(t, err)

	resp, err := svcs.Backfill.BookingsByStatus(ctx, models.BookingStatusNoShow)
	require.NoError(t, err)
	assert.Equal(t, models.TriggerNoShow, resp.TriggerAction)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 1, resp.ActiveWorkflows)
	require.Len(t, resp.WithScheduledWorkflows, 1)
	assert.Equal(t, "bk_1", resp.WithScheduledWorkflows[0].ID)
	require.Len(t, resp.WithoutScheduledWorkflows, 1)
	assert.Equal(t, "bk_2", resp.WithoutScheduledWorkflows[0].ID)
	assert.Equal(t, 1, resp.WithScheduledWorkflowsCount)
	assert.Equal(t, 1, resp.WithoutScheduledCount)

	// the dry run writes nothing
	assert.Len(t, allLogs(t, db), 1)
}

func TestBookingsByStatusUnknownStatus(t *testing.T) {
	svcs, _, _ := newTestServices(t)

	_, err := svcs.Backfill.BookingsByStatus(context.Background(), models.BookingStatusScheduled)
	assert.ErrorIs(t, err, ErrUnknownBookingStatus)

	_, err = svcs.Backfill.TriggerByStatus(context.Background(), "lost", true)
	assert.ErrorIs(t, err, ErrUnknownBookingStatus)
}

func TestTriggerByStatusConverges(t *testing.T) {
	svcs, dispatcher, db := newTestServices(t)
	ctx := context.Background()
	createWorkflow(t, svcs, models.TriggerNoShow, whatsappStep(1, "noshow_followup"), whatsappStep(3, "noshow_followup"))
	for i := 1; i <= 3; i++ {
		createBooking(t, db, fmt.Sprintf("bk_%d", i), models.BookingStatusNoShow, jan1)
	}

	first, err := svcs.Backfill.TriggerByStatus(ctx, models.BookingStatusNoShow, true)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Total)
	assert.Equal(t, 3, first.Processed)
	assert.Equal(t, 6, first.Created)
	assert.Empty(t, first.Errors)

	second, err := svcs.Backfill.TriggerByStatus(ctx, models.BookingStatusNoShow, true)
	require.NoError(t, err)
	assert.Zero(t, second.Total)
	assert.Zero(t, second.Processed)
	assert.Zero(t, second.Created)

	// without skip the bookings are revisited but dedup holds
	third, err := svcs.Backfill.TriggerByStatus(ctx, models.BookingStatusNoShow, false)
	require.NoError(t, err)
	assert.Equal(t, 3, third.Total)
	assert.Zero(t, third.Processed)
	assert.Equal(t, 3, third.Skipped)
	assert.Zero(t, third.Created)

	assert.Len(t, allLogs(t, db), 6)
	assert.Zero(t, dispatcher.sentCount())
}

func TestTriggerByStatusUsesTransitionTime(t *testing.T) {
	svcs, _, db := newTestServices(t)
	ctx := context.Background()
	createWorkflow(t, svcs, models.TriggerNoShow, whatsappStep(7, "noshow_followup"))
	createBooking(t, db, "bk_1", models.BookingStatusNoShow, jan1)

	_, err := svcs.Backfill.TriggerByStatus(ctx, models.BookingStatusNoShow, true)
	require.NoError(t, err)

	logs := allLogs(t, db)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].ScheduledFor.Equal(jan1.AddDate(0, 0, 7)), "got %s", logs[0].ScheduledFor)
	assert.Equal(t, "bk_1@example.com", logs[0].ClientEmail)
}

func TestTriggerByStatusIsolatesFailingBooking(t *testing.T) {
	svcs, _, db := newTestServices(t)
	ctx := context.Background()
	createWorkflow(t, svcs, models.TriggerNoShow, whatsappStep(1, "noshow_followup"))
	for i := 1; i <= 10; i++ {
		booking := createBooking(t, db, fmt.Sprintf("bk_%02d", i), models.BookingStatusNoShow, jan1)
		if i == 4 {
			require.NoError(t, db.Model(booking).Update("client_phone", "").Error)
		}
	}

	result, err := svcs.Backfill.TriggerByStatus(ctx, models.BookingStatusNoShow, true)
	require.NoError(t, err)
	assert.Equal(t, 10, result.Total)
	assert.Equal(t, 9, result.Processed)
	assert.Equal(t, 9, result.Created)
	assert.Zero(t, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "bk_04", result.Errors[0].BookingID)
	assert.Equal(t, "bk_04@example.com", result.Errors[0].ClientEmail)
	assert.Contains(t, result.Errors[0].Error, "step 0")

	assert.Len(t, allLogs(t, db), 9)
}

func TestBackfillRacingLiveTrigger(t *testing.T) {
	svcs, _, db := newTestServices(t)
	ctx := context.Background()
	createWorkflow(t, svcs, models.TriggerNoShow,
		whatsappStep(0, "noshow_followup"),
		whatsappStep(2, "noshow_followup"),
		whatsappStep(5, "noshow_followup"),
	)
	booking := createBooking(t, db, "bk_1", models.BookingStatusNoShow, jan1)
	event, err := EventForBooking(booking)
	require.NoError(t, err)

	var wg sync.WaitGroup
	created := make([]int, 6)
	errs := make([]error, 6)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				result, err := svcs.Scheduler.Schedule(ctx, event)
				errs[i] = err
				if result != nil {
					created[i] = result.Created
				}
				return
			}
			result, err := svcs.Backfill.TriggerByStatus(ctx, models.BookingStatusNoShow, false)
			errs[i] = err
			if result != nil {
				created[i] = result.Created
			}
		}(i)
	}
	wg.Wait()

	total := 0
	for i := range created {
		require.NoError(t, errs[i])
		total += created[i]
	}
	assert.Equal(t, 3, total)

	logs := allLogs(t, db)
	require.Len(t, logs, 3)
	for i, log := range logs {
		assert.Equal(t, i, log.StepOrder)
		assert.Equal(t, 1, log.Attempt)
	}
}
