package services

import (
	"context"
	"testing"

	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingUpsertFeedsBackfill(t *testing.T) {
	svcs, dispatcher, db := newTestServices(t)
	ctx := context.Background()
	createWorkflow(t, svcs, models.TriggerNoShow, whatsappStep(0, "noshow_followup"))

	req := &models.UpsertBookingRequest{
		BookingSnapshot: models.BookingSnapshot{
			ClientName:  "Jane Doe",
			ClientEmail: "jane@example.com",
			ClientPhone: "+15550001",
		},
		Status:          models.BookingStatusNoShow,
		StatusChangedAt: &jan1,
	}
	booking, err := svcs.Bookings.Upsert(ctx, "bk_1", req)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", booking.ClientName)
	require.NotNil(t, booking.StatusChangedAt)
	assert.True(t, booking.StatusChangedAt.Equal(jan1))

	// syncing alone schedules nothing
	assert.Empty(t, allLogs(t, db))

	req.ClientPhone = "+15550002"
	_, err = svcs.Bookings.Upsert(ctx, "bk_1", req)
	require.NoError(t, err)

	result, err := svcs.Backfill.TriggerByStatus(ctx, models.BookingStatusNoShow, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)

	logs := allLogs(t, db)
	require.Len(t, logs, 1)
	assert.Equal(t, "+15550002", logs[0].ClientPhone)
	assert.True(t, logs[0].ScheduledFor.Equal(jan1))
	assert.Zero(t, dispatcher.sentCount())
}

func TestBookingUpsertValidation(t *testing.T) {
	svcs, _, _ := newTestServices(t)
	ctx := context.Background()

	_, err := svcs.Bookings.Upsert(ctx, "bk_1", &models.UpsertBookingRequest{Status: "lost"})
	assert.True(t, IsValidationError(err))

	_, err = svcs.Bookings.Upsert(ctx, "", &models.UpsertBookingRequest{Status: models.BookingStatusScheduled})
	assert.True(t, IsValidationError(err))

	_, err = svcs.Bookings.Get(ctx, "bk_missing")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
