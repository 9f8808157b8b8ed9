package repository

import (
	"context"
	"testing"
	"time"

	"github.com/onegreenvn/booking-followup-backend/internal/database/dbtest"
	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newEntry(bookingID string, stepOrder, attempt int, scheduledFor time.Time) *models.WorkflowLog {
	return &models.WorkflowLog{
		WorkflowID:    "7f9c1c1e-0a52-4d4b-9d0f-3a5c2f1f0a01",
		BookingID:     bookingID,
		StepOrder:     stepOrder,
		Attempt:       attempt,
		TriggerAction: models.TriggerNoShow,
		Step:          models.StepSnapshot{Channel: models.ChannelWhatsApp, TemplateID: "noshow_followup", Order: stepOrder},
		Status:        models.LogStatusScheduled,
		ScheduledFor:  scheduledFor,
	}
}

func TestCreateIfAbsentDedups(t *testing.T) {
	repo := NewWorkflowLogRepository(dbtest.Open(t))
	ctx := context.Background()

	created, err := repo.CreateIfAbsent(ctx, newEntry("bk_1", 0, 1, base))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateIfAbsent(ctx, newEntry("bk_1", 0, 1, base.Add(time.Hour)))
	require.NoError(t, err)
	assert.False(t, created)

	// a different attempt is a different key
	created, err = repo.CreateIfAbsent(ctx, newEntry("bk_1", 0, 2, base))
	require.NoError(t, err)
	assert.True(t, created)

	logs, err := repo.GetAll(ctx, WorkflowLogFilter{BookingID: "bk_1"})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.True(t, logs[0].ScheduledFor.Equal(base))
}

func TestLeaseGuardsTerminalTransition(t *testing.T) {
	repo := NewWorkflowLogRepository(dbtest.Open(t))
	ctx := context.Background()
	entry := newEntry("bk_1", 0, 1, base)
	_, err := repo.CreateIfAbsent(ctx, entry)
	require.NoError(t, err)

	now := time.Now().UTC()
	ok, err := repo.AcquireLease(ctx, entry.ID, "token-a", now, now.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, ok)

	// a live lease blocks a second dispatcher
	ok, err = repo.AcquireLease(ctx, entry.ID, "token-b", now, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	moved, err := repo.MarkExecuted(ctx, entry.ID, "token-b", now, models.JSON{"provider": "x"})
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = repo.MarkExecuted(ctx, entry.ID, "token-a", now, models.JSON{"provider": "x"})
	require.NoError(t, err)
	assert.True(t, moved)

	// terminal entries never move again
	moved, err = repo.MarkFailed(ctx, entry.ID, "token-a", "late failure", nil)
	require.NoError(t, err)
	assert.False(t, moved)

	ok, err = repo.AcquireLease(ctx, entry.ID, "token-c", now.Add(time.Hour), now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LogStatusExecuted, stored.Status)
	assert.Empty(t, stored.Error)
	require.NotNil(t, stored.ExecutedAt)
	assert.Equal(t, "x", stored.ResponseData["provider"])
}

func TestExpiredLeaseCanBeTaken(t *testing.T) {
	repo := NewWorkflowLogRepository(dbtest.Open(t))
	ctx := context.Background()
	entry := newEntry("bk_1", 0, 1, base)
	_, err := repo.CreateIfAbsent(ctx, entry)
	require.NoError(t, err)

	now := time.Now().UTC()
	ok, err := repo.AcquireLease(ctx, entry.ID, "token-a", now.Add(-time.Hour), now.Add(-time.Minute))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.AcquireLease(ctx, entry.ID, "token-b", now, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	moved, err := repo.MarkFailed(ctx, entry.ID, "token-a", "stale", nil)
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestReleaseLease(t *testing.T) {
	repo := NewWorkflowLogRepository(dbtest.Open(t))
	ctx := context.Background()
	entry := newEntry("bk_1", 0, 1, base)
	_, err := repo.CreateIfAbsent(ctx, entry)
	require.NoError(t, err)

	now := time.Now().UTC()
	ok, err := repo.AcquireLease(ctx, entry.ID, "token-a", now, now.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.ReleaseLease(ctx, entry.ID, "token-a"))

	due, err := repo.GetDue(ctx, now, 10)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestDeleteUnsent(t *testing.T) {
	repo := NewWorkflowLogRepository(dbtest.Open(t))
	ctx := context.Background()
	free := newEntry("bk_1", 0, 1, base)
	held := newEntry("bk_1", 1, 1, base)
	done := newEntry("bk_1", 2, 1, base)
	for _, entry := range []*models.WorkflowLog{free, held, done} {
		_, err := repo.CreateIfAbsent(ctx, entry)
		require.NoError(t, err)
	}

	now := time.Now().UTC()
	for _, entry := range []*models.WorkflowLog{held, done} {
		ok, err := repo.AcquireLease(ctx, entry.ID, "token-a", now, now.Add(time.Minute))
		require.NoError(t, err)
		require.True(t, ok)
	}
	moved, err := repo.MarkExecuted(ctx, done.ID, "token-a", now, models.JSON{"provider": "x"})
	require.NoError(t, err)
	require.True(t, moved)

	deleted, err := repo.DeleteUnsent(ctx, free.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	for _, entry := range []*models.WorkflowLog{held, done} {
		deleted, err = repo.DeleteUnsent(ctx, entry.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	}

	_, err = repo.GetByID(ctx, free.ID)
	assert.Error(t, err)
}

func TestGetDue(t *testing.T) {
	repo := NewWorkflowLogRepository(dbtest.Open(t))
	ctx := context.Background()

	for _, e := range []*models.WorkflowLog{
		newEntry("bk_1", 0, 1, base),
		newEntry("bk_1", 1, 1, base.AddDate(0, 0, 7)),
		newEntry("bk_2", 0, 1, base.Add(time.Hour)),
	} {
		_, err := repo.CreateIfAbsent(ctx, e)
		require.NoError(t, err)
	}

	// the boundary is inclusive
	due, err := repo.GetDue(ctx, base.Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "bk_1", due[0].BookingID)
	assert.Equal(t, "bk_2", due[1].BookingID)

	due, err = repo.GetDue(ctx, base.AddDate(0, 0, 30), 2)
	require.NoError(t, err)
	assert.Len(t, due, 2)
}

func TestNextAttempt(t *testing.T) {
	repo := NewWorkflowLogRepository(dbtest.Open(t))
	ctx := context.Background()
	wfID := newEntry("", 0, 0, base).WorkflowID

	next, err := repo.NextAttempt(ctx, "bk_1", wfID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	for attempt := 1; attempt <= 2; attempt++ {
		_, err := repo.CreateIfAbsent(ctx, newEntry("bk_1", 0, attempt, base))
		require.NoError(t, err)
	}

	next, err = repo.NextAttempt(ctx, "bk_1", wfID, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, next)

	next, err = repo.NextAttempt(ctx, "bk_1", wfID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestBookingIDsWithLogsAndCounts(t *testing.T) {
	repo := NewWorkflowLogRepository(dbtest.Open(t))
	ctx := context.Background()

	_, err := repo.CreateIfAbsent(ctx, newEntry("bk_1", 0, 1, base))
	require.NoError(t, err)
	_, err = repo.CreateIfAbsent(ctx, newEntry("bk_1", 1, 1, base))
	require.NoError(t, err)
	cancel := newEntry("bk_2", 0, 1, base)
	cancel.TriggerAction = models.TriggerCancel
	_, err = repo.CreateIfAbsent(ctx, cancel)
	require.NoError(t, err)

	found, err := repo.BookingIDsWithLogs(ctx, []string{"bk_1", "bk_2", "bk_3"}, models.TriggerNoShow)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"bk_1": true}, found)

	found, err = repo.BookingIDsWithLogs(ctx, nil, models.TriggerNoShow)
	require.NoError(t, err)
	assert.Empty(t, found)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[models.LogStatusScheduled])

	page, total, err := repo.GetPaginated(ctx, WorkflowLogFilter{Status: models.LogStatusScheduled}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 1)
}
