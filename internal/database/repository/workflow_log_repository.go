package repository

import (
	"context"
	"time"

	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/onegreenvn/booking-followup-backend/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WorkflowLogRepository struct {
	db *gorm.DB
}

func NewWorkflowLogRepository(db *gorm.DB) *WorkflowLogRepository {
	return &WorkflowLogRepository{db: db}
}

// WorkflowLogFilter narrows log listings; empty fields match everything
type WorkflowLogFilter struct {
	Status     string
	BookingID  string
	WorkflowID string
}

func (f WorkflowLogFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.BookingID != "" {
		db = db.Where("booking_id = ?", f.BookingID)
	}
	if f.WorkflowID != "" {
		db = db.Where("workflow_id = ?", f.WorkflowID)
	}
	return db
}

// CreateIfAbsent inserts the entry unless the dedup key
// (booking_id, workflow_id, step_order, attempt) already exists.
// The check and the insert are one statement, so concurrent callers
// cannot both win.
func (r *WorkflowLogRepository) CreateIfAbsent(ctx context.Context, log *models.WorkflowLog) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(log)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetByID retrieves a log entry by ID
func (r *WorkflowLogRepository) GetByID(ctx context.Context, id string) (*models.WorkflowLog, error) {
	var log models.WorkflowLog
	err := r.db.WithContext(ctx).First(&log, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// GetPaginated retrieves log entries matching the filter, soonest due first
func (r *WorkflowLogRepository) GetPaginated(ctx context.Context, filter WorkflowLogFilter, page, pageSize int) ([]*models.WorkflowLog, int, error) {
	var logs []*models.WorkflowLog
	var total int64

	err := filter.apply(r.db.WithContext(ctx).Model(&models.WorkflowLog{})).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = filter.apply(r.db.WithContext(ctx)).
		Order("scheduled_for DESC").
		Order("step_order ASC").
		Offset(utils.CalculateOffset(page, pageSize)).
		Limit(pageSize).
		Find(&logs).Error

	return logs, int(total), err
}

// GetAll retrieves every entry matching the filter
func (r *WorkflowLogRepository) GetAll(ctx context.Context, filter WorkflowLogFilter) ([]*models.WorkflowLog, error) {
	var logs []*models.WorkflowLog
	err := filter.apply(r.db.WithContext(ctx)).
		Order("scheduled_for ASC").
		Order("step_order ASC").
		Find(&logs).Error
	return logs, err
}

// CountByStatus returns entry counts keyed by status
func (r *WorkflowLogRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.WorkflowLog{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// BookingIDsWithLogs returns which of the given bookings already have
// at least one entry for the trigger action
func (r *WorkflowLogRepository) BookingIDsWithLogs(ctx context.Context, bookingIDs []string, triggerAction string) (map[string]bool, error) {
	found := make(map[string]bool)
	if len(bookingIDs) == 0 {
		return found, nil
	}

	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.WorkflowLog{}).
		Where("booking_id IN ? AND trigger_action = ?", bookingIDs, triggerAction).
		Distinct().
		Pluck("booking_id", &ids).Error
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		found[id] = true
	}
	return found, nil
}

// GetDue retrieves scheduled entries whose due time has passed and that
// no dispatcher currently holds a lease on
func (r *WorkflowLogRepository) GetDue(ctx context.Context, now time.Time, limit int) ([]*models.WorkflowLog, error) {
	var logs []*models.WorkflowLog
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_for <= ?", models.LogStatusScheduled, now).
		Where("(lease_until IS NULL OR lease_until < ?)", now).
		Order("scheduled_for ASC").
		Order("step_order ASC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// AcquireLease takes the dispatch lease on a scheduled entry
func (r *WorkflowLogRepository) AcquireLease(ctx context.Context, id, token string, now, until time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.WorkflowLog{}).
		Where("id = ? AND status = ?", id, models.LogStatusScheduled).
		Where("(lease_until IS NULL OR lease_until < ?)", now).
		Updates(map[string]interface{}{
			"lease_token": token,
			"lease_until": until,
		})
	return result.RowsAffected > 0, result.Error
}

// ReleaseLease drops a lease without changing the entry state
func (r *WorkflowLogRepository) ReleaseLease(ctx context.Context, id, token string) error {
	return r.db.WithContext(ctx).
		Model(&models.WorkflowLog{}).
		Where("id = ? AND lease_token = ?", id, token).
		Updates(map[string]interface{}{
			"lease_token": "",
			"lease_until": nil,
		}).Error
}

// MarkExecuted moves a leased scheduled entry to executed
func (r *WorkflowLogRepository) MarkExecuted(ctx context.Context, id, token string, executedAt time.Time, responseData models.JSON) (bool, error) {
	return r.finish(ctx, id, token, map[string]interface{}{
		"status":        models.LogStatusExecuted,
		"executed_at":   executedAt,
		"response_data": responseData,
	})
}

// MarkFailed moves a leased scheduled entry to failed
func (r *WorkflowLogRepository) MarkFailed(ctx context.Context, id, token, message string, details models.JSON) (bool, error) {
	return r.finish(ctx, id, token, map[string]interface{}{
		"status":        models.LogStatusFailed,
		"error":         message,
		"error_details": details,
	})
}

// finish applies a terminal transition; only a scheduled entry held by
// token can move, so a terminal entry is never rewritten
func (r *WorkflowLogRepository) finish(ctx context.Context, id, token string, fields map[string]interface{}) (bool, error) {
	fields["lease_until"] = nil
	result := r.db.WithContext(ctx).
		Model(&models.WorkflowLog{}).
		Where("id = ? AND status = ? AND lease_token = ?", id, models.LogStatusScheduled, token).
		Updates(fields)
	return result.RowsAffected > 0, result.Error
}

// DeleteUnsent removes a scheduled entry nobody holds a lease on
func (r *WorkflowLogRepository) DeleteUnsent(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND status = ? AND (lease_token IS NULL OR lease_token = '')", id, models.LogStatusScheduled).
		Delete(&models.WorkflowLog{})
	return result.RowsAffected > 0, result.Error
}

// NextAttempt returns the attempt number for a new record of the same step
func (r *WorkflowLogRepository) NextAttempt(ctx context.Context, bookingID, workflowID string, stepOrder int) (int, error) {
	var maxAttempt int
	err := r.db.WithContext(ctx).
		Model(&models.WorkflowLog{}).
		Where("booking_id = ? AND workflow_id = ? AND step_order = ?", bookingID, workflowID, stepOrder).
		Select("COALESCE(MAX(attempt), 0)").
		Scan(&maxAttempt).Error
	if err != nil {
		return 0, err
	}
	return maxAttempt + 1, nil
}
