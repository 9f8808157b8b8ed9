package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onegreenvn/booking-followup-backend/internal/database/repository"
	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/onegreenvn/booking-followup-backend/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// WorkflowLogService exposes the execution log and its operator actions
type WorkflowLogService struct {
	logRepo  *repository.WorkflowLogRepository
	dispatch *DispatchService
}

func NewWorkflowLogService(logRepo *repository.WorkflowLogRepository, dispatch *DispatchService) *WorkflowLogService {
	return &WorkflowLogService{
		logRepo:  logRepo,
		dispatch: dispatch,
	}
}

// ListLogs retrieves a page of log entries
func (s *WorkflowLogService) ListLogs(ctx context.Context, filter repository.WorkflowLogFilter, page, pageSize int) ([]*models.WorkflowLogResponse, utils.PaginationResponse, error) {
	page, pageSize = utils.ValidateAndNormalizePagination(page, pageSize)

	logs, total, err := s.logRepo.GetPaginated(ctx, filter, page, pageSize)
	if err != nil {
		return nil, utils.PaginationResponse{}, fmt.Errorf("failed to list workflow logs: %w", err)
	}

	responses := make([]*models.WorkflowLogResponse, len(logs))
	for i, log := range logs {
		responses[i] = ToLogResponse(log)
	}
	return responses, utils.CalculatePaginationInfo(total, page, pageSize), nil
}

// ExportLogs returns every entry matching the filter, for the xlsx export
func (s *WorkflowLogService) ExportLogs(ctx context.Context, filter repository.WorkflowLogFilter) ([]*models.WorkflowLog, error) {
	logs, err := s.logRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow logs: %w", err)
	}
	return logs, nil
}

// GetLog retrieves one entry
func (s *WorkflowLogService) GetLog(ctx context.Context, id string) (*models.WorkflowLogResponse, error) {
	log, err := s.getLog(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToLogResponse(log), nil
}

// Stats returns entry counts per status
func (s *WorkflowLogService) Stats(ctx context.Context) (*models.WorkflowLogStats, error) {
	counts, err := s.logRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count workflow logs: %w", err)
	}

	stats := &models.WorkflowLogStats{
		Scheduled: counts[models.LogStatusScheduled],
		Executed:  counts[models.LogStatusExecuted],
		Failed:    counts[models.LogStatusFailed],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

// SendNow dispatches a scheduled entry immediately, ignoring its due time.
// Terminal entries are rejected with ErrInvalidTransition.
func (s *WorkflowLogService) SendNow(ctx context.Context, id string) (*models.WorkflowLogResponse, error) {
	log, err := s.getLog(ctx, id)
	if err != nil {
		return nil, err
	}
	if log.Status != models.LogStatusScheduled {
		return nil, fmt.Errorf("%w: send-now requires a scheduled entry, got %s", ErrInvalidTransition, log.Status)
	}

	updated, err := s.dispatch.Dispatch(ctx, log)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"log_id": id, "status": updated.Status}).Info("Manual send finished")
	return ToLogResponse(updated), nil
}

// Retry re-attempts a failed entry. The failed entry is kept as-is; a new
// attempt record pointing back at it is created and dispatched. Only the
// latest attempt of a step can be retried.
func (s *WorkflowLogService) Retry(ctx context.Context, id string) (*models.WorkflowLogResponse, error) {
	original, err := s.getLog(ctx, id)
	if err != nil {
		return nil, err
	}
	if original.Status != models.LogStatusFailed {
		return nil, fmt.Errorf("%w: retry requires a failed entry, got %s", ErrInvalidTransition, original.Status)
	}
	if !s.dispatch.Available() {
		return nil, ErrDispatcherUnavailable
	}

	attempt, err := s.logRepo.NextAttempt(ctx, original.BookingID, original.WorkflowID, original.StepOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to compute next attempt: %w", err)
	}
	if attempt-1 != original.Attempt {
		return nil, fmt.Errorf("%w: entry %s was already retried (latest attempt %d)", ErrInvalidTransition, original.ID, attempt-1)
	}

	retry := &models.WorkflowLog{
		WorkflowID:    original.WorkflowID,
		BookingID:     original.BookingID,
		StepOrder:     original.StepOrder,
		Attempt:       attempt,
		RetryOfID:     original.ID,
		ClientEmail:   original.ClientEmail,
		ClientName:    original.ClientName,
		ClientPhone:   original.ClientPhone,
		TriggerAction: original.TriggerAction,
		Step:          original.Step,
		Variables:     original.Variables,
		Status:        models.LogStatusScheduled,
		ScheduledFor:  time.Now().UTC(),
	}

	created, err := s.logRepo.CreateIfAbsent(ctx, retry)
	if err != nil {
		return nil, fmt.Errorf("failed to create retry entry: %w", err)
	}
	if !created {
		return nil, fmt.Errorf("%w: attempt %d of entry %s already exists", ErrInvalidTransition, attempt, original.ID)
	}

	logrus.WithFields(logrus.Fields{
		"log_id":     retry.ID,
		"retry_of":   original.ID,
		"attempt":    attempt,
		"booking_id": retry.BookingID,
	}).Info("Retry attempt created")

	updated, err := s.dispatch.Dispatch(ctx, retry)
	if err != nil {
		if errors.Is(err, errNotLeased) {
			if _, delErr := s.logRepo.DeleteUnsent(ctx, retry.ID); delErr != nil {
				logrus.Errorf("Failed to remove unsent retry %s: %v", retry.ID, delErr)
			}
		}
		return nil, err
	}
	return ToLogResponse(updated), nil
}

func (s *WorkflowLogService) getLog(ctx context.Context, id string) (*models.WorkflowLog, error) {
	log, err := s.logRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, fmt.Errorf("failed to get workflow log: %w", err)
	}
	return log, nil
}

// ToLogResponse converts a log entry to its API shape
func ToLogResponse(log *models.WorkflowLog) *models.WorkflowLogResponse {
	resp := &models.WorkflowLogResponse{
		ID:            log.ID,
		WorkflowID:    log.WorkflowID,
		BookingID:     log.BookingID,
		Attempt:       log.Attempt,
		RetryOfID:     log.RetryOfID,
		ClientEmail:   log.ClientEmail,
		ClientName:    log.ClientName,
		ClientPhone:   log.ClientPhone,
		TriggerAction: log.TriggerAction,
		Step:          log.Step,
		Variables:     log.Variables,
		Status:        log.Status,
		ScheduledFor:  log.ScheduledFor.UTC().Format(time.RFC3339),
		Error:         log.Error,
		ErrorDetails:  log.ErrorDetails,
		ResponseData:  log.ResponseData,
		CreatedAt:     log.CreatedAt.UTC().Format(time.RFC3339),
	}
	if resp.Variables == nil {
		resp.Variables = models.BoundVariableSet{}
	}
	if log.ExecutedAt != nil {
		resp.ExecutedAt = log.ExecutedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
