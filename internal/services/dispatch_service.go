package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/onegreenvn/booking-followup-backend/internal/database/repository"
	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dispatcher hands a due entry to the message provider.
// A returned *DispatchError carries provider details onto the failed entry.
type Dispatcher interface {
	Send(ctx context.Context, entry *models.WorkflowLog) (*DispatchReceipt, error)
}

// DispatchReceipt is the provider acknowledgement stored as response data
type DispatchReceipt struct {
	Provider  string
	MessageID string
	Metadata  map[string]interface{}
}

func (r *DispatchReceipt) responseData() models.JSON {
	data := models.JSON{}
	if r == nil {
		return data
	}
	for k, v := range r.Metadata {
		data[k] = v
	}
	if r.Provider != "" {
		data["provider"] = r.Provider
	}
	if r.MessageID != "" {
		data["message_id"] = r.MessageID
	}
	return data
}

// DispatchStats summarizes one sweep over due entries
type DispatchStats struct {
	Due      int `json:"due"`
	Executed int `json:"executed"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
}

// DispatchService moves scheduled entries to a terminal state through the dispatcher
type DispatchService struct {
	logRepo    *repository.WorkflowLogRepository
	dispatcher Dispatcher
	events     *LogEventHub
	lease      time.Duration
	batchSize  int
	now        func() time.Time
}

func NewDispatchService(logRepo *repository.WorkflowLogRepository, dispatcher Dispatcher, lease time.Duration, batchSize int) *DispatchService {
	if lease <= 0 {
		lease = 5 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &DispatchService{
		logRepo:    logRepo,
		dispatcher: dispatcher,
		lease:      lease,
		batchSize:  batchSize,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Available reports whether a dispatcher is configured
func (s *DispatchService) Available() bool {
	return s.dispatcher != nil
}

// Dispatch sends one scheduled entry regardless of its due time and records
// the outcome. A provider failure is recorded on the entry, not returned.
// ErrInvalidTransition means the entry is terminal or held by another dispatcher.
func (s *DispatchService) Dispatch(ctx context.Context, entry *models.WorkflowLog) (*models.WorkflowLog, error) {
	if entry.Status != models.LogStatusScheduled {
		return nil, fmt.Errorf("%w: entry %s is %s", ErrInvalidTransition, entry.ID, entry.Status)
	}
	if s.dispatcher == nil {
		return nil, ErrDispatcherUnavailable
	}

	now := s.now()
	token := uuid.NewString()
	acquired, err := s.logRepo.AcquireLease(ctx, entry.ID, token, now, now.Add(s.lease))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errNotLeased, err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w: %w: entry %s", ErrInvalidTransition, errNotLeased, entry.ID)
	}

	receipt, sendErr := s.dispatcher.Send(ctx, entry)

	var moved bool
	if sendErr != nil {
		message, details := describeDispatchError(sendErr)
		moved, err = s.logRepo.MarkFailed(ctx, entry.ID, token, message, details)
		captureDispatchError(entry, sendErr)
		logrus.WithFields(logrus.Fields{
			"log_id":     entry.ID,
			"booking_id": entry.BookingID,
			"channel":    entry.Step.Channel,
		}).Warnf("Dispatch failed: %v", sendErr)
	} else {
		moved, err = s.logRepo.MarkExecuted(ctx, entry.ID, token, s.now(), receipt.responseData())
		logrus.WithFields(logrus.Fields{
			"log_id":     entry.ID,
			"booking_id": entry.BookingID,
			"channel":    entry.Step.Channel,
		}).Info("Dispatch succeeded")
	}
	if err != nil {
		if releaseErr := s.logRepo.ReleaseLease(ctx, entry.ID, token); releaseErr != nil {
			logrus.Warnf("Failed to release lease on %s: %v", entry.ID, releaseErr)
		}
		return nil, fmt.Errorf("failed to record dispatch outcome: %w", err)
	}
	if !moved {
		return nil, fmt.Errorf("%w: lease on entry %s was lost", ErrInvalidTransition, entry.ID)
	}

	updated, err := s.logRepo.GetByID(ctx, entry.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, fmt.Errorf("failed to reload entry: %w", err)
	}
	s.events.Publish(LogEventUpdated, updated)
	return updated, nil
}

// RunDue dispatches every entry whose due time has passed, one batch at a
// time. Each entry is independent; one failure does not stop the sweep.
func (s *DispatchService) RunDue(ctx context.Context) (*DispatchStats, error) {
	stats := &DispatchStats{}
	seen := make(map[string]bool)

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		due, err := s.logRepo.GetDue(ctx, s.now(), s.batchSize)
		if err != nil {
			return stats, fmt.Errorf("failed to load due entries: %w", err)
		}

		fresh := 0
		for _, entry := range due {
			if seen[entry.ID] {
				continue
			}
			seen[entry.ID] = true
			fresh++
			stats.Due++

			updated, err := s.Dispatch(ctx, entry)
			switch {
			case err != nil:
				stats.Skipped++
				if !errors.Is(err, ErrInvalidTransition) {
					logrus.WithField("log_id", entry.ID).Errorf("Dispatch sweep error: %v", err)
				}
			case updated.Status == models.LogStatusExecuted:
				stats.Executed++
			default:
				stats.Failed++
			}
		}

		if len(due) < s.batchSize || fresh == 0 {
			return stats, nil
		}
	}
}

func describeDispatchError(err error) (string, models.JSON) {
	var derr *DispatchError
	if errors.As(err, &derr) {
		var details models.JSON
		if derr.Details != nil {
			details = models.JSON(derr.Details)
		}
		return derr.Error(), details
	}
	return err.Error(), nil
}

func captureDispatchError(entry *models.WorkflowLog, err error) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", "dispatch")
		scope.SetTag("channel", entry.Step.Channel)
		scope.SetExtra("log_id", entry.ID)
		scope.SetExtra("booking_id", entry.BookingID)
		scope.SetExtra("workflow_id", entry.WorkflowID)
		sentry.CaptureException(err)
	})
}

// DispatchWorker runs DispatchService.RunDue on a cron schedule
type DispatchWorker struct {
	service  *DispatchService
	schedule string
	cron     *cron.Cron
	cancel   context.CancelFunc
	mu       sync.Mutex
}

func NewDispatchWorker(service *DispatchService, schedule string) *DispatchWorker {
	return &DispatchWorker{service: service, schedule: schedule}
}

// Start registers the sweep and starts the cron scheduler
func (w *DispatchWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cron != nil {
		return errors.New("dispatch worker already started")
	}
	if _, err := cron.ParseStandard(w.schedule); err != nil {
		return fmt.Errorf("invalid dispatch schedule %q: %w", w.schedule, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	logger := cron.PrintfLogger(logrus.StandardLogger())
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(logger),
		cron.Recover(logger),
	))
	if _, err := c.AddFunc(w.schedule, func() { w.sweep(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("failed to register dispatch sweep: %w", err)
	}

	w.cron = c
	w.cancel = cancel
	c.Start()

	logrus.Infof("Dispatch worker started with schedule %s", w.schedule)
	return nil
}

func (w *DispatchWorker) sweep(ctx context.Context) {
	stats, err := w.service.RunDue(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logrus.Errorf("Dispatch sweep failed: %v", err)
	}
	if stats != nil && stats.Due > 0 {
		logrus.WithFields(logrus.Fields{
			"due":      stats.Due,
			"executed": stats.Executed,
			"failed":   stats.Failed,
			"skipped":  stats.Skipped,
		}).Info("Dispatch sweep finished")
	}
}

// Stop cancels in-flight sweeps and waits for the running job to return
func (w *DispatchWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cron == nil {
		return
	}
	w.cancel()
	<-w.cron.Stop().Done()
	w.cron = nil
	w.cancel = nil
	logrus.Info("Dispatch worker stopped")
}
