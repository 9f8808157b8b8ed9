package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/onegreenvn/booking-followup-backend/internal/database/repository"
	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// BulkBackfillService schedules bookings that missed their live trigger
type BulkBackfillService struct {
	bookingRepo  *repository.BookingRepository
	logRepo      *repository.WorkflowLogRepository
	workflowRepo *repository.WorkflowRepository
	scheduler    *StepScheduler
	concurrency  int
}

func NewBulkBackfillService(
	bookingRepo *repository.BookingRepository,
	logRepo *repository.WorkflowLogRepository,
	workflowRepo *repository.WorkflowRepository,
	scheduler *StepScheduler,
	concurrency int,
) *BulkBackfillService {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &BulkBackfillService{
		bookingRepo:  bookingRepo,
		logRepo:      logRepo,
		workflowRepo: workflowRepo,
		scheduler:    scheduler,
		concurrency:  concurrency,
	}
}

type bookingPartition struct {
	trigger string
	with    []*models.Booking
	without []*models.Booking
}

func (s *BulkBackfillService) partition(ctx context.Context, status string) (*bookingPartition, error) {
	trigger, ok := models.TriggerForBookingStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBookingStatus, status)
	}

	bookings, err := s.bookingRepo.GetByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	ids := make([]string, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}
	scheduled, err := s.logRepo.BookingIDsWithLogs(ctx, ids, trigger)
	if err != nil {
		return nil, fmt.Errorf("failed to check scheduled workflows: %w", err)
	}

	p := &bookingPartition{trigger: trigger}
	for _, b := range bookings {
		if scheduled[b.ID] {
			p.with = append(p.with, b)
		} else {
			p.without = append(p.without, b)
		}
	}
	return p, nil
}

// BookingsByStatus is the dry run: bookings in a status split by whether
// they already have entries for the matching trigger
func (s *BulkBackfillService) BookingsByStatus(ctx context.Context, status string) (*models.BookingsByStatusResponse, error) {
	p, err := s.partition(ctx, status)
	if err != nil {
		return nil, err
	}

	workflows, err := s.workflowRepo.GetActiveByTrigger(ctx, p.trigger)
	if err != nil {
		return nil, fmt.Errorf("failed to load active workflows: %w", err)
	}

	return &models.BookingsByStatusResponse{
		Status:                      status,
		TriggerAction:               p.trigger,
		Total:                       len(p.with) + len(p.without),
		ActiveWorkflows:             len(workflows),
		WithScheduledWorkflows:      summarize(p.with),
		WithoutScheduledWorkflows:   summarize(p.without),
		WithScheduledWorkflowsCount: len(p.with),
		WithoutScheduledCount:       len(p.without),
	}, nil
}

// TriggerByStatus runs the scheduler for every booking in the status.
// With skipExisting only bookings without entries are scheduled. Bookings
// are processed in parallel and a failing booking never aborts the batch.
func (s *BulkBackfillService) TriggerByStatus(ctx context.Context, status string, skipExisting bool) (*models.BackfillResult, error) {
	p, err := s.partition(ctx, status)
	if err != nil {
		return nil, err
	}

	targets := p.without
	if !skipExisting {
		targets = append(append([]*models.Booking{}, p.without...), p.with...)
	}

	result := &models.BackfillResult{
		Status: status,
		Total:  len(targets),
		Errors: []models.BackfillError{},
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, booking := range targets {
		booking := booking
		g.Go(func() error {
			outcome, err := s.scheduleBooking(gctx, booking)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				result.Errors = append(result.Errors, backfillError(booking, err.Error()))
				captureBackfillError(booking, err)
				return nil
			}
			result.Created += outcome.Created
			switch {
			case outcome.Created > 0:
				result.Processed++
			case len(outcome.Errors) == 0:
				result.Skipped++
			}
			if len(outcome.Errors) > 0 {
				msgs := make([]string, len(outcome.Errors))
				for i, se := range outcome.Errors {
					msgs[i] = fmt.Sprintf("step %d: %s", se.StepOrder, se.Error)
				}
				result.Errors = append(result.Errors, backfillError(booking, strings.Join(msgs, "; ")))
			}
			return nil
		})
	}
	_ = g.Wait()

	logrus.WithFields(logrus.Fields{
		"status":    status,
		"total":     result.Total,
		"processed": result.Processed,
		"skipped":   result.Skipped,
		"created":   result.Created,
		"errors":    len(result.Errors),
	}).Info("Backfill finished")

	return result, nil
}

func (s *BulkBackfillService) scheduleBooking(ctx context.Context, booking *models.Booking) (*ScheduleResult, error) {
	event, err := EventForBooking(booking)
	if err != nil {
		return nil, err
	}
	return s.scheduler.Schedule(ctx, event)
}

func backfillError(booking *models.Booking, message string) models.BackfillError {
	return models.BackfillError{
		BookingID:   booking.ID,
		ClientEmail: booking.ClientEmail,
		Error:       message,
	}
}

func captureBackfillError(booking *models.Booking, err error) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", "backfill")
		scope.SetExtra("booking_id", booking.ID)
		sentry.CaptureException(err)
	})
}

func summarize(bookings []*models.Booking) []models.BookingSummary {
	summaries := make([]models.BookingSummary, len(bookings))
	for i, b := range bookings {
		summaries[i] = models.BookingSummary{
			ID:              b.ID,
			ClientName:      b.ClientName,
			ClientEmail:     b.ClientEmail,
			Status:          b.Status,
			StatusChangedAt: b.TransitionTime().UTC().Format(time.RFC3339),
		}
	}
	return summaries
}
