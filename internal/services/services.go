package services

import (
	"time"

	"github.com/onegreenvn/booking-followup-backend/internal/database/repository"
	"gorm.io/gorm"
)

// Options tunes the services built by New
type Options struct {
	DispatchLease       time.Duration
	DispatchBatchSize   int
	BackfillConcurrency int
}

// Services wires the workflow services over one database and dispatcher
type Services struct {
	Resolver  *TemplateVariableResolver
	Workflows *WorkflowService
	Scheduler *StepScheduler
	Bookings  *BookingService
	Dispatch  *DispatchService
	Logs      *WorkflowLogService
	Backfill  *BulkBackfillService
	Events    *LogEventHub
}

// New builds the service graph. dispatcher may be nil, in which case
// dispatch operations return ErrDispatcherUnavailable.
func New(db *gorm.DB, dispatcher Dispatcher, opts Options) *Services {
	workflowRepo := repository.NewWorkflowRepository(db)
	logRepo := repository.NewWorkflowLogRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	events := NewLogEventHub()
	resolver := NewTemplateVariableResolver(DefaultTemplates()...)
	scheduler := NewStepScheduler(workflowRepo, logRepo, bookingRepo, resolver)
	scheduler.events = events
	dispatch := NewDispatchService(logRepo, dispatcher, opts.DispatchLease, opts.DispatchBatchSize)
	dispatch.events = events

	return &Services{
		Resolver:  resolver,
		Workflows: NewWorkflowService(workflowRepo, resolver),
		Scheduler: scheduler,
		Bookings:  NewBookingService(bookingRepo),
		Dispatch:  dispatch,
		Logs:      NewWorkflowLogService(logRepo, dispatch),
		Backfill:  NewBulkBackfillService(bookingRepo, logRepo, workflowRepo, scheduler, opts.BackfillConcurrency),
		Events:    events,
	}
}
