package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onegreenvn/booking-followup-backend/internal/database/repository"
	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LifecycleEvent is the scheduler input: a booking entering a trigger action
type LifecycleEvent struct {
	BookingID      string
	TriggerAction  string
	EventTimestamp time.Time
	Contact        models.ClientContact
	// Booking supplies meeting and plan fields for template binding; optional
	Booking *models.Booking
}

// StepError is a per-step scheduling failure; sibling steps still run
type StepError struct {
	WorkflowID string `json:"workflow_id"`
	StepOrder  int    `json:"step_order"`
	Error      string `json:"error"`
}

// ScheduleResult summarizes one scheduling run for a booking
type ScheduleResult struct {
	Created int         `json:"created"`
	Skipped int         `json:"skipped"`
	Errors  []StepError `json:"errors,omitempty"`
}

// StepScheduler turns a lifecycle event into scheduled log entries
type StepScheduler struct {
	workflowRepo *repository.WorkflowRepository
	logRepo      *repository.WorkflowLogRepository
	bookingRepo  *repository.BookingRepository
	resolver     *TemplateVariableResolver
	events       *LogEventHub
	now          func() time.Time
}

func NewStepScheduler(
	workflowRepo *repository.WorkflowRepository,
	logRepo *repository.WorkflowLogRepository,
	bookingRepo *repository.BookingRepository,
	resolver *TemplateVariableResolver,
) *StepScheduler {
	return &StepScheduler{
		workflowRepo: workflowRepo,
		logRepo:      logRepo,
		bookingRepo:  bookingRepo,
		resolver:     resolver,
		now:          time.Now,
	}
}

// Schedule writes one scheduled entry per step of every active workflow
// matching the trigger. Steps already present under the dedup key are
// counted as skipped. It never calls the dispatcher.
func (s *StepScheduler) Schedule(ctx context.Context, event LifecycleEvent) (*ScheduleResult, error) {
	if event.BookingID == "" {
		return nil, &ValidationError{Fields: []FieldError{{Field: "booking_id", Message: "is required"}}}
	}

	workflows, err := s.workflowRepo.GetActiveByTrigger(ctx, event.TriggerAction)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflows for %s: %w", event.TriggerAction, err)
	}

	result := &ScheduleResult{}
	eventTime := event.EventTimestamp.UTC()

	for _, workflow := range workflows {
		for i := range workflow.Steps {
			step := &workflow.Steps[i]
			created, err := s.scheduleStep(ctx, event, eventTime, workflow, step)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"booking_id":  event.BookingID,
					"workflow_id": workflow.ID,
					"step_order":  step.Order,
				}).Warnf("Failed to schedule step: %v", err)
				result.Errors = append(result.Errors, StepError{
					WorkflowID: workflow.ID,
					StepOrder:  step.Order,
					Error:      err.Error(),
				})
				continue
			}
			if created {
				result.Created++
			} else {
				result.Skipped++
			}
		}
	}

	logrus.WithFields(logrus.Fields{
		"booking_id": event.BookingID,
		"trigger":    event.TriggerAction,
		"workflows":  len(workflows),
		"created":    result.Created,
		"skipped":    result.Skipped,
		"errors":     len(result.Errors),
	}).Info("Lifecycle event scheduled")

	return result, nil
}

func (s *StepScheduler) scheduleStep(ctx context.Context, event LifecycleEvent, eventTime time.Time, workflow *models.Workflow, step *models.WorkflowStep) (bool, error) {
	if err := checkContact(step.Channel, event.Contact); err != nil {
		return false, err
	}

	vars, err := s.resolver.Resolve(step.TemplateID, templateContext(event, eventTime, step))
	if err != nil {
		return false, err
	}

	entry := &models.WorkflowLog{
		WorkflowID:    workflow.ID,
		BookingID:     event.BookingID,
		StepOrder:     step.Order,
		Attempt:       1,
		ClientEmail:   event.Contact.Email,
		ClientName:    event.Contact.Name,
		ClientPhone:   event.Contact.Phone,
		TriggerAction: event.TriggerAction,
		Step:          models.NewStepSnapshot(step),
		Variables:     vars,
		Status:        models.LogStatusScheduled,
		ScheduledFor:  eventTime.AddDate(0, 0, step.DaysAfter),
	}

	created, err := s.logRepo.CreateIfAbsent(ctx, entry)
	if err != nil {
		return false, fmt.Errorf("failed to write log entry: %w", err)
	}
	if created {
		s.events.Publish(LogEventScheduled, entry)
	}
	return created, nil
}

func checkContact(channel string, contact models.ClientContact) error {
	switch channel {
	case models.ChannelEmail:
		if contact.Email == "" {
			return errors.New("client has no email address for email step")
		}
	case models.ChannelWhatsApp:
		if contact.Phone == "" {
			return errors.New("client has no phone number for whatsapp step")
		}
	default:
		return fmt.Errorf("unsupported channel %q", channel)
	}
	return nil
}

func templateContext(event LifecycleEvent, eventTime time.Time, step *models.WorkflowStep) TemplateContext {
	tctx := TemplateContext{
		ClientName:    event.Contact.Name,
		ReferenceTime: eventTime,
		Config:        step.TemplateConfig,
	}
	if b := event.Booking; b != nil {
		tctx.PlanName = b.PlanName
		tctx.PlanAmount = b.PlanAmount
		tctx.MeetingAt = b.MeetingAt
		tctx.MeetingLink = b.MeetingLink
		tctx.RescheduleLink = b.RescheduleLink
	}
	return tctx
}

// EventForBooking builds the scheduler input for a booking's current status
func EventForBooking(booking *models.Booking) (LifecycleEvent, error) {
	trigger, ok := models.TriggerForBookingStatus(booking.Status)
	if !ok {
		return LifecycleEvent{}, fmt.Errorf("%w: %s", ErrUnknownBookingStatus, booking.Status)
	}
	return LifecycleEvent{
		BookingID:      booking.ID,
		TriggerAction:  trigger,
		EventTimestamp: booking.TransitionTime(),
		Contact:        booking.Contact(),
		Booking:        booking,
	}, nil
}

// HandleLifecycleEvent applies a status change from the booking store to
// the read model and schedules the matching workflows. An event carrying a
// booking snapshot creates the row when the booking is not yet known.
func (s *StepScheduler) HandleLifecycleEvent(ctx context.Context, event *models.BookingLifecycleEvent) (*ScheduleResult, error) {
	if _, ok := models.TriggerForBookingStatus(event.NewStatus); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBookingStatus, event.NewStatus)
	}

	transitionAt := event.TransitionTimestamp
	if transitionAt.IsZero() {
		transitionAt = s.now()
	}
	transitionAt = transitionAt.UTC()

	var booking *models.Booking
	if event.Booking != nil {
		booking = &models.Booking{ID: event.BookingID}
		event.Booking.ApplyTo(booking)
		booking.Status = event.NewStatus
		booking.StatusChangedAt = &transitionAt
		if err := s.bookingRepo.Upsert(ctx, booking); err != nil {
			return nil, fmt.Errorf("failed to save booking: %w", err)
		}
	} else {
		existing, err := s.bookingRepo.GetByID(ctx, event.BookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrBookingNotFound
			}
			return nil, fmt.Errorf("failed to load booking: %w", err)
		}
		booking = existing
		booking.Status = event.NewStatus
		booking.StatusChangedAt = &transitionAt
		if err := s.bookingRepo.UpdateStatus(ctx, booking); err != nil {
			return nil, fmt.Errorf("failed to update booking status: %w", err)
		}
	}

	scheduleEvent, err := EventForBooking(booking)
	if err != nil {
		return nil, err
	}
	return s.Schedule(ctx, scheduleEvent)
}
