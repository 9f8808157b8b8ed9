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

// BookingService keeps the bookings read model in step with the booking store.
// It never schedules; status changes that should fire workflows arrive as
// lifecycle events, and rows synced here are picked up by backfill.
type BookingService struct {
	bookingRepo *repository.BookingRepository
	now         func() time.Time
}

func NewBookingService(bookingRepo *repository.BookingRepository) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		now:         time.Now,
	}
}

// Upsert creates or overwrites the booking row for id
func (s *BookingService) Upsert(ctx context.Context, id string, req *models.UpsertBookingRequest) (*models.Booking, error) {
	if id == "" {
		return nil, &ValidationError{Fields: []FieldError{{Field: "id", Message: "is required"}}}
	}
	if !models.IsBookingStatus(req.Status) {
		return nil, &ValidationError{Fields: []FieldError{{Field: "status", Message: fmt.Sprintf("unknown booking status %q", req.Status)}}}
	}

	changedAt := s.now().UTC()
	if req.StatusChangedAt != nil {
		changedAt = req.StatusChangedAt.UTC()
	}

	booking := &models.Booking{ID: id, Status: req.Status, StatusChangedAt: &changedAt}
	req.BookingSnapshot.ApplyTo(booking)
	if err := s.bookingRepo.Upsert(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	logrus.WithFields(logrus.Fields{"booking_id": id, "status": req.Status}).Debug("Booking synced")
	return s.Get(ctx, id)
}

// Get returns one booking from the read model
func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}
