package repository

import (
	"context"

	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Upsert inserts a booking or overwrites every field the booking store owns
func (r *BookingRepository) Upsert(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"client_name", "client_email", "client_phone", "status",
				"meeting_at", "meeting_link", "reschedule_link",
				"plan_name", "plan_amount", "status_changed_at", "updated_at",
			}),
		}).
		Create(booking).Error
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByStatus retrieves every booking currently in the given status
func (r *BookingRepository) GetByStatus(ctx context.Context, status string) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("status_changed_at ASC").
		Order("id ASC").
		Find(&bookings).Error
	return bookings, err
}

// UpdateStatus records a status transition
func (r *BookingRepository) UpdateStatus(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Updates(map[string]interface{}{
			"status":            booking.Status,
			"status_changed_at": booking.StatusChangedAt,
		}).Error
}
