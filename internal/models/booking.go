package models

import (
	"time"
)

// Booking statuses as written by the booking store
const (
	BookingStatusScheduled   = "scheduled"
	BookingStatusNoShow      = "no-show"
	BookingStatusCompleted   = "completed"
	BookingStatusCanceled    = "canceled"
	BookingStatusRescheduled = "rescheduled"
)

// bookingStatusTriggers maps a booking status to the trigger action it fires
var bookingStatusTriggers = map[string]string{
	BookingStatusNoShow:      TriggerNoShow,
	BookingStatusCompleted:   TriggerComplete,
	BookingStatusCanceled:    TriggerCancel,
	BookingStatusRescheduled: TriggerReschedule,
}

// IsBookingStatus reports whether status is one the booking store writes
func IsBookingStatus(status string) bool {
	_, ok := bookingStatusTriggers[status]
	return ok || status == BookingStatusScheduled
}

// TriggerForBookingStatus returns the trigger action for a booking status
func TriggerForBookingStatus(status string) (string, bool) {
	trigger, ok := bookingStatusTriggers[status]
	return trigger, ok
}

// Booking is the read model of a client booking owned by the booking store
type Booking struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(64)"`
	ClientName  string `json:"client_name" gorm:"type:varchar(255)"`
	ClientEmail string `json:"client_email" gorm:"type:varchar(255)"`
	ClientPhone string `json:"client_phone" gorm:"type:varchar(50)"`
	Status      string `json:"status" gorm:"type:varchar(20);not null;index"`

	MeetingAt      *time.Time `json:"meeting_at,omitempty"`
	MeetingLink    string     `json:"meeting_link,omitempty" gorm:"type:text"`
	RescheduleLink string     `json:"reschedule_link,omitempty" gorm:"type:text"`
	PlanName       string     `json:"plan_name,omitempty" gorm:"type:varchar(100)"`
	PlanAmount     float64    `json:"plan_amount,omitempty"`

	StatusChangedAt *time.Time `json:"status_changed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// TransitionTime is the timestamp of the booking's last status change
func (b *Booking) TransitionTime() time.Time {
	if b.StatusChangedAt != nil {
		return *b.StatusChangedAt
	}
	return b.UpdatedAt
}

// Contact returns the client contact frozen into scheduled entries
func (b *Booking) Contact() ClientContact {
	return ClientContact{
		Name:  b.ClientName,
		Email: b.ClientEmail,
		Phone: b.ClientPhone,
	}
}

// ClientContact is the denormalized client identity copied onto log entries
type ClientContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// BookingSnapshot is the booking store's view of a booking, sent along with
// events or pushed on its own to keep the read model current
type BookingSnapshot struct {
	ClientName     string     `json:"client_name" example:"Jane Doe"`
	ClientEmail    string     `json:"client_email" example:"jane@example.com"`
	ClientPhone    string     `json:"client_phone" example:"+15550001"`
	MeetingAt      *time.Time `json:"meeting_at,omitempty" example:"2025-01-09T09:00:00Z"`
	MeetingLink    string     `json:"meeting_link,omitempty"`
	RescheduleLink string     `json:"reschedule_link,omitempty"`
	PlanName       string     `json:"plan_name,omitempty" example:"PRIME"`
	PlanAmount     float64    `json:"plan_amount,omitempty" example:"119.5"`
}

// ApplyTo copies the snapshot onto a booking row
func (s *BookingSnapshot) ApplyTo(b *Booking) {
	b.ClientName = s.ClientName
	b.ClientEmail = s.ClientEmail
	b.ClientPhone = s.ClientPhone
	b.MeetingAt = s.MeetingAt
	b.MeetingLink = s.MeetingLink
	b.RescheduleLink = s.RescheduleLink
	b.PlanName = s.PlanName
	b.PlanAmount = s.PlanAmount
}

// BookingLifecycleEvent is emitted by the booking store on status changes.
// When Booking is set the read model row is created or refreshed from it.
type BookingLifecycleEvent struct {
	BookingID           string           `json:"booking_id" binding:"required" example:"bk_1042"`
	NewStatus           string           `json:"new_status" binding:"required" example:"no-show"`
	TransitionTimestamp time.Time        `json:"transition_timestamp" binding:"required" example:"2025-01-09T10:30:00Z"`
	Booking             *BookingSnapshot `json:"booking,omitempty"`
}

// UpsertBookingRequest syncs one booking into the read model
type UpsertBookingRequest struct {
	BookingSnapshot
	Status          string     `json:"status" binding:"required" example:"scheduled"`
	StatusChangedAt *time.Time `json:"status_changed_at,omitempty" example:"2025-01-09T10:30:00Z"`
}

// BookingSummary is a compact booking row for backfill previews
type BookingSummary struct {
	ID              string `json:"id" example:"bk_1042"`
	ClientName      string `json:"client_name" example:"Jane Doe"`
	ClientEmail     string `json:"client_email" example:"jane@example.com"`
	Status          string `json:"status" example:"no-show"`
	StatusChangedAt string `json:"status_changed_at" example:"2025-01-09T10:30:00Z"`
}
