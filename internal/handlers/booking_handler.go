package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/onegreenvn/booking-followup-backend/internal/services"
)

type BookingHandler struct {
	bookingService *services.BookingService
}

func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// PutBooking godoc
// @Summary Sync a booking into the read model
// @Description Called by the booking store to create or refresh a booking. Does not schedule anything; status changes that should fire workflows are sent to /booking-events.
// @Tags bookings
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Booking ID"
// @Param request body models.UpsertBookingRequest true "Booking"
// @Success 200 {object} models.Booking
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/bookings/{id} [put]
func (h *BookingHandler) PutBooking(c *gin.Context) {
	var req models.UpsertBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	booking, err := h.bookingService.Upsert(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "Failed to save booking")
		return
	}
	c.JSON(http.StatusOK, booking)
}

// GetBooking godoc
// @Summary Get a booking from the read model
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookingService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get booking")
		return
	}
	c.JSON(http.StatusOK, booking)
}
