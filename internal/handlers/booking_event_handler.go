package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/onegreenvn/booking-followup-backend/internal/services"
)

type BookingEventHandler struct {
	scheduler *services.StepScheduler
}

func NewBookingEventHandler(scheduler *services.StepScheduler) *BookingEventHandler {
	return &BookingEventHandler{scheduler: scheduler}
}

// PostBookingEvent godoc
// @Summary Ingest a booking lifecycle event
// @Description Called by the booking store on status changes. Schedules the steps of every active workflow bound to the matching trigger; repeated events do not create duplicates.
// @Tags booking-events
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.BookingLifecycleEvent true "Lifecycle event"
// @Success 202 {object} services.ScheduleResult
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/booking-events [post]
func (h *BookingEventHandler) PostBookingEvent(c *gin.Context) {
	var event models.BookingLifecycleEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	result, err := h.scheduler.HandleLifecycleEvent(c.Request.Context(), &event)
	if err != nil {
		respondError(c, err, "Failed to schedule booking event")
		return
	}
	c.JSON(http.StatusAccepted, result)
}
