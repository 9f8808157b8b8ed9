package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/onegreenvn/booking-followup-backend/internal/services"
)

type BulkHandler struct {
	backfillService *services.BulkBackfillService
}

func NewBulkHandler(backfillService *services.BulkBackfillService) *BulkHandler {
	return &BulkHandler{backfillService: backfillService}
}

// GetBookingsByStatus godoc
// @Summary Preview a backfill
// @Description Split bookings in a status by whether they already have workflow log entries for the matching trigger
// @Tags workflows-bulk
// @Produce json
// @Security BearerAuth
// @Param status query string true "Booking status" Enums(no-show, completed, canceled, rescheduled)
// @Success 200 {object} models.BookingsByStatusResponse
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/workflows/bulk/bookings-by-status [get]
func (h *BulkHandler) GetBookingsByStatus(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	resp, err := h.backfillService.BookingsByStatus(c.Request.Context(), status)
	if err != nil {
		respondError(c, err, "Failed to get bookings by status")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TriggerByStatus godoc
// @Summary Run a backfill
// @Description Schedule workflows for bookings in a status. skip_existing defaults to true. Per-booking failures are reported in errors and do not abort the batch.
// @Tags workflows-bulk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.TriggerByStatusRequest true "Backfill request"
// @Success 200 {object} models.BackfillResult
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/workflows/bulk/trigger-by-status [post]
func (h *BulkHandler) TriggerByStatus(c *gin.Context) {
	var req models.TriggerByStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	skipExisting := req.SkipExisting == nil || *req.SkipExisting
	result, err := h.backfillService.TriggerByStatus(c.Request.Context(), req.Status, skipExisting)
	if err != nil {
		respondError(c, err, "Failed to trigger workflows")
		return
	}
	c.JSON(http.StatusOK, result)
}
