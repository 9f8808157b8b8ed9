package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/onegreenvn/booking-followup-backend/internal/database/repository"
	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/onegreenvn/booking-followup-backend/internal/services"
	"github.com/onegreenvn/booking-followup-backend/internal/services/excel"
	"github.com/onegreenvn/booking-followup-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

type WorkflowLogHandler struct {
	logService   *services.WorkflowLogService
	excelService *excel.Service
	events       *services.LogEventHub
}

func NewWorkflowLogHandler(logService *services.WorkflowLogService, excelService *excel.Service, events *services.LogEventHub) *WorkflowLogHandler {
	return &WorkflowLogHandler{
		logService:   logService,
		excelService: excelService,
		events:       events,
	}
}

// WorkflowLogListResponse is a page of workflow log entries
type WorkflowLogListResponse struct {
	Data       []*models.WorkflowLogResponse `json:"data"`
	Pagination utils.PaginationResponse      `json:"pagination"`
}

var logStatuses = map[string]bool{
	models.LogStatusScheduled: true,
	models.LogStatusExecuted:  true,
	models.LogStatusFailed:    true,
}

func logFilterFromQuery(c *gin.Context) (repository.WorkflowLogFilter, error) {
	filter := repository.WorkflowLogFilter{
		Status:     c.Query("status"),
		BookingID:  c.Query("booking_id"),
		WorkflowID: c.Query("workflow_id"),
	}
	if filter.Status != "" && !logStatuses[filter.Status] {
		return filter, fmt.Errorf("unknown status %q", filter.Status)
	}
	return filter, nil
}

// GetLogs godoc
// @Summary List workflow logs
// @Description Paginated execution log, optionally filtered by status, booking or workflow
// @Tags workflow-logs
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status" Enums(scheduled, executed, failed)
// @Param booking_id query string false "Booking ID"
// @Param workflow_id query string false "Workflow ID"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} WorkflowLogListResponse
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/workflow-logs [get]
func (h *WorkflowLogHandler) GetLogs(c *gin.Context) {
	filter, err := logFilterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query", "details": err.Error()})
		return
	}

	page, limit := utils.ParsePaginationFromQuery(c.Query("page"), c.Query("limit"))
	logs, pagination, err := h.logService.ListLogs(c.Request.Context(), filter, page, limit)
	if err != nil {
		respondError(c, err, "Failed to get workflow logs")
		return
	}

	c.JSON(http.StatusOK, WorkflowLogListResponse{Data: logs, Pagination: pagination})
}

// GetStats godoc
// @Summary Workflow log counts
// @Tags workflow-logs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.WorkflowLogStats
// @Router /api/v1/workflow-logs/stats [get]
func (h *WorkflowLogHandler) GetStats(c *gin.Context) {
	stats, err := h.logService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get workflow log stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetLog godoc
// @Summary Get a workflow log entry
// @Tags workflow-logs
// @Produce json
// @Security BearerAuth
// @Param logId path string true "Log ID"
// @Success 200 {object} models.WorkflowLogResponse
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/workflow-logs/{logId} [get]
func (h *WorkflowLogHandler) GetLog(c *gin.Context) {
	log, err := h.logService.GetLog(c.Request.Context(), c.Param("logId"))
	if err != nil {
		respondError(c, err, "Failed to get workflow log")
		return
	}
	c.JSON(http.StatusOK, log)
}

// SendNow godoc
// @Summary Send a scheduled entry now
// @Description Dispatch a scheduled entry immediately, ignoring its due time. Executed or failed entries are rejected with 409.
// @Tags workflow-logs
// @Produce json
// @Security BearerAuth
// @Param logId path string true "Log ID"
// @Success 200 {object} models.WorkflowLogResponse
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/workflow-logs/{logId}/send-now [post]
func (h *WorkflowLogHandler) SendNow(c *gin.Context) {
	log, err := h.logService.SendNow(c.Request.Context(), c.Param("logId"))
	if err != nil {
		respondError(c, err, "Failed to send workflow message")
		return
	}
	c.JSON(http.StatusOK, log)
}

// Retry godoc
// @Summary Retry a failed entry
// @Description Create a new attempt for a failed entry and dispatch it. The failed entry is kept unchanged. Only the latest attempt of a step can be retried.
// @Tags workflow-logs
// @Produce json
// @Security BearerAuth
// @Param logId path string true "Log ID"
// @Success 201 {object} models.WorkflowLogResponse
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/workflow-logs/{logId}/retry [post]
func (h *WorkflowLogHandler) Retry(c *gin.Context) {
	log, err := h.logService.Retry(c.Request.Context(), c.Param("logId"))
	if err != nil {
		respondError(c, err, "Failed to retry workflow message")
		return
	}
	c.JSON(http.StatusCreated, log)
}

// ExportLogs godoc
// @Summary Export workflow logs
// @Description Download matching entries as an xlsx workbook
// @Tags workflow-logs
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param status query string false "Status" Enums(scheduled, executed, failed)
// @Param booking_id query string false "Booking ID"
// @Param workflow_id query string false "Workflow ID"
// @Success 200 {file} file
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/workflow-logs/export [get]
func (h *WorkflowLogHandler) ExportLogs(c *gin.Context) {
	filter, err := logFilterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query", "details": err.Error()})
		return
	}

	logs, err := h.logService.ExportLogs(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to export workflow logs")
		return
	}

	filename := fmt.Sprintf("workflow_logs_%d.xlsx", time.Now().Unix())
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Status(http.StatusOK)
	if err := h.excelService.ExportWorkflowLogs(logs, c.Writer); err != nil {
		c.Error(err)
	}
}

const streamHeartbeat = 30 * time.Second

// StreamLogs godoc
// @Summary Stream workflow log changes via Server-Sent Events (SSE)
// @Description Emits a "scheduled" event for each new entry and an "updated" event after each dispatch. With booking_id the stream starts with that booking's current entries.
// @Tags workflow-logs
// @Produce text/event-stream
// @Security BearerAuth
// @Param booking_id query string false "Booking ID"
// @Success 200 "SSE stream"
// @Router /api/v1/workflow-logs/stream [get]
func (h *WorkflowLogHandler) StreamLogs(c *gin.Context) {
	bookingID := c.Query("booking_id")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	clientChan := h.events.Subscribe(bookingID)
	defer h.events.Unsubscribe(bookingID, clientChan)

	c.SSEvent("connected", gin.H{
		"booking_id": bookingID,
		"message":    "Connected to workflow log stream",
	})
	c.Writer.Flush()

	if bookingID != "" {
		existing, _, err := h.logService.ListLogs(c.Request.Context(), repository.WorkflowLogFilter{BookingID: bookingID}, 1, 100)
		if err == nil {
			for _, log := range existing {
				payload, err := json.Marshal(log)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(c.Writer, "event: snapshot\ndata: %s\n\n", payload); err != nil {
					return
				}
			}
			c.Writer.Flush()
		}
	}

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			logrus.Debugf("Log stream client disconnected: %q", bookingID)
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprintf(c.Writer, ": heartbeat %s\n\n", time.Now().UTC().Format(time.RFC3339)); err != nil {
				return
			}
			c.Writer.Flush()
		case message, ok := <-clientChan:
			if !ok {
				return
			}
			if _, err := c.Writer.Write(message); err != nil {
				logrus.Errorf("Failed to write log stream message: %v", err)
				return
			}
			c.Writer.Flush()
		}
	}
}
