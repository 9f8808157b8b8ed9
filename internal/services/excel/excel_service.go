package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/xuri/excelize/v2"
)

// LogSheetName is the sheet holding exported workflow log rows
const LogSheetName = "Workflow Logs"

var logColumns = []string{
	"id", "booking_id", "workflow_id", "trigger_action", "step_order", "attempt",
	"channel", "template_id", "client_name", "client_email", "client_phone",
	"variables", "status", "scheduled_for", "executed_at", "error", "retry_of_id",
}

// Service handles Excel operations for workflow logs
type Service struct{}

// NewExcelService creates a new Excel service instance
func NewExcelService() *Service {
	return &Service{}
}

// ExportWorkflowLogs writes the entries as one xlsx workbook to w
func (s *Service) ExportWorkflowLogs(logs []*models.WorkflowLog, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), LogSheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	f.SetActiveSheet(0)

	for i, col := range logColumns {
		f.SetCellValue(LogSheetName, fmt.Sprintf("%s1", columnToLetter(i+1)), col)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFFF00"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err == nil {
		f.SetCellStyle(LogSheetName, "A1", columnToLetter(len(logColumns))+strconv.Itoa(1), headerStyle)
	}

	for i, col := range logColumns {
		colLetter := columnToLetter(i + 1)
		width := 20.0
		switch col {
		case "id", "workflow_id", "retry_of_id":
			width = 38.0
		case "step_order", "attempt", "channel", "status":
			width = 12.0
		case "variables":
			width = 45.0
		case "error":
			width = 50.0
		}
		f.SetColWidth(LogSheetName, colLetter, colLetter, width)
	}

	statusStyles := map[string]int{}
	for status, color := range map[string]string{
		models.LogStatusScheduled: "FFFF00", // Yellow
		models.LogStatusExecuted:  "C6EFCE", // Green
		models.LogStatusFailed:    "FFC7CE", // Red
	} {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err == nil {
			statusStyles[status] = style
		}
	}

	if len(logs) == 0 {
		f.SetCellValue(LogSheetName, "A2", "no workflow logs found")
	}

	for j, log := range logs {
		rowNum := j + 2
		executedAt := ""
		if log.ExecutedAt != nil {
			executedAt = log.ExecutedAt.UTC().Format(time.RFC3339)
		}

		row := []interface{}{
			log.ID, log.BookingID, log.WorkflowID, log.TriggerAction, log.StepOrder, log.Attempt,
			log.Step.Channel, log.Step.TemplateID, log.ClientName, log.ClientEmail, log.ClientPhone,
			strings.Join(log.Variables.Values(), " | "), log.Status,
			log.ScheduledFor.UTC().Format(time.RFC3339), executedAt, log.Error, log.RetryOfID,
		}
		if err := f.SetSheetRow(LogSheetName, fmt.Sprintf("A%d", rowNum), &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", rowNum, err)
		}

		if style, ok := statusStyles[log.Status]; ok {
			f.SetCellStyle(LogSheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("%s%d", columnToLetter(len(logColumns)), rowNum), style)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

// Helper function to convert column number to Excel column letter
func columnToLetter(col int) string {
	var result string
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
