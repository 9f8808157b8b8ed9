package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestColumnToLetter(t *testing.T) {
	assert.Equal(t, "A", columnToLetter(1))
	assert.Equal(t, "Q", columnToLetter(17))
	assert.Equal(t, "Z", columnToLetter(26))
	assert.Equal(t, "AA", columnToLetter(27))
}

func TestExportWorkflowLogs(t *testing.T) {
	executed := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	logs := []*models.WorkflowLog{
		{
			ID:            "log-1",
			BookingID:     "bk_1",
			WorkflowID:    "wf-1",
			TriggerAction: models.TriggerNoShow,
			StepOrder:     0,
			Attempt:       1,
			ClientName:    "Jane Doe",
			ClientPhone:   "+15550001",
			Step:          models.StepSnapshot{Channel: models.ChannelWhatsApp, TemplateID: "noshow_followup"},
			Variables: models.BoundVariableSet{
				{Position: 1, Value: "Jane Doe", Bound: true},
				{Position: 2, Value: "{{2}}"},
			},
			Status:       models.LogStatusExecuted,
			ScheduledFor: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
			ExecutedAt:   &executed,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewExcelService().ExportWorkflowLogs(logs, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(LogSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, logColumns, rows[0])
	assert.Equal(t, "log-1", rows[1][0])
	assert.Equal(t, "Jane Doe | {{2}}", rows[1][11])
	assert.Equal(t, models.LogStatusExecuted, rows[1][12])
	assert.Equal(t, "2024-01-08T00:00:00Z", rows[1][13])
}

func TestExportWorkflowLogsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelService().ExportWorkflowLogs(nil, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue(LogSheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "no workflow logs found", value)
}
