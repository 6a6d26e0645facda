package report_test

import (
	"testing"

	"github.com/UnknownOlympus/janus/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGenerateAttendanceReport(t *testing.T) {
	testRows := []report.Row{
		{Employee: "Alice Smith", Date: "2025-06-02", Arrival: "08:55", Departure: "18:10", Minutes: 555},
		{Employee: "Alice Smith", Date: "2025-06-03", Arrival: "09:05", Departure: "17:00", Minutes: 475, AutoClosed: true},
		{Employee: "Bob Jones", Date: "2025-06-07", Arrival: "10:00", Departure: "14:00", Minutes: 240, Weekend: true},
	}

	t.Run("successful report generation", func(t *testing.T) {
		buffer, err := report.GenerateAttendanceReport(testRows)

		require.NoError(t, err)
		assert.NotNil(t, buffer)

		f, err := excelize.OpenReader(buffer)
		require.NoError(t, err)
		defer f.Close()

		sheetList := f.GetSheetList()
		assert.ElementsMatch(t, []string{"Alice Smith", "Bob Jones"}, sheetList)

		headerVal, err := f.GetCellValue("Alice Smith", "A1")
		require.NoError(t, err)
		assert.Equal(t, "Date", headerVal)

		dateVal, err := f.GetCellValue("Alice Smith", "A2")
		require.NoError(t, err)
		assert.Equal(t, "2025-06-02", dateVal)

		workedVal, err := f.GetCellValue("Alice Smith", "D2")
		require.NoError(t, err)
		assert.Equal(t, "09:15", workedVal)

		autoVal, err := f.GetCellValue("Alice Smith", "F3")
		require.NoError(t, err)
		assert.Equal(t, "yes", autoVal)

		totalLabel, err := f.GetCellValue("Alice Smith", "A4")
		require.NoError(t, err)
		assert.Equal(t, "Total", totalLabel)

		totalVal, err := f.GetCellValue("Alice Smith", "D4")
		require.NoError(t, err)
		assert.Equal(t, "17:10", totalVal)

		weekendVal, err := f.GetCellValue("Bob Jones", "E2")
		require.NoError(t, err)
		assert.Equal(t, "yes", weekendVal)
	})

	t.Run("no records found", func(t *testing.T) {
		buffer, err := report.GenerateAttendanceReport([]report.Row{})

		require.Error(t, err)
		assert.Nil(t, buffer)
		require.ErrorIs(t, err, report.ErrNoRecords)
	})
}
