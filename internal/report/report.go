package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// ErrNoRecords is returned when a report is requested for a period with
// no attendance data.
var ErrNoRecords = errors.New("failed to generate report, 0 attendance records were provided")

// maxSheetNameLen is the hard excel limit on sheet names.
const maxSheetNameLen = 31

// Generator holds the state for the Excel report generation process.
type Generator struct {
	file *excelize.File
}

// Row holds one day of one employee in the attendance workbook.
type Row struct {
	Employee   string // Employee display name, also the sheet name
	Date       string // Calendar day (YYYY-MM-DD)
	Arrival    string // First arrival clock time, empty when absent
	Departure  string // Last departure clock time, empty when the day is open
	Minutes    int    // Minutes worked between first arrival and last departure
	Weekend    bool   // Day fell on a weekend
	AutoClosed bool   // Departure was synthesized by the sweeper
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		file: excelize.NewFile(),
	}
}

// GenerateAttendanceReport builds the attendance workbook: one sheet per
// employee, one row per day, with a totals row at the bottom of each
// sheet. It returns a buffer with the xlsx content, or ErrNoRecords when
// rows is empty.
func GenerateAttendanceReport(rows []Row) (*bytes.Buffer, error) {
	var err error

	if len(rows) == 0 {
		return nil, ErrNoRecords
	}

	rowsByEmployee := make(map[string][]Row)
	for _, row := range rows {
		rowsByEmployee[row.Employee] = append(rowsByEmployee[row.Employee], row)
	}

	gen := NewGenerator()
	defer gen.file.Close()

	if err = gen.addSheets(rowsByEmployee); err != nil {
		return nil, fmt.Errorf("failed to add sheets: %w", err)
	}

	// setup first sheet as active
	gen.file.SetActiveSheet(0)

	// delete default sheet
	if sheetIndex, _ := gen.file.GetSheetIndex("Sheet1"); sheetIndex != -1 {
		if err = gen.file.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("failed to delete default sheet 'Sheet1': %w", err)
		}
	}

	buffer, err := gen.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write data from saved file: %w", err)
	}

	return buffer, nil
}

// addSheets creates one sheet per employee and fills the day rows plus
// the totals row.
func (g *Generator) addSheets(rowsByEmployee map[string][]Row) error {
	var err error
	headerIndex := 2

	for employee, days := range rowsByEmployee {
		sheetName := truncateSheetName(employee)

		if _, err = g.file.NewSheet(sheetName); err != nil {
			return fmt.Errorf("failed to generate new sheet '%s': %w", sheetName, err)
		}

		if err = g.setupSheet(sheetName, len(days)); err != nil {
			return fmt.Errorf("failed to setup sheet '%s': %w", sheetName, err)
		}

		total := 0
		for i, day := range days {
			if err = g.addRow(sheetName, i+headerIndex, day); err != nil { // i+2, because the first row - header
				return fmt.Errorf("failed to add row '%d': %w", i+headerIndex, err)
			}
			total += day.Minutes
		}

		if err = g.addTotalRow(sheetName, len(days)+headerIndex, total); err != nil {
			return fmt.Errorf("failed to add total row: %w", err)
		}
	}
	return nil
}

// setupSheet initializes the specified sheet with headers, styles, and column widths.
func (g *Generator) setupSheet(sheetName string, rowCount int) error {
	var err error

	// Style creating
	headerStyle, err := g.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create new style: %w", err)
	}

	// Headers creating
	rowHeight := 20
	headers := []string{"Date", "Arrival", "Departure", "Worked", "Weekend", "Auto-closed"}
	if err = g.file.SetRowHeight(sheetName, 1, float64(rowHeight)); err != nil {
		return fmt.Errorf("failed to set row height for headers: %w", err)
	}
	if err = g.file.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to set sheet row for headers: %w", err)
	}
	if err = g.file.SetCellStyle(sheetName, "A1", "F1", headerStyle); err != nil {
		return fmt.Errorf("failed to set cell style for headers: %w", err)
	}

	// Setup width column
	widths := map[string]float64{
		"A": 14, "B": 10, "C": 12, "D": 10, "E": 10, "F": 13, //nolint:mnd // const values for row width
	}
	for col, width := range widths {
		if err = g.file.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	// Add table
	if err = g.file.AddTable(sheetName, &excelize.Table{
		Range:     fmt.Sprintf("A1:F%d", rowCount+1),
		Name:      "table_" + strings.ReplaceAll(sheetName, " ", ""),
		StyleName: "TableStyleMedium9",
	}); err != nil {
		return fmt.Errorf("failed to add table: %w", err)
	}

	return nil
}

// addRow adds one day row to the employee's sheet.
func (g *Generator) addRow(sheetName string, rowNum int, row Row) error {
	rowData := []interface{}{
		row.Date,
		row.Arrival,
		row.Departure,
		formatMinutes(row.Minutes),
		flag(row.Weekend),
		flag(row.AutoClosed),
	}
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)

	if err := g.file.SetSheetRow(sheetName, cell, &rowData); err != nil {
		return fmt.Errorf("failed to set sheet row: %w", err)
	}

	return nil
}

// addTotalRow appends the summary row below the day rows.
func (g *Generator) addTotalRow(sheetName string, rowNum, totalMinutes int) error {
	rowData := []interface{}{"Total", "", "", formatMinutes(totalMinutes), "", ""}
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)

	if err := g.file.SetSheetRow(sheetName, cell, &rowData); err != nil {
		return fmt.Errorf("failed to set total row: %w", err)
	}

	return nil
}

// formatMinutes renders minutes as "HH:MM".
func formatMinutes(minutes int) string {
	if minutes == 0 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func flag(value bool) string {
	if value {
		return "yes"
	}
	return ""
}

// truncateSheetName truncates the given sheet name to a maximum of 31 runes.
// If the name exceeds 31 runes, it returns the first 31 runes of the name.
// Otherwise, it returns the name as is.
func truncateSheetName(name string) string {
	if utf8.RuneCountInString(name) > maxSheetNameLen {
		runes := []rune(name)
		return string(runes[:maxSheetNameLen])
	}
	return name
}
