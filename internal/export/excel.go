// Package export renders filtered attendance rows into a styled xlsx
// workbook for download.
package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"rollcall/internal/attendance"
)

// ErrEmptyResult means the filters matched no rows; no file is produced.
var ErrEmptyResult = errors.New("no rows to export")

const sheetName = "Attendance Data"

var headers = []string{"Student ID", "Student Name", "Attendance Type", "Date", "Time", "UTC Timestamp"}

// Filename returns the attachment name for an export generated at now.
// Same-second collisions are accepted, last write wins.
func Filename(now time.Time) string {
	return fmt.Sprintf("attendance_data_%s.xlsx", now.Format("20060102_150405"))
}

// Write renders rows into a single-sheet workbook on w.
func Write(w io.Writer, rows []attendance.Row) error {
	if len(rows) == 0 {
		return ErrEmptyResult
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	widths := make([]int, len(headers))
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return err
		}
		widths[col] = len(header)
	}

	for i, row := range rows {
		values := cellValues(row)
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
			if len(value) > widths[col] {
				widths[col] = len(value)
			}
		}
	}

	for col, width := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, name, name, float64(width+2)); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func cellValues(row attendance.Row) []string {
	return []string{
		row.StudentCode.String,
		row.StudentName.String,
		row.Type,
		row.DateLocal,
		row.TimeLocal,
		row.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}
