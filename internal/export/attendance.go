// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package export renders class reports as Excel workbooks.
package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/xuri/excelize/v2"
)

// ContentType is the media type of the produced workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const attendanceSheet = "Attendance"

var attendanceHeader = []string{"Date", "Student", "Email", "Status", "Marked by"}

// AttendanceRow is one mark in an attendance report.
type AttendanceRow struct {
	Date         time.Time
	StudentName  string
	StudentEmail string
	Status       string
	MarkedBy     string
}

// AttendanceWorkbook writes rows to a single-sheet workbook with a bold,
// filterable header and returns the encoded file.
func AttendanceWorkbook(rows []AttendanceRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory file, nothing to flush

	if err := f.SetSheetName("Sheet1", attendanceSheet); err != nil {
		return nil, oops.Code("EXPORT_FAILED").Wrap(err)
	}
	if err := f.SetSheetRow(attendanceSheet, "A1", &attendanceHeader); err != nil {
		return nil, oops.Code("EXPORT_FAILED").Wrap(err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, oops.Code("EXPORT_FAILED").Wrap(err)
		}
		values := []any{r.Date.Format(time.DateOnly), r.StudentName, r.StudentEmail, r.Status, r.MarkedBy}
		if err := f.SetSheetRow(attendanceSheet, cell, &values); err != nil {
			return nil, oops.Code("EXPORT_FAILED").With("row", i+2).Wrap(err)
		}
	}
	if err := formatHeader(f, attendanceSheet, len(attendanceHeader), rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, oops.Code("EXPORT_FAILED").Wrap(err)
	}
	return buf.Bytes(), nil
}

func formatHeader(f *excelize.File, sheet string, cols int, rows []AttendanceRow) error {
	last, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return oops.Code("EXPORT_FAILED").Wrap(err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return oops.Code("EXPORT_FAILED").Wrap(err)
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", style); err != nil {
		return oops.Code("EXPORT_FAILED").Wrap(err)
	}
	if err := f.AutoFilter(sheet, fmt.Sprintf("A1:%s%d", last, len(rows)+1), nil); err != nil {
		return oops.Code("EXPORT_FAILED").Wrap(err)
	}

	widths := []int{12, len("Student"), len("Email"), 8, len("Marked by")}
	for _, r := range rows {
		widths[1] = max(widths[1], len([]rune(r.StudentName)))
		widths[2] = max(widths[2], len([]rune(r.StudentEmail)))
		widths[4] = max(widths[4], len([]rune(r.MarkedBy)))
	}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, float64(min(w+2, 60))); err != nil {
			return oops.Code("EXPORT_FAILED").Wrap(err)
		}
	}
	return nil
}

var unsafeFileChars = regexp.MustCompile(`[\\/:*?"<>|\s]+`)

// AttendanceFilename names the export of a class, e.g.
// "attendance-Algebra_I-2026-03-10.xlsx".
func AttendanceFilename(className string, day time.Time) string {
	name := unsafeFileChars.ReplaceAllString(strings.TrimSpace(className), "_")
	if name == "" {
		name = "class"
	}
	return fmt.Sprintf("attendance-%s-%s.xlsx", name, day.Format(time.DateOnly))
}
