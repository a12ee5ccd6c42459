package tracker

import (
	"errors"
	"fmt"
	"strings"

	"demand-planning/internal/storage"
)

// Result is the outcome of parsing one workbook. Problems are reported as
// data; Parse never fails.
type Result struct {
	Records  []storage.HourRecord `json:"records"`
	Errors   []string             `json:"errors"`
	Warnings []string             `json:"warnings"`
}

// Parser adapts Parse to the ingestion pipeline.
type Parser struct{}

func (Parser) Parse(filename string, data []byte, demandType storage.DemandType) Result {
	return Parse(filename, data, demandType)
}

// weekColumn holds everything a week column contributes to its records.
type weekColumn struct {
	weekStart        string
	actualOrProposed storage.ActualOrProposed
	phase            string
	milestone        string
}

// Parse extracts hour records from the Detail sheet of a budget tracker
// workbook. Cells that do not hold a usable date or hours value are skipped
// silently. Unexpected failures discard all records and surface as a single
// error.
func Parse(filename string, data []byte, demandType storage.DemandType) (res Result) {
	res = emptyResult()

	defer func() {
		if r := recover(); r != nil {
			res = emptyResult()
			res.Errors = append(res.Errors, fmt.Sprintf("Error parsing Excel file: %v", r))
		}
	}()

	rows, err := readDetailSheet(filename, data)
	if errors.Is(err, errNoDetailSheet) {
		res.Errors = append(res.Errors, `No "Detail" sheet found in workbook`)
		return res
	}
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Error parsing Excel file: %v", err))
		return res
	}

	if len(rows) < minRows {
		res.Errors = append(res.Errors, fmt.Sprintf("Sheet has insufficient rows (minimum %d required)", minRows))
		return res
	}

	res.Records = extract(rows, demandType)

	if len(res.Records) == 0 {
		res.Warnings = append(res.Warnings, "No valid hours records found in file")
	} else {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Successfully extracted %d hours records", len(res.Records)))
	}

	return res
}

func emptyResult() Result {
	return Result{
		Records:  []storage.HourRecord{},
		Errors:   []string{},
		Warnings: []string{},
	}
}

func extract(rows [][]string, demandType storage.DemandType) []storage.HourRecord {
	project := cell(rows, headerRow, colProjectName)
	projectID := cell(rows, headerRow, colProjectID)
	columns := weekColumns(rows)

	records := []storage.HourRecord{}
	for rowIdx := firstDataRow; rowIdx < len(rows); rowIdx++ {
		employeeID := cell(rows, rowIdx, colEmployeeID)
		if employeeID == "" {
			continue
		}

		resourceName := cell(rows, rowIdx, colResourceName)
		rate := ParseHours(cell(rows, rowIdx, colRate))
		activityID := cell(rows, rowIdx, colActivityID)

		for colIdx := firstWeekCol; colIdx < len(rows[rowIdx]); colIdx++ {
			week, ok := columns[colIdx]
			if !ok {
				continue
			}

			hours := ParseHours(cell(rows, rowIdx, colIdx))
			if hours <= 0 || hours > maxHours {
				continue
			}

			records = append(records, storage.HourRecord{
				Project:          project,
				ProjectID:        projectID,
				EmployeeID:       employeeID,
				ResourceName:     resourceName,
				Rate:             rate,
				ActivityID:       activityID,
				Phase:            week.phase,
				Milestone:        week.milestone,
				WeekStartDate:    week.weekStart,
				ActualOrProposed: week.actualOrProposed,
				Hours:            hours,
				DemandType:       demandType,
			})
		}
	}

	return records
}

// weekColumns resolves the header cells of every column from H onwards.
// Columns without a usable date, or with a year outside the sanity bounds,
// are left out.
func weekColumns(rows [][]string) map[int]weekColumn {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	columns := make(map[int]weekColumn)
	for colIdx := firstWeekCol; colIdx < width; colIdx++ {
		date, ok := ParseDate(cell(rows, dateRow, colIdx))
		if !ok {
			continue
		}
		if date.Year() < minYear || date.Year() > maxYear {
			continue
		}

		columns[colIdx] = weekColumn{
			weekStart:        WeekStart(date).Format(isoLayout),
			actualOrProposed: ClassifyActualOrProposed(cell(rows, headerRow, colIdx)),
			phase:            cell(rows, phaseRow, colIdx),
			milestone:        cell(rows, milestoneRow, colIdx),
		}
	}

	return columns
}

func cell(rows [][]string, row, col int) string {
	if row < 0 || row >= len(rows) || col < 0 || col >= len(rows[row]) {
		return ""
	}
	return strings.TrimSpace(rows[row][col])
}
