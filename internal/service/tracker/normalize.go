package tracker

import (
	"math"
	"strconv"
	"strings"
	"time"

	"demand-planning/internal/storage"
)

const isoLayout = "2006-01-02"

// regionalLayouts are tried in order after ISO. Month-first wins when a
// value is valid both ways.
var regionalLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"2/1/2006",
	"02/01/2006",
	isoLayout,
	"1/2/06",
	"01/02/06",
}

// spreadsheetEpoch is day 0 of the 1900 date system as spreadsheets count
// it (serial 1 = 1900-01-01 once the phantom 1900-02-29 is accounted for).
var spreadsheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseHours strips thousands separators and parses a decimal. Anything
// unparseable counts as zero hours.
func ParseHours(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}

	return f
}

// ParseDate recognises ISO dates, common numeric regional formats and
// spreadsheet serial numbers. ok is false when nothing matched.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	// ISO, possibly with a time part as legacy .xls readers render dates
	if len(s) >= len(isoLayout) {
		if t, err := time.Parse(isoLayout, s[:len(isoLayout)]); err == nil &&
			(len(s) == len(isoLayout) || s[len(isoLayout)] == 'T' || s[len(isoLayout)] == ' ') {
			return t, true
		}
	}

	for _, layout := range regionalLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial <= 0 || math.IsInf(serial, 0) || serial > maxSerial {
		return time.Time{}, false
	}

	return spreadsheetEpoch.AddDate(0, 0, int(math.Floor(serial))), true
}

// maxSerial is 9999-12-31, the largest date a spreadsheet can hold.
const maxSerial = 2958465

// WeekStart returns midnight of the Sunday that starts t's week.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// ClassifyActualOrProposed reads a column's A/P flag. The match is
// substring based and Actual is checked first, so "PA" and "PLAN" are
// Actual. Anything unrecognised is Proposed.
func ClassifyActualOrProposed(raw string) storage.ActualOrProposed {
	upper := strings.ToUpper(strings.TrimSpace(raw))

	if strings.Contains(upper, "A") {
		return storage.Actual
	}

	return storage.Proposed
}
