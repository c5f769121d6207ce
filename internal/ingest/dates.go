package ingest

import (
	"strconv"
	"strings"
	"time"
)

// Days between the Excel epoch (1899-12-30) and the Unix epoch.
const excelEpochOffsetDays = 25569

// dateLayouts are tried in order when a date cell is not an Excel serial.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// SerialToDate converts an Excel serial day number to a YYYY-MM-DD string.
// Serial 45658 maps to 2025-01-01.
func SerialToDate(serial float64) string {
	seconds := (serial - excelEpochOffsetDays) * 86400
	return time.Unix(int64(seconds), 0).UTC().Format("2006-01-02")
}

// normalizeDateCell turns a raw date cell into YYYY-MM-DD. Numeric cells are
// interpreted as Excel serials; strings go through the layout list. The
// second return is false when the cell cannot be read as a date, and callers
// drop the row rather than failing the table.
func normalizeDateCell(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case float64:
		if v <= 0 {
			return "", false
		}
		return SerialToDate(v), true
	case int:
		if v <= 0 {
			return "", false
		}
		return SerialToDate(float64(v)), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return "", false
		}
		if serial, err := strconv.ParseFloat(s, 64); err == nil {
			if serial <= 0 {
				return "", false
			}
			return SerialToDate(serial), true
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format("2006-01-02"), true
			}
		}
		return "", false
	default:
		return "", false
	}
}
