// Package worklog turns work-log spreadsheet rows into entries and aggregates
// the hours of a billing period.
package worklog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/monthly-invoicer/internal/billing"
	"github.com/Tiliavir/monthly-invoicer/internal/model"
)

// Fixed column order of the work-log sheet.
const (
	colID = iota
	colDate
	colHours
	colDescription
	colCreated
	colUpdated
)

var dateLayouts = []string{
	"2006/01/02 15:04:05",
	"2006-01-02 15:04:05",
	"2006/1/2 15:04:05",
	"2006-1-2 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006-01-02",
	"2006/1/2",
	"2006-1-2",
	"2006年1月2日",
}

// spreadsheetEpoch is day 0 of spreadsheet serial dates.
var spreadsheetEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ParseRows maps sheet rows to entries. Row 0 is the header and is skipped.
// Rows with an unparseable date or hours value are left out; skipped counts them.
func ParseRows(rows [][]any, loc *time.Location) (entries []model.WorkLogEntry, skipped int) {
	if loc == nil {
		loc = time.Local
	}
	if len(rows) <= 1 {
		return []model.WorkLogEntry{}, 0
	}
	entries = make([]model.WorkLogEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		date, ok := ParseDate(cell(row, colDate), loc)
		if !ok {
			skipped++
			continue
		}
		hours, ok := parseHours(cell(row, colHours))
		if !ok {
			skipped++
			continue
		}
		created, _ := ParseDate(cell(row, colCreated), loc)
		updated, _ := ParseDate(cell(row, colUpdated), loc)
		entries = append(entries, model.WorkLogEntry{
			ID:          cellString(cell(row, colID)),
			Date:        date,
			Hours:       hours,
			Description: cellString(cell(row, colDescription)),
			CreatedAt:   created,
			UpdatedAt:   updated,
		})
	}
	return entries, skipped
}

// FilterPeriod keeps the entries dated within p.
func FilterPeriod(entries []model.WorkLogEntry, p billing.Period) []model.WorkLogEntry {
	out := make([]model.WorkLogEntry, 0, len(entries))
	for _, e := range entries {
		if p.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// TotalHours sums the hours of entries. Negative values are not rejected.
func TotalHours(entries []model.WorkLogEntry) float64 {
	var total float64
	for _, e := range entries {
		total += e.Hours
	}
	return total
}

// BilledHours is TotalHours rounded the way it is written to the invoice.
func BilledHours(entries []model.WorkLogEntry) float64 {
	return RoundHours(TotalHours(entries))
}

// RoundHours drops float noise from summing, e.g. 0.1+0.2, keeping two decimals.
func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

// ParseDate interprets a cell value as a calendar date in loc. It accepts
// time.Time, spreadsheet serial numbers and the common textual layouts.
func ParseDate(v any, loc *time.Location) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return x.In(loc), true
	case float64:
		return fromSerial(x, loc)
	case int:
		return fromSerial(float64(x), loc)
	case int64:
		return fromSerial(float64(x), loc)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.In(loc), true
		}
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func fromSerial(serial float64, loc *time.Location) (time.Time, bool) {
	if serial <= 0 || math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, false
	}
	days := math.Floor(serial)
	secs := math.Round((serial - days) * 24 * 60 * 60)
	d := spreadsheetEpoch.AddDate(0, 0, int(days))
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, int(secs), 0, loc), true
}

func parseHours(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, true
	case float64:
		return x, !math.IsNaN(x)
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func cell(row []any, i int) any {
	if i < len(row) {
		return row[i]
	}
	return nil
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
