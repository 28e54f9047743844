package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is the calendar month whose logged hours go into one invoice.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses "YYYY-MM" (or "YYYY/MM").
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	sep := strings.IndexAny(s, "-/")
	if sep <= 0 {
		return Period{}, fmt.Errorf("invalid period %q: want YYYY-MM", s)
	}
	year, err := strconv.Atoi(s[:sep])
	if err != nil || year < 1 || year > 9999 {
		return Period{}, fmt.Errorf("invalid period %q: bad year", s)
	}
	month, err := strconv.Atoi(s[sep+1:])
	if err != nil || month < 1 || month > 12 {
		return Period{}, fmt.Errorf("invalid period %q: bad month", s)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// String formats the period as "YYYY-MM".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// LastDay returns the day-of-month of the final day of the period.
func (p Period) LastDay() int {
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Contains reports whether t's year and month match the period.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// InvoiceNumber is the period's last day as YYYYMMDD. It is assembled from the
// digits directly so no time zone or locale can shift it.
func (p Period) InvoiceNumber() string {
	return fmt.Sprintf("%04d%02d%02d", p.Year, int(p.Month), p.LastDay())
}

// InvoiceDate is the period's last day as YYYY/MM/DD.
func (p Period) InvoiceDate() string {
	return fmt.Sprintf("%04d/%02d/%02d", p.Year, int(p.Month), p.LastDay())
}
