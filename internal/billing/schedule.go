package billing

import "time"

// ShouldRunToday reports whether invoicing runs on the calendar day of today.
//
// Invoices are issued on the day before month-end. When month-end, or the day
// before it, falls on a weekend the run moves to the Thursday on or before that
// weekend day. Weekdays are numbered 0=Sunday..6=Saturday. Only the date part of
// today, in today's location, is considered.
func ShouldRunToday(today time.Time) bool {
	lastDay := LastDayOfMonth(today)
	dayBeforeLastDay := lastDay.AddDate(0, 0, -1)
	isThursday := today.Weekday() == time.Thursday

	switch {
	case isWeekend(lastDay):
		return isThursday && today.Day() == thursdayOnOrBefore(lastDay).Day()
	case isWeekend(dayBeforeLastDay):
		return isThursday && today.Day() == thursdayOnOrBefore(dayBeforeLastDay).Day()
	default:
		return today.Day() == dayBeforeLastDay.Day()
	}
}

// LastDayOfMonth returns midnight of the final day of t's month.
// Day 0 of the following month normalises to it, including December.
func LastDayOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
}

// thursdayOnOrBefore steps back (weekday+3) mod 7 days, which lands on
// Thursday for every weekday.
func thursdayOnOrBefore(t time.Time) time.Time {
	return t.AddDate(0, 0, -((int(t.Weekday()) + 3) % 7))
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// NextRunDate returns midnight of the first day on or after from on which
// ShouldRunToday holds.
func NextRunDate(from time.Time) time.Time {
	d := StartOfDay(from)
	// Every month has a run day, so two months is an upper bound.
	for i := 0; i < 62; i++ {
		if ShouldRunToday(d) {
			return d
		}
		d = d.AddDate(0, 0, 1)
	}
	return time.Time{}
}

// RunDates returns the run day of each month of year, January first.
func RunDates(year int, loc *time.Location) []time.Time {
	dates := make([]time.Time, 0, 12)
	for m := time.January; m <= time.December; m++ {
		dates = append(dates, NextRunDate(time.Date(year, m, 1, 0, 0, 0, 0, loc)))
	}
	return dates
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
