// Package calendar builds fixed six-week month grids and overlays persisted
// day records onto them.
package calendar

import (
	"fmt"
	"time"

	"sofia-api/domain"
)

const (
	// GridSize is the number of cells in a month grid: six Sunday-first weeks.
	GridSize = 42

	monthLayout = "2006-01"
	isoLayout   = "2006-01-02"
)

// WeekdayLabels are the column headers of a grid, Sunday first.
var WeekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// MonthKey formats the YYYY-MM key of t's calendar month.
func MonthKey(t time.Time) string {
	return t.Format(monthLayout)
}

// ISODate formats the YYYY-MM-DD key of t's calendar date.
func ISODate(t time.Time) string {
	return t.Format(isoLayout)
}

// ParseMonthKey parses YYYY-MM into the first day of that month (UTC).
func ParseMonthKey(key string) (time.Time, error) {
	t, err := time.Parse(monthLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidMonth, key)
	}
	return t, nil
}

// ParseISODate parses YYYY-MM-DD into midnight UTC of that date.
func ParseISODate(iso string) (time.Time, error) {
	t, err := time.Parse(isoLayout, iso)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidISODate, iso)
	}
	return t, nil
}

// MonthOfISO returns the month key an ISO date belongs to.
func MonthOfISO(iso string) (string, error) {
	t, err := ParseISODate(iso)
	if err != nil {
		return "", err
	}
	return MonthKey(t), nil
}

// FirstOfMonth returns midnight UTC of the 1st of t's calendar month, as read
// in t's own location.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths shifts a month by n, always landing on the 1st.
func AddMonths(t time.Time, n int) time.Time {
	return FirstOfMonth(t).AddDate(0, n, 0)
}

// MonthRange returns the ISO dates of the first and last day of t's month.
func MonthRange(t time.Time) (first, last string) {
	start := FirstOfMonth(t)
	end := start.AddDate(0, 1, -1)
	return ISODate(start), ISODate(end)
}

// Generate builds the grid for ref's month, marking today from the wall clock.
func Generate(ref time.Time) []domain.Day {
	return GenerateAt(ref, time.Now())
}

// GenerateAt builds the 42-day grid for ref's month. The grid starts on the
// Sunday on or before the 1st. isToday is set only for now's date and only
// when that date is inside the reference month.
func GenerateAt(ref, now time.Time) []domain.Day {
	first := FirstOfMonth(ref)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	today := ISODate(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))

	days := make([]domain.Day, 0, GridSize)
	for i := 0; i < GridSize; i++ {
		date := start.AddDate(0, 0, i)
		iso := ISODate(date)
		current := date.Year() == first.Year() && date.Month() == first.Month()
		days = append(days, domain.Day{
			ISO:            iso,
			Date:           date,
			Day:            date.Day(),
			IsCurrentMonth: current,
			IsToday:        current && iso == today,
			Notes:          []domain.Note{},
			Moods:          domain.MoodSet{},
		})
	}
	return days
}
