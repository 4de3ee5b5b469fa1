package calendar

import (
	"fmt"
	"time"
)

// DefaultCellLimit is the number of event summaries shown in a grid cell
// before the "+N more" indicator takes over.
const DefaultCellLimit = 6

// ISOLayout is the date key format used by the events API.
const ISOLayout = "2006-01-02"

// ViewState is the month currently shown. Month is zero-based (0 = January).
type ViewState struct {
	Year  int
	Month int
}

// SetMonth folds any month overflow or underflow into the year.
func SetMonth(year, month int) ViewState {
	year += month / 12
	month %= 12
	if month < 0 {
		month += 12
		year--
	}
	return ViewState{Year: year, Month: month}
}

// FromTime returns the view state containing t.
func FromTime(t time.Time) ViewState {
	return ViewState{Year: t.Year(), Month: int(t.Month()) - 1}
}

func (v ViewState) AddMonths(n int) ViewState {
	return SetMonth(v.Year, v.Month+n)
}

func (v ViewState) AddYears(n int) ViewState {
	return SetMonth(v.Year+n, v.Month)
}

func (v ViewState) Next() ViewState { return v.AddMonths(1) }

func (v ViewState) Prev() ViewState { return v.AddMonths(-1) }

// First returns midnight of the first day of the month in loc.
func (v ViewState) First(loc *time.Location) time.Time {
	return time.Date(v.Year, time.Month(v.Month+1), 1, 0, 0, 0, 0, loc)
}

// Contains reports whether t falls inside the month.
func (v ViewState) Contains(t time.Time) bool {
	return t.Year() == v.Year && int(t.Month())-1 == v.Month
}

func (v ViewState) String() string {
	return fmt.Sprintf("%s %d", time.Month(v.Month+1), v.Year)
}

// DaysIn returns the number of days in the zero-based month.
func DaysIn(year, month int) int {
	vs := SetMonth(year, month)
	// Day 0 of the next month is the last day of this one.
	return time.Date(vs.Year, time.Month(vs.Month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekday returns the weekday of the 1st of the zero-based month.
func FirstWeekday(year, month int) time.Weekday {
	return SetMonth(year, month).First(time.UTC).Weekday()
}

// ISODate formats a zero-based month date as YYYY-MM-DD.
func ISODate(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month+1, day)
}

// ParseISODate parses a YYYY-MM-DD key in loc.
func ParseISODate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(ISOLayout, s, loc)
}
