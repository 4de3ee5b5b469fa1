package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Target is where a goto request lands. HasDay is false when the input only
// named a month, in which case Date is the first of that month.
type Target struct {
	Date   time.Time
	HasDay bool
}

type DateParser struct {
	now      time.Time
	location *time.Location
}

func NewDateParser() *DateParser {
	return &DateParser{
		now:      time.Now(),
		location: time.Local,
	}
}

func (p *DateParser) SetNow(now time.Time) {
	p.now = now
}

const (
	weekdayNames = `mon|monday|tue|tuesday|wed|wednesday|thu|thursday|fri|friday|sat|saturday|sun|sunday`
	monthNames   = `jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|sept|september|oct|october|nov|november|dec|december`
	unitNames    = `day|days|week|weeks|month|months|year|years`
)

var (
	relMonthRe  = regexp.MustCompile(`^(next|last|this)\s+month$`)
	relYearRe   = regexp.MustCompile(`^(next|last|this)\s+year$`)
	weekdayRe   = regexp.MustCompile(`^(next|this)\s+(` + weekdayNames + `)$`)
	inRe        = regexp.MustCompile(`^in\s+(\d+)\s+(` + unitNames + `)$`)
	agoRe       = regexp.MustCompile(`^(\d+)\s+(` + unitNames + `)\s+ago$`)
	isoDayRe    = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)
	isoMonthRe  = regexp.MustCompile(`^(\d{4})-(\d{1,2})$`)
	usDateRe    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	shortDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)
	monthNameRe = regexp.MustCompile(`^(` + monthNames + `)(?:\s+(\d{1,2}))?(?:,?\s+(\d{4}))?$`)
)

func (p *DateParser) Parse(input string) (Target, error) {
	input = strings.ToLower(strings.Join(strings.Fields(input), " "))
	if input == "" {
		return Target{}, fmt.Errorf("empty input")
	}

	if t, ok := p.parseRelative(input); ok {
		return t, nil
	}

	t, ok, err := p.parseAbsolute(input)
	if err != nil {
		return Target{}, err
	}
	if ok {
		return t, nil
	}

	return Target{}, fmt.Errorf("unrecognised date: %q", input)
}

func (p *DateParser) parseRelative(input string) (Target, bool) {
	today := p.today()

	switch input {
	case "today", "now":
		return day(today), true
	case "tomorrow", "tmrw":
		return day(today.AddDate(0, 0, 1)), true
	case "yesterday":
		return day(today.AddDate(0, 0, -1)), true
	}

	if matches := relMonthRe.FindStringSubmatch(input); matches != nil {
		return month(p.firstOfMonth().AddDate(0, direction(matches[1]), 0)), true
	}

	if matches := relYearRe.FindStringSubmatch(input); matches != nil {
		return month(p.firstOfMonth().AddDate(direction(matches[1]), 0, 0)), true
	}

	if matches := weekdayRe.FindStringSubmatch(input); matches != nil {
		return day(p.findNextWeekday(parseWeekday(matches[2]), matches[1] == "next")), true
	}

	if matches := inRe.FindStringSubmatch(input); matches != nil {
		n, _ := strconv.Atoi(matches[1])
		return day(shift(today, n, matches[2])), true
	}

	if matches := agoRe.FindStringSubmatch(input); matches != nil {
		n, _ := strconv.Atoi(matches[1])
		return day(shift(today, -n, matches[2])), true
	}

	return Target{}, false
}

func (p *DateParser) parseAbsolute(input string) (Target, bool, error) {
	if matches := isoDayRe.FindStringSubmatch(input); matches != nil {
		t, err := p.date(atoi(matches[1]), atoi(matches[2]), atoi(matches[3]))
		return day(t), err == nil, err
	}

	if matches := isoMonthRe.FindStringSubmatch(input); matches != nil {
		t, err := p.date(atoi(matches[1]), atoi(matches[2]), 1)
		return month(t), err == nil, err
	}

	if matches := usDateRe.FindStringSubmatch(input); matches != nil {
		t, err := p.date(atoi(matches[3]), atoi(matches[1]), atoi(matches[2]))
		return day(t), err == nil, err
	}

	// MM/DD assumes the current year
	if matches := shortDateRe.FindStringSubmatch(input); matches != nil {
		t, err := p.date(p.now.Year(), atoi(matches[1]), atoi(matches[2]))
		return day(t), err == nil, err
	}

	if matches := monthNameRe.FindStringSubmatch(input); matches != nil {
		year := p.now.Year()
		if matches[3] != "" {
			year = atoi(matches[3])
		}
		m := int(parseMonth(matches[1]))
		if matches[2] == "" {
			t, err := p.date(year, m, 1)
			return month(t), err == nil, err
		}
		t, err := p.date(year, m, atoi(matches[2]))
		return day(t), err == nil, err
	}

	return Target{}, false, nil
}

// date builds a midnight time, rejecting values time.Date would normalise.
func (p *DateParser) date(year, m, d int) (time.Time, error) {
	if m < 1 || m > 12 {
		return time.Time{}, fmt.Errorf("invalid month: %d", m)
	}
	t := time.Date(year, time.Month(m), d, 0, 0, 0, 0, p.location)
	if d < 1 || t.Day() != d {
		return time.Time{}, fmt.Errorf("invalid day %d for %s %d", d, time.Month(m), year)
	}
	return t, nil
}

func (p *DateParser) findNextWeekday(target time.Weekday, skipThisWeek bool) time.Time {
	date := p.today()
	daysUntilTarget := int(target - date.Weekday())

	if daysUntilTarget <= 0 || skipThisWeek {
		daysUntilTarget += 7
	}

	return date.AddDate(0, 0, daysUntilTarget)
}

func (p *DateParser) today() time.Time {
	y, m, d := p.now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.location)
}

func (p *DateParser) firstOfMonth() time.Time {
	y, m, _ := p.now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, p.location)
}

func day(t time.Time) Target   { return Target{Date: t, HasDay: true} }
func month(t time.Time) Target { return Target{Date: t} }

func direction(word string) int {
	switch word {
	case "next":
		return 1
	case "last":
		return -1
	}
	return 0
}

func shift(t time.Time, n int, unit string) time.Time {
	switch {
	case strings.HasPrefix(unit, "day"):
		return t.AddDate(0, 0, n)
	case strings.HasPrefix(unit, "week"):
		return t.AddDate(0, 0, n*7)
	case strings.HasPrefix(unit, "month"):
		return t.AddDate(0, n, 0)
	case strings.HasPrefix(unit, "year"):
		return t.AddDate(n, 0, 0)
	}
	return t
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func parseWeekday(s string) time.Weekday {
	switch s {
	case "sun", "sunday":
		return time.Sunday
	case "mon", "monday":
		return time.Monday
	case "tue", "tuesday":
		return time.Tuesday
	case "wed", "wednesday":
		return time.Wednesday
	case "thu", "thursday":
		return time.Thursday
	case "fri", "friday":
		return time.Friday
	case "sat", "saturday":
		return time.Saturday
	default:
		return time.Sunday
	}
}

func parseMonth(s string) time.Month {
	switch s {
	case "jan", "january":
		return time.January
	case "feb", "february":
		return time.February
	case "mar", "march":
		return time.March
	case "apr", "april":
		return time.April
	case "may":
		return time.May
	case "jun", "june":
		return time.June
	case "jul", "july":
		return time.July
	case "aug", "august":
		return time.August
	case "sep", "sept", "september":
		return time.September
	case "oct", "october":
		return time.October
	case "nov", "november":
		return time.November
	case "dec", "december":
		return time.December
	default:
		return time.January
	}
}
