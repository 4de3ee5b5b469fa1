package calendar

import "time"

// Cell is one slot of the month grid. Blank cells pad the grid before the
// 1st and after the last day.
type Cell struct {
	Blank   bool
	Day     int
	Date    string
	Weekday time.Weekday
	Weekend bool
}

// Grid is a fully computed month layout. It is rebuilt from scratch on
// every render.
type Grid struct {
	View     ViewState
	Headers  [7]time.Weekday
	Cells    []Cell
	Leading  int
	Days     int
	Trailing int
}

// BuildGrid lays out the month with weeks starting on weekStart.
func BuildGrid(vs ViewState, weekStart time.Weekday) Grid {
	vs = SetMonth(vs.Year, vs.Month)

	g := Grid{View: vs}
	for i := 0; i < 7; i++ {
		g.Headers[i] = (weekStart + time.Weekday(i)) % 7
	}

	g.Leading = (int(FirstWeekday(vs.Year, vs.Month)) - int(weekStart) + 7) % 7
	g.Days = DaysIn(vs.Year, vs.Month)
	g.Trailing = (7 - (g.Leading+g.Days)%7) % 7

	g.Cells = make([]Cell, 0, g.Leading+g.Days+g.Trailing)
	for i := 0; i < g.Leading; i++ {
		g.Cells = append(g.Cells, Cell{Blank: true})
	}

	first := vs.First(time.UTC)
	for day := 1; day <= g.Days; day++ {
		wd := first.AddDate(0, 0, day-1).Weekday()
		g.Cells = append(g.Cells, Cell{
			Day:     day,
			Date:    ISODate(vs.Year, vs.Month, day),
			Weekday: wd,
			Weekend: wd == time.Saturday || wd == time.Sunday,
		})
	}

	for i := 0; i < g.Trailing; i++ {
		g.Cells = append(g.Cells, Cell{Blank: true})
	}

	return g
}

// Weeks splits the cells into rows of seven.
func (g Grid) Weeks() [][]Cell {
	var weeks [][]Cell
	for i := 0; i < len(g.Cells); i += 7 {
		end := i + 7
		if end > len(g.Cells) {
			end = len(g.Cells)
		}
		weeks = append(weeks, g.Cells[i:end])
	}
	return weeks
}

// IndexOf returns the cell index holding date, or -1.
func (g Grid) IndexOf(date string) int {
	if date == "" {
		return -1
	}
	for i, c := range g.Cells {
		if !c.Blank && c.Date == date {
			return i
		}
	}
	return -1
}

// Summaries returns the first limit items and how many were left out.
func Summaries[T any](items []T, limit int) ([]T, int) {
	if limit < 0 {
		limit = 0
	}
	if len(items) <= limit {
		return items, 0
	}
	return items[:limit], len(items) - limit
}
