package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cwarden/daybook/internal/calendar"
	"github.com/cwarden/daybook/internal/config"
	"github.com/cwarden/daybook/internal/events"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

const (
	minCellWidth  = 8
	minCellHeight = 2
	maxPopupWidth = 72
)

// dayCell is what a single calendar square shows.
type dayCell struct {
	Lines []string
	More  int
}

func (d dayCell) MoreLabel() string {
	if d.More <= 0 {
		return ""
	}
	return fmt.Sprintf("+%d more", d.More)
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var body string
	switch {
	case m.notice != "":
		body = m.viewNotice()
	case m.confirm != nil:
		body = m.viewConfirm()
	case m.editor.open:
		body = m.viewEditor()
	case m.mode == ViewHelp:
		body = m.viewHelp()
	default:
		return lipgloss.JoinVertical(lipgloss.Left, m.viewCalendar(), m.renderStatusBar())
	}

	centered := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, body)
	return lipgloss.JoinVertical(lipgloss.Left, centered, m.renderStatusBar())
}

// renderDayCell returns the summaries for date, clipped to width, followed
// by the count of events that did not fit.
func (m *Model) renderDayCell(date string, width int) dayCell {
	shown, more := calendar.Summaries(m.store.For(date), m.config.MaxCellEvents)

	cell := dayCell{Lines: make([]string, 0, len(shown)), More: more}
	for _, ev := range shown {
		line := summary(ev)
		if width > 0 {
			line = truncate.StringWithTail(line, uint(width), "…")
		}
		cell.Lines = append(cell.Lines, line)
	}
	return cell
}

func summary(ev events.Event) string {
	return ev.Author + ": " + strings.Join(strings.Fields(ev.Content), " ")
}

func (m *Model) viewCalendar() string {
	weeks := m.grid.Weeks()

	cellWidth := m.width / 7
	if cellWidth < minCellWidth {
		cellWidth = minCellWidth
	}
	cellHeight := minCellHeight
	if len(weeks) > 0 {
		// Title, weekday headers and status bar take three lines
		if h := (m.height - 3) / len(weeks); h > cellHeight {
			cellHeight = h
		}
	}

	title := m.styles.Header.Render(fmt.Sprintf("‹ %s ›", m.view))
	if m.loading {
		title += m.styles.Help.Render("  loading…")
	}

	var headers []string
	for _, wd := range m.grid.Headers {
		headers = append(headers, m.weekdayStyle(wd).
			Width(cellWidth).
			Align(lipgloss.Center).
			Render(wd.String()[:3]))
	}

	rows := []string{
		lipgloss.PlaceHorizontal(cellWidth*7, lipgloss.Center, title),
		lipgloss.JoinHorizontal(lipgloss.Top, headers...),
	}
	for _, week := range weeks {
		cells := make([]string, 0, len(week))
		for _, c := range week {
			cells = append(cells, m.renderCell(c, cellWidth, cellHeight))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderCell(c calendar.Cell, width, height int) string {
	box := lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height)
	if c.Blank {
		return box.Render("")
	}

	dayStyle := m.weekdayStyle(c.Weekday)
	date := m.selected.Format(calendar.ISOLayout)
	today := m.today().Format(calendar.ISOLayout)
	switch c.Date {
	case date:
		dayStyle = m.styles.Selected
	case today:
		dayStyle = m.styles.Today
	}

	content := m.renderDayCell(c.Date, width-1)
	lines := []string{dayStyle.Render(fmt.Sprintf("%2d", c.Day))}
	for _, line := range content.Lines {
		lines = append(lines, m.styles.Event.Render(line))
	}
	if label := content.MoreLabel(); label != "" {
		lines = append(lines, m.styles.More.Render(label))
	}
	if len(lines) > height {
		lines = lines[:height]
	}

	return box.Render(strings.Join(lines, "\n"))
}

func (m *Model) weekdayStyle(wd time.Weekday) lipgloss.Style {
	switch wd {
	case time.Sunday:
		return m.styles.Sunday
	case time.Saturday:
		return m.styles.Saturday
	}
	return m.styles.Normal
}

func (m *Model) popupWidth() int {
	w := m.width - 8
	if w > maxPopupWidth || w <= 0 {
		w = maxPopupWidth
	}
	return w
}

func (m *Model) viewEditor() string {
	width := m.popupWidth()
	inner := width - 4

	header := m.editor.date
	if t, err := calendar.ParseISODate(m.editor.date, time.Local); err == nil {
		header = t.Format("Monday, " + m.config.DateFormat)
	}

	sections := []string{m.styles.Header.Render(header), ""}

	evs := m.store.For(m.editor.date)
	if len(evs) == 0 {
		sections = append(sections, m.styles.Help.Render("No events for this date."))
	}
	for i, ev := range evs {
		marker := "  "
		if m.editor.focus == focusList && i == m.editor.selected {
			marker = m.styles.Selected.Render(">") + " "
		}
		author := m.styles.Header.Render(ev.Author + ":")
		body := wordwrap.String(ev.Content, inner-4)
		body = strings.ReplaceAll(body, "\n", "\n    ")
		sections = append(sections, marker+author, "    "+m.styles.Normal.Render(body))
	}

	sections = append(sections,
		"",
		m.editor.author.View(),
		m.editor.content.View(),
		"",
		m.styles.Help.Render("tab next field • ctrl+s save • d delete (in list) • esc close"),
	)

	return m.styles.Border.
		Width(inner).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) viewNotice() string {
	width := m.popupWidth() - 4
	text := wordwrap.String(m.notice, width)
	return m.styles.Border.
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			m.styles.Error.Render(text),
			"",
			m.styles.Help.Render("Press enter to dismiss"),
		))
}

func (m *Model) viewConfirm() string {
	lines := []string{m.styles.Header.Render(m.confirm.prompt)}
	if _, ev, ok := m.store.Find(m.confirm.id); ok {
		lines = append(lines, m.styles.Normal.Render(truncate.StringWithTail(summary(ev), uint(m.popupWidth()-8), "…")))
	}
	lines = append(lines, "", m.styles.Help.Render("[y] Delete  [n] Cancel"))

	return m.styles.Border.
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

var actionHelp = map[string]string{
	"quit":       "Quit",
	"help":       "Toggle help",
	"today":      "Go to today",
	"refresh":    "Reload events",
	"open_day":   "Open day (add / delete events)",
	"next_day":   "Next day",
	"prev_day":   "Previous day",
	"next_week":  "Next week",
	"prev_week":  "Previous week",
	"next_month": "Next month",
	"prev_month": "Previous month",
	"next_year":  "Next year",
	"prev_year":  "Previous year",
	"goto_date":  "Go to date",
}

func (m *Model) viewHelp() string {
	keys := bindingsByAction(m.config.KeyBindings)

	help := []string{
		m.styles.Header.Render("Daybook Help"),
		"",
	}
	for _, action := range config.Actions {
		if len(keys[action]) == 0 {
			continue
		}
		help = append(help, m.styles.Help.Render(fmt.Sprintf("  %-12s - %s", strings.Join(keys[action], "/"), actionHelp[action])))
	}
	help = append(help,
		"",
		m.styles.Normal.Render("In the day popup:"),
		m.styles.Help.Render("  tab          - Next field"),
		m.styles.Help.Render("  ctrl+s       - Save event"),
		m.styles.Help.Render("  j/k, d       - Select and delete an event"),
		m.styles.Help.Render("  esc          - Close"),
		"",
		m.styles.Help.Render("Press any key to return..."),
	)

	return lipgloss.JoinVertical(lipgloss.Left, help...)
}

func bindingsByAction(bindings map[string]string) map[string][]string {
	out := make(map[string][]string)
	for key, action := range bindings {
		out[action] = append(out[action], key)
	}
	for _, keys := range out {
		sort.Slice(keys, func(i, j int) bool {
			if len(keys[i]) != len(keys[j]) {
				return len(keys[i]) < len(keys[j])
			}
			return keys[i] < keys[j]
		})
	}
	return out
}

func (m *Model) renderStatusBar() string {
	left := fmt.Sprintf(" %s | Events this month: %d",
		m.selected.Format(m.config.DateFormat),
		m.store.InMonth(fmt.Sprintf("%04d-%02d", m.view.Year, m.view.Month+1)).Len())
	if m.gotoOn {
		left = " " + m.gotoIn.View()
	}

	right := "? for help | q to quit"
	if m.message != "" {
		right = m.styles.Message.Render(m.message)
	}

	width := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if width < 0 {
		width = 0
	}

	middle := strings.Repeat(" ", width)

	return m.styles.Help.Render(left + middle + right)
}
