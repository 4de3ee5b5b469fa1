package ui

import (
	"strings"

	"github.com/cwarden/daybook/internal/calendar"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Overlays take the keyboard in order of precedence.
	switch {
	case m.notice != "":
		return m.handleNoticeKeys(msg)
	case m.confirm != nil:
		return m.handleConfirmKeys(msg)
	case m.gotoOn:
		return m.handleGotoKeys(msg)
	case m.editor.open:
		return m.handleEditorKeys(msg)
	case m.mode == ViewHelp:
		// Any key returns to the calendar
		m.mode = ViewCalendar
		return m, nil
	}

	return m.handleCalendarKeys(msg)
}

func (m *Model) handleNoticeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", " ":
		m.notice = ""
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		c := m.confirm
		m.confirm = nil
		return m, m.performDelete(c.id, c.date)

	case "n", "N", "esc":
		m.confirm = nil
	}
	return m, nil
}

func (m *Model) handleGotoKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.gotoOn = false
		m.gotoIn.Blur()
		return m, nil

	case tea.KeyEnter:
		input := m.gotoIn.Value()
		m.gotoOn = false
		m.gotoIn.Blur()
		if strings.TrimSpace(input) == "" {
			return m, nil
		}
		return m, m.gotoDate(input)
	}

	var cmd tea.Cmd
	m.gotoIn, cmd = m.gotoIn.Update(msg)
	return m, cmd
}

func (m *Model) handleEditorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeEditor()
		return m, nil

	case "ctrl+s":
		return m, m.saveEvent(m.editor.date, m.editor.author.Value(), m.editor.content.Value())

	case "tab":
		return m, m.focusEditor((m.editor.focus + 1) % 3)

	case "shift+tab":
		return m, m.focusEditor((m.editor.focus + 2) % 3)
	}

	switch m.editor.focus {
	case focusAuthor:
		if msg.Type == tea.KeyEnter {
			return m, m.focusEditor(focusContent)
		}
		var cmd tea.Cmd
		m.editor.author, cmd = m.editor.author.Update(msg)
		return m, cmd

	case focusContent:
		var cmd tea.Cmd
		m.editor.content, cmd = m.editor.content.Update(msg)
		return m, cmd

	case focusList:
		return m.handleEventListKeys(msg)
	}

	return m, nil
}

func (m *Model) handleEventListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.store.Count(m.editor.date)

	switch msg.String() {
	case "j", "down":
		if m.editor.selected < n-1 {
			m.editor.selected++
		}

	case "k", "up":
		if m.editor.selected > 0 {
			m.editor.selected--
		}

	case "d", "x", "delete":
		if ev, ok := m.selectedEvent(); ok {
			return m, m.deleteEvent(ev.ID)
		}
	}

	return m, nil
}

func (m *Model) handleCalendarKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.config.KeyBindings[msg.String()] {
	case "quit":
		return m, tea.Quit

	case "help":
		m.mode = ViewHelp

	case "today":
		return m, m.selectDate(m.today())

	case "refresh":
		return m, tea.Batch(m.fetchEvents(), m.showMessage("Refreshing"))

	case "open_day":
		return m, m.openEditor(calendar.ISODate(m.selected.Year(), int(m.selected.Month())-1, m.selected.Day()))

	case "next_day":
		return m, m.moveSelection(1)

	case "prev_day":
		return m, m.moveSelection(-1)

	case "next_week":
		return m, m.moveSelection(7)

	case "prev_week":
		return m, m.moveSelection(-7)

	case "next_month":
		return m, m.setMonth(m.view.Year, m.view.Month+1)

	case "prev_month":
		return m, m.setMonth(m.view.Year, m.view.Month-1)

	case "next_year":
		return m, m.setMonth(m.view.Year+1, m.view.Month)

	case "prev_year":
		return m, m.setMonth(m.view.Year-1, m.view.Month)

	case "goto_date":
		m.gotoOn = true
		m.gotoIn.Reset()
		return m, m.gotoIn.Focus()
	}

	return m, nil
}
