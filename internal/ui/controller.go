package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cwarden/daybook/internal/calendar"
	"github.com/cwarden/daybook/internal/events"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	noticeLoadFailed = "Failed to load events."
	noticeValidation = "Please enter both author and content."
	promptDelete     = "Delete this event?"
)

// setMonth shows the given zero-based month, carrying overflow into the
// year, and keeps the cursor on the same day where the month allows it.
func (m *Model) setMonth(year, month int) tea.Cmd {
	m.view = calendar.SetMonth(year, month)

	day := m.selected.Day()
	if last := calendar.DaysIn(m.view.Year, m.view.Month); day > last {
		day = last
	}
	m.selected = time.Date(m.view.Year, time.Month(m.view.Month+1), day, 0, 0, 0, 0, time.Local)

	return m.renderGrid()
}

// renderGrid rebuilds every cell for the current month and re-fetches the
// events that fill them.
func (m *Model) renderGrid() tea.Cmd {
	m.grid = calendar.BuildGrid(m.view, m.config.WeekStartDay)
	return m.fetchEvents()
}

// fetchEvents loads the full collection in the background. Each request
// carries a sequence number so a slow response cannot overwrite a newer one.
func (m *Model) fetchEvents() tea.Cmd {
	m.fetchSeq++
	seq := m.fetchSeq
	m.loading = true

	source := m.source
	timeout := m.config.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := requestContext(timeout)
		defer cancel()

		store, err := source.List(ctx)
		return eventsFetchedMsg{seq: seq, store: store, err: err}
	}
}

func (m *Model) applyFetch(msg eventsFetchedMsg) tea.Cmd {
	if msg.seq == m.fetchSeq {
		m.loading = false
	}
	if msg.seq < m.appliedSeq {
		log.Printf("ui: dropping stale fetch %d (have %d)", msg.seq, m.appliedSeq)
		return nil
	}

	if msg.err != nil {
		log.Printf("ui: fetch events: %v", msg.err)
		if msg.seq >= m.reopenSeq {
			m.reopenDate = ""
		}
		m.showNotice(noticeLoadFailed)
		return nil
	}

	m.appliedSeq = msg.seq
	m.store = msg.store
	if m.store == nil {
		m.store = events.Store{}
	}

	// Only the fetch issued after the delete can say whether the date
	// still has events.
	if m.reopenDate != "" && msg.seq >= m.reopenSeq {
		date := m.reopenDate
		m.reopenDate = ""
		if m.store.Count(date) > 0 {
			return m.openEditor(date)
		}
		m.closeEditor()
	}
	return nil
}

// openEditor binds the popup to date with empty inputs.
func (m *Model) openEditor(date string) tea.Cmd {
	m.editor.open = true
	m.editor.date = date
	m.editor.selected = 0
	m.editor.author.Reset()
	m.editor.content.Reset()
	m.resizeEditor()
	return m.focusEditor(focusAuthor)
}

// closeEditor hides the popup. Inputs are cleared on the next open.
func (m *Model) closeEditor() {
	m.editor.open = false
	m.editor.author.Blur()
	m.editor.content.Blur()
}

func (m *Model) focusEditor(f editorFocus) tea.Cmd {
	m.editor.focus = f
	m.editor.author.Blur()
	m.editor.content.Blur()

	switch f {
	case focusAuthor:
		return m.editor.author.Focus()
	case focusContent:
		return m.editor.content.Focus()
	}
	return nil
}

// saveEvent posts a new event for date. Blank fields raise a notice and
// never reach the backend.
func (m *Model) saveEvent(date, author, content string) tea.Cmd {
	author = strings.TrimSpace(author)
	content = strings.TrimSpace(content)
	if author == "" || content == "" {
		m.showNotice(noticeValidation)
		return nil
	}

	source := m.source
	timeout := m.config.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := requestContext(timeout)
		defer cancel()

		err := source.Create(ctx, date, author, content)
		return eventSavedMsg{date: date, err: err}
	}
}

func (m *Model) applySave(msg eventSavedMsg) tea.Cmd {
	if msg.err != nil {
		log.Printf("ui: save event on %s: %v", msg.date, msg.err)
		if errors.Is(msg.err, events.ErrValidation) {
			m.showNotice(noticeValidation)
		} else {
			m.showNotice(failureNotice("save event", msg.err))
		}
		return nil
	}

	m.closeEditor()
	return tea.Batch(m.renderGrid(), m.showMessage("Event saved"))
}

// deleteEvent removes the event with id, asking first unless confirmation
// is turned off.
func (m *Model) deleteEvent(id string) tea.Cmd {
	date := m.editor.date
	if d, _, ok := m.store.Find(id); ok {
		date = d
	} else {
		log.Printf("ui: delete %s: event not in local cache", id)
	}

	if m.config.ConfirmDelete {
		m.confirm = &confirmState{prompt: promptDelete, id: id, date: date}
		return nil
	}
	return m.performDelete(id, date)
}

func (m *Model) performDelete(id, date string) tea.Cmd {
	source := m.source
	timeout := m.config.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := requestContext(timeout)
		defer cancel()

		err := source.Delete(ctx, id)
		return eventDeletedMsg{id: id, date: date, err: err}
	}
}

func (m *Model) applyDelete(msg eventDeletedMsg) tea.Cmd {
	if msg.err != nil {
		log.Printf("ui: delete event %s: %v", msg.id, msg.err)
		m.showNotice(failureNotice("delete event", msg.err))
		return nil
	}

	// The popup is refreshed once the follow-up fetch lands.
	refetch := m.renderGrid()
	m.reopenDate = msg.date
	m.reopenSeq = m.fetchSeq
	return tea.Batch(refetch, m.showMessage("Event deleted"))
}

// selectDate moves the cursor, switching months when t lies outside the
// one on screen.
func (m *Model) selectDate(t time.Time) tea.Cmd {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
	if m.view.Contains(t) {
		m.selected = t
		return nil
	}

	m.view = calendar.FromTime(t)
	m.selected = t
	return m.renderGrid()
}

func (m *Model) moveSelection(days int) tea.Cmd {
	return m.selectDate(m.selected.AddDate(0, 0, days))
}

func (m *Model) gotoDate(input string) tea.Cmd {
	m.parser.SetNow(m.now())
	target, err := m.parser.Parse(input)
	if err != nil {
		return m.showMessage(fmt.Sprintf("Can't go to %q", strings.TrimSpace(input)))
	}

	if !target.HasDay {
		return m.setMonth(target.Date.Year(), int(target.Date.Month())-1)
	}
	return m.selectDate(target.Date)
}

func (m *Model) selectedEvent() (events.Event, bool) {
	evs := m.store.For(m.editor.date)
	if m.editor.selected < 0 || m.editor.selected >= len(evs) {
		return events.Event{}, false
	}
	return evs[m.editor.selected], true
}

func (m *Model) resizeEditor() {
	w := m.popupWidth()
	m.editor.author.Width = w - len(m.editor.author.Prompt) - 6
	m.editor.content.SetWidth(w - 6)
	m.gotoIn.Width = 40
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.gotoOn:
		m.gotoIn, cmd = m.gotoIn.Update(msg)
	case m.editor.open && m.editor.focus == focusAuthor:
		m.editor.author, cmd = m.editor.author.Update(msg)
	case m.editor.open && m.editor.focus == focusContent:
		m.editor.content, cmd = m.editor.content.Update(msg)
	}
	return cmd
}

// failureNotice prefers the server's own message when it sent one.
func failureNotice(action string, err error) string {
	var apiErr *events.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return fmt.Sprintf("Failed to %s: %s", action, apiErr.Message)
	}
	return fmt.Sprintf("Failed to %s.", action)
}

func requestContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(context.Background(), timeout)
	}
	return context.WithCancel(context.Background())
}
