package ui

import (
	"log"
	"time"

	"github.com/cwarden/daybook/internal/calendar"
	"github.com/cwarden/daybook/internal/config"
	"github.com/cwarden/daybook/internal/events"
	"github.com/cwarden/daybook/internal/parser"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type ViewMode int

const (
	ViewCalendar ViewMode = iota
	ViewHelp
)

type editorFocus int

const (
	focusAuthor editorFocus = iota
	focusContent
	focusList
)

const messageTimeout = 3 * time.Second

// Model is the calendar controller. All state changes happen in Update;
// network calls run as commands and report back as messages.
type Model struct {
	// Core components
	config *config.Config
	source    events.Source
	newSource func(*config.Config) events.Source
	parser    *parser.DateParser
	now    func() time.Time

	// View state
	mode     ViewMode
	view     calendar.ViewState
	grid     calendar.Grid
	store    events.Store
	selected time.Time

	// Fetch bookkeeping. Results older than applied are dropped.
	fetchSeq   int
	appliedSeq int
	loading    bool
	// reopenDate is set after a delete so the popup can be refreshed once
	// the follow-up fetch (reopenSeq or newer) lands.
	reopenDate string
	reopenSeq  int

	// Popup editor
	editor editorState

	// Overlays
	notice  string
	confirm *confirmState
	gotoOn  bool
	gotoIn  textinput.Model

	// UI state
	width      int
	height     int
	message    string
	messageSeq int

	styles Styles
}

type editorState struct {
	open     bool
	date     string
	focus    editorFocus
	selected int
	author   textinput.Model
	content  textarea.Model
}

type confirmState struct {
	prompt string
	id     string
	date   string
}

type Styles struct {
	Normal   lipgloss.Style
	Selected lipgloss.Style
	Today    lipgloss.Style
	Sunday   lipgloss.Style
	Saturday lipgloss.Style
	Header   lipgloss.Style
	Event    lipgloss.Style
	More     lipgloss.Style
	Help     lipgloss.Style
	Message  lipgloss.Style
	Error    lipgloss.Style
	Border   lipgloss.Style
}

type Option func(*Model)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithSourceFactory rebuilds the events source when a reloaded config
// changes the backend URL or request timeout.
func WithSourceFactory(f func(*config.Config) events.Source) Option {
	return func(m *Model) { m.newSource = f }
}

// WithMonth starts the calendar on the given zero-based month instead of
// the current one.
func WithMonth(year, month int) Option {
	return func(m *Model) {
		m.view = calendar.SetMonth(year, month)
		m.selected = m.view.First(time.Local)
	}
}

func NewModel(cfg *config.Config, source events.Source, opts ...Option) *Model {
	m := &Model{
		config: cfg,
		source: source,
		parser: parser.NewDateParser(),
		now:    time.Now,
		mode:   ViewCalendar,
		store:  events.Store{},
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.selected.IsZero() {
		today := m.today()
		m.view = calendar.FromTime(today)
		m.selected = today
	}
	m.parser.SetNow(m.now())

	m.styles = StylesFromConfig(cfg)
	m.grid = calendar.BuildGrid(m.view, cfg.WeekStartDay)
	m.editor = newEditor()
	m.gotoIn = newGotoInput()

	return m
}

func newEditor() editorState {
	author := textinput.New()
	author.Placeholder = "Author"
	author.CharLimit = 64
	author.Prompt = "Author: "

	content := textarea.New()
	content.Placeholder = "What's happening?"
	content.ShowLineNumbers = false
	content.SetHeight(3)

	return editorState{author: author, content: content}
}

func newGotoInput() textinput.Model {
	in := textinput.New()
	in.Prompt = "Go to: "
	in.Placeholder = "2025-05, May 2025, next month, today"
	in.CharLimit = 40
	return in
}

// StylesFromConfig builds the palette from the configured colors.
func StylesFromConfig(cfg *config.Config) Styles {
	color := func(name string) lipgloss.Color {
		return lipgloss.Color(cfg.Colors[name])
	}

	return Styles{
		Normal: lipgloss.NewStyle().
			Foreground(color("normal")),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("235")).
			Background(color("selected")).
			Bold(true),
		Today: lipgloss.NewStyle().
			Foreground(color("today")).
			Bold(true),
		Sunday: lipgloss.NewStyle().
			Foreground(color("sunday")),
		Saturday: lipgloss.NewStyle().
			Foreground(color("saturday")),
		Header: lipgloss.NewStyle().
			Foreground(color("header")).
			Bold(true),
		Event: lipgloss.NewStyle().
			Foreground(color("event")),
		More: lipgloss.NewStyle().
			Foreground(color("help")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(color("help")),
		Message: lipgloss.NewStyle().
			Foreground(color("message")).
			Background(lipgloss.Color("235")).
			Padding(0, 1),
		Error: lipgloss.NewStyle().
			Foreground(color("error")).
			Bold(true),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(color("border")),
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.renderGrid()}
	if m.config.AutoRefresh {
		cmds = append(cmds, m.tickCmd())
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeEditor()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tickMsg:
		if !m.config.AutoRefresh {
			return m, nil
		}
		return m, tea.Batch(m.fetchEvents(), m.tickCmd())

	case eventsFetchedMsg:
		return m, m.applyFetch(msg)

	case eventSavedMsg:
		return m, m.applySave(msg)

	case eventDeletedMsg:
		return m, m.applyDelete(msg)

	case configChangedMsg:
		return m, m.applyConfig(msg)

	case messageTimeoutMsg:
		if msg.seq == m.messageSeq {
			m.message = ""
		}
		return m, nil
	}

	// Let the focused input consume anything else, e.g. cursor blinks.
	return m, m.updateInputs(msg)
}

// Month returns the displayed month.
func (m *Model) Month() calendar.ViewState { return m.view }

// Grid returns the most recently built grid.
func (m *Model) Grid() calendar.Grid { return m.grid }

// Store returns the cached events.
func (m *Model) Store() events.Store { return m.store }

// Selected returns the cursor date.
func (m *Model) Selected() time.Time { return m.selected }

// EditorDate returns the date the popup is bound to, or "" when closed.
func (m *Model) EditorDate() string {
	if !m.editor.open {
		return ""
	}
	return m.editor.date
}

// Notice returns the blocking notice currently shown, if any.
func (m *Model) Notice() string { return m.notice }

func (m *Model) today() time.Time {
	y, mo, d := m.now().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.Local)
}

func (m *Model) showMessage(msg string) tea.Cmd {
	m.message = msg
	m.messageSeq++
	seq := m.messageSeq
	return tea.Tick(messageTimeout, func(time.Time) tea.Msg {
		return messageTimeoutMsg{seq: seq}
	})
}

// showNotice raises a blocking notice. Nothing else reacts to keys until
// it is dismissed.
func (m *Model) showNotice(msg string) {
	m.notice = msg
}

func (m *Model) tickCmd() tea.Cmd {
	rate := m.config.RefreshRate
	if rate <= 0 {
		rate = time.Minute
	}
	return tea.Tick(rate, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *Model) applyConfig(msg configChangedMsg) tea.Cmd {
	if msg.err != nil {
		log.Printf("ui: keeping previous config: %v", msg.err)
		return m.showMessage("Config error: " + msg.err.Error())
	}

	restartTick := msg.config.AutoRefresh && !m.config.AutoRefresh
	backendChanged := msg.config.APIURL != m.config.APIURL ||
		msg.config.RequestTimeout != m.config.RequestTimeout
	m.config = msg.config
	m.styles = StylesFromConfig(m.config)
	m.grid = calendar.BuildGrid(m.view, m.config.WeekStartDay)

	cmds := []tea.Cmd{m.showMessage("Config reloaded")}
	if restartTick {
		cmds = append(cmds, m.tickCmd())
	}
	if backendChanged && m.newSource != nil {
		log.Printf("ui: backend now %s", m.config.APIURL)
		m.source = m.newSource(m.config)
		cmds = append(cmds, m.fetchEvents())
	}
	return tea.Batch(cmds...)
}

// ConfigChanged wraps a reloaded config for delivery through
// tea.Program.Send.
func ConfigChanged(cfg *config.Config, err error) tea.Msg {
	return configChangedMsg{config: cfg, err: err}
}

// Message types
type tickMsg struct{}

type messageTimeoutMsg struct {
	seq int
}

type eventsFetchedMsg struct {
	seq   int
	store events.Store
	err   error
}

type eventSavedMsg struct {
	date string
	err  error
}

type eventDeletedMsg struct {
	id   string
	date string
	err  error
}

type configChangedMsg struct {
	config *config.Config
	err    error
}
