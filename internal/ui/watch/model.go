// Package watch is a live terminal view of delivered notifications.
package watch

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/task-reminders/internal/keys"
	"github.com/nhle/task-reminders/internal/notify"
	"github.com/nhle/task-reminders/internal/platform/local"
	"github.com/nhle/task-reminders/internal/theme"
	"github.com/nhle/task-reminders/internal/ui"
)

// Tapper injects a user tap on a delivered notification.
type Tapper interface {
	Tap(d notify.Delivery)
}

// Dispatcher is the subset of local.Dispatcher the view drives.
type Dispatcher interface {
	Trigger()
	Status() local.DispatchStatus
}

type statusTickMsg time.Time

const statusInterval = time.Second

// Model is the watch view.
type Model struct {
	list       list.Model
	help       help.Model
	keys       *keys.KeyMap
	feed       *Feed
	tapper     Tapper
	dispatcher Dispatcher
	status     local.DispatchStatus
	lastTap    *notify.Tap
	width      int
	height     int
}

// New creates a watch model reading from feed.
func New(feed *Feed, t Tapper, d Dispatcher, width, height int) Model {
	l := list.New([]list.Item{}, DeliveryDelegate{now: time.Now}, width, listHeight(height))
	l.Title = "Delivered"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:       l,
		help:       help.New(),
		keys:       keys.DefaultKeyMap(),
		feed:       feed,
		tapper:     t,
		dispatcher: d,
		width:      width,
		height:     height,
	}
}

// Init starts listening for deliveries and taps.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.feed.WaitForReceived(), m.feed.WaitForTap(), tickStatus())
}

// Update handles messages for the watch view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case ReceivedMsg:
		cmd := m.list.InsertItem(0, DeliveryItem{Received: msg.Received, At: msg.At})
		m.list.Select(0)
		return m, tea.Batch(cmd, m.feed.WaitForReceived())

	case TappedMsg:
		tap := msg.Tap
		m.lastTap = &tap
		return m, m.feed.WaitForTap()

	case statusTickMsg:
		if m.dispatcher != nil {
			m.status = m.dispatcher.Status()
		}
		return m, tickStatus()

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Tap):
		item, ok := m.list.SelectedItem().(DeliveryItem)
		if ok && m.tapper != nil {
			m.tapper.Tap(item.Delivery())
		}
		return m, nil

	case key.Matches(msg, m.keys.Dispatch):
		if m.dispatcher != nil {
			m.dispatcher.Trigger()
		}
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		cmd := m.list.SetItems(nil)
		m.lastTap = nil
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the feed framed by the dispatcher status, the last tap
// and help.
func (m Model) View() string {
	l := ui.NewLayout(m.width, m.height)

	var body string
	if len(m.list.Items()) == 0 {
		body = lipgloss.NewStyle().
			Width(m.width).
			Height(l.ContentHeight()).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Waiting for notifications...")
	} else {
		body = m.list.View()
	}

	m.help.Width = m.width
	return l.Render(
		l.RenderHeader("taskremind watch", m.renderStatus()),
		body,
		l.RenderStatusBar(m.renderTap()),
		m.help.View(m.keys),
	)
}

func (m Model) renderStatus() string {
	s := m.status
	switch s.State {
	case local.DispatchRunning:
		return "dispatching..."
	case local.DispatchError:
		return "dispatch failed: " + s.Error.Error()
	}
	if s.LastRun.IsZero() {
		return "dispatcher starting"
	}
	return fmt.Sprintf("%d delivered | last check %s", len(m.list.Items()), s.LastRun.Format("15:04:05"))
}

func (m Model) renderTap() string {
	if m.lastTap == nil {
		return "No taps yet."
	}
	t := m.lastTap
	target := t.Screen
	if t.TaskID != "" {
		target += " " + t.TaskID
	}
	return fmt.Sprintf("Opened %s (%s)", target, t.Kind)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, listHeight(height))
}

func listHeight(height int) int {
	return ui.NewLayout(0, height).ContentHeight()
}

func tickStatus() tea.Cmd {
	return tea.Tick(statusInterval, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}
