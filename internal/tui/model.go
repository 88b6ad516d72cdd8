// Package tui is the terminal chat surface for the cocktail advisor.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cocktailchat/internal/chat"
)

type Config struct {
	Endpoint string
	Chat     chat.Options
}

type tabID int

const (
	tabChat tabID = iota
	tabDiagnostics
	tabHelp
	tabCount
)

const maxLogLines = 50

type model struct {
	cfg     Config
	ctrl    *chat.Controller
	surface *chatSurface

	statusLine  string
	logs        []string
	activeTab   tabID
	quitConfirm bool

	width  int
	height int

	timeline viewport.Model
	spinner  spinner.Model

	theme uiTheme
}

type replyMsg struct {
	outcome chat.Outcome
}

// New returns the bubbletea model for one chat session. The greeting is
// already on the timeline when it returns.
func New(sender chat.Sender, cfg Config) tea.Model {
	return newModel(sender, cfg)
}

func newModel(sender chat.Sender, cfg Config) model {
	surface := newChatSurface()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#05ffa1"))

	timeline := viewport.New(0, 0)
	timeline.MouseWheelEnabled = true
	timeline.MouseWheelDelta = 4

	m := model{
		cfg:        cfg,
		ctrl:       chat.NewController(sender, surface, cfg.Chat),
		surface:    surface,
		statusLine: "ready",
		logs:       []string{},
		activeTab:  tabChat,
		timeline:   timeline,
		spinner:    sp,
		theme:      newTheme(),
	}
	m.ctrl.Greet()
	m.appendLog("session " + m.ctrl.SessionID() + " started")
	m.renderPanes()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case replyMsg:
		if !m.ctrl.Resolve(msg.outcome) {
			break
		}
		if msg.outcome.Err != nil {
			m.logError(msg.outcome.Err)
			m.statusLine = "reply failed · see Diagnostics"
		} else {
			m.statusLine = fmt.Sprintf("reply in %s", msg.outcome.Elapsed.Round(time.Millisecond))
			m.appendLog(m.statusLine)
		}
		m.renderPanes()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderPanes()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.surface.typing {
			m.renderPanes()
		}
		cmds = append(cmds, cmd)
	case tea.MouseMsg:
		if m.quitConfirm || m.activeTab != tabChat {
			break
		}
		var cmd tea.Cmd
		m.timeline, cmd = m.timeline.Update(msg)
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.quitConfirm {
			switch msg.String() {
			case "y", "Y", "enter":
				return m, tea.Quit
			case "n", "N", "esc":
				m.quitConfirm = false
				m.statusLine = "quit canceled"
				m.renderPanes()
			}
			return m, tea.Batch(cmds...)
		}

		switch msg.String() {
		case "esc":
			if m.activeTab == tabChat {
				m.beginQuitConfirm()
				return m, tea.Batch(cmds...)
			}
			m.switchTab(tabChat)
			return m, tea.Batch(cmds...)
		case "tab":
			m.switchTab((m.activeTab + 1) % tabCount)
			return m, tea.Batch(cmds...)
		case "shift+tab":
			m.switchTab((m.activeTab + tabCount - 1) % tabCount)
			return m, tea.Batch(cmds...)
		}

		switch m.activeTab {
		case tabChat:
			switch msg.String() {
			case "enter":
				if cmd := m.submit(m.surface.input.Value()); cmd != nil {
					return m, cmd
				}
				return m, tea.Batch(cmds...)
			case "pgup", "ctrl+b":
				m.timeline.LineUp(8)
				return m, tea.Batch(cmds...)
			case "pgdown", "ctrl+f":
				m.timeline.LineDown(8)
				return m, tea.Batch(cmds...)
			case "up":
				if strings.TrimSpace(m.surface.input.Value()) == "" {
					m.timeline.LineUp(4)
					return m, tea.Batch(cmds...)
				}
			case "down":
				if strings.TrimSpace(m.surface.input.Value()) == "" {
					m.timeline.LineDown(4)
					return m, tea.Batch(cmds...)
				}
			case "home":
				m.timeline.GotoTop()
				return m, tea.Batch(cmds...)
			case "end":
				m.timeline.GotoBottom()
				return m, tea.Batch(cmds...)
			}
			var cmd tea.Cmd
			m.surface.input, cmd = m.surface.input.Update(msg)
			cmds = append(cmds, cmd)
		case tabDiagnostics, tabHelp:
			if msg.String() == "q" {
				m.beginQuitConfirm()
			}
		}
	}
	return m, tea.Batch(cmds...)
}

// submit hands the input to the controller and returns the command that
// performs the exchange, or nil when the submission was not accepted.
func (m *model) submit(raw string) tea.Cmd {
	ex, err := m.ctrl.Submit(raw)
	switch {
	case errors.Is(err, chat.ErrEmptySubmission), errors.Is(err, chat.ErrConcurrentSubmission):
		return nil
	case err != nil:
		m.logError(err)
		return nil
	}
	m.statusLine = "mixing a reply..."
	m.appendLog(fmt.Sprintf("turn %d sent with %d messages", ex.Seq, len(ex.Envelope.Messages)))
	m.renderPanes()

	ctrl := m.ctrl
	return func() tea.Msg {
		return replyMsg{outcome: ctrl.Call(context.Background(), ex)}
	}
}

func (m *model) switchTab(tab tabID) {
	m.activeTab = tab
	if tab == tabChat {
		m.surface.input.Focus()
	} else {
		m.surface.input.Blur()
	}
	m.renderPanes()
}

func (m *model) beginQuitConfirm() {
	m.quitConfirm = true
	m.statusLine = "leaving the bar?"
}

func (m *model) appendLog(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}
	m.logs = append(m.logs, fmt.Sprintf("%s %s", time.Now().Format("15:04:05"), compactSingleLine(trimmed, 220)))
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[len(m.logs)-maxLogLines:]
	}
}

func (m *model) logError(err error) {
	if err == nil {
		return
	}
	m.appendLog("error: " + err.Error())
	m.statusLine = "error: " + compactSingleLine(err.Error(), 160)
}
