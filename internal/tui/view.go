package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cocktailchat/internal/chat"
)

func (m model) View() string {
	out := lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.renderContent(), m.renderInput(), m.renderFooter())
	if m.quitConfirm {
		out = m.renderQuitModal()
	}
	return m.theme.backdrop.Render(out)
}

func (m *model) renderHeader() string {
	tabs := []struct {
		id    tabID
		label string
	}{
		{tabChat, "Chat"},
		{tabDiagnostics, "Diagnostics"},
		{tabHelp, "Help"},
	}
	segments := make([]string, 0, len(tabs)+1)
	for _, tab := range tabs {
		style := m.theme.tabOff
		if tab.id == m.activeTab {
			style = m.theme.tabOn
		}
		segments = append(segments, style.Render(tab.label))
	}
	segments = append(segments, m.theme.hint.Render(" Cocktail Advisor · "+m.ctrl.SessionID()))
	joined := lipgloss.JoinHorizontal(lipgloss.Left, segments...)
	return m.theme.marquee.Width(maxInt(20, m.width-4)).Render(joined)
}

func (m *model) renderContent() string {
	contentHeight := maxInt(8, m.height-12)
	contentWidth := maxInt(40, m.width-4)
	panel := m.theme.counter.Width(contentWidth).Height(contentHeight)

	switch m.activeTab {
	case tabChat:
		return panel.Render(m.theme.heading.Render("Bar Counter") + "\n" + m.timeline.View())
	case tabDiagnostics:
		return panel.Render(m.theme.heading.Render("Session Diagnostics") + "\n" + m.renderDiagnostics())
	case tabHelp:
		return panel.Render(m.theme.heading.Render("Help") + "\n" + m.renderHelp())
	default:
		return ""
	}
}

func (m *model) renderInput() string {
	contentWidth := maxInt(40, m.width-4)
	if m.activeTab != tabChat {
		return m.theme.pour.Width(contentWidth).Render(m.theme.hint.Render("Input disabled outside Chat tab. Press Tab to return."))
	}
	inputView := m.surface.input.View()
	if m.ctrl.State() == chat.StateAwaiting {
		inputView = m.spinner.View() + " waiting for the bartender... " + inputView
	}
	return m.theme.pour.Width(contentWidth).Render(inputView)
}

func (m *model) renderFooter() string {
	contentWidth := maxInt(40, m.width-4)
	statusStyle := m.theme.statusOK
	lower := strings.ToLower(m.statusLine)
	if strings.Contains(lower, "failed") || strings.Contains(lower, "error") {
		statusStyle = m.theme.statusFail
	}
	line := statusStyle.Render(compactSingleLine(m.statusLine, 180))
	hints := m.theme.hint.Render("Keys: Enter send · Tab switch view · PgUp/PgDn or Up/Down (input empty) scroll · Home/End · Esc quit prompt · Ctrl+C quit")
	return m.theme.ticket.Width(contentWidth).Render(line + "\n" + hints)
}

func (m *model) renderQuitModal() string {
	canvasWidth := maxInt(40, m.width-4)
	canvasHeight := maxInt(12, m.height-4)
	modalWidth := clampInt(int(float64(canvasWidth)*0.56), 32, 72)
	if modalWidth > canvasWidth-2 {
		modalWidth = canvasWidth - 2
	}

	accent := m.theme.closingRule.Render(strings.Repeat("=", 32))
	body := strings.Join([]string{
		m.theme.statusFail.Render("CLOSING TIME?"),
		m.theme.hint.Render("Quit the Cocktail Advisor?"),
		"",
		accent,
		m.theme.hint.Render("This conversation is not saved."),
		accent,
		"",
		m.theme.closingAction.Render("[Y / Enter] Quit") + "    " + m.theme.hint.Render("[N / Esc] Return"),
	}, "\n")
	panel := m.theme.closingFrame.Width(modalWidth).Render(body)
	return lipgloss.Place(
		canvasWidth,
		canvasHeight,
		lipgloss.Center,
		lipgloss.Center,
		panel,
		lipgloss.WithWhitespaceBackground(lipgloss.Color("#120924")),
	)
}

func (m *model) resize() {
	contentWidth := maxInt(40, m.width-4)
	m.surface.input.Width = maxInt(20, contentWidth-6)
}

func (m *model) renderPanes() {
	prevYOffset := m.timeline.YOffset
	prevAtBottom := m.timeline.AtBottom()

	contentHeight := maxInt(8, m.height-12)
	contentWidth := maxInt(40, m.width-4)
	m.timeline.Width = maxInt(20, contentWidth-4)
	m.timeline.Height = maxInt(5, contentHeight-3)

	m.timeline.SetContent(m.renderTimeline())
	if prevAtBottom || m.surface.follow {
		m.timeline.GotoBottom()
		m.surface.follow = false
	} else {
		m.timeline.SetYOffset(prevYOffset)
	}
}

func (m *model) renderTimeline() string {
	width := maxInt(24, m.timeline.Width-2)
	var b strings.Builder
	for _, entry := range m.surface.entries {
		style, ok := m.theme.speaker[entry.role]
		if !ok {
			style = m.theme.speaker[chat.RoleSystem]
		}
		b.WriteString(style.Render(fmt.Sprintf("%s %s", entry.at.Format("15:04"), roleLabel(entry.role))))
		b.WriteString("\n")
		b.WriteString(entry.content.RenderWrapped(m.theme.reply, width))
		b.WriteString("\n\n")
	}
	if m.surface.typing {
		b.WriteString(m.theme.speaker[chat.RoleAssistant].Render(roleLabel(chat.RoleAssistant)))
		b.WriteString("\n")
		b.WriteString(m.spinner.View() + m.theme.typing.Render(" mixing a reply..."))
	}
	out := strings.TrimRight(b.String(), "\n")
	if out == "" {
		return m.theme.hint.Render("No messages yet.")
	}
	return out
}

func (m *model) renderDiagnostics() string {
	stats := m.ctrl.Stats()
	window := "all messages"
	if w := m.ctrl.HistoryWindow(); w > 0 {
		window = fmt.Sprintf("last %d messages", w)
	}
	lastError := nullCoalesce(stats.LastError, "none")
	rows := [][2]string{
		{"Session", m.ctrl.SessionID()},
		{"Endpoint", nullCoalesce(m.cfg.Endpoint, "n/a")},
		{"State", m.ctrl.State().String()},
		{"Timeout", m.ctrl.Timeout().String()},
		{"History window", window},
		{"Stored messages", fmt.Sprintf("%d", len(m.ctrl.Transcript()))},
		{"Turns", fmt.Sprintf("%d", stats.Turns)},
		{"Replies", fmt.Sprintf("%d", stats.Replies)},
		{"Failures", fmt.Sprintf("%d", stats.Failures)},
		{"Last latency", stats.LastLatency.String()},
		{"Last error", compactSingleLine(lastError, 160)},
	}
	lines := make([]string, 0, len(rows)+len(m.logs)+2)
	for _, row := range rows {
		lines = append(lines, m.theme.statKey.Render(fmt.Sprintf("%-16s", row[0]))+" "+m.theme.statValue.Render(row[1]))
	}
	lines = append(lines, "", m.theme.heading.Render("Recent Log"))
	tail := m.logs
	if keep := maxInt(1, m.height-30); len(tail) > keep {
		tail = tail[len(tail)-keep:]
	}
	for _, line := range tail {
		lines = append(lines, m.theme.hint.Render(line))
	}
	return strings.Join(lines, "\n")
}

func (m *model) renderHelp() string {
	lines := []string{
		"Core Keys",
		"- Enter: send your message (Chat tab)",
		"- Tab / Shift+Tab: switch views",
		"- PgUp/PgDn, Up/Down (input empty), mouse wheel: scroll the conversation",
		"- Home/End: jump to first / latest message",
		"- Esc in chat: quit confirmation; elsewhere: back to chat",
		"- Ctrl+C: quit",
		"",
		"Conversation",
		"- One question at a time: Enter is ignored while a reply is on its way",
		"- Replies support **bold**, *italic* and line breaks",
		"- If the bar is unreachable you'll see a notice; just ask again",
		"- Nothing is saved once you quit",
	}
	return m.theme.hint.Render(strings.Join(lines, "\n"))
}

func roleLabel(role chat.Role) string {
	switch role {
	case chat.RoleUser:
		return "You"
	case chat.RoleAssistant:
		return "Bartender"
	default:
		return "System"
	}
}
