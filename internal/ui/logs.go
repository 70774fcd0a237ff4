package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/booth/internal/logtail"
)

const logTailLines = 500

// logState holds the activity view.
type logState struct {
	entries  []logtail.Entry
	err      error
	follow   bool
	viewport viewport.Model
}

type logLoadedMsg struct {
	entries []logtail.Entry
	err     error
}

func loadLogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := logtail.Tail(path, logTailLines)
		return logLoadedMsg{entries: entries, err: err}
	}
}

// openLog switches to the activity view and loads the log file.
func (m *Model) openLog() tea.Cmd {
	m.currentView = ViewLog
	m.status = ""
	m.logs.follow = true
	m.updateLogViewport()
	if m.logPath == "" {
		return nil
	}
	return loadLogCmd(m.logPath)
}

func (m *Model) applyLog(msg logLoadedMsg) {
	m.logs.entries = msg.entries
	m.logs.err = msg.err
	m.updateLogViewport()
}

func (m *Model) updateLogViewport() {
	if m.logs.viewport.Width == 0 {
		m.logs.viewport = viewport.New(m.width, m.contentHeight())
	}
	m.logs.viewport.Width = m.width
	m.logs.viewport.Height = m.contentHeight()
	m.logs.viewport.SetContent(m.renderLogContent())
	if m.logs.follow {
		m.logs.viewport.GotoBottom()
	}
}

func (m Model) handleLogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.ActivityLog):
		m.toList()
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		if m.logPath == "" {
			return m, nil
		}
		return m, loadLogCmd(m.logPath)
	case key.Matches(msg, m.keys.Bottom):
		m.logs.follow = true
		m.logs.viewport.GotoBottom()
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.logs.follow = false
		m.logs.viewport.GotoTop()
		return m, nil
	}
	var cmd tea.Cmd
	m.logs.viewport, cmd = m.logs.viewport.Update(msg)
	m.logs.follow = m.logs.viewport.AtBottom()
	return m, cmd
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	switch {
	case m.logPath == "":
		return styles.FaintText.Render("Logging to a file is disabled (set log_path).")
	case m.logs.err != nil:
		return styles.DangerText.Render("Cannot read log: " + m.logs.err.Error())
	case len(m.logs.entries) == 0:
		return styles.FaintText.Render("No activity yet.")
	}

	lines := make([]string, 0, len(m.logs.entries))
	for _, e := range m.logs.entries {
		text := e.Format()
		if m.width > 0 {
			text = truncate(text, m.width)
		}
		switch strings.ToUpper(e.Level) {
		case "ERROR":
			lines = append(lines, styles.DangerText.Render(text))
		case "WARN":
			lines = append(lines, styles.WarningText.Render(text))
		case "DEBUG":
			lines = append(lines, styles.FaintText.Render(text))
		default:
			lines = append(lines, styles.Text.Render(text))
		}
	}
	return strings.Join(lines, "\n")
}
