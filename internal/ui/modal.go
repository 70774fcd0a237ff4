package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/booth/internal/market"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// filtersAppliedMsg carries the filters chosen in the filter modal.
type filtersAppliedMsg struct {
	filters market.StudioFilters
}

// deleteConfirmedMsg is sent when the user confirms a delete.
type deleteConfirmedMsg struct {
	id string
}

// filterModal edits the studio list filters.
type filterModal struct {
	form *form
}

func newFilterModal(filters market.StudioFilters) *filterModal {
	return &filterModal{form: filterForm(filters)}
}

func (m *filterModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, m.form.update(msg), false
	}
	switch {
	case key.Matches(keyMsg, keys.Escape):
		return m, nil, true
	case key.Matches(keyMsg, keys.Submit):
		filters := m.form.filters()
		return m, func() tea.Msg { return filtersAppliedMsg{filters: filters} }, true
	case key.Matches(keyMsg, keys.NextField):
		m.form.next()
		return m, nil, false
	case key.Matches(keyMsg, keys.PrevField):
		m.form.prev()
		return m, nil, false
	case keyMsg.String() == "ctrl+x":
		for _, field := range m.form.fields {
			m.form.setValue(field.key, "")
		}
		return m, nil, false
	}
	return m, m.form.update(msg), false
}

func (m *filterModal) View(theme Theme, width, height int) string {
	hint := theme.Styles().FaintText.Render("enter apply  ctrl+x clear  esc cancel")
	body := lipgloss.JoinVertical(lipgloss.Left, m.form.view(theme, width, ""), hint)
	return placeCentered(theme, width, height, body)
}

// confirmModal asks before deleting a studio.
type confirmModal struct {
	id   string
	name string
}

func (m *confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.Confirm):
		id := m.id
		return m, func() tea.Msg { return deleteConfirmedMsg{id: id} }, true
	case key.Matches(keyMsg, keys.Deny):
		return m, nil, true
	}
	return m, nil, false
}

func (m *confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.DangerText.Render("Delete studio?"),
		"",
		styles.Text.Render(truncate(m.name, 40)),
		"",
		styles.FaintText.Render("y confirm  n cancel"),
	)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Danger)).
		Padding(1, 2).
		Render(body)
	return placeCentered(theme, width, height, box)
}

func placeCentered(theme Theme, width, height int, content string) string {
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		content,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
