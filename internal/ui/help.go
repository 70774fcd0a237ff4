package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Studios",
			items: []helpItem{
				{"j/k", "Move down/up"},
				{"g/G", "Go to top/bottom"},
				{"enter", "Open studio"},
				{"n", "New studio"},
				{"f", "Filters"},
				{"r", "Refresh"},
			},
		},
		{
			title: "Detail",
			items: []helpItem{
				{"u", "Edit studio"},
				{"d", "Delete studio"},
				{"esc", "Back to list"},
			},
		},
		{
			title: "Activity",
			items: []helpItem{
				{"l", "Open activity log"},
				{"r", "Reload"},
				{"G", "Follow new entries"},
			},
		},
		{
			title: "Forms",
			items: []helpItem{
				{"tab", "Next field"},
				{"enter", "Submit"},
				{"ctrl+n", "Login/Sign up"},
				{"esc", "Cancel"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"T", "Cycle theme"},
				{"L", "Log out"},
				{"?", "Toggle help"},
				{"q/ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)
	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(40)

	return placeCentered(m.theme, m.width, m.height, modal.Render(b.String()))
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
