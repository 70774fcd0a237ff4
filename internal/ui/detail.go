package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/booth/internal/market"
)

// currentStudio returns the studio shown in the detail view. The fetched
// record wins over the list copy.
func (m Model) currentStudio() (market.Studio, bool) {
	if cur := m.snapshot.Studios.Current; cur != nil && cur.ID == m.detailID {
		return *cur, true
	}
	return m.snapshot.Studios.Find(m.detailID)
}

func (m *Model) initDetailViewport() {
	m.detailViewport = viewport.New(m.width, m.contentHeight())
}

// updateDetailViewport refreshes the detail content and size.
func (m *Model) updateDetailViewport() {
	if m.detailViewport.Width == 0 {
		m.initDetailViewport()
	}
	m.detailViewport.Width = m.width
	m.detailViewport.Height = m.contentHeight()
	m.detailViewport.SetContent(m.renderDetailContent())
}

func (m Model) renderDetailContent() string {
	styles := m.theme.Styles()
	studio, ok := m.currentStudio()
	if !ok {
		if m.snapshot.Studios.Loading {
			return styles.FaintText.Render("Loading studio...")
		}
		return styles.FaintText.Render("Studio not found.")
	}

	label := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Muted)).Width(16)
	line := func(name, value string) string {
		if value == "" {
			value = "-"
		}
		return label.Render(name) + styles.Text.Render(value)
	}

	lines := []string{
		styles.AccentText.Bold(true).Render(studio.Name),
		"",
		line("Location", studio.Location),
		line("Price", formatPrice(studio.PricePerHour)),
		line("Rating", fmt.Sprintf("%s (%d reviews)", formatRating(studio.Rating), studio.ReviewCount())),
		line("Amenities", strings.Join(studio.Amenities, ", ")),
		line("Contact email", studio.ContactEmail),
		line("Contact phone", studio.ContactPhone),
		line("Image", studio.Image),
	}
	if t := studio.ParsedCreatedAt(); !t.IsZero() {
		lines = append(lines, line("Listed", t.Local().Format("2006-01-02 15:04")))
	}
	if t := studio.ParsedUpdatedAt(); !t.IsZero() {
		lines = append(lines, line("Updated", t.Local().Format("2006-01-02 15:04")))
	}
	lines = append(lines, line("ID", studio.ID))

	if desc := strings.TrimSpace(studio.Description); desc != "" {
		width := m.width - 2
		if width < 20 {
			width = 20
		}
		lines = append(lines, "", styles.Text.Width(width).Render(desc))
	}
	return strings.Join(lines, "\n")
}
