package ui

import (
	"strings"

	"github.com/five82/booth/internal/market"
)

const (
	colName     = 24
	colLocation = 16
	colPrice    = 10
	colRating   = 6
)

// selectedStudio returns the studio under the cursor.
func (m Model) selectedStudio() (market.Studio, bool) {
	items := m.snapshot.Studios.Items
	if m.selectedRow < 0 || m.selectedRow >= len(items) {
		return market.Studio{}, false
	}
	return items[m.selectedRow], true
}

// clampSelection keeps the cursor inside the list after it changes size.
func (m *Model) clampSelection() {
	n := len(m.snapshot.Studios.Items)
	switch {
	case n == 0:
		m.selectedRow = 0
	case m.selectedRow >= n:
		m.selectedRow = n - 1
	case m.selectedRow < 0:
		m.selectedRow = 0
	}
}

// selectID moves the cursor to the studio with id, if listed.
func (m *Model) selectID(id string) {
	for i, item := range m.snapshot.Studios.Items {
		if item.ID == id {
			m.selectedRow = i
			return
		}
	}
}

// renderList renders the studio table within height rows.
func (m Model) renderList(height int) string {
	styles := m.theme.Styles()
	items := m.snapshot.Studios.Items

	amenityWidth := m.width - colName - colLocation - colPrice - colRating - 10
	if amenityWidth < 10 {
		amenityWidth = 10
	}
	row := func(name, location, price, rating, amenities string) string {
		return strings.Join([]string{
			cell(name, colName),
			cell(location, colLocation),
			cell(price, colPrice),
			cell(rating, colRating),
			cell(amenities, amenityWidth),
		}, "  ")
	}

	var b strings.Builder
	b.WriteString(styles.MutedText.Bold(true).Render(row("NAME", "LOCATION", "PRICE", "RATING", "AMENITIES")))
	b.WriteString("\n")

	if len(items) == 0 {
		msg := "No studios match the current filters."
		if m.snapshot.Studios.Loading {
			msg = "Loading studios..."
		} else if m.prefs.Filters.IsZero() {
			msg = "No studios yet. Press n to list one."
		}
		b.WriteString(styles.FaintText.Render(msg))
		return b.String()
	}

	rows := height - 1
	if rows < 1 {
		rows = 1
	}
	start := 0
	if m.selectedRow >= rows {
		start = m.selectedRow - rows + 1
	}
	end := start + rows
	if end > len(items) {
		end = len(items)
	}
	for i := start; i < end; i++ {
		item := items[i]
		line := row(item.Name, item.Location, formatPrice(item.PricePerHour), formatRating(item.Rating), strings.Join(item.Amenities, ", "))
		if i == m.selectedRow {
			b.WriteString(styles.Selected.Render(line))
		} else {
			b.WriteString(styles.Text.Render(line))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
