package ui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/booth/internal/apiclient"
)

// badgeState summarizes the session and service state for the header badge.
func (m Model) badgeState() string {
	snap := m.snapshot
	switch {
	case m.busy():
		return "loading"
	case !snap.Session.Authenticated():
		if snap.Session.Error == apiclient.Message(apiclient.ErrSessionExpired) {
			return "expired"
		}
		return "guest"
	case snap.IsOffline():
		return "offline"
	case snap.Studios.Error != "":
		return "error"
	default:
		return "online"
	}
}

// busy reports whether any request is in flight.
func (m Model) busy() bool {
	return m.inflight > 0 || m.snapshot.Session.Loading || m.snapshot.Studios.Loading
}

// lastError returns the error the header should show, if any.
func (m Model) lastError() string {
	if m.snapshot.Studios.Error != "" {
		return m.snapshot.Studios.Error
	}
	if m.snapshot.Session.Error != "" {
		return m.snapshot.Session.Error
	}
	if err := m.snapshot.LastPollError; err != nil && !errors.Is(err, apiclient.ErrSessionExpired) {
		return "refresh failed: " + apiclient.Message(err)
	}
	return ""
}

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	badge := m.badgeState()

	parts := []string{
		bg.Render("booth", styles.Logo),
		styles.StatusStyle(badge).Render(strings.ToUpper(badge)),
	}

	if user := m.snapshot.Session.User; user != nil {
		parts = append(parts, bg.Render(truncate(user.Email, 32), styles.Text))
	}
	if claims, ok := apiclient.InspectToken(m.snapshot.Session.Token); ok && !claims.ExpiresAt.IsZero() {
		left := time.Until(claims.ExpiresAt)
		label := "token " + humanizeDuration(left)
		style := styles.FaintText
		if left <= 0 {
			label = "token expired"
			style = styles.WarningText
		}
		parts = append(parts, bg.Render(label, style))
	}
	if m.snapshot.Session.Authenticated() && !m.prefs.Filters.IsZero() {
		parts = append(parts, bg.Render("filter "+m.prefs.Filters.Values().Encode(), styles.InfoText))
	}

	switch {
	case m.busy():
		parts = append(parts, bg.Render(m.spinner.View()+" working", styles.InfoText))
	case m.lastError() != "":
		parts = append(parts, bg.Render(truncate(m.lastError(), 60), styles.DangerText))
	case m.status != "":
		parts = append(parts, bg.Render(m.status, styles.SuccessText))
	}

	return bg.FillLine(bg.Join(parts, "  "), m.width)
}

// renderFooter renders key hints for the current view.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	bindings := m.keys.viewHelp(m.currentView)
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, bg.Render(h.Key, styles.WarningText)+bg.Spaces(1)+bg.Render(h.Desc, styles.MutedText))
	}
	right := ""
	if !m.snapshot.LastUpdated.IsZero() {
		right = bg.Render(m.snapshot.LastUpdated.Format("15:04:05"), styles.FaintText)
	}
	left := bg.Join(parts, "  ")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	return bg.FillLine(left+bg.Spaces(gap)+right, m.width)
}
