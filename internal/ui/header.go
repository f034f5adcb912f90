package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/parleychat/parley/internal/realtime"
)

const headerTitle = " parley"

// Header represents the top header bar
type Header struct {
	width int
	state realtime.State
	email string
}

// NewHeader creates a new header
func NewHeader() *Header {
	return &Header{}
}

// SetWidth sets the header width
func (h *Header) SetWidth(width int) {
	h.width = width
}

// SetConnectionState sets the realtime connection state to display
func (h *Header) SetConnectionState(state realtime.State) {
	h.state = state
}

// SetEmail sets the signed-in user's email. Empty means signed out.
func (h *Header) SetEmail(email string) {
	h.email = email
}

// View renders the header
func (h *Header) View() string {
	status := "● " + h.state.String()
	account := "signed out"
	if h.email != "" {
		account = h.email
	}
	rightText := status + "  " + account + " "

	paddingLen := h.width - runewidth.StringWidth(headerTitle) - runewidth.StringWidth(rightText)
	if paddingLen < 0 {
		paddingLen = 0
	}

	fullContent := headerTitle + strings.Repeat(" ", paddingLen) + rightText
	statusStart := len([]rune(headerTitle)) + paddingLen
	accountStart := statusStart + len([]rune(status)) + 2

	return h.renderGradient(fullContent, statusStart, accountStart)
}

// stateStyle picks the indicator color for a connection state.
func stateStyle(state realtime.State) lipgloss.Style {
	switch state {
	case realtime.Open:
		return StateOpenStyle
	case realtime.Connecting, realtime.Closing:
		return StatePendingStyle
	default:
		return StateClosedStyle
	}
}

// parseHexColor parses a hex color string (e.g., "#7C3AED") into RGB components
func parseHexColor(hex string) (r, g, b int) {
	if len(hex) == 7 && hex[0] == '#' {
		fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b)
	}
	return
}

// renderGradient renders the content with a theme-aware gradient background.
// The rune at statusStart is the state dot; runes from accountStart on are muted.
func (h *Header) renderGradient(content string, statusStart, accountStart int) string {
	if len(content) == 0 {
		return ""
	}

	theme := CurrentTheme()
	startR, startG, startB := parseHexColor(theme.Primary)
	endR, endG, endB := parseHexColor(theme.Bg)

	textColor := lipgloss.Color(theme.Text)
	mutedColor := lipgloss.Color(theme.TextMuted)
	dotColor := stateStyle(h.state).GetForeground()

	runes := []rune(content)
	width := len(runes)
	var result strings.Builder

	for i, r := range runes {
		t := float64(i) / float64(width)

		cr := int(float64(startR)*(1-t) + float64(endR)*t)
		cg := int(float64(startG)*(1-t) + float64(endG)*t)
		cb := int(float64(startB)*(1-t) + float64(endB)*t)

		style := lipgloss.NewStyle().
			Background(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", cr, cg, cb))).
			Bold(i < len([]rune(headerTitle)))

		switch {
		case i == statusStart:
			style = style.Foreground(dotColor)
		case i >= accountStart:
			style = style.Foreground(mutedColor)
		default:
			style = style.Foreground(textColor)
		}

		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}
