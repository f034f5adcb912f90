package ui

import (
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/parleychat/parley/internal/chat"
)

// ActionGlyph is the per-message action affordance.
const ActionGlyph = "⋮"

// FormatHourMinute formats t as a 12-hour clock time in local time,
// e.g. 14:05 becomes "2:05 PM".
func FormatHourMinute(t time.Time) string {
	return t.Local().Format("3:04 PM")
}

// Avatar returns the uppercased first grapheme cluster of name,
// or "?" when name is blank.
func Avatar(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "?"
	}
	first, _, _, _ := uniseg.FirstGraphemeClusterInString(name, -1)
	return strings.ToUpper(first)
}

// MessageBox renders one chat message: avatar, sender name, a dot, the
// time, and the content in a rounded bubble followed by the action glyph.
type MessageBox struct {
	Message  chat.Message
	Self     bool // Sent by the local identity
	Selected bool // Under the list's selection cursor
	Width    int  // Available width; the bubble never exceeds BubbleMaxWidth
}

// View renders the message box.
func (b MessageBox) View() string {
	avatarStyle, nameStyle, bubbleStyle := AvatarPeerStyle, SenderPeerStyle, BubblePeerStyle
	if b.Self {
		avatarStyle, nameStyle, bubbleStyle = AvatarSelfStyle, SenderSelfStyle, BubbleSelfStyle
	}

	avatar := avatarStyle.Render(Avatar(b.Message.SenderName))
	name := runewidth.Truncate(b.Message.SenderName, MaxSenderNameWidth, "…")
	meta := nameStyle.Render(name) +
		TimestampStyle.Render(" • "+FormatHourMinute(b.Message.CreatedAt))

	var body string
	if b.Message.Deleted() {
		body = DeletedTextStyle.Render("message deleted")
	} else {
		body = renderContent(b.Message.Content)
	}

	action := ActionStyle.Render(ActionGlyph)
	if b.Selected {
		action = ActionFocusStyle.Render(ActionGlyph)
	}

	indent := lipgloss.Width(avatar) + 1
	bubble := bubbleStyle.Width(b.bubbleWidth(indent)).Render(body)
	bubbleRow := lipgloss.JoinHorizontal(lipgloss.Center, bubble, " ", action)

	right := lipgloss.JoinVertical(lipgloss.Left, meta, bubbleRow)
	box := lipgloss.JoinHorizontal(lipgloss.Top, avatar, " ", right)

	if b.Selected {
		return SelectedRowStyle.Render(box)
	}
	return box
}

// bubbleWidth is the bubble's outer width: the available width minus the
// avatar column, the action glyph and the selection gutter, capped at
// BubbleMaxWidth and shrunk to fit short messages.
func (b MessageBox) bubbleWidth(indent int) int {
	avail := b.Width
	if avail <= 0 {
		avail = DefaultWrapWidth
	}
	// selection gutter (2) + space and action glyph (2)
	avail -= indent + 4

	w := min(avail, BubbleMaxWidth)

	// Borders and padding take 4 cells
	if natural := widestLine(b.Message.Content) + 4; !b.Message.Deleted() && natural < w && !strings.Contains(b.Message.Content, "```") {
		w = natural
	}
	return max(w, 8)
}

func widestLine(s string) int {
	widest := 0
	for line := range strings.SplitSeq(s, "\n") {
		widest = max(widest, runewidth.StringWidth(line))
	}
	return widest
}
