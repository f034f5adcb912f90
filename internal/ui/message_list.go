package ui

import (
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/keys"
	"github.com/parleychat/parley/internal/logger"
)

// MessageActionMsg is emitted when the action key is pressed on a message.
type MessageActionMsg struct {
	Message chat.Message
}

// MessageList is the scrollable, selectable list of chat messages.
type MessageList struct {
	viewport viewport.Model
	width    int
	height   int
	focused  bool

	messages []chat.Message
	ids      map[int64]struct{}
	selfID   int64
	cursor   int   // index into messages, -1 when nothing is selected
	offsets  []int // first content line of each message

	selection *TextSelection
}

// NewMessageList creates an empty message list.
func NewMessageList() *MessageList {
	vp := viewport.New()
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	l := &MessageList{
		viewport:  vp,
		ids:       make(map[int64]struct{}),
		cursor:    -1,
		selection: NewTextSelection(),
	}
	l.updateContent()
	return l
}

// SetSize sets the outer panel dimensions.
func (l *MessageList) SetSize(width, height int) {
	l.width = width
	l.height = height

	ctx := GetViewContext()
	l.viewport.SetWidth(max(ctx.InnerWidth(width), 1))
	l.viewport.SetHeight(max(ctx.InnerHeight(height), 1))

	logger.WithComponent("ui").Debug("MessageList.SetSize",
		"width", width, "height", height,
		"viewportWidth", l.viewport.Width(), "viewportHeight", l.viewport.Height())

	l.updateContent()
}

// SetFocused sets the focus state. Losing focus hides the cursor.
func (l *MessageList) SetFocused(focused bool) {
	l.focused = focused
	if focused && l.cursor < 0 && len(l.messages) > 0 {
		l.cursor = len(l.messages) - 1
	}
	l.updateContent()
}

// IsFocused returns the focus state
func (l *MessageList) IsFocused() bool {
	return l.focused
}

// SetSelfID sets the sender id rendered as "self".
func (l *MessageList) SetSelfID(id int64) {
	l.selfID = id
	l.updateContent()
}

// SetMessages replaces the list with msgs, rendered in the order supplied.
// Later duplicates of an id are dropped.
func (l *MessageList) SetMessages(msgs []chat.Message) {
	l.messages = nil
	l.ids = make(map[int64]struct{}, len(msgs))
	l.cursor = -1
	l.Append(msgs...)
	if len(l.messages) == 0 {
		l.updateContent()
	}
}

// Append adds messages whose ids are not already present, preserving
// arrival order, and returns how many were added.
func (l *MessageList) Append(msgs ...chat.Message) int {
	wasAtBottom := l.viewport.AtBottom() || len(l.messages) == 0

	added := 0
	for _, m := range msgs {
		if _, dup := l.ids[m.ID]; dup {
			logger.WithComponent("ui").Debug("skipping duplicate message", "id", m.ID)
			continue
		}
		l.ids[m.ID] = struct{}{}
		l.messages = append(l.messages, m)
		added++
	}
	if added == 0 {
		return 0
	}

	l.updateContent()
	if wasAtBottom {
		l.viewport.GotoBottom()
	}
	return added
}

// Messages returns a copy of the rendered messages.
func (l *MessageList) Messages() []chat.Message {
	return append([]chat.Message(nil), l.messages...)
}

// Len returns the number of messages.
func (l *MessageList) Len() int {
	return len(l.messages)
}

// Selected returns the message under the cursor.
func (l *MessageList) Selected() (chat.Message, bool) {
	if l.cursor < 0 || l.cursor >= len(l.messages) {
		return chat.Message{}, false
	}
	return l.messages[l.cursor], true
}

// MoveCursor moves the selection cursor by delta, clamped to the list.
func (l *MessageList) MoveCursor(delta int) {
	if len(l.messages) == 0 {
		return
	}
	if l.cursor < 0 {
		l.cursor = len(l.messages) - 1
	} else {
		l.cursor = min(max(l.cursor+delta, 0), len(l.messages)-1)
	}
	l.updateContent()
	l.scrollToCursor()
}

// ClearCursor deselects the current message.
func (l *MessageList) ClearCursor() {
	l.cursor = -1
	l.updateContent()
}

// scrollToCursor adjusts the viewport so the selected message is visible.
func (l *MessageList) scrollToCursor() {
	if l.cursor < 0 || l.cursor >= len(l.offsets) {
		return
	}
	top := l.offsets[l.cursor]
	bottom := l.viewport.TotalLineCount()
	if l.cursor+1 < len(l.offsets) {
		bottom = l.offsets[l.cursor+1]
	}

	switch {
	case top < l.viewport.YOffset():
		l.viewport.SetYOffset(top)
	case bottom > l.viewport.YOffset()+l.viewport.Height():
		l.viewport.SetYOffset(max(bottom-l.viewport.Height(), top))
	}
}

func (l *MessageList) updateContent() {
	width := l.viewport.Width()
	if width <= 0 {
		width = DefaultWrapWidth
	}

	l.offsets = l.offsets[:0]

	if len(l.messages) == 0 {
		l.viewport.SetContent(EmptyPlaceholderStyle.Render("No messages yet. Say hello!"))
		return
	}

	var sb strings.Builder
	line := 0
	for i, m := range l.messages {
		if i > 0 {
			sb.WriteString("\n\n")
			line += 2
		}
		l.offsets = append(l.offsets, line)

		box := MessageBox{
			Message:  m,
			Self:     l.selfID != 0 && m.SenderID == l.selfID,
			Selected: l.focused && i == l.cursor,
			Width:    width,
		}.View()
		sb.WriteString(box)
		line += lipgloss.Height(box)
	}

	l.viewport.SetContent(sb.String())
}

// Update handles messages
func (l *MessageList) Update(msg tea.Msg) (*MessageList, tea.Cmd) {
	switch msg := msg.(type) {
	case SelectionFlashTickMsg:
		return l, l.handleSelectionFlashTick()

	case tea.MouseClickMsg:
		if msg.Button == tea.MouseLeft {
			// Panel coordinates to viewport coordinates: subtract the border
			return l, l.handleMouseClick(msg.X-1, msg.Y-1)
		}
		return l, nil

	case tea.MouseMotionMsg:
		if l.selection.Active {
			l.EndSelection(msg.X-1, msg.Y-1)
		}
		return l, nil

	case tea.MouseReleaseMsg:
		if l.selection.Active {
			l.EndSelection(msg.X-1, msg.Y-1)
			l.SelectionStop()
			return l, l.CopySelectedText()
		}
		return l, nil

	case tea.KeyPressMsg:
		if !l.focused {
			return l, nil
		}
		switch msg.String() {
		case "j", keys.Down:
			l.MoveCursor(1)
			return l, nil
		case "k", keys.Up:
			l.MoveCursor(-1)
			return l, nil
		case keys.Escape:
			l.SelectionClear()
			l.ClearCursor()
			return l, nil
		case ".":
			if m, ok := l.Selected(); ok {
				return l, func() tea.Msg { return MessageActionMsg{Message: m} }
			}
			return l, nil
		case "y":
			if m, ok := l.Selected(); ok {
				return l, copyText(m.Content)
			}
			return l, nil
		case keys.Home:
			l.viewport.GotoTop()
			return l, nil
		case keys.End:
			l.viewport.GotoBottom()
			return l, nil
		}
	}

	var cmd tea.Cmd
	l.viewport, cmd = l.viewport.Update(msg)
	return l, cmd
}

// Scroll forwards a scroll key to the viewport regardless of focus.
func (l *MessageList) Scroll(msg tea.KeyPressMsg) tea.Cmd {
	var cmd tea.Cmd
	l.viewport, cmd = l.viewport.Update(msg)
	return cmd
}

// View renders the list panel
func (l *MessageList) View() string {
	panelStyle := PanelStyle
	if l.focused {
		panelStyle = PanelFocusedStyle
	}
	content := l.selectionView(l.viewport.View())
	return panelStyle.Width(l.width).Height(l.height).Render(content)
}
