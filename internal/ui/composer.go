package ui

import (
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"

	"github.com/parleychat/parley/internal/clipboard"
	"github.com/parleychat/parley/internal/keys"
	"github.com/parleychat/parley/internal/logger"
)

// SubmitMsg is emitted when Enter is pressed in the composer. Text is the
// raw buffer; deciding whether anything is sent is up to the receiver.
type SubmitMsg struct {
	Text string
}

// PasteMsg carries text read from the native clipboard.
type PasteMsg struct {
	Text string
}

// Composer is the message input box.
type Composer struct {
	input   textarea.Model
	width   int
	focused bool
}

// NewComposer creates a composer. Enter submits; shift+enter and
// alt+enter insert a newline.
func NewComposer() *Composer {
	ti := textarea.New()
	ti.Placeholder = "Enter message…"
	ti.CharLimit = ComposerCharLimit
	ti.SetHeight(ComposerHeight)
	ti.ShowLineNumbers = false
	ti.Prompt = ""
	ti.KeyMap.InsertNewline.SetKeys(keys.ShiftEnter, keys.AltEnter)

	return &Composer{input: ti}
}

// SetWidth sets the outer width of the composer box
func (c *Composer) SetWidth(width int) {
	c.width = width
	c.input.SetWidth(max(GetViewContext().InnerWidth(width)-InputPaddingWidth, 1))
}

// Focus focuses the textarea
func (c *Composer) Focus() tea.Cmd {
	c.focused = true
	return c.input.Focus()
}

// Blur removes focus from the textarea
func (c *Composer) Blur() {
	c.focused = false
	c.input.Blur()
}

// IsFocused returns the focus state
func (c *Composer) IsFocused() bool {
	return c.focused
}

// Value returns the raw buffer.
func (c *Composer) Value() string {
	return c.input.Value()
}

// SetValue replaces the buffer.
func (c *Composer) SetValue(s string) {
	c.input.SetValue(s)
}

// Reset clears the buffer.
func (c *Composer) Reset() {
	c.input.Reset()
}

// Update handles messages
func (c *Composer) Update(msg tea.Msg) (*Composer, tea.Cmd) {
	switch msg := msg.(type) {
	case PasteMsg:
		c.input.InsertString(msg.Text)
		return c, nil

	case tea.KeyPressMsg:
		if !c.focused {
			return c, nil
		}
		switch msg.String() {
		case keys.Enter:
			text := c.input.Value()
			return c, func() tea.Msg { return SubmitMsg{Text: text} }
		case keys.CtrlV:
			return c, readClipboard
		}
	}

	if !c.focused {
		return c, nil
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

// readClipboard reads the native clipboard into a PasteMsg.
func readClipboard() tea.Msg {
	text, err := clipboard.ReadText()
	if err != nil {
		logger.WithComponent("ui").Warn("failed to read clipboard", "error", err)
		return ClipboardErrorMsg{Error: err}
	}
	return PasteMsg{Text: text}
}

// View renders the composer box
func (c *Composer) View() string {
	style := ComposerStyle
	if c.focused {
		style = ComposerFocusedStyle
	}
	return style.Width(c.width).Render(c.input.View())
}
