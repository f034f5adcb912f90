package ui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// DefaultFlashDuration is how long a flash message stays in the footer.
const DefaultFlashDuration = 4 * time.Second

// FlashType classifies a flash message.
type FlashType int

const (
	FlashInfo FlashType = iota
	FlashSuccess
	FlashWarning
	FlashError
)

// FlashMessage is a transient status line shown in place of the key bindings.
type FlashMessage struct {
	Text      string
	Type      FlashType
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired reports whether the message has outlived its duration.
func (f *FlashMessage) IsExpired() bool {
	return time.Since(f.CreatedAt) >= f.Duration
}

// FlashTickMsg is sent periodically while a flash message is visible.
type FlashTickMsg time.Time

// FlashTick returns a command that checks flash expiry after a second.
func FlashTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return FlashTickMsg(t)
	})
}

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key  string
	Desc string
}

// Footer represents the bottom footer bar with keybindings
type Footer struct {
	width        int
	bindings     []KeyBinding
	listFocused  bool // Whether the message list has focus
	hasSelection bool // Whether mouse-selected text is pending copy
	flashMessage *FlashMessage
}

// NewFooter creates a new footer
func NewFooter() *Footer {
	return &Footer{
		bindings: []KeyBinding{
			{Key: "enter", Desc: "send"},
			{Key: "shift+enter", Desc: "newline"},
			{Key: "ctrl+v", Desc: "paste"},
			{Key: "tab", Desc: "messages"},
			{Key: "pgup/dn", Desc: "scroll"},
			{Key: "ctrl+t", Desc: "theme"},
			{Key: "ctrl+c", Desc: "quit"},
		},
	}
}

// SetContext updates the footer's context for conditional bindings
func (f *Footer) SetContext(listFocused, hasSelection bool) {
	f.listFocused = listFocused
	f.hasSelection = hasSelection
}

// SetWidth sets the footer width
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// SetBindings allows custom keybindings
func (f *Footer) SetBindings(bindings []KeyBinding) {
	f.bindings = bindings
}

// SetFlash shows text for DefaultFlashDuration.
func (f *Footer) SetFlash(text string, kind FlashType) {
	f.SetFlashWithDuration(text, kind, DefaultFlashDuration)
}

// SetFlashWithDuration shows text for d.
func (f *Footer) SetFlashWithDuration(text string, kind FlashType, d time.Duration) {
	f.flashMessage = &FlashMessage{
		Text:      text,
		Type:      kind,
		CreatedAt: time.Now(),
		Duration:  d,
	}
}

// ClearFlash removes any flash message.
func (f *Footer) ClearFlash() {
	f.flashMessage = nil
}

// HasFlash reports whether a flash message is set.
func (f *Footer) HasFlash() bool {
	return f.flashMessage != nil
}

// ClearIfExpired clears an expired flash and reports whether it did.
func (f *Footer) ClearIfExpired() bool {
	if f.flashMessage != nil && f.flashMessage.IsExpired() {
		f.flashMessage = nil
		return true
	}
	return false
}

func flashIcon(kind FlashType) (string, lipgloss.Style) {
	switch kind {
	case FlashError:
		return "✕", FlashErrorStyle
	case FlashWarning:
		return "⚠", lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	case FlashSuccess:
		return "✓", FlashInfoStyle
	default:
		return "ℹ", lipgloss.NewStyle().Foreground(ColorSecondary)
	}
}

// View renders the footer
func (f *Footer) View() string {
	if f.flashMessage != nil {
		icon, style := flashIcon(f.flashMessage.Type)
		return FooterStyle.Width(f.width).Render(style.Render(icon + " " + f.flashMessage.Text))
	}

	bindings := f.bindings
	if f.listFocused {
		bindings = []KeyBinding{
			{Key: "j/k", Desc: "select"},
			{Key: ".", Desc: "actions"},
			{Key: "y", Desc: "copy"},
			{Key: "tab", Desc: "compose"},
			{Key: "esc", Desc: "clear"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	}

	var parts []string
	if f.hasSelection {
		parts = append(parts, FooterKeyStyle.Render("release")+FooterDescStyle.Render(": copy selection"))
	}
	for _, b := range bindings {
		key := FooterKeyStyle.Render(b.Key)
		desc := FooterDescStyle.Render(": " + b.Desc)
		parts = append(parts, key+desc)
	}

	content := strings.Join(parts, "  "+lipgloss.NewStyle().Foreground(ColorBorder).Render("|")+"  ")

	return FooterStyle.Width(f.width).Render(content)
}
