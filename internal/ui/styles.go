package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Colors of the active theme. Reassigned by regenerateStyles.
var (
	ColorPrimary     color.Color
	ColorSecondary   color.Color
	ColorBorder      color.Color
	ColorBorderFocus color.Color
	ColorBg          color.Color
	ColorText        color.Color
	ColorTextMuted   color.Color
	ColorTextInverse color.Color
	ColorSelf        color.Color
	ColorPeer        color.Color
	ColorWarning     color.Color
	ColorError       color.Color
	ColorSuccess     color.Color
)

// Header and footer styles
var (
	HeaderStyle     lipgloss.Style
	FooterStyle     lipgloss.Style
	FooterKeyStyle  lipgloss.Style
	FooterDescStyle lipgloss.Style
	FlashInfoStyle  lipgloss.Style
	FlashErrorStyle lipgloss.Style
)

// Panel and composer styles
var (
	PanelStyle            lipgloss.Style
	PanelFocusedStyle     lipgloss.Style
	ComposerStyle         lipgloss.Style
	ComposerFocusedStyle  lipgloss.Style
	StatusLoadingStyle    lipgloss.Style
	EmptyPlaceholderStyle lipgloss.Style
)

// Message box styles
var (
	AvatarSelfStyle  lipgloss.Style
	AvatarPeerStyle  lipgloss.Style
	SenderSelfStyle  lipgloss.Style
	SenderPeerStyle  lipgloss.Style
	TimestampStyle   lipgloss.Style
	BubbleSelfStyle  lipgloss.Style
	BubblePeerStyle  lipgloss.Style
	BubbleTextStyle  lipgloss.Style
	DeletedTextStyle lipgloss.Style
	ActionStyle      lipgloss.Style
	ActionFocusStyle lipgloss.Style
	SelectedRowStyle lipgloss.Style
)

// Text selection styles
var (
	TextSelectionStyle lipgloss.Style
	// TextSelectionFlashStyle is used briefly when text is copied
	TextSelectionFlashStyle lipgloss.Style
)

// Connection state indicator colors
var (
	StateOpenStyle    lipgloss.Style
	StatePendingStyle lipgloss.Style
	StateClosedStyle  lipgloss.Style
)

func init() {
	regenerateStyles()
}

// regenerateStyles updates all style variables based on the current theme
func regenerateStyles() {
	t := currentTheme

	ColorPrimary = lipgloss.Color(t.Primary)
	ColorSecondary = lipgloss.Color(t.Secondary)
	ColorBorder = lipgloss.Color(t.Border)
	ColorBorderFocus = lipgloss.Color(t.GetBorderFocus())
	ColorBg = lipgloss.Color(t.Bg)
	ColorText = lipgloss.Color(t.Text)
	ColorTextMuted = lipgloss.Color(t.TextMuted)
	ColorTextInverse = lipgloss.Color(t.TextInverse)
	ColorSelf = lipgloss.Color(t.Self)
	ColorPeer = lipgloss.Color(t.Peer)
	ColorWarning = lipgloss.Color(t.Warning)
	ColorError = lipgloss.Color(t.Error)
	ColorSuccess = lipgloss.Color(t.Success)

	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorText).
		Background(ColorPrimary).
		Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Padding(0, 1)

	FooterKeyStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorSecondary)

	FooterDescStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted)

	FlashInfoStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess).
		Bold(true)

	FlashErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError).
		Bold(true)

	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	PanelFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorderFocus)

	ComposerStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)

	ComposerFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorderFocus).
		Padding(0, 1)

	StatusLoadingStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Italic(true)

	EmptyPlaceholderStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Italic(true)

	AvatarSelfStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorTextInverse).
		Background(ColorSelf).
		Padding(0, 1)

	AvatarPeerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorTextInverse).
		Background(ColorPeer).
		Padding(0, 1)

	SenderSelfStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorSelf)

	SenderPeerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPeer)

	TimestampStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted)

	BubbleSelfStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSelf).
		Padding(0, 1)

	BubblePeerStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)

	BubbleTextStyle = lipgloss.NewStyle().
		Foreground(ColorText)

	DeletedTextStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Italic(true).
		Strikethrough(true)

	ActionStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted)

	ActionFocusStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)

	SelectedRowStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(ColorPrimary).
		PaddingLeft(1)

	TextSelectionStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(t.SelectionBg)).
		Foreground(lipgloss.Color(t.SelectionFg))

	TextSelectionFlashStyle = lipgloss.NewStyle().
		Background(ColorSuccess).
		Foreground(ColorTextInverse)

	StateOpenStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	StatePendingStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	StateClosedStyle = lipgloss.NewStyle().Foreground(ColorError)
}
