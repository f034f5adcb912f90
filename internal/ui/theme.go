// Package ui provides theme management for the application.
// Themes define the color palette used throughout the UI.
package ui

import "slices"

// Theme defines a complete color palette for the application.
type Theme struct {
	// Name is the display name of the theme
	Name string

	// Primary is the main accent color (focus, header gradient)
	Primary string
	// Secondary is the secondary accent color (key hints, info)
	Secondary string

	// Background colors
	Bg         string // Main background
	BgSelected string // Selected message background (defaults to Primary if empty)

	// Text colors
	Text        string // Primary text
	TextMuted   string // Timestamps, hints
	TextInverse string // Text on colored backgrounds

	// Message bubbles
	Self string // Border and name color for messages we sent
	Peer string // Border and name color for everyone else

	// Semantic colors
	Warning string
	Error   string
	Success string

	// Border colors
	Border      string // Default borders
	BorderFocus string // Focused element borders (defaults to Primary if empty)

	// CodeStyle is the chroma style used for fenced code blocks
	CodeStyle string

	// Text selection colors
	SelectionBg string
	SelectionFg string
}

// GetBgSelected returns the selected background color, defaulting to Primary
func (t Theme) GetBgSelected() string {
	if t.BgSelected != "" {
		return t.BgSelected
	}
	return t.Primary
}

// GetBorderFocus returns the focused border color, defaulting to Primary
func (t Theme) GetBorderFocus() string {
	if t.BorderFocus != "" {
		return t.BorderFocus
	}
	return t.Primary
}

// ThemeName is a type for theme identifiers
type ThemeName string

// Available theme names
const (
	ThemeDusk    ThemeName = "dusk"
	ThemeNord    ThemeName = "nord"
	ThemeDracula ThemeName = "dracula"
	ThemeGruvbox ThemeName = "gruvbox"
	ThemeLight   ThemeName = "light"
)

// DefaultTheme is the default theme name
const DefaultTheme = ThemeDusk

// BuiltinThemes contains all built-in themes
var BuiltinThemes = map[ThemeName]Theme{
	ThemeDusk: {
		Name:        "Dusk",
		Primary:     "#6D28D9",
		Secondary:   "#14B8A6",
		Bg:          "#111827",
		BgSelected:  "#312E81",
		Text:        "#F3F4F6",
		TextMuted:   "#9CA3AF",
		TextInverse: "#111827",
		Self:        "#A78BFA",
		Peer:        "#2DD4BF",
		Warning:     "#FBBF24",
		Error:       "#F87171",
		Success:     "#34D399",
		Border:      "#374151",
		CodeStyle:   "monokai",
		SelectionBg: "#4C1D95",
		SelectionFg: "#F3F4F6",
	},
	ThemeNord: {
		Name:        "Nord",
		Primary:     "#88C0D0",
		Secondary:   "#81A1C1",
		Bg:          "#2E3440",
		BgSelected:  "#434C5E",
		Text:        "#ECEFF4",
		TextMuted:   "#D8DEE9",
		TextInverse: "#2E3440",
		Self:        "#88C0D0",
		Peer:        "#A3BE8C",
		Warning:     "#EBCB8B",
		Error:       "#BF616A",
		Success:     "#A3BE8C",
		Border:      "#4C566A",
		CodeStyle:   "nord",
		SelectionBg: "#5E81AC",
		SelectionFg: "#ECEFF4",
	},
	ThemeDracula: {
		Name:        "Dracula",
		Primary:     "#BD93F9",
		Secondary:   "#8BE9FD",
		Bg:          "#282A36",
		BgSelected:  "#44475A",
		Text:        "#F8F8F2",
		TextMuted:   "#6272A4",
		TextInverse: "#282A36",
		Self:        "#FF79C6",
		Peer:        "#50FA7B",
		Warning:     "#FFB86C",
		Error:       "#FF5555",
		Success:     "#50FA7B",
		Border:      "#44475A",
		CodeStyle:   "dracula",
		SelectionBg: "#6272A4",
		SelectionFg: "#F8F8F2",
	},
	ThemeGruvbox: {
		Name:        "Gruvbox",
		Primary:     "#D79921",
		Secondary:   "#689D6A",
		Bg:          "#282828",
		BgSelected:  "#3C3836",
		Text:        "#EBDBB2",
		TextMuted:   "#A89984",
		TextInverse: "#282828",
		Self:        "#FABD2F",
		Peer:        "#8EC07C",
		Warning:     "#FE8019",
		Error:       "#FB4934",
		Success:     "#B8BB26",
		Border:      "#504945",
		CodeStyle:   "gruvbox",
		SelectionBg: "#665C54",
		SelectionFg: "#FBF1C7",
	},
	ThemeLight: {
		Name:        "Light",
		Primary:     "#4F46E5",
		Secondary:   "#0891B2",
		Bg:          "#FFFFFF",
		BgSelected:  "#E0E7FF",
		Text:        "#111827",
		TextMuted:   "#6B7280",
		TextInverse: "#FFFFFF",
		Self:        "#4F46E5",
		Peer:        "#0D9488",
		Warning:     "#D97706",
		Error:       "#DC2626",
		Success:     "#059669",
		Border:      "#D1D5DB",
		CodeStyle:   "github",
		SelectionBg: "#C7D2FE",
		SelectionFg: "#111827",
	},
}

// ThemeNames returns a list of all available theme names in display order
func ThemeNames() []ThemeName {
	return []ThemeName{
		ThemeDusk,
		ThemeNord,
		ThemeDracula,
		ThemeGruvbox,
		ThemeLight,
	}
}

// IsThemeName reports whether name is a built-in theme.
func IsThemeName(name string) bool {
	_, ok := BuiltinThemes[ThemeName(name)]
	return ok
}

// GetTheme returns a theme by name, defaulting to DefaultTheme if not found
func GetTheme(name ThemeName) Theme {
	if theme, ok := BuiltinThemes[name]; ok {
		return theme
	}
	return BuiltinThemes[DefaultTheme]
}

var (
	currentTheme     = BuiltinThemes[DefaultTheme]
	currentThemeName = DefaultTheme
)

// CurrentTheme returns the currently active theme
func CurrentTheme() Theme {
	return currentTheme
}

// CurrentThemeName returns the name of the current theme
func CurrentThemeName() ThemeName {
	return currentThemeName
}

// SetTheme sets the active theme and regenerates all styles.
// Unknown names fall back to DefaultTheme.
func SetTheme(name ThemeName) {
	if _, ok := BuiltinThemes[name]; !ok {
		name = DefaultTheme
	}
	currentThemeName = name
	currentTheme = BuiltinThemes[name]
	regenerateStyles()
}

// SetThemeByName sets the active theme by string name
func SetThemeByName(name string) {
	SetTheme(ThemeName(name))
}

// NextTheme switches to the theme after the current one in display order
// and returns its name.
func NextTheme() ThemeName {
	names := ThemeNames()
	i := slices.Index(names, currentThemeName)
	next := names[(i+1)%len(names)]
	SetTheme(next)
	return next
}

