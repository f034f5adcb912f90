// Package ui provides the user interface components for the parley TUI.
//
// # Layout
//
//	┌─────────────────────────────────────────────┐
//	│ Header: title, connection state, account    │
//	├─────────────────────────────────────────────┤
//	│ MessageList (bordered viewport)             │
//	│   MessageBox per message                    │
//	├─────────────────────────────────────────────┤
//	│ Composer (bordered textarea)                │
//	├─────────────────────────────────────────────┤
//	│ Footer: key bindings or flash message       │
//	└─────────────────────────────────────────────┘
//
// ViewContext is the single place layout arithmetic happens; the app calls
// UpdateTerminalSize on resize and sizes components from it.
//
// # Focus
//
// Either the Composer or the MessageList has focus; tab toggles. The list
// handles j/k selection, "." (action) and "y" (copy message). Scroll keys
// reach the list from either focus.
//
// # Themes
//
// Colors come from the active Theme. SetTheme regenerates every style
// variable in styles.go, so components read styles at render time.
package ui
