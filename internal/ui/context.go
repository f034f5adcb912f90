package ui

import (
	"sync"

	"github.com/parleychat/parley/internal/logger"
)

// Layout is the vertical split of the screen: header, message list,
// composer, footer.
type Layout struct {
	TerminalWidth  int
	TerminalHeight int

	HeaderHeight  int
	FooterHeight  int
	ContentHeight int
	ListHeight    int
}

// ComputeLayout splits a width x height terminal. Tiny terminals are clamped
// to MinTerminalWidth x MinTerminalHeight so no region goes negative.
func ComputeLayout(width, height int) Layout {
	width = max(width, MinTerminalWidth)
	height = max(height, MinTerminalHeight)

	content := height - HeaderHeight - FooterHeight
	return Layout{
		TerminalWidth:  width,
		TerminalHeight: height,
		HeaderHeight:   HeaderHeight,
		FooterHeight:   FooterHeight,
		ContentHeight:  content,
		ListHeight:     content - ComposerTotalHeight,
	}
}

// ListTop is the first screen row of the message list.
func (l Layout) ListTop() int {
	return l.HeaderHeight
}

// InList reports whether screen row y falls inside the message list.
func (l Layout) InList(y int) bool {
	return y >= l.ListTop() && y < l.ListTop()+l.ListHeight
}

// ViewContext holds the current Layout for the running program.
type ViewContext struct {
	Layout
	mu sync.Mutex
}

var (
	ctx     *ViewContext
	ctxOnce sync.Once
)

// GetViewContext returns the shared ViewContext.
func GetViewContext() *ViewContext {
	ctxOnce.Do(func() {
		ctx = &ViewContext{Layout: Layout{HeaderHeight: HeaderHeight, FooterHeight: FooterHeight}}
	})
	return ctx
}

// UpdateTerminalSize recomputes the layout. Call it from the event loop on
// every resize.
func (v *ViewContext) UpdateTerminalSize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.Layout = ComputeLayout(width, height)
	logger.WithComponent("ui").Debug("terminal resized",
		"width", v.TerminalWidth,
		"height", v.TerminalHeight,
		"list_height", v.ListHeight,
	)
}

// InnerWidth is panelWidth minus a border on each side.
func (v *ViewContext) InnerWidth(panelWidth int) int {
	return panelWidth - BorderSize
}

// InnerHeight is panelHeight minus a border on each side.
func (v *ViewContext) InnerHeight(panelHeight int) int {
	return panelHeight - BorderSize
}
