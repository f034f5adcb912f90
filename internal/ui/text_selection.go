package ui

import (
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"
	"github.com/rivo/uniseg"

	"github.com/parleychat/parley/internal/clipboard"
	"github.com/parleychat/parley/internal/logger"
)

// Selection coordinates are relative to the message list's viewport:
// (0,0) is the first visible cell inside the panel border. MessageList.Update
// converts panel coordinates by subtracting the 1-cell border. When extracting
// text, ANSI codes are stripped so columns match visible cells.

// SelectionFlashTickMsg is sent to animate the selection copy flash
type SelectionFlashTickMsg time.Time

// ClipboardErrorMsg is sent when clipboard operations fail
type ClipboardErrorMsg struct {
	Error error
}

// CopiedMsg is sent after text reaches the native clipboard.
type CopiedMsg struct {
	Text string
}

const (
	doubleClickThreshold = 500 * time.Millisecond
	clickTolerance       = 2 // cells
)

// TextSelection tracks mouse selection state in the message list.
type TextSelection struct {
	StartCol, StartLine int  // Start position (column, line in viewport)
	EndCol, EndLine     int  // End position (column, line in viewport)
	Active              bool // True during drag operation

	// Click tracking for double/triple click detection
	LastClickTime time.Time
	LastClickX    int
	LastClickY    int
	ClickCount    int

	// Brief highlight after copy, then clear
	FlashFrame int // -1 = inactive, 0 = flash visible
}

// NewTextSelection creates a new TextSelection in inactive state.
func NewTextSelection() *TextSelection {
	return &TextSelection{
		FlashFrame: -1,
	}
}

// SelectionFlashTick returns a command that sends a selection flash tick
func SelectionFlashTick() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(t time.Time) tea.Msg {
		return SelectionFlashTickMsg(t)
	})
}

// StartSelection begins a text selection at the given coordinates
func (l *MessageList) StartSelection(col, line int) {
	l.selection.StartCol = col
	l.selection.StartLine = line
	l.selection.EndCol = col
	l.selection.EndLine = line
	l.selection.Active = true
}

// EndSelection updates the end position of the selection during drag
func (l *MessageList) EndSelection(col, line int) {
	if !l.selection.Active {
		return
	}
	l.selection.EndCol = col
	l.selection.EndLine = line
}

// SelectionStop ends the drag but keeps the selection visible
func (l *MessageList) SelectionStop() {
	l.selection.Active = false
}

// SelectionClear clears the selection entirely
func (l *MessageList) SelectionClear() {
	l.selection.StartCol = -1
	l.selection.StartLine = -1
	l.selection.EndCol = -1
	l.selection.EndLine = -1
	l.selection.Active = false
}

// HasTextSelection returns true if there is an active or completed selection
func (l *MessageList) HasTextSelection() bool {
	s := l.selection
	return s.StartCol >= 0 && s.StartLine >= 0 &&
		(s.EndCol != s.StartCol || s.EndLine != s.StartLine)
}

// IsSelectionFlashing returns whether the copy flash is visible
func (l *MessageList) IsSelectionFlashing() bool {
	return l.selection.FlashFrame >= 0
}

// handleMouseClick handles mouse click events and detects double/triple clicks
func (l *MessageList) handleMouseClick(x, y int) tea.Cmd {
	now := time.Now()
	s := l.selection

	if now.Sub(s.LastClickTime) <= doubleClickThreshold &&
		abs(x-s.LastClickX) <= clickTolerance &&
		abs(y-s.LastClickY) <= clickTolerance {
		s.ClickCount++
	} else {
		s.ClickCount = 1
	}

	s.LastClickTime = now
	s.LastClickX = x
	s.LastClickY = y

	switch s.ClickCount {
	case 1:
		l.StartSelection(x, y)
	case 2:
		l.SelectWord(x, y)
		return l.CopySelectedText()
	case 3:
		l.SelectParagraph(x, y)
		s.ClickCount = 0
		return l.CopySelectedText()
	}

	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// visibleLines returns the viewport's visible lines with ANSI stripped.
func (l *MessageList) visibleLines() []string {
	lines := strings.Split(l.viewport.View(), "\n")
	for i, line := range lines {
		lines[i] = ansi.Strip(line)
	}
	return lines
}

// SelectWord selects the word at the given position
func (l *MessageList) SelectWord(col, line int) {
	lines := l.visibleLines()
	if line < 0 || line >= len(lines) {
		return
	}

	currentLine := lines[line]
	if col < 0 || col >= len(currentLine) {
		return
	}

	// Word boundaries are the byte offsets where a word ends
	startCol, endCol := 0, len(currentLine)
	gr := uniseg.NewGraphemes(currentLine)
	pos := 0
	for gr.Next() {
		pos += len(gr.Str())
		if !gr.IsWordBoundary() {
			continue
		}
		if pos <= col {
			startCol = pos
		} else {
			endCol = pos
			break
		}
	}

	l.selection.StartCol = startCol
	l.selection.StartLine = line
	l.selection.EndCol = endCol
	l.selection.EndLine = line
	l.selection.Active = false
}

// SelectParagraph selects the block of non-blank lines around the position
func (l *MessageList) SelectParagraph(col, line int) {
	lines := l.visibleLines()
	if line < 0 || line >= len(lines) {
		return
	}

	startLine := line
	endLine := line
	for startLine > 0 && strings.TrimSpace(lines[startLine-1]) != "" {
		startLine--
	}
	for endLine < len(lines)-1 && strings.TrimSpace(lines[endLine+1]) != "" {
		endLine++
	}

	l.selection.StartCol = 0
	l.selection.StartLine = startLine
	l.selection.EndCol = len(lines[endLine])
	l.selection.EndLine = endLine
	l.selection.Active = false
}

// selectionArea returns the selection normalized to reading order
// (top-to-bottom, left-to-right) and clamped to non-negative lines.
func (l *MessageList) selectionArea() (startCol, startLine, endCol, endLine int) {
	startCol = l.selection.StartCol
	startLine = l.selection.StartLine
	endCol = l.selection.EndCol
	endLine = l.selection.EndLine

	if startLine > endLine || (startLine == endLine && startCol > endCol) {
		startCol, endCol = endCol, startCol
		startLine, endLine = endLine, startLine
	}

	// Dragging onto the top border yields line -1
	if startLine < 0 {
		startLine, startCol = 0, 0
	}
	return
}

// GetSelectedText returns the currently selected text.
func (l *MessageList) GetSelectedText() string {
	if !l.HasTextSelection() {
		return ""
	}

	lines := l.visibleLines()
	startCol, startLine, endCol, endLine := l.selectionArea()

	var result strings.Builder
	for y := startLine; y <= endLine && y < len(lines); y++ {
		line := lines[y]

		lineStart, lineEnd := 0, len(line)
		if y == startLine {
			lineStart = startCol
		}
		if y == endLine {
			lineEnd = endCol
		}

		lineStart = max(lineStart, 0)
		lineEnd = min(lineEnd, len(line))
		lineStart = min(lineStart, lineEnd)

		// The viewport pads lines to its width
		result.WriteString(strings.TrimRight(line[lineStart:lineEnd], " "))
		if y < endLine {
			result.WriteString("\n")
		}
	}

	return strings.TrimSpace(result.String())
}

// CopySelectedText copies the selected text to the clipboard and starts flash animation
func (l *MessageList) CopySelectedText() tea.Cmd {
	if !l.HasTextSelection() {
		return nil
	}

	selectedText := l.GetSelectedText()
	if selectedText == "" {
		return nil
	}

	l.selection.FlashFrame = 0

	return tea.Batch(copyText(selectedText), SelectionFlashTick())
}

// copyText writes text via OSC 52 and, as a fallback, the native clipboard.
func copyText(text string) tea.Cmd {
	return tea.Batch(
		tea.SetClipboard(text),
		func() tea.Msg {
			if err := clipboard.WriteText(text); err != nil {
				logger.WithComponent("ui").Warn("failed to write to clipboard", "error", err)
				return ClipboardErrorMsg{Error: err}
			}
			return CopiedMsg{Text: text}
		},
	)
}

// handleSelectionFlashTick ends the copy flash and clears the selection.
func (l *MessageList) handleSelectionFlashTick() tea.Cmd {
	if l.selection.FlashFrame < 0 {
		return nil
	}
	l.selection.FlashFrame = -1
	l.SelectionClear()
	return nil
}

// selectionView applies selection highlighting to the rendered view using ultraviolet
func (l *MessageList) selectionView(view string) string {
	if !l.HasTextSelection() {
		return view
	}

	width := l.viewport.Width()
	height := l.viewport.Height()
	if width <= 0 || height <= 0 {
		return view
	}

	area := uv.Rect(0, 0, width, height)
	scr := uv.NewScreenBuffer(area.Dx(), area.Dy())
	uv.NewStyledString(view).Draw(scr, area)

	startCol, startLine, endCol, endLine := l.selectionArea()

	var selBg, selFg color.Color
	if l.selection.FlashFrame == 0 {
		selBg = TextSelectionFlashStyle.GetBackground()
		selFg = TextSelectionFlashStyle.GetForeground()
	} else {
		selBg = TextSelectionStyle.GetBackground()
		selFg = TextSelectionStyle.GetForeground()
	}

	for y := startLine; y <= endLine && y < height; y++ {
		xStart, xEnd := 0, width
		if y == startLine {
			xStart = startCol
		}
		if y == endLine {
			xEnd = endCol
		}

		for x := max(xStart, 0); x < xEnd && x < width; x++ {
			cell := scr.CellAt(x, y)
			if cell != nil {
				cell = cell.Clone()
				cell.Style.Bg = selBg
				cell.Style.Fg = selFg
				scr.SetCell(x, y, cell)
			}
		}
	}

	return scr.Render()
}
