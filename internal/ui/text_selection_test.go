package ui

import (
	"testing"
)

// newSelectableList returns a list whose viewport shows plain text so
// selection coordinates map directly onto characters.
func newSelectableList(content string) *MessageList {
	l := newTestList()
	l.viewport.SetContent(content)
	return l
}

func TestStartSelection(t *testing.T) {
	l := newTestList()
	l.StartSelection(5, 10)

	if l.selection.StartCol != 5 || l.selection.StartLine != 10 {
		t.Errorf("start position wrong: got (%d, %d)", l.selection.StartCol, l.selection.StartLine)
	}
	if l.selection.EndCol != 5 || l.selection.EndLine != 10 {
		t.Errorf("end position should match start: got (%d, %d)", l.selection.EndCol, l.selection.EndLine)
	}
	if !l.selection.Active {
		t.Error("expected Active=true after StartSelection")
	}
}

func TestEndSelection_InactiveIsNoop(t *testing.T) {
	l := newTestList()
	l.EndSelection(20, 12)

	if l.selection.EndCol != 0 || l.selection.EndLine != 0 {
		t.Errorf("expected no change when inactive, got (%d, %d)", l.selection.EndCol, l.selection.EndLine)
	}
}

func TestSelectionStopAndClear(t *testing.T) {
	l := newTestList()
	l.StartSelection(5, 10)
	l.EndSelection(20, 12)
	l.SelectionStop()

	if l.selection.Active {
		t.Error("expected Active=false after SelectionStop")
	}
	if l.selection.StartCol != 5 || l.selection.EndCol != 20 {
		t.Error("positions should be preserved after SelectionStop")
	}

	l.SelectionClear()
	if l.selection.StartCol != -1 || l.selection.EndLine != -1 {
		t.Error("positions should be (-1, -1) after clear")
	}
}

func TestHasTextSelection(t *testing.T) {
	tests := []struct {
		name                                 string
		startCol, startLine, endCol, endLine int
		want                                 bool
	}{
		{"no selection", -1, -1, -1, -1, false},
		{"same point", 5, 5, 5, 5, false},
		{"different column same line", 5, 5, 10, 5, true},
		{"different line", 5, 5, 5, 6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestList()
			l.selection.StartCol = tt.startCol
			l.selection.StartLine = tt.startLine
			l.selection.EndCol = tt.endCol
			l.selection.EndLine = tt.endLine
			if got := l.HasTextSelection(); got != tt.want {
				t.Errorf("HasTextSelection() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectionArea_Normalizes(t *testing.T) {
	tests := []struct {
		name   string
		sc, sl int
		ec, el int
		wantSC int
		wantSL int
		wantEC int
		wantEL int
	}{
		{"forward", 5, 2, 15, 4, 5, 2, 15, 4},
		{"backward", 15, 4, 5, 2, 5, 2, 15, 4},
		{"same line backward", 20, 5, 3, 5, 3, 5, 20, 5},
		{"dragged onto top border", 5, 0, 9, -1, 0, 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestList()
			l.selection.StartCol, l.selection.StartLine = tt.sc, tt.sl
			l.selection.EndCol, l.selection.EndLine = tt.ec, tt.el

			sc, sl, ec, el := l.selectionArea()
			if sc != tt.wantSC || sl != tt.wantSL || ec != tt.wantEC || el != tt.wantEL {
				t.Errorf("selectionArea() = (%d,%d)-(%d,%d), want (%d,%d)-(%d,%d)",
					sc, sl, ec, el, tt.wantSC, tt.wantSL, tt.wantEC, tt.wantEL)
			}
		})
	}
}

func TestGetSelectedText(t *testing.T) {
	l := newSelectableList("hello world\nsecond line")

	if got := l.GetSelectedText(); got != "" {
		t.Errorf("no selection should give empty text, got %q", got)
	}

	l.StartSelection(0, 0)
	l.EndSelection(5, 0)
	if got := l.GetSelectedText(); got != "hello" {
		t.Errorf("GetSelectedText() = %q, want hello", got)
	}

	l.StartSelection(6, 0)
	l.EndSelection(6, 1)
	if got := l.GetSelectedText(); got != "world\nsecond" {
		t.Errorf("GetSelectedText() = %q, want multi-line selection", got)
	}
}

func TestSelectWord(t *testing.T) {
	l := newSelectableList("hello world")

	l.SelectWord(8, 0)
	if got := l.GetSelectedText(); got != "world" {
		t.Errorf("SelectWord(8) = %q, want world", got)
	}

	l.SelectWord(1, 0)
	if got := l.GetSelectedText(); got != "hello" {
		t.Errorf("SelectWord(1) = %q, want hello", got)
	}
}

func TestSelectWord_OutOfBounds(t *testing.T) {
	l := newTestList()
	l.SelectWord(-1, -1)
	if l.HasTextSelection() {
		t.Error("expected no selection on out-of-bounds")
	}
}

func TestSelectParagraph(t *testing.T) {
	l := newSelectableList("first\nblock\n\nnext")

	l.SelectParagraph(2, 1)
	if got := l.GetSelectedText(); got != "first\nblock" {
		t.Errorf("SelectParagraph = %q, want first block", got)
	}

	l.SelectParagraph(0, -1)
	if got := l.GetSelectedText(); got != "first\nblock" {
		t.Error("out-of-bounds paragraph selection should be a no-op")
	}
}

func TestHandleMouseClick_Counting(t *testing.T) {
	l := newSelectableList("hello world")

	l.handleMouseClick(5, 0)
	if l.selection.ClickCount != 1 || !l.selection.Active {
		t.Errorf("single click: ClickCount=%d Active=%v", l.selection.ClickCount, l.selection.Active)
	}

	cmd := l.handleMouseClick(6, 0)
	if l.selection.ClickCount != 2 {
		t.Errorf("double click: ClickCount=%d", l.selection.ClickCount)
	}
	if cmd == nil {
		t.Error("double click should copy the word")
	}
	if !l.IsSelectionFlashing() {
		t.Error("copy should start the flash")
	}

	l.handleMouseClick(60, 10)
	if l.selection.ClickCount != 1 {
		t.Errorf("distant click should reset, ClickCount=%d", l.selection.ClickCount)
	}
}

func TestSelectionFlashTick_ClearsSelection(t *testing.T) {
	l := newSelectableList("hello world")
	l.SelectWord(1, 0)
	l.selection.FlashFrame = 0

	l, _ = l.Update(SelectionFlashTickMsg{})
	if l.IsSelectionFlashing() || l.HasTextSelection() {
		t.Error("flash tick should end the flash and clear the selection")
	}
}

func TestCopySelectedText_NoSelection(t *testing.T) {
	l := newTestList()
	if cmd := l.CopySelectedText(); cmd != nil {
		t.Error("expected nil cmd when no selection")
	}
}

func TestSelectionView_NegativeEndLine_NoPanic(t *testing.T) {
	l := newTestList()
	l.selection.StartCol = 5
	l.selection.StartLine = 0
	l.selection.EndCol = 0
	l.selection.EndLine = -1

	_ = l.GetSelectedText()
	_ = l.selectionView("hello\nworld\n")
}

func TestAbsHelper(t *testing.T) {
	for in, want := range map[int]int{0: 0, 5: 5, -5: 5, -1: 1} {
		if got := abs(in); got != want {
			t.Errorf("abs(%d) = %d, want %d", in, got, want)
		}
	}
}
