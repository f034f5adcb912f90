package ui

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func newFocusedComposer() *Composer {
	c := NewComposer()
	c.SetWidth(80)
	c.Focus()
	return c
}

func TestComposer_EnterSubmitsRawBuffer(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"text", "hello"},
		{"empty", ""},
		{"whitespace kept", "  hi  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newFocusedComposer()
			c.SetValue(tt.value)

			_, cmd := c.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
			if cmd == nil {
				t.Fatal("enter should return a command")
			}
			msg, ok := cmd().(SubmitMsg)
			if !ok {
				t.Fatalf("enter produced %T, want SubmitMsg", cmd())
			}
			if msg.Text != tt.value {
				t.Errorf("SubmitMsg.Text = %q, want %q", msg.Text, tt.value)
			}
			if c.Value() != tt.value {
				t.Errorf("buffer should be left alone, got %q", c.Value())
			}
		})
	}
}

func TestComposer_ShiftEnterInsertsNewline(t *testing.T) {
	for _, mod := range []tea.KeyMod{tea.ModShift, tea.ModAlt} {
		c := newFocusedComposer()
		c.SetValue("line one")

		c, _ = c.Update(tea.KeyPressMsg{Code: tea.KeyEnter, Mod: mod})
		if !strings.Contains(c.Value(), "\n") {
			t.Errorf("mod %v+enter should insert a newline, got %q", mod, c.Value())
		}
	}
}

func TestComposer_Paste(t *testing.T) {
	c := newFocusedComposer()
	c.SetValue("say ")

	c, _ = c.Update(PasteMsg{Text: "cheese"})
	if c.Value() != "say cheese" {
		t.Errorf("Value() = %q, want %q", c.Value(), "say cheese")
	}
}

func TestComposer_CtrlVReadsClipboard(t *testing.T) {
	c := newFocusedComposer()

	_, cmd := c.Update(tea.KeyPressMsg{Code: 'v', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Error("ctrl+v should return a clipboard read command")
	}
}

func TestComposer_BlurredIgnoresKeys(t *testing.T) {
	c := NewComposer()
	c.SetWidth(80)

	_, cmd := c.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("blurred composer should not submit")
	}
	if c.IsFocused() {
		t.Error("new composer should start blurred")
	}
}

func TestComposer_Reset(t *testing.T) {
	c := newFocusedComposer()
	c.SetValue("draft")
	c.Reset()

	if c.Value() != "" {
		t.Errorf("Reset() left %q", c.Value())
	}
}
