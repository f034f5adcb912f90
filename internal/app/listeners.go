package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/parleychat/parley/internal/realtime"
	"github.com/parleychat/parley/internal/session"
)

// SessionChangedMsg carries one session store update into the model.
type SessionChangedMsg session.Change

// RealtimeEventMsg carries one realtime manager event into the model.
type RealtimeEventMsg struct {
	Event realtime.Event
}

// listenForSessionChange creates a command that waits for the next store
// change. The handler re-arms it after every message.
func (m *Model) listenForSessionChange() tea.Cmd {
	if m.store == nil {
		return nil
	}
	ch := m.store.Changes()
	return func() tea.Msg {
		change, ok := <-ch
		if !ok {
			return nil
		}
		return SessionChangedMsg(change)
	}
}

// listenForRealtime creates a command that waits for the next realtime
// event. A closed channel means the subscription ended.
func (m *Model) listenForRealtime() tea.Cmd {
	ch := m.events
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return RealtimeEventMsg{Event: ev}
	}
}
