package app

import (
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/parleychat/parley/internal/auth"
	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/keys"
	"github.com/parleychat/parley/internal/logger"
	"github.com/parleychat/parley/internal/notification"
	"github.com/parleychat/parley/internal/realtime"
	"github.com/parleychat/parley/internal/session"
	"github.com/parleychat/parley/internal/ui"
)

// Focus represents which panel receives key presses
type Focus int

const (
	FocusComposer Focus = iota
	FocusList
)

// Connection is the part of the realtime manager the shell depends on.
type Connection interface {
	chat.Conn
	State() realtime.State
	Subscribe() (<-chan realtime.Event, func())
}

// Options configures a Model.
type Options struct {
	Config *config.Config
	Store  *session.Store
	Conn   Connection
	// Samples seeds the list with placeholder messages.
	Samples bool
	// Theme overrides the saved theme for this run without saving it.
	Theme string
	// Notify defaults to notification.MessageReceived.
	Notify func(sender, content string) error
	// Now defaults to time.Now.
	Now func() time.Time
}

// Model is the root Bubble Tea model
type Model struct {
	cfg   *config.Config
	store *session.Store
	conn  Connection

	header   *ui.Header
	footer   *ui.Footer
	list     *ui.MessageList
	composer *ui.Composer
	spinner  spinner.Model

	width, height int
	focus         Focus
	loading       bool
	auth          session.AuthView
	state         realtime.State

	events      <-chan realtime.Event
	unsubscribe func()

	notify func(sender, content string) error
}

// New creates the root model. The realtime subscription starts here so that
// no state change is missed between construction and Init.
func New(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	notify := opts.Notify
	if notify == nil {
		notify = notification.MessageReceived
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	if opts.Theme != "" {
		ui.SetThemeByName(opts.Theme)
	} else {
		ui.SetThemeByName(cfg.GetTheme())
	}

	m := &Model{
		cfg:      cfg,
		store:    opts.Store,
		conn:     opts.Conn,
		header:   ui.NewHeader(),
		footer:   ui.NewFooter(),
		list:     ui.NewMessageList(),
		composer: ui.NewComposer(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(ui.StatusLoadingStyle),
		),
		focus:       FocusComposer,
		loading:     true,
		notify:      notify,
		unsubscribe: func() {},
	}

	m.list.SetSelfID(cfg.Identity().SenderID)
	if opts.Samples {
		m.list.SetMessages(chat.SampleMessages(now()))
	}

	if m.store != nil {
		m.loading = m.store.Loading()
		m.auth = m.store.Auth()
	} else {
		m.loading = false
	}
	m.applyAuth()

	if m.conn != nil {
		m.state = m.conn.State()
		m.events, m.unsubscribe = m.conn.Subscribe()
	}
	m.header.SetConnectionState(m.state)

	return m
}

// Init starts the listeners, the loading spinner and the composer cursor.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.listenForSessionChange(),
		m.listenForRealtime(),
		m.composer.Focus(),
	)
}

// Close releases the realtime subscription.
func (m *Model) Close() {
	m.unsubscribe()
}

// Loading reports whether the session is still being resolved.
func (m *Model) Loading() bool {
	return m.loading
}

// Focus returns the focused panel.
func (m *Model) Focus() Focus {
	return m.focus
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SessionChangedMsg:
		return m, m.handleSessionChanged(msg)

	case RealtimeEventMsg:
		return m, m.handleRealtimeEvent(msg)

	case ui.SubmitMsg:
		return m, m.submit(msg.Text)

	case ui.MessageActionMsg:
		logger.WithComponent("app").Info("message action", "id", msg.Message.ID, "sender", msg.Message.SenderName)
		return m, m.ShowFlashInfo("No actions available for this message yet")

	case ui.CopiedMsg:
		return m, m.ShowFlashSuccess("Copied to clipboard")

	case ui.ClipboardErrorMsg:
		return m, m.ShowFlashError("Clipboard unavailable: " + msg.Error.Error())

	case ui.FlashTickMsg:
		if m.footer.ClearIfExpired() || !m.footer.HasFlash() {
			return m, nil
		}
		return m, ui.FlashTick()

	case ui.SelectionFlashTickMsg:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case ui.PasteMsg, tea.PasteMsg:
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		if m.loading {
			if msg.String() == keys.CtrlC {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.String() {
		case keys.CtrlC:
			return m, tea.Quit
		case keys.Tab, keys.ShiftTab:
			return m, m.toggleFocus()
		case keys.CtrlT:
			return m, m.cycleTheme()
		case keys.CtrlN:
			return m, m.toggleNotifications()
		case keys.PgUp, keys.PgDown:
			return m, m.list.Scroll(msg)
		}

		if m.focus == FocusList {
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			var cmd tea.Cmd
			m.composer, cmd = m.composer.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.MouseClickMsg, tea.MouseMotionMsg, tea.MouseReleaseMsg, tea.MouseWheelMsg:
		if m.loading {
			return m, nil
		}
		return m, m.routeMouse(msg)
	}

	return m, tea.Batch(cmds...)
}

// routeMouse translates screen coordinates into list coordinates and
// forwards events that land inside the list panel.
func (m *Model) routeMouse(msg tea.Msg) tea.Cmd {
	layout := ui.GetViewContext().Layout
	top := layout.ListTop()
	inList := layout.InList

	var forward tea.Msg
	switch msg := msg.(type) {
	case tea.MouseClickMsg:
		if !inList(msg.Y) {
			return nil
		}
		msg.Y -= top
		forward = msg
	case tea.MouseMotionMsg:
		msg.Y -= top
		forward = msg
	case tea.MouseReleaseMsg:
		msg.Y -= top
		forward = msg
	case tea.MouseWheelMsg:
		if !inList(msg.Y) {
			return nil
		}
		msg.Y -= top
		forward = msg
	default:
		return nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(forward)
	return cmd
}

func (m *Model) handleSessionChanged(msg SessionChangedMsg) tea.Cmd {
	log := logger.WithComponent("app")
	cmds := []tea.Cmd{m.listenForSessionChange()}

	loading, current, fetchErr := msg.Loading, msg.Session, msg.Err
	if m.store != nil {
		// A change may have been dropped on a full channel; the store holds
		// the latest state.
		loading, current, fetchErr = m.store.Loading(), m.store.Session(), m.store.Err()
	}

	wasLoading := m.loading
	m.loading = loading
	m.auth = session.Project(current)
	m.applyAuth()

	if fetchErr != nil && wasLoading && !m.loading {
		log.Warn("session fetch failed", "error", fetchErr)
		cmds = append(cmds, m.ShowFlashError("Could not load session: "+fetchErr.Error()))
	}

	switch msg.Event {
	case auth.EventSignedIn:
		cmds = append(cmds, m.ShowFlashSuccess("Signed in as "+m.auth.User.DisplayName()))
	case auth.EventSignedOut:
		cmds = append(cmds, m.ShowFlashInfo("Signed out"))
	}

	if wasLoading && !m.loading {
		log.Info("session resolved", "logged_in", m.auth.IsLoggedIn)
		m.updateSizes()
	}
	return tea.Batch(cmds...)
}

func (m *Model) applyAuth() {
	email := ""
	if m.auth.User != nil && m.auth.User.Email != nil {
		email = *m.auth.User.Email
	}
	m.header.SetEmail(email)
}

func (m *Model) handleRealtimeEvent(msg RealtimeEventMsg) tea.Cmd {
	log := logger.WithComponent("app")
	cmds := []tea.Cmd{m.listenForRealtime()}

	ev := msg.Event
	switch ev.Kind {
	case realtime.EventState:
		m.state = ev.State
		m.header.SetConnectionState(ev.State)

	case realtime.EventFrame:
		log.Debug("frame received", "conn_id", ev.ConnID, "bytes", len(ev.Frame), "frame", string(ev.Frame))
		message, ok, err := chat.DecodeFrame(ev.Frame, ev.At)
		if err != nil {
			log.Warn("dropping malformed frame", "conn_id", ev.ConnID, "error", err)
			break
		}
		if !ok {
			break
		}
		if m.list.Append(message) > 0 {
			cmds = append(cmds, m.notifyReceived(message))
		}

	case realtime.EventGaveUp:
		log.Error("realtime gave up reconnecting")
		cmds = append(cmds, m.ShowFlashError("Connection lost. Restart parley to reconnect"))
	}

	return tea.Batch(cmds...)
}

// notifyReceived sends a desktop notification for messages from other users.
func (m *Model) notifyReceived(message chat.Message) tea.Cmd {
	if !m.cfg.GetNotificationsEnabled() || message.SenderID == m.cfg.Identity().SenderID {
		return nil
	}
	notify := m.notify
	return func() tea.Msg {
		if err := notify(message.SenderName, message.Content); err != nil {
			logger.WithComponent("app").Warn("notification failed", "error", err)
		}
		return nil
	}
}

func (m *Model) submit(text string) tea.Cmd {
	if text == "" {
		return nil
	}
	if m.conn == nil {
		return m.ShowFlashWarning("Not connected")
	}
	if !chat.Submit(text, m.conn, m.cfg.Identity()) {
		logger.WithComponent("app").Debug("message not sent", "state", m.conn.State().String())
		return m.ShowFlashWarning("Not sent: connection is " + m.conn.State().String())
	}
	if m.cfg.GetClearOnSend() {
		m.composer.Reset()
	}
	return nil
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == FocusComposer {
		m.focus = FocusList
		m.composer.Blur()
		m.list.SetFocused(true)
		return nil
	}
	m.focus = FocusComposer
	m.list.SetFocused(false)
	return m.composer.Focus()
}

func (m *Model) cycleTheme() tea.Cmd {
	name := ui.NextTheme()
	m.cfg.SetTheme(string(name))
	m.spinner.Style = ui.StatusLoadingStyle
	if cmd := m.saveConfigOrFlash(); cmd != nil {
		return cmd
	}
	return m.ShowFlashInfo("Theme: " + ui.CurrentTheme().Name)
}

func (m *Model) toggleNotifications() tea.Cmd {
	enabled := !m.cfg.GetNotificationsEnabled()
	m.cfg.SetNotificationsEnabled(enabled)
	if cmd := m.saveConfigOrFlash(); cmd != nil {
		return cmd
	}
	if enabled {
		return m.ShowFlashInfo("Notifications on")
	}
	return m.ShowFlashInfo("Notifications off")
}

func (m *Model) updateSizes() {
	if m.width == 0 || m.height == 0 {
		return
	}
	ctx := ui.GetViewContext()
	ctx.UpdateTerminalSize(m.width, m.height)

	m.header.SetWidth(ctx.TerminalWidth)
	m.footer.SetWidth(ctx.TerminalWidth)
	m.list.SetSize(ctx.TerminalWidth, ctx.ListHeight)
	m.composer.SetWidth(ctx.TerminalWidth)
}

// View renders the app
func (m *Model) View() tea.View {
	var v tea.View
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.SetContent(m.render())
	return v
}

func (m *Model) render() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.loading {
		return lipgloss.Place(
			m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" "+ui.StatusLoadingStyle.Render("Loading session…"),
		)
	}

	m.footer.SetContext(m.focus == FocusList, m.list.HasTextSelection())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.header.View(),
		m.list.View(),
		m.composer.View(),
		m.footer.View(),
	)
}
