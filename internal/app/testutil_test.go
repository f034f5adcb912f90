package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/parleychat/parley/internal/auth"
	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/keys"
	"github.com/parleychat/parley/internal/logger"
	"github.com/parleychat/parley/internal/realtime"
	"github.com/parleychat/parley/internal/session"
	"github.com/parleychat/parley/internal/ui"
)

func TestMain(m *testing.M) {
	logger.Reset()
	_ = logger.Init(os.DevNull)

	code := m.Run()

	logger.Reset()
	os.Exit(code)
}

// fakeConn records outbound frames and hands out one event channel.
type fakeConn struct {
	mu           sync.Mutex
	state        realtime.State
	sent         []chat.OutboundFrame
	events       chan realtime.Event
	unsubscribed bool
}

func newFakeConn(state realtime.State) *fakeConn {
	return &fakeConn{state: state, events: make(chan realtime.Event, 8)}
}

func (c *fakeConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == realtime.Open
}

func (c *fakeConn) SendJSON(v any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != realtime.Open {
		return false
	}
	data, err := json.Marshal(v)
	if err != nil {
		return false
	}
	var f chat.OutboundFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return false
	}
	c.sent = append(c.sent, f)
	return true
}

func (c *fakeConn) State() realtime.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *fakeConn) Subscribe() (<-chan realtime.Event, func()) {
	return c.events, func() {
		c.mu.Lock()
		c.unsubscribed = true
		c.mu.Unlock()
	}
}

func (c *fakeConn) frames() []chat.OutboundFrame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]chat.OutboundFrame(nil), c.sent...)
}

// blockingProvider never resolves, keeping a store in the loading state.
type blockingProvider struct{}

func (blockingProvider) GetSession(ctx context.Context) (*auth.Session, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingProvider) OnAuthStateChange(auth.Listener) *auth.Subscription {
	return auth.NewSubscription(func() {})
}

// testConfig creates preferences backed by a temp file.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	return cfg
}

type notifyCall struct {
	sender, content string
}

// recorder collects desktop notifications.
type recorder struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (r *recorder) notify(sender, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, notifyCall{sender, content})
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// testModel creates a Model with no session store, so it starts resolved.
func testModel(t *testing.T, conn *fakeConn, rec *recorder) *Model {
	t.Helper()
	t.Cleanup(func() { ui.SetTheme(ui.DefaultTheme) })

	opts := Options{Config: testConfig(t)}
	if conn != nil {
		opts.Conn = conn
	}
	if rec != nil {
		opts.Notify = rec.notify
	}
	m := New(opts)
	m.Init()
	return m
}

// testModelWithSize creates a test Model and sets its size.
func testModelWithSize(t *testing.T, conn *fakeConn, rec *recorder, width, height int) *Model {
	m := testModel(t, conn, rec)
	m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return m
}

// keyPress creates a tea.KeyPressMsg for the given key string.
func keyPress(key string) tea.KeyPressMsg {
	switch key {
	case keys.Enter:
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case keys.Tab:
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case keys.ShiftTab:
		return tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}
	case keys.Escape:
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case keys.PgUp:
		return tea.KeyPressMsg{Code: tea.KeyPgUp}
	case keys.PgDown:
		return tea.KeyPressMsg{Code: tea.KeyPgDown}
	case keys.CtrlC:
		return tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
	case keys.CtrlT:
		return tea.KeyPressMsg{Code: 't', Mod: tea.ModCtrl}
	case keys.CtrlN:
		return tea.KeyPressMsg{Code: 'n', Mod: tea.ModCtrl}
	default:
		if len(key) == 1 {
			return tea.KeyPressMsg{Code: rune(key[0]), Text: key}
		}
		return tea.KeyPressMsg{Text: key}
	}
}

// typeText sends each character as a key press.
func typeText(m *Model, text string) {
	for _, ch := range text {
		m.Update(keyPress(string(ch)))
	}
}

// drain runs cmd and every command it batches, collecting the messages that
// arrive within a short window. Commands that block, like listeners and
// tick timers, are abandoned.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	out := make(chan tea.Msg, 1)
	go func() { out <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-out:
	case <-time.After(100 * time.Millisecond):
		return nil
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, drain(c)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// viewText renders the model and strips ANSI codes.
func viewText(m *Model) string {
	return ansi.Strip(m.render())
}

// testSession returns a signed-in session for email.
func testSession(email string) *auth.Session {
	return &auth.Session{
		AccessToken: "token",
		User: auth.User{
			ID:    "user-1",
			Email: email,
			UserMetadata: map[string]any{
				"first_name": "Ada",
				"last_name":  "Lovelace",
			},
		},
	}
}

// frame encodes an inbound message frame.
func frame(t *testing.T, id, senderID int64, sender, content string) []byte {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"id":           id,
		"content":      content,
		"sender_id":    senderID,
		"sender_name":  sender,
		"receiver_id":  1,
		"message_type": "private",
	})
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	return data
}

func newLoadingStore() *session.Store {
	return session.New(blockingProvider{})
}

// scriptedProvider resolves the initial fetch with whatever the test sends.
type scriptedProvider struct {
	results chan fetchResult
}

type fetchResult struct {
	session *auth.Session
	err     error
}

func (p *scriptedProvider) GetSession(ctx context.Context) (*auth.Session, error) {
	select {
	case r := <-p.results:
		return r.session, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *scriptedProvider) OnAuthStateChange(auth.Listener) *auth.Subscription {
	return auth.NewSubscription(func() {})
}

// startedStore returns a started store and a func that resolves its initial
// fetch and waits for the store to record the result.
func startedStore(t *testing.T) (*session.Store, func(*auth.Session, error)) {
	t.Helper()
	p := &scriptedProvider{results: make(chan fetchResult, 1)}
	store := session.New(p)
	store.Start(context.Background())
	t.Cleanup(store.Close)

	resolve := func(s *auth.Session, err error) {
		t.Helper()
		p.results <- fetchResult{session: s, err: err}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := store.WaitReady(ctx); err != nil {
			t.Fatalf("store never resolved: %v", err)
		}
	}
	return store, resolve
}
