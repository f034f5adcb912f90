package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	perrors "github.com/parleychat/parley/internal/errors"
	"github.com/parleychat/parley/internal/logger"
)

const (
	defaultWriteTimeout     = 5 * time.Second
	defaultSubscriberBuffer = 64

	// failureSummaryEvery is how many consecutive dial failures pass between
	// "still reconnecting" log lines. Only the first failure of a streak is
	// logged on its own.
	failureSummaryEvery = 1000
)

// EventKind identifies what an Event carries.
type EventKind int

const (
	EventState EventKind = iota
	EventFrame
	EventGaveUp
)

// Event is delivered to subscribers on every state change, every inbound
// frame, and once if the reconnect policy gives up.
type Event struct {
	Kind   EventKind
	State  State
	Frame  []byte
	ConnID string
	At     time.Time
}

// Options configures a Manager.
type Options struct {
	URL string
	// Dialer defaults to WebSocketDialer.
	Dialer Dialer
	// Policy defaults to AlwaysReconnect.
	Policy ReconnectPolicy
	// WriteTimeout bounds each SendJSON write. Defaults to 5s.
	WriteTimeout time.Duration
	// SubscriberBuffer is the channel size for each subscriber. Defaults to 64.
	SubscriberBuffer int
}

// Manager owns the one connection to the chat backend.
type Manager struct {
	url          string
	dialer       Dialer
	policy       ReconnectPolicy
	writeTimeout time.Duration
	subBuffer    int
	log          *slog.Logger

	mu       sync.RWMutex
	state    State
	conn     Conn
	connID   string
	last     []byte
	lastAt   time.Time
	lastErr  error
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	done     chan struct{}
	gaveUp   bool
	attempts int

	writeMu sync.Mutex

	subMu   sync.Mutex
	subs    map[int]chan Event
	dropped map[int]int
	nextSub int
}

// NewManager creates a manager in the Uninstantiated state. Nothing is
// dialed until Start.
func NewManager(opts Options) *Manager {
	m := &Manager{
		url:          opts.URL,
		dialer:       opts.Dialer,
		policy:       opts.Policy,
		writeTimeout: opts.WriteTimeout,
		subBuffer:    opts.SubscriberBuffer,
		log:          logger.WithComponent("realtime"),
		ctx:          context.Background(),
		done:         make(chan struct{}),
		subs:         make(map[int]chan Event),
		dropped:      make(map[int]int),
	}
	if m.dialer == nil {
		m.dialer = WebSocketDialer{}
	}
	if m.policy == nil {
		m.policy = AlwaysReconnect{}
	}
	if m.writeTimeout <= 0 {
		m.writeTimeout = defaultWriteTimeout
	}
	if m.subBuffer <= 0 {
		m.subBuffer = defaultSubscriberBuffer
	}
	return m
}

// URL returns the endpoint the manager dials.
func (m *Manager) URL() string {
	return m.url
}

// Start begins dialing in the background. Calling Start again is a no-op.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.ctx, m.cancel = context.WithCancel(ctx)
	runCtx := m.ctx
	m.mu.Unlock()

	go m.run(runCtx)
}

// Close stops reconnecting, closes the socket, waits for the connection
// goroutine to exit and closes every subscriber channel.
func (m *Manager) Close() {
	m.mu.Lock()
	started, cancel := m.started, m.cancel
	m.mu.Unlock()

	if started {
		cancel()
		<-m.done
	}

	m.subMu.Lock()
	for id, ch := range m.subs {
		close(ch)
		delete(m.subs, id)
		delete(m.dropped, id)
	}
	m.subMu.Unlock()
}

func (m *Manager) run(ctx context.Context) {
	defer close(m.done)

	for {
		if ctx.Err() != nil {
			m.setState(Closed, "")
			return
		}

		m.mu.RLock()
		streak := m.attempts
		m.mu.RUnlock()

		connID := uuid.NewString()
		log := m.log.With("conn_id", connID, "url", m.url)
		m.setState(Connecting, connID)
		if streak == 0 {
			log.Debug("dialing")
		}

		conn, err := m.dialer.Dial(ctx, m.url)
		if err != nil {
			m.recordErr(perrors.DialFailed(m.url, err))
			if ctx.Err() == nil {
				logDialFailure(log, streak, err)
			}
			m.setState(Closed, connID)
			if !m.waitRetry(ctx) {
				return
			}
			continue
		}

		m.mu.Lock()
		m.conn = conn
		m.connID = connID
		m.attempts = 0
		m.lastErr = nil
		m.mu.Unlock()
		m.setState(Open, connID)
		log.Info("connected", "failed_attempts", streak)

		readErr := m.readLoop(ctx, conn, log)

		m.mu.Lock()
		m.conn = nil
		m.mu.Unlock()
		m.setState(Closing, connID)

		status := websocket.StatusNormalClosure
		if ctx.Err() != nil {
			status = websocket.StatusGoingAway
		}
		_ = conn.Close(status, "")
		m.setState(Closed, connID)

		if ctx.Err() != nil {
			log.Info("connection closed on shutdown")
			return
		}
		m.recordErr(readErr)
		log.Warn("connection lost", "error", readErr)

		if !m.waitRetry(ctx) {
			return
		}
	}
}

// waitRetry consults the policy. It returns false when the manager should
// stop: the policy gave up or ctx was cancelled.
func (m *Manager) waitRetry(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}

	m.mu.Lock()
	m.attempts++
	attempt := m.attempts
	m.mu.Unlock()

	delay, ok := m.policy.Next(attempt)
	if !ok {
		m.mu.Lock()
		m.gaveUp = true
		m.mu.Unlock()
		m.log.Error("giving up reconnecting", "attempts", attempt-1, "url", m.url)
		m.publish(Event{Kind: EventGaveUp, State: Closed, At: time.Now()})
		return false
	}
	if delay <= 0 {
		return ctx.Err() == nil
	}

	m.log.Debug("waiting to reconnect", "attempt", attempt, "delay", delay)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// logDialFailure keeps an unreachable backend from flooding the log: with
// no retry delay a refused dial repeats thousands of times a second. streak
// is the number of retries since the last successful connection.
func logDialFailure(log *slog.Logger, streak int, err error) {
	switch {
	case streak == 0:
		log.Warn("dial failed, reconnecting", "error", err)
	case (streak+1)%failureSummaryEvery == 0:
		log.Warn("still reconnecting", "failed_attempts", streak+1, "error", err)
	}
}

func (m *Manager) readLoop(ctx context.Context, conn Conn, log *slog.Logger) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				log.Info("server closed connection")
			}
			return err
		}

		now := time.Now()
		m.mu.Lock()
		m.last = data
		m.lastAt = now
		connID := m.connID
		m.mu.Unlock()

		log.Debug("frame received", "bytes", len(data))
		m.publish(Event{Kind: EventFrame, State: Open, Frame: data, ConnID: connID, At: now})
	}
}

func (m *Manager) setState(s State, connID string) {
	m.mu.Lock()
	if m.state == s {
		m.mu.Unlock()
		return
	}
	m.state = s
	m.mu.Unlock()

	m.publish(Event{Kind: EventState, State: s, ConnID: connID, At: time.Now()})
}

func (m *Manager) recordErr(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsOpen reports whether the connection is Open.
func (m *Manager) IsOpen() bool {
	return m.State() == Open
}

// GaveUp reports whether the reconnect policy stopped the manager.
func (m *Manager) GaveUp() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gaveUp
}

// LastError returns the most recent dial or read error, cleared on open.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// LastMessage returns the most recently received frame.
func (m *Manager) LastMessage() (frame []byte, at time.Time, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.last == nil {
		return nil, time.Time{}, false
	}
	return m.last, m.lastAt, true
}

// SendJSON marshals v and writes it as a text frame. When the connection is
// not Open nothing is written and SendJSON returns false.
func (m *Manager) SendJSON(v any) bool {
	m.mu.RLock()
	state, conn, connID, ctx := m.state, m.conn, m.connID, m.ctx
	m.mu.RUnlock()

	if state != Open || conn == nil {
		m.log.Debug("dropping send, connection not open", "state", state.String())
		return false
	}

	data, err := json.Marshal(v)
	if err != nil {
		m.log.Error("failed to encode outbound frame", "error", err)
		return false
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, m.writeTimeout)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		m.log.Warn("write failed", "conn_id", connID, "error", err)
		return false
	}
	m.log.Debug("frame sent", "conn_id", connID, "bytes", len(data))
	return true
}

// Subscribe returns a channel of events and a function that releases it.
// Events are dropped for a subscriber whose buffer is full.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	m.nextSub++
	id := m.nextSub
	ch := make(chan Event, m.subBuffer)
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.subMu.Lock()
			defer m.subMu.Unlock()
			if c, ok := m.subs[id]; ok {
				close(c)
				delete(m.subs, id)
				delete(m.dropped, id)
			}
		})
	}
}

func (m *Manager) publish(e Event) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for id, ch := range m.subs {
		select {
		case ch <- e:
			if n := m.dropped[id]; n > 0 {
				m.log.Debug("subscriber caught up", "subscriber", id, "dropped", n)
				delete(m.dropped, id)
			}
		default:
			if m.dropped[id] == 0 {
				m.log.Warn("subscriber buffer full, dropping events", "subscriber", id, "kind", int(e.Kind))
			}
			m.dropped[id]++
		}
	}
}

// WaitOpen blocks until the connection is Open, the policy gives up, or ctx
// is done.
func (m *Manager) WaitOpen(ctx context.Context) error {
	events, unsubscribe := m.Subscribe()
	defer unsubscribe()

	if m.IsOpen() {
		return nil
	}
	if m.GaveUp() {
		return perrors.DialFailed(m.url, errors.New("gave up reconnecting"))
	}

	for {
		select {
		case <-ctx.Done():
			if err := m.LastError(); err != nil {
				return perrors.E(perrors.Op("realtime.WaitOpen"), perrors.KindTimeout, err)
			}
			return perrors.ConnectTimeout(m.url)
		case e, ok := <-events:
			if !ok {
				return perrors.NotConnected(m.State().String())
			}
			switch {
			case e.Kind == EventState && e.State == Open:
				return nil
			case e.Kind == EventGaveUp:
				return perrors.DialFailed(m.url, errors.New("gave up reconnecting"))
			}
		}
	}
}
