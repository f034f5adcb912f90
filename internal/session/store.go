package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/parleychat/parley/internal/auth"
	"github.com/parleychat/parley/internal/logger"
)

const changeBuffer = 16

// Provider is the part of the auth client the store depends on.
type Provider interface {
	GetSession(ctx context.Context) (*auth.Session, error)
	OnAuthStateChange(fn auth.Listener) *auth.Subscription
}

// Change describes one update to the store. Event is empty for the result
// of the initial fetch.
type Change struct {
	Event   auth.Event
	Session *auth.Session
	Loading bool
	Err     error
}

// Store holds the current session.
type Store struct {
	provider Provider
	log      *slog.Logger

	mu       sync.RWMutex
	session  *auth.Session
	loading  bool
	notified bool
	err      error

	changes   chan Change
	ready     chan struct{}
	readyOnce sync.Once

	startOnce sync.Once
	closeOnce sync.Once
	sub       *auth.Subscription
	cancel    context.CancelFunc
}

// New creates a store in the loading state. Call Start to resolve it.
func New(provider Provider) *Store {
	return &Store{
		provider: provider,
		log:      logger.WithComponent("session"),
		loading:  true,
		changes:  make(chan Change, changeBuffer),
		ready:    make(chan struct{}),
		cancel:   func() {},
	}
}

// Start subscribes to auth changes and kicks off the initial fetch. Calling
// Start more than once has no effect.
func (s *Store) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)

		s.mu.Lock()
		s.cancel = cancel
		s.mu.Unlock()

		sub := s.provider.OnAuthStateChange(s.handleAuthChange)
		s.mu.Lock()
		s.sub = sub
		s.mu.Unlock()

		go s.fetch(ctx)
	})
}

func (s *Store) fetch(ctx context.Context) {
	session, err := s.provider.GetSession(ctx)

	s.mu.Lock()
	if err != nil {
		s.log.Error("failed to fetch session", "error", err)
		s.err = err
	}
	if !s.notified {
		if err != nil {
			s.session = nil
		} else {
			s.session = session
		}
	} else {
		s.log.Debug("auth notification arrived before fetch resolved, keeping it")
	}
	s.loading = false
	change := Change{Session: s.session, Err: s.err}
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })
	s.publish(change)
}

func (s *Store) handleAuthChange(event auth.Event, session *auth.Session) {
	s.mu.Lock()
	s.session = session
	s.notified = true
	if session != nil {
		s.err = nil
	}
	change := Change{Event: event, Session: session, Loading: s.loading, Err: s.err}
	s.mu.Unlock()

	s.log.Debug("session changed", "event", string(event), "signed_in", session != nil)
	s.publish(change)
}

// publish never blocks: consumers re-read the store on every change, so a
// dropped signal only loses a redundant wake-up.
func (s *Store) publish(c Change) {
	select {
	case s.changes <- c:
	default:
		s.log.Warn("change channel full, dropping notification", "event", string(c.Event))
	}
}

// Changes returns the channel that receives every store update.
func (s *Store) Changes() <-chan Change {
	return s.changes
}

// Loading reports whether the initial fetch is still pending.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Session returns the current session, or nil if nobody is signed in.
func (s *Store) Session() *auth.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Err returns the error from the initial fetch, if any.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Auth returns the view of the signed-in user.
func (s *Store) Auth() AuthView {
	return Project(s.Session())
}

// WaitReady blocks until the initial fetch resolves or ctx is done.
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the auth subscription and cancels a pending fetch. It is
// safe to call more than once.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		sub, cancel := s.sub, s.cancel
		s.mu.Unlock()

		sub.Unsubscribe()
		cancel()
	})
}
