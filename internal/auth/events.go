package auth

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Event names the kind of session change.
type Event string

const (
	EventInitialSession Event = "INITIAL_SESSION"
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
)

// Listener receives session changes. session is nil after a sign-out.
// Listeners run on the emitting goroutine and must not block.
type Listener func(event Event, session *Session)

// Subscription is returned by OnAuthStateChange.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// NewSubscription wraps cancel so that it runs at most once.
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

// Unsubscribe stops delivery to the listener. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.once.Do(s.cancel)
}

// OnAuthStateChange registers fn for every subsequent session change.
func (c *Client) OnAuthStateChange(fn Listener) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextListenerID++
	id := c.nextListenerID
	c.listeners[id] = fn
	return NewSubscription(func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	})
}

// emit delivers an event to every listener. emitMu keeps deliveries in the
// order the changes happened even when they originate on different
// goroutines.
func (c *Client) emit(event Event, session *Session) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	ids := lo.Keys(c.listeners)
	c.mu.Unlock()

	slices.Sort(ids)
	c.log.Debug("auth state change", "event", string(event), "signed_in", session != nil, "listeners", len(ids))

	for _, id := range ids {
		c.mu.Lock()
		fn, ok := c.listeners[id]
		c.mu.Unlock()
		if ok {
			fn(event, session)
		}
	}
}
