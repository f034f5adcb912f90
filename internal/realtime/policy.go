package realtime

import (
	"math"
	"math/rand/v2"
	"time"
)

// ReconnectPolicy decides whether and when to redial. attempt counts
// consecutive failures starting at 1 and resets once a connection opens.
type ReconnectPolicy interface {
	Next(attempt int) (delay time.Duration, ok bool)
}

// AlwaysReconnect redials immediately, forever.
type AlwaysReconnect struct{}

// Next always allows an immediate retry.
func (AlwaysReconnect) Next(int) (time.Duration, bool) {
	return 0, true
}

// ExponentialBackoff grows the delay between attempts and gives up after
// MaxAttempts consecutive failures. A zero MaxAttempts never gives up.
type ExponentialBackoff struct {
	Initial     time.Duration
	Max         time.Duration
	Multiplier  float64
	Jitter      float64 // fraction of the delay, 0.2 means +/-20%
	MaxAttempts int

	// Rand returns a value in [0, 1). Defaults to math/rand/v2.
	Rand func() float64
}

// DefaultBackoff returns the backoff used for PARLEY_RECONNECT=backoff.
func DefaultBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		Initial:     500 * time.Millisecond,
		Max:         30 * time.Second,
		Multiplier:  2,
		Jitter:      0.2,
		MaxAttempts: 10,
	}
}

// Next returns the jittered delay for attempt.
func (b *ExponentialBackoff) Next(attempt int) (time.Duration, bool) {
	if attempt < 1 {
		attempt = 1
	}
	if b.MaxAttempts > 0 && attempt > b.MaxAttempts {
		return 0, false
	}

	mult := b.Multiplier
	if mult < 1 {
		mult = 1
	}
	delay := float64(b.Initial) * math.Pow(mult, float64(attempt-1))
	if b.Max > 0 && delay > float64(b.Max) {
		delay = float64(b.Max)
	}

	if b.Jitter > 0 {
		r := rand.Float64
		if b.Rand != nil {
			r = b.Rand
		}
		delay += delay * b.Jitter * (2*r() - 1)
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay), true
}

// PolicyFor maps a PARLEY_RECONNECT value to a policy. Unknown names fall
// back to AlwaysReconnect.
func PolicyFor(name string) ReconnectPolicy {
	if name == "backoff" {
		return DefaultBackoff()
	}
	return AlwaysReconnect{}
}
