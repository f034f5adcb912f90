// Package errors provides structured error types for parley.
// These errors carry the operation that failed and a coarse category so
// callers can branch on what went wrong without string matching.
package errors

import (
	"errors"
	"fmt"
)

// Op describes an operation, usually as "package.function".
type Op string

// Kind categorizes the type of error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalid
	KindAuth
	KindNetwork
	KindConfig
	KindProtocol
	KindIO
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalid:
		return "invalid"
	case KindAuth:
		return "auth error"
	case KindNetwork:
		return "network error"
	case KindConfig:
		return "configuration error"
	case KindProtocol:
		return "protocol error"
	case KindIO:
		return "I/O error"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown error"
	}
}

// Error is the structured error type for parley.
type Error struct {
	Op      Op     // Operation that failed
	Kind    Kind   // Category of error
	Err     error  // Underlying error
	Context string // Additional context
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Context, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error. Arguments can be:
// - Op: the operation name
// - Kind: the error kind
// - string: context message
// - error: the underlying error
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case string:
			e.Context = a
		case error:
			e.Err = a
		}
	}
	if e.Err == nil {
		e.Err = errors.New(e.Context)
		e.Context = ""
	}
	return e
}

// Is reports whether err is of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// GetKind returns the Kind of an error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Config errors
func ConfigLoadFailed(path string, err error) error {
	return E(Op("config.Load"), KindConfig, fmt.Sprintf("failed to load config from %s", path), err)
}

func ConfigSaveFailed(path string, err error) error {
	return E(Op("config.Save"), KindConfig, fmt.Sprintf("failed to save config to %s", path), err)
}

func ConfigInvalid(reason string) error {
	return E(Op("config.Validate"), KindInvalid, reason)
}

// Auth errors

// AuthNotConfigured is returned when an auth operation needs SUPABASE_URL but it is empty.
func AuthNotConfigured(op string) error {
	return E(Op(op), KindConfig, "auth backend not configured (set SUPABASE_URL and SUPABASE_ANON_KEY)")
}

// AuthRequestFailed wraps a non-2xx response from the auth backend.
func AuthRequestFailed(op string, status int, msg string) error {
	return E(Op(op), KindAuth, fmt.Sprintf("auth backend returned %d", status), errors.New(msg))
}

// AuthUnreachable wraps a transport failure talking to the auth backend.
func AuthUnreachable(op string, err error) error {
	return E(Op(op), KindNetwork, "auth backend unreachable", err)
}

// SessionStorageFailed wraps a failure reading or writing the persisted session.
func SessionStorageFailed(path string, err error) error {
	return E(Op("auth.Storage"), KindIO, fmt.Sprintf("session storage %s", path), err)
}

// Realtime errors

// DialFailed wraps a failed WebSocket dial.
func DialFailed(url string, err error) error {
	return E(Op("realtime.Dial"), KindNetwork, fmt.Sprintf("failed to connect to %s", url), err)
}

// FrameDecodeFailed wraps a malformed inbound frame.
func FrameDecodeFailed(err error) error {
	return E(Op("chat.DecodeFrame"), KindProtocol, "malformed inbound frame", err)
}

// NotConnected is returned by operations that require an open connection.
func NotConnected(state string) error {
	return E(Op("realtime.Send"), KindNetwork, fmt.Sprintf("connection is %s", state))
}

// ConnectTimeout is returned when waiting for the connection to open times out.
func ConnectTimeout(url string) error {
	return E(Op("realtime.WaitOpen"), KindTimeout, fmt.Sprintf("timed out connecting to %s", url))
}
