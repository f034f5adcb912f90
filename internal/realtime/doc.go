// Package realtime owns parley's single WebSocket connection to the chat
// backend.
//
// A Manager dials the backend, reads frames, and reconnects whenever the
// connection drops. Consumers never touch the socket directly: they send
// with SendJSON, which is a silent no-op unless the connection is Open, and
// observe state changes and inbound frames through Subscribe.
//
// State machine:
//
//	Uninstantiated -> Connecting -> Open -> Closing -> Closed -> Connecting ...
//	                  Connecting -> Closed (dial failed)
//
// Under the default AlwaysReconnect policy there is no terminal state. With
// ExponentialBackoff the manager stops after the policy's attempt limit,
// stays Closed and emits a GaveUp event.
package realtime
