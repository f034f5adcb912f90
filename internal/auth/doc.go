// Package auth is a small client for the Supabase auth backend (GoTrue).
//
// It signs users in with email and password, persists the resulting session
// to disk, refreshes access tokens before they expire, and notifies
// subscribers whenever the session changes. A session file written by one
// parley process (parley login) is picked up by any other running process
// through WatchStorage.
//
// A Client with an empty base URL is valid: it never has a session and every
// network operation fails with a configuration error.
package auth
