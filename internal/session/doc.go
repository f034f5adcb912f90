// Package session resolves and tracks the signed-in user for the lifetime
// of the process.
//
// # Lifecycle
//
// A Store is created once at startup and handed to every consumer that
// needs to know who is signed in. Start subscribes to auth state changes
// and then fetches the current session exactly once in the background:
//
//   - Loading reports true until that fetch resolves (successfully or not).
//   - Every auth notification replaces the held session wholesale.
//   - A notification that arrives before the fetch resolves wins; the late
//     fetch result only clears the loading flag.
//
// Consumers read the current state through Session, Auth, Loading and Err
// and learn about changes by receiving from Changes. Close releases the
// auth subscription.
package session
