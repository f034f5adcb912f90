package auth

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// AutoRefresh refreshes the access token shortly before it expires until ctx
// is cancelled. Failures are logged and retried on the next tick.
func (c *Client) AutoRefresh(ctx context.Context) {
	if !c.Configured() {
		return
	}

	ticker := time.NewTicker(c.refreshTick)
	defer ticker.Stop()

	for {
		c.refreshIfDue(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *Client) refreshIfDue(ctx context.Context) {
	session := c.current()
	if session == nil || session.RefreshToken == "" {
		return
	}
	if !session.ExpiresWithin(c.now(), c.refreshTick*refreshTickThreshold) {
		return
	}
	if _, err := c.RefreshSession(ctx); err != nil && ctx.Err() == nil {
		c.log.Warn("auto refresh failed", "error", err)
	}
}

// WatchStorage watches the session file for changes made by other processes
// and emits SIGNED_IN, SIGNED_OUT or TOKEN_REFRESHED when the file no longer
// matches the in-memory session. The watch stops when ctx is cancelled.
func (c *Client) WatchStorage(ctx context.Context) error {
	path := c.storage.Path()
	if path == "" {
		return nil
	}
	if _, err := c.ensureLoaded(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory: the file is replaced by rename on every save and
	// may not exist yet.
	dir := filepath.Dir(path)
	if err := ensureDir(dir); err != nil {
		watcher.Close()
		return err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				c.syncFromStorage()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.log.Warn("session watch error", "error", err)
			}
		}
	}()
	return nil
}

// syncFromStorage reloads the session file and emits an event if it differs
// from the in-memory session. Writes made by this client already match and
// are ignored.
func (c *Client) syncFromStorage() {
	stored, err := c.storage.Load()
	if err != nil {
		c.log.Debug("ignoring unreadable session file", "error", err)
		return
	}

	current := c.current()
	if sameSession(current, stored) {
		return
	}
	c.setSession(stored)

	switch {
	case stored == nil:
		c.log.Info("session removed by another process")
		c.emit(EventSignedOut, nil)
	case current == nil || current.User.ID != stored.User.ID:
		c.log.Info("session written by another process", "user_id", stored.User.ID)
		c.emit(EventSignedIn, stored)
	default:
		c.emit(EventTokenRefreshed, stored)
	}
}

func sameSession(a, b *Session) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.AccessToken == b.AccessToken
}
