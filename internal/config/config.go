// Package config holds parley's two configuration layers: endpoint settings
// read from the environment (see env.go) and user preferences persisted as
// JSON in ~/.parley/config.json.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/parleychat/parley/internal/chat"
	perrors "github.com/parleychat/parley/internal/errors"
)

// DefaultSenderID and DefaultReceiverID are the identifiers the composer
// uses until the user configures their own.
const (
	DefaultSenderID   int64 = 1
	DefaultReceiverID int64 = 1
)

// Config holds user preferences
type Config struct {
	Theme                string `json:"theme,omitempty"`                 // UI theme name (e.g., "dusk", "nord")
	NotificationsEnabled bool   `json:"notifications_enabled,omitempty"` // Desktop notifications for inbound messages
	SenderID             int64  `json:"sender_id,omitempty"`             // Numeric id sent as sender_id
	ReceiverID           int64  `json:"receiver_id,omitempty"`           // Numeric id sent as receiver_id
	ClearOnSend          bool   `json:"clear_on_send,omitempty"`         // Clear the composer after a successful send
	LastEmail            string `json:"last_email,omitempty"`            // Prefills the login form

	mu       sync.RWMutex
	filePath string
}

// Dir returns the path to the parley config directory
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".parley"), nil
}

// Path returns the path to the preferences file
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// SessionPath returns the path the auth session is persisted to
func SessionPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

// Load reads preferences from disk, or returns defaults if the file doesn't exist
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads preferences from an explicit path
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{filePath: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, perrors.ConfigLoadFailed(path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, perrors.ConfigLoadFailed(path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the preferences are internally consistent.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.SenderID < 0 {
		return perrors.ConfigInvalid("sender_id must not be negative")
	}
	if c.ReceiverID < 0 {
		return perrors.ConfigInvalid("receiver_id must not be negative")
	}
	return nil
}

// Save writes the preferences to disk
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.filePath == "" {
		path, err := Path()
		if err != nil {
			return err
		}
		c.filePath = path
	}

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0700); err != nil {
		return perrors.ConfigSaveFailed(c.filePath, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return perrors.ConfigSaveFailed(c.filePath, err)
	}

	if err := os.WriteFile(c.filePath, data, 0600); err != nil {
		return perrors.ConfigSaveFailed(c.filePath, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(c.filePath, 0600); err != nil {
		return perrors.ConfigSaveFailed(c.filePath, err)
	}
	return nil
}

// GetTheme returns the current theme name
func (c *Config) GetTheme() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Theme
}

// SetTheme sets the current theme name
func (c *Config) SetTheme(theme string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Theme = theme
}

// GetNotificationsEnabled returns whether desktop notifications are enabled
func (c *Config) GetNotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NotificationsEnabled
}

// SetNotificationsEnabled sets whether desktop notifications are enabled
func (c *Config) SetNotificationsEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.NotificationsEnabled = enabled
}

// GetClearOnSend returns whether the composer is cleared after sending
func (c *Config) GetClearOnSend() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ClearOnSend
}

// GetLastEmail returns the email used for the last successful sign-in
func (c *Config) GetLastEmail() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.LastEmail
}

// SetLastEmail records the email used for a successful sign-in
func (c *Config) SetLastEmail(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LastEmail = email
}

// Identity returns the sender/receiver pair the composer stamps on outbound
// frames, falling back to the defaults for unset ids.
func (c *Config) Identity() chat.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id := chat.Identity{SenderID: DefaultSenderID, ReceiverID: DefaultReceiverID}
	if c.SenderID > 0 {
		id.SenderID = c.SenderID
	}
	if c.ReceiverID > 0 {
		id.ReceiverID = c.ReceiverID
	}
	return id
}

// SetIdentity sets the sender/receiver pair
func (c *Config) SetIdentity(id chat.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SenderID = id.SenderID
	c.ReceiverID = id.ReceiverID
}
