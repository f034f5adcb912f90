// Package notification provides cross-platform desktop notifications.
// It uses the beeep library to send notifications on macOS, Linux, and Windows.
package notification

import (
	"github.com/gen2brain/beeep"
	"github.com/mattn/go-runewidth"

	"github.com/parleychat/parley/internal/logger"
)

// maxBodyWidth keeps notification bodies short enough for every platform's popup.
const maxBodyWidth = 120

// notify is the function used to send notifications. Tests replace it.
var notify = func(title, message string, icon any) error {
	return beeep.Notify(title, message, icon)
}

// Send sends a desktop notification with the given title and message.
func Send(title, message string) error {
	log := logger.WithComponent("notification")
	log.Debug("sending notification", "title", title)
	// Use empty string for icon - beeep handles platform defaults
	err := notify(title, message, "")
	if err != nil {
		log.Warn("failed to send notification", "error", err)
	}
	return err
}

// MessageReceived notifies that sender posted content.
func MessageReceived(sender, content string) error {
	return Send("parley: "+sender, runewidth.Truncate(content, maxBodyWidth, "…"))
}
