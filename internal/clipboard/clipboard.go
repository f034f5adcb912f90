// Package clipboard reads and writes text on the native system clipboard.
// The TUI also copies through the terminal (OSC 52); this package is the
// fallback for terminals that ignore it.
package clipboard

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"

	"github.com/parleychat/parley/internal/logger"
)

var (
	initOnce sync.Once
	initErr  error

	// Seams for tests.
	initFn  = clipboard.Init
	writeFn = func(b []byte) { clipboard.Write(clipboard.FmtText, b) }
	readFn  = func() []byte { return clipboard.Read(clipboard.FmtText) }
)

// Init initializes the clipboard. Safe to call multiple times; the first
// result is remembered.
func Init() error {
	initOnce.Do(func() {
		if err := initFn(); err != nil {
			logger.WithComponent("clipboard").Warn("failed to initialize clipboard", "error", err)
			initErr = fmt.Errorf("failed to initialize clipboard: %w", err)
			return
		}
		logger.WithComponent("clipboard").Debug("clipboard initialized")
	})
	return initErr
}

// WriteText places text on the clipboard.
func WriteText(text string) error {
	if err := Init(); err != nil {
		return err
	}
	writeFn([]byte(text))
	return nil
}

// ReadText returns the clipboard's text contents, or "" if it holds none.
func ReadText() (string, error) {
	if err := Init(); err != nil {
		return "", err
	}
	b := readFn()
	if b == nil {
		return "", nil
	}
	return string(b), nil
}
