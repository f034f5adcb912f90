package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// setupTestLogger creates a temp log file and initializes the logger with it.
func setupTestLogger(t *testing.T) string {
	t.Helper()
	Reset()

	logPath := filepath.Join(t.TempDir(), "test-debug.log")
	if err := Init(logPath); err != nil {
		t.Fatalf("Failed to init logger: %v", err)
	}
	t.Cleanup(Reset)
	return logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(content)
}

func TestWithComponent_AttachesComponent(t *testing.T) {
	logPath := setupTestLogger(t)

	WithComponent("realtime").Info("socket open", "url", "ws://example")

	content := readLog(t, logPath)
	if !strings.Contains(content, "component=realtime") {
		t.Errorf("expected component attribute in log, got:\n%s", content)
	}
	if !strings.Contains(content, "url=ws://example") {
		t.Errorf("expected url attribute in log, got:\n%s", content)
	}
}

func TestSetDebug(t *testing.T) {
	logPath := setupTestLogger(t)

	WithComponent("test").Debug("hidden-debug-line")
	if strings.Contains(readLog(t, logPath), "hidden-debug-line") {
		t.Error("debug line should not be written at info level")
	}

	SetDebug(true)
	WithComponent("test").Debug("visible-debug-line")
	if !strings.Contains(readLog(t, logPath), "visible-debug-line") {
		t.Error("debug line should be written after SetDebug(true)")
	}

	SetDebug(false)
	WithComponent("test").Debug("hidden-again")
	if strings.Contains(readLog(t, logPath), "hidden-again") {
		t.Error("debug line should not be written after SetDebug(false)")
	}
}

func TestLogLevel_toSlogLevel(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(42), "INFO"},
	}
	for _, tt := range tests {
		if got := tt.level.toSlogLevel().String(); got != tt.want {
			t.Errorf("LogLevel(%d).toSlogLevel() = %s, want %s", tt.level, got, tt.want)
		}
	}
}

func TestInit_SecondCallIsNoop(t *testing.T) {
	first := setupTestLogger(t)
	second := filepath.Join(t.TempDir(), "second.log")

	if err := Init(second); err != nil {
		t.Fatalf("second Init returned error: %v", err)
	}
	WithComponent("test").Info("after-second-init")

	if !strings.Contains(readLog(t, first), "after-second-init") {
		t.Error("expected output to keep going to the first log file")
	}
	if _, err := os.Stat(second); !os.IsNotExist(err) {
		t.Error("second log file should not have been created")
	}
}

func TestInit_BadPath(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	err := Init(filepath.Join(t.TempDir(), "missing", "dir", "log.log"))
	if err == nil {
		t.Fatal("expected error for unopenable path")
	}
}

func TestClose_LoggingAfterCloseDoesNotPanic(t *testing.T) {
	setupTestLogger(t)
	Close()
	WithComponent("test").Info("after close")
}

func TestWithComponent_Concurrent(t *testing.T) {
	setupTestLogger(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				WithComponent("test").Info("concurrent", "worker", n, "iteration", j)
			}
		}(i)
	}
	wg.Wait()
}
