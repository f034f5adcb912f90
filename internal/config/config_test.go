package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/parleychat/parley/internal/chat"
	perrors "github.com/parleychat/parley/internal/errors"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GetTheme() != "" {
		t.Errorf("GetTheme() = %q, want empty", cfg.GetTheme())
	}
	if cfg.GetNotificationsEnabled() {
		t.Error("notifications should default to disabled")
	}
	want := chat.Identity{SenderID: 1, ReceiverID: 1}
	if got := cfg.Identity(); got != want {
		t.Errorf("Identity() = %+v, want %+v", got, want)
	}
}

func TestSave_PrivateFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	// A file left world-readable by an older version is tightened on save.
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	cfg.SetLastEmail("ada@example.com")
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		t.Errorf("mode = %o, want 600", mode)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.SetTheme("nord")
	cfg.SetNotificationsEnabled(true)
	cfg.SetIdentity(chat.Identity{SenderID: 7, ReceiverID: 9})
	cfg.SetLastEmail("ada@example.com")

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(home, ".parley", "config.json")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() after save error = %v", err)
	}
	if loaded.GetTheme() != "nord" {
		t.Errorf("theme = %q, want nord", loaded.GetTheme())
	}
	if !loaded.GetNotificationsEnabled() {
		t.Error("notifications should be enabled after reload")
	}
	if got := loaded.Identity(); got != (chat.Identity{SenderID: 7, ReceiverID: 9}) {
		t.Errorf("Identity() = %+v", got)
	}
	if loaded.GetLastEmail() != "ada@example.com" {
		t.Errorf("last email = %q", loaded.GetLastEmail())
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !perrors.Is(err, perrors.KindConfig) {
		t.Errorf("kind = %v, want config", perrors.GetKind(err))
	}
}

func TestLoadFrom_NegativeIDRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"sender_id": -3}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected validation error for negative sender_id")
	}
}

func TestIdentity_PartialOverride(t *testing.T) {
	tests := []struct {
		name     string
		sender   int64
		receiver int64
		want     chat.Identity
	}{
		{"both unset", 0, 0, chat.Identity{SenderID: 1, ReceiverID: 1}},
		{"sender only", 4, 0, chat.Identity{SenderID: 4, ReceiverID: 1}},
		{"receiver only", 0, 5, chat.Identity{SenderID: 1, ReceiverID: 5}},
		{"both set", 2, 3, chat.Identity{SenderID: 2, ReceiverID: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{SenderID: tt.sender, ReceiverID: tt.receiver}
			if got := cfg.Identity(); got != tt.want {
				t.Errorf("Identity() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := Dir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join(home, ".parley") {
		t.Errorf("Dir() = %q", dir)
	}

	sp, err := SessionPath()
	if err != nil {
		t.Fatal(err)
	}
	if sp != filepath.Join(home, ".parley", "session.json") {
		t.Errorf("SessionPath() = %q", sp)
	}
}

func TestConfig_ConcurrentAccess(t *testing.T) {
	cfg := &Config{filePath: filepath.Join(t.TempDir(), "config.json")}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			cfg.SetTheme("theme")
			cfg.SetIdentity(chat.Identity{SenderID: int64(i + 1), ReceiverID: 1})
		}(i)
		go func() {
			defer wg.Done()
			_ = cfg.GetTheme()
			_ = cfg.Identity()
			_ = cfg.Save()
		}()
	}
	wg.Wait()
}
