package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	perrors "github.com/parleychat/parley/internal/errors"
)

const testAnonKey = "anon-key"

// fakeGoTrue is a minimal GoTrue stand-in.
type fakeGoTrue struct {
	mu            sync.Mutex
	refreshCalls  int
	logoutCalls   int
	rejectRefresh bool
	logoutStatus  int
	lastAuth      string
	expiresIn     int64
}

func (f *fakeGoTrue) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != testAnonKey {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid API key"}`))
			return
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.URL.Query().Get("grant_type") {
		case "password":
			if body["password"] != "hunter2" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
				return
			}
			writeSession(w, "access-1", "refresh-1", f.expiresIn, body["email"])
		case "refresh_token":
			f.refreshCalls++
			if f.rejectRefresh {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Refresh Token Not Found"}`))
				return
			}
			writeSession(w, "access-refreshed", "refresh-2", 3600, "ada@example.com")
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	mux.HandleFunc("/auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(User{ID: "u-1", Email: "ada@example.com"})
	})

	mux.HandleFunc("/auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.logoutCalls++
		f.lastAuth = r.Header.Get("Authorization")
		status := f.logoutStatus
		f.mu.Unlock()
		if status == 0 {
			status = http.StatusNoContent
		}
		w.WriteHeader(status)
	})

	return mux
}

func (f *fakeGoTrue) set(fn func(f *fakeGoTrue)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeGoTrue) stats() (refreshCalls, logoutCalls int, lastAuth string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls, f.logoutCalls, f.lastAuth
}

func writeSession(w http.ResponseWriter, access, refresh string, expiresIn int64, email string) {
	if expiresIn == 0 {
		expiresIn = 3600
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
		"expires_in":    expiresIn,
		"user": map[string]any{
			"id":            "u-1",
			"email":         email,
			"created_at":    "2024-01-01T00:00:00Z",
			"user_metadata": map[string]any{"first_name": "Ada"},
		},
	})
}

type recorded struct {
	event   Event
	session *Session
}

type recorder struct {
	mu     sync.Mutex
	events []recorded
	ch     chan recorded
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan recorded, 32)}
}

func (r *recorder) listen(event Event, session *Session) {
	r.mu.Lock()
	r.events = append(r.events, recorded{event, session})
	r.mu.Unlock()
	r.ch <- recorded{event, session}
}

func (r *recorder) names() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	for i, e := range r.events {
		out[i] = e.event
	}
	return out
}

func (r *recorder) wait(t *testing.T, want Event) recorded {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case got := <-r.ch:
			if got.event == want {
				return got
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s (saw %v)", want, r.names())
		}
	}
}

func newTestClient(t *testing.T) (*Client, *fakeGoTrue, string) {
	t.Helper()
	fake := &fakeGoTrue{}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "session.json")
	c := NewClient(Options{
		URL:         srv.URL + "/",
		AnonKey:     testAnonKey,
		StoragePath: path,
		HTTPClient:  srv.Client(),
	})
	return c, fake, path
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSignInWithPassword(t *testing.T) {
	c, _, path := newTestClient(t)
	rec := newRecorder()
	c.OnAuthStateChange(rec.listen)

	session, err := c.SignInWithPassword(context.Background(), "ada@example.com", "hunter2")
	if err != nil {
		t.Fatalf("SignInWithPassword() error = %v", err)
	}
	if session.AccessToken != "access-1" || session.User.Email != "ada@example.com" {
		t.Errorf("unexpected session: %+v", session)
	}
	if session.ExpiresAt == 0 {
		t.Error("ExpiresAt should be stamped from expires_in")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("session file mode = %o, want 600", perm)
	}

	got := rec.names()
	if len(got) != 1 || got[0] != EventSignedIn {
		t.Errorf("events = %v, want [SIGNED_IN]", got)
	}
}

func TestSignInWithPassword_BadCredentials(t *testing.T) {
	c, _, path := newTestClient(t)

	_, err := c.SignInWithPassword(context.Background(), "ada@example.com", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	if !perrors.Is(err, perrors.KindAuth) {
		t.Errorf("kind = %v, want auth", perrors.GetKind(err))
	}
	if !strings.Contains(err.Error(), "Invalid login credentials") {
		t.Errorf("error = %q, want GoTrue description", err.Error())
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("failed sign-in must not persist a session")
	}
}

func TestClient_NotConfigured(t *testing.T) {
	c := NewClient(Options{StoragePath: filepath.Join(t.TempDir(), "session.json")})

	if c.Configured() {
		t.Error("Configured() should be false without URL")
	}
	session, err := c.GetSession(context.Background())
	if err != nil || session != nil {
		t.Errorf("GetSession() = %v, %v; want nil, nil", session, err)
	}
	_, err = c.SignInWithPassword(context.Background(), "a@b.c", "x")
	if !perrors.Is(err, perrors.KindConfig) {
		t.Errorf("SignInWithPassword kind = %v, want config", perrors.GetKind(err))
	}
}

func TestGetSession_LoadsPersistedSessionOnce(t *testing.T) {
	c, fake, path := newTestClient(t)
	stored := &Session{
		AccessToken:  "stored-access",
		RefreshToken: "stored-refresh",
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
		User:         User{ID: "u-1", Email: "ada@example.com"},
	}
	if err := NewStorage(path).Save(stored); err != nil {
		t.Fatal(err)
	}

	rec := newRecorder()
	c.OnAuthStateChange(rec.listen)

	for i := 0; i < 2; i++ {
		session, err := c.GetSession(context.Background())
		if err != nil {
			t.Fatalf("GetSession() error = %v", err)
		}
		if session == nil || session.AccessToken != "stored-access" {
			t.Fatalf("GetSession() = %+v", session)
		}
	}

	if got := rec.names(); len(got) != 1 || got[0] != EventInitialSession {
		t.Errorf("events = %v, want one INITIAL_SESSION", got)
	}
	if refreshCalls, _, _ := fake.stats(); refreshCalls != 0 {
		t.Errorf("refreshCalls = %d, want 0", refreshCalls)
	}
}

func TestGetSession_NoStoredSession(t *testing.T) {
	c, _, _ := newTestClient(t)
	rec := newRecorder()
	c.OnAuthStateChange(rec.listen)

	session, err := c.GetSession(context.Background())
	if err != nil || session != nil {
		t.Fatalf("GetSession() = %v, %v; want nil, nil", session, err)
	}
	got := rec.wait(t, EventInitialSession)
	if got.session != nil {
		t.Error("INITIAL_SESSION should carry nil session")
	}
}

func TestGetSession_RefreshesExpiredSession(t *testing.T) {
	c, fake, path := newTestClient(t)
	expired := &Session{
		AccessToken:  signedToken(t, time.Now().Add(-time.Minute)),
		RefreshToken: "refresh-1",
		User:         User{ID: "u-1"},
	}
	if err := NewStorage(path).Save(expired); err != nil {
		t.Fatal(err)
	}

	rec := newRecorder()
	c.OnAuthStateChange(rec.listen)

	session, err := c.GetSession(context.Background())
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if session.AccessToken != "access-refreshed" {
		t.Errorf("AccessToken = %q, want refreshed", session.AccessToken)
	}
	if refreshCalls, _, _ := fake.stats(); refreshCalls != 1 {
		t.Errorf("refreshCalls = %d, want 1", refreshCalls)
	}

	want := []Event{EventTokenRefreshed, EventInitialSession}
	got := rec.names()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	persisted, err := NewStorage(path).Load()
	if err != nil {
		t.Fatal(err)
	}
	if persisted.AccessToken != "access-refreshed" {
		t.Error("refreshed session should be persisted")
	}
}

func TestRefreshSession_RejectedSignsOut(t *testing.T) {
	c, fake, path := newTestClient(t)
	fake.set(func(f *fakeGoTrue) { f.rejectRefresh = true })
	if err := NewStorage(path).Save(&Session{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Add(-time.Hour).Unix()}); err != nil {
		t.Fatal(err)
	}

	rec := newRecorder()
	c.OnAuthStateChange(rec.listen)

	session, err := c.GetSession(context.Background())
	if err == nil {
		t.Fatal("expected refresh error")
	}
	if session != nil {
		t.Error("session should be nil after rejected refresh")
	}
	rec.wait(t, EventSignedOut)
	got := rec.wait(t, EventInitialSession)
	if got.session != nil {
		t.Error("INITIAL_SESSION after rejected refresh should be nil")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("session file should be removed")
	}
}

func TestGetUser(t *testing.T) {
	c, _, _ := newTestClient(t)

	user, err := c.GetUser(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("Email = %q", user.Email)
	}

	_, err = c.GetUser(context.Background(), "bogus")
	if !perrors.Is(err, perrors.KindAuth) {
		t.Errorf("kind = %v, want auth", perrors.GetKind(err))
	}
	if !strings.Contains(err.Error(), "invalid JWT") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestSignOut(t *testing.T) {
	tests := []struct {
		name         string
		logoutStatus int
	}{
		{"remote ok", http.StatusNoContent},
		{"remote failure still clears locally", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fake, path := newTestClient(t)
			fake.set(func(f *fakeGoTrue) { f.logoutStatus = tt.logoutStatus })

			if _, err := c.SignInWithPassword(context.Background(), "ada@example.com", "hunter2"); err != nil {
				t.Fatal(err)
			}
			rec := newRecorder()
			c.OnAuthStateChange(rec.listen)

			if err := c.SignOut(context.Background()); err != nil {
				t.Fatalf("SignOut() error = %v", err)
			}
			_, logoutCalls, lastAuth := fake.stats()
			if logoutCalls != 1 {
				t.Errorf("logoutCalls = %d", logoutCalls)
			}
			if lastAuth != "Bearer access-1" {
				t.Errorf("Authorization = %q", lastAuth)
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Error("session file should be removed")
			}
			rec.wait(t, EventSignedOut)

			session, err := c.GetSession(context.Background())
			if err != nil || session != nil {
				t.Errorf("GetSession() after sign-out = %v, %v", session, err)
			}
		})
	}
}

func TestSubscription_Unsubscribe(t *testing.T) {
	c, _, _ := newTestClient(t)
	rec := newRecorder()
	sub := c.OnAuthStateChange(rec.listen)

	sub.Unsubscribe()
	sub.Unsubscribe()

	if _, err := c.SignInWithPassword(context.Background(), "ada@example.com", "hunter2"); err != nil {
		t.Fatal(err)
	}
	if got := rec.names(); len(got) != 0 {
		t.Errorf("events after unsubscribe = %v", got)
	}
}

func TestSubscription_DeliveryOrder(t *testing.T) {
	c, _, _ := newTestClient(t)
	rec := newRecorder()
	c.OnAuthStateChange(rec.listen)

	ctx := context.Background()
	if _, err := c.SignInWithPassword(ctx, "ada@example.com", "hunter2"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.RefreshSession(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.SignOut(ctx); err != nil {
		t.Fatal(err)
	}

	want := []Event{EventSignedIn, EventTokenRefreshed, EventSignedOut}
	got := rec.names()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAutoRefresh(t *testing.T) {
	c, fake, _ := newTestClient(t)
	c.refreshTick = 10 * time.Millisecond
	fake.set(func(f *fakeGoTrue) { f.expiresIn = 1 })

	rec := newRecorder()
	c.OnAuthStateChange(rec.listen)

	if _, err := c.SignInWithPassword(context.Background(), "ada@example.com", "hunter2"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.AutoRefresh(ctx)
		close(done)
	}()

	rec.wait(t, EventTokenRefreshed)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("AutoRefresh did not stop after cancel")
	}
}

func TestWatchStorage_ExternalSignInAndOut(t *testing.T) {
	c, _, path := newTestClient(t)
	rec := newRecorder()
	c.OnAuthStateChange(rec.listen)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.WatchStorage(ctx); err != nil {
		t.Fatalf("WatchStorage() error = %v", err)
	}

	other := NewStorage(path)
	external := &Session{AccessToken: "from-other-process", RefreshToken: "r", User: User{ID: "u-9"}}
	if err := other.Save(external); err != nil {
		t.Fatal(err)
	}

	got := rec.wait(t, EventSignedIn)
	if got.session == nil || got.session.AccessToken != "from-other-process" {
		t.Errorf("SIGNED_IN session = %+v", got.session)
	}

	if err := other.Remove(); err != nil {
		t.Fatal(err)
	}
	rec.wait(t, EventSignedOut)
}
