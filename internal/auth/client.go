package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	perrors "github.com/parleychat/parley/internal/errors"
	"github.com/parleychat/parley/internal/logger"
)

const (
	httpTimeout = 30 * time.Second

	// expiryMargin is how close to expiry a token must be before GetSession
	// refreshes it instead of returning it.
	expiryMargin = 30 * time.Second

	// defaultRefreshTick is how often AutoRefresh checks the token.
	defaultRefreshTick = 30 * time.Second

	// refreshTickThreshold is how many ticks before expiry AutoRefresh refreshes.
	refreshTickThreshold = 3
)

// Options configures a Client.
type Options struct {
	// URL is the Supabase project URL, e.g. https://xyz.supabase.co.
	URL string
	// AnonKey is sent as the apikey header on every request.
	AnonKey string
	// StoragePath is where the session is persisted. Empty disables persistence.
	StoragePath string
	// HTTPClient overrides the default client (for testing).
	HTTPClient *http.Client
}

// Client talks to the GoTrue REST API and owns the current session.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	storage    *Storage
	log        *slog.Logger
	now        func() time.Time

	refreshTick time.Duration

	mu             sync.Mutex
	session        *Session
	loaded         bool
	listeners      map[int]Listener
	nextListenerID int

	emitMu sync.Mutex
}

// NewClient creates a client. It does not touch the network or the disk.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpTimeout}
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.URL, "/"),
		anonKey:     opts.AnonKey,
		httpClient:  httpClient,
		storage:     NewStorage(opts.StoragePath),
		log:         logger.WithComponent("auth"),
		now:         time.Now,
		refreshTick: defaultRefreshTick,
		listeners:   make(map[int]Listener),
	}
}

// Configured reports whether an auth backend URL was provided.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// Storage returns the client's session storage.
func (c *Client) Storage() *Storage {
	return c.storage
}

// errorResponse covers the error shapes GoTrue returns.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e errorResponse) text() string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Msg != "":
		return e.Msg
	case e.Message != "":
		return e.Message
	case e.Error != "":
		return e.Error
	}
	return ""
}

// do sends a request to the auth backend and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, op, method, path, accessToken string, body, out any) error {
	if !c.Configured() {
		return perrors.AuthNotConfigured(op)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return perrors.E(perrors.Op(op), perrors.KindInvalid, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return perrors.E(perrors.Op(op), perrors.KindInvalid, err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return perrors.AuthUnreachable(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var er errorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(data, &er)
		msg := er.text()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return perrors.AuthRequestFailed(op, resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return perrors.E(perrors.Op(op), perrors.KindProtocol, "failed to parse auth response", err)
	}
	return nil
}

// SignInWithPassword exchanges an email and password for a session, persists
// it, and emits SIGNED_IN.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, "auth.SignInWithPassword", http.MethodPost, "/auth/v1/token?grant_type=password", "", body, &session); err != nil {
		return nil, err
	}
	session.stampExpiry(c.now())

	// In memory first so the storage watcher sees its own write as unchanged.
	c.setSession(&session)
	if err := c.storage.Save(&session); err != nil {
		return nil, err
	}
	c.log.Info("signed in", "user_id", session.User.ID)
	c.emit(EventSignedIn, &session)
	return &session, nil
}

// RefreshSession trades the current refresh token for a new session and
// emits TOKEN_REFRESHED. If the backend rejects the refresh token the local
// session is cleared and SIGNED_OUT is emitted.
func (c *Client) RefreshSession(ctx context.Context) (*Session, error) {
	const op = "auth.RefreshSession"
	if _, err := c.ensureLoaded(); err != nil {
		return nil, err
	}

	current := c.current()
	if current == nil || current.RefreshToken == "" {
		return nil, perrors.E(perrors.Op(op), perrors.KindAuth, "no session to refresh")
	}

	var session Session
	body := map[string]string{"refresh_token": current.RefreshToken}
	err := c.do(ctx, op, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", body, &session)
	if err != nil {
		if perrors.Is(err, perrors.KindAuth) {
			c.log.Warn("refresh token rejected, signing out", "error", err)
			c.clearLocal()
		}
		return nil, err
	}
	session.stampExpiry(c.now())
	if session.User.ID == "" {
		session.User = current.User
	}

	c.setSession(&session)
	if err := c.storage.Save(&session); err != nil {
		return nil, err
	}
	c.log.Debug("token refreshed", "expires_at", session.Expiry())
	c.emit(EventTokenRefreshed, &session)
	return &session, nil
}

// GetUser fetches the user that owns accessToken.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var user User
	if err := c.do(ctx, "auth.GetUser", http.MethodGet, "/auth/v1/user", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignOut revokes the session remotely (best effort), removes it from disk,
// and emits SIGNED_OUT.
func (c *Client) SignOut(ctx context.Context) error {
	if _, err := c.ensureLoaded(); err != nil {
		return err
	}

	if current := c.current(); current != nil && c.Configured() {
		if err := c.do(ctx, "auth.SignOut", http.MethodPost, "/auth/v1/logout", current.AccessToken, nil, nil); err != nil {
			c.log.Warn("remote sign-out failed", "error", err)
		}
	}
	return c.clearLocal()
}

// GetSession returns the current session, loading it from disk on first use
// and refreshing it if the access token is about to expire. It returns nil
// when nobody is signed in or no auth backend is configured. The first call
// emits INITIAL_SESSION.
func (c *Client) GetSession(ctx context.Context) (*Session, error) {
	if !c.Configured() {
		return nil, nil
	}

	first, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}

	session := c.current()
	if session != nil && session.ExpiresWithin(c.now(), expiryMargin) {
		c.log.Debug("stored session expired, refreshing")
		refreshed, rerr := c.RefreshSession(ctx)
		if rerr != nil {
			if first {
				c.emit(EventInitialSession, c.current())
			}
			return nil, rerr
		}
		session = refreshed
	}

	if first {
		c.emit(EventInitialSession, session)
	}
	return session, nil
}

// ensureLoaded reads the persisted session once. first is true for the call
// that performed the load.
func (c *Client) ensureLoaded() (first bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return false, nil
	}
	session, err := c.storage.Load()
	if err != nil {
		return false, err
	}
	c.session = session
	c.loaded = true
	return true, nil
}

func (c *Client) current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) setSession(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
	c.loaded = true
}

// clearLocal forgets the session on disk and in memory and emits SIGNED_OUT.
func (c *Client) clearLocal() error {
	c.setSession(nil)
	err := c.storage.Remove()
	c.emit(EventSignedOut, nil)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}
