package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	"tasksync/internal/service"
	"tasksync/internal/transport"
)

// Endpoint paths.
const (
	LoginPath    = "/auth/login"
	RegisterPath = "/auth/register"
	RefreshPath  = "/auth/refresh-token"
	ProfilePath  = "/auth/me"
)

// DefaultRefreshTimeout bounds a refresh call. The refresh runs detached from
// the request that triggered it, so it needs its own limit.
const DefaultRefreshTimeout = 15 * time.Second

const refreshKey = "refresh"

// Manager issues authenticated requests and keeps the session valid across a
// single transparent refresh. It is safe for concurrent use.
type Manager struct {
	transport      transport.Doer
	store          Store
	log            *slog.Logger
	refreshTimeout time.Duration
	now            func() time.Time

	current   atomic.Pointer[Session]
	refreshes singleflight.Group
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithRefreshTimeout overrides DefaultRefreshTimeout.
func WithRefreshTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.refreshTimeout = d
		}
	}
}

// WithClock overrides time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a manager and restores the stored session, if any.
// A nil store keeps the session in memory only. An unreadable stored session
// is logged and ignored; the user simply has to log in again.
func NewManager(t transport.Doer, store Store, opts ...Option) (*Manager, error) {
	if t == nil {
		return nil, errors.New("session: transport is required")
	}
	if store == nil {
		store = memoryStore{}
	}
	m := &Manager{
		transport:      t,
		store:          store,
		log:            slog.Default(),
		refreshTimeout: DefaultRefreshTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	restored, err := store.Load()
	if err != nil {
		m.log.Warn("ignoring stored session", "error", err)
	} else if restored != nil {
		m.current.Store(restored)
		m.log.Debug("session restored", "user", restored.User().Email, "expiry", restored.Expiry())
	}
	return m, nil
}

// Current returns the active session, or nil when anonymous.
func (m *Manager) Current() *Session {
	return m.current.Load()
}

// Authenticated reports whether an access token is held.
func (m *Manager) Authenticated() bool {
	return m.current.Load().AccessToken() != ""
}

// Expiry returns the held access token's expiry; zero when unknown or anonymous.
func (m *Manager) Expiry() time.Time {
	return m.current.Load().Expiry()
}

// Expired reports whether the held access token is past its exp claim.
// The next request will refresh it.
func (m *Manager) Expired() bool {
	return m.current.Load().Expired(m.now())
}

// Login authenticates with email and password. Inputs are trimmed and
// validated before any network call.
func (m *Manager) Login(ctx context.Context, creds service.Credentials) (service.User, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	creds.Password = strings.TrimSpace(creds.Password)
	if err := service.Validate(creds); err != nil {
		return service.User{}, err
	}
	return m.authenticate(ctx, LoginPath, map[string]string{
		"email":    creds.Email,
		"password": creds.Password,
	})
}

// Register creates an account and starts a session. The password
// confirmation is checked before any network call.
func (m *Manager) Register(ctx context.Context, reg service.Registration) (service.User, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Password = strings.TrimSpace(reg.Password)
	reg.PasswordConfirm = strings.TrimSpace(reg.PasswordConfirm)
	reg.Name = strings.TrimSpace(reg.Name)
	if err := service.Validate(reg); err != nil {
		return service.User{}, err
	}
	return m.authenticate(ctx, RegisterPath, map[string]string{
		"email":    reg.Email,
		"password": reg.Password,
		"name":     reg.Name,
	})
}

// Logout clears the session. It never touches the network; the in-memory
// session is cleared even if removing the stored copy fails.
func (m *Manager) Logout() error {
	m.current.Store(nil)
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("failed to remove stored session: %w", err)
	}
	return nil
}

// Profile fetches the user's profile and stores it in the session.
func (m *Manager) Profile(ctx context.Context) (service.User, error) {
	resp, err := m.Do(ctx, http.MethodGet, ProfilePath, nil)
	if err != nil {
		return service.User{}, err
	}

	raw := resp.Body
	if u := gjson.GetBytes(raw, "user"); u.IsObject() {
		raw = []byte(u.Raw)
	}
	var user service.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return service.User{}, &service.ServerError{Status: resp.Status, Message: "invalid profile response"}
	}

	for {
		cur := m.current.Load()
		if cur == nil {
			break
		}
		next := cur.withUser(user)
		if m.current.CompareAndSwap(cur, next) {
			m.persist(next)
			break
		}
	}
	return user, nil
}

// Do performs an authorized request.
//
// A 401 triggers at most one refresh, shared by every request that observes
// a 401 while it is in flight, followed by exactly one retry. If the session
// cannot be recovered it is cleared and an *service.AuthError wrapping
// service.ErrSessionExpired is returned. Other non-2xx statuses come back as
// *service.ServerError without retry. An abandoned request returns
// service.ErrCanceled and never refreshes or clears the session.
func (m *Manager) Do(ctx context.Context, method, path string, body any) (*transport.Response, error) {
	sess := m.current.Load()
	resp, err := m.send(ctx, sess, method, path, body)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusUnauthorized {
		return checkStatus(resp)
	}

	next, err := m.recover(ctx, sess)
	if err != nil {
		return nil, err
	}

	resp, err = m.send(ctx, next, method, path, body)
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusUnauthorized {
		m.log.Warn("request rejected after refresh", "method", method, "path", path)
		m.expire(next)
		return nil, expiredError()
	}
	return checkStatus(resp)
}

func (m *Manager) send(ctx context.Context, sess *Session, method, path string, body any) (*transport.Response, error) {
	var headers map[string]string
	if h := sess.AuthorizationHeader(); h != "" {
		headers = map[string]string{"Authorization": h}
	}
	resp, err := m.transport.Request(ctx, method, path, body, headers)
	if err != nil {
		if service.IsCanceled(err) && !errors.Is(err, service.ErrCanceled) {
			return nil, service.Canceled(err)
		}
		return nil, err
	}
	if err := abandoned(ctx, method+" "+path); err != nil {
		return nil, err
	}
	return resp, nil
}

// recover returns the session to retry with after stale was rejected.
func (m *Manager) recover(ctx context.Context, stale *Session) (*Session, error) {
	if cur := m.current.Load(); cur != stale {
		// Another request already refreshed (or the user logged in or out)
		// while this one was in flight.
		if cur == nil {
			return nil, expiredError()
		}
		return cur, nil
	}
	if stale.RefreshToken() == "" {
		m.expire(stale)
		return nil, expiredError()
	}

	detached := context.WithoutCancel(ctx)
	ch := m.refreshes.DoChan(refreshKey, func() (any, error) {
		return m.refresh(detached, stale)
	})
	select {
	case <-ctx.Done():
		return nil, abandoned(ctx, "refresh")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Session), nil
	}
}

// refresh exchanges stale's refresh token for a new pair. It only runs inside
// the single-flight group.
func (m *Manager) refresh(ctx context.Context, stale *Session) (*Session, error) {
	// A flight that started after an earlier one finished must not reuse the
	// rotated refresh token.
	if cur := m.current.Load(); cur != stale {
		if cur == nil {
			return nil, expiredError()
		}
		return cur, nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.refreshTimeout)
	defer cancel()

	m.log.Debug("refreshing session")
	resp, err := m.transport.Request(ctx, http.MethodPost, RefreshPath,
		map[string]string{"refreshToken": stale.RefreshToken()}, nil)
	if err != nil {
		m.log.Warn("session refresh failed", "error", err)
		m.expire(stale)
		return nil, expiredError()
	}
	if !resp.OK() {
		m.log.Warn("session refresh rejected", "status", resp.Status)
		m.expire(stale)
		return nil, expiredError()
	}

	access := gjson.GetBytes(resp.Body, "accessToken").String()
	if access == "" {
		access = gjson.GetBytes(resp.Body, "token").String()
	}
	if access == "" {
		m.log.Warn("session refresh returned no access token")
		m.expire(stale)
		return nil, expiredError()
	}

	next := stale.rotate(access, gjson.GetBytes(resp.Body, "refreshToken").String())
	if !m.current.CompareAndSwap(stale, next) {
		// Logged out or in again while refreshing; the newer state wins.
		if cur := m.current.Load(); cur != nil {
			return cur, nil
		}
		return nil, expiredError()
	}
	m.persist(next)
	m.log.Debug("session refreshed", "expiry", next.Expiry())
	return next, nil
}

type authResponse struct {
	User         *service.User `json:"user"`
	Token        string        `json:"token"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
}

func (m *Manager) authenticate(ctx context.Context, path string, body any) (service.User, error) {
	resp, err := m.transport.Request(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		return service.User{}, err
	}
	if err := abandoned(ctx, "POST "+path); err != nil {
		return service.User{}, err
	}

	switch {
	case resp.OK():
	case resp.Status == http.StatusBadRequest || resp.Status == http.StatusUnauthorized || resp.Status == http.StatusForbidden:
		msg := errorMessage(resp.Body)
		if msg == "" {
			msg = "invalid credentials"
		}
		return service.User{}, &service.AuthError{Message: msg}
	default:
		_, err := checkStatus(resp)
		return service.User{}, err
	}

	var ar authResponse
	if err := json.Unmarshal(resp.Body, &ar); err != nil {
		return service.User{}, &service.ServerError{Status: resp.Status, Message: "invalid server response", Body: resp.Body}
	}
	token := ar.Token
	if token == "" {
		token = ar.AccessToken
	}
	if ar.User == nil || token == "" {
		return service.User{}, &service.ServerError{Status: resp.Status, Message: "invalid server response: missing user or token", Body: resp.Body}
	}

	sess := New(token, ar.RefreshToken, *ar.User)
	m.current.Store(sess)
	if err := m.store.Save(sess); err != nil {
		return *ar.User, fmt.Errorf("failed to save session: %w", err)
	}
	m.log.Debug("session started", "user", ar.User.Email, "expiry", sess.Expiry())
	return *ar.User, nil
}

// expire clears s if it is still the active session.
func (m *Manager) expire(s *Session) {
	if !m.current.CompareAndSwap(s, nil) {
		return
	}
	if err := m.store.Clear(); err != nil {
		m.log.Warn("failed to remove stored session", "error", err)
	}
}

func (m *Manager) persist(s *Session) {
	if err := m.store.Save(s); err != nil {
		m.log.Warn("failed to save session", "error", err)
	}
}

func expiredError() error {
	return &service.AuthError{Err: service.ErrSessionExpired}
}

// abandoned reports whether the caller gave up on the request. Whatever
// response arrived is discarded.
func abandoned(ctx context.Context, op string) error {
	switch err := ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return service.Canceled(err)
	default:
		return &service.NetworkError{Op: op, Err: err}
	}
}

func checkStatus(resp *transport.Response) (*transport.Response, error) {
	if resp.OK() {
		return resp, nil
	}
	return nil, &service.ServerError{
		Status:  resp.Status,
		Message: errorMessage(resp.Body),
		Body:    resp.Body,
	}
}

// errorMessage extracts a human-readable message from an error body.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"message", "error.message", "error"} {
		if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}
