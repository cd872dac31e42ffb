package session

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	loginPath    = "/auth/login/"
	registerPath = "/auth/register/"
	refreshPath  = "/auth/refresh/"
	profilePath  = "/profile/"
)

// Fixed fallback messages used when a failure carries no usable body.
const (
	loginFallback    = "Login failed"
	registerFallback = "Registration failed"
	renewFallback    = "Session renewal failed"
)

// SessionManager orchestrates login, registration, silent renewal, logout,
// and current-user retrieval. It is the sole writer of the credential store
// and the credential source for the transport.
type SessionManager struct {
	transport Transport
	store     CredentialStore
	logger    Logger
	sink      ActivitySink
	validator TokenValidator
	now       func() time.Time

	mu              sync.RWMutex
	status          Status
	user            *User
	accessToken     string
	hasRefreshToken bool
	// epoch increments on every clear; an in-flight renewal that resolves
	// against a stale epoch discards its result.
	epoch uint64

	renewMu  sync.Mutex
	inflight *renewalAttempt

	subs *broadcaster
}

var _ Manager = (*SessionManager)(nil)
var _ CredentialSource = (*SessionManager)(nil)

// NewManager returns a manager in StatusInitializing. Call Start to resolve
// the persisted session before rendering authenticated-only UI.
func NewManager(transport Transport, store CredentialStore) *SessionManager {
	return &SessionManager{
		transport: transport,
		store:     store,
		logger:    defLogger{},
		sink:      noopActivitySink{},
		now:       time.Now,
		status:    StatusInitializing,
		subs:      newBroadcaster(),
	}
}

func (m *SessionManager) WithLogger(logger Logger) *SessionManager {
	m.logger = logger
	return m
}

// WithActivitySink configures an ActivitySink for emitting session events.
func (m *SessionManager) WithActivitySink(sink ActivitySink) *SessionManager {
	m.sink = normalizeActivitySink(sink)
	return m
}

// WithTokenValidator sets a validator that pre-screens persisted tokens at
// startup, e.g. a JWKSValidator.
func (m *SessionManager) WithTokenValidator(validator TokenValidator) *SessionManager {
	m.validator = validator
	return m
}

// WithClock injects a custom clock (useful for tests).
func (m *SessionManager) WithClock(clock func() time.Time) *SessionManager {
	if clock != nil {
		m.now = clock
	}
	return m
}

// AccessToken implements CredentialSource; the transport pulls the current
// token through here on every request.
func (m *SessionManager) AccessToken() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accessToken, m.accessToken != ""
}

// Status returns the current lifecycle state.
func (m *SessionManager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// CurrentUser returns the last-fetched profile snapshot, or nil.
func (m *SessionManager) CurrentUser() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneUser(m.user)
}

// Snapshot returns the observable session state.
func (m *SessionManager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// Subscribe registers a callback invoked after every resolved mutation.
// The returned function unsubscribes.
func (m *SessionManager) Subscribe(fn func(Snapshot)) func() {
	return m.subs.subscribe(fn)
}

// Start resolves the persisted session: no stored token resolves to
// StatusAnonymous with zero network calls; a stored token is trusted only
// if the profile fetch succeeds, otherwise everything is cleared. Failures
// are internal and never surface to a caller.
func (m *SessionManager) Start(ctx context.Context) {
	token, ok, err := m.store.Get(ctx, AccessTokenKey)
	if err != nil {
		m.logger.Error("start: unable to read persisted token", "error", err)
		m.resolveAnonymous(ctx, "store read failed")
		return
	}

	if !ok || token == "" {
		m.resolveAnonymous(ctx, "no persisted token")
		return
	}

	if m.validator != nil {
		if err := m.validator.Validate(token); err != nil {
			m.logger.Info("start: persisted token rejected locally", "error", err)
			m.resolveAnonymous(ctx, "token rejected")
			return
		}
	}

	_, hasRefresh, _ := m.store.Get(ctx, RefreshTokenKey)

	m.mu.Lock()
	m.accessToken = token
	m.hasRefreshToken = hasRefresh
	m.mu.Unlock()

	user, err := m.fetchProfile(ctx)
	if err != nil {
		m.logger.Info("start: profile fetch failed, resolving anonymous", "error", err)
		m.resolveAnonymous(ctx, "profile fetch failed")
		return
	}

	m.mu.Lock()
	if err := guardTransition(m.status, StatusAuthenticated); err != nil {
		m.mu.Unlock()
		m.logger.Error("start: illegal transition", "error", err)
		return
	}
	m.user = user
	m.status = StatusAuthenticated
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.subs.publish(snapshot)
	m.emit(ctx, ActivityEventStartResolved, userID(user), map[string]any{
		"status": string(StatusAuthenticated),
	})
}

// Login exchanges credentials for a session. On failure the prior state is
// left untouched: no partial token writes, no credential changes.
func (m *SessionManager) Login(ctx context.Context, identifier, secret string) error {
	payload := LoginRequest{Email: identifier, Password: secret}
	if err := payload.Validate(); err != nil {
		return invalidPayload(err)
	}

	return m.exchange(ctx, loginPath, payload, loginFallback,
		ActivityEventLoginSuccess, ActivityEventLoginFailure)
}

// Register submits a registration payload. Same contract as Login: the
// response must yield both tokens and a user record, applied atomically.
func (m *SessionManager) Register(ctx context.Context, payload RegisterRequest) error {
	if err := payload.Validate(); err != nil {
		return invalidPayload(err)
	}

	return m.exchange(ctx, registerPath, payload, registerFallback,
		ActivityEventRegisterSuccess, ActivityEventRegisterFailure)
}

// exchange performs a credential-exchange call (login or register) and
// applies the full session replacement on success.
func (m *SessionManager) exchange(ctx context.Context, path string, payload any, fallback string, successEvent, failureEvent ActivityEventType) error {
	resp, err := m.transport.Do(ctx, http.MethodPost, path, payload)
	if err != nil {
		m.logger.Error("credential exchange transport failure", "path", path, "error", err)
		m.emit(ctx, failureEvent, "", map[string]any{"error": err.Error()})
		return transportError(err, fallback)
	}

	if !resp.OK() {
		message := DecodeErrorBody(resp.Body).Normalize(fallback)
		m.emit(ctx, failureEvent, "", map[string]any{
			"status":  resp.StatusCode,
			"message": message,
		})
		return remoteError(message)
	}

	var body authResponse
	if err := resp.Decode(&body); err != nil {
		m.logger.Error("credential exchange returned malformed body", "path", path, "error", err)
		return responseError(fallback)
	}
	if body.Access == "" || body.Refresh == "" || len(body.User) == 0 {
		m.logger.Error("credential exchange response missing fields", "path", path)
		return responseError(fallback)
	}

	user, err := decodeUser(body.User)
	if err != nil {
		m.logger.Error("credential exchange returned malformed user", "path", path, "error", err)
		return responseError(fallback)
	}

	if err := m.applyExchange(ctx, body.Access, body.Refresh, user); err != nil {
		m.emit(ctx, failureEvent, userID(user), map[string]any{"error": err.Error()})
		return storeError(err, fallback)
	}

	m.emit(ctx, successEvent, userID(user), nil)
	return nil
}

// applyExchange commits a full session replacement: both tokens persisted,
// memory updated, status moved to authenticated. Holding the lock across
// the store writes keeps readers from observing a half-applied update.
func (m *SessionManager) applyExchange(ctx context.Context, access, refresh string, user *User) error {
	m.mu.Lock()

	if err := guardTransition(m.status, StatusAuthenticated); err != nil {
		m.mu.Unlock()
		return err
	}

	if err := m.store.Set(ctx, AccessTokenKey, access); err != nil {
		m.mu.Unlock()
		return err
	}
	if err := m.store.Set(ctx, RefreshTokenKey, refresh); err != nil {
		if rerr := m.store.Remove(ctx, AccessTokenKey); rerr != nil {
			m.logger.Warn("unable to roll back access token write", "error", rerr)
		}
		m.mu.Unlock()
		return err
	}

	m.accessToken = access
	m.hasRefreshToken = true
	m.user = user
	m.status = StatusAuthenticated
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.subs.publish(snapshot)
	return nil
}

// RenewAccessToken exchanges the refresh token for a new access token.
// Concurrent callers attach to the same in-flight attempt. Any failure is
// terminal for the session: both tokens are cleared and the manager
// demotes to StatusAnonymous.
func (m *SessionManager) RenewAccessToken(ctx context.Context) error {
	m.renewMu.Lock()
	if attempt := m.inflight; attempt != nil {
		m.renewMu.Unlock()
		select {
		case <-attempt.done:
			return attempt.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	attempt := &renewalAttempt{done: make(chan struct{})}
	m.inflight = attempt
	m.renewMu.Unlock()

	attempt.err = m.renew(ctx)

	m.renewMu.Lock()
	m.inflight = nil
	m.renewMu.Unlock()
	close(attempt.done)

	return attempt.err
}

func (m *SessionManager) renew(ctx context.Context) error {
	refresh, ok, err := m.store.Get(ctx, RefreshTokenKey)
	if err != nil {
		m.logger.Error("renew: unable to read refresh token", "error", err)
		m.expire(ctx, "store read failed")
		return storeError(err, renewFallback)
	}
	if !ok || refresh == "" {
		m.expire(ctx, "missing refresh token")
		return ErrNoRefreshToken
	}

	m.mu.RLock()
	epoch := m.epoch
	m.mu.RUnlock()

	resp, err := m.transport.Do(ctx, http.MethodPost, refreshPath, refreshRequest{Refresh: refresh})
	if err != nil {
		m.logger.Error("renew: transport failure", "error", err)
		m.expireIfCurrent(ctx, epoch, "transport failure")
		return transportError(err, renewFallback)
	}

	if !resp.OK() {
		message := DecodeErrorBody(resp.Body).Normalize(renewFallback)
		m.logger.Info("renew: refresh token rejected", "status", resp.StatusCode)
		m.expireIfCurrent(ctx, epoch, "refresh rejected")
		return remoteError(message)
	}

	var body refreshResponse
	if err := resp.Decode(&body); err != nil || body.Access == "" {
		m.logger.Error("renew: malformed refresh response", "error", err)
		m.expireIfCurrent(ctx, epoch, "malformed response")
		return responseError(renewFallback)
	}

	m.mu.Lock()
	if m.epoch != epoch {
		// a logout resolved while the call was in flight; its clearing
		// effect wins and the fresh token is discarded
		m.mu.Unlock()
		m.logger.Info("renew: session logged out mid-flight, discarding result")
		return ErrSessionRevoked
	}

	if err := m.store.Set(ctx, AccessTokenKey, body.Access); err != nil {
		snapshot, from := m.clearLocked(ctx)
		m.mu.Unlock()
		m.afterClear(ctx, snapshot, from, ActivityEventExpired, "store write failed")
		return storeError(err, renewFallback)
	}

	m.accessToken = body.Access
	m.status = StatusAuthenticated
	snapshot := m.snapshotLocked()
	user := m.user
	m.mu.Unlock()

	m.subs.publish(snapshot)
	m.emit(ctx, ActivityEventRenewSuccess, userID(user), nil)
	return nil
}

// Logout unconditionally clears both tokens, the in-memory session, and the
// current user. It never fails and is safe to call from any state.
func (m *SessionManager) Logout(ctx context.Context) {
	m.mu.Lock()
	snapshot, from := m.clearLocked(ctx)
	m.mu.Unlock()

	m.afterClear(ctx, snapshot, from, ActivityEventLogout, "user logout")
}

// UpdateUser replaces the current-user snapshot locally. No tokens are
// touched and no network activity occurs.
func (m *SessionManager) UpdateUser(user *User) {
	m.mu.Lock()
	m.user = cloneUser(user)
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.subs.publish(snapshot)
}

// EnsureFresh renews the access token if it is expired, or will be within
// skew. A missing or unparseable token is left for the next 401 to handle.
func (m *SessionManager) EnsureFresh(ctx context.Context, skew time.Duration) error {
	m.mu.RLock()
	token := m.accessToken
	m.mu.RUnlock()

	if token == "" || !TokenExpired(token, skew, m.now()) {
		return nil
	}

	return m.RenewAccessToken(ctx)
}

func (m *SessionManager) fetchProfile(ctx context.Context) (*User, error) {
	resp, err := m.transport.Do(ctx, http.MethodGet, profilePath, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, remoteError(DecodeErrorBody(resp.Body).Normalize("Profile fetch failed"))
	}

	return decodeUser(resp.Body)
}

// resolveAnonymous clears any stale credentials and settles the session in
// StatusAnonymous during startup.
func (m *SessionManager) resolveAnonymous(ctx context.Context, reason string) {
	m.mu.Lock()
	snapshot, from := m.clearLocked(ctx)
	m.mu.Unlock()

	m.subs.publish(snapshot)
	m.emit(ctx, ActivityEventStartResolved, "", map[string]any{
		"status": string(StatusAnonymous),
		"reason": reason,
		"from":   string(from),
	})
}

// expire demotes to anonymous after a terminal renewal failure.
func (m *SessionManager) expire(ctx context.Context, reason string) {
	m.mu.Lock()
	snapshot, from := m.clearLocked(ctx)
	m.mu.Unlock()

	m.afterClear(ctx, snapshot, from, ActivityEventExpired, reason)
}

// expireIfCurrent demotes only when no logout resolved since epoch was
// captured; a completed logout already left the session cleared.
func (m *SessionManager) expireIfCurrent(ctx context.Context, epoch uint64, reason string) {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return
	}
	snapshot, from := m.clearLocked(ctx)
	m.mu.Unlock()

	m.afterClear(ctx, snapshot, from, ActivityEventExpired, reason)
}

// clearLocked wipes persisted tokens and in-memory state; callers hold mu.
// Store failures are logged, never propagated: logout cannot fail.
func (m *SessionManager) clearLocked(ctx context.Context) (Snapshot, Status) {
	from := m.status
	m.epoch++

	if err := m.store.Remove(ctx, AccessTokenKey); err != nil {
		m.logger.Warn("unable to remove persisted access token", "error", err)
	}
	if err := m.store.Remove(ctx, RefreshTokenKey); err != nil {
		m.logger.Warn("unable to remove persisted refresh token", "error", err)
	}

	m.accessToken = ""
	m.hasRefreshToken = false
	m.user = nil
	m.status = StatusAnonymous

	return m.snapshotLocked(), from
}

// afterClear publishes the cleared snapshot and emits the matching event.
// The expiry event only fires on a real demotion, so an already-anonymous
// logout stays silent for consumers tracking session expiry.
func (m *SessionManager) afterClear(ctx context.Context, snapshot Snapshot, from Status, event ActivityEventType, reason string) {
	m.subs.publish(snapshot)

	if event == ActivityEventExpired && from != StatusAuthenticated {
		return
	}

	m.emit(ctx, event, "", map[string]any{
		"from":   string(from),
		"reason": reason,
	})
}

func (m *SessionManager) snapshotLocked() Snapshot {
	return Snapshot{
		Status:          m.status,
		User:            cloneUser(m.user),
		HasAccessToken:  m.accessToken != "",
		HasRefreshToken: m.hasRefreshToken,
		At:              m.now(),
	}
}

func (m *SessionManager) emit(ctx context.Context, eventType ActivityEventType, uid string, metadata map[string]any) {
	if metadata == nil {
		metadata = map[string]any{}
	}

	event := ActivityEvent{
		EventType:  eventType,
		UserID:     uid,
		Metadata:   metadata,
		OccurredAt: m.now(),
	}

	if err := m.sink.Record(ctx, event); err != nil {
		m.logger.Warn("activity sink record error: %v", err)
	}
}

func userID(user *User) string {
	if user == nil {
		return ""
	}
	return strconv.FormatInt(user.ID, 10)
}

type renewalAttempt struct {
	done chan struct{}
	err  error
}

type authResponse struct {
	Access  string          `json:"access"`
	Refresh string          `json:"refresh"`
	User    json.RawMessage `json:"user"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// invalidPayload wraps a local non-emptiness failure.
func invalidPayload(err error) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
		WithTextCode("INVALID_PAYLOAD").
		WithCode(goerrors.CodeBadRequest)
}

// storeError covers credential-store failures during a commit.
func storeError(err error, fallback string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, fallback).
		WithTextCode("STORE_FAILURE").
		WithCode(goerrors.CodeInternal)
}
