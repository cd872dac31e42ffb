package session

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Manager holds the operations a session consumer may invoke plus the
// read-only view of the current session.
type Manager interface {
	Start(ctx context.Context)
	Login(ctx context.Context, identifier, secret string) error
	Register(ctx context.Context, payload RegisterRequest) error
	RenewAccessToken(ctx context.Context) error
	Logout(ctx context.Context)
	UpdateUser(user *User)

	Status() Status
	CurrentUser() *User
	Snapshot() Snapshot
	Subscribe(fn func(Snapshot)) func()
}

// Transport issues requests against the remote platform API. Non-2xx
// responses are returned as values, not errors; an error means the request
// never produced a response (timeout, refused connection, bad payload).
type Transport interface {
	Do(ctx context.Context, method, path string, body any) (*Response, error)
}

// CredentialSource yields the bearer token a transport should attach to an
// outgoing request. The second return reports whether a token is present.
type CredentialSource interface {
	AccessToken() (string, bool)
}

// CredentialSourceFunc adapts a function into a CredentialSource.
type CredentialSourceFunc func() (string, bool)

// AccessToken satisfies the CredentialSource interface.
func (f CredentialSourceFunc) AccessToken() (string, bool) {
	if f == nil {
		return "", false
	}
	return f()
}

// CredentialStore persists tokens across process restarts. Implementations
// must treat a missing key as (value="", ok=false) with a nil error.
type CredentialStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// TokenValidator pre-screens an access token before it is trusted, without
// tying callers to a specific verification backend.
type TokenValidator interface {
	Validate(tokenString string) error
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) error

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) error {
	if f == nil {
		return nil
	}
	return f(tokenString)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
