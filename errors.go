package session

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeNoRefreshToken   = "NO_REFRESH_TOKEN"
	textCodeRemoteRejected   = "REMOTE_REJECTED"
	textCodeTransportFailure = "TRANSPORT_FAILURE"
	textCodeSessionRevoked   = "SESSION_REVOKED"
	textCodeInvalidResponse  = "INVALID_RESPONSE"
)

// ErrNoRefreshToken is returned when renewal is attempted with no refresh
// token persisted locally; no network call is made.
var ErrNoRefreshToken = goerrors.New("no refresh token available", goerrors.CategoryAuth).
	WithTextCode(textCodeNoRefreshToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrSessionRevoked is returned when an in-flight renewal resolves after the
// session was logged out; its result is discarded.
var ErrSessionRevoked = goerrors.New("session was logged out while renewing", goerrors.CategoryConflict).
	WithTextCode(textCodeSessionRevoked).
	WithCode(goerrors.CodeConflict)

// remoteError wraps a normalized remote rejection so consumers can render
// the message inline.
func remoteError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryValidation).
		WithTextCode(textCodeRemoteRejected).
		WithCode(goerrors.CodeBadRequest)
}

// transportError wraps a network-level failure behind the operation's fixed
// fallback message; the cause is preserved for logs.
func transportError(err error, fallback string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, fallback).
		WithTextCode(textCodeTransportFailure)
}

// responseError covers 2xx responses whose body is missing required fields.
func responseError(fallback string) *goerrors.Error {
	return goerrors.New(fallback, goerrors.CategoryInternal).
		WithTextCode(textCodeInvalidResponse).
		WithCode(goerrors.CodeInternal)
}

// UserMessage extracts the human-readable message carried by an operation
// failure, suitable for inline rendering next to a form.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Message
	}

	return err.Error()
}
