package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorBodyKind tags the decoded shape of a remote rejection body.
type ErrorBodyKind int

const (
	// ErrorBodyUnrecognized covers empty, non-JSON, and non-object bodies.
	ErrorBodyUnrecognized ErrorBodyKind = iota
	// ErrorBodySingleMessage is `{"error": "..."}`.
	ErrorBodySingleMessage
	// ErrorBodyFieldErrors maps field names to one-or-many messages.
	ErrorBodyFieldErrors
)

// FieldError holds the validation messages reported for one field.
type FieldError struct {
	Field    string
	Messages []string
}

// RemoteError is the decoded form of a rejection body. The decode happens
// once at the response boundary; call sites only switch on Kind.
type RemoteError struct {
	Kind    ErrorBodyKind
	Message string
	Fields  []FieldError
}

const singleMessageKey = "error"

// DecodeErrorBody classifies a rejection body into the RemoteError tagged
// union. Field order follows the document, so the normalized string is
// reproducible for a given input.
func DecodeErrorBody(body []byte) RemoteError {
	fields, ok := decodeOrderedObject(body)
	if !ok || len(fields) == 0 {
		return RemoteError{Kind: ErrorBodyUnrecognized}
	}

	for _, f := range fields {
		if f.Field == singleMessageKey && len(f.Messages) == 1 {
			return RemoteError{Kind: ErrorBodySingleMessage, Message: f.Messages[0]}
		}
	}

	return RemoteError{Kind: ErrorBodyFieldErrors, Fields: fields}
}

// Normalize renders the decoded body as a single human-readable string,
// falling back to the operation's fixed default message.
func (e RemoteError) Normalize(fallback string) string {
	switch e.Kind {
	case ErrorBodySingleMessage:
		return e.Message
	case ErrorBodyFieldErrors:
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+": "+strings.Join(f.Messages, ", "))
		}
		return strings.Join(parts, "; ")
	default:
		return fallback
	}
}

// decodeOrderedObject walks the token stream of a top-level JSON object so
// key order is preserved; encoding/json maps would lose it.
func decodeOrderedObject(body []byte) ([]FieldError, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, false
	}

	var fields []FieldError
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, false
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, false
		}

		fields = append(fields, FieldError{Field: key, Messages: decodeMessages(raw)})
	}

	return fields, true
}

// decodeMessages accepts a bare string, a list of strings, or anything else
// the service might emit, rendering non-string values verbatim.
func decodeMessages(raw json.RawMessage) []string {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}
	}

	var many []json.RawMessage
	if err := json.Unmarshal(raw, &many); err == nil {
		out := make([]string, 0, len(many))
		for _, m := range many {
			var s string
			if err := json.Unmarshal(m, &s); err == nil {
				out = append(out, s)
				continue
			}
			out = append(out, strings.TrimSpace(string(m)))
		}
		return out
	}

	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return []string{fmt.Sprintf("%v", v)}
	}

	return []string{strings.TrimSpace(string(raw))}
}
