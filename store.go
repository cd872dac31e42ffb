package session

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/goliatone/hashid/pkg/hashid"
	"golang.org/x/crypto/chacha20poly1305"
)

// Storage keys, matching the keys the platform's web client has always
// used so sessions survive a client swap against the same store.
const (
	AccessTokenKey  = "token"
	RefreshTokenKey = "refreshToken"
)

// MemoryStore is a process-local CredentialStore, the default for tests and
// short-lived tools.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

// Get implements CredentialStore.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

// Set implements CredentialStore.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Remove implements CredentialStore.
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// EncryptedStore seals values with XChaCha20-Poly1305 before handing them
// to the wrapped store, so tokens never sit on disk in the clear.
type EncryptedStore struct {
	inner CredentialStore
	aead  cipher.AEAD
}

// NewEncryptedStore wraps a store with a 32-byte key.
func NewEncryptedStore(inner CredentialStore, key []byte) (*EncryptedStore, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("session: invalid encryption key: %w", err)
	}
	return &EncryptedStore{inner: inner, aead: aead}, nil
}

// Get implements CredentialStore.
func (s *EncryptedStore) Get(ctx context.Context, key string) (string, bool, error) {
	sealed, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}

	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", false, fmt.Errorf("session: corrupt sealed value for %q: %w", key, err)
	}
	if len(raw) < chacha20poly1305.NonceSizeX {
		return "", false, fmt.Errorf("session: sealed value for %q is truncated", key)
	}

	nonce, ciphertext := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", false, fmt.Errorf("session: unable to open sealed value for %q: %w", key, err)
	}

	return string(plaintext), true, nil
}

// Set implements CredentialStore.
func (s *EncryptedStore) Set(ctx context.Context, key, value string) error {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("session: unable to generate nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return s.inner.Set(ctx, key, base64.StdEncoding.EncodeToString(sealed))
}

// Remove implements CredentialStore.
func (s *EncryptedStore) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, key)
}

// NamespacedStore prefixes every key with a deterministic ID derived from
// the platform base URL, so one store can serve several environments
// without the tokens colliding.
type NamespacedStore struct {
	inner  CredentialStore
	prefix string
}

// NewNamespacedStore derives the namespace from the base URL.
func NewNamespacedStore(inner CredentialStore, baseURL string) (*NamespacedStore, error) {
	id, err := hashid.NewUUID(baseURL)
	if err != nil {
		return nil, fmt.Errorf("session: unable to derive namespace for %q: %w", baseURL, err)
	}
	return &NamespacedStore{inner: inner, prefix: id.String() + ":"}, nil
}

// Get implements CredentialStore.
func (s *NamespacedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

// Set implements CredentialStore.
func (s *NamespacedStore) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

// Remove implements CredentialStore.
func (s *NamespacedStore) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, s.prefix+key)
}
