package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openstage/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClientAttachesBearerToken(t *testing.T) {
	var gotAuth, gotContentType, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	defer server.Close()

	client := session.NewAPIClient(session.APIClientConfig{
		BaseURL: server.URL,
		Credentials: session.CredentialSourceFunc(func() (string, bool) {
			return "AT1", true
		}),
	})

	resp, err := client.Do(context.Background(), http.MethodPost, "/auth/login/", map[string]string{"email": "a@b.com"})
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.Equal(t, "Bearer AT1", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "/auth/login/", gotPath)
}

func TestAPIClientOmitsHeaderWithoutToken(t *testing.T) {
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := session.NewAPIClient(session.APIClientConfig{
		BaseURL: server.URL,
		Credentials: session.CredentialSourceFunc(func() (string, bool) {
			return "", false
		}),
	})

	_, err := client.Do(context.Background(), http.MethodGet, "/profile/", nil)
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestAPIClientReturnsNon2xxAsResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid credentials"}`))
	}))
	defer server.Close()

	client := session.NewAPIClient(session.APIClientConfig{BaseURL: server.URL})

	resp, err := client.Do(context.Background(), http.MethodPost, "auth/login/", map[string]string{})
	require.NoError(t, err, "a rejection that reached the service is data, not an error")

	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	decoded := session.DecodeErrorBody(resp.Body)
	assert.Equal(t, "Invalid credentials", decoded.Normalize("Login failed"))
}

func TestAPIClientReportsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := session.NewAPIClient(session.APIClientConfig{BaseURL: server.URL})

	resp, err := client.Do(context.Background(), http.MethodGet, "/profile/", nil)
	assert.Error(t, err)
	assert.Nil(t, resp)
}
