package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Response is the outcome of a request that reached the service. Non-2xx
// statuses are data, not errors; callers decode Body accordingly.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the response carries a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into out.
func (r *Response) Decode(out any) error {
	return json.Unmarshal(r.Body, out)
}

// APIClientConfig holds the settings for the platform API client.
type APIClientConfig struct {
	BaseURL string

	// Credentials yields the bearer token attached to each request. The
	// session manager is normally the source, keeping the attached token
	// and the persisted one from ever diverging.
	Credentials CredentialSource

	HTTPClient *http.Client
	Logger     Logger
}

// APIClient talks to the platform's HTTP API.
type APIClient struct {
	baseURL string
	creds   CredentialSource
	client  *http.Client
	logger  Logger
}

var _ Transport = (*APIClient)(nil)

// NewAPIClient creates a client for the platform API.
func NewAPIClient(cfg APIClientConfig) *APIClient {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = defLogger{}
	}

	return &APIClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		creds:   cfg.Credentials,
		client:  client,
		logger:  logger,
	}
}

// WithCredentials sets the credential source; used when the manager is
// constructed after the client.
func (c *APIClient) WithCredentials(creds CredentialSource) *APIClient {
	c.creds = creds
	return c
}

// Do implements Transport.
func (c *APIClient) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("session: unable to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.creds != nil {
		if token, ok := c.creds.AccessToken(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{StatusCode: resp.StatusCode, Body: payload}, nil
}
