package webclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/openstage/go-session"
	"github.com/openstage/go-session/webclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubManager satisfies session.Manager with canned behavior.
type stubManager struct {
	snapshot session.Snapshot

	loginErr      error
	registerErr   error
	loggedOut     bool
	loginEmail    string
	registerPhone string
}

func (s *stubManager) Start(ctx context.Context) {}

func (s *stubManager) Login(ctx context.Context, identifier, secret string) error {
	s.loginEmail = identifier
	return s.loginErr
}

func (s *stubManager) Register(ctx context.Context, payload session.RegisterRequest) error {
	s.registerPhone = payload.PhoneNumber
	return s.registerErr
}

func (s *stubManager) RenewAccessToken(ctx context.Context) error { return nil }

func (s *stubManager) Logout(ctx context.Context) { s.loggedOut = true }

func (s *stubManager) UpdateUser(user *session.User) {}

func (s *stubManager) Status() session.Status { return s.snapshot.Status }

func (s *stubManager) CurrentUser() *session.User { return s.snapshot.User }

func (s *stubManager) Snapshot() session.Snapshot { return s.snapshot }

func (s *stubManager) Subscribe(fn func(session.Snapshot)) func() { return func() {} }

func newTestApp(manager session.Manager) *fiber.App {
	return webclient.NewApp(webclient.WithManager(manager))
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func TestLoginShowRenders(t *testing.T) {
	app := newTestApp(&stubManager{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "form")
}

func TestLoginPostSuccessRedirectsToDashboard(t *testing.T) {
	manager := &stubManager{}
	app := newTestApp(manager)

	resp, err := app.Test(formRequest("/login", url.Values{
		"email":    {"a@b.com"},
		"password": {"secret"},
	}))
	require.NoError(t, err)

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Equal(t, "a@b.com", manager.loginEmail)
}

func TestLoginPostFailureRendersMessage(t *testing.T) {
	manager := &stubManager{loginErr: errors.New("Invalid credentials")}
	app := newTestApp(manager)

	resp, err := app.Test(formRequest("/login", url.Values{
		"email":    {"a@b.com"},
		"password": {"wrong"},
	}))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Invalid credentials")
}

func TestRegistrationCreateNormalizesPhone(t *testing.T) {
	manager := &stubManager{}
	app := newTestApp(manager)

	resp, err := app.Test(formRequest("/register", url.Values{
		"email":            {"a@b.com"},
		"username":         {"amps"},
		"password":         {"secret"},
		"password_confirm": {"secret"},
		"user_type":        {"musician"},
		"phone_number":     {"(212) 867-5309"},
	}))
	require.NoError(t, err)

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "+12128675309", manager.registerPhone)
}

func TestDashboardRedirectsAnonymous(t *testing.T) {
	app := newTestApp(&stubManager{
		snapshot: session.Snapshot{Status: session.StatusAnonymous},
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestDashboardRendersUserStats(t *testing.T) {
	app := newTestApp(&stubManager{
		snapshot: session.Snapshot{
			Status: session.StatusAuthenticated,
			User: &session.User{
				ID:        7,
				Email:     "venue@openstage.live",
				FirstName: "Blue",
				LastName:  "Note",
				UserType:  session.UserTypeVenue,
			},
			HasAccessToken:  true,
			HasRefreshToken: true,
		},
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	rendered := body(t, resp)
	assert.Contains(t, rendered, "Active Gigs")
	assert.Contains(t, rendered, "Blue")
}

func TestLogoutClearsAndRedirects(t *testing.T) {
	manager := &stubManager{
		snapshot: session.Snapshot{Status: session.StatusAuthenticated},
	}
	app := newTestApp(manager)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/logout", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.True(t, manager.loggedOut)
}
