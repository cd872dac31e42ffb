// Package webclient is the server-rendered consumer of the session
// lifecycle: login and registration forms plus the placeholder dashboard.
// It only reads Snapshot state and invokes Manager operations; tokens are
// never touched here.
package webclient

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/openstage/go-session"
)

type Routes struct {
	Login     string
	Logout    string
	Register  string
	Dashboard string
}

type Views struct {
	Login     string
	Register  string
	Dashboard string
}

// Controller wires the form pages to a session.Manager.
type Controller struct {
	Debug   bool
	Logger  session.Logger
	Manager session.Manager
	Routes  *Routes
	Views   *Views

	// PhoneRegion is the default region for normalizing registration
	// phone numbers, e.g. "US".
	PhoneRegion string
}

type Option func(*Controller) *Controller

func WithManager(manager session.Manager) Option {
	return func(c *Controller) *Controller {
		c.Manager = manager
		return c
	}
}

func WithLogger(logger session.Logger) Option {
	return func(c *Controller) *Controller {
		c.Logger = logger
		return c
	}
}

func WithDebug(debug bool) Option {
	return func(c *Controller) *Controller {
		c.Debug = debug
		return c
	}
}

// NewController builds a controller with the default route and view names.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		Routes: &Routes{
			Login:     "/login",
			Logout:    "/logout",
			Register:  "/register",
			Dashboard: "/",
		},
		Views: &Views{
			Login:     "login",
			Register:  "register",
			Dashboard: "dashboard",
		},
		PhoneRegion: "US",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Manager == nil {
		panic("Missing session.Manager in web client controller...")
	}

	return c
}

// RegisterRoutes attaches the controller's handlers to a fiber app.
func (c *Controller) RegisterRoutes(app *fiber.App) {
	app.Get(c.Routes.Login, c.LoginShow)
	app.Post(c.Routes.Login, c.LoginPost)
	app.Get(c.Routes.Logout, c.LogOut)
	app.Get(c.Routes.Register, c.RegistrationShow)
	app.Post(c.Routes.Register, c.RegistrationCreate)
	app.Get(c.Routes.Dashboard, c.Dashboard)
}

func (c *Controller) LoginShow(ctx *fiber.Ctx) error {
	return ctx.Render(c.Views.Login, fiber.Map{
		"error":  nil,
		"record": nil,
	})
}

func (c *Controller) LoginPost(ctx *fiber.Ctx) error {
	payload := new(session.LoginRequest)

	if err := ctx.BodyParser(payload); err != nil {
		c.logger().Error("login parse payload", "error", err)
		return ctx.Status(fiber.StatusBadRequest).Render(c.Views.Login, fiber.Map{
			"error":  "Error parsing form",
			"record": payload,
		})
	}

	if c.Debug {
		fmt.Println(print.MaybePrettyJSON(payload))
	}

	if err := c.Manager.Login(ctx.UserContext(), payload.Email, payload.Password); err != nil {
		c.logger().Info("login rejected", "error", err)
		return ctx.Render(c.Views.Login, fiber.Map{
			"error":  session.UserMessage(err),
			"record": payload,
		})
	}

	return ctx.Redirect(c.Routes.Dashboard, fiber.StatusSeeOther)
}

func (c *Controller) LogOut(ctx *fiber.Ctx) error {
	c.Manager.Logout(ctx.UserContext())
	return ctx.Redirect(c.Routes.Login, fiber.StatusTemporaryRedirect)
}

func (c *Controller) RegistrationShow(ctx *fiber.Ctx) error {
	return ctx.Render(c.Views.Register, fiber.Map{
		"error":  nil,
		"record": session.RegisterRequest{},
	})
}

func (c *Controller) RegistrationCreate(ctx *fiber.Ctx) error {
	payload := new(session.RegisterRequest)

	if err := ctx.BodyParser(payload); err != nil {
		c.logger().Error("register parse payload", "error", err)
		return ctx.Status(fiber.StatusBadRequest).Render(c.Views.Register, fiber.Map{
			"error":  "Error parsing form",
			"record": payload,
		})
	}

	payload.PhoneNumber = session.NormalizePhone(payload.PhoneNumber, c.PhoneRegion)

	if c.Debug {
		fmt.Println(print.MaybePrettyJSON(payload))
	}

	if err := c.Manager.Register(ctx.UserContext(), *payload); err != nil {
		c.logger().Info("registration rejected", "error", err)
		return ctx.Render(c.Views.Register, fiber.Map{
			"error":  session.UserMessage(err),
			"record": payload,
		})
	}

	return ctx.Redirect(c.Routes.Dashboard, fiber.StatusSeeOther)
}

func (c *Controller) Dashboard(ctx *fiber.Ctx) error {
	snapshot := c.Manager.Snapshot()

	if !snapshot.Authenticated() {
		return ctx.Redirect(c.Routes.Login, fiber.StatusSeeOther)
	}

	user := snapshot.User

	return ctx.Render(c.Views.Dashboard, fiber.Map{
		"user":     user,
		"is_venue": user.IsVenue(),
		"stats":    dashboardStats(user),
	})
}

func (c *Controller) logger() session.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return noopLogger{}
}

// Stat is one placeholder dashboard figure.
type Stat struct {
	Label  string
	Value  string
	Detail string
}

// dashboardStats returns the static quick-stats placeholders; real figures
// arrive once the reporting endpoints ship.
func dashboardStats(user *session.User) []Stat {
	if user.IsVenue() {
		return []Stat{
			{Label: "Active Gigs", Value: "5", Detail: "Currently posted"},
			{Label: "Applications Received", Value: "23", Detail: "This month"},
			{Label: "Revenue", Value: "$2,450", Detail: "This month"},
			{Label: "Musician Network", Value: "156", Detail: "Connected musicians"},
		}
	}

	return []Stat{
		{Label: "My Applications", Value: "8", Detail: "Pending review"},
		{Label: "Confirmed Gigs", Value: "3", Detail: "This month"},
		{Label: "Earnings", Value: "$1,250", Detail: "This month"},
		{Label: "Profile Views", Value: "89", Detail: "This month"},
	}
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
