package webclient

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
)

//go:embed views/*.html
var viewsFS embed.FS

// ViewEngine returns the embedded django view engine.
func ViewEngine() *django.Engine {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic("webclient: embedded views missing: " + err.Error())
	}
	return django.NewFileSystem(http.FS(sub), ".html")
}

// NewApp builds a fiber app with the embedded views and the controller's
// routes attached.
func NewApp(opts ...Option) *fiber.App {
	controller := NewController(opts...)

	app := fiber.New(fiber.Config{
		Views: ViewEngine(),
	})

	controller.RegisterRoutes(app)
	return app
}
