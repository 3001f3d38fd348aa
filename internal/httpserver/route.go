package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/documents_api/internal/logging"
	"github.com/Skotchmaster/documents_api/internal/middleware/auth"
	"github.com/Skotchmaster/documents_api/internal/middleware/validate"
	"github.com/Skotchmaster/documents_api/internal/transport"
)

type Deps struct {
	DocumentHandler *DocumentHTTP
	AuthHandler     *AuthHTTP
	Validate        *validate.Middleware
	JWTSecret       []byte
	// Ready reports whether the database answers; nil means always ready.
	Ready func(ctx context.Context) error
	// SearchEnabled registers GET /api/v1/documents/search.
	SearchEnabled bool
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				logging.FromContext(c.Request().Context()).Warn("ready_check_failed", "error", err)
				return c.JSON(http.StatusBadRequest, transport.Response{Message: "not ready"})
			}
		}
		return c.NoContent(http.StatusOK)
	})

	v := d.Validate
	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register, v.RegisterUserFields, v.EmailDoesNotExist)
	v1.POST("/login", d.AuthHandler.Login, v.LoginUserFields, v.EmailExists)

	docs := v1.Group("/documents", auth.RequireBearer(d.JWTSecret))
	docs.POST("", d.DocumentHandler.Create, v.DocumentFields)
	docs.GET("", d.DocumentHandler.List)
	if d.SearchEnabled {
		docs.GET("/search", d.DocumentHandler.Search)
	}
	byID := "/:" + validate.DocumentIDParam
	docs.GET(byID, d.DocumentHandler.Get, v.DocumentID, v.DocumentExists)
	docs.PUT(byID, d.DocumentHandler.Update, v.DocumentID, v.DocumentExists, v.UpdateDocumentFields)
	docs.DELETE(byID, d.DocumentHandler.Delete, v.DocumentID, v.DocumentExists)
}
