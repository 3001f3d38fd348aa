package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/documents_api/internal/logging"
	"github.com/Skotchmaster/documents_api/internal/middleware/validate"
	"github.com/Skotchmaster/documents_api/internal/service"
	"github.com/Skotchmaster/documents_api/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	req, _ := validate.Body[transport.RegisterRequest](c)
	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		l.Error("register_error", "status", 400, "reason", "cannot store user", "email", req.Email, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, internalErrorMessage)
	}

	l.Info("register_success", "user_id", user.ID, "email", user.Email)
	return c.JSON(http.StatusCreated, transport.BuildUser(*user))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	req, _ := validate.Body[transport.LoginRequest](c)
	token, claims, err := h.Svc.Login(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			l.Warn("login_error", "status", 400, "reason", "invalid credentials", "email", req.Email)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
		}
		l.Error("login_error", "status", 400, "reason", "cannot log in", "email", req.Email, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, internalErrorMessage)
	}

	c.Response().Header().Set(echo.HeaderAuthorization, "Bearer "+token)
	l.Info("login_success", "user_id", claims.ID)
	return c.JSON(http.StatusOK, transport.LoginResponse{
		User: transport.LoginPayload{ID: claims.ID, Email: claims.Email, Expires: claims.Expires},
	})
}
