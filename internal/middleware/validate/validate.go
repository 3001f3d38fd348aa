// Package validate holds the request checks that run before the document
// and auth handlers. Each check either calls next or short-circuits with an
// *echo.HTTPError.
package validate

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Skotchmaster/documents_api/internal/logging"
	"github.com/Skotchmaster/documents_api/internal/repo"
	"github.com/Skotchmaster/documents_api/internal/transport"
	"github.com/Skotchmaster/documents_api/internal/validation"
)

const (
	bodyContextKey = "validated_body"

	DocumentIDParam = "documentId"
)

type Middleware struct {
	Documents repo.DocumentRepo
	Users     repo.UserRepo
}

// Body returns the request decoded by one of the body checks.
func Body[T any](c echo.Context) (T, bool) {
	v, ok := c.Get(bodyContextKey).(T)
	return v, ok
}

func bodyCheck[T any](schema validation.Schema, op string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := logging.FromContext(c.Request().Context()).With("middleware", op)

			raw, err := io.ReadAll(c.Request().Body)
			if err != nil {
				l.Warn("validation_error", "status", 400, "reason", "cannot read body", "error", err)
				return echo.NewHTTPError(http.StatusBadRequest, "Oops, something went wrong")
			}

			var req T
			if err := schema.Decode(raw, &req); err != nil {
				var verr *validation.Error
				if errors.As(err, &verr) {
					l.Warn("validation_error", "status", 400, "field", verr.Field, "reason", verr.Message)
					return echo.NewHTTPError(http.StatusBadRequest, verr.Message)
				}
				l.Error("validation_error", "status", 400, "reason", "cannot decode body", "error", err)
				return err
			}

			c.Set(bodyContextKey, req)
			return next(c)
		}
	}
}

func (m *Middleware) RegisterUserFields(next echo.HandlerFunc) echo.HandlerFunc {
	return bodyCheck[transport.RegisterRequest](validation.Register, "validate.register")(next)
}

func (m *Middleware) LoginUserFields(next echo.HandlerFunc) echo.HandlerFunc {
	return bodyCheck[transport.LoginRequest](validation.Login, "validate.login")(next)
}

func (m *Middleware) DocumentFields(next echo.HandlerFunc) echo.HandlerFunc {
	return bodyCheck[transport.CreateDocumentRequest](validation.CreateDocument, "validate.document")(next)
}

func (m *Middleware) UpdateDocumentFields(next echo.HandlerFunc) echo.HandlerFunc {
	return bodyCheck[transport.UpdateDocumentRequest](validation.UpdateDocument, "validate.update_document")(next)
}

func (m *Middleware) DocumentID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param(DocumentIDParam)
		if !primitive.IsValidObjectID(id) {
			msg := fmt.Sprintf("invalid document id=[%s]", id)
			logging.FromContext(c.Request().Context()).Warn("validation_error", "status", 400, "reason", msg)
			return echo.NewHTTPError(http.StatusBadRequest, msg)
		}
		return next(c)
	}
}

// DocumentExists ends the request with 404 when the document named by the
// path is not stored.
func (m *Middleware) DocumentExists(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		id := c.Param(DocumentIDParam)

		if _, err := m.Documents.FindByID(ctx, id); err != nil {
			l := logging.FromContext(ctx).With("middleware", "validate.document_exists")
			if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrInvalidID) {
				msg := NotFoundMessage(id)
				l.Warn("validation_error", "status", 404, "reason", msg)
				return echo.NewHTTPError(http.StatusNotFound, msg)
			}
			l.Error("validation_error", "status", 400, "reason", "cannot load document", "error", err)
			return err
		}
		return next(c)
	}
}

func (m *Middleware) EmailDoesNotExist(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "validate.email_does_not_exist")

		req, _ := Body[transport.RegisterRequest](c)
		user, err := m.Users.FindByEmail(ctx, req.Email)
		if err != nil {
			l.Error("validation_error", "status", 400, "reason", "cannot look up email", "error", err)
			return err
		}
		if user != nil {
			l.Warn("validation_error", "status", 400, "reason", "email already exists", "email", req.Email)
			return echo.NewHTTPError(http.StatusBadRequest, "email already exists")
		}
		return next(c)
	}
}

func (m *Middleware) EmailExists(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "validate.email_exists")

		req, _ := Body[transport.LoginRequest](c)
		user, err := m.Users.FindByEmail(ctx, req.Email)
		if err != nil {
			l.Error("validation_error", "status", 400, "reason", "cannot look up email", "error", err)
			return err
		}
		if user == nil {
			l.Warn("validation_error", "status", 404, "reason", "email not found", "email", req.Email)
			return echo.NewHTTPError(http.StatusNotFound, "email not found")
		}
		return next(c)
	}
}

func NotFoundMessage(id string) string {
	return fmt.Sprintf("Document w/ id=[%s] Not Found", id)
}
