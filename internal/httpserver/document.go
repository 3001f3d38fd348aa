package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/documents_api/internal/logging"
	"github.com/Skotchmaster/documents_api/internal/middleware/auth"
	"github.com/Skotchmaster/documents_api/internal/middleware/validate"
	"github.com/Skotchmaster/documents_api/internal/repo"
	"github.com/Skotchmaster/documents_api/internal/service"
	"github.com/Skotchmaster/documents_api/internal/transport"
	"github.com/Skotchmaster/documents_api/internal/util"
)

type DocumentHTTP struct {
	Svc *service.DocumentService
}

func userID(c echo.Context) string {
	if claims, ok := auth.Claims(c); ok {
		return claims.ID
	}
	return ""
}

func (h *DocumentHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "document.create")

	req, _ := validate.Body[transport.CreateDocumentRequest](c)
	doc, err := h.Svc.Create(ctx, req, userID(c))
	if err != nil {
		l.Error("create_document_error", "status", 400, "reason", "cannot store document", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, internalErrorMessage)
	}

	l.Info("create_document_success", "document_id", doc.ID)
	return c.JSON(http.StatusCreated, transport.BuildDocument(*doc))
}

func (h *DocumentHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "document.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 0)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	_, limit := util.Calculate(page, size)
	filter := repo.DocumentFilter{
		Title:  c.QueryParam("title"),
		Author: c.QueryParam("author"),
	}

	items, total, err := h.Svc.List(ctx, filter, page, limit)
	if err != nil {
		l.Error("list_documents_error", "status", 400, "reason", "cannot list documents", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, internalErrorMessage)
	}

	l.Info("list_documents_success", "count", len(items), "total", total)
	return c.JSON(http.StatusOK, transport.BuildDocumentList(items, total, max(page, 0), limit))
}

func (h *DocumentHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "document.search")

	q := c.QueryParam("q")
	if q == "" {
		l.Warn("search_documents_error", "status", 400, "reason", "empty query")
		return echo.NewHTTPError(http.StatusBadRequest, `"q" is required`)
	}
	page := util.ParseIntDefault(c.QueryParam("page"), 0)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	_, limit := util.Calculate(page, size)

	items, total, err := h.Svc.Search(ctx, q, page, limit)
	if err != nil {
		l.Error("search_documents_error", "status", 400, "reason", "search failed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, internalErrorMessage)
	}

	l.Info("search_documents_success", "count", len(items), "total", total)
	return c.JSON(http.StatusOK, transport.BuildDocumentList(items, total, max(page, 0), limit))
}

func (h *DocumentHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param(validate.DocumentIDParam)
	l := logging.FromContext(ctx).With("handler", "document.get", "document_id", id)

	doc, err := h.Svc.Get(ctx, id)
	if err != nil {
		return documentError(l, "get_document_error", id, err)
	}

	l.Info("get_document_success")
	return c.JSON(http.StatusOK, transport.BuildDocument(*doc))
}

func (h *DocumentHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param(validate.DocumentIDParam)
	l := logging.FromContext(ctx).With("handler", "document.update", "document_id", id)

	req, _ := validate.Body[transport.UpdateDocumentRequest](c)
	doc, err := h.Svc.Update(ctx, id, req, userID(c))
	if err != nil {
		return documentError(l, "update_document_error", id, err)
	}

	l.Info("update_document_success")
	return c.JSON(http.StatusOK, transport.BuildDocument(*doc))
}

func (h *DocumentHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param(validate.DocumentIDParam)
	l := logging.FromContext(ctx).With("handler", "document.delete", "document_id", id)

	if err := h.Svc.Delete(ctx, id, userID(c)); err != nil {
		return documentError(l, "delete_document_error", id, err)
	}

	l.Info("delete_document_success")
	return c.NoContent(http.StatusNoContent)
}

func documentError(l *slog.Logger, event, id string, err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		l.Warn(event, "status", 404, "reason", "document not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, validate.NotFoundMessage(id))
	}
	l.Error(event, "status", 400, "reason", "database error", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, internalErrorMessage)
}
