package controller

import (
	"net/http"

	"artbid-api/internal/service"

	"github.com/labstack/echo"
)

type diagnosticRoutesHandler struct {
	diagnosticService service.Diagnostics
}

func newDiagnosticRoutesHandler(outer *echo.Group, services *service.Services) *diagnosticRoutesHandler {
	h := &diagnosticRoutesHandler{diagnosticService: services.Diagnostics}

	outer.GET("/ping", h.Ping)

	return h
}

// /ping answers 503 with retryable set while storage is unreachable.
func (h *diagnosticRoutesHandler) Ping(c echo.Context) error {
	if err := h.diagnosticService.Ping(c.Request().Context()); err != nil {
		return respondError(c, err)
	}

	return c.String(http.StatusOK, "ok")
}
