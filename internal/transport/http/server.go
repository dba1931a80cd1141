// Package http provides the HTTP server implementation for the backend.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/xiaot623/replyflow/internal/service"
	v1 "github.com/xiaot623/replyflow/internal/transport/http/v1"
)

// NewServer creates and configures the backend HTTP server. It serves both
// the agent-facing pipeline endpoints and the dashboard admin endpoints.
func NewServer(svc *service.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	v1Handler := v1.NewHandler(svc)
	v1Handler.RegisterRoutes(e)

	return e
}
