package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"dataaccess-backend/internal/application/services"
	"dataaccess-backend/internal/domain/models"
)

// Options tune the HTTP surface
type Options struct {
	Addr      string
	RateLimit float64
	RateBurst int
}

// NewRouter builds the echo router with middleware and the resource routes
func NewRouter(opts Options, todos *services.TodoService) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = serializer{}
	e.HTTPErrorHandler = handleError

	e.Use(middleware.Recover())
	e.Use(requestID())
	e.Use(accessLog)
	if opts.RateLimit > 0 {
		e.Use(rateLimiter(opts.RateLimit, opts.RateBurst))
	}
	e.Use(principal)

	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api/v1")
	register(api, "/todos", todos.AccessLayer, func() *models.Todo { return &models.Todo{} })
	return e
}

// SetupServer sets up the HTTP server serving the resource API
func SetupServer(opts Options, todos *services.TodoService) *http.Server {
	return &http.Server{
		Addr:    opts.Addr,
		Handler: NewRouter(opts, todos),
	}
}
