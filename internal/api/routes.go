package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/satriahrh/roastme/internal/websocket"
	"github.com/satriahrh/roastme/usecase"
)

const serviceName = "roast-me"

var (
	corsAllowHeaders = []string{echo.HeaderContentType}
	corsAllowMethods = []string{http.MethodPost, http.MethodOptions}
)

// ConfigureMiddleware installs the error envelope, request IDs, access logs,
// panic recovery, permissive CORS and the upload size limit.
func ConfigureMiddleware(e *echo.Echo, maxUploadBytes int64, logger *zap.Logger) {
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(preflightWithoutOrigin)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: corsAllowHeaders,
		AllowMethods: corsAllowMethods,
	}))
	if maxUploadBytes > 0 {
		e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", max(maxUploadBytes>>10, 1))))
	}
}

// preflightWithoutOrigin answers OPTIONS requests that carry no Origin header,
// which the CORS middleware would otherwise send back without CORS headers.
func preflightWithoutOrigin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if req.Method != http.MethodOptions || req.Header.Get(echo.HeaderOrigin) != "" {
			return next(c)
		}
		header := c.Response().Header()
		header.Set(echo.HeaderAccessControlAllowOrigin, "*")
		header.Set(echo.HeaderAccessControlAllowMethods, strings.Join(corsAllowMethods, ","))
		header.Set(echo.HeaderAccessControlAllowHeaders, strings.Join(corsAllowHeaders, ","))
		return c.NoContent(http.StatusNoContent)
	}
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, roastService *usecase.RoastService, hub *websocket.Hub, logger *zap.Logger) {
	h := &handler{
		roast:  roastService,
		hub:    hub,
		logger: logger,
	}

	e.GET("/health", h.health)

	// The roast is served from the root and from /roast.
	e.POST("/", h.roastImage)
	e.POST("/roast", h.roastImage)

	e.POST("/animation", h.animate)

	e.GET("/ws/roast", func(c echo.Context) error {
		return websocket.HandleWebSocket(hub, c, logger)
	})
}
