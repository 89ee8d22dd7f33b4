package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/roastme/domain"
)

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoImage),
		errors.Is(err, domain.ErrInvalidImage),
		errors.Is(err, domain.ErrBlocked),
		errors.Is(err, domain.ErrParseFailure):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorResponse{Success: false, Error: message})
}

// respondError logs err against the request and writes the mapped response.
func respondError(c echo.Context, logger *zap.Logger, err error) error {
	status := statusFor(err)
	fields := []zap.Field{
		zap.String("request_id", requestID(c)),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Roast request failed", fields...)
	} else {
		logger.Warn("Roast request rejected", fields...)
	}
	return errorJSON(c, status, domain.PublicMessage(err))
}

// errorHandler writes every error that escapes a handler or middleware, echo's
// own 404, 405 and 413 included, in the ErrorResponse envelope.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			if werr := respondError(c, logger, err); werr != nil {
				logger.Error("Failed to write error response", zap.Error(werr))
			}
			return
		}

		message := http.StatusText(he.Code)
		if he.Message != nil {
			message = fmt.Sprint(he.Message)
		}
		fields := []zap.Field{
			zap.String("request_id", requestID(c)),
			zap.Int("status", he.Code),
			zap.Error(err),
		}
		if he.Code >= http.StatusInternalServerError {
			logger.Error("Request failed", fields...)
		} else {
			logger.Debug("Request rejected", fields...)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(he.Code)
		} else {
			werr = errorJSON(c, he.Code, message)
		}
		if werr != nil {
			logger.Error("Failed to write error response", zap.Error(werr))
		}
	}
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
