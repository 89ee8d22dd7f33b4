package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/roastme/domain"
	"github.com/satriahrh/roastme/internal/imageprep"
	"github.com/satriahrh/roastme/internal/websocket"
	"github.com/satriahrh/roastme/usecase"
)

type handler struct {
	roast  *usecase.RoastService
	hub    *websocket.Hub
	logger *zap.Logger
}

func (h *handler) health(c echo.Context) error {
	resp := HealthResponse{Status: "ok", Service: serviceName}
	if h.hub != nil {
		resp.Clients = h.hub.ClientCount()
	}
	return c.JSON(http.StatusOK, resp)
}

// roastImage accepts a JSON body with a base64 image or a multipart upload
// in the "image" field.
func (h *handler) roastImage(c echo.Context) error {
	if err := h.roast.Ready(); err != nil {
		return respondError(c, h.logger, err)
	}

	raw, err := readImage(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.logger.Info("Roast request received",
		zap.String("request_id", requestID(c)),
		zap.Int("imageBytes", len(raw)))

	outcome, err := h.roast.Roast(c.Request().Context(), raw)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	resp := RoastResponse{Success: true, Data: outcome.Roast}
	if outcome.Audio != nil {
		resp.Audio = outcome.Audio.Base64()
		resp.AudioMimeType = outcome.Audio.MIMEType
	}
	if outcome.Animation != nil {
		script := outcome.Animation.Script
		resp.Animation = &script
	}

	h.logger.Info("Roast request completed",
		zap.String("request_id", requestID(c)),
		zap.Bool("audio", outcome.Audio != nil),
		zap.Bool("animation", outcome.Animation != nil))
	return c.JSON(http.StatusOK, resp)
}

func readImage(c echo.Context) ([]byte, error) {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		file, err := c.FormFile("image")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				return nil, domain.ErrNoImage
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
		}
		src, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
		}
		defer src.Close()

		data, err := io.ReadAll(src)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
		}
		if len(data) == 0 {
			return nil, domain.ErrNoImage
		}
		return data, nil
	}

	var req RoastRequest
	if err := c.Bind(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNoImage, err)
	}
	return imageprep.DecodeBase64(req.Image)
}

func (h *handler) animate(c echo.Context) error {
	svc := h.roast.AnimationService()
	if svc == nil {
		return errorJSON(c, http.StatusServiceUnavailable, "Animation is disabled")
	}

	var req AnimationRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Warn("Failed to bind animation request",
			zap.String("request_id", requestID(c)),
			zap.Error(err))
		return errorJSON(c, http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.Transcript) == "" {
		return errorJSON(c, http.StatusBadRequest, "transcript is required")
	}

	var duration float64
	if req.Duration != nil {
		if *req.Duration <= 0 {
			return errorJSON(c, http.StatusBadRequest, "duration must be positive")
		}
		duration = *req.Duration
	}

	result := svc.Generate(c.Request().Context(), req.Transcript, duration)
	return c.JSON(http.StatusOK, AnimationResponse{
		Success:  true,
		Data:     result.Script,
		Issues:   result.Issues,
		Warnings: result.Warnings,
		Fallback: result.Fallback,
	})
}
