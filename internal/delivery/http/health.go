package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"portfolio-analyzer/internal/dto"
)

func (h *HttpAPIHandler) SetupHealth(base *echo.Group) {
	base.GET("/health", h.health)
}

func (h *HttpAPIHandler) health(c echo.Context) error {
	// Reports configuration presence only, never the key itself.
	return c.JSON(http.StatusOK, dto.HealthResponse{
		Status:           "ok",
		Model:            h.cfg.Gemini.Model,
		APIKeyConfigured: h.cfg.Gemini.APIKey != "",
	})
}
