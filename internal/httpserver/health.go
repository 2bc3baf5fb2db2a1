package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/book_club/pkg/db"
	"github.com/Skotchmaster/book_club/pkg/logging"
)

type HealthHTTP struct {
	DB *gorm.DB
}

func (h *HealthHTTP) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (h *HealthHTTP) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := db.Ping(ctx, h.DB); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("readiness_failed")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "db": "down"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "db": "up"})
}
