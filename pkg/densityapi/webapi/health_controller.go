package webapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type HealthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

func (c *HealthController) Health(ctx echo.Context) error {
	sqlDB, err := c.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx.Request().Context())
	}

	if err != nil {
		return ctx.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "message": err.Error()})
	}

	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
