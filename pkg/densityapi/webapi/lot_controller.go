package webapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/materials-commons/partdensity/pkg/apperr"
	"github.com/materials-commons/partdensity/pkg/lot"
)

const dateLayout = "2006-01-02"

type LotController struct {
	orchestrator *lot.Orchestrator
}

func NewLotController(orchestrator *lot.Orchestrator) *LotController {
	return &LotController{orchestrator: orchestrator}
}

// parseDate reads a YYYY-MM-DD date; an empty string is the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apperr.Validationf("date must look like 2006-01-02, got %q", s)
	}

	return t, nil
}

func (c *LotController) ComputeLot(ctx echo.Context) error {
	var req struct {
		lot.LotRequest
		Date string `json:"date"`
	}

	if err := ctx.Bind(&req); err != nil {
		return err
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}
	req.LotRequest.Date = date

	result, err := c.orchestrator.Compute(ctx.Request().Context(), req.LotRequest)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, result)
}

func (c *LotController) NextSerialBlock(ctx echo.Context) error {
	var req struct {
		PartCode string `json:"part_code"`
		Date     string `json:"date"`
		Count    int    `json:"count"`
	}

	if err := ctx.Bind(&req); err != nil {
		return err
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}
	if date.IsZero() {
		date = time.Now()
	}

	serials, err := c.orchestrator.NextSerialBlock(ctx.Request().Context(), req.PartCode, date, req.Count)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{"part_code": req.PartCode, "serials": serials})
}
