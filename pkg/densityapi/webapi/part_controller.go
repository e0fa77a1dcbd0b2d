package webapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/materials-commons/partdensity/pkg/density"
	"github.com/materials-commons/partdensity/pkg/metrics"
	"github.com/materials-commons/partdensity/pkg/registry"
)

type PartController struct {
	parts *registry.PartRegistry
}

func NewPartController(parts *registry.PartRegistry) *PartController {
	return &PartController{parts: parts}
}

func (c *PartController) CreatePart(ctx echo.Context) error {
	var req registry.PartInput
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	part, err := c.parts.Create(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, part)
}

func (c *PartController) UpdatePart(ctx echo.Context) error {
	var req registry.PartInput
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	part, err := c.parts.Update(ctx.Request().Context(), ctx.Param("code"), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, part)
}

func (c *PartController) GetPart(ctx echo.Context) error {
	part, err := c.parts.FetchByCode(ctx.Param("code"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, part)
}

func (c *PartController) GetPartName(ctx echo.Context) error {
	code := ctx.Param("code")
	name, err := c.parts.NameByCode(code)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]string{"part_code": code, "part_name": name})
}

func (c *PartController) DeletePart(ctx echo.Context) error {
	if err := c.parts.Delete(ctx.Param("code")); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (c *PartController) ListPartsByOwner(ctx echo.Context) error {
	userID, err := intParam(ctx, "user_id")
	if err != nil {
		return err
	}

	parts, err := c.parts.ListByOwner(userID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, parts)
}

func (c *PartController) ListPartCodesByOwner(ctx echo.Context) error {
	userID, err := intParam(ctx, "user_id")
	if err != nil {
		return err
	}

	codes, err := c.parts.ListCodesByOwner(userID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{"user_id": userID, "part_codes": codes})
}

// TheoreticalDensityResponse is a density.Result labelled with its part.
type TheoreticalDensityResponse struct {
	PartCode string `json:"part_code,omitempty"`
	density.Result
}

func (c *PartController) GetTheoreticalDensity(ctx echo.Context) error {
	code := ctx.Param("code")
	result, err := c.parts.TheoreticalDensity(code)
	metrics.Observe(metrics.OpTheoretical, err)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, TheoreticalDensityResponse{PartCode: code, Result: result})
}
