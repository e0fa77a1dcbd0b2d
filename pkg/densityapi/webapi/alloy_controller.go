package webapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/materials-commons/partdensity/pkg/registry"
)

type AlloyController struct {
	refData *registry.ReferenceData
}

func NewAlloyController(refData *registry.ReferenceData) *AlloyController {
	return &AlloyController{refData: refData}
}

func (c *AlloyController) ListAlloys(ctx echo.Context) error {
	alloys, err := c.refData.ListAlloys()
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, alloys)
}

func (c *AlloyController) CreateAlloy(ctx echo.Context) error {
	var req registry.AlloyInput
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	alloy, err := c.refData.CreateAlloy(req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, alloy)
}

func (c *AlloyController) GetAlloy(ctx echo.Context) error {
	alloyID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	alloy, err := c.refData.GetAlloy(alloyID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, alloy)
}

func (c *AlloyController) GetAlloyBySlug(ctx echo.Context) error {
	alloy, err := c.refData.GetAlloyBySlug(ctx.Param("slug"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, alloy)
}

func (c *AlloyController) UpdateAlloy(ctx echo.Context) error {
	var req registry.AlloyInput

	alloyID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := ctx.Bind(&req); err != nil {
		return err
	}

	alloy, err := c.refData.UpdateAlloy(alloyID, req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, alloy)
}

func (c *AlloyController) DeleteAlloy(ctx echo.Context) error {
	alloyID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.refData.DeleteAlloy(alloyID); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}
