package webapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/materials-commons/partdensity/pkg/registry"
)

type ElementController struct {
	refData *registry.ReferenceData
}

func NewElementController(refData *registry.ReferenceData) *ElementController {
	return &ElementController{refData: refData}
}

func (c *ElementController) ListElements(ctx echo.Context) error {
	elements, err := c.refData.ListElements()
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, elements)
}

func (c *ElementController) CreateElement(ctx echo.Context) error {
	var req registry.ElementInput
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	element, err := c.refData.CreateElement(req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, element)
}

func (c *ElementController) GetElement(ctx echo.Context) error {
	element, err := c.refData.GetElement(ctx.Param("symbol"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, element)
}

func (c *ElementController) UpdateElement(ctx echo.Context) error {
	var req registry.ElementInput
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	element, err := c.refData.UpdateElement(ctx.Param("symbol"), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, element)
}

func (c *ElementController) DeleteElement(ctx echo.Context) error {
	if err := c.refData.DeleteElement(ctx.Param("symbol")); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}
