package webapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/materials-commons/partdensity/pkg/apperr"
)

func intParam(ctx echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, apperr.Validationf("%s must be an integer, got %q", name, ctx.Param(name))
	}

	return v, nil
}
