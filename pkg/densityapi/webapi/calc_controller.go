package webapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/materials-commons/partdensity/pkg/apperr"
	"github.com/materials-commons/partdensity/pkg/density"
	"github.com/materials-commons/partdensity/pkg/metrics"
	"github.com/materials-commons/partdensity/pkg/registry"
)

// attachmentFlag accepts both true/false and the "yes"/"no" strings older
// clients send.
type attachmentFlag bool

func (f *attachmentFlag) UnmarshalJSON(b []byte) error {
	if bytes.HasPrefix(b, []byte(`"`)) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = attachmentFlag(density.ParseAttachmentFlag(s))
		return nil
	}

	var v bool
	if err := json.Unmarshal(b, &v); err != nil {
		return apperr.Validationf("attachment_exists must be a boolean or \"yes\"/\"no\"")
	}
	*f = attachmentFlag(v)
	return nil
}

// weighingRequest uses pointers so a missing mass is told apart from a zero.
type weighingRequest struct {
	MassInAir             *float64       `json:"mass_in_air"`
	MassInFluid           *float64       `json:"mass_in_fluid"`
	AttachmentMassInAir   float64        `json:"attachment_mass_in_air"`
	AttachmentMassInFluid float64        `json:"attachment_mass_in_fluid"`
	FluidDensity          *float64       `json:"fluid_density"`
	AttachmentExists      attachmentFlag `json:"attachment_exists"`
}

func (r weighingRequest) measurement() (density.Measurement, error) {
	err := requireFields(
		field{"mass_in_air", r.MassInAir},
		field{"mass_in_fluid", r.MassInFluid},
		field{"fluid_density", r.FluidDensity},
	)
	if err != nil {
		return density.Measurement{}, err
	}

	return density.Measurement{
		MassInAir:             *r.MassInAir,
		MassInFluid:           *r.MassInFluid,
		AttachmentMassInAir:   r.AttachmentMassInAir,
		AttachmentMassInFluid: r.AttachmentMassInFluid,
	}, nil
}

type field struct {
	name  string
	value *float64
}

// requireFields names every field the request body left out.
func requireFields(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if f.value == nil {
			missing = append(missing, f.name)
		}
	}

	if len(missing) != 0 {
		return apperr.Validationf("missing required fields: %s", strings.Join(missing, ", "))
	}

	return nil
}

type CalcController struct {
	parts *registry.PartRegistry
}

func NewCalcController(parts *registry.PartRegistry) *CalcController {
	return &CalcController{parts: parts}
}

func (c *CalcController) MeasuredDensity(ctx echo.Context) error {
	var req weighingRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	m, err := req.measurement()
	if err != nil {
		return err
	}

	d, err := density.MeasuredDensity(m, *req.FluidDensity, bool(req.AttachmentExists))
	metrics.Observe(metrics.OpMeasured, err)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]float64{"density": d})
}

func (c *CalcController) MasterDensity(ctx echo.Context) error {
	var req weighingRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	m, err := req.measurement()
	if err != nil {
		return err
	}

	d, err := density.MasterSampleDensity(m, *req.FluidDensity, bool(req.AttachmentExists))
	metrics.Observe(metrics.OpMaster, err)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]float64{"density": d})
}

func (c *CalcController) CompactnessRatio(ctx echo.Context) error {
	var req struct {
		PartDensity        *float64 `json:"part_density"`
		TheoreticalDensity *float64 `json:"theoretical_density"`
	}

	if err := ctx.Bind(&req); err != nil {
		return err
	}

	err := requireFields(field{"part_density", req.PartDensity}, field{"theoretical_density", req.TheoreticalDensity})
	if err != nil {
		return err
	}

	ratio, err := density.CompactnessRatio(*req.PartDensity, *req.TheoreticalDensity)
	metrics.Observe(metrics.OpCompactness, err)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]float64{"ratio": ratio})
}

func (c *CalcController) Porosity(ctx echo.Context) error {
	var req struct {
		MasterDensity *float64 `json:"master_density"`
		PartDensity   *float64 `json:"part_density"`
	}

	if err := ctx.Bind(&req); err != nil {
		return err
	}

	err := requireFields(field{"master_density", req.MasterDensity}, field{"part_density", req.PartDensity})
	if err != nil {
		return err
	}

	porosity, err := density.Porosity(*req.MasterDensity, *req.PartDensity)
	metrics.Observe(metrics.OpPorosity, err)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]float64{"porosity": porosity})
}

// TheoreticalDensity evaluates a composition that is not stored as a part.
func (c *CalcController) TheoreticalDensity(ctx echo.Context) error {
	var req struct {
		Composition []registry.CompositionInput `json:"composition"`
	}

	if err := ctx.Bind(&req); err != nil {
		return err
	}

	result, err := c.parts.TheoreticalDensityOf(req.Composition)
	metrics.Observe(metrics.OpTheoretical, err)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, TheoreticalDensityResponse{Result: result})
}
