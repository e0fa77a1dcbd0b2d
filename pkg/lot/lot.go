// Package lot evaluates a batch of measurements of one part against the
// part's theoretical density and a reference density, and hands out lot
// serial numbers.
package lot

import (
	"time"

	"github.com/materials-commons/partdensity/pkg/apperr"
	"github.com/materials-commons/partdensity/pkg/density"
)

const (
	DefaultWorkers = 4

	maxMeasurements = 1000
)

// MasterSample is the reference part of a lot. Either its density is already
// known or it is weighed like any other part.
type MasterSample struct {
	Density          *float64             `json:"density,omitempty"`
	Measurement      *density.Measurement `json:"measurement,omitempty"`
	AttachmentExists bool                 `json:"attachment_exists"`
}

type LotRequest struct {
	PartCode         string                `json:"part_code"`
	Measurements     []density.Measurement `json:"measurements"`
	FluidDensity     float64               `json:"fluid_density"`
	AttachmentExists bool                  `json:"attachment_exists"`
	Master           *MasterSample         `json:"master,omitempty"`
	AssignSerials    bool                  `json:"assign_serials"`

	// Date selects the serial counter; the zero value means today.
	Date time.Time `json:"-"`
}

func (req LotRequest) validate() error {
	switch {
	case req.PartCode == "":
		return apperr.Validationf("part_code is required")
	case len(req.Measurements) == 0:
		return apperr.Validationf("a lot needs at least one measurement")
	case len(req.Measurements) > maxMeasurements:
		return apperr.Validationf("a lot holds at most %d measurements, got %d", maxMeasurements, len(req.Measurements))
	case !(req.FluidDensity > 0):
		return apperr.Validationf("fluid_density must be positive, got %g", req.FluidDensity)
	}

	if req.Master == nil {
		return nil
	}

	switch m := req.Master; {
	case m.Density != nil && m.Measurement != nil:
		return apperr.Validationf("master sample takes either a density or a measurement, not both")
	case m.Density == nil && m.Measurement == nil:
		return apperr.Validationf("master sample needs a density or a measurement")
	case m.Density != nil && *m.Density < 0:
		return apperr.Validationf("master density must not be negative, got %g", *m.Density)
	}

	return nil
}

// PorosityState says how a row's porosity field should be read.
type PorosityState string

const (
	PorosityComputed    PorosityState = "computed"
	PorosityReference   PorosityState = "reference"
	PorosityUnavailable PorosityState = "unavailable"
)

type ReferenceSource string

const (
	ReferenceMaster ReferenceSource = "master"
	ReferenceLotMax ReferenceSource = "lot_max"
	ReferenceNone   ReferenceSource = "none"
)

// RowError is a calculation failure confined to one row.
type RowError struct {
	Field   string `json:"field"`
	Kind    string `json:"error"`
	Message string `json:"message"`
}

func newRowError(field string, err error) RowError {
	return RowError{Field: field, Kind: apperr.Kind(err), Message: err.Error()}
}

type RowResult struct {
	Index            int           `json:"index"`
	Serial           string        `json:"serial,omitempty"`
	Density          *float64      `json:"density"`
	CompactnessRatio *float64      `json:"compactness_ratio"`
	Porosity         *float64      `json:"porosity"`
	PorosityState    PorosityState `json:"porosity_state"`
	Errors           []RowError    `json:"errors,omitempty"`
}

type LotResult struct {
	PartCode         string          `json:"part_code"`
	Theoretical      density.Result  `json:"theoretical"`
	ReferenceDensity *float64        `json:"reference_density"`
	ReferenceSource  ReferenceSource `json:"reference_source"`
	ReferenceRow     *int            `json:"reference_row,omitempty"`
	Rows             []RowResult     `json:"rows"`
}
