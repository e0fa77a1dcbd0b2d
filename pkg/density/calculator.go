// Package density holds the buoyancy and rule-of-mixtures formulas used to
// rate manufactured parts. Everything here is pure: no I/O, no logging.
// Intermediate values are never rounded; each exported function rounds its
// own result once.
package density

import (
	"math"
	"strings"

	"github.com/materials-commons/partdensity/pkg/apperr"
)

const (
	TheoreticalPlaces = 3
	MeasuredPlaces    = 2
	RatioPlaces       = 1
	PorosityPlaces    = 2

	// WaterDensity is distilled water at 20 C in g/cm3, the usual immersion fluid.
	WaterDensity = 0.9982
)

// Component is one composition entry with its element density already resolved.
type Component struct {
	Percentage     float64
	ElementDensity float64
}

// Measurement is a single weighing of a part in air and in the fluid. The
// attachment masses describe a holder or sinker weighed together with the part.
type Measurement struct {
	MassInAir             float64 `json:"mass_in_air"`
	MassInFluid           float64 `json:"mass_in_fluid"`
	AttachmentMassInAir   float64 `json:"attachment_mass_in_air,omitempty"`
	AttachmentMassInFluid float64 `json:"attachment_mass_in_fluid,omitempty"`
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// TheoreticalFromComposition applies the inverse rule of mixtures. Entries
// with a non-positive element density or percentage are skipped.
func TheoreticalFromComposition(components []Component) Result {
	if len(components) == 0 {
		return undetermined(ReasonNoComposition)
	}

	totalVolume := 0.0
	for _, c := range components {
		if c.ElementDensity <= 0 || c.Percentage <= 0 || math.IsNaN(c.Percentage) || math.IsNaN(c.ElementDensity) {
			continue
		}
		totalVolume += (c.Percentage / 100) / c.ElementDensity
	}

	if totalVolume <= 0 {
		return undetermined(ReasonNoValidEntries)
	}

	return determined(Round(1/totalVolume, TheoreticalPlaces), SourceComposition)
}

// Specified returns the stored density of a linked standard alloy. A nil
// density means no alloy is linked.
func Specified(alloyDensity *float64) Result {
	if alloyDensity == nil {
		return Result{State: NotSpecified, Source: SourceUndetermined, Reason: ReasonNoAlloy}
	}

	return determined(Round(*alloyDensity, TheoreticalPlaces), SourceAlloy)
}

// MeasuredDensity computes the Archimedes density of a part. Attachment
// masses are ignored unless attachmentExists is set.
func MeasuredDensity(m Measurement, fluidDensity float64, attachmentExists bool) (float64, error) {
	d, err := archimedes(m, fluidDensity, attachmentExists)
	if err != nil {
		return 0, err
	}
	return Round(d, MeasuredPlaces), nil
}

// MasterSampleDensity is MeasuredDensity for the master sample, whose
// attachment flag is tracked separately from the lot's.
func MasterSampleDensity(m Measurement, fluidDensity float64, masterAttachmentExists bool) (float64, error) {
	d, err := archimedes(m, fluidDensity, masterAttachmentExists)
	if err != nil {
		return 0, err
	}
	return Round(d, MeasuredPlaces), nil
}

// ParseAttachmentFlag accepts the "yes"/"no" form older clients send.
func ParseAttachmentFlag(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "yes")
}

func archimedes(m Measurement, fluidDensity float64, attachmentExists bool) (float64, error) {
	if fluidDensity <= 0 || math.IsNaN(fluidDensity) {
		return 0, apperr.Validationf("fluid density must be positive, got %g", fluidDensity)
	}

	attachmentAir, attachmentFluid := 0.0, 0.0
	if attachmentExists {
		attachmentAir, attachmentFluid = m.AttachmentMassInAir, m.AttachmentMassInFluid
	}

	effectiveAir := m.MassInAir - attachmentAir
	effectiveFluid := m.MassInFluid - attachmentFluid
	if effectiveAir == effectiveFluid {
		return 0, apperr.ErrDivisionByZero
	}

	return (effectiveAir * fluidDensity) / (effectiveAir - effectiveFluid), nil
}

// CompactnessRatio expresses partDensity as a percentage of theoreticalDensity.
// A ratio above 100 means the inputs are wrong and is reported, never clamped.
func CompactnessRatio(partDensity, theoreticalDensity float64) (float64, error) {
	switch {
	case partDensity < 0 || theoreticalDensity < 0:
		return 0, apperr.Validationf("densities must not be negative (part %g, theoretical %g)", partDensity, theoreticalDensity)
	case theoreticalDensity == 0:
		return 0, apperr.ErrDivisionByZero
	}

	ratio := (partDensity * 100) / theoreticalDensity
	if ratio > 100 {
		return 0, outOfRange(ratio)
	}

	return Round(ratio, RatioPlaces), nil
}

// Porosity is the density deficit of a part relative to the master density.
// Negative values mean the part is denser than the master.
func Porosity(masterDensity, partDensity float64) (float64, error) {
	if masterDensity == 0 {
		return 0, apperr.ErrDivisionByZero
	}

	return Round(((masterDensity-partDensity)/masterDensity)*100, PorosityPlaces), nil
}
