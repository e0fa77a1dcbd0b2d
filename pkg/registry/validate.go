package registry

import (
	"math"
	"strings"

	"github.com/materials-commons/partdensity/pkg/apperr"
	"github.com/materials-commons/partdensity/pkg/densdb/dmodel"
)

const (
	maxPartCodeLen = 64

	// percentageSumTolerance absorbs the rounding of percentages typed with
	// two decimals.
	percentageSumTolerance = 0.01
)

type CompositionInput struct {
	Symbol     string  `json:"symbol"`
	Percentage float64 `json:"percentage"`
}

type PartInput struct {
	PartCode        string             `json:"part_code"`
	PartName        string             `json:"part_name"`
	UserID          int                `json:"user_id"`
	Composition     []CompositionInput `json:"composition"`
	StandardAlloyID *int               `json:"standard_alloy_id"`
}

// normalize trims the free text fields and normalizes composition symbols.
func (in PartInput) normalize() PartInput {
	out := in
	out.PartCode = strings.TrimSpace(in.PartCode)
	out.PartName = strings.TrimSpace(in.PartName)
	out.Composition = make([]CompositionInput, len(in.Composition))
	for i, c := range in.Composition {
		out.Composition[i] = CompositionInput{Symbol: dmodel.NormalizeSymbol(c.Symbol), Percentage: c.Percentage}
	}
	return out
}

func (in PartInput) validate() error {
	switch {
	case in.PartCode == "":
		return apperr.Validationf("part_code is required")
	case len(in.PartCode) > maxPartCodeLen:
		return apperr.Validationf("part_code is longer than %d characters", maxPartCodeLen)
	case in.PartName == "":
		return apperr.Validationf("part_name is required")
	case in.UserID <= 0:
		return apperr.Validationf("user_id is required")
	}

	hasComposition := len(in.Composition) > 0
	hasAlloy := in.StandardAlloyID != nil
	switch {
	case hasComposition && hasAlloy:
		return apperr.Validationf("a part takes its density from either a composition or a standard alloy, not both")
	case !hasComposition && !hasAlloy:
		return apperr.Validationf("a part needs a composition or a standard alloy")
	case hasAlloy:
		return nil
	}

	return validateComposition(in.Composition)
}

func validateComposition(composition []CompositionInput) error {
	seen := make(map[string]bool, len(composition))
	sum := 0.0
	for _, c := range composition {
		switch {
		case c.Symbol == "":
			return apperr.Validationf("composition entry without an element symbol")
		case seen[c.Symbol]:
			return apperr.Validationf("element %s appears more than once in the composition", c.Symbol)
		case !(c.Percentage > 0 && c.Percentage <= 100):
			return apperr.Validationf("percentage for %s must be in (0, 100], got %g", c.Symbol, c.Percentage)
		}
		seen[c.Symbol] = true
		sum += c.Percentage
	}

	if math.Abs(sum-100) > percentageSumTolerance {
		return apperr.Validationf("composition percentages add up to %g, expected 100", sum)
	}

	return nil
}

func symbolsOf(composition []CompositionInput) []string {
	symbols := make([]string, 0, len(composition))
	for _, c := range composition {
		symbols = append(symbols, c.Symbol)
	}
	return symbols
}
