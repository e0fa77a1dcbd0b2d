package registry

import (
	"github.com/materials-commons/partdensity/pkg/densdb/dmodel"
	"github.com/materials-commons/partdensity/pkg/density"
)

type CompositionView struct {
	Symbol         string  `json:"symbol"`
	ElementName    string  `json:"element_name"`
	ElementDensity float64 `json:"element_density"`
	Percentage     float64 `json:"percentage"`
}

type AlloyView struct {
	ID        int     `json:"id"`
	Slug      string  `json:"slug"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Density   float64 `json:"density"`
	Reference string  `json:"reference"`
}

// PartView is a part joined with the current state of the elements and alloy
// it references.
type PartView struct {
	PartCode      string            `json:"part_code"`
	PartName      string            `json:"part_name"`
	UserID        int               `json:"user_id"`
	DensitySource density.Source    `json:"density_source"`
	Composition   []CompositionView `json:"composition"`
	StandardAlloy *AlloyView        `json:"standard_alloy,omitempty"`
}

func toPartView(p *dmodel.Part) *PartView {
	v := &PartView{
		PartCode:    p.PartCode,
		PartName:    p.PartName,
		UserID:      p.UserID,
		Composition: make([]CompositionView, 0, len(p.Composition)),
	}

	for _, entry := range p.Composition {
		cv := CompositionView{Percentage: entry.Percentage}
		if entry.Element != nil {
			// A missing element (deleted before delete protection existed)
			// leaves the entry without a density; the calculator skips it.
			cv.Symbol = entry.Element.Symbol
			cv.ElementName = entry.Element.Name
			cv.ElementDensity = entry.Element.Density
		}
		v.Composition = append(v.Composition, cv)
	}

	if p.StandardAlloy != nil {
		v.StandardAlloy = toAlloyView(p.StandardAlloy)
	}

	switch {
	case p.UsesAlloy():
		v.DensitySource = density.SourceAlloy
	case len(p.Composition) > 0:
		v.DensitySource = density.SourceComposition
	default:
		v.DensitySource = density.SourceUndetermined
	}

	return v
}

func toAlloyView(a *dmodel.StandardAlloy) *AlloyView {
	return &AlloyView{
		ID:        a.ID,
		Slug:      a.Slug,
		Name:      a.Name,
		Country:   a.Country,
		Density:   a.Density,
		Reference: a.Reference,
	}
}

// Components returns the composition in the form the calculator takes.
func (v *PartView) Components() []density.Component {
	components := make([]density.Component, 0, len(v.Composition))
	for _, c := range v.Composition {
		components = append(components, density.Component{Percentage: c.Percentage, ElementDensity: c.ElementDensity})
	}
	return components
}

// TheoreticalDensity evaluates the part's density source.
func (v *PartView) TheoreticalDensity() density.Result {
	switch v.DensitySource {
	case density.SourceAlloy:
		if v.StandardAlloy == nil {
			return density.Specified(nil)
		}
		d := v.StandardAlloy.Density
		return density.Specified(&d)
	case density.SourceComposition:
		return density.TheoreticalFromComposition(v.Components())
	default:
		return density.Result{State: density.Undetermined, Source: density.SourceUndetermined, Reason: density.ReasonNoDensitySource}
	}
}
