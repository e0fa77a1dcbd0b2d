package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/materials-commons/partdensity/pkg/apperr"
	"github.com/materials-commons/partdensity/pkg/clog"
	"github.com/materials-commons/partdensity/pkg/densdb/dmodel"
	"github.com/materials-commons/partdensity/pkg/densdb/stor"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type ElementInput struct {
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	AtomicNumber int     `json:"atomic_number"`
	Density      float64 `json:"density"`
}

func (in ElementInput) toModel() (*dmodel.Element, error) {
	e := &dmodel.Element{
		Name:         elementName(in.Name),
		Symbol:       dmodel.NormalizeSymbol(in.Symbol),
		AtomicNumber: in.AtomicNumber,
		Density:      in.Density,
	}

	switch {
	case e.Name == "":
		return nil, apperr.Validationf("element name is required")
	case e.Symbol == "":
		return nil, apperr.Validationf("element symbol is required")
	case e.AtomicNumber <= 0:
		return nil, apperr.Validationf("atomic number must be a positive integer, got %d", e.AtomicNumber)
	case !(e.Density > 0):
		return nil, apperr.Validationf("element density must be positive, got %g", e.Density)
	}

	return e, nil
}

// elementName title cases an element name so "copper" and "Copper" clash.
func elementName(name string) string {
	return cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(name)))
}

type AlloyInput struct {
	Country   string  `json:"country"`
	Name      string  `json:"name"`
	Density   float64 `json:"density"`
	Reference string  `json:"reference"`
}

func (in AlloyInput) toModel() (*dmodel.StandardAlloy, error) {
	a := &dmodel.StandardAlloy{
		Country:   strings.TrimSpace(in.Country),
		Name:      strings.TrimSpace(in.Name),
		Density:   in.Density,
		Reference: strings.TrimSpace(in.Reference),
	}

	switch {
	case a.Country == "":
		return nil, apperr.Validationf("alloy country is required")
	case a.Name == "":
		return nil, apperr.Validationf("alloy name is required")
	case !(a.Density > 0):
		return nil, apperr.Validationf("alloy density must be positive, got %g", a.Density)
	}

	return a, nil
}

// ReferenceData manages elements and standard alloys. Anything a part still
// references cannot be deleted.
type ReferenceData struct {
	elementStor stor.ElementStor
	alloyStor   stor.AlloyStor
}

func NewReferenceData(stors *stor.Stors) *ReferenceData {
	return &ReferenceData{
		elementStor: stors.ElementStor,
		alloyStor:   stors.AlloyStor,
	}
}

func (r *ReferenceData) CreateElement(in ElementInput) (*dmodel.Element, error) {
	element, err := in.toModel()
	if err != nil {
		return nil, err
	}

	if err := r.checkElementConflicts(element); err != nil {
		return nil, err
	}

	created, err := r.elementStor.CreateElement(element)
	if errors.Is(err, stor.ErrDuplicate) {
		return nil, fmt.Errorf("%w: %s", apperr.ErrDuplicateElement, element.Symbol)
	}

	if err == nil {
		clog.UsingCtx("registry").WithField("symbol", created.Symbol).Info("element created")
	}

	return created, err
}

func (r *ReferenceData) checkElementConflicts(element *dmodel.Element) error {
	conflicts, err := r.elementStor.FindConflictingElements(element)
	if err != nil {
		return err
	}

	var clashes []string
	for _, c := range conflicts {
		if c.Name == element.Name {
			clashes = append(clashes, fmt.Sprintf("name %q", c.Name))
		}
		if c.Symbol == element.Symbol {
			clashes = append(clashes, fmt.Sprintf("symbol %q", c.Symbol))
		}
		if c.AtomicNumber == element.AtomicNumber {
			clashes = append(clashes, fmt.Sprintf("atomic number %d", c.AtomicNumber))
		}
	}

	if len(clashes) != 0 {
		return fmt.Errorf("%w: %s already used", apperr.ErrDuplicateElement, strings.Join(clashes, ", "))
	}

	return nil
}

func (r *ReferenceData) UpdateElement(symbol string, in ElementInput) (*dmodel.Element, error) {
	existing, err := r.GetElement(symbol)
	if err != nil {
		return nil, err
	}

	element, err := in.toModel()
	if err != nil {
		return nil, err
	}
	element.ID = existing.ID

	if err := r.checkElementConflicts(element); err != nil {
		return nil, err
	}

	updated, err := r.elementStor.UpdateElement(element)
	if errors.Is(err, stor.ErrDuplicate) {
		return nil, fmt.Errorf("%w: %s", apperr.ErrDuplicateElement, element.Symbol)
	}

	return updated, err
}

func (r *ReferenceData) GetElement(symbol string) (*dmodel.Element, error) {
	symbol = dmodel.NormalizeSymbol(symbol)
	element, err := r.elementStor.GetElementBySymbol(symbol)
	if errors.Is(err, stor.ErrNotFound) {
		return nil, apperr.NewUnknownElementsError([]string{symbol})
	}

	return element, err
}

func (r *ReferenceData) ListElements() ([]dmodel.Element, error) {
	return r.elementStor.ListElements()
}

// GetElementsBySymbols returns the elements found; missing symbols are simply absent.
func (r *ReferenceData) GetElementsBySymbols(symbols []string) ([]dmodel.Element, error) {
	return r.elementStor.GetElementsBySymbols(symbols)
}

func (r *ReferenceData) DeleteElement(symbol string) error {
	element, err := r.GetElement(symbol)
	if err != nil {
		return err
	}

	codes, err := r.elementStor.DeleteElement(element.ID)
	switch {
	case errors.Is(err, stor.ErrNotFound):
		return fmt.Errorf("%w: %s", apperr.ErrUnknownElement, element.Symbol)
	case err != nil:
		return err
	case len(codes) != 0:
		return &apperr.InUseError{What: "element " + element.Symbol, PartCodes: codes}
	}

	clog.UsingCtx("registry").WithField("symbol", element.Symbol).Info("element deleted")
	return nil
}

func (r *ReferenceData) CreateAlloy(in AlloyInput) (*dmodel.StandardAlloy, error) {
	alloy, err := in.toModel()
	if err != nil {
		return nil, err
	}

	created, err := r.alloyStor.CreateAlloy(alloy)
	if err == nil {
		clog.UsingCtx("registry").WithField("slug", created.Slug).Info("alloy created")
	}

	return created, err
}

func (r *ReferenceData) UpdateAlloy(alloyID int, in AlloyInput) (*dmodel.StandardAlloy, error) {
	if _, err := r.GetAlloy(alloyID); err != nil {
		return nil, err
	}

	alloy, err := in.toModel()
	if err != nil {
		return nil, err
	}
	alloy.ID = alloyID

	return r.alloyStor.UpdateAlloy(alloy)
}

func (r *ReferenceData) GetAlloy(alloyID int) (*dmodel.StandardAlloy, error) {
	alloy, err := r.alloyStor.GetAlloyByID(alloyID)
	if errors.Is(err, stor.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", apperr.ErrUnknownAlloy, alloyID)
	}

	return alloy, err
}

func (r *ReferenceData) GetAlloyBySlug(slug string) (*dmodel.StandardAlloy, error) {
	alloy, err := r.alloyStor.GetAlloyBySlug(slug)
	if errors.Is(err, stor.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", apperr.ErrUnknownAlloy, slug)
	}

	return alloy, err
}

func (r *ReferenceData) ListAlloys() ([]dmodel.StandardAlloy, error) {
	return r.alloyStor.ListAlloys()
}

func (r *ReferenceData) DeleteAlloy(alloyID int) error {
	alloy, err := r.GetAlloy(alloyID)
	if err != nil {
		return err
	}

	codes, err := r.alloyStor.DeleteAlloy(alloy.ID)
	switch {
	case errors.Is(err, stor.ErrNotFound):
		return fmt.Errorf("%w: id %d", apperr.ErrUnknownAlloy, alloy.ID)
	case err != nil:
		return err
	case len(codes) != 0:
		return &apperr.InUseError{What: "alloy " + alloy.Slug, PartCodes: codes}
	}

	clog.UsingCtx("registry").WithField("slug", alloy.Slug).Info("alloy deleted")
	return nil
}
