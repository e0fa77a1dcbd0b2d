package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/materials-commons/partdensity/pkg/apperr"
	"github.com/materials-commons/partdensity/pkg/clog"
	"github.com/materials-commons/partdensity/pkg/densdb/dmodel"
	"github.com/materials-commons/partdensity/pkg/densdb/stor"
	"github.com/materials-commons/partdensity/pkg/density"
	"github.com/materials-commons/partdensity/pkg/lock"
	"golang.org/x/sync/errgroup"
)

// PartRegistry stores parts. Every write resolves the composition symbols and
// the alloy id first and refuses to store anything that does not resolve.
type PartRegistry struct {
	partStor    stor.PartStor
	elementStor stor.ElementStor
	alloyStor   stor.AlloyStor
	codeLocker  *lock.KeyLocker[string]
}

func NewPartRegistry(stors *stor.Stors) *PartRegistry {
	return &PartRegistry{
		partStor:    stors.PartStor,
		elementStor: stors.ElementStor,
		alloyStor:   stors.AlloyStor,
		codeLocker:  lock.NewKeyLocker[string](),
	}
}

// resolve validates in and turns it into a storable part. The element and
// alloy lookups are independent and run concurrently.
func (r *PartRegistry) resolve(ctx context.Context, in PartInput) (*dmodel.Part, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	part := &dmodel.Part{
		PartCode:        in.PartCode,
		PartName:        in.PartName,
		UserID:          in.UserID,
		StandardAlloyID: in.StandardAlloyID,
	}

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		entries, err := r.resolveComposition(in.Composition)
		part.Composition = entries
		return err
	})

	g.Go(func() error {
		return r.resolveAlloy(in.StandardAlloyID)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return part, nil
}

func (r *PartRegistry) resolveComposition(composition []CompositionInput) ([]dmodel.CompositionEntry, error) {
	if len(composition) == 0 {
		return nil, nil
	}

	elements, err := r.elementStor.GetElementsBySymbols(symbolsOf(composition))
	if err != nil {
		return nil, err
	}

	bySymbol := make(map[string]dmodel.Element, len(elements))
	for _, e := range elements {
		bySymbol[e.Symbol] = e
	}

	var (
		entries []dmodel.CompositionEntry
		missing []string
	)
	for _, c := range composition {
		e, ok := bySymbol[c.Symbol]
		if !ok {
			missing = append(missing, c.Symbol)
			continue
		}
		entries = append(entries, dmodel.CompositionEntry{ElementID: e.ID, Percentage: c.Percentage})
	}

	if len(missing) != 0 {
		return nil, apperr.NewUnknownElementsError(missing)
	}

	return entries, nil
}

func (r *PartRegistry) resolveAlloy(alloyID *int) error {
	if alloyID == nil {
		return nil
	}

	_, err := r.alloyStor.GetAlloyByID(*alloyID)
	if errors.Is(err, stor.ErrNotFound) {
		return fmt.Errorf("%w: id %d", apperr.ErrUnknownAlloy, *alloyID)
	}

	return err
}

// Create stores a new part. Part codes are unique across the system.
func (r *PartRegistry) Create(ctx context.Context, in PartInput) (*PartView, error) {
	part, err := r.resolve(ctx, in)
	if err != nil {
		return nil, err
	}

	var created *dmodel.Part
	err = r.codeLocker.WithLock(part.PartCode, func() error {
		_, err := r.partStor.GetPartByCode(part.PartCode)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s", apperr.ErrDuplicatePartCode, part.PartCode)
		case !errors.Is(err, stor.ErrNotFound):
			return err
		}

		created, err = r.partStor.CreatePart(part)
		if errors.Is(err, stor.ErrDuplicate) {
			return fmt.Errorf("%w: %s", apperr.ErrDuplicatePartCode, part.PartCode)
		}
		return vanishedReferences(in, part, err)
	})

	if err != nil {
		return nil, err
	}

	logPart(created, "part created")
	return toPartView(created), nil
}

// Update replaces the part stored under partCode. The code itself cannot change.
func (r *PartRegistry) Update(ctx context.Context, partCode string, in PartInput) (*PartView, error) {
	in.PartCode = partCode
	part, err := r.resolve(ctx, in)
	if err != nil {
		return nil, err
	}

	var updated *dmodel.Part
	err = r.codeLocker.WithLock(part.PartCode, func() error {
		updated, err = r.partStor.UpdatePart(part)
		if errors.Is(err, stor.ErrNotFound) {
			return fmt.Errorf("%w: %s", apperr.ErrUnknownPart, part.PartCode)
		}
		return vanishedReferences(in, part, err)
	})

	if err != nil {
		return nil, err
	}

	logPart(updated, "part updated")
	return toPartView(updated), nil
}

// vanishedReferences reports an element or alloy deleted between resolve and
// the write the same way resolve would have.
func vanishedReferences(in PartInput, part *dmodel.Part, err error) error {
	var missing *stor.MissingReferencesError
	if !errors.As(err, &missing) {
		return err
	}

	if len(missing.ElementIDs) != 0 {
		gone := make(map[int]bool, len(missing.ElementIDs))
		for _, id := range missing.ElementIDs {
			gone[id] = true
		}

		composition := in.normalize().Composition
		var symbols []string
		for i, entry := range part.Composition {
			if gone[entry.ElementID] && i < len(composition) {
				symbols = append(symbols, composition[i].Symbol)
			}
		}
		return apperr.NewUnknownElementsError(symbols)
	}

	return fmt.Errorf("%w: id %d", apperr.ErrUnknownAlloy, missing.AlloyID)
}

func logPart(p *dmodel.Part, msg string) {
	clog.UsingCtx("registry").WithFields(log.Fields{
		"part_code":   p.PartCode,
		"user_id":     p.UserID,
		"composition": len(p.Composition),
		"alloy":       p.UsesAlloy(),
	}).Info(msg)
}

func (r *PartRegistry) getPart(partCode string) (*dmodel.Part, error) {
	part, err := r.partStor.GetPartByCode(partCode)
	if errors.Is(err, stor.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", apperr.ErrUnknownPart, partCode)
	}

	return part, err
}

func (r *PartRegistry) FetchByCode(partCode string) (*PartView, error) {
	part, err := r.getPart(partCode)
	if err != nil {
		return nil, err
	}

	return toPartView(part), nil
}

func (r *PartRegistry) ListByOwner(userID int) ([]PartView, error) {
	parts, err := r.partStor.ListPartsByOwner(userID)
	if err != nil {
		return nil, err
	}

	views := make([]PartView, 0, len(parts))
	for i := range parts {
		views = append(views, *toPartView(&parts[i]))
	}

	return views, nil
}

func (r *PartRegistry) ListCodesByOwner(userID int) ([]string, error) {
	parts, err := r.partStor.ListPartsByOwner(userID)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		codes = append(codes, p.PartCode)
	}

	return codes, nil
}

func (r *PartRegistry) NameByCode(partCode string) (string, error) {
	part, err := r.getPart(partCode)
	if err != nil {
		return "", err
	}

	return part.PartName, nil
}

// Delete removes a part without looking for anything that refers to it.
func (r *PartRegistry) Delete(partCode string) error {
	deleted, err := r.partStor.DeletePart(partCode)
	switch {
	case err != nil:
		return err
	case !deleted:
		return fmt.Errorf("%w: %s", apperr.ErrUnknownPart, partCode)
	}

	clog.UsingCtx("registry").WithField("part_code", partCode).Info("part deleted")
	return nil
}

// TheoreticalDensity evaluates the stored part against the current element
// and alloy densities.
func (r *PartRegistry) TheoreticalDensity(partCode string) (density.Result, error) {
	part, err := r.FetchByCode(partCode)
	if err != nil {
		return density.Result{}, err
	}

	return part.TheoreticalDensity(), nil
}

// TheoreticalDensityOf evaluates a composition that has not been stored. The
// symbols must resolve; the percentages are taken as given.
func (r *PartRegistry) TheoreticalDensityOf(composition []CompositionInput) (density.Result, error) {
	normalized := PartInput{Composition: composition}.normalize().Composition

	elements, err := r.elementStor.GetElementsBySymbols(symbolsOf(normalized))
	if err != nil {
		return density.Result{}, err
	}

	densities := make(map[string]float64, len(elements))
	for _, e := range elements {
		densities[e.Symbol] = e.Density
	}

	var (
		components []density.Component
		missing    []string
	)
	for _, c := range normalized {
		d, ok := densities[c.Symbol]
		if !ok {
			missing = append(missing, c.Symbol)
			continue
		}
		components = append(components, density.Component{Percentage: c.Percentage, ElementDensity: d})
	}

	if len(missing) != 0 {
		return density.Result{}, apperr.NewUnknownElementsError(missing)
	}

	return density.TheoreticalFromComposition(components), nil
}
