package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/materials-commons/partdensity/pkg/apperr"
	"github.com/materials-commons/partdensity/pkg/densdb"
	"github.com/materials-commons/partdensity/pkg/densdb/dmodel"
	"github.com/materials-commons/partdensity/pkg/densdb/stor"
	"github.com/materials-commons/partdensity/pkg/density"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type registryTestCase struct {
	*testing.T
	db       *gorm.DB
	refData  *ReferenceData
	registry *PartRegistry
	alloy    *dmodel.StandardAlloy
	ctx      context.Context
}

func newRegistryTestCase(t *testing.T) *registryTestCase {
	db, err := densdb.OpenSqliteInMemory()
	require.NoErrorf(t, err, "Opening in memory db failed: %s", err)

	stors := stor.NewGormStors(db)
	tc := &registryTestCase{
		T:        t,
		db:       db,
		refData:  NewReferenceData(stors),
		registry: NewPartRegistry(stors),
		ctx:      context.Background(),
	}

	tc.populateReferenceData()

	t.Cleanup(func() {
		time.Sleep(time.Millisecond)
		if sqlDB, err := tc.db.DB(); err == nil && sqlDB != nil {
			_ = sqlDB.Close()
		}
	})

	return tc
}

func (tc *registryTestCase) populateReferenceData() {
	elements := []ElementInput{
		{Name: "Aluminium", Symbol: "Al", AtomicNumber: 13, Density: 2.7},
		{Name: "Copper", Symbol: "Cu", AtomicNumber: 29, Density: 8.92},
		{Name: "Iron", Symbol: "Fe", AtomicNumber: 26, Density: 7.874},
	}

	for _, e := range elements {
		_, err := tc.refData.CreateElement(e)
		require.NoErrorf(tc.T, err, "Failed creating element %s: %s", e.Symbol, err)
	}

	var err error
	tc.alloy, err = tc.refData.CreateAlloy(AlloyInput{Country: "USA", Name: "AISI 316L", Density: 7.99, Reference: "ASTM A240"})
	require.NoErrorf(tc.T, err, "Failed creating alloy: %s", err)
}

func alCuPart(code string) PartInput {
	return PartInput{
		PartCode: code,
		PartName: "Housing",
		UserID:   5,
		Composition: []CompositionInput{
			{Symbol: "al", Percentage: 60},
			{Symbol: "Cu", Percentage: 40},
		},
	}
}

func TestPartRegistryRoundTrip(t *testing.T) {
	tc := newRegistryTestCase(t)

	created, err := tc.registry.Create(tc.ctx, alCuPart(" P-100 "))
	require.NoError(t, err)
	require.Equal(t, "P-100", created.PartCode)
	require.Equal(t, density.SourceComposition, created.DensitySource)

	fetched, err := tc.registry.FetchByCode("P-100")
	require.NoError(t, err)
	require.Len(t, fetched.Composition, 2)
	require.Equal(t, "Al", fetched.Composition[0].Symbol)
	require.Equal(t, 60.0, fetched.Composition[0].Percentage)
	require.Equal(t, "Cu", fetched.Composition[1].Symbol)
	require.Equal(t, 40.0, fetched.Composition[1].Percentage)
	require.Equal(t, 8.92, fetched.Composition[1].ElementDensity)
	require.Nil(t, fetched.StandardAlloy)

	name, err := tc.registry.NameByCode("P-100")
	require.NoError(t, err)
	require.Equal(t, "Housing", name)
}

func TestPartRegistryRejectsUnresolvedReferences(t *testing.T) {
	tc := newRegistryTestCase(t)

	in := alCuPart("P-1")
	in.Composition = []CompositionInput{{Symbol: "Xx", Percentage: 50}, {Symbol: "Al", Percentage: 30}, {Symbol: "Qq", Percentage: 20}}
	_, err := tc.registry.Create(tc.ctx, in)
	require.True(t, errors.Is(err, apperr.ErrUnknownElement))
	require.Equal(t, []string{"Qq", "Xx"}, apperr.Missing(err))

	missingAlloy := 4242
	in = PartInput{PartCode: "P-2", PartName: "Gear", UserID: 5, StandardAlloyID: &missingAlloy}
	_, err = tc.registry.Create(tc.ctx, in)
	require.True(t, errors.Is(err, apperr.ErrUnknownAlloy))

	codes, err := tc.registry.ListCodesByOwner(5)
	require.NoError(t, err)
	require.Empty(t, codes)
}

func TestPartRegistryValidation(t *testing.T) {
	tc := newRegistryTestCase(t)

	tests := []struct {
		name   string
		mutate func(in *PartInput)
	}{
		{name: "missing code", mutate: func(in *PartInput) { in.PartCode = "  " }},
		{name: "missing name", mutate: func(in *PartInput) { in.PartName = "" }},
		{name: "missing owner", mutate: func(in *PartInput) { in.UserID = 0 }},
		{name: "both sources", mutate: func(in *PartInput) { in.StandardAlloyID = &tc.alloy.ID }},
		{name: "no source", mutate: func(in *PartInput) { in.Composition = nil }},
		{name: "sum below 100", mutate: func(in *PartInput) { in.Composition[1].Percentage = 39 }},
		{name: "zero percentage", mutate: func(in *PartInput) {
			in.Composition = append(in.Composition, CompositionInput{Symbol: "Fe", Percentage: 0})
		}},
		{name: "duplicate symbol", mutate: func(in *PartInput) {
			in.Composition = []CompositionInput{{Symbol: "Al", Percentage: 50}, {Symbol: "AL", Percentage: 50}}
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			in := alCuPart("P-V")
			test.mutate(&in)
			_, err := tc.registry.Create(tc.ctx, in)
			require.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
		})
	}

	t.Run("sum within tolerance", func(t *testing.T) {
		in := alCuPart("P-T")
		in.Composition[0].Percentage = 59.995
		_, err := tc.registry.Create(tc.ctx, in)
		require.NoError(t, err)
	})
}

func TestPartRegistryDuplicateCodes(t *testing.T) {
	tc := newRegistryTestCase(t)

	_, err := tc.registry.Create(tc.ctx, alCuPart("P-100"))
	require.NoError(t, err)

	_, err = tc.registry.Create(tc.ctx, alCuPart("P-100"))
	require.True(t, errors.Is(err, apperr.ErrDuplicatePartCode))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tc.registry.Create(tc.ctx, alCuPart("P-RACE")); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, successes)
}

func TestPartRegistryUpdateAndDelete(t *testing.T) {
	tc := newRegistryTestCase(t)

	_, err := tc.registry.Create(tc.ctx, alCuPart("P-100"))
	require.NoError(t, err)

	updated, err := tc.registry.Update(tc.ctx, "P-100", PartInput{PartName: "Housing v2", UserID: 5, StandardAlloyID: &tc.alloy.ID})
	require.NoError(t, err)
	require.Equal(t, density.SourceAlloy, updated.DensitySource)
	require.Empty(t, updated.Composition)
	require.Equal(t, "USA", updated.StandardAlloy.Country)
	require.Equal(t, 7.99, updated.StandardAlloy.Density)

	_, err = tc.registry.Update(tc.ctx, "P-404", alCuPart(""))
	require.True(t, errors.Is(err, apperr.ErrUnknownPart))

	require.NoError(t, tc.registry.Delete("P-100"))
	require.True(t, errors.Is(tc.registry.Delete("P-100"), apperr.ErrUnknownPart))

	_, err = tc.registry.FetchByCode("P-100")
	require.True(t, errors.Is(err, apperr.ErrUnknownPart))
}

func TestPartRegistryListByOwner(t *testing.T) {
	tc := newRegistryTestCase(t)

	for _, code := range []string{"P-2", "P-1"} {
		_, err := tc.registry.Create(tc.ctx, alCuPart(code))
		require.NoError(t, err)
	}

	other := alCuPart("Q-1")
	other.UserID = 6
	_, err := tc.registry.Create(tc.ctx, other)
	require.NoError(t, err)

	parts, err := tc.registry.ListByOwner(5)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	require.Equal(t, "P-1", parts[0].PartCode)
	require.Equal(t, "Al", parts[0].Composition[0].Symbol)

	codes, err := tc.registry.ListCodesByOwner(6)
	require.NoError(t, err)
	require.Equal(t, []string{"Q-1"}, codes)
}

func TestPartRegistryTheoreticalDensity(t *testing.T) {
	tc := newRegistryTestCase(t)

	_, err := tc.registry.Create(tc.ctx, alCuPart("P-100"))
	require.NoError(t, err)

	r, err := tc.registry.TheoreticalDensity("P-100")
	require.NoError(t, err)
	require.Equal(t, density.Determined, r.State)
	require.Equal(t, density.SourceComposition, r.Source)
	require.Equal(t, 3.744, r.Value)

	// Element densities are read live, so a correction shows up immediately.
	_, err = tc.refData.UpdateElement("Al", ElementInput{Name: "Aluminium", Symbol: "Al", AtomicNumber: 13, Density: 2.699})
	require.NoError(t, err)
	r, err = tc.registry.TheoreticalDensity("P-100")
	require.NoError(t, err)
	require.Equal(t, 3.743, r.Value)

	_, err = tc.registry.Create(tc.ctx, PartInput{PartCode: "P-200", PartName: "Shaft", UserID: 5, StandardAlloyID: &tc.alloy.ID})
	require.NoError(t, err)
	r, err = tc.registry.TheoreticalDensity("P-200")
	require.NoError(t, err)
	require.Equal(t, density.SourceAlloy, r.Source)
	require.Equal(t, 7.99, r.Value)

	_, err = tc.registry.TheoreticalDensity("P-404")
	require.True(t, errors.Is(err, apperr.ErrUnknownPart))
}

func TestPartRegistryTheoreticalDensityOf(t *testing.T) {
	tc := newRegistryTestCase(t)

	r, err := tc.registry.TheoreticalDensityOf([]CompositionInput{{Symbol: "fe", Percentage: 100}})
	require.NoError(t, err)
	require.Equal(t, 7.874, r.Value)

	r, err = tc.registry.TheoreticalDensityOf(nil)
	require.NoError(t, err)
	require.Equal(t, density.Undetermined, r.State)
	require.Equal(t, density.ReasonNoComposition, r.Reason)

	_, err = tc.registry.TheoreticalDensityOf([]CompositionInput{{Symbol: "Zz", Percentage: 100}})
	require.True(t, errors.Is(err, apperr.ErrUnknownElement))
}

func TestReferenceDataElements(t *testing.T) {
	tc := newRegistryTestCase(t)

	_, err := tc.refData.CreateElement(ElementInput{Name: " copper", Symbol: "Co", AtomicNumber: 27, Density: 8.9})
	require.True(t, errors.Is(err, apperr.ErrDuplicateElement))
	require.Contains(t, err.Error(), `name "Copper"`)

	_, err = tc.refData.CreateElement(ElementInput{Name: "Cobalt", Symbol: "Co", AtomicNumber: 26, Density: 8.9})
	require.True(t, errors.Is(err, apperr.ErrDuplicateElement))
	require.Contains(t, err.Error(), "atomic number 26")

	_, err = tc.refData.CreateElement(ElementInput{Name: "Cobalt", Symbol: "Co", AtomicNumber: 27, Density: 0})
	require.True(t, errors.Is(err, apperr.ErrValidation))

	co, err := tc.refData.CreateElement(ElementInput{Name: "COBALT", Symbol: "co", AtomicNumber: 27, Density: 8.9})
	require.NoError(t, err)
	require.Equal(t, "Co", co.Symbol)
	require.Equal(t, "Cobalt", co.Name)

	_, err = tc.refData.GetElement("Zz")
	require.True(t, errors.Is(err, apperr.ErrUnknownElement))

	elements, err := tc.refData.GetElementsBySymbols([]string{"Co", "Fe", "Zz"})
	require.NoError(t, err)
	require.Len(t, elements, 2)
}

func TestReferenceDataDeleteProtection(t *testing.T) {
	tc := newRegistryTestCase(t)

	_, err := tc.registry.Create(tc.ctx, alCuPart("P-100"))
	require.NoError(t, err)
	_, err = tc.registry.Create(tc.ctx, PartInput{PartCode: "P-200", PartName: "Shaft", UserID: 5, StandardAlloyID: &tc.alloy.ID})
	require.NoError(t, err)

	err = tc.refData.DeleteElement("Cu")
	require.True(t, errors.Is(err, apperr.ErrReferenceInUse))
	require.Equal(t, []string{"P-100"}, apperr.Missing(err))

	err = tc.refData.DeleteAlloy(tc.alloy.ID)
	require.True(t, errors.Is(err, apperr.ErrReferenceInUse))

	require.NoError(t, tc.refData.DeleteElement("Fe"))

	require.NoError(t, tc.registry.Delete("P-100"))
	require.NoError(t, tc.refData.DeleteElement("Cu"))

	require.NoError(t, tc.registry.Delete("P-200"))
	require.NoError(t, tc.refData.DeleteAlloy(tc.alloy.ID))

	_, err = tc.refData.GetAlloy(tc.alloy.ID)
	require.True(t, errors.Is(err, apperr.ErrUnknownAlloy))
}

// deletingElementStor runs afterLookup once the registry has resolved a
// composition, standing in for a delete from another request.
type deletingElementStor struct {
	stor.ElementStor
	afterLookup func()
}

func (s *deletingElementStor) GetElementsBySymbols(symbols []string) ([]dmodel.Element, error) {
	elements, err := s.ElementStor.GetElementsBySymbols(symbols)
	if s.afterLookup != nil {
		s.afterLookup()
	}
	return elements, err
}

type deletingAlloyStor struct {
	stor.AlloyStor
	afterLookup func()
}

func (s *deletingAlloyStor) GetAlloyByID(alloyID int) (*dmodel.StandardAlloy, error) {
	alloy, err := s.AlloyStor.GetAlloyByID(alloyID)
	if s.afterLookup != nil {
		s.afterLookup()
	}
	return alloy, err
}

func TestPartWritesLosingAReferenceAreRefused(t *testing.T) {
	tc := newRegistryTestCase(t)

	stors := stor.NewGormStors(tc.db)
	elements := &deletingElementStor{ElementStor: stors.ElementStor}
	alloys := &deletingAlloyStor{AlloyStor: stors.AlloyStor}
	stors.ElementStor, stors.AlloyStor = elements, alloys
	registry := NewPartRegistry(stors)

	var deleteErr error
	elements.afterLookup = func() { deleteErr = tc.refData.DeleteElement("Cu") }

	_, err := registry.Create(tc.ctx, alCuPart("P-100"))
	require.NoError(t, deleteErr)
	require.True(t, errors.Is(err, apperr.ErrUnknownElement))
	require.Equal(t, []string{"Cu"}, apperr.Missing(err))

	_, err = tc.registry.FetchByCode("P-100")
	require.True(t, errors.Is(err, apperr.ErrUnknownPart))

	elements.afterLookup = nil
	_, err = registry.Create(tc.ctx, PartInput{
		PartCode:    "P-300",
		PartName:    "Plate",
		UserID:      5,
		Composition: []CompositionInput{{Symbol: "Al", Percentage: 100}},
	})
	require.NoError(t, err)

	elements.afterLookup = func() { deleteErr = tc.refData.DeleteElement("Fe") }
	_, err = registry.Update(tc.ctx, "P-300", PartInput{
		PartName:    "Plate",
		UserID:      5,
		Composition: []CompositionInput{{Symbol: "Al", Percentage: 60}, {Symbol: "fe", Percentage: 40}},
	})
	require.NoError(t, deleteErr)
	require.True(t, errors.Is(err, apperr.ErrUnknownElement))
	require.Equal(t, []string{"Fe"}, apperr.Missing(err))

	theoretical, err := tc.registry.TheoreticalDensity("P-300")
	require.NoError(t, err)
	require.Equal(t, 2.7, theoretical.Value)

	elements.afterLookup = nil
	alloys.afterLookup = func() { deleteErr = tc.refData.DeleteAlloy(tc.alloy.ID) }
	_, err = registry.Create(tc.ctx, PartInput{PartCode: "P-200", PartName: "Shaft", UserID: 5, StandardAlloyID: &tc.alloy.ID})
	require.NoError(t, deleteErr)
	require.True(t, errors.Is(err, apperr.ErrUnknownAlloy))

	_, err = tc.registry.FetchByCode("P-200")
	require.True(t, errors.Is(err, apperr.ErrUnknownPart))
}

func TestReferenceDataAlloys(t *testing.T) {
	tc := newRegistryTestCase(t)

	_, err := tc.refData.CreateAlloy(AlloyInput{Country: "", Name: "X", Density: 7})
	require.True(t, errors.Is(err, apperr.ErrValidation))

	updated, err := tc.refData.UpdateAlloy(tc.alloy.ID, AlloyInput{Country: "USA", Name: "AISI 316L", Density: 8.0, Reference: "EN 10088"})
	require.NoError(t, err)
	require.Equal(t, 8.0, updated.Density)
	require.Equal(t, tc.alloy.Slug, updated.Slug)

	bySlug, err := tc.refData.GetAlloyBySlug("usa-aisi-316l")
	require.NoError(t, err)
	require.Equal(t, "EN 10088", bySlug.Reference)

	_, err = tc.refData.UpdateAlloy(999, AlloyInput{Country: "USA", Name: "X", Density: 8.0})
	require.True(t, errors.Is(err, apperr.ErrUnknownAlloy))

	alloys, err := tc.refData.ListAlloys()
	require.NoError(t, err)
	require.Len(t, alloys, 1)
}
