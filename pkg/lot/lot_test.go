package lot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/materials-commons/partdensity/pkg/apperr"
	"github.com/materials-commons/partdensity/pkg/densdb"
	"github.com/materials-commons/partdensity/pkg/densdb/stor"
	"github.com/materials-commons/partdensity/pkg/density"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParts map[string]density.Result

func (f fakeParts) TheoreticalDensity(partCode string) (density.Result, error) {
	r, ok := f[partCode]
	if !ok {
		return density.Result{}, fmt.Errorf("%w: %s", apperr.ErrUnknownPart, partCode)
	}
	return r, nil
}

func determined(v float64) density.Result {
	return density.Result{State: density.Determined, Value: v, Source: density.SourceComposition}
}

func newTestOrchestrator(t *testing.T) *Orchestrator {
	db, err := densdb.OpenSqliteInMemory()
	require.NoErrorf(t, err, "Opening in memory db failed: %s", err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	parts := fakeParts{
		"P-100":   determined(6.0),
		"P-TIGHT": determined(5.1),
		"P-NONE":  {State: density.Undetermined, Source: density.SourceUndetermined, Reason: density.ReasonNoComposition},
	}

	o := NewOrchestrator(parts, stor.NewGormSerialStor(db), 2)
	o.now = func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) }
	return o
}

// weighing returns a measurement whose density in a fluid of density 1 is d.
func weighing(d float64) density.Measurement {
	return density.Measurement{MassInAir: d, MassInFluid: d - 1}
}

func lotOf(code string, densities ...float64) LotRequest {
	req := LotRequest{PartCode: code, FluidDensity: 1}
	for _, d := range densities {
		req.Measurements = append(req.Measurements, weighing(d))
	}
	return req
}

func TestComputeUsesDensestRowAsReference(t *testing.T) {
	o := newTestOrchestrator(t)

	result, err := o.Compute(context.Background(), lotOf("P-100", 5.0, 5.2, 4.9))
	require.NoError(t, err)

	require.Equal(t, ReferenceLotMax, result.ReferenceSource)
	require.NotNil(t, result.ReferenceRow)
	require.Equal(t, 1, *result.ReferenceRow)
	require.Equal(t, 5.2, *result.ReferenceDensity)
	require.Len(t, result.Rows, 3)

	expectedDensities := []float64{5.0, 5.2, 4.9}
	expectedRatios := []float64{83.3, 86.7, 81.7}
	for i, row := range result.Rows {
		require.Equal(t, i, row.Index)
		require.Empty(t, row.Errors)
		require.Equal(t, expectedDensities[i], *row.Density)
		require.Equal(t, expectedRatios[i], *row.CompactnessRatio)
	}

	require.Equal(t, PorosityComputed, result.Rows[0].PorosityState)
	require.Equal(t, 3.85, *result.Rows[0].Porosity)
	require.Equal(t, PorosityReference, result.Rows[1].PorosityState)
	require.Nil(t, result.Rows[1].Porosity)
	require.Equal(t, 5.77, *result.Rows[2].Porosity)
}

func TestComputeTiesPickFirstRow(t *testing.T) {
	o := newTestOrchestrator(t)

	result, err := o.Compute(context.Background(), lotOf("P-100", 4.0, 5.0, 5.0))
	require.NoError(t, err)
	require.Equal(t, 1, *result.ReferenceRow)
	require.Equal(t, PorosityComputed, result.Rows[2].PorosityState)
	require.Equal(t, 0.0, *result.Rows[2].Porosity)
}

func TestComputeWithMasterSample(t *testing.T) {
	o := newTestOrchestrator(t)

	t.Run("known density", func(t *testing.T) {
		req := lotOf("P-100", 5.0, 5.2)
		master := 5.5
		req.Master = &MasterSample{Density: &master}

		result, err := o.Compute(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, ReferenceMaster, result.ReferenceSource)
		require.Nil(t, result.ReferenceRow)
		require.Equal(t, 9.09, *result.Rows[0].Porosity)
		require.Equal(t, 5.45, *result.Rows[1].Porosity)
	})

	t.Run("known density is used as given", func(t *testing.T) {
		req := lotOf("P-100", 5.0)
		master := 7.8549
		req.Master = &MasterSample{Density: &master}

		result, err := o.Compute(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, 7.8549, *result.ReferenceDensity)
		require.Equal(t, 36.35, *result.Rows[0].Porosity)

		tiny := 0.004
		req.Master = &MasterSample{Density: &tiny}
		result, err = o.Compute(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, 0.004, *result.ReferenceDensity)
		require.Empty(t, result.Rows[0].Errors)
		require.Equal(t, -124900.0, *result.Rows[0].Porosity)
	})

	t.Run("weighed master", func(t *testing.T) {
		req := lotOf("P-100", 5.0)
		m := density.Measurement{MassInAir: 20, MassInFluid: 17.4, AttachmentMassInAir: 2, AttachmentMassInFluid: 1.8}
		req.Master = &MasterSample{Measurement: &m, AttachmentExists: true}

		result, err := o.Compute(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, 7.5, *result.ReferenceDensity)
		require.Equal(t, 33.33, *result.Rows[0].Porosity)
	})

	t.Run("denser part gives negative porosity", func(t *testing.T) {
		req := lotOf("P-100", 5.2)
		master := 5.0
		req.Master = &MasterSample{Density: &master}

		result, err := o.Compute(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, -4.0, *result.Rows[0].Porosity)
	})

	t.Run("zero master density fails each row", func(t *testing.T) {
		req := lotOf("P-100", 5.0, 5.2)
		master := 0.0
		req.Master = &MasterSample{Density: &master}

		result, err := o.Compute(context.Background(), req)
		require.NoError(t, err)
		for _, row := range result.Rows {
			require.Nil(t, row.Porosity)
			require.Equal(t, PorosityUnavailable, row.PorosityState)
			require.Equal(t, []RowError{{Field: "porosity", Kind: "division_by_zero", Message: "division by zero"}}, row.Errors)
		}
	})

	t.Run("degenerate weighed master fails the lot", func(t *testing.T) {
		req := lotOf("P-100", 5.0)
		req.Master = &MasterSample{Measurement: &density.Measurement{MassInAir: 3, MassInFluid: 3}}

		_, err := o.Compute(context.Background(), req)
		require.True(t, errors.Is(err, apperr.ErrDivisionByZero))
	})
}

func TestComputeRowFailuresStayOnTheRow(t *testing.T) {
	o := newTestOrchestrator(t)

	req := lotOf("P-TIGHT", 5.0, 5.2)
	req.Measurements = append(req.Measurements, density.Measurement{MassInAir: 4, MassInFluid: 4})

	result, err := o.Compute(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, 98.0, *result.Rows[0].CompactnessRatio)
	require.Equal(t, 3.85, *result.Rows[0].Porosity)

	// 5.2 against a theoretical density of 5.1 is reported, not clamped.
	require.Nil(t, result.Rows[1].CompactnessRatio)
	require.Len(t, result.Rows[1].Errors, 1)
	require.Equal(t, "compactness_ratio", result.Rows[1].Errors[0].Field)
	require.Equal(t, "out_of_range", result.Rows[1].Errors[0].Kind)
	require.Equal(t, PorosityReference, result.Rows[1].PorosityState)

	require.Nil(t, result.Rows[2].Density)
	require.Equal(t, "division_by_zero", result.Rows[2].Errors[0].Kind)
	require.Equal(t, PorosityUnavailable, result.Rows[2].PorosityState)
}

func TestComputeWithoutTheoreticalDensity(t *testing.T) {
	o := newTestOrchestrator(t)

	result, err := o.Compute(context.Background(), lotOf("P-NONE", 5.0, 5.2))
	require.NoError(t, err)
	require.Equal(t, density.Undetermined, result.Theoretical.State)
	for _, row := range result.Rows {
		require.Nil(t, row.CompactnessRatio)
		require.Empty(t, row.Errors)
	}
	require.Equal(t, 3.85, *result.Rows[0].Porosity)
}

func TestComputeRejectsBadRequests(t *testing.T) {
	o := newTestOrchestrator(t)
	master := 5.0

	tests := []struct {
		name string
		req  LotRequest
		err  error
	}{
		{name: "unknown part", req: lotOf("P-404", 5.0), err: apperr.ErrUnknownPart},
		{name: "no part code", req: lotOf(" ", 5.0), err: apperr.ErrValidation},
		{name: "no measurements", req: lotOf("P-100"), err: apperr.ErrValidation},
		{name: "zero fluid density", req: LotRequest{PartCode: "P-100", Measurements: []density.Measurement{weighing(5)}}, err: apperr.ErrValidation},
		{name: "master with both forms", req: LotRequest{
			PartCode: "P-100", FluidDensity: 1, Measurements: []density.Measurement{weighing(5)},
			Master: &MasterSample{Density: &master, Measurement: &density.Measurement{MassInAir: 1}},
		}, err: apperr.ErrValidation},
		{name: "empty master", req: LotRequest{
			PartCode: "P-100", FluidDensity: 1, Measurements: []density.Measurement{weighing(5)}, Master: &MasterSample{},
		}, err: apperr.ErrValidation},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := o.Compute(context.Background(), test.req)
			require.True(t, errors.Is(err, test.err), "got %v", err)
		})
	}
}

func TestComputeHonoursCancellation(t *testing.T) {
	o := newTestOrchestrator(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Compute(ctx, lotOf("P-100", 5.0, 5.2))
	require.True(t, errors.Is(err, context.Canceled))
}

func TestComputeAssignsSerials(t *testing.T) {
	o := newTestOrchestrator(t)

	req := lotOf("P-100", 5.0, 5.2)
	req.AssignSerials = true

	result, err := o.Compute(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "P-100-20261019-0001", result.Rows[0].Serial)
	require.Equal(t, "P-100-20261019-0002", result.Rows[1].Serial)

	req.Date = time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	result, err = o.Compute(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "P-100-20261020-0001", result.Rows[0].Serial)
}

func TestNextSerialBlock(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := context.Background()
	day := time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)

	serials, err := o.NextSerialBlock(ctx, "P-100", day, 3)
	require.NoError(t, err)
	require.Equal(t, []string{"P-100-20261019-0001", "P-100-20261019-0002", "P-100-20261019-0003"}, serials)

	serials, err = o.NextSerialBlock(ctx, "P-100", day, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"P-100-20261019-0004", "P-100-20261019-0005"}, serials)

	serials, err = o.NextSerialBlock(ctx, "P-200", day, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"P-200-20261019-0001"}, serials)

	_, err = o.NextSerialBlock(ctx, "P-100", day, 0)
	require.True(t, errors.Is(err, apperr.ErrValidation))
	_, err = o.NextSerialBlock(ctx, "P-100", day, MaxSerialBlock+1)
	require.True(t, errors.Is(err, apperr.ErrValidation))
	_, err = o.NextSerialBlock(ctx, "", day, 1)
	require.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestNextSerialBlockConcurrentBlocksDoNotOverlap(t *testing.T) {
	o := newTestOrchestrator(t)
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		all []string
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serials, err := o.NextSerialBlock(context.Background(), "P-100", day, 2)
			assert.NoError(t, err)
			mu.Lock()
			all = append(all, serials...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Strings(all)
	require.Len(t, all, 20)
	for i, s := range all {
		require.Equal(t, FormatSerial("P-100", day, i+1), s)
	}
}
