package lot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/materials-commons/partdensity/pkg/clog"
	"github.com/materials-commons/partdensity/pkg/densdb/stor"
	"github.com/materials-commons/partdensity/pkg/density"
	"github.com/materials-commons/partdensity/pkg/lock"
	"github.com/materials-commons/partdensity/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// TheoreticalSource supplies the theoretical density of a stored part.
// *registry.PartRegistry satisfies it.
type TheoreticalSource interface {
	TheoreticalDensity(partCode string) (density.Result, error)
}

type Orchestrator struct {
	parts        TheoreticalSource
	serialStor   stor.SerialStor
	workers      int
	serialLocker *lock.KeyLocker[string]
	now          func() time.Time
}

func NewOrchestrator(parts TheoreticalSource, serialStor stor.SerialStor, workers int) *Orchestrator {
	if workers < 1 {
		workers = DefaultWorkers
	}

	return &Orchestrator{
		parts:        parts,
		serialStor:   serialStor,
		workers:      workers,
		serialLocker: lock.NewKeyLocker[string](),
		now:          time.Now,
	}
}

// Compute evaluates every measurement of the lot. Failures confined to a row
// are reported on that row; the lot as a whole only fails on bad input, an
// unknown part, a degenerate master sample or a store error.
func (o *Orchestrator) Compute(ctx context.Context, req LotRequest) (*LotResult, error) {
	result, err := o.compute(ctx, req)
	metrics.Observe(metrics.OpLot, err)
	return result, err
}

func (o *Orchestrator) compute(ctx context.Context, req LotRequest) (*LotResult, error) {
	req.PartCode = strings.TrimSpace(req.PartCode)
	if err := req.validate(); err != nil {
		return nil, err
	}

	theoretical, err := o.parts.TheoreticalDensity(req.PartCode)
	if err != nil {
		return nil, err
	}

	result := &LotResult{
		PartCode:        req.PartCode,
		Theoretical:     theoretical,
		ReferenceSource: ReferenceNone,
		Rows:            make([]RowResult, len(req.Measurements)),
	}

	if req.Master != nil {
		master, err := masterDensity(req.Master, req.FluidDensity)
		metrics.Observe(metrics.OpMaster, err)
		if err != nil {
			return nil, fmt.Errorf("master sample: %w", err)
		}
		result.ReferenceDensity = &master
		result.ReferenceSource = ReferenceMaster
	}

	if err := o.computeDensities(ctx, req, result.Rows); err != nil {
		return nil, err
	}

	if result.ReferenceSource == ReferenceNone {
		if i, ok := densestRow(result.Rows); ok {
			result.ReferenceDensity = result.Rows[i].Density
			result.ReferenceSource = ReferenceLotMax
			result.ReferenceRow = &i
		}
	}

	if err := o.computeRatios(ctx, result); err != nil {
		return nil, err
	}

	if req.AssignSerials {
		if err := o.assignSerials(ctx, req, result.Rows); err != nil {
			return nil, err
		}
	}

	metrics.LotRows.Observe(float64(len(result.Rows)))
	clog.UsingCtx("lot").WithFields(log.Fields{
		"part_code":        result.PartCode,
		"rows":             len(result.Rows),
		"theoretical":      theoretical.State,
		"reference_source": result.ReferenceSource,
	}).Info("lot computed")

	return result, nil
}

func masterDensity(m *MasterSample, fluidDensity float64) (float64, error) {
	if m.Density != nil {
		return *m.Density, nil
	}

	return density.MasterSampleDensity(*m.Measurement, fluidDensity, m.AttachmentExists)
}

// computeDensities is the first phase: every row's measured density. Rows
// are independent, so they run on a bounded worker group.
func (o *Orchestrator) computeDensities(ctx context.Context, req LotRequest, rows []RowResult) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i := range req.Measurements {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			row := &rows[i]
			row.Index = i
			row.PorosityState = PorosityUnavailable

			d, err := density.MeasuredDensity(req.Measurements[i], req.FluidDensity, req.AttachmentExists)
			metrics.Observe(metrics.OpMeasured, err)
			if err != nil {
				row.Errors = append(row.Errors, newRowError("density", err))
				return nil
			}
			row.Density = &d
			return nil
		})
	}

	return g.Wait()
}

// densestRow returns the first row holding the highest density.
func densestRow(rows []RowResult) (int, bool) {
	best := -1
	for i, row := range rows {
		if row.Density == nil {
			continue
		}
		if best == -1 || *row.Density > *rows[best].Density {
			best = i
		}
	}

	return best, best != -1
}

// computeRatios is the second phase and needs the reference density settled.
func (o *Orchestrator) computeRatios(ctx context.Context, result *LotResult) error {
	theoretical, hasTheoretical := result.Theoretical.Get()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i := range result.Rows {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			row := &result.Rows[i]
			if row.Density == nil {
				return nil
			}

			if hasTheoretical {
				ratio, err := density.CompactnessRatio(*row.Density, theoretical)
				metrics.Observe(metrics.OpCompactness, err)
				if err != nil {
					row.Errors = append(row.Errors, newRowError("compactness_ratio", err))
				} else {
					row.CompactnessRatio = &ratio
				}
			}

			switch {
			case result.ReferenceDensity == nil:
				return nil
			case result.ReferenceRow != nil && *result.ReferenceRow == i:
				row.PorosityState = PorosityReference
				return nil
			}

			porosity, err := density.Porosity(*result.ReferenceDensity, *row.Density)
			metrics.Observe(metrics.OpPorosity, err)
			if err != nil {
				row.Errors = append(row.Errors, newRowError("porosity", err))
				return nil
			}
			row.Porosity = &porosity
			row.PorosityState = PorosityComputed
			return nil
		})
	}

	return g.Wait()
}

func (o *Orchestrator) assignSerials(ctx context.Context, req LotRequest, rows []RowResult) error {
	date := req.Date
	if date.IsZero() {
		date = o.now()
	}

	serials, err := o.NextSerialBlock(ctx, req.PartCode, date, len(rows))
	if err != nil {
		return err
	}

	for i := range rows {
		rows[i].Serial = serials[i]
	}

	return nil
}
