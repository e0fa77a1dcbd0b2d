// Package metrics exposes the prometheus collectors shared by the calculator
// endpoints and the lot orchestrator.
package metrics

import (
	"github.com/materials-commons/partdensity/pkg/apperr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OpTheoretical = "theoretical"
	OpMeasured    = "measured"
	OpMaster      = "master"
	OpCompactness = "compactness"
	OpPorosity    = "porosity"
	OpLot         = "lot"
	OpSerials     = "serials"
)

var (
	Calculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partdensity",
		Name:      "calculations_total",
		Help:      "Density calculations by operation and outcome.",
	}, []string{"operation", "result"})

	LotRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "partdensity",
		Name:      "lot_rows",
		Help:      "Number of measurement rows per computed lot.",
		Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 250},
	})
)

// Observe counts one calculation. A nil err is recorded as "ok", anything
// else under its error kind.
func Observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = apperr.Kind(err)
	}
	Calculations.WithLabelValues(operation, result).Inc()
}
