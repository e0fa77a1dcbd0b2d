package metrics

import (
	"testing"

	"github.com/materials-commons/partdensity/pkg/apperr"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	ok := Calculations.WithLabelValues(OpPorosity, "ok")
	divByZero := Calculations.WithLabelValues(OpPorosity, "division_by_zero")
	okBefore, divBefore := testutil.ToFloat64(ok), testutil.ToFloat64(divByZero)

	Observe(OpPorosity, nil)
	Observe(OpPorosity, apperr.ErrDivisionByZero)
	Observe(OpPorosity, nil)

	require.Equal(t, okBefore+2, testutil.ToFloat64(ok))
	require.Equal(t, divBefore+1, testutil.ToFloat64(divByZero))
}
