package lot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/materials-commons/partdensity/pkg/apperr"
	"github.com/materials-commons/partdensity/pkg/clog"
	"github.com/materials-commons/partdensity/pkg/metrics"
)

const (
	MaxSerialBlock = 1000

	lotDateLayout    = "2006-01-02"
	serialDateLayout = "20060102"
)

// FormatSerial renders the n-th serial of partCode on date.
func FormatSerial(partCode string, date time.Time, n int) string {
	return fmt.Sprintf("%s-%s-%04d", partCode, date.Format(serialDateLayout), n)
}

// NextSerialBlock reserves count consecutive serials for partCode on the
// calendar day of date. Blocks never overlap, including across restarts,
// since the counter lives in the store.
func (o *Orchestrator) NextSerialBlock(ctx context.Context, partCode string, date time.Time, count int) ([]string, error) {
	serials, err := o.nextSerialBlock(ctx, partCode, date, count)
	metrics.Observe(metrics.OpSerials, err)
	return serials, err
}

func (o *Orchestrator) nextSerialBlock(ctx context.Context, partCode string, date time.Time, count int) ([]string, error) {
	partCode = strings.TrimSpace(partCode)
	switch {
	case partCode == "":
		return nil, apperr.Validationf("part_code is required")
	case count < 1 || count > MaxSerialBlock:
		return nil, apperr.Validationf("serial count must be between 1 and %d, got %d", MaxSerialBlock, count)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lotDate := date.Format(lotDateLayout)
	first := 0
	err := o.serialLocker.WithLock(partCode+"/"+lotDate, func() error {
		var err error
		first, err = o.serialStor.ReserveSerials(partCode, lotDate, count)
		return err
	})

	if err != nil {
		return nil, err
	}

	serials := make([]string, 0, count)
	for n := first; n < first+count; n++ {
		serials = append(serials, FormatSerial(partCode, date, n))
	}

	clog.UsingCtx("lot").Infof("reserved serials %s..%s", serials[0], serials[len(serials)-1])
	return serials, nil
}
