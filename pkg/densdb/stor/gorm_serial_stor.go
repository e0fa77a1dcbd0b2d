package stor

import (
	"errors"

	"github.com/materials-commons/partdensity/pkg/densdb/dmodel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormSerialStor struct {
	db *gorm.DB
}

func NewGormSerialStor(db *gorm.DB) *GormSerialStor {
	return &GormSerialStor{db: db}
}

func (s *GormSerialStor) ReserveSerials(partCode, lotDate string, count int) (int, error) {
	first := 0
	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		var counter dmodel.LotSerialCounter
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("part_code = ?", partCode).
			Where("lot_date = ?", lotDate).
			First(&counter).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			first = 1
			counter = dmodel.LotSerialCounter{PartCode: partCode, LotDate: lotDate, LastSerial: count}
			return tx.Create(&counter).Error
		case err != nil:
			return err
		}

		first = counter.LastSerial + 1
		return tx.Model(&counter).Update("last_serial", counter.LastSerial+count).Error
	})

	if err != nil {
		return 0, translate(err)
	}

	return first, nil
}
